package upload

import "strings"

// Default key prefixes for batch attachments.
const (
	DefaultCoaDir   = "coa/"
	DefaultColorDir = "color/"

	CoaSuffix   = "coa"
	ColorSuffix = "color"
)

var separatorReplacer = strings.NewReplacer("/", " ", "\\", " ")

// Sanitize replaces path separators so a value cannot create directories.
func Sanitize(value string) string {
	return separatorReplacer.Replace(value)
}

// Ext returns the final extension of filename including the leading dot.
// Dotfiles and names ending in a dot have no extension.
func Ext(filename string) string {
	name := filename
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}

// BuildPath composes "<baseDir><product> <number> <suffix><ext>".
func BuildPath(baseDir, product, number, suffix, filename string) string {
	var b strings.Builder
	b.WriteString(baseDir)
	b.WriteString(Sanitize(product))
	b.WriteByte(' ')
	b.WriteString(Sanitize(number))
	b.WriteByte(' ')
	b.WriteString(suffix)
	b.WriteString(Ext(filename))
	return b.String()
}

// Paths holds the configured key prefixes.
type Paths struct {
	CoaDir   string
	ColorDir string
}

// DefaultPaths returns the stock coa/ and color/ prefixes.
func DefaultPaths() Paths {
	return Paths{CoaDir: DefaultCoaDir, ColorDir: DefaultColorDir}
}

// Coa returns the storage key of a batch certificate of analysis.
func (p Paths) Coa(product, number, filename string) string {
	return BuildPath(withDefault(p.CoaDir, DefaultCoaDir), product, number, CoaSuffix, filename)
}

// ColorSheet returns the storage key of a batch color sheet.
func (p Paths) ColorSheet(product, number, filename string) string {
	return BuildPath(withDefault(p.ColorDir, DefaultColorDir), product, number, ColorSuffix, filename)
}

func withDefault(dir, fallback string) string {
	if dir == "" {
		return fallback
	}
	return dir
}
