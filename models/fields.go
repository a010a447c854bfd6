package models

import (
	"fmt"
	"strings"

	"qcs/internal/upload"
)

// Field describes one editable attribute of a record.
type Field struct {
	Name          string   `json:"name"`
	Label         string   `json:"label"`
	HelpText      string   `json:"help_text"`
	Type          string   `json:"type"`
	Required      bool     `json:"required"`
	Unique        bool     `json:"unique,omitempty"`
	Null          bool     `json:"null,omitempty"`
	Editable      bool     `json:"editable"`
	MaxLength     int      `json:"max_length,omitempty"`
	MaxDigits     int      `json:"max_digits,omitempty"`
	DecimalPlaces int      `json:"decimal_places,omitempty"`
	Choices       []Choice `json:"choices,omitempty"`
	Relation      string   `json:"relation,omitempty"`
}

// Meta describes a record type: names, default ordering and fields.
type Meta struct {
	Name              string   `json:"name"`
	VerboseName       string   `json:"verbose_name"`
	VerboseNamePlural string   `json:"verbose_name_plural"`
	Ordering          []string `json:"ordering"`
	Fields            []Field  `json:"fields"`
}

// Field returns the named field.
func (m Meta) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Label returns the label of the named field, or the name itself.
func (m Meta) Label(name string) string {
	if f, ok := m.Field(name); ok {
		return f.Label
	}
	return name
}

// FileHelpText is the help text shown for upload fields.
func FileHelpText(extensions []string) string {
	return fmt.Sprintf("Select file to upload (%s)", strings.Join(extensions, ", "))
}

func text(name, label, help string, maxLength int) Field {
	return Field{Name: name, Label: label, HelpText: help, Type: "string", Required: true, Editable: true, MaxLength: maxLength}
}

func choice(name, label, help string, maxLength int, choices []Choice) Field {
	f := text(name, label, help, maxLength)
	f.Type = "choice"
	f.Choices = choices
	return f
}

func positive(name, label, help string) Field {
	return Field{Name: name, Label: label, HelpText: help, Type: "positive_integer", Required: true, Editable: true}
}

func foreignKey(name, label, help, relation string) Field {
	return Field{Name: name, Label: label, HelpText: help, Type: "foreign_key", Required: true, Editable: true, Relation: relation}
}

func date(name, label, help string) Field {
	return Field{Name: name, Label: label, HelpText: help, Type: "date", Required: true, Editable: true}
}

func file(name, label string, extensions []string) Field {
	return Field{Name: name, Label: label, HelpText: FileHelpText(extensions), Type: "file", Null: true, Editable: true, MaxLength: 255}
}

func measurement(name, label string) Field {
	return Field{
		Name:          name,
		Label:         label,
		HelpText:      fmt.Sprintf("Enter %s value", label),
		Type:          "decimal",
		Required:      true,
		Editable:      true,
		MaxDigits:     MeasurementMaxDigits,
		DecimalPlaces: MeasurementDecimalPlaces,
	}
}

var (
	SupplierMeta = Meta{
		Name:              "supplier",
		VerboseName:       "supplier",
		VerboseNamePlural: "suppliers",
		Ordering:          []string{"name"},
		Fields: []Field{
			text("name", "Name", "Enter supplier name", 100),
			text("country", "Country", "Enter supplier country", 60),
			text("city", "City", "Enter supplier city", 60),
		},
	}

	PackageMeta = Meta{
		Name:              "package",
		VerboseName:       "package",
		VerboseNamePlural: "packages",
		Ordering:          []string{"size"},
		Fields: []Field{
			choice("package_type", "Package type", "Select package type", 8, PackageTypeChoices),
			choice("uom", "Unit of measure", "Select unit of measure", 3, UnitOfMeasureChoices),
			positive("size", "Package size", "Enter package size"),
		},
	}

	ProductMeta = Meta{
		Name:              "product",
		VerboseName:       "product",
		VerboseNamePlural: "products",
		Ordering:          []string{"name"},
		Fields: []Field{
			{Name: "product_id", Label: "Product id", HelpText: "Enter product id code", Type: "string", Unique: true, Null: true, Editable: true, MaxLength: 50},
			text("code", "Product code", "Enter product code", 50),
			text("name", "Product name", "Enter product name", 100),
			choice("formula", "Formula technology", "Select formula technology", 2, FormulaChoices),
			choice("product_type", "Product type", "Select product type", 2, ProductTypeChoices),
			foreignKey("supplier_id", "Supplier", "Select supplier", "supplier"),
			{Name: "package_id", Label: "Package", HelpText: "Select package type", Type: "foreign_key", Null: true, Editable: true, Relation: "package"},
		},
	}

	ColorDataMeta = Meta{
		Name:              "color_data",
		VerboseName:       "color data",
		VerboseNamePlural: "color data",
		Ordering:          []string{"-timestamp", "batch", "category"},
		Fields: []Field{
			foreignKey("batch_id", "Batch", "Select batch", "batch"),
			{Name: "timestamp", Label: "Timestamp", HelpText: "Record creation timestamp", Type: "datetime"},
			{Name: "category", Label: "Category", HelpText: "Select color data category", Type: "choice", Required: true, Editable: true, MaxLength: 2, Choices: ColorCategoryChoices},
			measurement("l_25", "L25"), measurement("l_45", "L45"), measurement("l_75", "L75"),
			measurement("a_25", "a25"), measurement("a_45", "a45"), measurement("a_75", "a75"),
			measurement("b_25", "b25"), measurement("b_45", "b45"), measurement("b_75", "b75"),
			measurement("de_25", "dE25"), measurement("de_45", "dE45"), measurement("de_75", "dE75"),
			{Name: "comment", Label: "Comment", HelpText: "Enter comment", Type: "text", Editable: true},
		},
	}
)

// BatchMetaFor builds the batch metadata for the given upload extensions.
func BatchMetaFor(extensions []string) Meta {
	return Meta{
		Name:              "batch",
		VerboseName:       "batch",
		VerboseNamePlural: "batches",
		Ordering:          []string{"product", "number"},
		Fields: []Field{
			foreignKey("product_id", "Product", "Select product", "product"),
			text("number", "Batch number", "Enter batch number", 100),
			positive("size", "Batch size", "Enter batch size"),
			date("m_date", "Manufacturing date", "Select manufacturing date"),
			date("exp_date", "Expiry date", "Select expiry date"),
			file("coa", "Certificate of analysis", extensions),
			file("color_sheet", "Color sheet", extensions),
		},
	}
}

// BatchMeta uses the default upload extensions.
var BatchMeta = BatchMetaFor(upload.DefaultExtensions)

// Schemas lists every record type in menu order.
func Schemas() []Meta {
	return SchemasFor(upload.DefaultExtensions)
}

// SchemasFor is Schemas with a custom upload allow-list.
func SchemasFor(extensions []string) []Meta {
	if len(extensions) == 0 {
		extensions = upload.DefaultExtensions
	}
	return []Meta{SupplierMeta, PackageMeta, ProductMeta, BatchMetaFor(extensions), ColorDataMeta}
}

// SchemaFor looks a record type up by name. Dashes are accepted for underscores.
func SchemaFor(name string, extensions []string) (Meta, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for _, m := range SchemasFor(extensions) {
		if m.Name == key {
			return m, true
		}
	}
	return Meta{}, false
}
