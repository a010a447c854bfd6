package upload

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxBytes caps the size of an accepted upload.
const DefaultMaxBytes int64 = 10 << 20

// Rejection codes.
const (
	CodeInvalidExtension = "invalid_extension"
	CodeInvalidFileType  = "invalid_file_type"
	CodeFileTooLarge     = "file_too_large"
)

// DefaultExtensions lists the accepted file extensions.
var DefaultExtensions = []string{"pdf", "jpg", "jpeg", "png", "xls", "xlsx", "doc", "docx"}

// DefaultMIMETypes lists the accepted sniffed content types.
var DefaultMIMETypes = []string{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/msword",
	"image/jpeg",
	"image/png",
	"application/pdf",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ErrInvalidUpload matches every ValidationError.
var ErrInvalidUpload = errors.New("upload: invalid file")

// ValidationError reports why an upload was rejected.
type ValidationError struct {
	Code      string
	Message   string
	Extension string
	MIMEType  string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidUpload }

// Validator checks uploads against an extension and a MIME type allow-list.
// It reads from the handle it is given but never closes it.
type Validator struct {
	Extensions []string
	MIMETypes  []string
	MaxBytes   int64
}

// NewValidator normalizes the allow-lists. Empty inputs fall back to defaults.
func NewValidator(extensions, mimeTypes []string, maxBytes int64) *Validator {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if len(mimeTypes) == 0 {
		mimeTypes = DefaultMIMETypes
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	v := &Validator{MaxBytes: maxBytes}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			v.Extensions = append(v.Extensions, ext)
		}
	}
	for _, mt := range mimeTypes {
		mt = strings.ToLower(strings.TrimSpace(mt))
		if mt != "" {
			v.MIMETypes = append(v.MIMETypes, mt)
		}
	}
	return v
}

// Default returns a validator using the stock allow-lists.
func Default() *Validator {
	return NewValidator(nil, nil, 0)
}

// HelpText describes the accepted extensions for form fields.
func (v *Validator) HelpText() string {
	return fmt.Sprintf("Select file to upload (%s)", strings.Join(v.Extensions, ", "))
}

// ValidateExtension checks filename against the extension allow-list.
func (v *Validator) ValidateExtension(filename string) error {
	ext := strings.ToLower(strings.TrimPrefix(Ext(filename), "."))
	for _, allowed := range v.Extensions {
		if ext != "" && ext == allowed {
			return nil
		}
	}
	return &ValidationError{
		Code:      CodeInvalidExtension,
		Message:   "Invalid file extension",
		Extension: ext,
	}
}

// ValidateSize rejects uploads larger than MaxBytes.
func (v *Validator) ValidateSize(size int64) error {
	if v.MaxBytes > 0 && size > v.MaxBytes {
		return &ValidationError{
			Code:    CodeFileTooLarge,
			Message: fmt.Sprintf("File too large (%d bytes, limit %d)", size, v.MaxBytes),
		}
	}
	return nil
}

// ValidateContent sniffs the leading bytes of r and returns the detected
// type. When r is an io.Seeker its offset is restored afterwards.
func (v *Validator) ValidateContent(r io.Reader) (string, error) {
	seeker, seekable := r.(io.Seeker)
	var offset int64
	if seekable {
		pos, err := seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return "", fmt.Errorf("upload: read offset: %w", err)
		}
		offset = pos
	}

	detected, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("upload: sniff content: %w", err)
	}

	if seekable {
		if _, err := seeker.Seek(offset, io.SeekStart); err != nil {
			return "", fmt.Errorf("upload: rewind: %w", err)
		}
	}

	mimeType, _, _ := strings.Cut(detected.String(), ";")
	mimeType = strings.TrimSpace(mimeType)
	for _, allowed := range v.MIMETypes {
		if detected.Is(allowed) {
			return mimeType, nil
		}
	}
	return mimeType, &ValidationError{
		Code:     CodeInvalidFileType,
		Message:  fmt.Sprintf("Invalid file type '%s'", mimeType),
		MIMEType: mimeType,
	}
}

// Validate checks the extension first and only then inspects content.
func (v *Validator) Validate(filename string, r io.Reader) (string, error) {
	if err := v.ValidateExtension(filename); err != nil {
		return "", err
	}
	return v.ValidateContent(r)
}
