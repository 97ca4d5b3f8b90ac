package pdfblocks

import "github.com/pkg/errors"

// Input rejected before any page is processed.
var (
	ErrInputTooLarge     = errors.New("input exceeds maximum document size")
	ErrCorruptDocument   = errors.New("document is corrupt or not a PDF")
	ErrPasswordProtected = errors.New("document is password protected")
)

// ErrNoContent is returned when every page contributed zero blocks.
var ErrNoContent = errors.New("no extractable content")

// Image-local failures. These never reach the caller of Convert*.
var (
	ErrUnrecognizedEncoding = errors.New("unrecognized pixel encoding")
	ErrTransparentImage     = errors.New("image is fully transparent")
)
