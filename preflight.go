package pdfblocks

import (
	"bytes"
	"strings"

	pdfium_errors "github.com/klippa-app/go-pdfium/errors"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
)

// preflight rejects oversized, encrypted and (with StrictValidation) structurally broken
// input before pdfium is involved. pdfcpu reads the cross-reference table and page tree
// in relaxed mode, which is cheap compared to loading pages.
func (c *Converter) preflight(data []byte) error {
	if err := c.checkSize(int64(len(data))); err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.Wrap(ErrCorruptDocument, "empty input")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pageCount, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		if isPasswordError(err) {
			return errors.Wrap(ErrPasswordProtected, err.Error())
		}
		if c.config.StrictValidation {
			return errors.Wrap(ErrCorruptDocument, err.Error())
		}
		// pdfium is more lenient than pdfcpu; let it make the final call
		c.config.Logger.WithError(err).Debug("preflight validation failed")
		return nil
	}

	c.config.Logger.WithField("pages", pageCount).Debug("preflight passed")
	return nil
}

// passwordMessages are the pdfcpu error texts for a missing or wrong password.
// Other encryption errors, such as unsupported crypt filters, are left to pdfium.
var passwordMessages = []string{
	"provide the correct password",
	"password required",
	"incorrect password",
	"wrong password",
}

// isPasswordError reports whether a pdfium or pdfcpu error was caused by a missing or
// wrong password.
func isPasswordError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, pdfium_errors.ErrPassword) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range passwordMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
