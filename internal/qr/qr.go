// Package qr renders the per-clinic QR images: a plain PNG encoding the
// landing URL and an optional captioned variant with the clinic name
// beneath the code.
package qr

import (
	"os"
	"path/filepath"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/sejongdental/clinicqr/pkg/errors"
)

// Options controls QR image generation.
type Options struct {
	// Level is the error-correction level: L, M, Q, or H.
	Level string
	// BoxSize is the pixel width of one QR module.
	BoxSize int
	// Border controls the quiet zone around the code.
	Border bool
}

// recoveryLevel maps config letters onto go-qrcode levels.
func recoveryLevel(level string) (qrcode.RecoveryLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "L":
		return qrcode.Low, nil
	case "M":
		return qrcode.Medium, nil
	case "Q":
		return qrcode.High, nil
	case "H":
		return qrcode.Highest, nil
	default:
		return 0, errors.NewValidationError("qr_error_correction", level, "must be one of L, M, Q, H")
	}
}

// Generate writes the QR PNG for url to path.
func Generate(url, path string, opts Options) error {
	level, err := recoveryLevel(opts.Level)
	if err != nil {
		return err
	}

	q, err := qrcode.New(url, level)
	if err != nil {
		return errors.WrapIO("encode", path, err)
	}
	q.DisableBorder = !opts.Border

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	// A negative size renders at a fixed pixel count per module.
	if err := q.WriteFile(-opts.BoxSize, path); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
