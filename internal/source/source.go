// Package source reads the clinic input batch from its configured origin:
// a local Excel workbook or the same workbook fetched from an export URL.
package source

import (
	"context"

	"github.com/sejongdental/clinicqr/internal/config"
	"github.com/sejongdental/clinicqr/pkg/registry"
)

// Source produces the current input batch.
type Source interface {
	// Records reads, normalizes, and validates the batch.
	Records(ctx context.Context) ([]registry.ClinicRecord, error)
}

// New selects the source implementation for the configuration.
func New(cfg *config.Config) Source {
	if cfg.ClinicsSource == config.SourceURL {
		return &urlSource{cfg: cfg}
	}
	return &localSource{cfg: cfg}
}

type localSource struct {
	cfg *config.Config
}

func (s *localSource) Records(_ context.Context) ([]registry.ClinicRecord, error) {
	return ReadWorkbook(s.cfg.InputPath, s.cfg.SheetIndex, s.cfg.Columns)
}
