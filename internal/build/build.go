// Package build runs the full pipeline: read the clinic batch, reconcile
// it against the id registry, render the landing site, generate QR assets,
// write the operator reports, and finally persist the updated registry.
//
// The registry file is written last. Every earlier stage only produces
// derived artifacts, so a failure mid-run leaves the registry untouched and
// the next run starts from the same state.
package build

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/sejongdental/clinicqr/internal/config"
	"github.com/sejongdental/clinicqr/internal/delivery"
	"github.com/sejongdental/clinicqr/internal/qr"
	"github.com/sejongdental/clinicqr/internal/report"
	"github.com/sejongdental/clinicqr/internal/site"
	"github.com/sejongdental/clinicqr/internal/source"
	"github.com/sejongdental/clinicqr/pkg/errors"
	"github.com/sejongdental/clinicqr/pkg/logging"
	"github.com/sejongdental/clinicqr/pkg/registry"
)

// Options adjusts a single build run.
type Options struct {
	// SkipQR disables QR image generation, and with it delivery and
	// outbox packaging. Page rendering and reports still run.
	SkipQR bool
}

// Result reports what a build produced.
type Result struct {
	Total    int
	Active   int
	Inactive int

	NewIDs    []string
	Changeset *registry.Changeset
	Outbox    *delivery.OutboxResult

	MappingPath string
	ChangesPath string
}

// Run executes one build against cfg.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	ctx = logging.WithField(ctx, "year", cfg.Year)
	log := logging.Ctx(ctx)

	records, err := source.New(cfg).Records(logging.WithStage(ctx, "source"))
	if err != nil {
		return nil, err
	}
	log.Info().Int("records", len(records)).Msg("loaded clinic batch")

	prev, err := registry.Load(cfg.IDMapPath)
	if err != nil {
		return nil, err
	}

	rec, err := registry.Reconcile(records, cfg.Year, prev)
	if err != nil {
		return nil, err
	}
	next := rec.Registry
	cs := registry.Diff(prev, next)

	renderer, err := site.NewRenderer(cfg)
	if err != nil {
		return nil, err
	}

	buildTime := time.Now().Format(time.RFC3339)
	if err := renderStatic(renderer, cfg.SiteRoot); err != nil {
		return nil, err
	}

	var caption *qr.CaptionFont
	if !opts.SkipQR && cfg.QR.Named {
		caption, err = loadCaptionFont(cfg)
		if err != nil {
			return nil, err
		}
	}

	res := &Result{Total: len(records), NewIDs: rec.NewIDs, Changeset: cs}
	qrRoot := filepath.Join(cfg.OutputRoot, "qr")
	rows := make([]report.MappingRow, 0, next.Len())
	renderCtx := logging.WithStage(ctx, "render")

	for _, e := range next.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		clog := logging.Ctx(logging.WithClinic(renderCtx, e.ClinicID))

		pagePath := filepath.Join(cfg.SiteRoot, cfg.PathPrefix, e.ClinicID, "index.html")
		if err := renderToFile(pagePath, func(w io.Writer) error {
			return renderer.RenderClinicPage(w, e, buildTime)
		}); err != nil {
			return nil, err
		}
		clog.Debug().Str("page", pagePath).Msg("rendered landing page")

		row := report.MappingRow{
			Name:     e.Name,
			ClinicID: e.ClinicID,
			Status:   e.Status,
			Address:  e.Address,
			Phone:    e.Phone,
			Director: e.Director,
			Homepage: e.Homepage,
			URL:      cfg.LandingURL(e.ClinicID),
			PagePath: pagePath,
		}

		if e.Status == registry.StatusActive {
			res.Active++
			if !opts.SkipQR {
				row.QRPath = filepath.Join(qrRoot, e.ClinicID+".png")
				if err := qr.Generate(row.URL, row.QRPath, qrOptions(cfg)); err != nil {
					return nil, err
				}
				if caption != nil {
					row.QRNamedPath = filepath.Join(qrRoot, e.ClinicID+"_named.png")
					if err := qr.WriteNamed(row.QRPath, e.Name, row.QRNamedPath, caption, cfg.QR.CaptionFontSize); err != nil {
						return nil, err
					}
				}
			}
		} else {
			res.Inactive++
		}

		rows = append(rows, row)
	}

	res.MappingPath = filepath.Join(cfg.OutputRoot, "mapping.csv")
	if err := report.WriteMapping(res.MappingPath, rows); err != nil {
		return nil, err
	}
	res.ChangesPath = filepath.Join(cfg.OutputRoot, "changes.csv")
	if err := report.WriteChanges(res.ChangesPath, cs, nil); err != nil {
		return nil, err
	}

	deliveryRoot := filepath.Join(cfg.OutputRoot, "delivery")
	if cfg.GenerateDelivery {
		if opts.SkipQR {
			log.Warn().Msg("delivery skipped because QR generation is off")
		} else if _, err := delivery.CreatePackages(cfg, rows, deliveryRoot); err != nil {
			return nil, err
		}
	}

	if cfg.GenerateOutbox {
		if opts.SkipQR {
			log.Warn().Msg("outbox skipped because QR generation is off")
		} else {
			res.Outbox, err = delivery.CreateOutbox(rows, cs, deliveryRoot, cfg.OutboxRoot, renderer)
			if err != nil {
				return nil, err
			}
		}
	}

	if err := registry.Save(next, cfg.IDMapPath); err != nil {
		return nil, err
	}

	logSummary(log, res)
	return res, nil
}

func renderStatic(renderer *site.Renderer, siteRoot string) error {
	if err := renderToFile(filepath.Join(siteRoot, "index.html"), renderer.RenderIndex); err != nil {
		return err
	}
	return renderToFile(filepath.Join(siteRoot, "404.html"), renderer.RenderNotFound)
}

func renderToFile(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func loadCaptionFont(cfg *config.Config) (*qr.CaptionFont, error) {
	path := cfg.QR.CaptionFontPath
	if path == "" {
		located, err := qr.LocateCJKFont()
		if err != nil {
			return nil, err
		}
		path = located
	}
	return qr.LoadCaptionFont(path)
}

func qrOptions(cfg *config.Config) qr.Options {
	return qr.Options{
		Level:   cfg.QR.ErrorCorrection,
		BoxSize: cfg.QR.BoxSize,
		Border:  cfg.QR.Border,
	}
}

func logSummary(log *zerolog.Logger, res *Result) {
	s := res.Changeset.Summary
	log.Info().
		Int("total", res.Total).
		Int("active", res.Active).
		Int("inactive", res.Inactive).
		Msg("build summary")
	log.Info().
		Int("new", s.New).
		Int("reactivated", s.Reactivated).
		Int("deactivated", s.Deactivated).
		Int("unchanged", s.Unchanged).
		Msg(res.Changeset.String())
	if res.Outbox != nil {
		log.Info().
			Int("targets", res.Outbox.Targets).
			Int("zips", res.Outbox.ZipsCreated).
			Msg("outbox packaged")
	}
}
