package source

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sejongdental/clinicqr/internal/config"
	"github.com/sejongdental/clinicqr/pkg/errors"
	"github.com/sejongdental/clinicqr/pkg/logging"
	"github.com/sejongdental/clinicqr/pkg/registry"
)

// fetchTimeout bounds the whole export download.
const fetchTimeout = 2 * time.Minute

type urlSource struct {
	cfg    *config.Config
	client *http.Client
}

func (s *urlSource) Records(ctx context.Context) ([]registry.ClinicRecord, error) {
	data, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	changed, digest, err := updateDigest(data, s.cfg.ClinicsHashPath)
	if err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx)
	if changed {
		log.Info().Str("sha256", digest).Msg("remote workbook changed since last run")
	} else {
		log.Info().Str("sha256", digest).Msg("remote workbook unchanged since last run")
	}

	return ReadWorkbookData(bytes.NewReader(data), s.cfg.ClinicsURL, s.cfg.SheetIndex, s.cfg.Columns)
}

func (s *urlSource) fetch(ctx context.Context) ([]byte, error) {
	client := s.client
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.ClinicsURL, nil)
	if err != nil {
		return nil, errors.WrapIO("fetch", s.cfg.ClinicsURL, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.WrapIO("fetch", s.cfg.ClinicsURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewIOError("fetch", s.cfg.ClinicsURL,
			fmt.Errorf("unexpected status %s", resp.Status))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapIO("fetch", s.cfg.ClinicsURL, err)
	}
	return data, nil
}

// updateDigest compares the workbook digest with the persisted one and
// rewrites the digest file. The digest exists so operators can tell whether
// an unattended run actually saw new input.
func updateDigest(data []byte, hashPath string) (changed bool, digest string, err error) {
	sum := sha256.Sum256(data)
	digest = hex.EncodeToString(sum[:])

	previous, err := os.ReadFile(hashPath)
	switch {
	case err == nil:
		changed = strings.TrimSpace(string(previous)) != digest
	case os.IsNotExist(err):
		changed = true
	default:
		return false, "", errors.WrapIO("read", hashPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(hashPath), 0755); err != nil {
		return false, "", errors.WrapIO("create", filepath.Dir(hashPath), err)
	}
	if err := os.WriteFile(hashPath, []byte(digest+"\n"), 0644); err != nil {
		return false, "", errors.WrapIO("write", hashPath, err)
	}
	return changed, digest, nil
}
