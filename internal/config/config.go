// Package config loads and validates the clinicqr configuration file.
// Viper handles the file format (TOML or YAML by extension) and environment
// overrides with the CLINICQR_ prefix.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/sejongdental/clinicqr/pkg/errors"
)

// Input source selectors.
const (
	SourceLocal = "local"
	SourceURL   = "url"
)

// Default operator-facing messages, Korean like the spreadsheet itself.
const (
	DefaultMessageActive   = "해당 치과는 2026년도 세종시 치과의사협회 가입 치과입니다"
	DefaultMessageInactive = "현재 2026 가입 치과 목록에 없습니다. 협회에 문의하세요."
)

// Columns names the required spreadsheet header columns.
type Columns struct {
	Name     string `mapstructure:"name_column"`
	Address  string `mapstructure:"address_column"`
	Phone    string `mapstructure:"phone_column"`
	Director string `mapstructure:"director_column"`
	Homepage string `mapstructure:"homepage_column"`
}

// QR holds QR image generation settings.
type QR struct {
	ErrorCorrection string `mapstructure:"qr_error_correction"` // L, M, Q, H
	BoxSize         int    `mapstructure:"qr_box_size"`         // pixels per module
	Border          bool   `mapstructure:"qr_border"`           // quiet zone around the code
	Named           bool   `mapstructure:"generate_qr_named"`   // captioned variant
	CaptionFontPath string `mapstructure:"caption_font_path"`
	CaptionFontSize int    `mapstructure:"caption_font_size"`
}

// Config is the full clinicqr configuration.
type Config struct {
	Year    int    `mapstructure:"year"`
	BaseURL string `mapstructure:"base_url"`

	ClinicsSource   string `mapstructure:"clinics_source"`
	InputPath       string `mapstructure:"input_excel_path"`
	ClinicsURL      string `mapstructure:"clinics_xlsx_url"`
	ClinicsHashPath string `mapstructure:"clinics_hash_path"`
	SheetIndex      int    `mapstructure:"sheet_index"`

	Columns Columns `mapstructure:",squash"`

	IDMapPath  string `mapstructure:"id_map_path"`
	SiteRoot   string `mapstructure:"site_root"`
	PathPrefix string `mapstructure:"path_prefix"`
	OutputRoot string `mapstructure:"output_root"`

	MessageActive   string `mapstructure:"message_active"`
	MessageInactive string `mapstructure:"message_inactive"`
	NoIndex         bool   `mapstructure:"noindex"`

	AnalyticsProvider string `mapstructure:"analytics_provider"` // none, ga4
	GA4MeasurementID  string `mapstructure:"ga4_measurement_id"`

	QR QR `mapstructure:",squash"`

	GenerateDelivery bool   `mapstructure:"generate_delivery"`
	GenerateOutbox   bool   `mapstructure:"generate_outbox"`
	OutboxRoot       string `mapstructure:"outbox_root"`
}

// setDefaults registers every optional key's default on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("clinics_source", SourceLocal)
	v.SetDefault("clinics_hash_path", "data/clinics.sha256")
	v.SetDefault("sheet_index", 0)
	v.SetDefault("name_column", "치과명")
	v.SetDefault("address_column", "주소")
	v.SetDefault("phone_column", "전화")
	v.SetDefault("director_column", "대표원장")
	v.SetDefault("homepage_column", "홈페이지")
	v.SetDefault("id_map_path", "data/id_map.csv")
	v.SetDefault("site_root", "docs")
	v.SetDefault("path_prefix", "c")
	v.SetDefault("output_root", "output")
	v.SetDefault("message_active", DefaultMessageActive)
	v.SetDefault("message_inactive", DefaultMessageInactive)
	v.SetDefault("noindex", true)
	v.SetDefault("analytics_provider", "none")
	v.SetDefault("qr_error_correction", "H")
	v.SetDefault("qr_box_size", 10)
	v.SetDefault("qr_border", true)
	v.SetDefault("generate_qr_named", true)
	v.SetDefault("caption_font_size", 28)
	v.SetDefault("generate_delivery", true)
	v.SetDefault("generate_outbox", true)
	v.SetDefault("outbox_root", "output/outbox")
}

// Load reads the config file at path and validates it.
// allowMissingBaseURL relaxes the base_url requirement for --skip-qr runs,
// where no landing URLs are encoded.
func Load(path string, allowMissingBaseURL bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix("CLINICQR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.NewConfigError("file", fmt.Sprintf("cannot read %s", path), err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigError("file", "cannot decode config", err)
	}

	if err := cfg.Validate(allowMissingBaseURL); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the whole configuration and reports every problem at once
// so operators fix the file in one pass.
func (c *Config) Validate(allowMissingBaseURL bool) error {
	var problems []string

	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Year <= 0 {
		add("year must be a positive integer")
	}
	if strings.TrimSpace(c.BaseURL) == "" && !allowMissingBaseURL {
		add("base_url is required unless QR generation is skipped")
	}

	switch c.ClinicsSource {
	case SourceLocal:
		if strings.TrimSpace(c.InputPath) == "" {
			add("input_excel_path is required when clinics_source is %q", SourceLocal)
		}
	case SourceURL:
		if strings.TrimSpace(c.ClinicsURL) == "" {
			add("clinics_xlsx_url is required when clinics_source is %q", SourceURL)
		}
	default:
		add("clinics_source must be %q or %q, got %q", SourceLocal, SourceURL, c.ClinicsSource)
	}

	if c.SheetIndex < 0 {
		add("sheet_index must be a non-negative integer")
	}

	requireString := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			add("%s must be a non-empty string", key)
		}
	}
	requireString("name_column", c.Columns.Name)
	requireString("address_column", c.Columns.Address)
	requireString("phone_column", c.Columns.Phone)
	requireString("director_column", c.Columns.Director)
	requireString("homepage_column", c.Columns.Homepage)
	requireString("id_map_path", c.IDMapPath)
	requireString("site_root", c.SiteRoot)
	requireString("path_prefix", c.PathPrefix)
	requireString("output_root", c.OutputRoot)
	requireString("message_active", c.MessageActive)
	requireString("message_inactive", c.MessageInactive)
	requireString("clinics_hash_path", c.ClinicsHashPath)
	requireString("outbox_root", c.OutboxRoot)

	switch c.AnalyticsProvider {
	case "none":
	case "ga4":
		if strings.TrimSpace(c.GA4MeasurementID) == "" {
			add("ga4_measurement_id is required when analytics_provider is \"ga4\"")
		}
	default:
		add("analytics_provider must be \"none\" or \"ga4\", got %q", c.AnalyticsProvider)
	}

	switch strings.ToUpper(c.QR.ErrorCorrection) {
	case "L", "M", "Q", "H":
	default:
		add("qr_error_correction must be one of L, M, Q, H")
	}
	if c.QR.BoxSize <= 0 {
		add("qr_box_size must be a positive integer")
	}
	if c.QR.CaptionFontSize <= 0 {
		add("caption_font_size must be a positive integer")
	}

	if len(problems) > 0 {
		return errors.NewConfigError("", "invalid config:\n- "+strings.Join(problems, "\n- "), nil)
	}
	return nil
}

// LandingURLPrefix returns "<base_url>/<path_prefix>/" with normalized
// slashes, or "" when base_url is unset.
func (c *Config) LandingURLPrefix() string {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + strings.Trim(c.PathPrefix, "/") + "/"
}

// LandingURL returns the landing page URL for one clinic id.
func (c *Config) LandingURL(clinicID string) string {
	prefix := c.LandingURLPrefix()
	if prefix == "" {
		return ""
	}
	return prefix + clinicID + "/"
}
