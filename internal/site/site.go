// Package site renders the static landing pages: one page per clinic,
// a root index, a 404 page, and the outbox download index.
//
// Every spreadsheet-derived value flows through html/template's contextual
// escaping; nothing from the input reaches the page unescaped.
package site

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/sejongdental/clinicqr/internal/config"
	"github.com/sejongdental/clinicqr/pkg/registry"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer renders site pages from the embedded templates.
type Renderer struct {
	cfg  *config.Config
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer(cfg *config.Config) (*Renderer, error) {
	tmpl, err := template.New("site").Funcs(template.FuncMap{
		"dash": displayOrDash,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing site templates: %w", err)
	}
	return &Renderer{cfg: cfg, tmpl: tmpl}, nil
}

// pageData is the shared layout context.
type pageData struct {
	Title     string
	NoIndex   bool
	GA4ID     string
	Analytics bool
}

func (r *Renderer) page(title string) pageData {
	return pageData{
		Title:     title,
		NoIndex:   r.cfg.NoIndex,
		GA4ID:     strings.TrimSpace(r.cfg.GA4MeasurementID),
		Analytics: r.cfg.AnalyticsProvider == "ga4" && strings.TrimSpace(r.cfg.GA4MeasurementID) != "",
	}
}

// clinicPage is the per-clinic template context.
type clinicPage struct {
	pageData

	ClinicID string
	Name     string
	Josa     string
	Year     int
	Validity string
	IsActive bool

	MessageInactive string

	Address  string
	Phone    string
	Director string

	TelHref         string
	MapURL          string
	HomepageURL     string
	HomepageDisplay string
	HomepageRaw     string

	UpdatedAt string
}

// RenderClinicPage writes the landing page for one registry entry.
func (r *Renderer) RenderClinicPage(w io.Writer, e registry.Entry, buildTime string) error {
	homepage := registry.HomepageURL(e.Homepage)

	data := clinicPage{
		pageData: r.page(e.Name),

		ClinicID: e.ClinicID,
		Name:     e.Name,
		Josa:     topicJosa(e.Name),
		Year:     r.cfg.Year,
		Validity: fmt.Sprintf("%d-01-01 ~ %d-12-31", r.cfg.Year, r.cfg.Year),
		IsActive: e.Status == registry.StatusActive,

		MessageInactive: r.cfg.MessageInactive,

		Address:  e.Address,
		Phone:    e.Phone,
		Director: e.Director,

		TelHref:         telHref(e.Phone),
		MapURL:          naverMapURL(firstNonEmpty(e.Address, e.Name)),
		HomepageURL:     homepage,
		HomepageDisplay: homepageDisplay(homepage),
		HomepageRaw:     strings.TrimSpace(e.Homepage),

		UpdatedAt: buildTime,
	}
	return r.tmpl.ExecuteTemplate(w, "clinic.html.tmpl", data)
}

// RenderIndex writes the root index page.
func (r *Renderer) RenderIndex(w io.Writer) error {
	return r.tmpl.ExecuteTemplate(w, "index.html.tmpl", r.page("QR 안내"))
}

// RenderNotFound writes the 404 page.
func (r *Renderer) RenderNotFound(w io.Writer) error {
	return r.tmpl.ExecuteTemplate(w, "404.html.tmpl", r.page("페이지 없음"))
}

// outboxPage is the outbox index template context.
type outboxPage struct {
	pageData

	UpdatedAt string
	ZipNames  []string
}

// RenderOutboxIndex writes the operator-facing outbox download page.
func (r *Renderer) RenderOutboxIndex(w io.Writer, buildTime string, zipNames []string) error {
	data := outboxPage{
		pageData:  r.page("Outbox 다운로드"),
		UpdatedAt: buildTime,
		ZipNames:  zipNames,
	}
	return r.tmpl.ExecuteTemplate(w, "outbox.html.tmpl", data)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func displayOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return strings.TrimSpace(value)
}
