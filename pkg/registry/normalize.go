package registry

import (
	"net/url"
	"strings"

	"golang.org/x/text/width"
)

// NormalizeName canonicalizes a clinic name for use as the identity key.
//
// The rule: fold Unicode fullwidth/halfwidth variants to their canonical
// forms, trim surrounding whitespace, and collapse internal whitespace runs
// to a single space. Letter case is preserved: clinic names are Korean and
// the rare Latin fragment in a name is part of its branding.
//
// This rule decides duplicate detection and identity continuity, so it must
// never change once ids have been minted.
func NormalizeName(raw string) string {
	folded := width.Fold.String(raw)
	return strings.Join(strings.Fields(folded), " ")
}

// HomepageURL returns the linkable form of a homepage value: values without
// a scheme are prefixed with https://, http and https values pass through,
// and anything else (javascript:, ftp:, ...) yields "" and is not linked.
// This is a display concern only; stored values are never rewritten.
func HomepageURL(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if parsed.Scheme == "" {
		return "https://" + raw
	}
	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		return raw
	}
	return ""
}
