package site

import (
	"net/url"
	"strings"
	"unicode"
)

// SanitizeTel strips everything but digits and a leading plus from a phone
// value, yielding the tel: href payload.
func SanitizeTel(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func telHref(phone string) string {
	digits := SanitizeTel(phone)
	if digits == "" {
		return ""
	}
	return "tel:" + digits
}

// naverMapURL builds a Naver map search link for the address or clinic name.
func naverMapURL(query string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		return ""
	}
	return "https://map.naver.com/v5/search/" + url.PathEscape(q)
}

// homepageDisplay shortens a linkable homepage URL for display.
func homepageDisplay(linkURL string) string {
	if linkURL == "" {
		return ""
	}
	display := strings.TrimPrefix(linkURL, "https://")
	display = strings.TrimPrefix(display, "http://")
	return strings.TrimRight(display, "/")
}

// topicJosa picks the Korean topic particle (은/는) for the clinic name.
// Hangul syllables with a final consonant take 은, the rest take 는.
func topicJosa(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "는"
	}
	runes := []rune(trimmed)
	last := runes[len(runes)-1]
	if last >= 0xAC00 && last <= 0xD7A3 {
		if (last-0xAC00)%28 != 0 {
			return "은"
		}
	}
	return "는"
}
