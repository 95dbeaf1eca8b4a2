package qr

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/sejongdental/clinicqr/pkg/errors"
	"github.com/sejongdental/clinicqr/pkg/logging"
)

// minCaptionSize is the smallest font size tried before giving up on
// fitting the caption.
const minCaptionSize = 16

// CaptionFont wraps a parsed font used for the clinic-name caption.
type CaptionFont struct {
	font *sfnt.Font
}

// LoadCaptionFont parses the font file at path. TrueType collections
// (.ttc) contribute their first font.
func LoadCaptionFont(path string) (*CaptionFont, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	if f, err := opentype.Parse(data); err == nil {
		return &CaptionFont{font: f}, nil
	}

	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, errors.NewParseError("font", path, "not an OpenType font or collection", err)
	}
	f, err := coll.Font(0)
	if err != nil {
		return nil, errors.NewParseError("font", path, "empty font collection", err)
	}
	return &CaptionFont{font: f}, nil
}

// cjkFontCandidates are the usual Noto CJK install locations.
var cjkFontCandidates = []string{
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.otf",
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
}

// cjkFontRoots are searched when no candidate path exists.
var cjkFontRoots = []string{"/usr/share/fonts", "/usr/local/share/fonts"}

// LocateCJKFont finds a system CJK font for the caption when none is
// configured.
func LocateCJKFont() (string, error) {
	for _, candidate := range cjkFontCandidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	var found string
	for _, root := range cjkFontRoots {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || found != "" {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, "NotoSansCJK") || strings.HasPrefix(name, "NotoSerifCJK") {
				found = path
				return fs.SkipAll
			}
			return nil
		})
		if found != "" {
			return found, nil
		}
	}
	return "", errors.New("no CJK font found; install fonts-noto-cjk or set caption_font_path")
}

// WriteNamed reads the QR PNG at qrPath and writes a copy with the clinic
// name drawn centered beneath it to outPath.
func WriteNamed(qrPath, clinicName, outPath string, cf *CaptionFont, fontSize int) error {
	src, err := os.Open(qrPath)
	if err != nil {
		return errors.WrapIO("read", qrPath, err)
	}
	qrImage, err := png.Decode(src)
	src.Close()
	if err != nil {
		return errors.WrapParse("png", qrPath, err)
	}

	bounds := qrImage.Bounds()
	qrWidth, qrHeight := bounds.Dx(), bounds.Dy()

	paddingX := intMax(12, qrWidth*6/100)
	maxWidth := qrWidth - paddingX*2

	face, lines, usedSize, fits, err := cf.fitCaption(clinicName, fontSize, maxWidth)
	if err != nil {
		return err
	}
	defer face.Close()
	if !fits {
		logging.Warn().Str("clinic_name", clinicName).Int("font_size", usedSize).
			Msg("caption may overflow at minimum font size")
	}

	metrics := face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil()
	lineSpacing := intMax(4, usedSize/5)
	paddingY := intMax(10, usedSize*2/5)
	captionHeight := paddingY*2 + lineHeight*len(lines) + lineSpacing*(len(lines)-1)

	out := image.NewRGBA(image.Rect(0, 0, qrWidth, qrHeight+captionHeight))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(0, 0, qrWidth, qrHeight), qrImage, bounds.Min, draw.Src)

	drawer := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	y := qrHeight + paddingY + metrics.Ascent.Ceil()
	for _, line := range lines {
		lineWidth := drawer.MeasureString(line).Ceil()
		x := intMax(0, (qrWidth-lineWidth)/2)
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(line)
		y += lineHeight + lineSpacing
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return errors.WrapIO("create", filepath.Dir(outPath), err)
	}
	dst, err := os.Create(outPath)
	if err != nil {
		return errors.WrapIO("create", outPath, err)
	}
	defer dst.Close()
	if err := png.Encode(dst, out); err != nil {
		return errors.WrapIO("write", outPath, err)
	}
	return nil
}

// fitCaption steps the font size down from the configured size until the
// caption wraps into at most two lines.
func (cf *CaptionFont) fitCaption(text string, fontSize, maxWidth int) (font.Face, []string, int, bool, error) {
	for size := fontSize; size >= minCaptionSize; size-- {
		face, err := cf.face(size)
		if err != nil {
			return nil, nil, 0, false, err
		}
		measure := faceMeasurer(face)
		lines, fits := wrapCaption(text, measure, maxWidth)
		if fits {
			return face, lines, size, true, nil
		}
		face.Close()
	}

	face, err := cf.face(minCaptionSize)
	if err != nil {
		return nil, nil, 0, false, err
	}
	lines, fits := wrapCaption(text, faceMeasurer(face), maxWidth)
	return face, lines, minCaptionSize, fits, nil
}

func (cf *CaptionFont) face(size int) (font.Face, error) {
	face, err := opentype.NewFace(cf.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating font face at size %d: %w", size, err)
	}
	return face, nil
}

func faceMeasurer(face font.Face) func(string) int {
	d := &font.Drawer{Face: face}
	return func(s string) int {
		return d.MeasureString(s).Ceil()
	}
}

// wrapCaption splits text into at most two lines that each measure within
// maxWidth. Word wrapping is tried first; names without spaces, or with a
// single oversized word, fall back to per-rune wrapping. The second return
// reports whether everything fit.
func wrapCaption(text string, measure func(string) int, maxWidth int) ([]string, bool) {
	if text == "" {
		return []string{""}, true
	}
	if strings.Contains(text, " ") {
		words := strings.Split(text, " ")
		for _, w := range words {
			if w != "" && measure(w) > maxWidth {
				return wrapRunes(text, measure, maxWidth)
			}
		}
		return wrapWords(words, measure, maxWidth)
	}
	return wrapRunes(text, measure, maxWidth)
}

func wrapWords(words []string, measure func(string) int, maxWidth int) ([]string, bool) {
	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
		if len(lines) == 2 {
			return lines, false
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines, len(lines) <= 2
}

func wrapRunes(text string, measure func(string) int, maxWidth int) ([]string, bool) {
	var lines []string
	current := ""
	for _, r := range text {
		if current == "" && r == ' ' {
			continue
		}
		candidate := current + string(r)
		if measure(candidate) <= maxWidth || current == "" {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = string(r)
		if len(lines) == 2 {
			return lines, false
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines, len(lines) <= 2
}

func intMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}
