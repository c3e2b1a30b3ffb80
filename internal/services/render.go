package services

import (
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"image/color"
	"os"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// renderPalette backs generated avatars and species cards. Picks are
// deterministic (FNV over the entity key) so regenerating an image never
// changes its color.
var renderPalette = []color.NRGBA{
	{R: 0x1F, G: 0x77, B: 0xB4, A: 0xFF},
	{R: 0x2C, G: 0xA0, B: 0x2C, A: 0xFF},
	{R: 0xD6, G: 0x43, B: 0x3B, A: 0xFF},
	{R: 0x94, G: 0x67, B: 0xBD, A: 0xFF},
	{R: 0x8C, G: 0x56, B: 0x4B, A: 0xFF},
	{R: 0xE3, G: 0x77, B: 0xC2, A: 0xFF},
	{R: 0x17, G: 0xBE, B: 0xCF, A: 0xFF},
	{R: 0xBC, G: 0xBD, B: 0x22, A: 0xFF},
	{R: 0xFF, G: 0x7F, B: 0x0E, A: 0xFF},
	{R: 0x39, G: 0x6A, B: 0xB1, A: 0xFF},
}

// colorForKey hashes the key onto the palette.
func colorForKey(key string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(key))))
	return renderPalette[int(h.Sum32())%len(renderPalette)]
}

func nrgbaToHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func parseHexColor(s string) (color.NRGBA, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "#"))
	if len(s) != 6 {
		return color.NRGBA{}, false
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 3 {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: 0xFF}, true
}

func computeInitials(first, last string) string {
	fInit := "?"
	if len(first) > 0 {
		fInit = strings.ToUpper(first[:1])
	}
	lInit := "?"
	if len(last) > 0 {
		lInit = strings.ToUpper(last[:1])
	}
	return fInit + lInit
}

// cardInitials abbreviates a species name: first letter of the first word,
// plus the first letter of the last word when there is more than one.
func cardInitials(name string) string {
	words := strings.Fields(strings.TrimSpace(name))
	switch len(words) {
	case 0:
		return "?"
	case 1:
		return strings.ToUpper(words[0][:1])
	default:
		return strings.ToUpper(words[0][:1]) + strings.ToUpper(words[len(words)-1][:1])
	}
}

// fontLoader reads the TTF named by an env var once, on first use, so the
// server boots without the font and only rendering paths require it.
type fontLoader struct {
	envVar string
	points float64

	once   sync.Once
	parsed *truetype.Font
	face   font.Face
	err    error
}

func newFontLoader(envVar string, points float64) *fontLoader {
	return &fontLoader{envVar: envVar, points: points}
}

func (f *fontLoader) load() {
	f.once.Do(func() {
		path := strings.TrimSpace(os.Getenv(f.envVar))
		if path == "" {
			f.err = fmt.Errorf("env var %s is empty", f.envVar)
			return
		}
		fontBytes, err := os.ReadFile(path)
		if err != nil {
			f.err = fmt.Errorf("failed to read font file: %w", err)
			return
		}
		parsedFont, err := truetype.Parse(fontBytes)
		if err != nil {
			f.err = fmt.Errorf("failed to parse TTF: %w", err)
			return
		}
		f.parsed = parsedFont
		f.face = truetype.NewFace(parsedFont, &truetype.Options{
			Size:    f.points,
			DPI:     72,
			Hinting: font.HintingNone,
		})
	})
}

func (f *fontLoader) Face() (font.Face, error) {
	f.load()
	return f.face, f.err
}

// FaceAt builds a face at a different point size from the same parsed font.
func (f *fontLoader) FaceAt(points float64) (font.Face, error) {
	f.load()
	if f.err != nil {
		return nil, f.err
	}
	return truetype.NewFace(f.parsed, &truetype.Options{
		Size:    points,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
