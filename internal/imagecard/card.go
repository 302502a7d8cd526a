// Package imagecard renders placeholder image cards for image-description
// tags in model replies. No image-generation API is called; the description
// itself becomes the picture.
package imagecard

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	cardSize = 480
	padding  = 48
	fontSize = 26
	// maxLines caps the wrapped description; the last kept line gets an
	// ellipsis when text is cut.
	maxLines = 11

	// fontPathEnv points at a TTF on disk. Descriptions are usually
	// Chinese, and the embedded fallback face has no CJK glyphs, so
	// deployments should set this to a CJK-capable font.
	fontPathEnv = "RURICHAT_CARD_FONT"
)

var (
	faceOnce sync.Once
	faceVal  font.Face
	faceErr  error
)

func face() (font.Face, error) {
	faceOnce.Do(func() {
		if path := os.Getenv(fontPathEnv); path != "" {
			faceVal, faceErr = loadFace(path, fontSize)
			return
		}
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			faceErr = fmt.Errorf("failed to parse embedded font: %w", err)
			return
		}
		faceVal = truetype.NewFace(f, &truetype.Options{Size: fontSize})
	})
	return faceVal, faceErr
}

func loadFace(path string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font file: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// Render draws desc centered and wrapped on a fixed-size white card and
// returns the PNG as a data URI.
func Render(desc string) (string, error) {
	fontFace, err := face()
	if err != nil {
		return "", err
	}

	dc := gg.NewContext(cardSize, cardSize)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(fontFace)
	dc.SetRGB(0.25, 0.25, 0.25)

	lines := layout(dc, strings.TrimSpace(desc))

	lineHeight := fontSize * 1.5
	blockHeight := lineHeight * float64(len(lines))
	startY := (cardSize-blockHeight)/2 + lineHeight/2
	for i, line := range lines {
		y := startY + lineHeight*float64(i)
		dc.DrawStringAnchored(line, cardSize/2, y, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("failed to encode card: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// layout wraps desc to the card's text width and caps it at maxLines with a
// trailing ellipsis. Wrapping measures rune by rune rather than splitting on
// spaces, since Chinese descriptions carry no word boundaries.
func layout(dc *gg.Context, desc string) []string {
	lines := wrapRunes(dc, desc, float64(cardSize-2*padding))
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] = strings.TrimRight(lines[maxLines-1], " ") + "…"
	}
	return lines
}

func wrapRunes(dc *gg.Context, text string, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		var line []rune
		for _, r := range para {
			candidate := string(append(line, r))
			if w, _ := dc.MeasureString(candidate); w > maxWidth && len(line) > 0 {
				lines = append(lines, string(line))
				line = []rune{r}
				continue
			}
			line = append(line, r)
		}
		if len(line) > 0 {
			lines = append(lines, string(line))
		}
	}
	return lines
}
