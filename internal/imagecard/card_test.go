package imagecard

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func decodeCard(t *testing.T, uri string) []byte {
	t.Helper()
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	return raw
}

func TestRenderProducesSquarePNG(t *testing.T) {
	uri, err := Render("a quiet seaside town at dusk")
	require.NoError(t, err)

	raw := decodeCard(t, uri)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, cardSize, img.Bounds().Dx())
	assert.Equal(t, cardSize, img.Bounds().Dy())
}

func TestRenderDeterministic(t *testing.T) {
	a, err := Render("same description")
	require.NoError(t, err)
	b, err := Render("same description")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderLongDescriptionStillFits(t *testing.T) {
	long := strings.Repeat("a very long description of an imagined scene ", 40)
	uri, err := Render(long)
	require.NoError(t, err)

	raw := decodeCard(t, uri)
	_, err = png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
}

func testContext(t *testing.T) *gg.Context {
	t.Helper()
	fontFace, err := face()
	require.NoError(t, err)
	dc := gg.NewContext(cardSize, cardSize)
	dc.SetFontFace(fontFace)
	return dc
}

func TestLayoutWrapsSpacelessChinese(t *testing.T) {
	dc := testContext(t)
	desc := strings.Repeat("海边的黄昏天空泛着橘红色远处有一艘小船", 100)

	lines := layout(dc, desc)
	require.True(t, len(lines) > 1, "spaceless text must still wrap")
	assert.LessOrEqual(t, len(lines), maxLines)
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], "…"))

	maxWidth := float64(cardSize - 2*padding)
	for _, line := range lines[:len(lines)-1] {
		w, _ := dc.MeasureString(line)
		assert.LessOrEqual(t, w, maxWidth)
	}
}

func TestLayoutShortChineseSingleLine(t *testing.T) {
	dc := testContext(t)
	lines := layout(dc, "海边的黄昏")
	require.Len(t, lines, 1)
	assert.Equal(t, "海边的黄昏", lines[0])
}

func TestLoadFaceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.ttf")
	require.NoError(t, os.WriteFile(path, goregular.TTF, 0o644))

	fontFace, err := loadFace(path, fontSize)
	require.NoError(t, err)
	assert.NotNil(t, fontFace)

	_, err = loadFace(filepath.Join(t.TempDir(), "missing.ttf"), fontSize)
	assert.Error(t, err)
}
