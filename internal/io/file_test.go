package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input     string
		asciiOnly bool
		want      string
	}{
		{"normal-file", false, "normal-file"},
		{"file:with:colons", false, "filewithcolons"},
		{"file<with>brackets", false, "filewithbrackets"},
		{`file/with\slashes`, false, "filewithslashes"},
		{"file|with|pipes", false, "filewithpipes"},
		{"file?with*wildcards", false, "filewithwildcards"},
		{`file"with'quotes`, false, "filewithquotes"},
		{"tab\there\x00\x1f", false, "tabhere"},
		{"trailing dots...", false, "trailing dots..."},
		{" a. ", false, " a. "},
		{"A  -  Two   Spaces", false, "A  -  Two   Spaces"},
		{"Sammy Davis Jr. - Mr. Bojangles, Jr.", false, "Sammy Davis Jr. - Mr. Bojangles, Jr."},
		{"Sigur Rós - Hoppípolla", false, "Sigur Rós - Hoppípolla"},
		{"Sigur Rós - Hoppípolla", true, "Sigur Rs - Hopppolla"},
		{"AC/DC - Back In Black", false, "ACDC - Back In Black"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.input, tt.asciiOnly))
		})
	}
}

func TestSanitizeFileName_Idempotent(t *testing.T) {
	inputs := []string{
		`<>:'"/\|?*`,
		"  leading and trailing . . ",
		"x\u0085y​z",
		"Beyoncé, JAY-Z - Drunk in Love?",
		"dots... and   spaces ...",
	}

	for _, input := range inputs {
		for _, ascii := range []bool{false, true} {
			once := SanitizeFileName(input, ascii)
			assert.Equal(t, once, SanitizeFileName(once, ascii), "input %q", input)
			assert.NotContainsf(t, once, ":", "input %q", input)
			assert.NotContainsf(t, once, "?", "input %q", input)
		}
	}
}

func TestPartFile_Commit(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "A - T.flac")

	part := NewPartFile(final)
	assert.Equal(t, filepath.Join(dir, ".A - T.flac.part"), part.Path())
	assert.Equal(t, final, part.Final())

	require.NoError(t, part.Write([]byte("audio")))
	assert.False(t, Exists(final))

	require.NoError(t, part.Commit())
	require.NoError(t, part.Discard())

	data, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))
	assert.False(t, Exists(part.Path()))
}

func TestPartFile_Discard(t *testing.T) {
	dir := t.TempDir()
	part := NewPartFile(filepath.Join(dir, "x.mp3"))

	require.NoError(t, part.Discard(), "discard before write")
	require.NoError(t, part.Write([]byte("partial")))
	require.NoError(t, part.Discard())
	assert.False(t, Exists(part.Path()))
	assert.False(t, Exists(part.Final()))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.True(t, Exists(dir))
	require.NoError(t, EnsureDir(dir))
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageService_PrepareCover(t *testing.T) {
	svc := NewImageService()
	ctx := context.Background()

	out, err := svc.PrepareCover(ctx, testPNG(t, 300, 150), 100)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)

	out, err = svc.PrepareCover(ctx, testPNG(t, 40, 20), 100)
	require.NoError(t, err)
	cfg, err = jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width, "small covers are not enlarged")

	out, err = svc.PrepareCover(ctx, testPNG(t, 40, 20), 0)
	require.NoError(t, err)
	_, err = jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
}

func TestImageService_Errors(t *testing.T) {
	svc := NewImageService()

	_, err := svc.ConvertToJPEG(context.Background(), []byte("not an image"))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.ResizeImage(ctx, testPNG(t, 10, 10), 5, 5)
	assert.ErrorIs(t, err, context.Canceled)
}
