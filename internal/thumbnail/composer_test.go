package thumbnail_test

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"kamishibai/internal/config"
	"kamishibai/internal/logging"
	"kamishibai/internal/thumbnail"
)

func writeTemplate(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1280, 720))
	for y := 0; y < 720; y++ {
		for x := 0; x < 1280; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 70, B: 120, A: 255})
		}
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	defer file.Close()
	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode template: %v", err)
	}
}

func TestRenderWithBuiltinFaceFallback(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "template.jpg")
	writeTemplate(t, templatePath)

	composer := thumbnail.New(config.Thumbnail{
		TemplateImage: templatePath,
		FontPath:      filepath.Join(dir, "missing-font.ttc"),
	}, logging.NewNop())

	outPath := filepath.Join(dir, "thumbnail.png")
	if err := composer.Render("Momotaro", outPath); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	file, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()
	rendered, err := png.Decode(file)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if rendered.Bounds().Dx() != 1280 || rendered.Bounds().Dy() != 720 {
		t.Fatalf("unexpected output bounds: %v", rendered.Bounds())
	}

	// The band must contain both stroke and fill pixels over the flat
	// template color.
	var sawWhite, sawBlack bool
	for y := 420; y < 480 && !(sawWhite && sawBlack); y++ {
		for x := 200; x < 1080; x++ {
			r, g, b, _ := rendered.At(x, y).RGBA()
			switch {
			case r > 0xf000 && g > 0xf000 && b > 0xf000:
				sawWhite = true
			case r < 0x0800 && g < 0x0800 && b < 0x0800:
				sawBlack = true
			}
		}
	}
	if !sawWhite || !sawBlack {
		t.Fatalf("expected outlined text pixels in band: white=%v black=%v", sawWhite, sawBlack)
	}
}

func TestRenderMissingTemplateIsFatal(t *testing.T) {
	dir := t.TempDir()
	composer := thumbnail.New(config.Thumbnail{
		TemplateImage: filepath.Join(dir, "absent.jpg"),
	}, logging.NewNop())

	if err := composer.Render("桃太郎", filepath.Join(dir, "out.png")); err == nil {
		t.Fatal("expected error for missing template")
	}
}

func TestRenderCorruptTemplateIsFatal(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "template.jpg")
	if err := os.WriteFile(templatePath, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	composer := thumbnail.New(config.Thumbnail{TemplateImage: templatePath}, logging.NewNop())

	if err := composer.Render("桃太郎", filepath.Join(dir, "out.png")); err == nil {
		t.Fatal("expected error for corrupt template")
	}
}
