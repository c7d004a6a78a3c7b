// Package thumbnail renders title images from a fixed template.
//
// The title is centered in a horizontal band of the template artwork. Long
// titles shrink the font step by step until the rendered width fits the band
// or the size floor is reached; the vertical center shifts slightly with the
// final size to keep balance against the banner art above the band.
package thumbnail

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"kamishibai/internal/config"
	"kamishibai/internal/logging"
)

const (
	bandCenterX  = 640
	bandMaxWidth = 760
	maxFontSize  = 90
	minFontSize  = 35
	fontSizeStep = 5
	strokeOffset = 3
)

// Composer renders title images. The zero value is not usable; use New.
type Composer struct {
	templatePath string
	typeface     *opentype.Font
	logger       *slog.Logger
}

// New builds a Composer for the configured template and font. A font that
// cannot be read or parsed is not fatal: rendering falls back to the built-in
// fixed-size face with width fitting disabled.
func New(cfg config.Thumbnail, logger *slog.Logger) *Composer {
	logger = logging.WithComponent(logger, "thumbnail")
	c := &Composer{templatePath: cfg.TemplateImage, logger: logger}

	data, err := os.ReadFile(cfg.FontPath)
	if err != nil {
		logger.Warn("scalable font unavailable, using built-in face", logging.String("font", cfg.FontPath), logging.Error(err))
		return c
	}
	collection, err := opentype.ParseCollection(data)
	if err != nil {
		logger.Warn("font parse failed, using built-in face", logging.String("font", cfg.FontPath), logging.Error(err))
		return c
	}
	typeface, err := collection.Font(0)
	if err != nil {
		logger.Warn("font collection empty, using built-in face", logging.String("font", cfg.FontPath), logging.Error(err))
		return c
	}
	c.typeface = typeface
	return c
}

// Render draws title onto the template and writes the result as PNG to
// outputPath. A missing or unreadable template is fatal for the item.
func (c *Composer) Render(title, outputPath string) error {
	file, err := os.Open(c.templatePath)
	if err != nil {
		return fmt.Errorf("open template %s: %w", c.templatePath, err)
	}
	template, _, err := image.Decode(file)
	file.Close()
	if err != nil {
		return fmt.Errorf("decode template %s: %w", c.templatePath, err)
	}

	canvas := image.NewRGBA(template.Bounds())
	draw.Draw(canvas, canvas.Bounds(), template, template.Bounds().Min, draw.Src)

	face, size, err := c.fitFace(title)
	if err != nil {
		return err
	}
	defer face.Close()

	drawOutlinedTitle(canvas, face, title, bandCenterY(size))

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create thumbnail %s: %w", outputPath, err)
	}
	if err := png.Encode(out, canvas); err != nil {
		_ = out.Close()
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close thumbnail: %w", err)
	}

	c.logger.Debug("thumbnail rendered", logging.String(logging.FieldTitle, title), logging.Int("font_size", size))
	return nil
}

// fitFace picks the largest font size whose rendered title fits the band.
// Without a scalable font the built-in face is returned and the width
// constraint is treated as unbounded.
func (c *Composer) fitFace(title string) (font.Face, int, error) {
	if c.typeface == nil {
		return basicfont.Face7x13, maxFontSize, nil
	}

	size := fitSize(func(size int) (int, error) {
		face, err := c.faceAt(size)
		if err != nil {
			return 0, err
		}
		defer face.Close()
		return font.MeasureString(face, title).Ceil(), nil
	})

	face, err := c.faceAt(size)
	if err != nil {
		return nil, 0, err
	}
	return face, size, nil
}

func (c *Composer) faceAt(size int) (font.Face, error) {
	face, err := opentype.NewFace(c.typeface, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build %dpx face: %w", size, err)
	}
	return face, nil
}

// fitSize runs the monotonic shrink loop: start at the maximum size and step
// down while the measured width exceeds the band, stopping at the floor. The
// size strictly decreases each iteration, so the loop terminates within
// (maxFontSize-minFontSize)/fontSizeStep steps. A measurement error keeps the
// current size rather than failing the render.
func fitSize(measure func(size int) (int, error)) int {
	size := maxFontSize
	width, err := measure(size)
	if err != nil {
		return size
	}
	for width > bandMaxWidth && size > minFontSize {
		size -= fontSizeStep
		next, err := measure(size)
		if err != nil {
			break
		}
		width = next
	}
	return size
}

// bandCenterY returns the vertical center of the text band for a font size.
// Larger faces sit a little higher to stay clear of the banner artwork.
func bandCenterY(size int) int {
	switch {
	case size >= 85:
		return 438
	case size >= 75:
		return 443
	case size >= 65:
		return 448
	case size >= 55:
		return 452
	default:
		return 455
	}
}

// drawOutlinedTitle draws title centered at (bandCenterX, centerY) with an
// eight-direction black stroke under a white fill.
func drawOutlinedTitle(dst draw.Image, face font.Face, title string, centerY int) {
	drawer := &font.Drawer{Dst: dst, Face: face}

	width := drawer.MeasureString(title)
	metrics := face.Metrics()
	height := metrics.Ascent + metrics.Descent

	x := fixed.I(bandCenterX) - width/2
	baseline := fixed.I(centerY) - height/2 + metrics.Ascent

	drawer.Src = image.NewUniform(color.Black)
	for dx := -strokeOffset; dx <= strokeOffset; dx += strokeOffset {
		for dy := -strokeOffset; dy <= strokeOffset; dy += strokeOffset {
			if dx == 0 && dy == 0 {
				continue
			}
			drawer.Dot = fixed.Point26_6{X: x + fixed.I(dx), Y: baseline + fixed.I(dy)}
			drawer.DrawString(title)
		}
	}

	drawer.Src = image.NewUniform(color.White)
	drawer.Dot = fixed.Point26_6{X: x, Y: baseline}
	drawer.DrawString(title)
}
