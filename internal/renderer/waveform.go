package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/linuxmatters/jivedeck/internal/audio"
	"github.com/linuxmatters/jivedeck/internal/config"
)

// ErrNoPeaks is returned when there is nothing to draw.
var ErrNoPeaks = errors.New("waveform has no columns")

const (
	margin      = 16
	minFontSize = 8.0
)

var background = color.RGBA{R: 16, G: 16, B: 20, A: 255}

// Options control the waveform image.
type Options struct {
	Height  int
	Title   string
	Caption string     // drawn after the title, faint
	Wave    color.RGBA // unplayed columns
	Played  color.RGBA // columns before the playhead, also the title colour
	Cursor  float64    // playhead as a fraction of the track, 0 draws none
}

// DefaultOptions returns the stock palette at the configured height.
func DefaultOptions() Options {
	return Options{
		Height: config.WaveformHeight,
		Wave:   color.RGBA{R: config.WaveColorR, G: config.WaveColorG, B: config.WaveColorB, A: 255},
		Played: color.RGBA{R: config.TextColorR, G: config.TextColorG, B: config.TextColorB, A: 255},
	}
}

// ParseColor converts a hex colour from the command line.
func ParseColor(hex string) (color.RGBA, error) {
	r, g, b, err := config.ParseHexColor(hex)
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Waveform draws one column per peak, mirrored around the centre line.
// Columns are brightest at the centre and fade towards the peaks.
func Waveform(peaks []audio.Peak, opts Options) (*image.RGBA, error) {
	if len(peaks) == 0 {
		return nil, ErrNoPeaks
	}
	if opts.Height <= 0 {
		opts.Height = config.WaveformHeight
	}

	width := len(peaks)
	img := image.NewRGBA(image.Rect(0, 0, width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	top := 0
	if opts.Title != "" {
		top = titleBand(opts.Height)
	}
	centerY := top + (opts.Height-top)/2
	half := (opts.Height - top) / 2

	// Brightness falls from 1.0 at the centre to 0.5 at full scale
	alphaTable := make([]float64, half+1)
	for i := range alphaTable {
		alphaTable[i] = 1.0 - float64(i)/float64(max(half, 1))*0.5
	}

	playedCols := int(opts.Cursor * float64(width))
	for x, p := range peaks {
		c := opts.Wave
		if x < playedCols {
			c = opts.Played
		}
		yTop := centerY - int(math.Round(clampUnit(p.Max)*float64(half)))
		yBottom := centerY - int(math.Round(clampUnit(p.Min)*float64(half)))
		if yTop > yBottom {
			yTop, yBottom = centerY, centerY
		}
		for y := yTop; y <= yBottom; y++ {
			dist := y - centerY
			if dist < 0 {
				dist = -dist
			}
			setShaded(img, x, y, c, alphaTable[min(dist, half)])
		}
	}

	if opts.Cursor > 0 && playedCols < width {
		for y := top; y < opts.Height; y++ {
			img.SetRGBA(playedCols, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	if opts.Title != "" {
		if err := drawTitle(img, opts); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// SavePNG writes img to path.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

func setShaded(img *image.RGBA, x, y int, c color.RGBA, factor float64) {
	i := img.PixOffset(x, y)
	img.Pix[i] = uint8(float64(c.R) * factor)
	img.Pix[i+1] = uint8(float64(c.G) * factor)
	img.Pix[i+2] = uint8(float64(c.B) * factor)
	img.Pix[i+3] = 255
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(-1, min(v, 1))
}

// titleBand is the height reserved above the waveform for the title.
func titleBand(height int) int {
	return min(height/4, int(config.WaveformTitle*2))
}

// drawTitle writes the title at the top left, shrinking the font until the
// title and caption fit the image width.
func drawTitle(img *image.RGBA, opts Options) error {
	parsed, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}

	maxWidth := img.Bounds().Dx() - 2*margin
	text := opts.Title
	if opts.Caption != "" {
		text += "  " + opts.Caption
	}

	size := config.WaveformTitle
	var face font.Face
	for {
		face = truetype.NewFace(parsed, &truetype.Options{Size: size, DPI: 72})
		if width, _ := measureText(face, text); width <= maxWidth || size <= minFontSize {
			break
		}
		face.Close()
		size -= 1.0
	}
	defer face.Close()

	ascent := face.Metrics().Ascent.Ceil()
	baseline := (titleBand(img.Bounds().Dy())-ascent)/2 + ascent

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(opts.Played),
		Face: face,
		Dot:  freetype.Pt(margin, baseline),
	}
	d.DrawString(opts.Title)

	if opts.Caption != "" {
		faint := color.RGBA{R: opts.Played.R / 2, G: opts.Played.G / 2, B: opts.Played.B / 2, A: 255}
		d.Src = image.NewUniform(faint)
		d.DrawString("  " + opts.Caption)
	}
	return nil
}

// measureText returns the pixel width of text and its bounds.
func measureText(face font.Face, text string) (int, fixed.Rectangle26_6) {
	d := &font.Drawer{Face: face}
	bounds, _ := d.BoundString(text)
	return (bounds.Max.X - bounds.Min.X).Ceil(), bounds
}
