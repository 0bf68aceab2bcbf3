// Package poster draws PNG share cards for catalog fonts.
//
// The card cannot use the web font itself, so it is set in the Go fonts:
// Go Mono for monospaced catalog fonts, Go sans for the rest.
package poster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stdiopt/gowasm-fontpick/fontpick/catalog"
	"github.com/stdiopt/gowasm-fontpick/fontpick/specimen"
)

const (
	DefaultWidth  = 1200
	DefaultHeight = 630
	margin        = 64
)

var (
	background = colorful.Color{R: 0.04, G: 0.04, B: 0.04}
	foreground = colorful.Color{R: 0.98, G: 0.98, B: 0.98}
	muted      = colorful.Color{R: 0.63, G: 0.63, B: 0.67}
	chip       = colorful.Color{R: 0.15, G: 0.15, B: 0.16}
)

// Renderer draws and caches cards.
type Renderer struct {
	width  int
	height int
	fonts  FontCache

	mu    sync.Mutex
	cards map[string][]byte
}

// New returns a Renderer for cards of the given size.
func New(width, height int) (*Renderer, error) {
	fonts, err := newFontCache()
	if err != nil {
		return nil, err
	}
	return &Renderer{
		width:  width,
		height: height,
		fonts:  fonts,
		cards:  map[string][]byte{},
	}, nil
}

// PNG returns the encoded card for font, drawing it on first use.
func (r *Renderer) PNG(font catalog.Font) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if buf, ok := r.cards[font.ID]; ok {
		return buf, nil
	}
	var b bytes.Buffer
	if err := png.Encode(&b, r.Render(font)); err != nil {
		return nil, err
	}
	r.cards[font.ID] = b.Bytes()
	return b.Bytes(), nil
}

// Render draws the card for font.
func (r *Renderer) Render(font catalog.Font) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	gc := draw2dimg.NewGraphicContext(img)
	gc.FontCache = r.fonts

	w, h := float64(r.width), float64(r.height)
	accent := font.Accent()

	// backdrop, tinted towards the font accent
	gc.SetFillColor(rgba(background.BlendLab(accent, 0.12)))
	draw2dkit.Rectangle(gc, 0, 0, w, h)
	gc.Fill()

	gc.SetFillColor(rgba(accent))
	draw2dkit.Rectangle(gc, 0, 0, w, 8)
	gc.Fill()

	face := sansData(draw2d.FontStyleBold)
	if font.HasTag("mono") || font.HasTag("code") {
		face = monoData()
	}

	gc.SetFontData(face)
	gc.SetFillColor(rgba(foreground))
	gc.SetFontSize(44)
	gc.FillStringAt(specimen.Headline, margin, h*0.42)

	gc.SetFontData(sansData(draw2d.FontStyleNormal))
	gc.SetFontSize(24)
	gc.SetFillColor(rgba(muted))
	gc.FillStringAt(specimen.Tagline, margin, h*0.42+56)

	// footer: name, tags, install command
	gc.SetFontData(sansData(draw2d.FontStyleBold))
	gc.SetFontSize(22)
	gc.SetFillColor(rgba(foreground))
	gc.FillStringAt(font.Name, margin, h-margin-48)

	x := float64(margin)
	gc.SetFontData(sansData(draw2d.FontStyleNormal))
	gc.SetFontSize(13)
	for _, tag := range font.Tags {
		left, _, right, _ := gc.GetStringBounds(tag)
		tw := right - left
		gc.SetFillColor(rgba(chip))
		draw2dkit.RoundedRectangle(gc, x, h-margin-24, x+tw+20, h-margin+2, 13, 13)
		gc.Fill()
		gc.SetFillColor(rgba(accent))
		gc.FillStringAt(tag, x+10, h-margin-6)
		x += tw + 28
	}

	gc.SetFontData(monoData())
	gc.SetFontSize(14)
	gc.SetFillColor(rgba(muted))
	cmd := font.InstallCommand()
	left, _, right, _ := gc.GetStringBounds(cmd)
	gc.FillStringAt(cmd, w-margin-(right-left), h-margin-6)

	return img
}

func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
