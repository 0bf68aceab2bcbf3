package poster

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"github.com/llgcode/draw2d"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Names the card faces are registered under.
const (
	faceSans = "go"
	faceMono = "gomono"
)

// FontCache serves the faces a card is drawn with. Unknown faces fall
// back to the regular sans face.
type FontCache map[string]*truetype.Font

func fontKey(fd draw2d.FontData) string {
	return fmt.Sprintf("%s:%d", fd.Name, fd.Style)
}

func (f FontCache) Load(fd draw2d.FontData) (*truetype.Font, error) {
	font, ok := f[fontKey(fd)]
	if !ok {
		return f[fontKey(sansData(draw2d.FontStyleNormal))], nil
	}
	return font, nil
}

func (f FontCache) Store(fd draw2d.FontData, tf *truetype.Font) {
	f[fontKey(fd)] = tf
}

func sansData(style draw2d.FontStyle) draw2d.FontData {
	return draw2d.FontData{Name: faceSans, Family: draw2d.FontFamilySans, Style: style}
}

func monoData() draw2d.FontData {
	return draw2d.FontData{Name: faceMono, Family: draw2d.FontFamilyMono, Style: draw2d.FontStyleNormal}
}

// newFontCache parses the Go fonts into a cache.
func newFontCache() (FontCache, error) {
	faces := []struct {
		data draw2d.FontData
		ttf  []byte
	}{
		{sansData(draw2d.FontStyleNormal), goregular.TTF},
		{sansData(draw2d.FontStyleBold), gobold.TTF},
		{monoData(), gomono.TTF},
	}
	cache := FontCache{}
	for _, f := range faces {
		tf, err := truetype.Parse(f.ttf)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.data.Name, err)
		}
		cache.Store(f.data, tf)
	}
	return cache, nil
}
