// Package catalog holds the compiled-in list of specimen fonts.
package catalog

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	monoFallback  = `ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace`
	serifFallback = `ui-serif, Georgia, Cambria, "Times New Roman", Times, serif`
	sansFallback  = `ui-sans-serif, system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif`
)

// Font describes a web font family and where its stylesheet lives.
// ID is unique across the catalog.
type Font struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	URL  string   `json:"url"`
	Tags []string `json:"tags"`
}

// Fonts is the specimen catalog in display order.
var Fonts = []Font{
	{
		ID:   "inter",
		Name: "Inter",
		URL:  "https://fonts.googleapis.com/css2?family=Inter:wght@400;700&display=swap",
		Tags: []string{"clean", "technical", "ui"},
	},
	{
		ID:   "playfair",
		Name: "Playfair Display",
		URL:  "https://fonts.googleapis.com/css2?family=Playfair+Display:wght@400;700&display=swap",
		Tags: []string{"editorial", "elegant", "serif"},
	},
	{
		ID:   "dm-sans",
		Name: "DM Sans",
		URL:  "https://fonts.googleapis.com/css2?family=DM+Sans:wght@400;700&display=swap",
		Tags: []string{"friendly", "modern", "ui"},
	},
	{
		ID:   "fraunces",
		Name: "Fraunces",
		URL:  "https://fonts.googleapis.com/css2?family=Fraunces:wght@400;700&display=swap",
		Tags: []string{"editorial", "warm", "serif"},
	},
	{
		ID:   "outfit",
		Name: "Outfit",
		URL:  "https://fonts.googleapis.com/css2?family=Outfit:wght@400;700&display=swap",
		Tags: []string{"clean", "geometric", "modern"},
	},
	{
		ID:   "bricolage",
		Name: "Bricolage Grotesque",
		URL:  "https://fonts.googleapis.com/css2?family=Bricolage+Grotesque:wght@400;700&display=swap",
		Tags: []string{"expressive", "display", "bold"},
	},
	{
		ID:   "dm-mono",
		Name: "DM Mono",
		URL:  "https://fonts.googleapis.com/css2?family=DM+Mono:wght@400;500&display=swap",
		Tags: []string{"mono", "technical", "code"},
	},
	{
		ID:   "cabinet",
		Name: "Cabinet Grotesk",
		URL:  "https://fonts.googleapis.com/css2?family=Cabinet+Grotesk:wght@400;700&display=swap",
		Tags: []string{"modern", "editorial", "neutral"},
	},
}

// ByID looks up a catalog font.
func ByID(id string) (Font, bool) {
	for _, f := range Fonts {
		if f.ID == id {
			return f, true
		}
	}
	return Font{}, false
}

func (f Font) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Family returns the CSS font-family value, the font itself first and a
// generic stack picked from its tags after it.
func (f Font) Family() string {
	switch {
	case f.HasTag("mono") || f.HasTag("code"):
		return fmt.Sprintf("%q, %s", f.Name, monoFallback)
	case f.HasTag("serif"):
		return fmt.Sprintf("%q, %s", f.Name, serifFallback)
	}
	return fmt.Sprintf("%q, %s", f.Name, sansFallback)
}

// FaceQuery returns the CSS font shorthand used to ask the browser for
// a specific weight, e.g. `700 1rem "DM Sans"`.
func (f Font) FaceQuery(weight int) string {
	return fmt.Sprintf("%d 1rem %q", weight, f.Name)
}

// InstallCommand is the shell command shown under the specimen.
func (f Font) InstallCommand() string {
	return "npx fontpick add " + f.ID
}

func (f Font) String() string {
	return f.ID + " (" + strings.Join(f.Tags, ", ") + ")"
}

// Accent returns a colour derived from the font id. The same font always
// gets the same colour.
func (f Font) Accent() colorful.Color {
	h := fnv.New32a()
	h.Write([]byte(f.ID))
	return colorful.Hsv(float64(h.Sum32()%360), 0.45, 0.95)
}
