//go:build js && wasm

package main

import (
	"fmt"
	"html"
	"strings"
	"syscall/js"

	"github.com/stdiopt/gowasm-fontpick/fontpick/specimen"
)

type view struct {
	specimen js.Value
	headline js.Value
	tagline  js.Value
	loading  js.Value
	name     js.Value
	tags     js.Value
	command  js.Value
	copyBtn  js.Value
	copyLbl  js.Value
	counter  js.Value
}

func newView(doc js.Value) *view {
	el := func(id string) js.Value {
		return doc.Call("getElementById", id)
	}
	v := &view{
		specimen: el("specimen"),
		headline: el("headline"),
		tagline:  el("tagline"),
		loading:  el("loading"),
		name:     el("font-name"),
		tags:     el("font-tags"),
		command:  el("command"),
		copyBtn:  el("copy"),
		copyLbl:  el("copy-label"),
		counter:  el("counter"),
	}
	v.headline.Set("textContent", specimen.Headline)
	v.tagline.Set("textContent", specimen.Tagline)
	v.loading.Set("textContent", specimen.LoadingText)
	return v
}

func (v *view) Render(s specimen.State) {
	v.loading.Set("hidden", s.Ready)
	v.specimen.Set("hidden", !s.Ready)
	v.specimen.Get("classList").Call("toggle", "transitioning", s.Transitioning)
	if !s.Ready {
		return
	}

	v.specimen.Get("style").Set("fontFamily", s.Family)
	v.name.Get("style").Set("fontFamily", s.Family)
	v.name.Set("textContent", s.Font.Name)

	tagsHTML := ""
	for _, t := range s.Font.Tags {
		tagsHTML += fmt.Sprintf(
			`<span class="tag" style="color:%s">%s</span>`,
			s.Accent, html.EscapeString(t),
		)
	}
	v.tags.Set("innerHTML", tagsHTML)

	v.command.Set("textContent", s.Command)
	v.copyBtn.Get("classList").Call("toggle", "copied", s.Copied)
	label := "Copy"
	if s.Copied {
		label = "Copied!"
	}
	v.copyLbl.Set("textContent", label)

	v.counter.Set("textContent", fmt.Sprintf("%d / %d", s.Position, s.Total))
	v.counter.Get("style").Set("color", s.Accent)
	js.Global().Get("document").Set("title", strings.ToLower(s.Font.Name)+" · fontpick")
}
