//go:build js && wasm

// fontpick browser client
// compile: GOOS=js GOARCH=wasm go build -o main.wasm ./fontpick/client
package main

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"syscall/js"

	"github.com/stdiopt/gowasm-fontpick/fontpick/catalog"
	"github.com/stdiopt/gowasm-fontpick/fontpick/fontload"
	"github.com/stdiopt/gowasm-fontpick/fontpick/specimen"
)

func main() {
	c := NewClient()
	defer c.Close()

	c.Start()
}

type Client struct {
	done chan struct{}
	ctx  context.Context
	log  *slog.Logger

	doc  js.Value
	nav  *specimen.Navigator
	view *view
}

func NewClient() *Client {
	log := slog.Default()
	doc := js.Global().Get("document")

	opts := []fontload.Option{fontload.WithLogger(log)}
	if fs := newFaceSet(doc); fs != nil {
		opts = append(opts, fontload.WithFaces(fs))
	}
	loader := fontload.New(newDocument(doc), opts...)

	nav := specimen.New(catalog.Fonts, loader,
		specimen.WithClipboard(newClipboard()),
		specimen.WithLogger(log),
	)
	return &Client{
		done: make(chan struct{}),
		ctx:  context.Background(),
		log:  log,
		doc:  doc,
		nav:  nav,
	}
}

func (c *Client) Start() {
	c.view = newView(c.doc)
	c.nav.OnChange(c.view.Render)
	c.view.Render(c.nav.State())

	if room := roomParam(); room != "" {
		startFollow(c.ctx, room, c.nav, c.log)
	}
	c.initEvents()

	go c.nav.Start(c.ctx)

	<-c.done
}

func (c *Client) Close() {
	c.nav.Close()
	close(c.done)
}

func (c *Client) initEvents() {
	go func() {
		keyEvt := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			e := args[0]
			tag, editable := "", false
			if target := e.Get("target"); target.Truthy() {
				if t := target.Get("tagName"); t.Type() == js.TypeString {
					tag = t.String()
				}
				editable = target.Get("isContentEditable").Truthy()
			}
			switch specimen.KeyAction(e.Get("code").String(), tag, editable) {
			case specimen.ActionNext:
				e.Call("preventDefault")
				go c.nav.Next(c.ctx)
			case specimen.ActionPrevious:
				e.Call("preventDefault")
				go c.nav.Previous(c.ctx)
			}
			return nil
		})
		defer keyEvt.Release()

		shuffleEvt := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			go c.nav.Next(c.ctx)
			return nil
		})
		defer shuffleEvt.Release()

		copyEvt := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			// the error is logged by the navigator, the button just stays as is
			go c.nav.Copy(c.ctx)
			return nil
		})
		defer copyEvt.Release()

		js.Global().Call("addEventListener", "keydown", keyEvt)
		c.doc.Call("getElementById", "shuffle").Call("addEventListener", "click", shuffleEvt)
		c.doc.Call("getElementById", "copy").Call("addEventListener", "click", copyEvt)

		<-c.done
	}()
}

// roomParam reads ?room= from the page URL.
func roomParam() string {
	search := js.Global().Get("location").Get("search").String()
	q, err := url.ParseQuery(strings.TrimPrefix(search, "?"))
	if err != nil {
		return ""
	}
	return q.Get("room")
}
