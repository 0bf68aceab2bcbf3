//go:build js && wasm

package main

import (
	"context"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/stdiopt/gowasm-fontpick/fontpick/fontload"
)

// call invokes a method and turns a thrown exception into an error.
func call(v js.Value, method string, args ...interface{}) (res js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if jerr, ok := r.(js.Error); ok {
				err = jerr
				return
			}
			err = fmt.Errorf("%s: %v", method, r)
		}
	}()
	return v.Call(method, args...), nil
}

// await blocks until the promise settles or ctx is done. It must not be
// called from inside a js callback.
func await(ctx context.Context, promise js.Value) (js.Value, error) {
	type result struct {
		v   js.Value
		err error
	}
	ch := make(chan result, 1)

	var onResolve, onReject js.Func
	release := func() {
		onResolve.Release()
		onReject.Release()
	}
	onResolve = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		release()
		ch <- result{v: arg(args)}
		return nil
	})
	onReject = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		release()
		ch <- result{err: jsError(arg(args))}
		return nil
	})
	promise.Call("then", onResolve, onReject)

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return js.Undefined(), ctx.Err()
	}
}

func arg(args []js.Value) js.Value {
	if len(args) == 0 {
		return js.Undefined()
	}
	return args[0]
}

func jsError(v js.Value) error {
	if v.Type() == js.TypeObject && v.Get("message").Type() == js.TypeString {
		return errors.New(v.Get("message").String())
	}
	return fmt.Errorf("rejected: %s", v.String())
}

// document attaches font stylesheets to <head>.
type document struct {
	doc  js.Value
	head js.Value
}

func newDocument(doc js.Value) *document {
	return &document{doc: doc, head: doc.Get("head")}
}

func (d *document) Stylesheet(id string) (fontload.Link, bool) {
	el := d.head.Call("querySelector", fmt.Sprintf("link[data-font-id=%q]", id))
	if el.IsNull() {
		return nil, false
	}
	return &link{el: el}, true
}

func (d *document) NewStylesheet(id string) fontload.Link {
	el := d.doc.Call("createElement", "link")
	el.Set("rel", "stylesheet")
	el.Get("dataset").Set("fontId", id)
	return &link{el: el}
}

func (d *document) Attach(l fontload.Link) {
	d.head.Call("append", l.(*link).el)
}

func (d *document) Detach(l fontload.Link) {
	l.(*link).el.Call("remove")
}

type link struct {
	el js.Value
}

func (l *link) SetHref(u string) {
	l.el.Set("href", u)
}

// Ready is true once the browser parsed the sheet.
func (l *link) Ready() bool {
	return l.el.Get("sheet").Truthy()
}

func (l *link) Watch(fn func(error)) {
	var onLoad, onError js.Func
	cleanup := func() {
		l.el.Call("removeEventListener", "load", onLoad)
		l.el.Call("removeEventListener", "error", onError)
		onLoad.Release()
		onError.Release()
	}
	onLoad = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		cleanup()
		fn(nil)
		return nil
	})
	onError = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		cleanup()
		fn(fmt.Errorf("error loading %s", l.el.Get("href").String()))
		return nil
	})
	l.el.Call("addEventListener", "load", onLoad)
	l.el.Call("addEventListener", "error", onError)
}

// faceSet wraps document.fonts.
type faceSet struct {
	fonts js.Value
}

// newFaceSet returns nil when the browser has no FontFaceSet.
func newFaceSet(doc js.Value) fontload.FaceSet {
	fonts := doc.Get("fonts")
	if !fonts.Truthy() {
		return nil
	}
	return &faceSet{fonts: fonts}
}

func (f *faceSet) Load(ctx context.Context, query string) error {
	p, err := call(f.fonts, "load", query)
	if err != nil {
		return err
	}
	_, err = await(ctx, p)
	return err
}

type clipboard struct {
	navigator js.Value
}

func newClipboard() *clipboard {
	return &clipboard{navigator: js.Global().Get("navigator")}
}

func (c *clipboard) WriteText(ctx context.Context, text string) error {
	cb := c.navigator.Get("clipboard")
	if !cb.Truthy() {
		return errors.New("clipboard not available")
	}
	p, err := call(cb, "writeText", text)
	if err != nil {
		return err
	}
	_, err = await(ctx, p)
	return err
}
