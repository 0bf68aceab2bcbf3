//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"syscall/js"

	"github.com/stdiopt/gowasm-fontpick/fontpick/follow"
	"github.com/stdiopt/gowasm-fontpick/fontpick/specimen"
)

const wsOpen = 1

// follower mirrors font changes with the other viewers of a room.
type follower struct {
	room string
	ws   js.Value
	log  *slog.Logger

	mu   sync.Mutex
	last string // last font sent or received, not echoed back
}

func startFollow(ctx context.Context, room string, nav *specimen.Navigator, log *slog.Logger) *follower {
	loc := js.Global().Get("location")
	scheme := "ws:"
	if loc.Get("protocol").String() == "https:" {
		scheme = "wss:"
	}
	addr := fmt.Sprintf("%s//%s/follow?room=%s", scheme, loc.Get("host").String(), url.QueryEscape(room))

	f := &follower{
		room: room,
		ws:   js.Global().Get("WebSocket").New(addr),
		log:  log.With("room", room),
	}

	onmessage := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		var m follow.Message
		if err := json.Unmarshal([]byte(args[0].Get("data").String()), &m); err != nil {
			f.log.Warn("bad follow message", "err", err)
			return nil
		}
		if m.FontID == "" {
			return nil
		}
		f.seen(m.FontID)
		go func() {
			if err := nav.Show(ctx, m.FontID); err != nil {
				f.log.Warn("cannot follow", "font", m.FontID, "err", err)
			}
		}()
		return nil
	})
	onclose := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		f.log.Info("follow connection closed")
		return nil
	})
	f.ws.Set("onmessage", onmessage)
	f.ws.Set("onclose", onclose)

	nav.OnChange(func(s specimen.State) {
		if !s.Ready || s.Transitioning {
			return
		}
		f.publish(s.Font.ID)
	})
	return f
}

// seen records id as current and reports whether it changed.
func (f *follower) seen(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == id {
		return false
	}
	f.last = id
	return true
}

func (f *follower) publish(id string) {
	if !f.seen(id) {
		return
	}
	if f.ws.Get("readyState").Int() != wsOpen {
		return
	}
	buf, err := json.Marshal(follow.Message{Room: f.room, FontID: id})
	if err != nil {
		return
	}
	f.ws.Call("send", string(buf))
}
