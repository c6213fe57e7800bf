package usage

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"
)

// Feed broadcasts usage events to websocket subscribers (dashboards,
// CLIs tailing spend). A subscriber whose buffer is full misses that
// event; the feed never waits on it.
type Feed struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[chan []byte]struct{})}
}

// Consume implements Sink: serialize once, fan out non-blocking.
func (f *Feed) Consume(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		select {
		case ch <- payload:
		default:
			// Subscriber is not keeping up; skip this event for it.
		}
	}
}

func (f *Feed) subscribe() chan []byte {
	ch := make(chan []byte, 64)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

func (f *Feed) unsubscribe(ch chan []byte) {
	f.mu.Lock()
	delete(f.subs, ch)
	f.mu.Unlock()
}

// ServeHTTP upgrades the connection and streams events until the client
// goes away.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("usage feed: websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ch := f.subscribe()
	defer f.unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-ch:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
