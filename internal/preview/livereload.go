package preview

import (
	"bufio"
	"bytes"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/makesite/internal/logfields"
)

// liveReloadHub streams build states to browsers over server-sent events.
type liveReloadHub struct {
	mu        sync.RWMutex
	nextID    int
	clients   map[int]*lrClient
	closed    bool
	lastState string
	logger    *slog.Logger
}

type lrClient struct {
	id   int
	ch   chan string
	done chan struct{}
}

func newLiveReloadHub(logger *slog.Logger) *liveReloadHub {
	return &liveReloadHub{clients: map[int]*lrClient{}, logger: logger}
}

// ServeHTTP implements the SSE endpoint.
func (h *liveReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	client := &lrClient{ch: make(chan string, 8), done: make(chan struct{})}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	client.id = h.nextID
	h.nextID++
	h.clients[client.id] = client
	current := h.lastState
	h.mu.Unlock()
	defer h.removeClient(client.id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	bw := bufio.NewWriter(w)
	send := func(line string) bool {
		if _, err := bw.WriteString(line); err != nil {
			h.logger.Debug("livereload write", logfields.Error(err))
			return false
		}
		if err := bw.Flush(); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(": connected\n\n") {
		return
	}
	if current != "" && !send(event(current)) {
		return
	}

	hb := time.NewTicker(30 * time.Second)
	defer hb.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.done:
			return
		case <-hb.C:
			if !send(": ping\n\n") {
				return
			}
		case state := <-client.ch:
			if !send(event(state)) {
				return
			}
		}
	}
}

func event(state string) string {
	return "data: {\"state\":\"" + state + "\"}\n\n"
}

func (h *liveReloadHub) removeClient(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.done)
	}
}

// broadcast sends state to every client. Clients that cannot keep up are dropped.
func (h *liveReloadHub) broadcast(state string) {
	h.mu.Lock()
	if h.closed || state == "" || state == h.lastState {
		h.mu.Unlock()
		return
	}
	h.lastState = state
	snapshot := make([]*lrClient, 0, len(h.clients))
	for _, c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	dropped := 0
	for _, c := range snapshot {
		select {
		case c.ch <- state:
		default:
			dropped++
			h.removeClient(c.id)
		}
	}
	h.logger.Debug("livereload broadcast", slog.String("state", state),
		logfields.Count(len(snapshot)), slog.Int("dropped", dropped))
}

func (h *liveReloadHub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// shutdown disconnects every client and stops further broadcasts.
func (h *liveReloadHub) shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = map[int]*lrClient{}
	h.mu.Unlock()
	for _, c := range clients {
		close(c.done)
	}
}

const liveReloadScript = `(() => {
  if (window.__MAKESITE_LR__) return;
  window.__MAKESITE_LR__ = true;
  function connect() {
    const es = new EventSource('/livereload');
    let current = null;
    es.onmessage = (e) => {
      try {
        const p = JSON.parse(e.data);
        if (current === null) { current = p.state; return; }
        if (p.state && p.state !== current) { location.reload(); }
      } catch (_) {}
    };
    es.onerror = () => { es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();
`

var scriptTag = []byte(`<script src="` + scriptPath + `"></script>`)

// injectScript adds the live reload script before </body>, or at the end
// when the page has no body end tag.
func injectScript(page []byte) []byte {
	i := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if i < 0 {
		return append(append([]byte{}, page...), scriptTag...)
	}
	out := make([]byte, 0, len(page)+len(scriptTag))
	out = append(out, page[:i]...)
	out = append(out, scriptTag...)
	return append(out, page[i:]...)
}
