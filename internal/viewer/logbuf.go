package viewer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/petervdpas/codeseed/internal/util"
)

// LogEntry is one line of log output. Level and Logger are filled when the
// line is in the plaintext format of the logging pipe.
type LogEntry struct {
	TS     time.Time `json:"ts"`
	Level  string    `json:"level,omitempty"`
	Logger string    `json:"logger,omitempty"`
	Msg    string    `json:"msg"`
}

// LogBuffer keeps the most recent log lines and fans new ones out to SSE
// subscribers. It is the io.Writer the logging pipe is copied into.
type LogBuffer struct {
	mu      sync.Mutex
	entries *util.RingBuffer[LogEntry]

	subs map[chan LogEntry]struct{}

	partial bytes.Buffer
}

func NewLogBuffer(max int) *LogBuffer {
	if max <= 0 {
		max = 500
	}
	return &LogBuffer{
		entries: util.NewRingBuffer[LogEntry](max),
		subs:    make(map[chan LogEntry]struct{}),
	}
}

// Write splits p into lines; a trailing partial line waits for the next call.
func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.partial.Write(p)
	for {
		data := b.partial.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i == -1 {
			break
		}
		line := strings.TrimRight(string(data[:i]), "\r")
		b.partial.Next(i + 1)
		if strings.TrimSpace(line) == "" {
			continue
		}

		e := parseLine(line)
		b.entries.Push(e)
		for ch := range b.subs {
			select {
			case ch <- e:
			default:
				// drop on slow subscriber
			}
		}
	}
	return len(p), nil
}

var levels = map[string]bool{
	"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true,
	"DPANIC": true, "PANIC": true, "FATAL": true,
}

// parseLine splits "ts<TAB>LEVEL<TAB>logger<TAB>caller<TAB>msg". Anything
// else is kept whole as the message.
func parseLine(line string) LogEntry {
	e := LogEntry{TS: time.Now(), Msg: line}
	parts := strings.SplitN(line, "\t", 5)
	if len(parts) < 4 || !levels[parts[1]] {
		return e
	}
	if ts, err := time.Parse(time.RFC3339Nano, parts[0]); err == nil {
		e.TS = ts
	}
	e.Level = strings.ToLower(parts[1])
	e.Logger = parts[2]
	e.Msg = parts[len(parts)-1]
	return e
}

func (b *LogBuffer) Snapshot() []LogEntry {
	return b.entries.Snapshot()
}

// Subscribe returns a channel of new entries. Entries are dropped for a
// subscriber whose channel is full.
func (b *LogBuffer) Subscribe() (<-chan LogEntry, func()) {
	ch := make(chan LogEntry, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			close(ch)
			b.mu.Unlock()
		})
	}
}

func matches(e LogEntry, logger string) bool {
	return logger == "" || strings.HasPrefix(e.Logger, logger)
}

// ServeLogsJSON answers GET /api/logs[?logger=prefix][&limit=n].
func (b *LogBuffer) ServeLogsJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	logger := q.Get("logger")
	limit, _ := strconv.Atoi(q.Get("limit"))
	out := b.entries.Tail(limit, func(e LogEntry) bool { return matches(e, logger) })
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(out)
}

// keepAlive is how often an idle stream gets a comment line, so proxies do
// not cut it.
var keepAlive = 25 * time.Second

// ServeLogsSSE answers GET /api/logs/stream[?logger=prefix][&backlog=n] with
// server-sent events: up to n buffered entries first, then new ones as they
// are written.
func (b *LogBuffer) ServeLogsSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	q := r.URL.Query()
	logger := q.Get("logger")
	keep := func(e LogEntry) bool { return matches(e, logger) }

	// Subscribe before reading the backlog so nothing written in between is
	// lost; an entry may then arrive twice.
	ch, cancel := b.Subscribe()
	defer cancel()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if n, _ := strconv.Atoi(q.Get("backlog")); n > 0 {
		for _, e := range b.entries.Tail(n, keep) {
			writeSSE(w, e)
		}
	}
	flusher.Flush()

	ping := time.NewTicker(keepAlive)
	defer ping.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case e, ok := <-ch:
			if !ok {
				return
			}
			if keep(e) {
				writeSSE(w, e)
				flusher.Flush()
			}
		}
	}
}

func writeSSE(w io.Writer, e LogEntry) {
	data, _ := json.Marshal(e)
	fmt.Fprintf(w, "event: log\ndata: %s\n\n", data)
}
