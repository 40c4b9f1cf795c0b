package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/crewjam/rfc5424"
)

// sdID is the structured-data element that carries record attributes.
const sdID = "meta@1"

// rfc5424Handler frames every record as one RFC 5424 syslog line.
type rfc5424Handler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	appName   string
	hostname  string
	processID string
	attrs     []slog.Attr
	prefix    string
}

func newRFC5424Handler(w io.Writer, appName string, level slog.Leveler) *rfc5424Handler {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "localhost"
	}
	return &rfc5424Handler{
		mu:        &sync.Mutex{},
		w:         w,
		level:     level,
		appName:   appName,
		hostname:  hostname,
		processID: strconv.Itoa(os.Getpid()),
	}
}

func (h *rfc5424Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.level != nil {
		minLevel = h.level.Level()
	}
	return level >= minLevel
}

func (h *rfc5424Handler) Handle(_ context.Context, record slog.Record) error {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	msg := rfc5424.Message{
		Priority:  rfc5424.User | severity(record.Level),
		Timestamp: ts.UTC(),
		Hostname:  h.hostname,
		AppName:   h.appName,
		ProcessID: h.processID,
		Message:   []byte(record.Message),
	}

	for _, a := range h.attrs {
		addDatum(&msg, "", a)
	}
	record.Attrs(func(a slog.Attr) bool {
		addDatum(&msg, h.prefix, a)
		return true
	})

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return fmt.Errorf("frame rfc5424 message: %w", err)
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *rfc5424Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *rfc5424Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func addDatum(msg *rfc5424.Message, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, child := range a.Value.Group() {
			addDatum(msg, prefix+a.Key+".", child)
		}
		return
	}
	msg.AddDatum(sdID, paramName(prefix+a.Key), a.Value.String())
}

// paramName strips characters RFC 5424 forbids in SD-PARAM names.
func paramName(key string) string {
	key = strings.Map(func(r rune) rune {
		if r <= 32 || r >= 127 || r == '=' || r == ']' || r == '"' {
			return '_'
		}
		return r
	}, key)
	if len(key) > 32 {
		key = key[:32]
	}
	return key
}

func severity(level slog.Level) rfc5424.Priority {
	switch {
	case level >= slog.LevelError:
		return rfc5424.Error
	case level >= slog.LevelWarn:
		return rfc5424.Warning
	case level >= slog.LevelInfo:
		return rfc5424.Info
	default:
		return rfc5424.Debug
	}
}
