// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"bytes"
	"context"
	"log/slog"
	"runtime"
	"strings"
)

// DefaultThreadKey is the attribute key the Handler and Core read the thread
// name from.
const DefaultThreadKey = "thread"

// defaultThreadName is used when an event carries no thread name.
const defaultThreadName = "goroutine"

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Level is the minimum level handled.  Default: slog.LevelInfo.
	Level slog.Leveler

	// ThreadKey names the attribute holding the thread name.
	// Default: DefaultThreadKey.
	ThreadKey string
}

// Handler is a slog.Handler that forwards records to an Appender.
//
// The rendered message of each event is the record formatted by
// slog.TextHandler; the first error valued attribute becomes the event's
// error.
type Handler struct {
	appender *Appender
	opts     HandlerOptions

	// attrs are all attributes added with WithAttrs, for error and thread
	// lookup.  ops replays WithAttrs and WithGroup onto the text layout.
	attrs []slog.Attr
	ops   []func(slog.Handler) slog.Handler
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler returns a Handler that forwards to a.  opts may be nil.
func NewHandler(a *Appender, opts *HandlerOptions) *Handler {
	h := &Handler{appender: a}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	if h.opts.ThreadKey == "" {
		h.opts.ThreadKey = DefaultThreadKey
	}
	return h
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle implements slog.Handler.  The error is non-nil only when the
// appender does not ignore exceptions and the send failed.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	ev := Event{
		Rendered:  h.render(ctx, r),
		Level:     r.Level.String(),
		LoggerFQN: callerFunction(r.PC),
		Thread:    defaultThreadName,
		Time:      r.Time,
		Message:   r.Message,
	}

	visit := func(a slog.Attr) bool {
		switch v := a.Value.Resolve(); {
		case a.Key == h.opts.ThreadKey && v.Kind() == slog.KindString:
			ev.Thread = v.String()
		case ev.Err == nil && v.Kind() == slog.KindAny:
			if err, ok := v.Any().(error); ok {
				ev.Err = err
			}
		}
		return true
	}
	for _, a := range h.attrs {
		visit(a)
	}
	r.Attrs(visit)

	_, err := h.appender.Append(ctx, ev)
	return err
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := h.clone()
	h2.attrs = append(h2.attrs, attrs...)
	h2.ops = append(h2.ops, func(t slog.Handler) slog.Handler { return t.WithAttrs(attrs) })
	return h2
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.ops = append(h2.ops, func(t slog.Handler) slog.Handler { return t.WithGroup(name) })
	return h2
}

func (h *Handler) clone() *Handler {
	h2 := *h
	h2.attrs = h.attrs[:len(h.attrs):len(h.attrs)]
	h2.ops = h.ops[:len(h.ops):len(h.ops)]
	return &h2
}

// render formats the record as one slog.TextHandler line.
func (h *Handler) render(ctx context.Context, r slog.Record) string {
	var buf bytes.Buffer
	var t slog.Handler = slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.Level(-1 << 10)})
	for _, op := range h.ops {
		t = op(t)
	}
	_ = t.Handle(ctx, r)
	return strings.TrimSuffix(buf.String(), "\n")
}

// callerFunction returns the function name of a program counter, or "".
func callerFunction(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	return frame.Function
}
