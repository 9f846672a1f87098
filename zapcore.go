// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Core is a zapcore.Core that forwards entries to an Appender.
//
// The rendered message of each event is the entry formatted by zap's console
// encoder; the first error field becomes the event's error and a string
// field named DefaultThreadKey the thread name.
type Core struct {
	zapcore.LevelEnabler

	appender *Appender
	enc      zapcore.Encoder
	fields   []zapcore.Field
}

var _ zapcore.Core = (*Core)(nil)

// NewCore returns a Core that forwards entries enabled by enab to a.
func NewCore(a *Appender, enab zapcore.LevelEnabler) *Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	return &Core{
		LevelEnabler: enab,
		appender:     a,
		enc:          zapcore.NewConsoleEncoder(cfg),
	}
}

// With implements zapcore.Core.
func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := &Core{
		LevelEnabler: c.LevelEnabler,
		appender:     c.appender,
		enc:          c.enc.Clone(),
		fields:       append(c.fields[:len(c.fields):len(c.fields)], fields...),
	}
	for _, f := range fields {
		f.AddTo(clone.enc)
	}
	return clone
}

// Check implements zapcore.Core.
func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write implements zapcore.Core.  The error is non-nil only when the
// appender does not ignore exceptions and the send failed.
func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	rendered := strings.TrimSuffix(buf.String(), "\n")
	buf.Free()

	ev := Event{
		Rendered:  rendered,
		Level:     ent.Level.CapitalString(),
		LoggerFQN: ent.LoggerName,
		Thread:    defaultThreadName,
		Time:      ent.Time,
		Message:   ent.Message,
	}
	if ent.Caller.Defined && ent.Caller.Function != "" {
		ev.LoggerFQN = ent.Caller.Function
	}

	for _, set := range [][]zapcore.Field{c.fields, fields} {
		for _, f := range set {
			switch {
			case f.Type == zapcore.ErrorType && ev.Err == nil:
				if e, ok := f.Interface.(error); ok {
					ev.Err = e
				}
			case f.Type == zapcore.StringType && f.Key == DefaultThreadKey:
				ev.Thread = f.String
			}
		}
	}

	_, err = c.appender.Append(context.Background(), ev)
	return err
}

// Sync implements zapcore.Core by flushing the appender's buffered records.
func (c *Core) Sync() error {
	return c.appender.Flush(context.Background())
}
