// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Event is one log event as handed over by the host logging framework.
type Event struct {
	// Rendered is the formatted message text.
	Rendered string

	// Level is the severity label, passed through as is.
	Level string

	// LoggerFQN identifies the logger call site (function, logger name).
	LoggerFQN string

	// Thread is the name of the logging thread or goroutine.
	Thread string

	// Time is the event's own timestamp.
	Time time.Time

	// Message is the raw message.
	Message string

	// Err is the error attached to the event, if any.
	Err error
}

// Encoder converts events into records.  The zero value is usable: it has no
// application name, does not truncate stack traces, resolves the local host
// per record and logs nothing.
//
// An Encoder is safe for concurrent use if its Resolver is.
type Encoder struct {
	// AppName becomes the record's EventChannel.
	AppName string

	// StackTraceLimit bounds the raw stack trace text, in characters.
	// Zero or negative values disable truncation.
	StackTraceLimit int

	// Resolver resolves the local host.  Default: LocalHostResolver.
	Resolver HostResolver

	// Renderer renders errors as multi-line stack traces.
	// Default: RenderStackTrace.
	Renderer StackTraceRenderer

	// Now returns the wall clock time.  Default: time.Now.
	Now func() time.Time

	// NewID returns a fresh record id.  Default: a random UUID.
	NewID func() string

	// Logger receives enrichment failures.  Default: drops everything.
	Logger kgo.Logger
}

var defaultResolver HostResolver = &LocalHostResolver{}

// Encode converts an event into a record.  It never fails: a host that
// cannot be resolved leaves the host fields empty, and an error that cannot
// be rendered yields NoThrowable.
func (e *Encoder) Encode(ev Event) Record {
	resolver := e.Resolver
	if resolver == nil {
		resolver = defaultResolver
	}
	now := e.Now
	if now == nil {
		now = time.Now
	}
	newID := e.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	r := Record{
		EventID:            newID(),
		EventTime:          now().UnixMilli(),
		EventChannel:       e.AppName,
		CategoryName:       ev.Rendered,
		FQNOfCategoryClass: ev.LoggerFQN,
		Level:              ev.Level,
		Message:            ev.Message,
		ThreadName:         ev.Thread,
		Timestamp:          epochMillis(ev.Time),
		ThrowableInfo:      throwableInfo(ev.Err, e.StackTraceLimit, e.Renderer),
	}

	name, addr, err := resolver.Resolve()
	if err != nil {
		if e.Logger != nil {
			e.Logger.Log(kgo.LogLevelWarn, "unable to resolve local host", "error", err.Error())
		}
	} else {
		r.HostName, r.HostAddress = name, addr
	}

	return r
}

// epochMillis converts t to epoch milliseconds; the zero time is 0.
func epochMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
