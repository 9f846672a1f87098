// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"fmt"
	"strings"
)

// DefaultStackTraceLimit is the default maximum length, in characters, of the
// raw stack trace text kept in a record.
const DefaultStackTraceLimit = 2000

// StackTraceRenderer renders the full, multi-line textual form of an error.
type StackTraceRenderer func(err error) string

// RenderStackTrace is the default StackTraceRenderer.
//
// The first line is "<type>: <message>".  If the error formats extra detail
// with "%+v" (errors carrying stack frames do) the detail follows and already
// covers the error's causes.  Otherwise every wrapped error is rendered on a
// "Caused by: " line, walking both Unwrap() error and Unwrap() []error.
// Trees of more than maxCauses errors, cyclic ones included, render as "".
func RenderStackTrace(err error) string {
	var b strings.Builder
	n := 0
	if !renderCause(&b, err, "", &n) {
		return ""
	}
	return b.String()
}

// maxCauses bounds the number of errors RenderStackTrace visits.
const maxCauses = 64

func renderCause(b *strings.Builder, err error, prefix string, n *int) bool {
	if err == nil {
		return true
	}
	*n++
	if *n > maxCauses {
		return false
	}

	msg := err.Error()
	b.WriteString(prefix)
	fmt.Fprintf(b, "%T: %s\n", err, msg)

	if detail := fmt.Sprintf("%+v", err); detail != msg {
		detail = strings.TrimPrefix(detail, msg)
		detail = strings.TrimLeft(detail, "\n")
		if detail != "" {
			b.WriteString(detail)
			if !strings.HasSuffix(detail, "\n") {
				b.WriteByte('\n')
			}
		}
		return true
	}

	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return renderCause(b, u.Unwrap(), "Caused by: ", n)
	case interface{ Unwrap() []error }:
		for _, cause := range u.Unwrap() {
			if !renderCause(b, cause, "Caused by: ", n) {
				return false
			}
		}
	}
	return true
}

// flattenStackTrace truncates the raw trace to limit characters (limit <= 0
// keeps everything) and then folds it onto one line by replacing every CR,
// LF and TAB with a space.  The limit applies to the raw text.
func flattenStackTrace(trace string, limit int) string {
	if limit > 0 {
		n := 0
		for i := range trace {
			if n == limit {
				trace = trace[:i]
				break
			}
			n++
		}
	}

	return strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', '\t':
			return ' '
		}
		return r
	}, trace)
}

// throwableInfo returns the single line stack trace of err, or NoThrowable
// when err is nil or cannot be rendered.
func throwableInfo(err error, limit int, render StackTraceRenderer) (info string) {
	if err == nil {
		return NoThrowable
	}
	if render == nil {
		render = RenderStackTrace
	}

	defer func() {
		if recover() != nil {
			info = NoThrowable
		}
	}()

	trace := render(err)
	if trace == "" {
		return NoThrowable
	}
	return flattenStackTrace(trace, limit)
}
