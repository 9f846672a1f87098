// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import "errors"

var (
	// ErrConfiguration indicates the configuration is missing a mandatory
	// field or carries an invalid value.  Only returned by Start().
	ErrConfiguration = &metricError{
		metric:  "configuration_error",
		message: "configuration error",
	}

	// ErrSecurity indicates TLS or SASL material could not be loaded.
	ErrSecurity = &metricError{
		metric:  "security_error",
		message: "security material could not be loaded",
	}

	// ErrEncoding indicates the record could not be serialized.
	ErrEncoding = &metricError{
		metric:  "encoding_error",
		message: "encoding failed",
	}

	// ErrDelivery indicates the broker did not acknowledge the record.
	ErrDelivery = &metricError{
		metric:  "delivery_error",
		message: "delivery failed",
	}

	// ErrTimeout indicates the wait for an acknowledgment timed out.
	ErrTimeout = &metricError{
		metric:  "timeout",
		message: "timeout",
	}

	// ErrInterrupted indicates the caller's context ended while waiting for
	// an acknowledgment.
	ErrInterrupted = &metricError{
		metric:  "interrupted",
		message: "interrupted",
	}

	// ErrNotStarted indicates the appender has not been started.
	ErrNotStarted = &metricError{
		metric:  "not_started",
		message: "appender not started",
	}

	// ErrAlreadyStarted indicates the appender has already been started.
	ErrAlreadyStarted = &metricError{
		metric:  "already_started",
		message: "appender already started",
	}

	// ErrClosed indicates the appender has been closed.
	ErrClosed = &metricError{
		metric:  "closed",
		message: "appender closed",
	}
)

// metricError is an internal error type that wraps errors with a type classification
// for metrics and observability.
type metricError struct {
	metric  string // Type classification (e.g., "delivery_error", "configuration_error")
	message string // Human-readable message
}

// Error implements the error interface.
func (e *metricError) Error() string {
	return e.message
}

func (e *metricError) Metric() string {
	return e.metric
}

func (e *metricError) Is(target error) bool {
	if t, ok := target.(*metricError); ok {
		return e.message == t.message
	}
	return false
}

// errorType extracts the error type string for classification.
// Walks the error chain to find metricError types.  The most specific cause
// wins: timeouts and interruptions are reported as such even though they are
// joined with ErrDelivery.
func errorType(err error) string {
	if err == nil {
		return ""
	}

	for _, specific := range []*metricError{ErrTimeout, ErrInterrupted} {
		if errors.Is(err, specific) {
			return specific.Metric()
		}
	}

	var me *metricError
	if errors.As(err, &me) {
		return me.Metric()
	}

	return "unknown"
}
