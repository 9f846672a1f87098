// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

// Outcome represents the result of an Append() or Send() operation.
type Outcome int

const (
	// Delivered indicates the record was delivered AND acknowledged by Kafka.
	// Only returned when SyncSend is enabled.
	Delivered Outcome = iota

	// Submitted indicates the record was handed to the client but its fate
	// is not reported to the caller.  Returned when SyncSend is disabled.
	Submitted

	// SuppressedFailure indicates the send failed and the failure was logged
	// and swallowed because IgnoreExceptions is enabled.
	SuppressedFailure

	// Failed indicates the record was not delivered and the error was
	// returned to the caller.
	Failed
)

// String returns the string representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "Delivered"
	case Submitted:
		return "Submitted"
	case SuppressedFailure:
		return "SuppressedFailure"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}
