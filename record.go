// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// NoThrowable is the ThrowableInfo value of a record without an error, or
// whose error could not be rendered.
const NoThrowable = "-"

// Record is the structured form of one log event as published to Kafka.
//
// The field order is the serialization order for every Encoding.
type Record struct {
	// EventID is a random UUID, unique per record.
	EventID string `json:"eventId" msgpack:"eventId"`

	// EventTime is the wall clock time of encoding, in epoch milliseconds.
	EventTime int64 `json:"eventTime" msgpack:"eventTime"`

	// EventChannel is the configured application name.
	EventChannel string `json:"eventChannel" msgpack:"eventChannel"`

	// CategoryName is the rendered message text.
	CategoryName string `json:"categoryName" msgpack:"categoryName"`

	// FQNOfCategoryClass identifies the logger call site.
	FQNOfCategoryClass string `json:"fqnOfCategoryClass" msgpack:"fqnOfCategoryClass"`

	// Level is the severity label.
	Level string `json:"level" msgpack:"level"`

	// Message is the raw message.
	Message string `json:"message" msgpack:"message"`

	// ThreadName is the name of the logging thread or goroutine.
	ThreadName string `json:"threadName" msgpack:"threadName"`

	// Timestamp is the event's own timestamp, in epoch milliseconds.
	Timestamp int64 `json:"timeStamp" msgpack:"timeStamp"`

	// HostName and HostAddress identify the local host.  Both are empty when
	// resolution failed.
	HostName    string `json:"hostName" msgpack:"hostName"`
	HostAddress string `json:"address" msgpack:"address"`

	// ThrowableInfo is the single line stack trace, or NoThrowable.
	ThrowableInfo string `json:"throwableInfo" msgpack:"throwableInfo"`
}

// Encoding specifies how records are serialized into Kafka record values.
type Encoding string

const (
	// EncodingJSON encodes records as JSON objects.
	EncodingJSON Encoding = "json"

	// EncodingMsgpack encodes records as msgpack maps.
	EncodingMsgpack Encoding = "msgpack"
)

func (e Encoding) normalize() Encoding {
	return Encoding(strings.ToLower(strings.TrimSpace(string(e))))
}

// validateEncoding validates the Encoding enum value.
func validateEncoding(e Encoding) error {
	switch e.normalize() {
	case "", EncodingJSON, EncodingMsgpack:
		return nil
	}
	return errors.Join(ErrConfiguration,
		fmt.Errorf("encoding '%s' is invalid: must be '%s', '%s' or empty", e, EncodingJSON, EncodingMsgpack))
}

// Encode serializes the record.  An empty Encoding means JSON.
func (r *Record) Encode(e Encoding) ([]byte, error) {
	var (
		b   []byte
		err error
	)

	switch e.normalize() {
	case "", EncodingJSON:
		b, err = json.Marshal(r)
	case EncodingMsgpack:
		b, err = msgpack.Marshal(r)
	default:
		err = fmt.Errorf("unknown encoding '%s'", e)
	}

	if err != nil {
		return nil, errors.Join(ErrEncoding, err)
	}
	return b, nil
}

// field returns the string form of the record field with the given wire key.
// The second result is false for unknown keys.
func (r *Record) field(key string) (string, bool) {
	switch key {
	case "eventId":
		return r.EventID, true
	case "eventTime":
		return fmt.Sprint(r.EventTime), true
	case "eventChannel":
		return r.EventChannel, true
	case "categoryName":
		return r.CategoryName, true
	case "fqnOfCategoryClass":
		return r.FQNOfCategoryClass, true
	case "level":
		return r.Level, true
	case "message":
		return r.Message, true
	case "threadName":
		return r.ThreadName, true
	case "timeStamp":
		return fmt.Sprint(r.Timestamp), true
	case "hostName":
		return r.HostName, true
	case "address":
		return r.HostAddress, true
	case "throwableInfo":
		return r.ThrowableInfo, true
	}
	return "", false
}
