// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"
)

// recordRefPrefix marks a header value that references a record field.
const recordRefPrefix = "record."

// buildHeaders builds the Kafka record headers for a record.
//
// Each configured value is either a literal or a "record.<key>" reference to
// one of the record's wire keys (e.g. "record.level", "record.hostName").
// References that resolve to an empty string produce no header.  Keys are
// emitted in sorted order so the header list is stable.
func buildHeaders(cfg map[string][]string, r *Record) []kgo.RecordHeader {
	if len(cfg) == 0 {
		return nil
	}

	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kgo.RecordHeader, 0, len(cfg))
	for _, key := range keys {
		for _, value := range cfg[key] {
			v := resolveValue(value, r)
			if v == "" {
				continue
			}

			headers = append(headers, kgo.RecordHeader{
				Key:   key,
				Value: []byte(v),
			})
		}
	}

	return headers
}

// resolveValue returns a literal as is and a "record.<key>" reference as the
// value of that record field.
func resolveValue(value string, r *Record) string {
	ref, ok := strings.CutPrefix(value, recordRefPrefix)
	if !ok {
		return value
	}
	v, _ := r.field(ref)
	return v
}

// partitionKey returns the Kafka record key for a record, or nil when the
// configured key is empty or resolves to an empty field.
func partitionKey(cfg string, r *Record) []byte {
	if cfg == "" {
		return nil
	}
	if v := resolveValue(cfg, r); v != "" {
		return []byte(v)
	}
	return nil
}

// isValidRecordReference reports whether a header value is a literal or a
// reference to a known record field.
func isValidRecordReference(value string) bool {
	ref, ok := strings.CutPrefix(value, recordRefPrefix)
	if !ok {
		return true
	}

	_, known := (&Record{}).field(ref)
	return known
}

// validateHeaders validates the header configuration.
func validateHeaders(cfg map[string][]string) error {
	for key, values := range cfg {
		if key == "" {
			return errors.Join(ErrConfiguration, fmt.Errorf("header key must not be empty"))
		}
		if len(values) == 0 {
			return errors.Join(ErrConfiguration, fmt.Errorf("header %q must have at least one value", key))
		}
		for _, value := range values {
			if !isValidRecordReference(value) {
				return errors.Join(ErrConfiguration, fmt.Errorf("header %q has invalid record field reference %q", key, value))
			}
		}
	}
	return nil
}
