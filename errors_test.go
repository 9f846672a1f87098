// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"
)

// TestErrors tests error types and sentinel errors.
func TestErrors(t *testing.T) {
	t.Parallel()

	t.Run("sentinel errors", func(t *testing.T) {
		t.Parallel()
		sentinels := []error{
			ErrConfiguration,
			ErrSecurity,
			ErrEncoding,
			ErrDelivery,
			ErrTimeout,
			ErrInterrupted,
			ErrNotStarted,
			ErrAlreadyStarted,
			ErrClosed,
		}

		for _, sentinel := range sentinels {
			me, ok := sentinel.(*metricError) // nolint:errorlint
			assert.True(t, ok, "sentinel should be *metricError")
			assert.NotEmpty(t, me.message, "sentinel should have message")
			assert.NotEmpty(t, me.metric, "sentinel should have metric type")
			assert.Equal(t, me.message, me.Error(), "Error() should return message")
			assert.Equal(t, me.metric, me.Metric(), "Metric() should return metric type")
		}
	})

	t.Run("error wrapping with errors.Is", func(t *testing.T) {
		t.Parallel()

		wrapped := errors.Join(ErrEncoding, fmt.Errorf("json failed"))
		assert.True(t, errors.Is(wrapped, ErrEncoding))
		assert.False(t, errors.Is(wrapped, ErrDelivery))

		doubleWrapped := fmt.Errorf("outer: %w", wrapped)
		assert.True(t, errors.Is(doubleWrapped, ErrEncoding))
	})

	t.Run("error types", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name     string
			err      error
			expected string
		}{
			{"configuration", ErrConfiguration, "configuration_error"},
			{"security", ErrSecurity, "security_error"},
			{"encoding", ErrEncoding, "encoding_error"},
			{"delivery", ErrDelivery, "delivery_error"},
			{"timeout", ErrTimeout, "timeout"},
			{"interrupted", ErrInterrupted, "interrupted"},
			{"not started", ErrNotStarted, "not_started"},
			{"closed", ErrClosed, "closed"},
			{"nil error", nil, ""},
			{"unknown error", fmt.Errorf("random"), "unknown"},
			{"delivery timeout wins", errors.Join(ErrDelivery, ErrTimeout, errors.New("x")), "timeout"},
			{"delivery interruption wins", errors.Join(ErrDelivery, ErrInterrupted), "interrupted"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.expected, errorType(tt.err))
			})
		}
	})

	t.Run("Is() method semantics", func(t *testing.T) {
		t.Parallel()

		assert.True(t, errors.Is(ErrDelivery, ErrDelivery))
		assert.False(t, errors.Is(ErrDelivery, ErrTimeout))

		newErr := &metricError{metric: "delivery_error", message: "test"}
		assert.False(t, errors.Is(newErr, ErrDelivery))

		assert.False(t, errors.Is(nil, ErrDelivery))
		assert.False(t, errors.Is(ErrDelivery, nil))
	})
}

// TestDeliveryError tests classification of produce failures.
func TestDeliveryError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want []error
		not  []error
	}{
		{
			name: "broker rejection",
			err:  errBrokerDown,
			want: []error{ErrDelivery, errBrokerDown},
			not:  []error{ErrTimeout, ErrInterrupted},
		},
		{
			name: "record timeout",
			err:  kgo.ErrRecordTimeout,
			want: []error{ErrDelivery, ErrTimeout},
			not:  []error{ErrInterrupted},
		},
		{
			name: "deadline",
			err:  context.DeadlineExceeded,
			want: []error{ErrDelivery, ErrTimeout},
		},
		{
			name: "canceled",
			err:  context.Canceled,
			want: []error{ErrDelivery, ErrInterrupted},
			not:  []error{ErrTimeout},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := deliveryError(tt.err)
			for _, w := range tt.want {
				assert.ErrorIs(t, err, w)
			}
			for _, n := range tt.not {
				assert.NotErrorIs(t, err, n)
			}
		})
	}
}
