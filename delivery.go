// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// delivery is the pending result of one produced record.  It is resolved
// exactly once, by the client's promise.
type delivery struct {
	done   chan struct{}
	record *kgo.Record
	err    error
}

func newDelivery() *delivery {
	return &delivery{done: make(chan struct{})}
}

// resolve records the result.  It has the signature of a franz-go promise.
func (d *delivery) resolve(r *kgo.Record, err error) {
	d.record = r
	d.err = err
	close(d.done)
}

// wait blocks until the delivery resolves or ctx ends.  Errors are classified
// with ErrDelivery plus ErrTimeout or ErrInterrupted where that applies.
func (d *delivery) wait(ctx context.Context) (*kgo.Record, error) {
	select {
	case <-d.done:
		if d.err != nil {
			return d.record, deliveryError(d.err)
		}
		return d.record, nil
	case <-ctx.Done():
		return nil, deliveryError(ctx.Err())
	}
}

// deliveryError wraps a produce or wait failure in the error taxonomy.
func deliveryError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, kgo.ErrRecordTimeout):
		return errors.Join(ErrDelivery, ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return errors.Join(ErrDelivery, ErrInterrupted, err)
	default:
		return errors.Join(ErrDelivery, fmt.Errorf("broker rejected record: %w", err))
	}
}
