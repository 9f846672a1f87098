// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	// AcksAll requires all ISR replicas to acknowledge (strongest durability).
	AcksAll = -1

	// AcksNone requires no acknowledgment (fire-and-forget).
	AcksNone = 0

	// AcksLeader requires only the leader replica to acknowledge.
	AcksLeader = 1
)

// validateAcks validates the required acknowledgment count.
func validateAcks(acks int) error {
	switch acks {
	case AcksAll, AcksNone, AcksLeader:
		return nil
	}

	return errors.Join(ErrConfiguration,
		fmt.Errorf("requiredNumAcks %d is invalid: must be -1 (all), 0 (none) or 1 (leader)", acks))
}

// acksOpts converts the acknowledgment count to franz-go options.  Idempotent
// writes require acks from all replicas, so they are disabled otherwise.
func acksOpts(acks int) []kgo.Opt {
	switch acks {
	case AcksAll:
		return []kgo.Opt{kgo.RequiredAcks(kgo.AllISRAcks())}
	case AcksNone:
		return []kgo.Opt{kgo.RequiredAcks(kgo.NoAck()), kgo.DisableIdempotentWrite()}
	default:
		return []kgo.Opt{kgo.RequiredAcks(kgo.LeaderAck()), kgo.DisableIdempotentWrite()}
	}
}
