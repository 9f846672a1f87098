// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/xmidt-org/eventor"
)

// DeliveryEvent describes the fate of one record.
type DeliveryEvent struct {
	// EventID is the id of the record.
	EventID string

	// Topic is the Kafka topic the record was published to (or attempted to
	// publish to).
	Topic string

	// Sync is true when the caller waited for the acknowledgment.
	Sync bool

	// Error is the error that occurred (nil for delivered records).
	Error error

	// ErrorType is the error classification (empty for delivered records).
	// Values: "delivery_error", "timeout", "interrupted", "encoding_error",
	// "closed", "not_started", etc.
	ErrorType string

	// Duration is the time taken from the send to completion.
	Duration time.Duration
}

// Appender publishes log events to a Kafka topic.
//
// Thread Safety: All methods are safe for concurrent use by multiple
// goroutines.  Append and Send never serialize against each other; ordering
// between goroutines is whatever the Kafka client provides per partition.
type Appender struct {
	// --- CONFIGURATION (set before Start, immutable after) ---

	// Config is the producer configuration.  Validated once, by Start.
	Config Config

	// Logger receives the appender's and the Kafka client's diagnostics.
	// Optional. If nil, a no-op logger will be used.
	Logger kgo.Logger

	// SecurityContext builds the SASL mechanism when SASL applies.
	// Optional. Default: FileSecurityContext.
	SecurityContext SecurityContext

	// Resolver resolves the local host for each record.
	// Optional. Default: LocalHostResolver.
	Resolver HostResolver

	// Renderer renders errors attached to events.
	// Optional. Default: RenderStackTrace.
	Renderer StackTraceRenderer

	// InitialDeliveryEventListeners are registered when Start() is called.
	// Optional.
	InitialDeliveryEventListeners []func(*DeliveryEvent)

	// --- INTERNAL FIELDS ---

	// logger is the actively used logger (never nil after Start).
	logger kgo.Logger

	// cfg is the validated copy of Config.
	cfg Config

	// encoder converts events into records; configured by Start.
	encoder Encoder

	// clientFactory creates Kafka clients, can be overridden in tests.
	clientFactory clientFactory

	// clientMu protects client, started and closed.
	clientMu sync.Mutex
	client   kafkaClient
	started  bool
	closed   bool

	deliveryEventListeners       eventor.Eventor[func(*DeliveryEvent)]
	registerInitialListenersOnce sync.Once
}

// AddDeliveryEventListener adds a listener that is told about every record
// that was delivered or failed, whatever the delivery mode.  Listeners of
// asynchronous sends are called from the client's goroutines and must be
// thread-safe.
//
// The returned function removes the listener.
func (a *Appender) AddDeliveryEventListener(fn func(*DeliveryEvent)) func() {
	return a.deliveryEventListeners.Add(fn)
}

// Start validates the configuration and creates the Kafka client.
// Must be called before Append().
//
// Returns an error if:
//   - Configuration is invalid (ErrConfiguration), including TLS or SASL
//     material that cannot be loaded (also ErrSecurity)
//   - Already started (ErrAlreadyStarted)
//   - Already closed (ErrClosed)
func (a *Appender) Start() error {
	a.clientMu.Lock()
	defer a.clientMu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if a.client != nil {
		return ErrAlreadyStarted
	}

	if a.clientFactory == nil {
		a.clientFactory = defaultClientFactory
	}

	logger := a.Logger
	if logger == nil {
		logger = &nopLogger{}
	}
	a.logger = logger

	a.registerInitialListenersOnce.Do(func() {
		for _, listener := range a.InitialDeliveryEventListeners {
			a.deliveryEventListeners.Add(listener)
		}
	})

	cfg := a.Config
	cfg.Brokers = slices.Clone(cfg.Brokers)
	cfg.Headers = maps.Clone(cfg.Headers)

	if err := cfg.validate(); err != nil {
		return err
	}

	opts, err := cfg.toKgoOpts(a.logger, a.SecurityContext)
	if err != nil {
		return err
	}

	client, err := a.clientFactory(opts...)
	if err != nil {
		return fmt.Errorf("failed to create Kafka client: %w", err)
	}

	a.cfg = cfg
	a.encoder = Encoder{
		AppName:         cfg.AppName,
		StackTraceLimit: cfg.stackTraceLimit(),
		Resolver:        a.Resolver,
		Renderer:        a.Renderer,
		Logger:          a.logger,
	}
	a.client = client
	a.started = true

	a.logger.Log(kgo.LogLevelInfo, "appender started",
		"brokers", strings.Join(cfg.Brokers, ","),
		"topic", cfg.Topic,
		"sync", cfg.SyncSend,
	)

	return nil
}

// Close flushes buffered records and releases the Kafka client.  Only the
// first call does anything; later and concurrent calls are no-ops.  After
// Close every send fails with ErrClosed.  Sends are not held up by the
// flush; those already past the closed check fail with the client's error.
//
// The flush is bounded by ctx, or by CleanupTimeout when ctx has no
// deadline.
func (a *Appender) Close(ctx context.Context) {
	a.clientMu.Lock()
	if a.closed {
		a.clientMu.Unlock()
		return
	}
	a.closed = true
	client, cleanupTimeout, logger := a.client, a.cfg.CleanupTimeout, a.logger
	a.client = nil
	a.clientMu.Unlock()

	if client == nil {
		return // never started
	}

	logger.Log(kgo.LogLevelInfo, "closing appender, flushing buffered records")

	if cleanupTimeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cleanupTimeout)
			defer cancel()
		}
	}

	if err := client.Flush(ctx); err != nil {
		logger.Log(kgo.LogLevelWarn, "flush incomplete during close", "error", err.Error())
	}

	client.Close()

	logger.Log(kgo.LogLevelInfo, "appender closed")
}

// Append encodes the event and sends the record.  See Send.
func (a *Appender) Append(ctx context.Context, ev Event) (Outcome, error) {
	client, err := a.acquire()
	if err != nil {
		return a.fail(&DeliveryEvent{}, time.Now(), err)
	}

	return a.send(ctx, client, a.encoder.Encode(ev))
}

// Send publishes an already encoded record.
//
// With SyncSend the call blocks until the broker acknowledges the record,
// the client's DeliveryTimeout or MaxBlock elapses, or ctx ends, and returns
// Delivered on success.
//
// Without SyncSend the call returns Submitted as soon as the client has
// accepted the record.  Its eventual fate is not reported to the caller;
// delivery listeners still see it.  Delivery is best effort.
//
// Failures are logged and swallowed, returning SuppressedFailure, when
// IgnoreExceptions is enabled; otherwise Failed and the error are returned.
// Errors wrap ErrDelivery (with ErrTimeout or ErrInterrupted), ErrEncoding,
// ErrNotStarted or ErrClosed.
func (a *Appender) Send(ctx context.Context, rec Record) (Outcome, error) {
	client, err := a.acquire()
	if err != nil {
		return a.fail(&DeliveryEvent{EventID: rec.EventID}, time.Now(), err)
	}

	return a.send(ctx, client, rec)
}

// Buffered returns the number of records buffered in the client, or zero
// when the appender is not running.
func (a *Appender) Buffered() int64 {
	a.clientMu.Lock()
	client := a.client
	a.clientMu.Unlock()

	if client == nil {
		return 0
	}
	return client.BufferedProduceRecords()
}

// Flush waits until the client has no buffered records or ctx ends.  It
// does nothing when the appender is not running.
func (a *Appender) Flush(ctx context.Context) error {
	client, err := a.acquire()
	if err != nil {
		return nil
	}
	return client.Flush(ctx)
}

// acquire returns the client, or why there is none.
func (a *Appender) acquire() (kafkaClient, error) {
	a.clientMu.Lock()
	defer a.clientMu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}
	if a.client == nil {
		return nil, ErrNotStarted
	}
	return a.client, nil
}

func (a *Appender) send(ctx context.Context, client kafkaClient, rec Record) (Outcome, error) {
	start := time.Now()
	event := DeliveryEvent{
		EventID: rec.EventID,
		Topic:   a.cfg.Topic,
		Sync:    a.cfg.SyncSend,
	}

	value, err := rec.Encode(a.cfg.Encoding)
	if err != nil {
		return a.fail(&event, start, err)
	}

	record := &kgo.Record{
		Topic:   a.cfg.Topic,
		Key:     partitionKey(a.cfg.PartitionKey, &rec),
		Value:   value,
		Headers: buildHeaders(a.cfg.Headers, &rec),
	}

	if !a.cfg.SyncSend {
		a.produceAsync(ctx, client, record, event, start)
		return Submitted, nil
	}

	if a.cfg.MaxBlock > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.MaxBlock)
		defer cancel()
	}

	d := newDelivery()
	client.Produce(ctx, record, d.resolve)
	if _, err := d.wait(ctx); err != nil {
		return a.fail(&event, start, err)
	}

	a.dispatchEvent(&event, start, nil)
	return Delivered, nil
}

// errMaxBlock is the cause of an asynchronous send that waited longer than
// MaxBlock for buffer space.
var errMaxBlock = fmt.Errorf("max block exceeded: %w", context.DeadlineExceeded)

const (
	blockWaiting int32 = iota
	blockReturned
	blockExpired
)

// blockBound cancels an asynchronous send whose Produce call is still
// waiting when MaxBlock elapses.  Once Produce has returned, expiry does
// nothing.
type blockBound struct {
	state  atomic.Int32
	cancel context.CancelCauseFunc
}

func (b *blockBound) expire() {
	if b.state.CompareAndSwap(blockWaiting, blockExpired) {
		b.cancel(errMaxBlock)
	}
}

func (b *blockBound) returned() {
	b.state.CompareAndSwap(blockWaiting, blockReturned)
}

// produceAsync hands the record to the client without waiting for the
// result.  The record outlives the caller's context; MaxBlock only bounds
// the wait for buffer space.  A record buffered in the same instant MaxBlock
// elapses may still fail with ErrTimeout.
func (a *Appender) produceAsync(ctx context.Context, client kafkaClient, record *kgo.Record, event DeliveryEvent, start time.Time) {
	ctx = context.WithoutCancel(ctx)
	cancel := context.CancelCauseFunc(func(error) {})

	var (
		bound *blockBound
		timer *time.Timer
	)
	if a.cfg.MaxBlock > 0 {
		ctx, cancel = context.WithCancelCause(ctx)
		bound = &blockBound{cancel: cancel}
		timer = time.AfterFunc(a.cfg.MaxBlock, bound.expire)
	}

	client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			if errors.Is(err, context.Canceled) && errors.Is(context.Cause(ctx), errMaxBlock) {
				err = errMaxBlock
			}
			err = deliveryError(err)
			a.logger.Log(kgo.LogLevelDebug, "asynchronous delivery failed",
				"event_id", event.EventID,
				"topic", event.Topic,
				"error", err.Error(),
			)
		}
		cancel(nil)
		a.dispatchEvent(&event, start, err)
	})

	if bound != nil {
		bound.returned()
		timer.Stop()
	}
}

// fail applies the suppression policy to a failure.
func (a *Appender) fail(event *DeliveryEvent, start time.Time, err error) (Outcome, error) {
	a.dispatchEvent(event, start, err)

	ignore, logger := a.policy()
	if !ignore {
		return Failed, err
	}

	logger.Log(kgo.LogLevelError, "failed to send log record",
		"event_id", event.EventID,
		"topic", event.Topic,
		"error_type", errorType(err),
		"error", err.Error(),
	)
	return SuppressedFailure, nil
}

// policy returns the suppression policy and logger of the validated
// configuration, or of the exported fields if Start never succeeded.
func (a *Appender) policy() (bool, kgo.Logger) {
	a.clientMu.Lock()
	defer a.clientMu.Unlock()

	if a.started {
		return a.cfg.ignoreExceptions(), a.logger
	}

	logger := a.Logger
	if logger == nil {
		logger = &nopLogger{}
	}
	return a.Config.ignoreExceptions(), logger
}

// dispatchEvent dispatches a DeliveryEvent to all registered listeners.
func (a *Appender) dispatchEvent(event *DeliveryEvent, since time.Time, err error) {
	if err != nil {
		event.Error = err
		event.ErrorType = errorType(err)
	}
	event.Duration = time.Since(since)

	a.deliveryEventListeners.Visit(func(listener func(*DeliveryEvent)) {
		listener(event)
	})
}
