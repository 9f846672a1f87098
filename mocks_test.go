// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/twmb/franz-go/pkg/kgo"
)

// mockKafkaClient is a mock implementation of kafkaClient for testing.
type mockKafkaClient struct {
	mock.Mock
}

func (m *mockKafkaClient) Produce(ctx context.Context, r *kgo.Record, cb func(*kgo.Record, error)) {
	m.Called(ctx, r, cb)
}

func (m *mockKafkaClient) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockKafkaClient) Close() {
	m.Called()
}

func (m *mockKafkaClient) BufferedProduceRecords() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

// ackWith returns a Run function that completes the promise with err.
func ackWith(err error) func(mock.Arguments) {
	return func(args mock.Arguments) {
		cb := args.Get(2).(func(*kgo.Record, error))
		cb(args.Get(1).(*kgo.Record), err)
	}
}

// ackAfter returns a Run function that completes the promise with err from
// another goroutine after d.
func ackAfter(d time.Duration, err error) func(mock.Arguments) {
	return func(args mock.Arguments) {
		cb := args.Get(2).(func(*kgo.Record, error))
		r := args.Get(1).(*kgo.Record)
		time.AfterFunc(d, func() { cb(r, err) })
	}
}

// errBrokerDown is a stand-in for a broker side failure.
var errBrokerDown = errors.New("NOT_ENOUGH_REPLICAS: broker down")

// fixedResolver resolves to a fixed host.
var fixedResolver = HostResolverFunc(func() (string, string, error) {
	return "web-1", "10.0.0.7", nil
})

// recordingLogger is a kgo.Logger that keeps every line.
type recordingLogger struct {
	mu    sync.Mutex
	lines []loggedLine
}

type loggedLine struct {
	level   kgo.LogLevel
	msg     string
	keyvals []any
}

func (l *recordingLogger) Level() kgo.LogLevel { return kgo.LogLevelDebug }

func (l *recordingLogger) Log(level kgo.LogLevel, msg string, keyvals ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, loggedLine{level: level, msg: msg, keyvals: keyvals})
}

// at returns the messages logged at level.
func (l *recordingLogger) at(level kgo.LogLevel) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var msgs []string
	for _, line := range l.lines {
		if line.level == level {
			msgs = append(msgs, line.msg)
		}
	}
	return msgs
}

// newTestAppender returns a started Appender around client.
func newTestAppender(cfg Config, client kafkaClient) *Appender {
	a := &Appender{
		Config:   cfg,
		Resolver: fixedResolver,
	}
	a.clientFactory = func(opts ...kgo.Opt) (kafkaClient, error) {
		return client, nil
	}
	if err := a.Start(); err != nil {
		panic("test setup failed starting appender: " + err.Error())
	}
	return a
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
