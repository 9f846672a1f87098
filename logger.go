// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kzap"
	"go.uber.org/zap"
)

// nopLogger, the default logger, drops everything.
type nopLogger struct{}

func (*nopLogger) Level() kgo.LogLevel { return kgo.LogLevelNone }
func (*nopLogger) Log(kgo.LogLevel, string, ...any) {
}

// NewZapLogger returns a kgo.Logger that writes diagnostics to z at level and
// above.  The same logger is handed to the Kafka client, so client and
// appender diagnostics end up in one place.
//
// z must not be wired to an appender's Core, or every diagnostic line would
// be published back through the appender.
func NewZapLogger(z *zap.Logger, level kgo.LogLevel) kgo.Logger {
	return kzap.New(z, kzap.Level(level))
}
