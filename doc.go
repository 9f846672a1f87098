// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package logkafka forwards an application's log events to a Kafka topic.
//
// # Overview
//
// Each log event is turned into a self-contained Record: a fresh id and
// encoding time, the application name, the rendered and raw message, level,
// call site, thread name, the event's own timestamp, the local host name and
// address, and the attached error flattened into a single line.  The record
// is serialized (JSON or msgpack) and published through a franz-go client.
//
// # Quick Start
//
//	appender := &logkafka.Appender{
//	    Config: logkafka.Config{
//	        Brokers: []string{"localhost:9092"},
//	        Topic:   "logs",
//	        AppName: "billing",
//	    },
//	}
//	if err := appender.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer appender.Close(context.Background())
//
//	logger := slog.New(logkafka.NewHandler(appender, nil))
//	logger.Error("payment failed", "error", err)
//
// Zap users install NewCore instead, typically with zapcore.NewTee next to
// their existing core.  Events can also be handed over directly with
// Appender.Append.
//
// # Delivery
//
// Without Config.SyncSend, Append returns Submitted once the client has
// accepted the record.  The eventual result is never reported to the caller,
// whatever Config.IgnoreExceptions says: delivery is best effort.
//
// With Config.SyncSend, Append blocks until the broker acknowledges the
// record, the client's delivery timeout or Config.MaxBlock elapses, or the
// context ends.  A failure is then logged and swallowed (SuppressedFailure)
// when IgnoreExceptions is enabled, which is the default, or returned
// (Failed) otherwise.
//
// Retries and backoff are left to the client (Config.Retries,
// Config.DeliveryTimeout).  Delivery is at least once at best.
//
// # Security
//
// Config.SecurityProtocol selects TLS ("SSL") and SASL ("SASL_PLAINTEXT",
// "SASL_SSL").  TLS trust and key stores may be PKCS#12 or PEM.  SASL
// credentials come from the KafkaClient section of a JAAS file; Kerberos
// (Krb5LoginModule), PLAIN and SCRAM login modules are understood.  The
// Appender's SecurityContext reads those files; ProcessSecurityContext
// additionally publishes the paths process wide, for components that expect
// them there.
//
// # Observability
//
// Diagnostics, including suppressed failures and host resolution problems,
// go to Appender.Logger, a kgo.Logger that is shared with the Kafka client.
// NewZapLogger adapts a zap logger.  Delivery listeners receive a
// DeliveryEvent for every record:
//
//	appender.AddDeliveryEventListener(func(e *logkafka.DeliveryEvent) {
//	    if e.Error != nil {
//	        failures.WithLabelValues(e.Topic, e.ErrorType).Inc()
//	    }
//	})
//
// # Thread Safety
//
// The Appender, Handler and Core types are safe for concurrent use.  There
// is no internal worker pool: each logging goroutine encodes and submits its
// own records.  Close may race with in-flight sends; those sends fail with
// ErrClosed or the client's error and are handled by the suppression policy.
package logkafka
