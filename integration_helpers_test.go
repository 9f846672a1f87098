// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

//go:build integration

package logkafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/xmidt-org/logkafka"
)

const (
	messageConsumeWait = 10 * time.Second
)

// configureTestContainersForPodman is a no-op since the Makefile sets the required
// environment variables (DOCKER_HOST, TESTCONTAINERS_DOCKER_SOCKET_OVERRIDE).
func configureTestContainersForPodman(t *testing.T) {
	t.Helper()
}

// setupKafka starts Kafka using testcontainers and returns the container and broker address.
// Automatically registers cleanup to stop Kafka when test completes.
func setupKafka(t *testing.T) (*kafka.KafkaContainer, string) {
	t.Helper()

	// Skip if running in short mode
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	configureTestContainersForPodman(t)

	// Use confluent-local image which is designed for testcontainers
	kafkaContainer, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.8.0",
		kafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "Failed to start Kafka container")

	t.Cleanup(func() {
		t.Log("Stopping Kafka container...")
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "Failed to get Kafka brokers")
	require.NotEmpty(t, brokers, "No Kafka brokers available")

	broker := brokers[0]
	t.Logf("Kafka broker available at: %s", broker)

	require.NoError(t, waitForKafka(ctx, t, broker))

	return kafkaContainer, broker
}

// waitForKafka attempts to connect to Kafka broker until it responds or timeout.
func waitForKafka(ctx context.Context, t *testing.T, broker string) error {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		client, err := kgo.NewClient(
			kgo.SeedBrokers(broker),
			kgo.RequestTimeoutOverhead(5*time.Second),
		)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := client.Ping(pingCtx)
			cancel()
			client.Close()

			if err == nil {
				t.Log("Kafka is ready!")
				return nil
			}
			t.Logf("Kafka not ready yet: %v", err)
		}

		time.Sleep(1 * time.Second)
	}

	return context.DeadlineExceeded
}

// createTestAppender creates an Appender with test configuration.
func createTestAppender(t *testing.T, broker, topic string) *logkafka.Appender {
	t.Helper()

	return &logkafka.Appender{
		Config: logkafka.Config{
			Brokers:                []string{broker},
			Topic:                  topic,
			AppName:                "integration",
			AllowAutoTopicCreation: true, // Enable for integration tests
		},
	}
}

// consumeMessages consumes messages from a Kafka topic with a timeout.
// Returns all messages received before timeout.
func consumeMessages(t *testing.T, broker string, topic string, timeout time.Duration) []*kgo.Record {
	t.Helper()

	client, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err, "Failed to create Kafka consumer")
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var records []*kgo.Record
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		fetches := client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			break
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			t.Logf("Fetch error on %s[%d]: %v", topic, partition, err)
		})

		fetches.EachRecord(func(r *kgo.Record) {
			records = append(records, r)
		})

		// If we got records, give a bit more time for any additional ones
		if len(records) > 0 {
			time.Sleep(500 * time.Millisecond)
			fetches = client.PollFetches(ctx)
			fetches.EachRecord(func(r *kgo.Record) {
				records = append(records, r)
			})
			break
		}

		time.Sleep(100 * time.Millisecond)
	}

	return records
}

// decodeRecord decodes a JSON log record from a Kafka record.
func decodeRecord(t *testing.T, record *kgo.Record) logkafka.Record {
	t.Helper()

	var rec logkafka.Record
	require.NoError(t, json.Unmarshal(record.Value, &rec), "Failed to decode log record")

	return rec
}
