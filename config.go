// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Defaults for the optional Config fields.
const (
	DefaultRequiredNumAcks = AcksLeader
	DefaultRetries         = math.MaxInt32
	DefaultDeliveryTimeout = 120000 * time.Millisecond
)

// Config is the producer configuration of an Appender.  Only Brokers and
// Topic are required; everything else has a documented default.  Fields that
// need to tell "unset" apart from a zero value are pointers.
type Config struct {
	// Brokers is the list of Kafka broker addresses ("host:port").
	// Required.
	Brokers []string `yaml:"brokers"`

	// Topic is the topic every record is published to.
	// Required.
	Topic string `yaml:"topic"`

	// CompressionType specifies the batch compression codec.
	// Valid: "snappy", "gzip", "lz4", "zstd", "none".
	// Default: none.
	CompressionType Compression `yaml:"compressionType"`

	// SecurityProtocol selects TLS and/or SASL: PLAINTEXT, SSL,
	// SASL_PLAINTEXT or SASL_SSL.
	// Default: PLAINTEXT.
	SecurityProtocol string `yaml:"securityProtocol"`

	// SSLTruststoreLocation and SSLTruststorePassword name a PEM bundle or
	// PKCS#12 truststore of CA certificates.  Applied only when the protocol
	// uses TLS and both are set.
	SSLTruststoreLocation string `yaml:"sslTruststoreLocation"`
	SSLTruststorePassword string `yaml:"sslTruststorePassword"`

	// SSLKeystoreType, SSLKeystoreLocation and SSLKeystorePassword name the
	// client certificate ("PKCS12" or "PEM").  Applied only when the
	// truststore is applied and all three are set.
	SSLKeystoreType     string `yaml:"sslKeystoreType"`
	SSLKeystoreLocation string `yaml:"sslKeystoreLocation"`
	SSLKeystorePassword string `yaml:"sslKeystorePassword"`

	// SASLKerberosServiceName is the Kerberos service name of the brokers.
	// SASL is applied only when the protocol uses SASL and both this and
	// ClientJAASConfPath are set.
	SASLKerberosServiceName string `yaml:"saslKerberosServiceName"`

	// ClientJAASConfPath is the JAAS configuration with a KafkaClient section.
	ClientJAASConfPath string `yaml:"clientJaasConfPath"`

	// Krb5ConfPath is the Kerberos realm configuration.
	// Default: /etc/krb5.conf.
	Krb5ConfPath string `yaml:"kerb5ConfPath"`

	// SASLMechanism selects the SASL mechanism.  Optional; by default it
	// follows the JAAS login module.
	SASLMechanism string `yaml:"saslMechanism"`

	// MaxBlock bounds how long a send may block the caller: the wait for
	// buffer space and, for synchronous sends, the wait for the
	// acknowledgment.  Zero means no bound beyond DeliveryTimeout.
	MaxBlock time.Duration `yaml:"maxBlock"`

	// Retries is the number of times the client retries a record.
	// Default: math.MaxInt32 (bounded by DeliveryTimeout).
	Retries *int `yaml:"retries"`

	// RequiredNumAcks is -1 (all replicas), 0 (none) or 1 (leader).
	// Default: 1.
	RequiredNumAcks *int `yaml:"requiredNumAcks"`

	// DeliveryTimeout bounds the time the client spends delivering a record,
	// retries included.
	// Default: 120s.
	DeliveryTimeout time.Duration `yaml:"deliveryTimeout"`

	// IgnoreExceptions swallows synchronous delivery failures (they are
	// logged) instead of returning them.
	// Default: true.
	IgnoreExceptions *bool `yaml:"ignoreExceptions"`

	// SyncSend makes each send wait for the broker acknowledgment.
	// Default: false.
	SyncSend bool `yaml:"syncSend"`

	// StackTraceLimit bounds the raw stack trace text, in characters.
	// Zero or negative values disable truncation.
	// Default: 2000.
	StackTraceLimit *int `yaml:"stackTraceLimit"`

	// AppName becomes each record's eventChannel and the Kafka client id.
	AppName string `yaml:"appName"`

	// Encoding selects the record value format: "json" or "msgpack".
	// Default: json.
	Encoding Encoding `yaml:"encoding"`

	// Headers defines Kafka record headers.  Values are literals or
	// "record.<field>" references such as "record.level".
	// Optional.
	Headers map[string][]string `yaml:"headers"`

	// PartitionKey sets the Kafka record key, a literal or a
	// "record.<field>" reference such as "record.hostName".  Records with
	// the same key land on the same partition, in order.
	// Optional; by default records carry no key.
	PartitionKey string `yaml:"partitionKey"`

	// CleanupTimeout bounds the flush of buffered records in Close when the
	// caller's context has no deadline.  Zero means no timeout.
	CleanupTimeout time.Duration `yaml:"cleanupTimeout"`

	// AllowAutoTopicCreation lets the client create a missing topic.
	// Default: false.
	AllowAutoTopicCreation bool `yaml:"allowAutoTopicCreation"`
}

func (c *Config) requiredNumAcks() int {
	if c.RequiredNumAcks == nil {
		return DefaultRequiredNumAcks
	}
	return *c.RequiredNumAcks
}

func (c *Config) retries() int {
	if c.Retries == nil {
		return DefaultRetries
	}
	return *c.Retries
}

func (c *Config) deliveryTimeout() time.Duration {
	if c.DeliveryTimeout <= 0 {
		return DefaultDeliveryTimeout
	}
	return c.DeliveryTimeout
}

func (c *Config) ignoreExceptions() bool {
	if c.IgnoreExceptions == nil {
		return true
	}
	return *c.IgnoreExceptions
}

func (c *Config) stackTraceLimit() int {
	if c.StackTraceLimit == nil {
		return DefaultStackTraceLimit
	}
	return *c.StackTraceLimit
}

// saslOptions returns the SASL options, or false when SASL does not apply.
func (c *Config) saslOptions() (SASLOptions, bool) {
	if !usesSASL(c.SecurityProtocol) || c.SASLKerberosServiceName == "" || c.ClientJAASConfPath == "" {
		return SASLOptions{}, false
	}
	return SASLOptions{
		ServiceName:  c.SASLKerberosServiceName,
		JAASConfPath: c.ClientJAASConfPath,
		Krb5ConfPath: c.Krb5ConfPath,
		Mechanism:    c.SASLMechanism,
	}, true
}

// validate checks the mandatory fields and the enumerated values.  It does
// not read any security material; that happens in toKgoOpts.
func (c *Config) validate() error {
	if len(c.Brokers) == 0 {
		return errors.Join(ErrConfiguration, fmt.Errorf("brokers list is required"))
	}

	for i, broker := range c.Brokers {
		if strings.TrimSpace(broker) == "" {
			return errors.Join(ErrConfiguration, fmt.Errorf("broker %d is empty", i))
		}
	}

	if strings.TrimSpace(c.Topic) == "" {
		return errors.Join(ErrConfiguration, fmt.Errorf("topic is required"))
	}

	if err := validateCompression(c.CompressionType); err != nil {
		return err
	}

	if err := validateAcks(c.requiredNumAcks()); err != nil {
		return err
	}

	if err := validateEncoding(c.Encoding); err != nil {
		return err
	}

	if err := validateHeaders(c.Headers); err != nil {
		return err
	}

	if !isValidRecordReference(c.PartitionKey) {
		return errors.Join(ErrConfiguration, fmt.Errorf("partitionKey has invalid record field reference %q", c.PartitionKey))
	}

	if c.retries() < 0 {
		return errors.Join(ErrConfiguration, fmt.Errorf("retries must not be negative"))
	}

	for name, d := range map[string]time.Duration{
		"maxBlock":        c.MaxBlock,
		"deliveryTimeout": c.DeliveryTimeout,
		"cleanupTimeout":  c.CleanupTimeout,
	} {
		if d < 0 {
			return errors.Join(ErrConfiguration, fmt.Errorf("%s must not be negative", name))
		}
	}

	switch strings.ToUpper(c.SASLMechanism) {
	case "", MechanismGSSAPI, MechanismPlain, MechanismScramSHA256, MechanismScramSHA512:
	default:
		return errors.Join(ErrConfiguration, fmt.Errorf("sasl mechanism '%s' is not supported", c.SASLMechanism))
	}

	return nil
}

// toKgoOpts converts the configuration to franz-go client options, loading
// TLS material and asking sc for the SASL mechanism where they apply.
func (c *Config) toKgoOpts(logger kgo.Logger, sc SecurityContext) ([]kgo.Opt, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(c.Brokers...),
		kgo.WithLogger(logger),
		compressionOpt(c.CompressionType),
		kgo.RecordRetries(c.retries()),
		kgo.RecordDeliveryTimeout(c.deliveryTimeout()),
	}
	opts = append(opts, acksOpts(c.requiredNumAcks())...)

	if c.AppName != "" {
		opts = append(opts, kgo.ClientID(c.AppName))
	}

	if c.AllowAutoTopicCreation {
		opts = append(opts, kgo.AllowAutoTopicCreation())
	}

	tlsCfg, err := c.tlsConfig()
	if err != nil {
		return nil, errors.Join(ErrConfiguration, err)
	}
	if tlsCfg != nil {
		opts = append(opts, kgo.DialTLSConfig(tlsCfg))
	}

	if saslOpts, ok := c.saslOptions(); ok {
		if sc == nil {
			sc = FileSecurityContext{}
		}
		mech, err := sc.Mechanism(saslOpts)
		if err != nil {
			return nil, errors.Join(ErrConfiguration, err)
		}
		opts = append(opts, kgo.SASL(mech))
	}

	return opts, nil
}
