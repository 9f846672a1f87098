// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"errors"
	"fmt"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Compression specifies the message compression algorithm.
type Compression string

const (
	// CompressionSnappy uses Snappy compression.
	CompressionSnappy Compression = "snappy"

	// CompressionGzip uses Gzip compression.
	CompressionGzip Compression = "gzip"

	// CompressionLz4 uses LZ4 compression.
	CompressionLz4 Compression = "lz4"

	// CompressionZstd uses Zstandard compression.
	CompressionZstd Compression = "zstd"

	// CompressionNone disables compression.
	CompressionNone Compression = "none"
)

var compressionTypes map[Compression]struct{}
var compressionList []string

func init() {
	list := []Compression{
		CompressionSnappy,
		CompressionGzip,
		CompressionLz4,
		CompressionZstd,
		CompressionNone,
	}

	compressionTypes = make(map[Compression]struct{})
	for _, c := range list {
		compressionTypes[c] = struct{}{}
		compressionList = append(compressionList, string(c))
	}
}

// normalize lower-cases the codec name, so "GZIP" from a properties style
// configuration is accepted.
func (c Compression) normalize() Compression {
	return Compression(strings.ToLower(strings.TrimSpace(string(c))))
}

// validateCompression validates the Compression enum value.
func validateCompression(codec Compression) error {
	codec = codec.normalize()
	if codec == "" {
		return nil
	}

	_, ok := compressionTypes[codec]
	if ok {
		return nil
	}

	list := strings.Join(compressionList, "', '")
	list = "'" + list + "'"
	return errors.Join(ErrConfiguration,
		fmt.Errorf("compression type '%s' is invalid: must be %s or empty", codec, list))
}

// compressionOpt converts the codec to the franz-go batch compression option.
func compressionOpt(codec Compression) kgo.Opt {
	switch codec.normalize() {
	case CompressionSnappy:
		return kgo.ProducerBatchCompression(kgo.SnappyCompression())
	case CompressionGzip:
		return kgo.ProducerBatchCompression(kgo.GzipCompression())
	case CompressionLz4:
		return kgo.ProducerBatchCompression(kgo.Lz4Compression())
	case CompressionZstd:
		return kgo.ProducerBatchCompression(kgo.ZstdCompression())
	default:
		return kgo.ProducerBatchCompression(kgo.NoCompression())
	}
}
