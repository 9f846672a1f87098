// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML configuration file.  ${VAR} and $VAR references
// are expanded from the environment before parsing, so secrets such as
// sslTruststorePassword can stay out of the file.  Unknown keys are
// rejected.  Durations are written as Go duration strings ("120s").
//
// The result is not validated; Start does that.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration data.  See LoadConfig.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(data))))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Join(ErrConfiguration, fmt.Errorf("parsing config: %w", err))
	}
	return cfg, nil
}
