// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// settings holds the defaults of the global flags, taken from the environment.
type settings struct {
	File     string     `env:"SYSCONF_FILE"`
	LogLevel slog.Level `env:"SYSCONF_LOG_LEVEL" envDefault:"INFO"`
}

func loadSettings() (settings, error) {
	var s settings
	if err := env.Parse(&s); err != nil {
		return settings{}, fmt.Errorf("parse environment: %w", err)
	}

	return s, nil
}
