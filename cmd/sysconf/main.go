// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Command sysconf reads and writes a sysconf JSON configuration file
// with dotted paths.
//
//	sysconf --file config.json set auth.google.clientId example
//	sysconf --file config.json get auth.google
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic
	}
}
