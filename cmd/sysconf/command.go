// Copyright (c) 2026 The sysconf authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cri2net/sysconf"
	"github.com/cri2net/sysconf/internal/maps"
)

var errNoFile = errors.New("no configuration file, use --file or SYSCONF_FILE")

type app struct {
	stdout   io.Writer
	stderr   io.Writer
	file     string
	logLevel string
	store    *sysconf.Store
}

func newCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "sysconf",
		Short: "Read and write a JSON configuration file with dotted paths",
		Long: `sysconf reads and writes values of a JSON configuration file.

Paths address nested objects with dots, e.g. auth.google.clientId.
Missing objects are created on set and sibling keys are kept.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	s, err := loadSettings()
	if err != nil {
		// Flags still work without the environment defaults.
		fmt.Fprintln(stderr, err)
	}
	root.PersistentFlags().StringVarP(&a.file, "file", "f", s.File, "configuration file (env SYSCONF_FILE)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", s.LogLevel.String(),
		"log level: DEBUG, INFO, WARN or ERROR (env SYSCONF_LOG_LEVEL)")

	root.AddCommand(
		a.getCommand(),
		a.setCommand(),
		a.unsetCommand(),
		a.explainCommand(),
		a.watchCommand(),
	)

	return root
}

func (a *app) setup(*cobra.Command, []string) error {
	if a.file == "" {
		return errNoFile
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", a.logLevel, err)
	}

	a.store = sysconf.New(
		a.file,
		sysconf.WithLogHandler(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})),
		sysconf.WithStrictParse(),
	)

	return nil
}

func (a *app) getCommand() *cobra.Command {
	var def string
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Print the JSON value under a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.store.Load(); err != nil {
				return err //nolint:wrapcheck
			}

			var fallback any
			if def != "" {
				value, err := maps.DecodeValue([]byte(def))
				if err != nil {
					return fmt.Errorf("invalid default %q: %w", def, err)
				}
				fallback = value
			}

			return a.print(a.store.Get(args[0], fallback))
		},
	}
	cmd.Flags().StringVarP(&def, "default", "d", "", "JSON value printed if the path has no configuration")

	return cmd
}

func (a *app) setCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Write a value under a path",
		Long: `Write a value under a path and save the file.

The value is parsed as JSON. If it is not valid JSON it is written as a string.`,
		Args: cobra.ExactArgs(2), //nolint:mnd
		RunE: func(_ *cobra.Command, args []string) error {
			return a.store.Set(args[0], parseValue(args[1])) //nolint:wrapcheck
		},
	}
}

func (a *app) unsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <path>",
		Short: "Remove the value under a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.store.Unset(args[0]) //nolint:wrapcheck
		},
	}
}

func (a *app) explainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [path]",
		Short: "Describe the values under a path with secrets blurred",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.store.Load(); err != nil {
				return err //nolint:wrapcheck
			}

			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			_, err := io.WriteString(a.stdout, a.store.Explain(path))

			return err //nolint:wrapcheck
		},
	}
}

func (a *app) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [path]",
		Short: "Describe the values under a path whenever the file changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Load(); err != nil {
				return err //nolint:wrapcheck
			}

			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			explain := func(store *sysconf.Store) {
				_, _ = io.WriteString(a.stdout, store.Explain(path))
			}
			explain(a.store)
			if path == "" {
				a.store.OnChange(explain)
			} else {
				a.store.OnChange(explain, path)
			}

			return a.store.Watch(cmd.Context()) //nolint:wrapcheck
		},
	}
}

func (a *app) print(value any) error {
	encoder := json.NewEncoder(a.stdout)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encode value: %w", err)
	}

	return nil
}

// parseValue parses raw as JSON and falls back to raw itself,
// so `set name John` does not need quotes.
func parseValue(raw string) any {
	value, err := maps.DecodeValue([]byte(raw))
	if err != nil {
		return raw
	}

	return value
}
