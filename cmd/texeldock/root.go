// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texeldock/root.go
// Summary: Root command, shared flags, config loading and logger setup.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/framegrace/texeldock/config"
	"github.com/framegrace/texeldock/persist"
)

const skipConfig = "skip-config"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *log.Logger
	logFile *os.File
}

func newRootCmd() *cobra.Command {
	a := &app{logger: log.Default()}

	root := &cobra.Command{
		Use:          "texeldock",
		Short:        "Tabbed, splittable pane dock for the terminal",
		Long:         "texeldock keeps a tree of tabbed pane stacks, lets you rearrange it with the mouse and saves it between runs.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipConfig] != "" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default <config dir>/texeldock/texeldock.yaml)")
	pf.String("backend", "", "storage backend: file, sqlite, redis or memory")
	pf.String("storage-dir", "", "directory for the file backend")
	pf.String("sqlite-path", "", "database path for the sqlite backend")
	pf.String("redis-addr", "", "address for the redis backend")
	pf.Int("redis-db", 0, "database number for the redis backend")
	pf.String("key", "", "key the layout is stored under")
	pf.Duration("debounce", 0, "delay between the last change and a save")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-file", "", "append logs to this file")

	root.AddCommand(
		newRunCmd(a),
		newShowCmd(a),
		newValidateCmd(a),
		newSimplifyCmd(a),
		newInitCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	var w io.Writer = cmd.ErrOrStderr()
	if cmd.Annotations["fullscreen"] != "" {
		// The dock owns the terminal; stderr output would tear the screen.
		w = io.Discard
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		w = f
	}
	a.logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           cfg.Level(),
		Prefix:          "texeldock",
	})
	a.logger.Debug("Config: loaded", "file", cfg.File, "backend", cfg.Storage.Backend)
	return nil
}

func (a *app) close() error {
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	return err
}

func (a *app) openStorage(ctx context.Context) (*persist.Opened, error) {
	s := a.cfg.Storage
	return persist.Open(ctx, persist.Options{
		Backend:    s.Backend,
		Dir:        s.Dir,
		SQLitePath: s.SQLitePath,
		RedisAddr:  s.RedisAddr,
		RedisDB:    s.RedisDB,
	}, a.logger)
}

func (a *app) newAdapter(sink persist.Sink) *persist.Adapter {
	return persist.NewAdapter(sink,
		persist.WithKey(a.cfg.Storage.Key),
		persist.WithDebounce(a.cfg.SaveDebounce),
		persist.WithLogger(a.logger),
	)
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "init",
		Short:       "Write a default config file if none exists",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.cfgFile
			if path == "" {
				p, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			written, err := config.WriteDefault(path)
			if err != nil {
				return err
			}
			if written {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
			}
			return nil
		},
	}
}
