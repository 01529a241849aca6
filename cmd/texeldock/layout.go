// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texeldock/layout.go
// Summary: Non-interactive commands working on saved layout documents.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/framegrace/texeldock/dock"
	"github.com/framegrace/texeldock/persist"
)

// readDocument returns the bytes of the file argument, or of the stored
// layout when no argument is given.
func (a *app) readDocument(ctx context.Context, args []string) ([]byte, error) {
	if len(args) == 1 {
		return os.ReadFile(args[0])
	}
	opened, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}
	defer opened.Close()
	data, err := opened.Sink.Load(ctx, a.cfg.Storage.Key)
	if errors.Is(err, persist.ErrNotFound) {
		return nil, fmt.Errorf("no layout saved under %q", a.cfg.Storage.Key)
	}
	return data, err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newShowCmd(a *app) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Print a layout document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readDocument(cmd.Context(), args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !plain && isTerminal(out) {
				if err := quick.Highlight(out, string(data), "json", "terminal256", "catppuccin-mocha"); err == nil {
					fmt.Fprintln(out)
					return nil
				}
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "never colorize")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a layout document against the schema and tree invariants",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readDocument(cmd.Context(), args)
			if err != nil {
				return err
			}
			l, err := persist.Decode(data)
			if err != nil {
				return err
			}
			if err := dock.Validate(l); err != nil {
				return fmt.Errorf("%w\nrun `texeldock simplify` to repair", err)
			}
			panes := 0
			stacks := l.Stacks()
			for _, s := range stacks {
				panes += len(s.Panes)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d stacks, %d panes\n", len(stacks), panes)
			return nil
		},
	}
}

func newSimplifyCmd(a *app) *cobra.Command {
	var toStdout bool
	cmd := &cobra.Command{
		Use:   "simplify [file]",
		Short: "Prune empty stacks and collapse single-child boxes, then save",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := a.readDocument(ctx, args)
			if err != nil {
				return err
			}
			l, err := persist.Decode(data)
			if err != nil {
				return err
			}
			changed := dock.SimplifyLayout(l)
			out, err := persist.Encode(l)
			if err != nil {
				return err
			}

			switch {
			case toStdout:
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			case !changed:
				fmt.Fprintln(cmd.OutOrStdout(), "already simplified")
				return nil
			case len(args) == 1:
				if err := os.WriteFile(args[0], out, 0o644); err != nil {
					return err
				}
			default:
				opened, err := a.openStorage(ctx)
				if err != nil {
					return err
				}
				defer opened.Close()
				if err := a.newAdapter(opened.Sink).Save(ctx, l); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "simplified")
			return nil
		},
	}
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "print the result instead of saving it")
	return cmd
}
