// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texeldock/run.go
// Summary: Interactive dock: tcell event loop, persistence and external reloads.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/framegrace/texeldock/dock"
	"github.com/framegrace/texeldock/persist"
	"github.com/framegrace/texeldock/render"
)

var helpLines = []string{
	"Drag a tab onto another stack to merge it, or onto an edge to split.",
	"Drag the empty part of a tab bar to move the whole stack.",
	"Drag a │ border to resize.",
	"",
	"n  new tab      v  split right   s  split below",
	"x  close tab    Tab  next tab     q  quit",
}

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "run",
		Short:       "Open the interactive dock",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"fullscreen": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("create screen: %w", err)
			}
			return a.runDock(cmd.Context(), render.NewTcellScreenDriver(screen))
		},
	}
	cmd.Flags().Bool("watch", false, "reload the layout when the saved file changes (file backend)")
	return cmd
}

func registerContent(reg *render.Registry, e *dock.Engine) {
	reg.Register("text", func(string) render.Content {
		return &render.TextContent{Lines: helpLines}
	})
	reg.Register("layout", func(string) render.Content {
		return &render.HighlightContent{
			Lexer: "json",
			Source: func() string {
				data, err := persist.Encode(e.Layout())
				if err != nil {
					return err.Error()
				}
				return string(data)
			},
		}
	})
}

func seedLayout(e *dock.Engine) error {
	if err := e.AddPane("", dock.NewPane(uuid.NewString(), "Help", "text")); err != nil {
		return err
	}
	target := e.Layout().Stacks()[0].ID
	return e.SplitStack(target, dock.NewPane(uuid.NewString(), "Layout", "layout"), dock.ZoneRight)
}

func (a *app) runDock(ctx context.Context, driver render.ScreenDriver) error {
	opened, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer opened.Close()

	adapter := a.newAdapter(opened.Sink)
	loaded := adapter.Load(ctx)
	engine := dock.NewEngine(loaded, dock.WithLogger(a.logger))
	detach := adapter.Attach(engine)
	defer func() {
		detach()
		if err := adapter.Flush(context.Background()); err != nil {
			a.logger.Warn("Run: final save failed", "err", err)
		}
		adapter.Dispose()
	}()
	if loaded == nil {
		if err := seedLayout(engine); err != nil {
			return err
		}
	}

	if err := driver.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer driver.Fini()
	driver.SetStyle(tcell.StyleDefault)
	driver.EnableMouse()
	driver.HideCursor()
	driver.Clear()

	reg := render.NewRegistry(a.logger)
	registerContent(reg, engine)
	ctrl := render.NewController(engine, reg, render.DefaultStyles(), a.cfg.PaneContent, a.logger)
	ctrl.SetSize(driver.Size())

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := driver.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-loopCtx.Done():
				return
			}
		}
	}()

	reloads := make(chan *dock.Layout, 1)
	if a.cfg.Watch {
		watchDone := a.watch(loopCtx, opened, reloads)
		defer func() {
			cancel()
			<-watchDone
		}()
	}

	for {
		ctrl.Draw(driver)
		driver.Show()

		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if _, ok := ev.(*tcell.EventResize); ok {
				driver.Clear()
			}
			if ctrl.HandleEvent(ev) {
				return nil
			}
		case l := <-reloads:
			a.logger.Info("Run: reloading layout changed on disk")
			engine.SetLayoutSilent(l)
			adapter.CancelPendingSave()
		}
	}
}

// watch forwards valid external edits of the saved layout to reloads. The
// returned channel closes when the watcher stops.
func (a *app) watch(ctx context.Context, opened *persist.Opened, reloads chan *dock.Layout) <-chan struct{} {
	done := make(chan struct{})
	fs, ok := opened.Watchable()
	if !ok {
		a.logger.Warn("Run: --watch needs the file backend", "backend", a.cfg.Storage.Backend)
		close(done)
		return done
	}
	go func() {
		defer close(done)
		err := fs.Watch(ctx, a.cfg.Storage.Key, func(data []byte) {
			l, err := persist.Decode(data)
			if err != nil {
				a.logger.Warn("Run: ignoring invalid external edit", "err", err)
				return
			}
			// Keep only the newest edit.
			select {
			case <-reloads:
			default:
			}
			reloads <- l
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("Run: watcher stopped", "err", err)
		}
	}()
	return done
}
