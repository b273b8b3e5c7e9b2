package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gonodes/exprgraph/engine"
	"github.com/gonodes/exprgraph/expr"
	"github.com/gonodes/exprgraph/store"
)

func newWatchCmd() *cobra.Command {
	var flagDB string

	cmd := &cobra.Command{
		Use:   "watch <script.expr>",
		Short: "Recompile on every change and print the edit scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			flavor, err := parseFlavor()
			if err != nil {
				return err
			}
			inputs, err := parseInputs()
			if err != nil {
				return err
			}
			path := args[0]

			unit, err := engine.New(engine.Config{
				Flavor:   flavor,
				MaxDepth: flagMaxDepth,
				Inputs:   inputs,
				Logger:   log,
			})
			if err != nil {
				return err
			}

			var st *store.Store
			if flagDB != "" {
				st, err = store.New(flagDB)
				if err != nil {
					return err
				}
				defer st.Close()
				if baseline, err := st.LoadBaseline(path); err == nil {
					unit.SetBaseline(baseline)
				}
			}

			recompile := func() {
				source, err := os.ReadFile(path)
				if err != nil {
					log.Error().Err(err).Msg("read failed")
					return
				}
				script, err := unit.Compile(string(source), nil)
				if err != nil {
					var se *expr.SourceError
					if errors.As(err, &se) {
						fmt.Fprint(os.Stderr, se.FormatWithContext())
					} else {
						log.Error().Err(err).Msg("compile failed")
					}
					return
				}
				if script.Empty() {
					log.Info().Msg("no changes")
					return
				}
				printEdits(script)
				if st != nil {
					if err := st.SaveBaseline(path, unit.Baseline()); err != nil {
						log.Error().Err(err).Msg("persist failed")
					}
				}
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer watcher.Close()

			// Editors often replace the file rather than write in
			// place, so watch the directory and filter by name.
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return err
			}

			recompile()
			log.Info().Str("path", path).Msg("watching")

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

			var debounce *time.Timer
			fire := make(chan struct{}, 1)
			for {
				select {
				case ev, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(ev.Name) != filepath.Clean(path) {
						continue
					}
					if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
						continue
					}
					if debounce != nil {
						debounce.Stop()
					}
					debounce = time.AfterFunc(100*time.Millisecond, func() {
						select {
						case fire <- struct{}{}:
						default:
						}
					})
				case <-fire:
					recompile()
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Error().Err(err).Msg("watch error")
				case <-sig:
					log.Info().Msg("stopping")
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&flagDB, "db", "", "SQLite database for baselines")
	return cmd
}
