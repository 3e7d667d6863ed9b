package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/recera/pageview/pkg/replay"
)

func newReplayCommand(a *app) *cobra.Command {
	var watch bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Run a gesture script and print the state after each step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			err := replayFile(args[0], asJSON, out)
			if !watch {
				return err
			}
			if err != nil {
				a.log.WithError(err).Error("replay failed")
			}
			return watchScript(args[0], a.log, func() {
				if err := replayFile(args[0], asJSON, out); err != nil {
					a.log.WithError(err).Error("replay failed")
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run the script whenever it changes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")

	return cmd
}

func replayFile(path string, asJSON bool, out io.Writer) error {
	script, err := replay.Load(path)
	if err != nil {
		return err
	}
	records, err := replay.Run(script)
	if err != nil {
		return err
	}
	if asJSON {
		return replay.WriteJSON(out, records)
	}
	return replay.WriteText(out, records)
}

// watchScript calls run after the script changes, debouncing bursts of
// events. It watches the directory so editors that replace the file are
// still seen.
func watchScript(path string, log logrus.FieldLogger, run func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	log.WithField("script", path).Info("watching for changes")

	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer
	pending := false

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending = true
			debounce.Reset(100 * time.Millisecond)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")

		case <-debounce.C:
			if pending {
				pending = false
				fmt.Fprintln(os.Stderr, "---", time.Now().Format(time.TimeOnly))
				run()
			}
		}
	}
}
