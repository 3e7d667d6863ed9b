package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/recera/pageview/cmd/pageview/internal/config"
	"github.com/recera/pageview/pkg/logging"
)

var (
	version = "0.1.0-preview"
	commit  = "dev"
	date    = "unknown"
)

// app is the state shared by subcommands once the root command has run
type app struct {
	dir   string
	debug bool
	cfg   *config.Config
	log   *logrus.Logger
}

func (a *app) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.dir)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Debug = true
	}
	a.cfg = cfg
	a.log = logging.New(cfg.Debug, os.Stderr)
	if cfg.Debug {
		logging.EnableDebugHooks(a.log)
	}
	return nil
}

func main() {
	a := &app{}
	var rootCmd = &cobra.Command{
		Use:   "pageview",
		Short: "pageview - zoom, pan and fling a page",
		Long: `pageview drives a viewport transform controller: pinch, wheel and key
zoom about an anchor, drag panning with bounds, and momentum after release.
It can run in the terminal, serve a browser demo over websockets, or replay
scripted gestures.`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRunE: a.load,
		SilenceUsage:      true,
	}
	rootCmd.PersistentFlags().StringVarP(&a.dir, "dir", "C", ".", "Directory containing "+config.FileName)
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	// Add commands
	rootCmd.AddCommand(newViewCommand(a))
	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newReplayCommand(a))
	rootCmd.AddCommand(newConfigCommand(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
