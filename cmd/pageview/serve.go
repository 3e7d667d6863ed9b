package main

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/recera/pageview/pkg/live"
)

//go:embed web/index.html
var demoPage []byte

func newServeCommand(a *app) *cobra.Command {
	var addr string
	var frames string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser demo and the live websocket endpoint",
		Long: `Starts an HTTP server with a demo page at / and the live protocol at
/live/<session>. Reconnecting with the same session id resumes the view.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Serve.Addr = addr
			}
			if frames != "" {
				a.cfg.Serve.Frames = frames
			}
			return runServe(a)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (defaults to config)")
	cmd.Flags().StringVar(&frames, "frames", "", `Momentum frame source, "client" or "server"`)

	return cmd
}

func newServeMux(liveServer *live.Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/live/", liveServer)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(demoPage)
	})
	return mux
}

func runServe(a *app) error {
	lc, err := a.cfg.LiveConfig()
	if err != nil {
		return err
	}
	lc.Logger = a.log
	liveServer := live.NewServer(lc)
	defer liveServer.Close()

	srv := &http.Server{
		Addr:              a.cfg.Serve.Addr,
		Handler:           newServeMux(liveServer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		a.log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	a.log.WithField("addr", srv.Addr).WithField("frames", lc.Frames).Info("serving pageview demo")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
