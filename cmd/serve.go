package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fioncat/gbrowse/handler"
	"github.com/fioncat/gbrowse/osutils"
	"github.com/fioncat/gbrowse/server"
	"github.com/fioncat/gbrowse/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = time.Second * 10

func Serve() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve [--debug]",
		Short: "Start the gbrowse http server",

		Args: cobra.ExactArgs(0),
	}
	buildCommand(cmd, func(opts *Options, _ []string) error {
		if debug {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return runServe(opts)
	})

	cmd.Flags().BoolVarP(&debug, "debug", "", false, "Set log level to debug")

	return cmd
}

func runServe(opts *Options) error {
	cfg := opts.Config

	pid, err := osutils.ReadPidFile(cfg.PidFile)
	if err == nil && pid != os.Getpid() && osutils.ProcessAlive(pid) {
		return fmt.Errorf("server is already running with pid %d", pid)
	}

	logFile, err := openLogFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logrus.SetOutput(io.MultiWriter(os.Stderr, logFile))
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	removePid, err := osutils.WritePidFile(cfg.PidFile)
	if err != nil {
		return err
	}
	defer removePid()

	stats, err := storage.OpenBolt(cfg)
	if err != nil {
		return fmt.Errorf("open stats database: %w", err)
	}
	defer stats.Close()

	srv, err := server.New(server.Options{
		Config:     cfg,
		Resolver:   opts.Resolver,
		Dispatcher: handler.NewDispatcher(opts.Registry),
		Stats:      stats,
	})
	if err != nil {
		return err
	}

	servers := []*http.Server{{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: cfg.ReadTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}}
	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", server.MetricsHandler())
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsListen,
			Handler:           mux,
			ReadHeaderTimeout: cfg.ReadTimeout,
		})
	}

	errChan := make(chan error, len(servers))
	for _, s := range servers {
		go func(s *http.Server) {
			logrus.Infof("Listening on %s", s.Addr)
			err := s.ListenAndServe()
			if !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("listen on %s: %w", s.Addr, err)
			}
		}(s)
	}
	logrus.Infof("Serving %v, browse root %q, pid %d", opts.Resolver.Roots(), opts.Resolver.BrowseRoot(), os.Getpid())

	sigStop := make(chan os.Signal, 1)
	signal.Notify(sigStop, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigStop:
		logrus.Infof("Received %v signal, stop server", sig)

	case serveErr = <-errChan:
		logrus.Errorf("Server exited: %v", serveErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, s := range servers {
		err = s.Shutdown(ctx)
		if err != nil {
			logrus.Warnf("Shutdown server on %s: %v", s.Addr, err)
		}
	}

	return serveErr
}

func openLogFile(path string) (*os.File, error) {
	err := osutils.EnsureFilePathDir(path)
	if err != nil {
		return nil, fmt.Errorf("ensure log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}
