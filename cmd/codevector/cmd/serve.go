package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/codevector/internal/config"
	"github.com/Aman-CERP/codevector/internal/httpapi"
	"github.com/Aman-CERP/codevector/internal/logging"
	"github.com/Aman-CERP/codevector/internal/output"
	"github.com/Aman-CERP/codevector/internal/preflight"
	"github.com/Aman-CERP/codevector/internal/profiling"
	"github.com/Aman-CERP/codevector/internal/service"
)

var cpuProfilePath string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP indexing/retrieval server",
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			return runServe(cobraCmd.Context())
		},
	}
	cmd.Flags().StringVar(&cpuProfilePath, "cpu-profile", "", "write a CPU profile to this path for the life of the server")
	return cmd
}

// dataDirFor returns the directory the preflight disk/write checks should
// exercise: the embedded-lite SQLite path's parent when that backend is
// configured, otherwise the log file's directory, otherwise the default
// log directory.
func dataDirFor(cfg *config.Config) string {
	if cfg.Vector.Platform == "embedded-lite" && cfg.Vector.Embedded.Path != "" {
		return filepath.Dir(cfg.Vector.Embedded.Path)
	}
	if cfg.Log.File != "" {
		return filepath.Dir(cfg.Log.File)
	}
	return logging.DefaultLogDir()
}

func runServe(ctx context.Context) error {
	out := output.New(os.Stdout)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The config's own log settings take over from the root command's
	// debug-only default, once known.
	if logger, cleanup, err := logging.Setup(logging.FromLogConfig(cfg.Log.Level, cfg.Log.File, cfg.Log.Debug || debugMode)); err == nil {
		if loggingCleanup != nil {
			loggingCleanup()
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
	}

	for _, r := range preflight.New().RunAll(ctx, dataDirFor(cfg)) {
		if r.IsCritical() {
			out.Errorf("%s: %s", r.Name, r.Message)
			return fmt.Errorf("preflight check %q failed: %s", r.Name, r.Message)
		}
		if r.Status != preflight.StatusPass {
			out.Warningf("%s: %s", r.Name, r.Message)
			slog.Warn("preflight check", "name", r.Name, "status", r.Status.String(), "message", r.Message)
		}
	}

	if cpuProfilePath != "" {
		stopProfile, err := profiling.NewProfiler().StartCPU(cpuProfilePath)
		if err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer stopProfile()
	}

	svc, err := service.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}
	defer func() { _ = svc.Close() }()

	server := httpapi.New(svc.Indexer, svc.Retriever, slog.Default())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: server.Handler()}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		out.Successf("listening on %s (platform=%s)", addr, cfg.Vector.Platform)
		slog.Info("codevector listening", "addr", addr, "platform", cfg.Vector.Platform)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutting down")
		return httpServer.Shutdown(context.Background())
	}
}
