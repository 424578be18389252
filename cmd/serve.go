package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"codebrief/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// serveStatus holds the last run outcome for the status endpoint.
type serveStatus struct {
	mu        sync.Mutex
	lastRun   time.Time
	lastError string
	report    runReport
}

func (s *serveStatus) record(report runReport, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = time.Now().UTC()
	s.report = report
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}
}

func (s *serveStatus) snapshot() gin.H {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := gin.H{"report": s.report}
	if !s.lastRun.IsZero() {
		out["last_run"] = s.lastRun.Format(time.RFC3339)
	}
	if s.lastError != "" {
		out["last_error"] = s.lastError
	}
	return out
}

// serveCmd runs the digest pipeline on a cron schedule and exposes a small
// health/status API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the digest pipeline on a schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		status := &serveStatus{}

		sched, err := scheduler.New(cfg.Schedule.Cron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			report, err := runDigest(ctx, cfg, true)
			if err != nil {
				slog.Error("serve: digest run failed", "err", err)
			}
			status.record(report, err)
		})
		if err != nil {
			return err
		}
		sched.Start()
		slog.Info("serve: scheduler started", "cron", cfg.Schedule.Cron)

		gin.SetMode(gin.ReleaseMode)
		r := gin.New()
		r.Use(gin.Recovery())
		r.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		r.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, status.snapshot())
		})

		srv := &http.Server{Addr: cfg.Schedule.ListenAddr, Handler: r}
		errCh := make(chan error, 1)
		go func() {
			slog.Info("serve: http listening", "addr", cfg.Schedule.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigc:
			slog.Info("serve: received signal, shutting down", "signal", s.String())
		case err := <-errCh:
			slog.Error("serve: http server failed", "err", err)
			sched.Stop()
			return err
		}

		sched.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
