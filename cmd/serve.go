package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"eiractl/internal/jobs"
	"eiractl/internal/s3client"
	"eiractl/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the EIRA backend",
	Long: `Run the HTTP backend used by the other commands.

The backend serves:
- POST /fetch/{type}   copy a dataset from the main bucket to its sub bucket
- POST /upload-txt     accept a .txt file of video links and process them
- GET  /status         report processing progress and log
- GET  /healthz        liveness check

Link processing needs yt-dlp and ffmpeg on PATH. S3 access is configured
with API_URL, ACCESS_KEY, SECRET_KEY and REGION.`,
	Example: `  # Serve on the configured port
  eiractl serve

  # Serve on another port and require the API token on /fetch
  EIRA_REQUIRE_TOKEN=true EIRA_API_TOKEN=secret eiractl serve --port 8080

  # Pass cookies to yt-dlp
  eiractl serve --cookies cookies.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	port, _ := cmd.Flags().GetString("port")
	if port == "" {
		port = cfg.Port
	}
	workDir, _ := cmd.Flags().GetString("work-dir")
	if workDir == "" {
		workDir = filepath.Join(cfg.UploadDir, "work")
	}
	cookies, _ := cmd.Flags().GetString("cookies")
	fps, _ := cmd.Flags().GetInt("fps")

	ctx := cmd.Context()
	logger := slog.Default()

	table, err := loadTable()
	if err != nil {
		return err
	}

	s3, err := s3client.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}

	tracker := jobs.NewTracker(jobs.DefaultMaxLogs)
	pipeline := &jobs.Pipeline{
		Runner:      jobs.ExecRunner{},
		Uploader:    s3,
		Bucket:      cfg.ProcessBucket,
		WorkDir:     workDir,
		CookiesFile: cookies,
		FPS:         fps,
		Logf:        tracker.Logf,
	}
	batcher := jobs.NewBatcher(pipeline, tracker, logger)

	srv := server.New(server.Options{
		Datasets:     table,
		Copier:       s3,
		Batches:      batcher,
		Status:       tracker,
		UploadDir:    cfg.UploadDir,
		Token:        getToken(cmd),
		RequireToken: cfg.RequireToken,
		Logger:       logger,
		BaseContext:  ctx,
	})

	httpServer := &http.Server{
		Addr:              net.JoinHostPort("", port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("backend listening", "addr", httpServer.Addr, "process_bucket", cfg.ProcessBucket, "require_token", cfg.RequireToken)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down backend")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
	}
	batcher.Wait()
	return nil
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from EIRA_PORT, 5000)")
	serveCmd.Flags().String("work-dir", "", "Scratch directory for downloads (default <upload dir>/work)")
	serveCmd.Flags().String("cookies", "", "Cookies file passed to yt-dlp")
	serveCmd.Flags().Int("fps", 3, "Frames per second extracted from each video")
}
