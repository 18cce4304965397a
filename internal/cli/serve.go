package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"threadlens/internal/pipeline"
	"threadlens/internal/server"
)

var (
	serveAddr     string
	serveChatRate float64
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the analysis pipeline over HTTP",
	Long: `Serve starts a small HTTP service:

  GET  /health   liveness check
  POST /analyze  analyze a JSON comment batch

The /analyze body carries the comments, an optional original post, and
optional per-request overrides (chat_model, embed_model, topk,
max_summary_comments, weights). Absent overrides fall back to the server's
base configuration.

Example:
  threadlens serve --addr :8080
  curl -X POST localhost:8080/analyze -d '{"comments":[{"text":"great idea"}]}'`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().Float64Var(&serveChatRate, "chat-rate", 0, "max chat calls per second against the generation service (0 = unlimited)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadBaseConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := []pipeline.Option{pipeline.WithVerbose(verbose)}
	if serveChatRate > 0 {
		opts = append(opts, pipeline.WithChatRate(serveChatRate, cfg.ClassifyWorkers))
	}
	p := pipeline.NewPipeline(opts...)

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           server.New(p, cfg, verbose).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "Listening on %s\n", serveAddr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-stop:
		fmt.Fprintln(os.Stderr, "Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
