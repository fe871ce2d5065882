package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	infraprogress "poke-battle-logger/infrastructure/progress"
	"poke-battle-logger/infrastructure/storage"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve processing status over HTTP and websocket",
	Long: `Start the status server on server.addr:

  GET /healthz            liveness
  GET /status/{videoID}   last recorded stage and percent of a video
  GET /ws?video_id=ID     live progress updates as JSON messages

Live updates only reach /ws from runs started by the same process; use
'process --serve' to watch a run. Status of other runs is read from the
database.

Example:
  poke-battle-logger serve --addr :8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	db, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := infraprogress.NewHub(infraprogress.WithLogger(slog.Default()))
	return RunServeWithDependencies(ctx, addr, hub, storage.NewStatusRepository(db), os.Stdout)
}

// RunServeWithDependencies serves until ctx is done
func RunServeWithDependencies(ctx context.Context, addr string, hub *infraprogress.Hub, store infraprogress.StatusStore, output io.Writer) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           infraprogress.NewRouter(hub, store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	fmt.Fprintf(output, "Status server listening on %s\n", addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status server failed: %w", err)
	case <-ctx.Done():
	}

	return shutdownServer(srv, hub)
}

// startStatusServer runs the status server in the background. The returned
// function stops it.
func startStatusServer(addr string, hub *infraprogress.Hub, store infraprogress.StatusStore) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           infraprogress.NewRouter(hub, store),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("status server failed", "addr", addr, "error", err)
		}
	}()
	return func() {
		if err := shutdownServer(srv, hub); err != nil {
			slog.Warn("status server shutdown", "error", err)
		}
	}
}

func shutdownServer(srv *http.Server, hub *infraprogress.Hub) error {
	hub.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
