package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/DrJasper1/emerson-colab/internal/adapters/http"
	wssignal "github.com/DrJasper1/emerson-colab/internal/adapters/signal"
	"github.com/DrJasper1/emerson-colab/internal/app"
	"github.com/DrJasper1/emerson-colab/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if err := os.MkdirAll(cfg.UploadPath, 0o755); err != nil {
		log.Error().Err(err).Str("path", cfg.UploadPath).Msg("create upload dir")
	}

	limiter := wssignal.NewAddrLimiter(cfg.EventRate, cfg.EventBurst)
	coord := app.NewCoordinator(app.Options{
		GracePeriod:   cfg.GracePeriod,
		RemovePicture: pictureRemover(cfg.UploadPath),
		AddrGone:      limiter.Forget,
	})
	ctl := wssignal.NewController(coord, limiter, cfg.ReadLimit, cfg.AdminPasswordHash())

	r := router.SetupRouter(ctx, cfg, coord, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("coordination server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

// pictureRemover maps a public picture reference back to the upload
// directory and deletes the file off the event path.
func pictureRemover(uploadPath string) func(string) {
	return func(ref string) {
		name := strings.TrimPrefix(ref, "/room_pictures/")
		if name == "" || name == ref {
			return
		}
		path := filepath.Join(uploadPath, filepath.Base(name))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Error().Err(err).Str("path", path).Msg("remove room picture")
		}
	}
}
