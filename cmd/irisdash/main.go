package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iris-app/internal/cfg"
	"iris-app/internal/dashboard"
	"iris-app/internal/dataset"
	"iris-app/internal/metrics"
	"iris-app/internal/ml"
	"iris-app/internal/storage"

	"github.com/rs/zerolog/log"
)

// unavailableSource stands in for an artifact source that could not be
// opened, so the failure surfaces through the loader like any other.
type unavailableSource struct {
	err error
}

func (u unavailableSource) ReadScaler() ([]byte, error) { return nil, u.err }
func (u unavailableSource) ReadModel() ([]byte, error)  { return nil, u.err }
func (u unavailableSource) String() string              { return "unavailable" }

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	logCloser := cfg.SetupLogging(c)
	defer logCloser.Close()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ds, err := dataset.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("reference dataset unavailable")
	}

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	source, closeSource := initializeSource(c)
	defer closeSource()

	charts, err := dashboard.NewChartRenderer(c.ChartWidth, c.ChartHeight, c.ChartCacheSize, mw)
	if err != nil {
		log.Fatal().Err(err).Msg("chart renderer init failed")
	}

	res := dashboard.NewResources(ds, ml.NewLoader(source), charts, mw)

	// Load artifacts up front so a broken model shows in the log at startup.
	if _, err := res.Predictor(); err != nil {
		log.Error().Err(err).Str("source", source.String()).Msg("prediction view will answer 503")
	}

	opts := dashboard.Options{
		Port:         c.Port,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
	if c.ImageDir != "" {
		opts.Images = os.DirFS(c.ImageDir)
		log.Info().Str("dir", c.ImageDir).Msg("serving species images from directory")
	}

	srv, err := dashboard.NewServer(res, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("dashboard init failed")
	}
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("dashboard start failed")
	}

	log.Info().
		Str("addr", srv.Addr()).
		Int("rows", ds.Len()).
		Msg("iris dashboard ready")

	waitForShutdown(ctx, cancel, srv, c.ShutdownTimeout)
}

// initializeSource picks the artifact bundle when configured, the two JSON
// files otherwise. The returned func releases the source.
func initializeSource(c cfg.Settings) (ml.ArtifactSource, func()) {
	if !c.UsesBundle() {
		return ml.FileSource{ScalerPath: c.ScalerPath, ModelPath: c.ModelPath}, func() {}
	}

	bundle, err := storage.OpenBundle(c.BundlePath)
	if err != nil {
		log.Error().Err(err).Str("path", c.BundlePath).Msg("artifact bundle unavailable")
		return unavailableSource{err: err}, func() {}
	}
	return bundle, func() {
		if err := bundle.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close artifact bundle")
		}
	}
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc, srv *dashboard.Server, timeout time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}

	log.Info().Msg("shutting down gracefully...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), timeout)
	defer stop()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown timeout, forcing exit")
		return
	}
	log.Info().Msg("dashboard stopped")
}
