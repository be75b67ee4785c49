package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"clipline/internal/asset"
	"clipline/internal/config"
	"clipline/internal/daemon"
	"clipline/internal/deps"
	"clipline/internal/editplan"
	"clipline/internal/engine"
	"clipline/internal/facecrop"
	"clipline/internal/httpapi"
	"clipline/internal/logging"
	"clipline/internal/services/llm"
	"clipline/internal/silence"
	"clipline/internal/store"
	"clipline/internal/transform"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Optional .env so CLIPLINE_LLM_API_KEY can live outside the config file.
	_ = godotenv.Load()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return
	}

	llmClient := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})

	ffmpeg := deps.Executable(cfg.Media.FFmpegCommand)

	detector, err := facecrop.NewCommandDetector(cfg.Media.FaceDetectorCommand)
	if err != nil {
		logger.Error("configure face detector", logging.Error(err))
		return
	}
	estimator := facecrop.NewEstimator(
		detector,
		facecrop.FFmpegFrameExtractor(ffmpeg),
		cfg.Paths.WorkDir,
		logger,
	)

	eng := engine.New(cfg, st, engine.Deps{
		Translator:    editplan.NewTranslator(llmClient, logger),
		Segmenter:     silence.NewSegmenter(ffmpeg, logger),
		CropEstimator: estimator,
		Executor:      transform.NewExecutor(ffmpeg, logger),
	}, logger)

	ingester := asset.NewIngester(cfg, logger)
	api := httpapi.NewServer(cfg, eng, ingester, st, logger)

	d, err := daemon.New(cfg, st, eng, api.Handler(), logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("cliplined shutting down")
}
