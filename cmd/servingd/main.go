package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"servingd/internal/config"
	"servingd/internal/engine"
	"servingd/internal/httpapi"
)

func main() {
	// Environment first, flags on top. Flag defaults carry the environment
	// values so an explicit flag always wins.
	env, err := config.FromEnv()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	modelID := flag.String("model-id", env.ModelID, "Model identifier or path served by the engine")
	tokenizer := flag.String("tokenizer", env.Tokenizer, "Tokenizer identifier when it differs from the model")
	instanceType := flag.String("instance-type", env.InstanceType, "Hardware class the daemon is deployed on")
	host := flag.String("host", env.Host, "HTTP listen host")
	port := flag.Int("port", env.Port, "HTTP listen port")
	servedNames := flag.String("served-model-name", strings.Join(env.ServedModelNames, ","), "Comma-separated aliases the model answers to")
	logLevel := flag.String("log-level", env.LogLevel, "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", env.LogFormat, "Log format: json or console")
	engineURL := flag.String("engine-url", env.EngineURL, "Attach to a running engine runtime at this URL")
	engineBin := flag.String("engine-bin", env.EngineBin, "Spawn this engine runtime binary")
	engineArgs := flag.String("engine-args", strings.Join(env.EngineArgs, " "), "Extra engine runtime arguments, space separated")
	chatTemplate := flag.String("chat-template", env.ChatTemplate, "Chat template file passed to the runtime")
	configPath := flag.String("config", "", "Optional config file (.yaml, .json or .toml)")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated CORS origins; empty disables CORS")
	invocationTimeout := flag.Int64("invocation-timeout", 0, "Per-invocation timeout in seconds (0 disables)")
	startTimeout := flag.Int64("engine-start-timeout", 0, "Engine readiness deadline in seconds (0 uses the built-in default)")
	flag.Parse()

	params := config.Params{
		ModelID:          *modelID,
		Tokenizer:        *tokenizer,
		InstanceType:     *instanceType,
		Host:             *host,
		Port:             *port,
		LogLevel:         *logLevel,
		LogFormat:        *logFormat,
		ServedModelNames: splitCSV(*servedNames),
		EngineURL:        *engineURL,
		EngineBin:        *engineBin,
		EngineArgs:       strings.Fields(*engineArgs),
		ChatTemplate:     *chatTemplate,
		CORSOrigins:      splitCSV(*corsOrigins),
	}
	if *configPath != "" {
		fileCfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config %s: %v", *configPath, err)
		}
		params = config.Merge(params, fileCfg)
	}

	settings, err := config.Resolve(params)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := newLogger(settings.LogLevel, settings.LogFormat)
	logger.Info().
		Str("model", settings.ModelID).
		Str("instance_type", settings.InstanceType).
		Int("parallelism", settings.ParallelismDegree).
		Msg("resolved deployment settings")

	httpapi.SetLogger(logger)
	httpapi.SetInvocationTimeoutSeconds(*invocationTimeout)
	if len(settings.CORSOrigins) > 0 {
		httpapi.SetCORSOptions(true, settings.CORSOrigins, []string{"GET", "POST", "OPTIONS"}, []string{"Content-Type"})
	}

	// Serve no traffic until the engine is up: the liveness probe must imply
	// a loaded model, so the engine comes first and a failure is fatal.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	httpapi.SetBaseContext(ctx)

	h, err := engine.New(ctx, engine.Config{
		ModelID:          settings.ModelID,
		Tokenizer:        settings.Tokenizer,
		TensorParallel:   settings.ParallelismDegree,
		ServedModelNames: settings.ServedModelNames,
		TrustRemoteCode:  settings.TrustRemoteCode,
		MaxModelLen:      settings.MaxModelLen,
		ImagesPerPrompt:  settings.ImagesPerPrompt,
		ChatTemplate:     settings.ChatTemplate,
		EngineURL:        settings.EngineURL,
		EngineBin:        settings.EngineBin,
		EngineArgs:       settings.EngineArgs,
		StartTimeout:     time.Duration(*startTimeout) * time.Second,
		Logger:           &logger,
		Events:           engine.LogPublisher{Logger: logger},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("engine startup failed")
	}

	addr := net.JoinHostPort(settings.Host, strconv.Itoa(settings.Port))
	srv := &http.Server{Addr: addr, Handler: httpapi.NewMux(h)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("servingd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("graceful shutdown error")
		}
		return h.Close()
	})
	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("servingd stopped")
}

// newLogger builds the process logger. Console output is for humans at a
// terminal; json is the default for anything collecting the stream.
func newLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if format == "console" {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return logger.Level(lvl)
}
