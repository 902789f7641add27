package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kataras/golog"

	"qompath/internal/config"
	"qompath/internal/handler"
	"qompath/internal/hub"
	"qompath/internal/llm"
	"qompath/internal/repository/sqlite"
	"qompath/internal/service"
	"qompath/internal/store"
	"qompath/internal/watcher"
)

func main() {
	// Command line flags override the config file
	configPath := flag.String("config", "", "Config file path (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	flag.Parse()

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		golog.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	golog.SetLevel(cfg.Log.Level)
	golog.Info("Starting qompath server...")
	if path != "" {
		golog.Infof("Config loaded: %s", path)
	}
	golog.Debug(cfg.Summary())

	// Session-scoped draft buffer, never written to disk
	repo, err := sqlite.New()
	if err != nil {
		golog.Fatalf("Failed to open draft buffer: %v", err)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize event bus
	eventBus := service.NewEventBus()

	// Initialize SSE hub
	sseHub := hub.New(golog.Default)
	go sseHub.Run(ctx)

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for {
			select {
			case event := <-eventChan:
				sseHub.Broadcast(event)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Initialize services
	sceneSvc := service.NewSceneService(store.New(), eventBus)

	prompt := llm.NewSystemPrompt(config.ResolveRelative(path, cfg.Generation.SystemPromptPath))
	if err := prompt.Reload(); err != nil {
		golog.Warnf("Using built-in system prompt: %v", err)
	}
	if prompt.Path() != "" {
		w := watcher.New(prompt.Path(), prompt.Reload)
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				golog.Warnf("System prompt watcher stopped: %v", err)
			}
		}()
	}

	genSvc := service.NewGenerationService(newCompleter(cfg), prompt, repo, sceneSvc, eventBus,
		service.WithTimeout(cfg.Generation.Timeout.Duration()),
	)

	// Setup routes
	mux := http.NewServeMux()
	handler.Routes(mux,
		handler.NewSceneHandler(sceneSvc, cfg.Preview.MeshCells),
		handler.NewGenerateHandler(genSvc),
		sseHub,
	)

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		golog.Infof("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			golog.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	golog.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		golog.Errorf("Server shutdown error: %v", err)
	}

	golog.Info("Server stopped")
}

func loadConfig(explicit string) (*config.Config, string, error) {
	if explicit != "" {
		return config.LoadFromPath(explicit)
	}
	return config.Load()
}

// newCompleter builds the configured provider. A missing credential is not
// fatal: the editor still works and generation requests report the problem.
func newCompleter(cfg *config.Config) llm.Completer {
	g := cfg.Generation
	opts := llm.Options{
		Model:       g.Model,
		Temperature: *g.Temperature,
		MaxTokens:   g.MaxTokens,
	}

	switch g.Provider {
	case config.ProviderOllama:
		c, err := llm.NewOllamaCompleter(g.BaseURL, opts)
		if err != nil {
			golog.Warnf("Generation disabled: %v", err)
			return nil
		}
		golog.Infof("Generation: ollama model %s", g.Model)
		return c
	default:
		c, err := llm.NewOpenAICompleter(cfg.APIKey(), g.BaseURL, opts)
		if err != nil {
			if errors.Is(err, llm.ErrMissingCredential) {
				golog.Warnf("Generation disabled: %s is not set", g.APIKeyEnv)
			} else {
				golog.Warnf("Generation disabled: %v", err)
			}
			return nil
		}
		golog.Infof("Generation: openai model %s", g.Model)
		return c
	}
}
