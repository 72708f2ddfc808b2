package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	composer "github.com/kivria40/foxdot-composer/core"
	"github.com/kivria40/foxdot-composer/core/events"
	"github.com/kivria40/foxdot-composer/core/llms/gemini"
	"github.com/kivria40/foxdot-composer/core/llms/groq"
	"github.com/kivria40/foxdot-composer/core/sandbox"
	"github.com/kivria40/foxdot-composer/core/session"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	backend := flag.String("backend", "", "model backend: gemini or groq")
	bridgeURL := flag.String("bridge", "", "websocket URL of the FoxDot bridge")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *bridgeURL != "" {
		cfg.BridgeURL = *bridgeURL
	}

	ctx := context.Background()

	llm, err := buildBackend(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	eventCh := make(chan events.Event, 64)
	opts := []composer.Option{
		composer.WithEventHandler(func(event events.Event) {
			eventCh <- event
		}),
	}

	if cfg.BridgeURL != "" {
		bridge, err := sandbox.Dial(ctx, cfg.BridgeURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: FoxDot bridge unreachable (%v), running in code-only mode\n", err)
		} else {
			opts = append(opts, composer.WithSandbox(bridge))
		}
	}
	if cfg.AutoExecute != nil {
		opts = append(opts, composer.WithAutoExecute(*cfg.AutoExecute))
	}

	if cfg.SessionFile != "" {
		if s, err := session.Load(cfg.SessionFile); err == nil {
			opts = append(opts, composer.WithSession(s))
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("loading session %s: %v", cfg.SessionFile, err)
		}
	}

	engine, err := composer.New(llm, opts...)
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close(ctx)

	program := tea.NewProgram(newModel(engine, eventCh, cfg.SessionFile), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatal(err)
	}
}

func buildBackend(ctx context.Context, cfg Config) (composer.StreamingLLM, error) {
	switch cfg.Backend {
	case "groq":
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("groq backend selected but no API key set (GROQ_API_KEY)")
		}
		return groq.New(cfg.GroqAPIKey, cfg.Model)
	case "gemini", "":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini backend selected but no API key set (GEMINI_API_KEY)")
		}
		return gemini.New(ctx, cfg.GeminiAPIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
