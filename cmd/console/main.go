package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/jwebster45206/chronicle-engine/internal/config"
	"github.com/jwebster45206/chronicle-engine/internal/logger"
	"github.com/jwebster45206/chronicle-engine/internal/services"
	"github.com/jwebster45206/chronicle-engine/pkg/engine"
)

func main() {
	// Load .env here too, so the provider fallback below sees its values.
	_ = godotenv.Load()
	if os.Getenv("LLM_PROVIDER") == "" && os.Getenv("VENICE_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "VENICE_API_KEY is not set; starting with the offline narrator.")
		_ = os.Setenv("LLM_PROVIDER", config.ProviderMock)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file when one is given.
	var logOut io.Writer = io.Discard
	if path := os.Getenv("CONSOLE_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	log := logger.SetupWriter(cfg, logOut)

	completion, err := services.NewFromConfig(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize LLM provider: %v\n", err)
		os.Exit(1)
	}
	worldPrompt, err := cfg.WorldPrompt()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load world prompt: %v\n", err)
		os.Exit(1)
	}

	e := engine.New(engine.Config{
		Completion:   completion,
		Logger:       log,
		WorldPrompt:  worldPrompt,
		ModelName:    cfg.ModelName,
		HistoryLimit: cfg.HistoryLimit,
	}, nil)

	observer := newProgramObserver()
	e.AddObserver(observer)

	p := tea.NewProgram(NewConsoleUI(e, cfg.ModelName, cfg.LLMTimeout),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	go observer.run(p.Send)

	_, err = p.Run()
	e.RemoveObserver(observer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
