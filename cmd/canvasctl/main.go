package main

import (
	"canvas-editor/cli"
	"canvas-editor/config"
	"canvas-editor/editor"
	"canvas-editor/handlers/api/sessions"
	"canvas-editor/stores"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

func main() {
	project := flag.String("project", "", "Project to open; empty starts a new one")
	width := flag.Float64("width", 1280, "Viewport width")
	height := flag.Float64("height", 800, "Viewport height")
	logLevel := flag.String("loglevel", "warn", "Set the logging level: debug, info, warn, error")
	flag.Parse()

	logrus.SetFormatter(&prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}
	logrus.SetLevel(level)

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	store := stores.GetStore(cfg.Storage)

	var fetcher editor.FontFetcher
	if cfg.FontDir != "" {
		fetcher = editor.DirFetcher{Dir: cfg.FontDir}
	}
	notifier := editor.NotifierFunc(func(n editor.Notification) {
		if msg, ok := n.Payload.(editor.Message); ok {
			fmt.Printf("[%s] %s\n", msg.Level, msg.Text)
		}
	})
	registry := sessions.NewRegistry(sessions.Options{
		Pages:           store,
		Fonts:           editor.NewFontService(fetcher, nil),
		Notifier:        func(string) editor.Notifier { return notifier },
		HistoryDebounce: cfg.HistoryDebounce,
		HistoryLimit:    cfg.HistoryLimit,
		Workspace:       editor.Size{Width: cfg.WorkspaceWidth, Height: cfg.WorkspaceHeight},
		ThumbnailSize:   cfg.ThumbnailSize,
	})

	ctx := context.Background()
	session, err := registry.Create(ctx, *project, editor.Size{Width: *width, Height: *height})
	if err != nil {
		logrus.Fatalf("Failed to start editor: %v", err)
	}
	defer registry.CloseAll(ctx)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "canvas> ",
		HistoryFile:     filepath.Join(os.TempDir(), "canvasctl.history"),
		AutoComplete:    cli.Completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		logrus.Fatalf("Failed to initialize readline: %v", err)
	}
	defer rl.Close()

	fmt.Printf("Editing project %s. Use 'help' for the list of commands.\n", session.ProjectID)
	if err := cli.New(session, rl.Stdout()).Run(ctx, rl); err != nil {
		logrus.WithError(err).Error("Editor stopped")
	}
	fmt.Println("Goodbye!")
}
