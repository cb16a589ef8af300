package main

import (
	"canvas-editor/config"
	"canvas-editor/core"
	"canvas-editor/editor"
	"canvas-editor/handlers/api/documents"
	"canvas-editor/handlers/api/sessions"
	"canvas-editor/handlers/websocket"
	"canvas-editor/stores"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

type watchedSession struct {
	sessions.SessionInfo
	Watchers int `json:"watchers"`
}

func setupRouter(documentStore core.DocumentStore, registry *sessions.Registry, hub *websocket.Hub) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	corsOptions := cors.Options{
		AllowedOrigins: []string{"tauri://localhost"},
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			if origin == "" {
				return false
			}

			parsed, err := url.Parse(origin)
			if err != nil {
				return false
			}

			switch parsed.Scheme {
			case "http", "https":
				switch parsed.Hostname() {
				case "localhost", "127.0.0.1", "[::1]":
					return true
				}
			case "tauri":
				return parsed.Hostname() == "localhost"
			}

			return false
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	r.Use(cors.Handler(corsOptions))

	r.Route("/api/v2", func(r chi.Router) {
		r.Post("/post/", documents.HandleCreate(documentStore))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", documents.HandleGet(documentStore))
		})
	})

	r.Route("/api/sessions", sessions.Routes(registry))

	r.Get("/api/watchers", func(w http.ResponseWriter, r *http.Request) {
		watchers := hub.Watchers()
		list := make([]watchedSession, 0, len(watchers))
		for _, info := range registry.List() {
			list = append(list, watchedSession{SessionInfo: info, Watchers: watchers[info.ID]})
		}
		sort.SliceStable(list, func(i, j int) bool { return list[i].Watchers > list[j].Watchers })
		render.JSON(w, r, list)
	})

	return r
}

func waitForShutdown(srv *http.Server, registry *sessions.Registry, closers ...func()) {
	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-signalC

	logrus.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	// Sessions persist their pages before the store goes away.
	registry.CloseAll(ctx)
	for _, c := range closers {
		c()
	}
}

func main() {
	logLevel := flag.String("loglevel", "", "Set the logging level: debug, info, warn, error, fatal, panic")
	listenAddr := flag.String("listen", "", "Set the server listen address")
	flag.Parse()

	logrus.SetFormatter(&prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}
	logrus.SetLevel(level)

	store := stores.GetStore(cfg.Storage)

	var fetcher editor.FontFetcher
	if cfg.FontDir != "" {
		fetcher = editor.DirFetcher{Dir: cfg.FontDir}
	}
	fonts := editor.NewFontService(fetcher, logrus.WithField("component", "fonts"))

	var registry *sessions.Registry
	ioo, hub := websocket.SetupSocketIO(func(id string) bool {
		_, err := registry.Get(id)
		return err == nil
	})
	registry = sessions.NewRegistry(sessions.Options{
		Pages:           store,
		Fonts:           fonts,
		Images:          editor.NewImageLoader(&http.Client{Timeout: 30 * time.Second}),
		Notifier:        hub.Notifier,
		HistoryDebounce: cfg.HistoryDebounce,
		HistoryLimit:    cfg.HistoryLimit,
		Workspace:       editor.Size{Width: cfg.WorkspaceWidth, Height: cfg.WorkspaceHeight},
		ThumbnailSize:   cfg.ThumbnailSize,
	})

	r := setupRouter(store, registry, hub)
	r.Handle("/socket.io/", ioo.ServeHandler(nil))

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}
	logrus.WithField("addr", cfg.ListenAddr).Info("starting server")
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(srv, registry,
		func() { ioo.Close(nil) },
		hub.Close,
		func() {
			if closer, ok := store.(interface{ Close() error }); ok {
				if err := closer.Close(); err != nil {
					logrus.WithError(err).Warn("Failed to close store")
				}
			}
		},
	)
}
