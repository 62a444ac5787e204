package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/scenecraft/scenecraft/internal/asset"
	"github.com/scenecraft/scenecraft/internal/auth"
	"github.com/scenecraft/scenecraft/internal/config"
	"github.com/scenecraft/scenecraft/internal/db"
	"github.com/scenecraft/scenecraft/internal/db/dbgen"
	"github.com/scenecraft/scenecraft/internal/db/memdb"
	"github.com/scenecraft/scenecraft/internal/drawing"
	"github.com/scenecraft/scenecraft/internal/engine"
	"github.com/scenecraft/scenecraft/internal/export"
	mw "github.com/scenecraft/scenecraft/internal/middleware"
	"github.com/scenecraft/scenecraft/internal/raster"
	"github.com/scenecraft/scenecraft/internal/session"
)

// store is satisfied by both dbgen.Queries and memdb.DB.
type store interface {
	auth.UserStore
	drawing.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var queries store
	if cfg.InMemory() {
		slog.Warn("using in-memory storage, drawings are lost on restart")
		queries = memdb.New()
	} else {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			slog.Error("migrate database", "error", err)
			os.Exit(1)
		}
		queries = dbgen.New(pool)
	}

	fonts, err := raster.LoadFonts()
	if err != nil {
		slog.Error("load fonts", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(queries, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	drawingService := drawing.NewService(queries)
	drawingHandler := drawing.NewHandler(drawingService)

	assetHandler := asset.NewHandler(cfg.AssetDir)
	var loaderOpts []asset.LoaderOption
	if cfg.FetchPrivate {
		slog.Warn("image fetches may reach private networks")
		loaderOpts = append(loaderOpts, asset.AllowPrivateNetworks())
	}
	loader := asset.NewLoader(cfg.AssetDir, cfg.FetchTimeout, loaderOpts...)
	exportHandler := export.NewHandler(fonts, loader, drawingService)

	hub := session.NewHub(drawingService, loader, authService, session.Options{
		Origins: cfg.Origins(),
		EngineOptions: []engine.Option{
			engine.WithHistoryLimit(cfg.HistoryLimit),
			engine.WithTextMeasurer(fonts),
		},
	})
	go hub.Run()

	r := mux.NewRouter()

	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, hub.Count())
	}).Methods("GET")

	// Assets and stateless exports are public so the playground can use them.
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix(asset.URLPrefix).Handler(assetHandler.Serve()).Methods("GET")
	r.HandleFunc("/export/code", exportHandler.ExportCode).Methods("POST", "OPTIONS")
	r.HandleFunc("/export/png", exportHandler.ExportPNG).Methods("POST", "OPTIONS")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)
	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	drawingHandler.Routes(api)
	api.HandleFunc("/drawings/{drawingId}/export/code", exportHandler.DrawingCode).Methods("GET")
	api.HandleFunc("/drawings/{drawingId}/export/png", exportHandler.DrawingPNG).Methods("GET")

	// Websockets authenticate with a ?token= query parameter.
	r.HandleFunc("/ws/drawings/{drawingId}", hub.ServeDrawing)
	r.HandleFunc("/ws/playground", hub.ServePlayground)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Sessions save on close, so stop them before the store goes away.
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", "error", err)
		}
	}()

	slog.Info("server starting", "addr", addr, "in_memory", cfg.InMemory())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
