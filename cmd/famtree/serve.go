package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/recera/famtree/app/routes"
	"github.com/recera/famtree/cmd/famtree/internal/config"
	"github.com/recera/famtree/internal/cache"
	"github.com/recera/famtree/pkg/family"
	"github.com/recera/famtree/pkg/live"
	"github.com/recera/famtree/pkg/server"
)

type serveFlags struct {
	port    int
	host    string
	data    string
	live    bool
	noWatch bool
}

func newServeCommand(configPath *string) *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the family tree page and its API",
		Long: `Serves the tree page, the people and search API, the live search
WebSocket endpoint and the built client assets. The dataset is reloaded when
its file changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			// CLI takes precedence
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = f.port
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = f.host
			}
			if cmd.Flags().Changed("data") {
				cfg.Data.Path = f.data
			}
			if cmd.Flags().Changed("live") {
				cfg.Server.Live = f.live
			}
			if f.noWatch {
				cfg.Data.Watch = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().IntVarP(&f.port, "port", "p", 8080, "Port to listen on")
	cmd.Flags().StringVarP(&f.host, "host", "H", "localhost", "Host to bind to")
	cmd.Flags().StringVarP(&f.data, "data", "d", "data.json", "Dataset file (json or yaml)")
	cmd.Flags().BoolVar(&f.live, "live", false, "Run the search widget on the server")
	cmd.Flags().BoolVar(&f.noWatch, "no-watch", false, "Do not reload the dataset on change")

	return cmd
}

func runServe(cfg *config.Config) error {
	logger := newLogger(os.Stderr, cfg.Log)

	people, err := family.Load(cfg.Data.Path)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	store := family.NewStore(people)
	log.Printf("📂 Loaded %d people from %s", len(people), cfg.Data.Path)

	results := cache.New(cache.Config{
		MaxSize:         int64(cfg.Cache.MaxSizeMB) << 20,
		MaxAge:          cfg.Cache.MaxAge,
		CleanupInterval: time.Minute,
	})
	defer results.Close()

	var liveServer *live.Server
	if cfg.Server.Live {
		log.Println("🔌 Initializing live search server...")
		liveServer = live.NewServer(store.People, live.Config{
			Limit:       cfg.Search.Limit,
			GraceDelay:  cfg.Search.GraceDelay,
			Placeholder: cfg.Search.Placeholder,
			Logger:      logger,
		})
		defer liveServer.Close()
	}

	srv := server.New(server.Config{
		Store: store,
		Page: routes.Index(store, routes.PageOptions{
			Live:        cfg.Server.Live,
			Placeholder: cfg.Search.Placeholder,
		}),
		Live:   liveServer,
		Static: staticFS(cfg.Server.Static),
		Cache:  results,
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Data.Watch {
		go func() {
			if err := watchDataset(ctx, store, cfg.Data.Path, cfg.Data.Debounce, srv.Apply); err != nil {
				log.Printf("⚠️  Dataset watcher stopped: %v", err)
			}
		}()
		log.Printf("👀 Watching %s for changes", cfg.Data.Path)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("\n🛑 Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("🌳 Serving on http://%s", cfg.Addr())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// staticFS serves dir when it exists.
func staticFS(dir string) fs.FS {
	if dir == "" {
		return nil
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Printf("⚠️  Static directory %s not found; run `famtree build` first", dir)
		return nil
	}
	return os.DirFS(dir)
}
