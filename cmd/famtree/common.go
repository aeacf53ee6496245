package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/recera/famtree/cmd/famtree/internal/config"
	"github.com/recera/famtree/pkg/family"
)

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(".", path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the slog logger described by the log section.
func newLogger(w io.Writer, c config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// watchDataset reloads path into store whenever the file changes and hands
// non-empty changes to apply. Bursts of events within debounce collapse into
// one reload. It returns when ctx is done.
func watchDataset(ctx context.Context, store *family.Store, path string, debounce time.Duration, apply func(family.Change)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// Watch the directory: editors replace the file on save.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(0)
	<-timer.C // drain initial timer
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !sameFile(event.Name, abs) || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Println("Watcher error:", err)

		case <-timer.C:
			change, err := store.Reload(path)
			if err != nil {
				log.Printf("⚠️  Failed to reload %s: %v", path, err)
				continue
			}
			if change.Empty() {
				continue
			}
			apply(change)
		}
	}
}

func sameFile(name, abs string) bool {
	p, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return filepath.Clean(p) == abs
}
