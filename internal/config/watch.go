// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce coalesces the burst of events an editor produces on save.
const WatchDebounce = 100 * time.Millisecond

// ChangeFunc receives the reloaded configuration, or the error that
// prevented loading it.
type ChangeFunc func(cfg *Config, err error)

// Watch reloads the config file at path whenever it is written or replaced
// and passes the result to onChange. The parent directory is watched so that
// editors that save by rename are seen. Watch returns once the watch is
// registered; it stops when ctx is done.
func Watch(ctx context.Context, path string, onChange ChangeFunc) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go watchLoop(ctx, watcher, path, onChange)
	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, onChange ChangeFunc) {
	defer watcher.Close()

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(WatchDebounce)
			} else {
				timer.Reset(WatchDebounce)
			}
			reload = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "error", err)

		case <-reload:
			reload = nil
			cfg, err := Load(path)
			if err != nil {
				slog.Warn("config reload failed", "path", path, "error", err)
			} else {
				slog.Info("config reloaded", "path", path)
			}
			onChange(cfg, err)
		}
	}
}
