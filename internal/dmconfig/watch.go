package dmconfig

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/oma-dm/goclient/internal/logger"
)

// Watch reloads configPath whenever it changes on disk and invokes onChange
// with the freshly loaded, validated Config. It runs until ctx is canceled;
// reload errors are logged and otherwise ignored, leaving the
// previously-loaded configuration in effect (a malformed in-progress file
// write must never crash a running agent).
func Watch(ctx context.Context, configPath string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}

	if err := watcher.Add(configPath); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch config file: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(configPath)
				if err != nil {
					logger.WarnCtx(ctx, "config reload failed, keeping previous configuration", logger.Err(err))
					continue
				}
				logger.InfoCtx(ctx, "configuration reloaded", logger.URI(configPath))
				onChange(cfg)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WarnCtx(ctx, "config watcher error", logger.Err(err))
			}
		}
	}()

	return nil
}
