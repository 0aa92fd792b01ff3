package keypool

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// WatchDir watches the key-file directory for writes and triggers Reload on
// each event, in addition to the periodic reloader started by cmd/server.
// It returns once ctx is cancelled.
func (p *Pool) WatchDir(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}
	log.Debugf("keypool: watching %s for hot reload", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debugf("keypool: detected change to %s, reloading", filepath.Base(event.Name))
			if err := p.Reload(); err != nil {
				log.Errorf("keypool: reload after file event failed: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("keypool: watcher error: %v", err)
		}
	}
}
