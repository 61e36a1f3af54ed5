package scoring

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type modelWatcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// StartModelWatch begins watching the persisted model file and adopts a
// rewritten file when it is structurally compatible, so a model retrained
// offline (cmd/train) reaches a running service without a restart.
// Incompatible or malformed files are ignored. It never triggers
// retraining. Call after Initialize.
func (s *Service) StartModelWatch() error {
	if s.snapshot() == nil {
		return ErrNotInitialized
	}
	if s.watcher != nil {
		return errors.New("model watch already started")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors and renames replace the file inode.
	dir := filepath.Dir(s.store.Path())
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	s.watcher = &modelWatcher{fsw: fsw, done: make(chan struct{})}
	go s.watchLoop()
	s.logger.Info("watching model file", zap.String("path", s.store.Path()))
	return nil
}

// StopModelWatch stops the watcher started by StartModelWatch.
func (s *Service) StopModelWatch() {
	if s.watcher == nil {
		return
	}
	s.watcher.fsw.Close()
	<-s.watcher.done
	s.watcher = nil
}

func (s *Service) watchLoop() {
	defer close(s.watcher.done)
	target := filepath.Clean(s.store.Path())

	for {
		select {
		case event, ok := <-s.watcher.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.reloadFromStore()
		case err, ok := <-s.watcher.fsw.Errors:
			if !ok {
				return
			}
			s.logger.Warn("model watch error", zap.Error(err))
		}
	}
}

// reloadFromStore re-reads the persisted model and adopts it when present
// and layout-compatible; otherwise the live model stays as is.
func (s *Service) reloadFromStore() {
	model, err := s.store.Load(FeatureDim())
	if err != nil || model == nil {
		s.logger.Warn("rewritten model file not adopted", zap.Error(err))
		return
	}
	s.adopt(model)
	s.logger.Info("scoring model reloaded", zap.String("path", s.store.Path()))
}
