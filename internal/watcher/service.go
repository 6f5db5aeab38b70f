// Package watcher reloads the lexicon file when it changes on disk.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

type Service struct {
	path     string
	logger   *slog.Logger
	onChange func(context.Context, string)
	watcher  *fsnotify.Watcher
}

func New(path string, logger *slog.Logger, onChange func(context.Context, string)) (*Service, error) {
	fileWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Service{
		path:     filepath.Clean(path),
		logger:   logger,
		onChange: onChange,
		watcher:  fileWatcher,
	}, nil
}

func (s *Service) Start(ctx context.Context) error {
	defer s.watcher.Close()

	// Watch the directory: editors often replace the file rather than write
	// in place, which drops a watch on the file itself.
	if err := s.watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch lexicon directory: %w", err)
	}
	s.logger.Info("lexicon watcher started", "path", s.path)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("lexicon watcher stopped")
			return nil
		case event := <-s.watcher.Events:
			s.handleEvent(ctx, event)
		case err := <-s.watcher.Errors:
			if err != nil {
				s.logger.Error("lexicon watcher error", "error", err)
			}
		}
	}
}

func (s *Service) handleEvent(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != s.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	s.logger.Info("lexicon changed", "path", event.Name, "op", event.Op.String())
	s.onChange(ctx, event.Name)
}
