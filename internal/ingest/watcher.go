package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/hangar/internal/artifact"
)

// DefaultDebounce is the quiet period after the last relevant event before
// a rebuild starts.
const DefaultDebounce = 200 * time.Millisecond

// RebuildCallback receives every snapshot produced by the watcher.
type RebuildCallback func(snap *artifact.Snapshot)

// WatchOptions configures Watch.
type WatchOptions struct {
	// ArtifactsDir, when set, receives the rebuilt artifacts.
	ArtifactsDir string
	Debounce     time.Duration
	OnRebuild    RebuildCallback
}

// Watch observes contentDir until ctx is cancelled. Any change to a
// Markdown file or directory triggers a full rebuild once events have been
// quiet for the debounce period. New directories are added to the watch
// list as they appear.
func Watch(ctx context.Context, b *Builder, contentDir string, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		return fmt.Errorf("ingest: watch: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("ingest: watch: %w", err)
	}
	defer w.Close()

	if err := addDirsRecursive(w, contentDir); err != nil {
		return fmt.Errorf("ingest: watch: %w", err)
	}
	b.logger.Info("watcher: started", slog.String("root", contentDir))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(opts.Debounce)
			fire = timer.C
			return
		}
		timer.Stop()
		timer.Reset(opts.Debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			b.logger.Info("watcher: stopped")
			return nil

		case <-fire:
			b.rebuild(ctx, contentDir, opts)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if hidden(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						b.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					schedule()
					continue
				}
			}
			// Removed or renamed directories carry no extension.
			if strings.HasSuffix(ev.Name, ".md") ||
				(ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && filepath.Ext(ev.Name) == "") {
				b.logger.Debug("watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			b.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (b *Builder) rebuild(ctx context.Context, contentDir string, opts WatchOptions) {
	snap, _, err := b.Build(ctx, contentDir)
	if err != nil {
		b.logger.Warn("watcher: rebuild failed", slog.String("error", err.Error()))
		return
	}
	if opts.ArtifactsDir != "" {
		if err := WriteArtifacts(opts.ArtifactsDir, snap); err != nil {
			b.logger.Warn("watcher: write artifacts failed", slog.String("error", err.Error()))
		}
	}
	if opts.OnRebuild != nil {
		opts.OnRebuild(snap)
	}
}

func hidden(p string) bool {
	return strings.HasPrefix(filepath.Base(p), ".")
}

// addDirsRecursive adds root and all its non-hidden subdirectories.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && hidden(p) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
