// Package speech is the text-to-speech capability consumed by the zap alert
// scheduler. Voices and the synthesis backend are externally owned, fallible
// resources: a missing voice is a silent no-op and a failing backend is
// logged, never propagated.
package speech

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// Voice identifies one installed synthesizer voice.
type Voice struct {
	// URI is the stable identifier configuration refers to.
	URI string
	// Name is the human-readable voice name.
	Name string
}

// Synthesizer turns text into audible speech.
type Synthesizer interface {
	Speak(ctx context.Context, voice Voice, text string, volume float64) error
}

// ErrSynthesis wraps backend failures so callers can log them uniformly.
var ErrSynthesis = errors.New("speech: synthesis failed")

// NullSynthesizer discards speech requests. Used when no backend is
// configured; the alert queue keeps advancing regardless.
type NullSynthesizer struct{}

func (NullSynthesizer) Speak(ctx context.Context, voice Voice, text string, volume float64) error {
	slog.Debug("discarding speech request", "voice", voice.URI, "chars", len(text))
	return nil
}

// voiceExtensions are the file types the library recognizes as voice models.
var voiceExtensions = map[string]bool{
	".onnx":  true,
	".voice": true,
	".vmdl":  true,
}

// Library lists the voices installed in a directory. The filesystem is
// abstracted for tests; Watch keeps the listing fresh as voices are added or
// removed while a stream is live.
type Library struct {
	fs  afero.Fs
	dir string

	mu     sync.RWMutex
	voices []Voice
}

// NewLibrary scans dir for voice models. Scan failure is not fatal; it just
// yields an empty library (speech degrades to a no-op).
func NewLibrary(fsys afero.Fs, dir string) *Library {
	l := &Library{fs: fsys, dir: dir}
	if err := l.Refresh(); err != nil {
		slog.Warn("voice library scan failed", "dir", dir, "error", err)
	}
	return l
}

// Refresh re-reads the voices directory.
func (l *Library) Refresh() error {
	entries, err := afero.ReadDir(l.fs, l.dir)
	if err != nil {
		return err
	}
	var voices []Voice
	for _, e := range entries {
		if e.IsDir() || !voiceExtensions[filepath.Ext(e.Name())] {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		voices = append(voices, Voice{URI: filepath.Join(l.dir, e.Name()), Name: name})
	}
	l.mu.Lock()
	l.voices = voices
	l.mu.Unlock()
	return nil
}

// Voices returns the current listing.
func (l *Library) Voices() []Voice {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Voice, len(l.voices))
	copy(out, l.voices)
	return out
}

// Find resolves a configured voice URI. The boolean is false when the voice
// is not installed; callers treat that as "do not speak".
func (l *Library) Find(uri string) (Voice, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, v := range l.voices {
		if v.URI == uri {
			return v, true
		}
	}
	return Voice{}, false
}

// Watch refreshes the library when the voices directory changes on disk.
// It blocks until ctx is canceled. Watching only works against the real
// filesystem; with an in-memory afero Fs callers refresh manually.
func (l *Library) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if err := l.Refresh(); err != nil {
				slog.Warn("voice library refresh failed", "dir", l.dir, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("voice library watcher error", "dir", l.dir, "error", err)
		}
	}
}
