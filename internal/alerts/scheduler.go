// Package alerts drives the zap alert widget: exactly one zap is "current"
// at any instant, each holds the screen for a fixed dwell time, and a
// one-shot speech side effect fires per displayed item when the moderation
// and amount gates allow it.
package alerts

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rolznz/zap.stream/internal/mutes"
	"github.com/rolznz/zap.stream/internal/speech"
	"github.com/rolznz/zap.stream/internal/zaps"
)

// DefaultDwell is how long each alert stays current before the queue
// advances.
const DefaultDwell = 10 * time.Second

// VoiceFinder resolves a configured voice URI to an installed voice.
type VoiceFinder interface {
	Find(uri string) (speech.Voice, bool)
}

// Dependencies holds the externally owned capabilities the scheduler uses.
type Dependencies struct {
	Synth  speech.Synthesizer
	Voices VoiceFinder
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDwell overrides the per-item dwell time.
func WithDwell(d time.Duration) Option {
	return func(s *Scheduler) { s.dwell = d }
}

// WithVoice selects the speech voice by URI. An unknown URI silently
// disables speech.
func WithVoice(uri string) Option {
	return func(s *Scheduler) { s.voiceURI = uri }
}

// WithMinSats sets the minimum amount a zap must carry before its comment is
// spoken. Smaller zaps still occupy a dwell slot.
func WithMinSats(n int64) Option {
	return func(s *Scheduler) { s.minSats = n }
}

// WithVolume sets the speech volume.
func WithVolume(v float64) Option {
	return func(s *Scheduler) { s.volume = v }
}

// WithOnChange registers a callback invoked whenever the current item
// changes; nil current means the queue has drained. The callback runs off
// the scheduler's lock.
func WithOnChange(fn func(current *zaps.ParsedZap)) Option {
	return func(s *Scheduler) { s.onChange = fn }
}

// Scheduler is the alert queue state machine. It is either idle (no queue)
// or showing one item; advancement fires unconditionally on the dwell timer
// and never revisits an item.
type Scheduler struct {
	synth    speech.Synthesizer
	voices   VoiceFinder
	voiceURI string
	minSats  int64
	volume   float64
	dwell    time.Duration
	onChange func(*zaps.ParsedZap)

	mu        sync.Mutex
	queue     []zaps.ParsedZap
	index     int
	showing   bool
	passed    map[string]struct{} // zap IDs whose dwell slot completed
	spoken    map[string]struct{} // zap IDs whose speech gate already ran
	muted     mutes.Set
	speechOff bool
	timer     *time.Timer
	gen       uint64 // invalidates timers from a previous queue life
}

// New creates an idle scheduler.
func New(deps Dependencies, opts ...Option) *Scheduler {
	s := &Scheduler{
		synth:  deps.Synth,
		voices: deps.Voices,
		volume: 1.0,
		dwell:  DefaultDwell,
		passed: make(map[string]struct{}),
		spoken: make(map[string]struct{}),
	}
	if s.synth == nil {
		s.synth = speech.NullSynthesizer{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetMutes replaces the moderation snapshot used by the speech gate.
func (s *Scheduler) SetMutes(set mutes.Set) {
	s.mu.Lock()
	s.muted = set
	s.mu.Unlock()
}

// SetSpeechEnabled toggles the speech side effect. Alerts still show and
// advance while speech is off.
func (s *Scheduler) SetSpeechEnabled(enabled bool) {
	s.mu.Lock()
	s.speechOff = !enabled
	s.mu.Unlock()
}

// Skip cuts the current item's dwell short and moves on immediately.
func (s *Scheduler) Skip() {
	s.mu.Lock()
	if !s.showing {
		s.mu.Unlock()
		return
	}
	// Invalidate the pending dwell timer before advancing by hand.
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.index < len(s.queue) {
		s.passed[s.queue[s.index].ID] = struct{}{}
	}
	s.index = s.nextUnservedLocked()
	var notify *zaps.ParsedZap
	if s.index < len(s.queue) {
		notify = s.showLocked()
	} else {
		s.showing = false
	}
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(notify)
	}
}

// Submit installs the latest zap sequence, which arrives newest-first from
// the feed and is reversed exactly once here so presentation runs
// oldest-first. The slot position is keyed by zap ID, not queue offset, so
// a re-submission that drops items (a mute-list refresh) never swaps the
// current alert for whatever slid into its position. Re-submission never
// rewinds or re-sorts, new arrivals simply extend the tail.
func (s *Scheduler) Submit(newestFirst []zaps.ParsedZap) {
	s.mu.Lock()
	queue := make([]zaps.ParsedZap, len(newestFirst))
	for i, z := range newestFirst {
		queue[len(newestFirst)-1-i] = z
	}

	var currentID string
	if s.showing && s.index < len(s.queue) {
		currentID = s.queue[s.index].ID
	}
	s.queue = queue

	var notify *zaps.ParsedZap
	notified := false
	switch {
	case s.showing:
		if at := indexOfZap(queue, currentID); at >= 0 {
			// Same item, possibly shifted. The running dwell timer stands.
			s.index = at
		} else {
			// Moderation dropped the current item mid-dwell. Treat it as a
			// skip so the overlay sees an explicit transition.
			s.gen++
			if s.timer != nil {
				s.timer.Stop()
				s.timer = nil
			}
			s.index = s.nextUnservedLocked()
			if s.index < len(s.queue) {
				notify = s.showLocked()
			} else {
				s.showing = false
			}
			notified = true
		}
	default:
		s.index = s.nextUnservedLocked()
		if s.index < len(s.queue) {
			notify = s.showLocked()
			notified = true
		}
	}
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil && notified {
		fn(notify)
	}
}

func indexOfZap(queue []zaps.ParsedZap, id string) int {
	for i, z := range queue {
		if z.ID == id {
			return i
		}
	}
	return -1
}

// nextUnservedLocked returns the position of the oldest queue item whose
// dwell slot has not yet completed, or len(queue) when none remain.
// Caller holds the lock.
func (s *Scheduler) nextUnservedLocked() int {
	for i, z := range s.queue {
		if _, done := s.passed[z.ID]; !done {
			return i
		}
	}
	return len(s.queue)
}

// Current returns the item now holding the alert slot.
func (s *Scheduler) Current() (zaps.ParsedZap, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.showing || s.index >= len(s.queue) {
		return zaps.ParsedZap{}, false
	}
	return s.queue[s.index], true
}

// showLocked makes queue[index] current: it schedules the dwell timer, runs
// the speech gate once per zap ID, and returns the item for notification.
// Caller holds the lock.
func (s *Scheduler) showLocked() *zaps.ParsedZap {
	s.showing = true
	zap := s.queue[s.index]

	if _, done := s.spoken[zap.ID]; !done {
		s.spoken[zap.ID] = struct{}{}
		s.maybeSpeakLocked(zap)
	}

	gen := s.gen
	s.timer = time.AfterFunc(s.dwell, func() { s.advance(gen) })
	return &zap
}

// advance moves to the next queue position when the dwell timer fires.
// A stale generation means the scheduler was reset or stopped mid-dwell.
func (s *Scheduler) advance(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	if s.index < len(s.queue) {
		s.passed[s.queue[s.index].ID] = struct{}{}
	}
	s.index = s.nextUnservedLocked()
	var notify *zaps.ParsedZap
	if s.index < len(s.queue) {
		notify = s.showLocked()
	} else {
		s.showing = false
		s.timer = nil
	}
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(notify)
	}
}

// maybeSpeakLocked runs the speech gate: unmuted sender, non-empty comment,
// amount at or above the floor, and an installed voice. Synthesis runs off
// the lock and off the timer path; failures are logged and dropped.
func (s *Scheduler) maybeSpeakLocked(zap zaps.ParsedZap) {
	if s.speechOff || s.muted.Contains(zap.Sender) {
		return
	}
	if zap.Content == "" || zap.Amount < s.minSats {
		return
	}
	if s.voices == nil {
		return
	}
	voice, ok := s.voices.Find(s.voiceURI)
	if !ok {
		return
	}
	text, volume := zap.Content, s.volume
	go func() {
		if err := s.synth.Speak(context.Background(), voice, text, volume); err != nil {
			slog.Error("zap alert speech failed", "zap", zap.ID, "error", err)
		}
	}()
}

// Reset returns the scheduler to idle with a fresh queue position. Invoked
// when the stream link changes.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	s.stopLocked()
	s.queue = nil
	s.index = 0
	s.passed = make(map[string]struct{})
	s.spoken = make(map[string]struct{})
	s.mu.Unlock()
}

// Stop cancels the pending dwell timer. Mandatory on view teardown so a
// dead view's queue never advances.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()
}

func (s *Scheduler) stopLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.showing = false
}
