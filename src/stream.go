package main

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// streamSubscriber is one live streaming connection. The stream only ever
// calls Send; a failing Send means the subscriber is gone and gets dropped.
type streamSubscriber interface {
	Send(payload string) error
}

// snapshotCollector produces a fresh serialized snapshot plus the summaries
// backing it. containerService.collectSnapshot is the production collector;
// tests inject counters.
type snapshotCollector func(ctx context.Context) (payload string, data []ContainerSummary, err error)

// containersStream owns the authoritative container snapshot. Pull callers
// read it with a max-age guarantee; push subscribers receive it from a
// background loop that runs only while the subscriber set is non-empty.
//
// Lock layout: cacheMu guards the cached snapshot fields and is held only for
// reads/replacements, never across a collect. refreshMu serializes refreshes
// process-wide (single-flight). subsMu guards the subscriber set and the
// loop's cancel handle, independent from the snapshot locks so slow
// broadcast sends never block pull readers.
type containersStream struct {
	collect  snapshotCollector
	interval time.Duration

	cacheMu  sync.RWMutex
	payload  string
	data     []ContainerSummary
	cachedAt time.Time
	cached   bool

	refreshMu sync.Mutex

	subsMu sync.Mutex
	subs   map[streamSubscriber]struct{}
	cancel context.CancelFunc

	// Poke signal, capacity 1: a poke during an in-flight refresh stays
	// pending and is consumed by the loop's next wait.
	force chan struct{}

	log zerolog.Logger
}

func newContainersStream(collect snapshotCollector, interval time.Duration) *containersStream {
	if interval < minRefreshInterval {
		interval = minRefreshInterval
	}
	return &containersStream{
		collect:  collect,
		interval: interval,
		subs:     make(map[streamSubscriber]struct{}),
		force:    make(chan struct{}, 1),
		log:      componentLogger("stream"),
	}
}

// getSnapshot returns the cached container list, refreshing when it is older
// than maxAge. maxAge < 0 accepts any cached snapshot. The result is a deep
// copy; callers cannot corrupt the cache through it.
func (s *containersStream) getSnapshot(ctx context.Context, maxAge time.Duration) ([]ContainerSummary, error) {
	_, data, err := s.ensureSnapshot(ctx, maxAge)
	if err != nil {
		return nil, err
	}
	return cloneSummaries(data), nil
}

// getPayload returns the pre-serialized snapshot under the same freshness
// contract. The string is immutable, so it is shared without copying.
func (s *containersStream) getPayload(ctx context.Context, maxAge time.Duration) (string, error) {
	payload, _, err := s.ensureSnapshot(ctx, maxAge)
	return payload, err
}

func (s *containersStream) snapshotFresh(maxAge time.Duration, since time.Time) (string, []ContainerSummary, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	if !s.cached {
		return "", nil, false
	}
	if maxAge >= 0 && time.Since(s.cachedAt) > maxAge && !s.cachedAt.After(since) {
		return "", nil, false
	}
	return s.payload, s.data, true
}

func (s *containersStream) ensureSnapshot(ctx context.Context, maxAge time.Duration) (string, []ContainerSummary, error) {
	requestedAt := time.Now()
	if payload, data, ok := s.snapshotFresh(maxAge, requestedAt); ok {
		return payload, data, nil
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// A concurrent caller may have refreshed while we waited on the mutex;
	// any snapshot newer than our request is good enough.
	if payload, data, ok := s.snapshotFresh(maxAge, requestedAt); ok {
		return payload, data, nil
	}
	return s.refreshLocked(ctx)
}

// refresh runs one single-flight snapshot refresh. This is the only path
// that replaces the cached snapshot.
func (s *containersStream) refresh(ctx context.Context) (string, []ContainerSummary, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *containersStream) refreshLocked(ctx context.Context) (string, []ContainerSummary, error) {
	payload, data, err := s.collect(ctx)
	if err != nil {
		return "", nil, err
	}

	s.cacheMu.Lock()
	s.payload = payload
	s.data = data
	s.cachedAt = time.Now()
	s.cached = true
	s.cacheMu.Unlock()

	return payload, data, nil
}

// register sends the current payload to the new subscriber so it never sees
// a blank state, adds it to the set, and starts the broadcast loop when the
// set transitions from empty to non-empty.
func (s *containersStream) register(ctx context.Context, sub streamSubscriber) error {
	payload, err := s.getPayload(ctx, -1)
	if err != nil {
		return err
	}
	if err := sub.Send(payload); err != nil {
		// Subscriber died before joining; nothing to clean up
		return err
	}

	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.subs[sub] = struct{}{}
	if s.cancel == nil {
		loopCtx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		safeGo("containers-stream-broadcast", func() {
			s.run(loopCtx)
		})
		s.log.Debug().Msg("broadcast loop started")
	}
	return nil
}

// unregister removes a subscriber and cancels the broadcast loop when the
// set becomes empty, so no refresh work happens with zero listeners.
func (s *containersStream) unregister(sub streamSubscriber) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	delete(s.subs, sub)
	if len(s.subs) == 0 && s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.log.Debug().Msg("broadcast loop stopped")
	}
}

// poke requests an immediate refresh ahead of the next scheduled tick.
// Non-blocking; multiple pokes before the loop wakes collapse into one.
func (s *containersStream) poke() {
	select {
	case s.force <- struct{}{}:
	default:
	}
}

// subscriberCount reports the current subscriber set size.
func (s *containersStream) subscriberCount() int {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return len(s.subs)
}

// loopRunning reports whether the broadcast loop is active. The loop exists
// iff the subscriber set is non-empty.
func (s *containersStream) loopRunning() bool {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return s.cancel != nil
}

// run is the broadcast loop: wait for poke or tick, refresh once, fan the
// payload out, drop subscribers whose send fails. Cancellable at every wait
// point; a cancelled refresh leaves the previous snapshot intact.
func (s *containersStream) run(ctx context.Context) {
	for {
		if !s.waitForNextCycle(ctx) {
			return
		}

		payload, _, err := s.refresh(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn().Err(err).Msg("snapshot refresh failed")
			continue
		}

		s.broadcast(payload)
	}
}

// waitForNextCycle blocks until a poke arrives or the interval elapses.
// Returns false when the loop context is cancelled.
func (s *containersStream) waitForNextCycle(ctx context.Context) bool {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-s.force:
		return true
	case <-timer.C:
		return true
	}
}

// broadcast sends one payload to every current subscriber. The set is
// snapshotted under the lock, sends happen outside it, and dead subscribers
// are removed afterwards without aborting the others.
func (s *containersStream) broadcast(payload string) {
	s.subsMu.Lock()
	subs := make([]streamSubscriber, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subsMu.Unlock()

	var stale []streamSubscriber
	for _, sub := range subs {
		if err := sub.Send(payload); err != nil {
			stale = append(stale, sub)
		}
	}

	if len(stale) > 0 {
		s.log.Debug().Int("dropped", len(stale)).Msg("removing dead subscribers")
		for _, sub := range stale {
			s.unregister(sub)
		}
	}
}
