package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"roomtour-backend/pkg/apiclient"
)

// PlacesAPI is the part of the API client replay needs.
type PlacesAPI interface {
	CreatePlace(ctx context.Context, in apiclient.PlaceInput) (*apiclient.Place, error)
	UpdatePlace(ctx context.Context, identifier string, in apiclient.PlaceInput) (*apiclient.Place, error)
	UploadImages(ctx context.Context, identifier string, files []apiclient.File) ([]apiclient.PlaceImage, error)
	Health(ctx context.Context) error
}

var ErrUnknownOperation = errors.New("unknown operation type")

// Result summarizes one replay pass.
type Result struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// Monitor tracks connectivity and replays the queue when it comes back.
type Monitor struct {
	store  Store
	api    PlacesAPI
	logger zerolog.Logger

	mu            sync.Mutex
	online        bool
	listeners     map[int]func(bool)
	syncListeners map[int]func(bool)
	nextID        int

	replay singleflight.Group
}

func NewMonitor(store Store, api PlacesAPI, logger zerolog.Logger, initialOnline bool) *Monitor {
	return &Monitor{
		store:         store,
		api:           api,
		logger:        logger.With().Str("component", "offline_monitor").Logger(),
		online:        initialOnline,
		listeners:     make(map[int]func(bool)),
		syncListeners: make(map[int]func(bool)),
	}
}

func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records the state. On a transition listeners are notified, and
// going online starts a replay pass which SetOnline waits for.
func (m *Monitor) SetOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	fns := collect(m.listeners)
	m.mu.Unlock()

	m.logger.Info().Bool("online", online).Msg("Connectivity changed")
	for _, fn := range fns {
		fn(online)
	}

	if online {
		if _, err := m.ProcessQueue(ctx); err != nil {
			m.logger.Error().Err(err).Msg("Queue replay failed")
		}
	}
}

// AddListener calls fn with the current state right away and then on
// every transition.
func (m *Monitor) AddListener(fn func(online bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	online := m.online
	m.mu.Unlock()

	fn(online)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// AddSyncListener gets true when a replay pass starts and false when it ends.
func (m *Monitor) AddSyncListener(fn func(syncing bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.syncListeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.syncListeners, id)
	}
}

func (m *Monitor) notifySync(syncing bool) {
	m.mu.Lock()
	fns := collect(m.syncListeners)
	m.mu.Unlock()
	for _, fn := range fns {
		fn(syncing)
	}
}

// replayTimeout bounds one shared replay pass.
const replayTimeout = 5 * time.Minute

// ProcessQueue replays queued operations in insertion order. Concurrent
// callers share the pass already in flight. The pass is detached from the
// caller that started it, so a canceled caller returns early without
// failing the others.
func (m *Monitor) ProcessQueue(ctx context.Context) (Result, error) {
	ch := m.replay.DoChan("replay", func() (interface{}, error) {
		passCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), replayTimeout)
		defer cancel()
		return m.processQueue(passCtx)
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		if r.Shared {
			m.logger.Debug().Msg("Joined replay pass in flight")
		}
		res, _ := r.Val.(Result)
		return res, r.Err
	}
}

func (m *Monitor) processQueue(ctx context.Context) (Result, error) {
	var res Result

	if !m.IsOnline() {
		return res, nil
	}
	has, err := m.store.HasOperations(ctx)
	if err != nil || !has {
		return res, err
	}

	m.notifySync(true)
	defer m.notifySync(false)

	ops, err := m.store.List(ctx)
	if err != nil {
		return res, err
	}
	m.logger.Info().Int("operations", len(ops)).Msg("Replaying offline queue")

	for _, op := range ops {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		if err := m.replayOne(ctx, op); err != nil {
			res.Failed++
			m.logger.Warn().Err(err).
				Int64("operation_id", op.ID).
				Str("type", string(op.Type)).
				Msg("Queued operation failed")
			if err := m.store.UpdateStatus(ctx, op.ID, StatusError); err != nil {
				return res, err
			}
			continue
		}

		if err := m.store.Remove(ctx, op.ID); err != nil {
			return res, err
		}
		res.Processed++
	}

	m.logger.Info().Int("processed", res.Processed).Int("failed", res.Failed).Msg("Offline queue replayed")
	return res, nil
}

func (m *Monitor) replayOne(ctx context.Context, op Operation) error {
	var in apiclient.PlaceInput
	if err := json.Unmarshal(op.Data, &in); err != nil {
		return fmt.Errorf("decode operation data: %w", err)
	}

	var (
		place *apiclient.Place
		err   error
	)
	switch op.Type {
	case OpCreatePlace:
		place, err = m.api.CreatePlace(ctx, in)
	case OpUpdatePlace:
		place, err = m.api.UpdatePlace(ctx, op.Identifier, in)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op.Type)
	}
	if err != nil {
		return err
	}

	target := op.Identifier
	if place != nil {
		target = place.Identifier()
	}
	m.uploadFiles(ctx, op, target)
	return nil
}

// uploadFiles never fails the operation; the place itself is already saved.
func (m *Monitor) uploadFiles(ctx context.Context, op Operation, target string) {
	if len(op.Files) == 0 || target == "" {
		return
	}

	files, errs := resolveFiles(op.Files)
	for _, err := range errs {
		m.logger.Warn().Err(err).Int64("operation_id", op.ID).Msg("Skipping queued file")
	}
	if len(files) == 0 {
		return
	}

	if _, err := m.api.UploadImages(ctx, target, files); err != nil {
		m.logger.Warn().Err(err).
			Int64("operation_id", op.ID).
			Str("place", target).
			Msg("Image upload after replay failed")
	}
}

// Run probes the API every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	m.probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	err := m.api.Health(ctx)
	if ctx.Err() != nil {
		return
	}
	// an HTTP error still means the server is reachable
	m.SetOnline(ctx, err == nil || !apiclient.IsOffline(err))
}

func collect(m map[int]func(bool)) []func(bool) {
	fns := make([]func(bool), 0, len(m))
	for _, fn := range m {
		fns = append(fns, fn)
	}
	return fns
}
