package offline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomtour-backend/pkg/apiclient"
)

type upload struct {
	target string
	files  []apiclient.File
}

type fakeAPI struct {
	mu        sync.Mutex
	created   []apiclient.PlaceInput
	updated   map[string]apiclient.PlaceInput
	uploads   []upload
	createErr error
	uploadErr error
	healthErr error
	block     chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updated: make(map[string]apiclient.PlaceInput)}
}

func (f *fakeAPI) CreatePlace(ctx context.Context, in apiclient.PlaceInput) (*apiclient.Place, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, in)
	return &apiclient.Place{ID: int64(len(f.created)), Slug: "created-" + string(rune('a'+len(f.created)-1))}, nil
}

func (f *fakeAPI) UpdatePlace(ctx context.Context, identifier string, in apiclient.PlaceInput) (*apiclient.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[identifier] = in
	return &apiclient.Place{ID: 444, Slug: identifier}, nil
}

func (f *fakeAPI) UploadImages(ctx context.Context, identifier string, files []apiclient.File) ([]apiclient.PlaceImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, upload{target: identifier, files: files})
	return nil, f.uploadErr
}

func (f *fakeAPI) Health(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.healthErr
}

func (f *fakeAPI) setHealth(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthErr = err
}

func enqueue(t *testing.T, s Store, typ OperationType, identifier string, in apiclient.PlaceInput, files ...FileRef) int64 {
	t.Helper()
	op, err := NewPlaceOperation(typ, identifier, in, files)
	require.NoError(t, err)
	id, err := s.Add(context.Background(), op)
	require.NoError(t, err)
	return id
}

func TestMonitor_ReplayInOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	api := newFakeAPI()
	m := NewMonitor(store, api, zerolog.Nop(), true)

	photo := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(photo, []byte("\x89PNG\r\n\x1a\n0000"), 0o600))

	enqueue(t, store, OpCreatePlace, "", apiclient.PlaceInput{Name: strPtr("Первое")}, FileRef{Path: photo})
	enqueue(t, store, OpUpdatePlace, "444", apiclient.PlaceInput{Review: strPtr("ещё раз")})

	var syncEvents []bool
	m.AddSyncListener(func(syncing bool) { syncEvents = append(syncEvents, syncing) })

	res, err := m.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Processed: 2}, res)
	assert.Equal(t, []bool{true, false}, syncEvents)

	require.Len(t, api.created, 1)
	assert.Equal(t, "Первое", *api.created[0].Name)
	assert.Equal(t, "ещё раз", *api.updated["444"].Review)

	require.Len(t, api.uploads, 1)
	assert.Equal(t, "created-a", api.uploads[0].target)
	require.Len(t, api.uploads[0].files, 1)
	assert.Equal(t, "photo.png", api.uploads[0].files[0].Name)
	assert.Equal(t, "image/png", api.uploads[0].files[0].ContentType)

	has, err := store.HasOperations(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMonitor_FailuresAreKept(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	api := newFakeAPI()
	api.createErr = &apiclient.ResponseError{StatusCode: 400, Message: "bad"}
	m := NewMonitor(store, api, zerolog.Nop(), true)

	failed := enqueue(t, store, OpCreatePlace, "", apiclient.PlaceInput{})
	unknown, err := store.Add(ctx, Operation{Type: "deletePlace"})
	require.NoError(t, err)
	enqueue(t, store, OpUpdatePlace, "444", apiclient.PlaceInput{Dates: strPtr("2024")})

	res, err := m.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Processed: 1, Failed: 2}, res)

	ops, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, failed, ops[0].ID)
	assert.Equal(t, unknown, ops[1].ID)
	for _, op := range ops {
		assert.Equal(t, StatusError, op.Status)
	}
}

func TestMonitor_UploadFailureTolerated(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	api := newFakeAPI()
	api.uploadErr = errors.New("boom")
	m := NewMonitor(store, api, zerolog.Nop(), true)

	enqueue(t, store, OpUpdatePlace, "dacha", apiclient.PlaceInput{},
		FileRef{Name: "a.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")},
		FileRef{Path: filepath.Join(t.TempDir(), "missing.jpg")})

	res, err := m.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Processed: 1}, res)

	require.Len(t, api.uploads, 1)
	require.Len(t, api.uploads[0].files, 1, "missing file is skipped")
	assert.Equal(t, "a.jpg", api.uploads[0].files[0].Name)
}

func TestMonitor_OfflineDoesNothing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	api := newFakeAPI()
	m := NewMonitor(store, api, zerolog.Nop(), false)

	enqueue(t, store, OpCreatePlace, "", apiclient.PlaceInput{})

	res, err := m.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Zero(t, res)
	assert.Empty(t, api.created)
}

func TestMonitor_EmptyQueueSkipsSyncEvents(t *testing.T) {
	m := NewMonitor(newTestStore(t), newFakeAPI(), zerolog.Nop(), true)

	called := false
	m.AddSyncListener(func(bool) { called = true })

	_, err := m.ProcessQueue(context.Background())
	require.NoError(t, err)
	assert.False(t, called)
}

func TestMonitor_ListenersAndReconnect(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	api := newFakeAPI()
	m := NewMonitor(store, api, zerolog.Nop(), false)

	var states []bool
	remove := m.AddListener(func(online bool) { states = append(states, online) })
	assert.Equal(t, []bool{false}, states, "called with the current state")

	enqueue(t, store, OpCreatePlace, "", apiclient.PlaceInput{Name: strPtr("x")})

	m.SetOnline(ctx, false)
	m.SetOnline(ctx, true)
	m.SetOnline(ctx, true)
	assert.Equal(t, []bool{false, true}, states, "only transitions notify")
	assert.True(t, m.IsOnline())
	assert.Len(t, api.created, 1, "going online replays the queue")

	remove()
	m.SetOnline(ctx, false)
	assert.Len(t, states, 2)
}

func TestMonitor_OverlappingPassesShareWork(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	api := newFakeAPI()
	api.block = make(chan struct{})
	m := NewMonitor(store, api, zerolog.Nop(), true)

	enqueue(t, store, OpCreatePlace, "", apiclient.PlaceInput{})

	var (
		wg      sync.WaitGroup
		results [2]Result
	)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := m.ProcessQueue(ctx)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(api.block)
	wg.Wait()

	assert.Len(t, api.created, 1, "a queued create is sent once")
	assert.Equal(t, results[0], results[1])
}

func TestMonitor_RunProbesHealth(t *testing.T) {
	api := newFakeAPI()
	api.setHealth(&apiclient.NetworkError{Err: errors.New("connection refused")})
	m := NewMonitor(newTestStore(t), api, zerolog.Nop(), true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool { return !m.IsOnline() }, time.Second, 5*time.Millisecond)

	api.setHealth(&apiclient.ResponseError{StatusCode: 503})
	assert.Eventually(t, m.IsOnline, time.Second, 5*time.Millisecond)
}

func TestMonitor_CanceledCallerDoesNotFailJoiner(t *testing.T) {
	store := newTestStore(t)
	api := newFakeAPI()
	api.block = make(chan struct{})
	m := NewMonitor(store, api, zerolog.Nop(), true)

	enqueue(t, store, OpCreatePlace, "", apiclient.PlaceInput{})

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := m.ProcessQueue(leaderCtx)
		leaderErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	type outcome struct {
		res Result
		err error
	}
	joined := make(chan outcome, 1)
	go func() {
		res, err := m.ProcessQueue(context.Background())
		joined <- outcome{res, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	close(api.block)
	got := <-joined
	require.NoError(t, got.err)
	assert.Equal(t, Result{Processed: 1}, got.res)

	has, err := store.HasOperations(context.Background())
	require.NoError(t, err)
	assert.False(t, has)
}
