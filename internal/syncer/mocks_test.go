package syncer

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/halcyonfit/halcyon-engine/internal/domain"
	"github.com/halcyonfit/halcyon-engine/internal/store"
)

// fakeRecordStore is an in-memory RecordStore with the same per-key
// semantics as the real implementations, plus error injection.
type fakeRecordStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*domain.Record

	failUpsert     error
	failMarkSynced error
	failList       error
	failCount      error
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: make(map[uuid.UUID]*domain.Record)}
}

var _ store.RecordStore = (*fakeRecordStore)(nil)

func cloneRecord(r *domain.Record) *domain.Record {
	clone := *r
	clone.Payload = append([]byte(nil), r.Payload...)
	if r.LastSyncedAt != nil {
		syncedAt := *r.LastSyncedAt
		clone.LastSyncedAt = &syncedAt
	}
	return &clone
}

func (s *fakeRecordStore) Upsert(_ context.Context, record *domain.Record) error {
	if s.failUpsert != nil {
		return s.failUpsert
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneRecord(record)
	stored.Dirty = true
	s.records[record.ID] = stored
	return nil
}

func (s *fakeRecordStore) Get(_ context.Context, id uuid.UUID) (*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return cloneRecord(record), nil
}

func (s *fakeRecordStore) MarkSynced(_ context.Context, id uuid.UUID, version, syncedAt time.Time) error {
	if s.failMarkSynced != nil {
		return s.failMarkSynced
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return store.ErrRecordNotFound
	}
	if record.UpdatedAt.After(version) {
		return store.ErrStaleVersion
	}
	record.MarkSynced(syncedAt)
	return nil
}

func (s *fakeRecordStore) ListDirty(_ context.Context) ([]*domain.Record, error) {
	if s.failList != nil {
		return nil, s.failList
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var dirty []*domain.Record
	for _, record := range s.records {
		if record.Dirty {
			dirty = append(dirty, cloneRecord(record))
		}
	}
	sort.Slice(dirty, func(i, j int) bool { return dirty[i].UpdatedAt.Before(dirty[j].UpdatedAt) })
	return dirty, nil
}

func (s *fakeRecordStore) ListDirtySince(ctx context.Context, since time.Time) ([]*domain.Record, error) {
	all, err := s.ListDirty(ctx)
	if err != nil {
		return nil, err
	}
	var filtered []*domain.Record
	for _, record := range all {
		if !record.UpdatedAt.Before(since) {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}

func (s *fakeRecordStore) CountDirty(_ context.Context) (int, error) {
	if s.failCount != nil {
		return 0, s.failCount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, record := range s.records {
		if record.Dirty {
			count++
		}
	}
	return count, nil
}

// fakeRemote is a RemoteClient that records pushes, injects per-record
// failures, and detects concurrent pushes for the same record ID.
type fakeRemote struct {
	mu        sync.Mutex
	pushCount map[uuid.UUID]int
	failures  map[uuid.UUID]error
	delay     time.Duration

	active           map[uuid.UUID]int
	concurrentSameID bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		pushCount: make(map[uuid.UUID]int),
		failures:  make(map[uuid.UUID]error),
		active:    make(map[uuid.UUID]int),
	}
}

var _ RemoteClient = (*fakeRemote)(nil)

func (r *fakeRemote) failWith(id uuid.UUID, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[id] = err
}

func (r *fakeRemote) pushes(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pushCount[id]
}

func (r *fakeRemote) Push(_ context.Context, record *domain.Record) error {
	r.mu.Lock()
	r.pushCount[record.ID]++
	r.active[record.ID]++
	if r.active[record.ID] > 1 {
		r.concurrentSameID = true
	}
	failure := r.failures[record.ID]
	delay := r.delay
	r.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	r.mu.Lock()
	r.active[record.ID]--
	r.mu.Unlock()

	return failure
}

// fakeConnectivity is a controllable ConnectivityObserver.
type fakeConnectivity struct {
	mu    sync.Mutex
	state domain.OnlineState
	ch    chan domain.OnlineState
}

func newFakeConnectivity(state domain.OnlineState) *fakeConnectivity {
	return &fakeConnectivity{
		state: state,
		ch:    make(chan domain.OnlineState, 16),
	}
}

var _ ConnectivityObserver = (*fakeConnectivity)(nil)

func (c *fakeConnectivity) IsOnline(_ context.Context) domain.OnlineState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *fakeConnectivity) Observe(_ context.Context) <-chan domain.OnlineState {
	return c.ch
}

// setState flips the connectivity state and emits the change.
func (c *fakeConnectivity) setState(state domain.OnlineState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	c.ch <- state
}
