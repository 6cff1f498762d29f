package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/mindneox/recall/pkg/archive"
)

// MockArchive is an in-process archive.Driver that keeps records in
// insertion order.
type MockArchive struct {
	mu      sync.Mutex
	records []archive.Record

	// FailSave causes Save to return an error.
	FailSave bool
}

func NewMockArchive() *MockArchive {
	return &MockArchive{}
}

func (m *MockArchive) Save(_ context.Context, rec archive.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave {
		return errors.New("mock archive failure")
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *MockArchive) List(_ context.Context, limit int) ([]archive.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []archive.Record{}
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *MockArchive) ListByUser(_ context.Context, userID string, limit int) ([]archive.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []archive.Record{}
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if m.records[i].UserID == userID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func (m *MockArchive) Get(_ context.Context, id string) (*archive.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.records {
		if rec.ID == id {
			return &rec, nil
		}
	}
	return nil, archive.ErrNotFound
}

func (m *MockArchive) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, rec := range m.records {
		if rec.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return archive.ErrNotFound
}

func (m *MockArchive) Stats(_ context.Context) (archive.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := map[string]struct{}{}
	var withContext int64
	for _, rec := range m.records {
		users[rec.UserID] = struct{}{}
		if rec.HasContext {
			withContext++
		}
	}
	return archive.NewStats(int64(len(m.records)), int64(len(users)), withContext), nil
}

func (m *MockArchive) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

func (m *MockArchive) Ping(_ context.Context) error {
	return nil
}

func (m *MockArchive) Close() error {
	return nil
}

// Records returns a copy of everything saved so far.
func (m *MockArchive) Records() []archive.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]archive.Record(nil), m.records...)
}
