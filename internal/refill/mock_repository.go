package refill

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/elskow/medtrack/internal/auth"
	"github.com/elskow/medtrack/internal/medication"
)

type mockRepository struct {
	requests map[uint]*RefillRequest
	meds     map[uint]medication.Medication
	users    map[uint]string
	nextID   uint
	mu       sync.RWMutex
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		requests: make(map[uint]*RefillRequest),
		meds:     make(map[uint]medication.Medication),
		users:    make(map[uint]string),
	}
}

func (r *mockRepository) addMedication(m medication.Medication) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meds[m.ID] = m
}

func (r *mockRepository) addUser(id uint, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id] = username
}

func (r *mockRepository) hydrate(req RefillRequest) RefillRequest {
	req.Medication = r.meds[req.MedicationID]
	if req.UserID != nil {
		req.User = &auth.User{ID: *req.UserID, Username: r.users[*req.UserID]}
	}
	return req
}

func (r *mockRepository) List(_ context.Context, userID *uint) ([]RefillRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RefillRequest, 0, len(r.requests))
	for _, req := range r.requests {
		if userID != nil && (req.UserID == nil || *req.UserID != *userID) {
			continue
		}
		out = append(out, r.hydrate(*req))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *mockRepository) Get(_ context.Context, id uint) (*RefillRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := r.hydrate(*req)
	return &out, nil
}

func (r *mockRepository) Create(_ context.Context, req *RefillRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	req.ID = r.nextID
	req.RequestedAt = time.Now()
	req.UpdatedAt = req.RequestedAt

	stored := *req
	r.requests[req.ID] = &stored
	return nil
}

func (r *mockRepository) UpdateStatus(ctx context.Context, id uint, status Status) (*RefillRequest, error) {
	r.mu.Lock()
	req, ok := r.requests[id]
	if !ok {
		r.mu.Unlock()
		return nil, ErrNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	r.mu.Unlock()

	return r.Get(ctx, id)
}

func (r *mockRepository) Aggregate(_ context.Context, userID *uint) ([]AggregateRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint, 0, len(r.meds))
	for id := range r.meds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]AggregateRow, 0, len(ids))
	for _, id := range ids {
		row := AggregateRow{Name: r.meds[id].Name}
		for _, req := range r.requests {
			if req.MedicationID != id {
				continue
			}
			if userID != nil && (req.UserID == nil || *req.UserID != *userID) {
				continue
			}
			row.RefillRequestCount++
		}
		rows = append(rows, row)
	}
	return rows, nil
}
