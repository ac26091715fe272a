package medication

import (
	"context"
	"sort"
	"sync"
	"time"
)

type mockRepository struct {
	meds   map[uint]*Medication
	nextID uint
	mu     sync.RWMutex
}

func newMockRepository() *mockRepository {
	return &mockRepository{meds: make(map[uint]*Medication)}
}

func (r *mockRepository) List(_ context.Context) ([]Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Medication, 0, len(r.meds))
	for _, m := range r.meds {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockRepository) Get(_ context.Context, id uint) (*Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.meds[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *mockRepository) Exists(_ context.Context, id uint) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.meds[id]
	return ok, nil
}

func (r *mockRepository) Create(_ context.Context, m *Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt

	stored := *m
	r.meds[m.ID] = &stored
	return nil
}

func (r *mockRepository) CreateIfAbsent(ctx context.Context, m *Medication) (bool, error) {
	r.mu.RLock()
	for _, existing := range r.meds {
		if existing.Name == m.Name {
			*m = *existing
			r.mu.RUnlock()
			return false, nil
		}
	}
	r.mu.RUnlock()

	return true, r.Create(ctx, m)
}

func (r *mockRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) (*Medication, error) {
	r.mu.Lock()
	m, ok := r.meds[id]
	if !ok {
		r.mu.Unlock()
		return nil, ErrNotFound
	}
	for col, v := range changes {
		switch col {
		case "name":
			m.Name = v.(string)
		case "dosage":
			m.Dosage = v.(string)
		case "quantity":
			m.Quantity = v.(int)
		case "instructions":
			m.Instructions = v.(*string)
		case "image":
			m.Image = v.(*string)
		}
	}
	m.UpdatedAt = time.Now()
	r.mu.Unlock()

	return r.Get(ctx, id)
}

func (r *mockRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.meds[id]; !ok {
		return ErrNotFound
	}
	delete(r.meds, id)
	return nil
}
