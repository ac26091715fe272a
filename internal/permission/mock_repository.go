package permission

import (
	"context"
	"sort"
	"sync"
)

type mockRepository struct {
	groups      map[string]*Group
	permissions map[uint]map[string]struct{}
	members     map[uint]map[uint]struct{}
	mu          sync.RWMutex
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		groups:      make(map[string]*Group),
		permissions: make(map[uint]map[string]struct{}),
		members:     make(map[uint]map[uint]struct{}),
	}
}

func (r *mockRepository) EnsureGroup(_ context.Context, name string) (*Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.groups[name]; ok {
		return g, nil
	}
	g := &Group{ID: uint(len(r.groups) + 1), Name: name}
	r.groups[name] = g
	return g, nil
}

func (r *mockRepository) GetGroupByName(_ context.Context, name string) (*Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[name]
	if !ok {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

func (r *mockRepository) AddGroupPermissions(_ context.Context, groupID uint, caps []Capability) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.permissions[groupID]
	if !ok {
		set = make(map[string]struct{})
		r.permissions[groupID] = set
	}
	for _, c := range caps {
		set[string(c)] = struct{}{}
	}
	return nil
}

func (r *mockRepository) RemoveGroupPermissionsExcept(_ context.Context, groupID uint, keep []Capability) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keepSet := make(map[string]struct{}, len(keep))
	for _, c := range keep {
		keepSet[string(c)] = struct{}{}
	}
	for codename := range r.permissions[groupID] {
		if _, ok := keepSet[codename]; !ok {
			delete(r.permissions[groupID], codename)
		}
	}
	return nil
}

func (r *mockRepository) GroupPermissions(_ context.Context, groupID uint) ([]Capability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codenames := make([]string, 0, len(r.permissions[groupID]))
	for codename := range r.permissions[groupID] {
		codenames = append(codenames, codename)
	}
	sort.Strings(codenames)

	caps := make([]Capability, 0, len(codenames))
	for _, c := range codenames {
		caps = append(caps, Capability(c))
	}
	return caps, nil
}

func (r *mockRepository) AddUserToGroup(_ context.Context, userID, groupID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[userID]
	if !ok {
		set = make(map[uint]struct{})
		r.members[userID] = set
	}
	set[groupID] = struct{}{}
	return nil
}

func (r *mockRepository) UserGroupNames(_ context.Context, userID uint) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for _, g := range r.groups {
		if _, ok := r.members[userID][g.ID]; ok {
			names = append(names, g.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}
