package db

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store used for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	trees  map[int64]Tree
	users  map[string]User
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		trees:  make(map[int64]Tree),
		users:  make(map[string]User),
	}
}

// Close is a no-op.
func (s *MemoryStore) Close() {}

func (s *MemoryStore) ListCities(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cities := make([]string, 0, len(s.trees))
	for _, t := range s.trees {
		cities = append(cities, t.City)
	}
	return distinctSorted(cities), nil
}

func (s *MemoryStore) ListStreets(_ context.Context, city string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f := TreeFilter{City: city}
	streets := make([]string, 0)
	for _, t := range s.trees {
		if f.Matches(t) {
			streets = append(streets, t.Address)
		}
	}
	return distinctSorted(streets), nil
}

func (s *MemoryStore) ListTrees(_ context.Context, f TreeFilter) ([]Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Tree, 0)
	for id := int64(1); id < s.nextID; id++ {
		t, ok := s.trees[id]
		if ok && f.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetTree(_ context.Context, id int64) (*Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trees[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *MemoryStore) GetTreeByCustomID(_ context.Context, customID string) (*Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.trees {
		if t.CustomID == customID {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateTree(_ context.Context, t Tree) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.customIDTaken(t.CustomID, 0) {
		return 0, ErrDuplicateCustomID
	}
	t.ID = s.nextID
	s.nextID++
	s.trees[t.ID] = t
	return t.ID, nil
}

func (s *MemoryStore) UpdateTree(_ context.Context, t Tree) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trees[t.ID]; !ok {
		return ErrNotFound
	}
	if s.customIDTaken(t.CustomID, t.ID) {
		return ErrDuplicateCustomID
	}
	s.trees[t.ID] = t
	return nil
}

func (s *MemoryStore) DeleteTree(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trees[id]; !ok {
		return ErrNotFound
	}
	delete(s.trees, id)
	return nil
}

// customIDTaken must be called with the lock held.
func (s *MemoryStore) customIDTaken(customID string, except int64) bool {
	for id, t := range s.trees {
		if id != except && t.CustomID == customID {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateUser(_ context.Context, username, passwordHash string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return 0, ErrDuplicateUser
	}
	u := User{
		ID:           int64(len(s.users) + 1),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         "user",
		CreatedAt:    time.Now().UTC(),
	}
	s.users[username] = u
	return u.ID, nil
}

func (s *MemoryStore) GetUser(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
