package session

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pivolan/chart_builder/domain/models"
	uuid "github.com/satori/go.uuid"
)

// Registry keeps the most recently used sessions; the least recently used
// one is dropped when the cache is full.
type Registry struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *Session]
}

func NewRegistry(size int) (*Registry, error) {
	cache, err := lru.New[string, *Session](size)
	if err != nil {
		return nil, fmt.Errorf("error creating session cache: %w", err)
	}
	return &Registry{cache: cache}, nil
}

// Create starts a session for records under a fresh id. The session is
// registered even when the dataset is empty, so the caller can show the
// empty state.
func (r *Registry) Create(records []models.Record) (*Session, error) {
	return r.CreateWithID(uuid.NewV4().String(), records)
}

// CreateWithID loads records into the session stored under id, or starts a
// new one. Reloading keeps the session object, so its subscribers see the new
// dataset.
func (r *Registry) CreateWithID(id string, records []models.Record) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.cache.Get(id); ok {
		return existing, existing.Load(records)
	}
	s := New(id)
	err := s.Load(records)
	r.cache.Add(id, s)
	return s, err
}

func (r *Registry) Get(id string) (*Session, bool) {
	return r.cache.Get(id)
}

func (r *Registry) Remove(id string) {
	r.cache.Remove(id)
}

func (r *Registry) Len() int {
	return r.cache.Len()
}
