package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/retailops/loadboard/internal/ports"
)

// MemoryStore is an in-process document store for local runs and tests.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

// Collection returns the named collection, creating it on first use
func (s *MemoryStore) Collection(name string) ports.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{docs: make(map[string]map[string]json.RawMessage)}
		s.collections[name] = c
	}
	return c
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

type memoryCollection struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]map[string]json.RawMessage
}

func (c *memoryCollection) Find(ctx context.Context, matches ...ports.Match) ([]ports.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	docs := make([]ports.Document, 0, len(c.order))
	for _, id := range c.order {
		fields := c.docs[id]
		if !matchAll(fields, matches) {
			continue
		}
		doc, err := encode(id, fields)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *memoryCollection) Get(ctx context.Context, id string) (ports.Document, error) {
	if err := ctx.Err(); err != nil {
		return ports.Document{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	fields, ok := c.docs[id]
	if !ok {
		return ports.Document{}, ports.ErrDocumentNotFound
	}
	return encode(id, fields)
}

func (c *memoryCollection) Insert(ctx context.Context, body json.RawMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fields, err := decode(body)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.NewString()
	c.docs[id] = fields
	c.order = append(c.order, id)
	return id, nil
}

func (c *memoryCollection) Merge(ctx context.Context, id string, patch json.RawMessage) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	update, err := decode(patch)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fields, ok := c.docs[id]
	if !ok {
		return false, nil
	}
	for k, v := range update {
		fields[k] = v
	}
	return true, nil
}

func (c *memoryCollection) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		return false, nil
	}
	delete(c.docs, id)
	c.order = slices.DeleteFunc(c.order, func(v string) bool { return v == id })
	return true, nil
}

func matchAll(fields map[string]json.RawMessage, matches []ports.Match) bool {
	for _, m := range matches {
		var value string
		if raw, ok := fields[m.Field]; ok {
			// Non-string values never match.
			_ = json.Unmarshal(raw, &value)
		}
		if !strings.Contains(strings.ToLower(value), strings.ToLower(m.Substring)) {
			return false
		}
	}
	return true
}

func decode(body json.RawMessage) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return fields, nil
}

func encode(id string, fields map[string]json.RawMessage) (ports.Document, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return ports.Document{}, fmt.Errorf("encode document: %w", err)
	}
	return ports.Document{ID: id, Body: body}, nil
}

var _ ports.DocumentStore = (*MemoryStore)(nil)
