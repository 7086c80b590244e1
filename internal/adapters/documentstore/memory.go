package documentstore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// InMemory keeps JSON encoded documents in memory. Used for local development and tests.
type InMemory struct {
	mu          sync.Mutex
	collections map[string]map[string][]byte
}

func NewInMemory() *InMemory {
	return &InMemory{
		collections: make(map[string]map[string][]byte),
	}
}

func (s *InMemory) collection(name string) map[string][]byte {
	collection, ok := s.collections[name]
	if !ok {
		collection = make(map[string][]byte)
		s.collections[name] = collection
	}
	return collection
}

func (s *InMemory) Get(ctx context.Context, collection, id string, out any) error {
	s.mu.Lock()
	data, ok := s.collection(collection)[id]
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(data, out)
}

func (s *InMemory) Create(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	documents := s.collection(collection)
	if _, ok := documents[id]; ok {
		return ErrAlreadyExists
	}
	documents[id] = data
	return nil
}

func (s *InMemory) Put(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.collection(collection)[id] = data
	return nil
}

func (s *InMemory) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	documents := s.collection(collection)
	if _, ok := documents[id]; !ok {
		return ErrNotFound
	}
	delete(documents, id)
	return nil
}

func (s *InMemory) List(ctx context.Context, collection string) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	documents := s.collection(collection)
	ids := make([]string, 0, len(documents))
	for id := range documents {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	listed := make([]Document, 0, len(ids))
	for _, id := range ids {
		data := documents[id]
		listed = append(listed, Document{
			ID: id,
			decode: func(out any) error {
				return json.Unmarshal(data, out)
			},
		})
	}
	return listed, nil
}

func (s *InMemory) Increment(ctx context.Context, collection, id string, deltas map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	documents := s.collection(collection)
	data, ok := documents[id]
	if !ok {
		return ErrNotFound
	}

	var fields map[string]any
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.UseNumber()
	if err := decoder.Decode(&fields); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}

	for path, delta := range deltas {
		if err := incrementPath(fields, strings.Split(path, "."), delta); err != nil {
			return fmt.Errorf("failed to increment %s: %w", path, err)
		}
	}

	updated, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	documents[id] = updated
	return nil
}

func incrementPath(fields map[string]any, path []string, delta int) error {
	if len(path) > 1 {
		nested, ok := fields[path[0]].(map[string]any)
		if !ok {
			nested = make(map[string]any)
			fields[path[0]] = nested
		}
		return incrementPath(nested, path[1:], delta)
	}

	var current int64
	if raw, ok := fields[path[0]]; ok && raw != nil {
		number, ok := raw.(json.Number)
		if !ok {
			return fmt.Errorf("field is not a number")
		}
		parsed, err := number.Int64()
		if err != nil {
			return fmt.Errorf("field is not an integer: %w", err)
		}
		current = parsed
	}
	fields[path[0]] = current + int64(delta)
	return nil
}
