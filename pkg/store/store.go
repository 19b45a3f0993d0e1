// Package store persists the fleet document.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/picogrid/brightfleet/pkg/models"
)

// ErrNotConfigured is returned by a nil or closed store.
var ErrNotConfigured = errors.New("storage is not configured")

// Store loads and saves the single fleet document.
type Store interface {
	Load(ctx context.Context) (*models.Document, error)
	Save(ctx context.Context, doc *models.Document) error
}

// Memory is an in-process Store used by the sandbox scenario and tests.
type Memory struct {
	mu  sync.Mutex
	doc *models.Document
}

// NewMemory creates a memory store holding a copy of seed, or the empty document.
func NewMemory(seed *models.Document) *Memory {
	m := &Memory{doc: models.EmptyDocument()}
	if seed != nil {
		if clone, err := seed.Clone(); err == nil {
			m.doc = clone
		}
	}
	return m
}

func (m *Memory) Load(ctx context.Context) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.Clone()
}

func (m *Memory) Save(ctx context.Context, doc *models.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clone, err := doc.Clone()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.doc = clone
	m.mu.Unlock()
	return nil
}
