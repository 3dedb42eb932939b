package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/securedocs/securedocs/backend/go-services/internal/document"
)

// Repository is the registry storage contract. Mutating operations re-check
// their preconditions against the stored record at commit time, so a caller's
// stale read can never smuggle in a duplicate member or signature.
type Repository interface {
	Create(ctx context.Context, doc *document.Document) error
	Get(ctx context.Context, id string) (*document.Document, error)
	ListBySigner(ctx context.Context, identity string) ([]*document.Document, error)
	AddSigner(ctx context.Context, id, identity string) (*document.Document, error)
	RemoveSigner(ctx context.Context, id, identity string) (*document.Document, error)
	Sign(ctx context.Context, id, identity string) (*document.Document, error)
}

// MemoryRepo is the in-process repository used by the dev server and unit
// tests. A single mutex stands in for the external executor's per-operation
// atomicity.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*document.Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*document.Document)}
}

func (m *MemoryRepo) Create(ctx context.Context, doc *document.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.store[doc.ID]; exists {
		// same uniqueness guarantee as the Mongo unique index on "id"
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.AllowedSigners == nil {
		doc.AllowedSigners = []string{}
	}
	if doc.Signatures == nil {
		doc.Signatures = []string{}
	}
	cp := clone(doc)
	m.store[doc.ID] = cp
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	return clone(d), nil
}

func (m *MemoryRepo) ListBySigner(ctx context.Context, identity string) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*document.Document{}
	for _, d := range m.store {
		if d.IsAuthorized(identity) {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

func (m *MemoryRepo) AddSigner(ctx context.Context, id, identity string) (*document.Document, error) {
	if document.NormalizeIdentity(identity) == "" {
		return nil, document.ErrValidation
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	if d.IsAuthorized(identity) {
		return nil, document.ErrDuplicateMember
	}
	d.AllowedSigners = append(d.AllowedSigners, identity)
	return clone(d), nil
}

func (m *MemoryRepo) RemoveSigner(ctx context.Context, id, identity string) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	// removing an absent identity is a no-op; recorded signatures are kept
	want := document.NormalizeIdentity(identity)
	kept := d.AllowedSigners[:0]
	for _, s := range d.AllowedSigners {
		if document.NormalizeIdentity(s) != want {
			kept = append(kept, s)
		}
	}
	d.AllowedSigners = kept
	return clone(d), nil
}

func (m *MemoryRepo) Sign(ctx context.Context, id, identity string) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	if !d.IsAuthorized(identity) {
		return nil, document.ErrNotAuthorized
	}
	if d.HasSigned(identity) {
		return nil, document.ErrDuplicateSignature
	}
	d.Signatures = append(d.Signatures, identity)
	return clone(d), nil
}

func clone(d *document.Document) *document.Document {
	cp := *d
	cp.AllowedSigners = append([]string{}, d.AllowedSigners...)
	cp.Signatures = append([]string{}, d.Signatures...)
	return &cp
}
