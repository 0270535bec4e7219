package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"wealthos/governance/pkg/governance"
)

// MemoryCatalog implements governance.Catalog with nested maps.
type MemoryCatalog struct {
	mu   sync.RWMutex
	docs map[string]map[string]*governance.Document
	now  func() time.Time
}

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		docs: make(map[string]map[string]*governance.Document),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func copyDocument(d *governance.Document) *governance.Document {
	c := *d
	c.Data = append(json.RawMessage(nil), d.Data...)
	return &c
}

// Put inserts or replaces a document.
func (c *MemoryCatalog) Put(ctx context.Context, collection, id string, data json.RawMessage) (*governance.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	now := c.now()

	coll, ok := c.docs[collection]
	if !ok {
		coll = make(map[string]*governance.Document)
		c.docs[collection] = coll
	}

	doc := &governance.Document{
		Envelope:   governance.Envelope{ID: id, CreatedAt: now, UpdatedAt: now},
		Collection: collection,
		Data:       append(json.RawMessage(nil), data...),
	}
	if existing, ok := coll[id]; ok {
		doc.CreatedAt = existing.CreatedAt
	}
	coll[id] = doc
	return copyDocument(doc), nil
}

// Get returns a document by collection and ID.
func (c *MemoryCatalog) Get(ctx context.Context, collection, id string) (*governance.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[collection][id]
	if !ok {
		return nil, governance.NewNotFoundError(collection, id)
	}
	return copyDocument(doc), nil
}

// List returns every document of a collection ordered by ID.
func (c *MemoryCatalog) List(ctx context.Context, collection string) ([]*governance.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	docs := make([]*governance.Document, 0, len(c.docs[collection]))
	for _, doc := range c.docs[collection] {
		docs = append(docs, copyDocument(doc))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Delete removes a document.
func (c *MemoryCatalog) Delete(ctx context.Context, collection, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[collection][id]; !ok {
		return governance.NewNotFoundError(collection, id)
	}
	delete(c.docs[collection], id)
	return nil
}

// Close is a no-op.
func (c *MemoryCatalog) Close() error {
	return nil
}
