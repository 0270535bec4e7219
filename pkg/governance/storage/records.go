package storage

import (
	"context"
	"encoding/json"

	"wealthos/governance/pkg/governance"
)

// Record is a pointer to a governance type that embeds governance.Envelope.
type Record[T any] interface {
	*T
	Identity() *governance.Envelope
}

// Save marshals v into the catalog and copies the stored envelope back
// into v. An empty ID is assigned by the catalog.
func Save[T any, PT Record[T]](ctx context.Context, c governance.Catalog, collection string, v PT) error {
	data, err := json.Marshal(v)
	if err != nil {
		return governance.NewStorageError("catalog", "marshal", err)
	}
	doc, err := c.Put(ctx, collection, v.Identity().ID, data)
	if err != nil {
		return err
	}
	*v.Identity() = doc.Envelope
	return nil
}

// Load reads one record. The envelope always comes from the catalog, not
// from the stored JSON.
func Load[T any, PT Record[T]](ctx context.Context, c governance.Catalog, collection, id string) (PT, error) {
	doc, err := c.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	return decode[T, PT](doc)
}

// LoadAll reads every record of a collection ordered by ID.
func LoadAll[T any, PT Record[T]](ctx context.Context, c governance.Catalog, collection string) ([]PT, error) {
	docs, err := c.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]PT, 0, len(docs))
	for _, doc := range docs {
		v, err := decode[T, PT](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decode[T any, PT Record[T]](doc *governance.Document) (PT, error) {
	v := PT(new(T))
	if err := json.Unmarshal(doc.Data, v); err != nil {
		return nil, governance.NewStorageError("catalog", "unmarshal", err)
	}
	*v.Identity() = doc.Envelope
	return v, nil
}
