package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Store is a string-keyed, string-valued durable store.
type Store interface {
	// Get returns the value under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Apply writes every operation of the batch or none of them.
	Apply(ctx context.Context, batch *Batch) error
}

type Op struct {
	Key    string
	Value  string
	Delete bool
}

// Batch is a set of writes keyed by store key; a later write to a key replaces
// the earlier one.
type Batch struct {
	ops map[string]Op
}

func NewBatch() *Batch {
	return &Batch{ops: make(map[string]Op)}
}

func (b *Batch) Set(key, value string) *Batch {
	b.ops[key] = Op{Key: key, Value: value}
	return b
}

func (b *Batch) Delete(key string) *Batch {
	b.ops[key] = Op{Key: key, Delete: true}
	return b
}

func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.ops)
}

// Ops returns the operations ordered by key.
func (b *Batch) Ops() []Op {
	if b == nil {
		return nil
	}
	ops := make([]Op, 0, len(b.ops))
	for _, op := range b.ops {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Key < ops[j].Key })
	return ops
}

// Keys returns the touched keys ordered.
func (b *Batch) Keys() []string {
	ops := b.Ops()
	keys := make([]string, len(ops))
	for i, op := range ops {
		keys[i] = op.Key
	}
	return keys
}

// merge folds next into b and reports how many pending writes it replaced.
func (b *Batch) merge(next *Batch) int {
	replaced := 0
	for k, op := range next.ops {
		if _, ok := b.ops[k]; ok {
			replaced++
		}
		b.ops[k] = op
	}
	return replaced
}

// LoadJSON decodes the value under key into v. found is false when the key is
// absent; a value that does not decode yields ErrCorrupt.
func LoadJSON(ctx context.Context, s Store, key string, v any) (found bool, err error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

func EncodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return string(data), nil
}
