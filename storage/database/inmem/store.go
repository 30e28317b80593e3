// Package inmemdb is a process-local core.DocumentStore used by tests and the `memory` engine.
package inmemdb

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
)

type (
	Store struct {
		mu    sync.RWMutex
		colls map[string]*collection
	}

	collection struct {
		order  []string // insertion order
		docs   map[string]bson.Raw
		unique map[string]bool
	}
)

var _ core.DocumentStore = (*Store)(nil)

func New() *Store {
	return &Store{colls: make(map[string]*collection)}
}

// Reset drops every document (indexes are kept).
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.colls {
		c.order = nil
		c.docs = make(map[string]bson.Raw)
	}
}

func (s *Store) coll(name string) *collection {
	c, ok := s.colls[name]
	if !ok {
		c = &collection{docs: make(map[string]bson.Raw), unique: make(map[string]bool)}
		s.colls[name] = c
	}
	return c
}

func (s *Store) EnsureUnique(_ context.Context, collection, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coll(collection).unique[field] = true
	return nil
}

func (s *Store) Insert(_ context.Context, collection string, doc bson.Raw) error {
	if err := doc.Validate(); err != nil {
		return errors.Wrap(err, "validating document")
	}
	id, ok := doc.Lookup("_id").StringValueOK()
	if !ok || id == "" {
		return errors.New("document has no string _id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(collection)
	if _, exists := c.docs[id]; exists {
		return &core.DuplicateKeyError{Collection: collection, Field: "_id"}
	}
	if err := c.checkUnique(collection, id, doc); err != nil {
		return err
	}
	c.docs[id] = clone(doc)
	c.order = append(c.order, id)
	return nil
}

func (s *Store) Get(_ context.Context, collection, id string) (bson.Raw, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.colls[collection]
	if !ok {
		return nil, core.ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return clone(doc), nil
}

func (s *Store) Find(_ context.Context, collection string, filter core.Filter) ([]bson.Raw, error) {
	want, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]bson.Raw, 0)
	c, ok := s.colls[collection]
	if !ok {
		return docs, nil
	}
	for _, id := range c.order {
		doc := c.docs[id]
		match, err := matches(doc, want)
		if err != nil {
			return nil, err
		}
		if match {
			docs = append(docs, clone(doc))
		}
	}
	return docs, nil
}

func (s *Store) FindByIDs(_ context.Context, collection string, ids []string) ([]bson.Raw, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]bson.Raw, 0, len(ids))
	c, ok := s.colls[collection]
	if !ok {
		return docs, nil
	}
	for _, id := range ids {
		if doc, ok := c.docs[id]; ok {
			docs = append(docs, clone(doc))
		}
	}
	return docs, nil
}

func (s *Store) Count(ctx context.Context, collection string, filter core.Filter) (int64, error) {
	docs, err := s.Find(ctx, collection, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (s *Store) Update(_ context.Context, collection, id string, cond core.Filter, fields core.Fields) (bson.Raw, error) {
	want, err := normalizeFilter(cond)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(collection)
	doc, ok := c.docs[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	match, err := matches(doc, want)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, core.ErrPreconditionFailed
	}

	var d bson.D
	if err := bson.Unmarshal(doc, &d); err != nil {
		return nil, errors.Wrap(err, "decoding document")
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d = setKey(d, k, fields[k])
	}

	updated, err := bson.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(err, "encoding document")
	}
	if err := c.checkUnique(collection, id, updated); err != nil {
		return nil, err
	}
	c.docs[id] = updated
	return clone(updated), nil
}

func (s *Store) Increment(_ context.Context, collection, id, array string, index int, counter string) (bson.Raw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(collection)
	doc, ok := c.docs[id]
	if !ok {
		return nil, core.ErrNotFound
	}

	var d bson.D
	if err := bson.Unmarshal(doc, &d); err != nil {
		return nil, errors.Wrap(err, "decoding document")
	}
	var arr primitive.A
	for _, e := range d {
		if e.Key == array {
			arr, _ = e.Value.(primitive.A)
		}
	}
	if index < 0 || index >= len(arr) {
		return nil, core.ErrPreconditionFailed
	}
	elem, ok := arr[index].(primitive.D)
	if !ok {
		return nil, core.ErrPreconditionFailed
	}

	var found bool
	for i, e := range elem {
		if e.Key != counter {
			continue
		}
		found = true
		switch n := e.Value.(type) {
		case int32:
			elem[i].Value = n + 1
		case int64:
			elem[i].Value = n + 1
		case float64:
			elem[i].Value = n + 1
		default:
			return nil, errors.Errorf("%s.%d.%s is not a number", array, index, counter)
		}
	}
	if !found {
		elem = append(elem, primitive.E{Key: counter, Value: int64(1)})
	}
	arr[index] = elem
	d = setKey(d, array, arr)

	updated, err := bson.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(err, "encoding document")
	}
	c.docs[id] = updated
	return clone(updated), nil
}

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }

func (c *collection) checkUnique(collection, id string, doc bson.Raw) error {
	for field := range c.unique {
		val, err := doc.LookupErr(field)
		if err != nil || val.Type == bson.TypeNull {
			continue
		}
		for otherID, other := range c.docs {
			if otherID == id {
				continue
			}
			if otherVal, err := other.LookupErr(field); err == nil && otherVal.Equal(val) {
				return &core.DuplicateKeyError{Collection: collection, Field: field}
			}
		}
	}
	return nil
}

func setKey(d bson.D, key string, val interface{}) bson.D {
	for i := range d {
		if d[i].Key == key {
			d[i].Value = val
			return d
		}
	}
	return append(d, primitive.E{Key: key, Value: val})
}

func clone(doc bson.Raw) bson.Raw {
	return append(bson.Raw(nil), doc...)
}
