package resource

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Ref is the identifier of a document of type T, stored as its plain string id.
// Once populated, Doc holds the referenced document and the JSON form becomes the document itself.
type Ref[T any] struct {
	ID  string
	Doc *T
}

func NewRef[T any](id string) Ref[T] {
	return Ref[T]{ID: id}
}

// RefID is used by the validator to check refs like plain strings.
func (r Ref[T]) RefID() string { return r.ID }

func (r Ref[T]) IsZero() bool { return r.ID == "" }

func (r Ref[T]) String() string { return r.ID }

func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Doc != nil {
		return json.Marshal(r.Doc)
	}
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

// UnmarshalJSON accepts an id string, null, or an object carrying an "id".
func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = Ref[T]{}
		return nil
	case len(data) > 0 && data[0] == '{':
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*r = Ref[T]{ID: obj.ID}
		return nil
	default:
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("reference must be an id string")
		}
		*r = Ref[T]{ID: id}
		return nil
	}
}

func (r Ref[T]) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if r.ID == "" {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(r.ID)
}

func (r *Ref[T]) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*r = Ref[T]{}
		return nil
	case bsontype.String:
		id, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
		if !ok {
			return errors.New("invalid reference")
		}
		*r = Ref[T]{ID: id}
		return nil
	default:
		return errors.Errorf("cannot decode %v into a reference", t)
	}
}

func (r *Ref[T]) fill(found map[string]bson.Raw) error {
	raw, ok := found[r.ID]
	if !ok {
		return nil // dangling: keep the raw id
	}
	doc := new(T)
	if err := bson.Unmarshal(raw, doc); err != nil {
		return errors.Wrapf(err, "decoding reference %s", r.ID)
	}
	r.Doc = doc
	return nil
}

// IDs returns the ids of refs.
func IDs[T any](refs []Ref[T]) []string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	return ids
}

// Link declares a relationship from a document field to another collection.
// Enforced links are checked for existence at create time; every link is populated on read.
type Link struct {
	Field      string
	Collection string
	Enforce    bool

	ids  []string
	fill func(found map[string]bson.Raw) error
}

// One links a single Ref field.
func One[T any](field, collection string, ref *Ref[T]) Link {
	l := Link{Field: field, Collection: collection, fill: ref.fill}
	if ref.ID != "" {
		l.ids = []string{ref.ID}
	}
	return l
}

// Many links a slice of refs; refs elements are populated in place.
func Many[T any](field, collection string, refs []Ref[T]) Link {
	l := Link{Field: field, Collection: collection}
	for _, ref := range refs {
		if ref.ID != "" {
			l.ids = append(l.ids, ref.ID)
		}
	}
	l.fill = func(found map[string]bson.Raw) error {
		for i := range refs {
			if err := refs[i].fill(found); err != nil {
				return err
			}
		}
		return nil
	}
	return l
}

// Enforced marks the link as existence-checked.
func (l Link) Enforced() Link {
	l.Enforce = true
	return l
}
