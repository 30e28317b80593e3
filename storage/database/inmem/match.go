package inmemdb

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
)

// normalizeFilter round-trips filter values through bson so typed values (enums, refs, times)
// compare like the stored ones.
func normalizeFilter(filter core.Filter) (bson.M, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	raw, err := bson.Marshal(bson.M(filter))
	if err != nil {
		return nil, errors.Wrap(err, "encoding filter")
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrap(err, "decoding filter")
	}
	return m, nil
}

func matches(doc bson.Raw, want bson.M) (bool, error) {
	if len(want) == 0 {
		return true, nil
	}
	var m bson.M
	if err := bson.Unmarshal(doc, &m); err != nil {
		return false, errors.Wrap(err, "decoding document")
	}
	for k, w := range want {
		v, ok := m[k]
		if !ok {
			if w != nil {
				return false, nil
			}
			continue
		}
		if !valueMatches(v, w) {
			return false, nil
		}
	}
	return true, nil
}

// valueMatches applies equality, where an array field also matches any of its elements.
func valueMatches(v, w interface{}) bool {
	if equal(v, w) {
		return true
	}
	if arr, ok := v.(primitive.A); ok {
		for _, elem := range arr {
			if equal(elem, w) {
				return true
			}
		}
	}
	return false
}

func equal(a, b interface{}) bool {
	if na, ok := number(a); ok {
		nb, ok := number(b)
		return ok && na == nb
	}
	switch av := a.(type) {
	case primitive.A:
		bv, ok := b.(primitive.A)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case primitive.D, primitive.M:
		ra, errA := bson.Marshal(av)
		rb, errB := bson.Marshal(b)
		return errA == nil && errB == nil && string(ra) == string(rb)
	}
	return a == b
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
