package resource

import (
	"context"
	"fmt"
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
)

// Operations reported to the core.Observer.
const (
	OpCreate     = "create"
	OpList       = "list"
	OpGet        = "get"
	OpPatch      = "patch"
	OpTransition = "transition"
	OpIncrement  = "increment"
)

type (
	// Definition describes one resource.
	Definition[T any] struct {
		Name       string   // singular, used in errors and metrics
		Collection string   // store collection
		Event      string   // broadcast after every successful create when set
		Unique     []string // fields backed by a unique index
		Filters    []string // fields accepted as list filters

		// Prepare normalises a new document and applies defaults before validation.
		Prepare func(ctx context.Context, doc *T) error
		// Check runs after validation and reference checks, right before the insert.
		Check func(ctx context.Context, doc *T) error
		// Links declares the references of doc.
		Links func(doc *T) []Link
		// AfterCreate runs once the document is persisted and broadcast.
		AfterCreate func(ctx context.Context, doc *T)
	}

	// Deps holds the collaborators shared by every resource service.
	Deps struct {
		Store       core.DocumentStore
		Broadcaster core.Broadcaster
		Observer    core.Observer
		Validate    *validator.Validate
		Translator  ut.Translator
	}

	// Service exposes the generic operations of a resource of type T.
	Service[T any, P interface {
		*T
		Document
	}] struct {
		def         Definition[T]
		store       core.DocumentStore
		broadcaster core.Broadcaster
		observer    core.Observer
		validate    *validator.Validate
		translator  ut.Translator
		filterTypes map[string]reflect.Type
	}
)

// NewService builds the Service of a Definition, eg. `resource.NewService(feeDef, deps)`.
func NewService[T any, P interface {
	*T
	Document
}](def Definition[T], deps Deps) *Service[T, P] {
	if deps.Broadcaster == nil {
		deps.Broadcaster = core.NopBroadcaster
	}
	if deps.Observer == nil {
		deps.Observer = core.NopObserver
	}

	var zero T
	typ := reflect.TypeOf(zero)
	registerRefTypes(deps.Validate, typ, make(map[reflect.Type]bool))

	fields := bsonFields(typ)
	filterTypes := make(map[string]reflect.Type, len(def.Filters))
	for _, name := range def.Filters {
		ft, ok := fields[name]
		if !ok {
			panic(fmt.Sprintf("resource %s: unknown filter field %q", def.Name, name))
		}
		filterTypes[name] = ft
	}

	return &Service[T, P]{
		def:         def,
		store:       deps.Store,
		broadcaster: deps.Broadcaster,
		observer:    deps.Observer,
		validate:    deps.Validate,
		translator:  deps.Translator,
		filterTypes: filterTypes,
	}
}

func (svc *Service[T, P]) Name() string       { return svc.def.Name }
func (svc *Service[T, P]) Collection() string { return svc.def.Collection }

// EnsureIndexes creates the unique indexes of the resource.
func (svc *Service[T, P]) EnsureIndexes(ctx context.Context) error {
	for _, field := range svc.def.Unique {
		if err := svc.store.EnsureUnique(ctx, svc.def.Collection, field); err != nil {
			return errors.Wrapf(err, "ensuring unique %s.%s", svc.def.Collection, field)
		}
	}
	return nil
}

// Validate validates any struct with the translated messages used by the resource.
func (svc *Service[T, P]) Validate(ctx context.Context, v interface{}) error {
	if err := svc.validate.StructCtx(ctx, v); err != nil {
		return core.TranslateValidationErrors(err, svc.translator)
	}
	return nil
}

// Create assigns an id and a creation time to doc, validates it and persists it.
func (svc *Service[T, P]) Create(ctx context.Context, doc *T) (_ *T, err error) {
	defer svc.observe(OpCreate, &err)

	b := P(doc).base()
	b.ID = uuid.NewString()
	b.CreatedAt = core.NowFunc()

	if svc.def.Prepare != nil {
		if err = svc.def.Prepare(ctx, doc); err != nil {
			return nil, err
		}
	}
	if err = svc.Validate(ctx, doc); err != nil {
		return nil, err
	}
	if err = svc.checkRefs(ctx, doc); err != nil {
		return nil, err
	}
	if svc.def.Check != nil {
		if err = svc.def.Check(ctx, doc); err != nil {
			return nil, err
		}
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s", svc.def.Name)
	}
	if err = svc.store.Insert(ctx, svc.def.Collection, raw); err != nil {
		var dup *core.DuplicateKeyError
		if errors.As(err, &dup) {
			return nil, core.NewFieldError(dup.Field, fmt.Sprintf("a %s with this %s already exists", svc.def.Name, dup.Field))
		}
		return nil, errors.Wrapf(err, "inserting %s", svc.def.Name)
	}

	if svc.def.Event != "" {
		svc.broadcaster.Emit(svc.def.Event, doc)
		svc.observer.ObserveBroadcast(svc.def.Event)
	}
	if svc.def.AfterCreate != nil {
		svc.def.AfterCreate(ctx, doc)
	}
	return doc, nil
}

// ParseFilter converts query values into a typed store filter.
// Keys that are not declared filters are ignored; empty values are dropped.
func (svc *Service[T, P]) ParseFilter(params map[string]string) (core.Filter, error) {
	filter := make(core.Filter)
	for name, typ := range svc.filterTypes {
		raw, ok := params[name]
		if !ok || raw == "" {
			continue
		}
		val, err := parseValue(raw, typ)
		if err != nil {
			return nil, core.NewFieldError(name, err.Error())
		}
		filter[name] = val
	}
	return filter, nil
}

// List returns every document matching filter with its references populated.
func (svc *Service[T, P]) List(ctx context.Context, filter core.Filter) (_ []*T, err error) {
	defer svc.observe(OpList, &err)

	raws, err := svc.store.Find(ctx, svc.def.Collection, filter)
	if err != nil {
		return nil, errors.Wrapf(err, "finding %s documents", svc.def.Name)
	}
	docs := make([]*T, 0, len(raws))
	for _, raw := range raws {
		doc, err := svc.decode(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err = svc.populate(ctx, docs...); err != nil {
		return nil, err
	}
	return docs, nil
}

// Get returns a populated document or a *core.NotFoundError.
func (svc *Service[T, P]) Get(ctx context.Context, id string) (_ *T, err error) {
	defer svc.observe(OpGet, &err)

	doc, err := svc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = svc.populate(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Lookup returns the unpopulated document (no metrics).
func (svc *Service[T, P]) Lookup(ctx context.Context, id string) (*T, error) {
	return svc.get(ctx, id)
}

func (svc *Service[T, P]) get(ctx context.Context, id string) (*T, error) {
	raw, err := svc.store.Get(ctx, svc.def.Collection, id)
	if err != nil {
		return nil, svc.storeErr(err, id, "getting")
	}
	return svc.decode(raw)
}

// Count returns the number of documents matching filter.
func (svc *Service[T, P]) Count(ctx context.Context, filter core.Filter) (int64, error) {
	n, err := svc.store.Count(ctx, svc.def.Collection, filter)
	return n, errors.Wrapf(err, "counting %s documents", svc.def.Name)
}

// Patch overwrites fields of the document; callers validate the values beforehand.
func (svc *Service[T, P]) Patch(ctx context.Context, id string, fields core.Fields) (_ *T, err error) {
	defer svc.observe(OpPatch, &err)
	return svc.update(ctx, id, nil, fields)
}

// PatchIf overwrites fields only if the document still matches cond.
// A failed condition is reported as a *core.ValidationError on conflictField.
func (svc *Service[T, P]) PatchIf(ctx context.Context, id string, cond core.Filter, fields core.Fields, conflictField string) (_ *T, err error) {
	defer svc.observe(OpPatch, &err)

	doc, err := svc.update(ctx, id, cond, fields)
	if errors.Is(err, core.ErrPreconditionFailed) {
		return nil, core.NewFieldError(conflictField, "was modified concurrently, retry")
	}
	return doc, err
}

// Transition moves field from `from` to `to` and sets extra in the same atomic write.
// It is idempotent when the document is already in `to` (extra is then left untouched)
// and fails with a *core.ValidationError from any other state.
func (svc *Service[T, P]) Transition(ctx context.Context, id, field, from, to string, extra core.Fields) (_ *T, err error) {
	defer svc.observe(OpTransition, &err)

	fields := core.Fields{field: to}
	for k, v := range extra {
		fields[k] = v
	}

	doc, err := svc.update(ctx, id, core.Filter{field: from}, fields)
	if !errors.Is(err, core.ErrPreconditionFailed) {
		return doc, err
	}

	raw, err := svc.store.Get(ctx, svc.def.Collection, id)
	if err != nil {
		return nil, svc.storeErr(err, id, "getting")
	}
	current, _ := raw.Lookup(field).StringValueOK()
	if current == to {
		return svc.decode(raw)
	}
	return nil, core.NewFieldError(field, fmt.Sprintf("cannot change from %q to %q", current, to))
}

// Increment atomically adds one to doc[array][index][counter].
// An index out of the array bounds is reported as a *core.ValidationError on array.
func (svc *Service[T, P]) Increment(ctx context.Context, id, array string, index int, counter string) (_ *T, err error) {
	defer svc.observe(OpIncrement, &err)

	if index < 0 {
		return nil, core.NewFieldError(array, fmt.Sprintf("index %d out of range", index))
	}
	raw, err := svc.store.Increment(ctx, svc.def.Collection, id, array, index, counter)
	if err != nil {
		if errors.Is(err, core.ErrPreconditionFailed) {
			return nil, core.NewFieldError(array, fmt.Sprintf("index %d out of range", index))
		}
		return nil, svc.storeErr(err, id, "incrementing")
	}
	return svc.decode(raw)
}

func (svc *Service[T, P]) update(ctx context.Context, id string, cond core.Filter, fields core.Fields) (*T, error) {
	raw, err := svc.store.Update(ctx, svc.def.Collection, id, cond, fields)
	if err != nil {
		if errors.Is(err, core.ErrPreconditionFailed) {
			return nil, err
		}
		return nil, svc.storeErr(err, id, "updating")
	}
	return svc.decode(raw)
}

func (svc *Service[T, P]) decode(raw bson.Raw) (*T, error) {
	doc := new(T)
	if err := bson.Unmarshal(raw, doc); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", svc.def.Name)
	}
	return doc, nil
}

func (svc *Service[T, P]) storeErr(err error, id, action string) error {
	if errors.Is(err, core.ErrNotFound) {
		return core.NewNotFoundError(svc.def.Name, id)
	}
	return errors.Wrapf(err, "%s %s", action, svc.def.Name)
}

func (svc *Service[T, P]) observe(op string, err *error) {
	svc.observer.ObserveOperation(svc.def.Name, op, *err)
}

// Indexer is implemented by every service owning unique indexes.
type Indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes creates the unique indexes of every service.
func EnsureIndexes(ctx context.Context, svcs ...Indexer) error {
	for _, svc := range svcs {
		if err := svc.EnsureIndexes(ctx); err != nil {
			return err
		}
	}
	return nil
}
