package resource

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
)

func (svc *Service[T, P]) links(docs ...*T) []Link {
	if svc.def.Links == nil {
		return nil
	}
	var links []Link
	for _, doc := range docs {
		links = append(links, svc.def.Links(doc)...)
	}
	return links
}

// populate resolves every link of docs with one store query per target collection.
// References to missing documents keep their raw id.
func (svc *Service[T, P]) populate(ctx context.Context, docs ...*T) error {
	links := svc.links(docs...)
	if len(links) == 0 {
		return nil
	}

	wanted := make(map[string]map[string]struct{})
	for _, l := range links {
		if len(l.ids) == 0 {
			continue
		}
		set, ok := wanted[l.Collection]
		if !ok {
			set = make(map[string]struct{})
			wanted[l.Collection] = set
		}
		for _, id := range l.ids {
			set[id] = struct{}{}
		}
	}

	found, err := svc.fetch(ctx, wanted)
	if err != nil {
		return errors.Wrapf(err, "populating %s", svc.def.Name)
	}
	for _, l := range links {
		if err := l.fill(found[l.Collection]); err != nil {
			return err
		}
	}
	return nil
}

func (svc *Service[T, P]) fetch(ctx context.Context, wanted map[string]map[string]struct{}) (map[string]map[string]bson.Raw, error) {
	var mu sync.Mutex
	found := make(map[string]map[string]bson.Raw, len(wanted))

	g, gctx := errgroup.WithContext(ctx)
	for coll, set := range wanted {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		g.Go(func() error {
			raws, err := svc.store.FindByIDs(gctx, coll, ids)
			if err != nil {
				return errors.Wrapf(err, "finding %s", coll)
			}
			byID := make(map[string]bson.Raw, len(raws))
			for _, raw := range raws {
				if id, ok := raw.Lookup("_id").StringValueOK(); ok {
					byID[id] = raw
				}
			}
			mu.Lock()
			found[coll] = byID
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return found, nil
}

// checkRefs rejects a document whose enforced links point to missing documents.
func (svc *Service[T, P]) checkRefs(ctx context.Context, doc *T) error {
	var flds []core.FieldError
	for _, l := range svc.links(doc) {
		if !l.Enforce || len(l.ids) == 0 {
			continue
		}
		raws, err := svc.store.FindByIDs(ctx, l.Collection, l.ids)
		if err != nil {
			return errors.Wrapf(err, "checking %s references", l.Field)
		}
		existing := make(map[string]bool, len(raws))
		for _, raw := range raws {
			if id, ok := raw.Lookup("_id").StringValueOK(); ok {
				existing[id] = true
			}
		}
		for _, id := range l.ids {
			if !existing[id] {
				flds = append(flds, core.FieldError{Field: l.Field, Error: "\"" + id + "\" does not exist"})
				break
			}
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}
