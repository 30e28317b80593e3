// Package mongodb implements core.DocumentStore on MongoDB.
package mongodb

import (
	"context"
	"fmt"
	"regexp"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
)

const uniqueSuffix = "_unique"

var dupIndexRegex = regexp.MustCompile(`index: (\S+?)(` + uniqueSuffix + `|_) dup key`)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ core.DocumentStore = (*Store)(nil)

// Open connects to conf.URI and waits for the server to answer.
func Open(ctx context.Context, conf core.DatabaseConfig) (*Store, error) {
	opts := options.Client().
		ApplyURI(conf.URI).
		SetConnectTimeout(conf.Timeout).
		SetServerSelectionTimeout(conf.Timeout).
		SetAppName("aits")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}
	s := &Store{client: client, db: client.Database(conf.Name)}
	if err = s.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) EnsureUnique(ctx context.Context, collection, field string) error {
	_, err := s.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true).SetName(field + uniqueSuffix),
	})
	return errors.Wrapf(err, "creating index %s.%s", collection, field)
}

func (s *Store) Insert(ctx context.Context, collection string, doc bson.Raw) error {
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return trapDuplicateErr(err, collection)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (bson.Raw, error) {
	raw, err := s.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Raw()
	if err != nil {
		return nil, trapNoDocsErr(err)
	}
	return raw, nil
}

func (s *Store) Find(ctx context.Context, collection string, filter core.Filter) ([]bson.Raw, error) {
	return s.find(ctx, collection, toFilter(filter))
}

func (s *Store) FindByIDs(ctx context.Context, collection string, ids []string) ([]bson.Raw, error) {
	if len(ids) == 0 {
		return []bson.Raw{}, nil
	}
	return s.find(ctx, collection, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
}

func (s *Store) find(ctx context.Context, collection string, filter bson.D) ([]bson.Raw, error) {
	cur, err := s.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s", collection)
	}
	docs := make([]bson.Raw, 0)
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "reading %s", collection)
	}
	return docs, nil
}

func (s *Store) Count(ctx context.Context, collection string, filter core.Filter) (int64, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, toFilter(filter))
	return n, errors.Wrapf(err, "counting %s", collection)
}

func (s *Store) Update(ctx context.Context, collection, id string, cond core.Filter, fields core.Fields) (bson.Raw, error) {
	filter := append(bson.D{{Key: "_id", Value: id}}, toFilter(cond)...)
	update := bson.D{{Key: "$set", Value: bson.M(fields)}}
	return s.findOneAndUpdate(ctx, collection, id, filter, update, len(cond) > 0)
}

func (s *Store) Increment(ctx context.Context, collection, id, array string, index int, counter string) (bson.Raw, error) {
	elem := fmt.Sprintf("%s.%d", array, index)
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: elem, Value: bson.D{{Key: "$exists", Value: true}}},
	}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: elem + "." + counter, Value: 1}}}}
	return s.findOneAndUpdate(ctx, collection, id, filter, update, true)
}

// findOneAndUpdate returns the updated document. When nothing matched and the filter is guarded,
// it tells a missing document (core.ErrNotFound) from a failed guard (core.ErrPreconditionFailed).
func (s *Store) findOneAndUpdate(ctx context.Context, collection, id string, filter, update bson.D, guarded bool) (bson.Raw, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	raw, err := s.db.Collection(collection).FindOneAndUpdate(ctx, filter, update, opts).Raw()
	if err == nil {
		return raw, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, trapDuplicateErr(err, collection)
	}
	if !guarded {
		return nil, core.ErrNotFound
	}

	n, err := s.db.Collection(collection).CountDocuments(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, errors.Wrapf(err, "counting %s", collection)
	}
	if n == 0 {
		return nil, core.ErrNotFound
	}
	return nil, core.ErrPreconditionFailed
}

func (s *Store) Ping(ctx context.Context) error {
	return errors.Wrap(s.client.Ping(ctx, readpref.Primary()), "pinging mongo")
}

func (s *Store) Close(ctx context.Context) error {
	return errors.Wrap(s.client.Disconnect(ctx), "disconnecting from mongo")
}

// Drop deletes the database (tests).
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func toFilter(filter core.Filter) bson.D {
	d := make(bson.D, 0, len(filter))
	for k, v := range filter {
		d = append(d, bson.E{Key: k, Value: v})
	}
	return d
}

func trapNoDocsErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.ErrNotFound
	}
	return err
}

func trapDuplicateErr(err error, collection string) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	dup := &core.DuplicateKeyError{Collection: collection}
	if m := dupIndexRegex.FindStringSubmatch(err.Error()); m != nil {
		dup.Field = m[1]
	}
	return dup
}
