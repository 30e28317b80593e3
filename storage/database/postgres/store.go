// Package postgresdb implements core.DocumentStore on a single PostgreSQL JSONB table.
// Documents are kept as relaxed extended JSON so bson types (dates, int64) survive the round-trip.
package postgresdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
)

const (
	uniqueViolation = "23505"
	primaryKey      = "documents_pkey"
	uniqueSuffix    = "_unique"
)

type Store struct {
	db *sqlx.DB
}

var _ core.DocumentStore = (*Store)(nil)

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open creates the database if needed, connects and migrates it.
func Open(ctx context.Context, conf core.DatabaseConfig) (*Store, error) {
	if err := CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}
	db, err := Connect(ctx, conf)
	if err != nil {
		return nil, err
	}
	if err = Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewStore(db), nil
}

// DB exposes the connection pool (admin migrations).
func (s *Store) DB() *sqlx.DB { return s.db }

func indexName(collection, field string) string {
	return collection + "__" + field + uniqueSuffix
}

func (s *Store) EnsureUnique(ctx context.Context, collection, field string) error {
	q := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON documents ((data->>%s)) WHERE collection = %s",
		pq.QuoteIdentifier(indexName(collection, field)), pq.QuoteLiteral(field), pq.QuoteLiteral(collection),
	)
	_, err := s.db.ExecContext(ctx, q)
	return errors.Wrapf(err, "creating index %s.%s", collection, field)
}

func (s *Store) Insert(ctx context.Context, collection string, doc bson.Raw) error {
	id, ok := doc.Lookup("_id").StringValueOK()
	if !ok || id == "" {
		return errors.New("document has no string _id")
	}
	data, err := encode(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)",
		collection, id, data,
	)
	return trapUniqueErr(err, collection)
}

func (s *Store) Get(ctx context.Context, collection, id string) (bson.Raw, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data, "SELECT data FROM documents WHERE collection = $1 AND id = $2", collection, id)
	if err != nil {
		return nil, trapNoRowsErr(err)
	}
	return decode(data)
}

func (s *Store) Find(ctx context.Context, collection string, filter core.Filter) ([]bson.Raw, error) {
	where, args, err := whereClause(collection, filter)
	if err != nil {
		return nil, err
	}
	return s.selectDocs(ctx, "SELECT data FROM documents WHERE "+where+" ORDER BY seq", args...)
}

func (s *Store) FindByIDs(ctx context.Context, collection string, ids []string) ([]bson.Raw, error) {
	if len(ids) == 0 {
		return []bson.Raw{}, nil
	}
	return s.selectDocs(ctx,
		"SELECT data FROM documents WHERE collection = $1 AND id = ANY($2) ORDER BY seq",
		collection, pq.Array(ids),
	)
}

func (s *Store) selectDocs(ctx context.Context, q string, args ...interface{}) ([]bson.Raw, error) {
	var rows [][]byte
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting documents")
	}
	docs := make([]bson.Raw, 0, len(rows))
	for _, data := range rows {
		doc, err := decode(data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Store) Count(ctx context.Context, collection string, filter core.Filter) (int64, error) {
	where, args, err := whereClause(collection, filter)
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.db.GetContext(ctx, &n, "SELECT count(*) FROM documents WHERE "+where, args...)
	return n, errors.Wrap(err, "counting documents")
}

func (s *Store) Update(ctx context.Context, collection, id string, cond core.Filter, fields core.Fields) (bson.Raw, error) {
	patch, err := bson.Marshal(bson.M(fields))
	if err != nil {
		return nil, errors.Wrap(err, "encoding fields")
	}
	patchData, err := encode(patch)
	if err != nil {
		return nil, err
	}
	where, args, err := whereClause(collection, cond)
	if err != nil {
		return nil, err
	}
	args = append(args, id, patchData)
	q := fmt.Sprintf(
		"UPDATE documents SET data = data || $%d::jsonb WHERE %s AND id = $%d RETURNING data",
		len(args), where, len(args)-1,
	)
	return s.updateOne(ctx, collection, id, q, args...)
}

func (s *Store) Increment(ctx context.Context, collection, id, array string, index int, counter string) (bson.Raw, error) {
	path := pq.Array([]string{array, strconv.Itoa(index), counter})
	q := `UPDATE documents
		SET data = jsonb_set(data, $3::text[], to_jsonb(COALESCE((data #>> $3::text[])::numeric, 0) + 1))
		WHERE collection = $1 AND id = $2
		  AND jsonb_typeof(data->($4::text)) = 'array' AND jsonb_array_length(data->($4::text)) > $5::int
		RETURNING data`
	return s.updateOne(ctx, collection, id, q, collection, id, path, array, index)
}

// updateOne runs a guarded UPDATE ... RETURNING data; when no row is returned it tells
// a missing document (core.ErrNotFound) from a failed guard (core.ErrPreconditionFailed).
func (s *Store) updateOne(ctx context.Context, collection, id, q string, args ...interface{}) (bson.Raw, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data, q, args...)
	if err == nil {
		return decode(data)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, trapUniqueErr(err, collection)
	}

	var exists bool
	if err = s.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM documents WHERE collection = $1 AND id = $2)", collection, id,
	); err != nil {
		return nil, errors.Wrap(err, "checking document")
	}
	if !exists {
		return nil, core.ErrNotFound
	}
	return nil, core.ErrPreconditionFailed
}

func (s *Store) Ping(ctx context.Context) error {
	return errors.Wrap(s.db.PingContext(ctx), "pinging postgres")
}

func (s *Store) Close(context.Context) error {
	return errors.Wrap(s.db.Close(), "closing postgres")
}

// Truncate deletes every document (tests).
func (s *Store) Truncate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "TRUNCATE documents")
	return errors.Wrap(err, "truncating documents")
}

// whereClause matches the collection and every filter key; an array field also matches its elements.
func whereClause(collection string, filter core.Filter) (string, []interface{}, error) {
	clauses := []string{"collection = $1"}
	args := []interface{}{collection}
	if len(filter) == 0 {
		return clauses[0], args, nil
	}

	raw, err := bson.Marshal(bson.M(filter))
	if err != nil {
		return "", nil, errors.Wrap(err, "encoding filter")
	}
	data, err := encode(raw)
	if err != nil {
		return "", nil, err
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal(data, &values); err != nil {
		return "", nil, errors.Wrap(err, "decoding filter")
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, k, string(values[k]))
		clauses = append(clauses, fmt.Sprintf("data->($%d::text) @> $%d::jsonb", len(args)-1, len(args)))
	}
	return strings.Join(clauses, " AND "), args, nil
}

func encode(doc bson.Raw) ([]byte, error) {
	data, err := bson.MarshalExtJSON(doc, false /* canonical */, false /* escapeHTML */)
	return data, errors.Wrap(err, "encoding document")
}

func decode(data []byte) (bson.Raw, error) {
	var d bson.D
	if err := bson.UnmarshalExtJSON(data, false /* canonical */, &d); err != nil {
		return nil, errors.Wrap(err, "decoding document")
	}
	raw, err := bson.Marshal(d)
	return raw, errors.Wrap(err, "encoding document")
}

func trapNoRowsErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return errors.Wrap(err, "selecting document")
}

func trapUniqueErr(err error, collection string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return errors.Wrap(err, "writing document")
	}
	dup := &core.DuplicateKeyError{Collection: collection}
	switch {
	case pqErr.Constraint == primaryKey:
		dup.Field = "_id"
	case strings.HasPrefix(pqErr.Constraint, collection+"__"):
		dup.Field = strings.TrimSuffix(strings.TrimPrefix(pqErr.Constraint, collection+"__"), uniqueSuffix)
	}
	return dup
}
