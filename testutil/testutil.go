// Package testutil builds the fixtures shared by the package tests.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/user"
	logsvc "github.com/LEKKALA-BHASKAR/AITS-sub001/services/logger"
	inmemdb "github.com/LEKKALA-BHASKAR/AITS-sub001/storage/database/inmem"
)

// NewDeps returns resource deps backed by a fresh memory store, with every validator registered.
func NewDeps(t *testing.T) (resource.Deps, *inmemdb.Store) {
	t.Helper()

	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	store := inmemdb.New()
	return resource.Deps{
		Store:      store,
		Validate:   validate,
		Translator: translator,
	}, store
}

// CreateUser inserts a user straight into the store, skipping the password policy.
func CreateUser(
	t *testing.T,
	store core.DocumentStore,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) *user.User {
	t.Helper()

	tstamp := core.NowFunc()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if roles == nil {
		roles = []string{}
	}
	usr := &user.User{
		Name:     name,
		Username: uname,
		Email:    email,
		Roles:    roles,
		IsActive: isActive,
	}
	usr.ID = uuid.NewString()
	usr.CreatedAt = tstamp
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}

	raw, err := bson.Marshal(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	if err = store.Insert(context.Background(), user.Collection, raw); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// FreezeTime pins core.NowFunc to at for the duration of the test.
func FreezeTime(t *testing.T, at time.Time) {
	t.Helper()
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return at.UTC().Truncate(time.Millisecond) }
	t.Cleanup(func() { core.NowFunc = orig })
}

// Logger returns a logger that discards everything and never reports to Rollbar.
func Logger() core.Logger {
	l := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), &core.Config{Env: "TEST", TestMode: true})
	l.Enable(false)
	return l
}
