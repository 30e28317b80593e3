package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
)

type closingStore struct {
	core.DocumentStore
	err      error
	deadline bool
}

func (s *closingStore) Close(ctx context.Context) error {
	_, s.deadline = ctx.Deadline()
	return s.err
}

type errorLogger struct {
	core.Logger
	msgs []string
}

func (l *errorLogger) Error(msg string, _ ...interface{}) {
	l.msgs = append(l.msgs, msg)
}

func TestCloseStore(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantMsgs []string
	}{
		{name: "ok"},
		{name: "failure is logged", err: errors.New("conn reset"), wantMsgs: []string{"closing database: conn reset"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &closingStore{err: tt.err}
			logger := new(errorLogger)

			closeStore(store, time.Second, logger)
			assert.True(t, store.deadline, "close is bounded")
			assert.Equal(t, tt.wantMsgs, logger.msgs)
		})
	}
}
