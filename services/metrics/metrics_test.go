package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: OutcomeOK},
		{name: "not found", err: core.NewNotFoundError("fee", "42"), want: OutcomeNotFound},
		{name: "wrapped not found", err: errors.Wrap(core.ErrNotFound, "getting"), want: OutcomeNotFound},
		{name: "field error", err: core.NewFieldError("amount", "required"), want: OutcomeInvalid},
		{name: "other", err: errors.New("boom"), want: OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestMetrics(t *testing.T) {
	m := New()

	m.ObserveOperation("poll", "create", nil)
	m.ObserveOperation("poll", "create", nil)
	m.ObserveOperation("poll", "create", core.NewFieldError("question", "required"))
	m.ObserveBroadcast("pollUpdated")
	m.SetClients(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("poll", "create", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("poll", "create", OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.broadcasts.WithLabelValues("pollUpdated")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.clients))

	expected := `
# HELP realtime_clients Websocket clients currently connected.
# TYPE realtime_clients gauge
realtime_clients 3
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "realtime_clients"))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveBroadcast("eventUpdated")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `broadcast_events_total{event="eventUpdated"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
