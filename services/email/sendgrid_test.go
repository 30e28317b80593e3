package emailsvc_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/assets"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	emailsvc "github.com/LEKKALA-BHASKAR/AITS-sub001/services/email"
)

type sgAddress struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sgPayload struct {
	From             sgAddress `json:"from"`
	Personalizations []struct {
		To      []sgAddress `json:"to"`
		Cc      []sgAddress `json:"cc"`
		Subject string      `json:"subject"`
	} `json:"personalizations"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Debug(string, ...interface{}) {}
func (l *recordingLogger) Info(string, ...interface{})  {}
func (l *recordingLogger) Warn(string, ...interface{})  {}
func (l *recordingLogger) Fatal(string, ...interface{}) {}
func (l *recordingLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

type capture struct {
	mu       sync.Mutex
	payloads []sgPayload
	auths    []string
}

func (c *capture) get() ([]sgPayload, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payloads, c.auths
}

func sendgridServer(t *testing.T, status int) (*httptest.Server, *capture) {
	t.Helper()
	c := new(capture)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var p sgPayload
		assert.NoError(t, json.Unmarshal(body, &p))
		c.mu.Lock()
		c.payloads = append(c.payloads, p)
		c.auths = append(c.auths, r.Header.Get("Authorization"))
		c.mu.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"errors":[]}`))
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func TestSendgridService_SendMessages(t *testing.T) {
	conf := testConfig()
	conf.SendgridApiKey = "SG.test"
	srv, c := sendgridServer(t, http.StatusAccepted)

	logger := new(recordingLogger)
	svc := emailsvc.NewSendgridService(conf, core.NewEmailRenderer(assets.FS, conf), logger).WithHost(srv.URL)

	svc.SendMessages(
		&core.EmailMessage{
			To:      []mail.Address{{Name: "Asha", Address: "asha@test.in"}},
			Cc:      []mail.Address{{Address: "office@test.in"}},
			Subject: "Payment received",
			BodyStr: "thanks",
		},
		&core.EmailMessage{Subject: "nobody to send to", BodyStr: "skipped"},
	)

	payloads, auths := c.get()
	require.Len(t, payloads, 1)
	assert.Equal(t, []string{"Bearer SG.test"}, auths)

	p := payloads[0]
	assert.Equal(t, sgAddress{Name: "AITS", Email: "noreply@aits.test"}, p.From)
	require.Len(t, p.Personalizations, 1)
	assert.Equal(t, "[AITS] Payment received", p.Personalizations[0].Subject)
	assert.Equal(t, []sgAddress{{Name: "Asha", Email: "asha@test.in"}}, p.Personalizations[0].To)
	assert.Equal(t, []sgAddress{{Email: "office@test.in"}}, p.Personalizations[0].Cc)
	require.Len(t, p.Content, 1)
	assert.Equal(t, "text/plain", p.Content[0].Type)
	assert.Equal(t, "thanks", p.Content[0].Value)
	assert.Empty(t, logger.errors)
}

func TestSendgridService_rejected(t *testing.T) {
	conf := testConfig()
	srv, c := sendgridServer(t, http.StatusBadRequest)

	logger := new(recordingLogger)
	svc := emailsvc.NewSendgridService(conf, core.NewEmailRenderer(assets.FS, conf), logger).WithHost(srv.URL)
	svc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: "asha@test.in"}},
		Subject: "hi",
		BodyStr: "hello",
	})

	payloads, _ := c.get()
	require.Len(t, payloads, 1)
	require.Len(t, logger.errors, 1)
	assert.Contains(t, logger.errors[0], "sending email - status: 400")
}
