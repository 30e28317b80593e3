package emailsvc_test

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/assets"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	emailsvc "github.com/LEKKALA-BHASKAR/AITS-sub001/services/email"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/testutil"
)

type feeNotice struct {
	StudentName string
	FeeID       string
	Amount      float64
	Description string
	DueDate     time.Time
	PaidAt      time.Time
}

func testConfig() *core.Config {
	return &core.Config{
		AppName:          "AITS",
		TestMode:         true,
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "AITS", Address: "noreply@aits.test"},
	}
}

func TestConsoleService_SendMessages(t *testing.T) {
	conf := testConfig()
	var out bytes.Buffer
	svc := emailsvc.NewConsoleService(conf, core.NewEmailRenderer(assets.FS, conf), testutil.Logger(), &out)

	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: "Asha", Address: "asha@test.in"}},
		Subject:      "New fee issued",
		TemplateName: "fee_due",
		TemplateData: feeNotice{StudentName: "Asha", FeeID: "f1", Amount: 1500, Description: "tuition", DueDate: due},
	}
	svc.SendMessages(msg)

	require.Eventually(t, func() bool { return len(svc.Sent()) == 1 }, time.Second, 10*time.Millisecond)

	sent := svc.Sent()[0]
	assert.Contains(t, sent.TextContent, "Hello Asha,")
	assert.Contains(t, sent.TextContent, "A fee of 1500.00 has been issued to you for tuition.")
	assert.Contains(t, sent.TextContent, "01 Jun 2026")
	assert.Contains(t, sent.TextContent, "http://localhost:3000/student/fees")
	assert.NotEmpty(t, sent.HTMLContent)

	written := out.String()
	assert.Contains(t, written, "Subject: [AITS] New fee issued\r\n")
	assert.Contains(t, written, `To: "Asha" <asha@test.in>`)
	assert.Contains(t, written, "multipart/alternative")
	assert.Contains(t, written, "text/html; charset=utf-8")
}

func TestConsoleService_skipped(t *testing.T) {
	conf := testConfig()

	tests := []struct {
		name string
		msg  *core.EmailMessage
	}{
		{name: "no recipients", msg: &core.EmailMessage{Subject: "hi", BodyStr: "hello"}},
		{name: "no content", msg: &core.EmailMessage{To: []mail.Address{{Address: "a@test.in"}}, Subject: "hi"}},
		{
			name: "missing template data",
			msg: &core.EmailMessage{
				To:           []mail.Address{{Address: "a@test.in"}},
				TemplateName: "fee_due",
				TemplateData: struct{ StudentName string }{"Asha"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := emailsvc.NewSyncConsoleService(conf, core.NewEmailRenderer(assets.FS, conf), testutil.Logger())
			svc.SendMessages(tt.msg)
			assert.Empty(t, svc.Sent())
		})
	}
}

func TestConsoleService_attachments(t *testing.T) {
	conf := testConfig()
	var out bytes.Buffer
	svc := emailsvc.NewConsoleService(conf, core.NewEmailRenderer(fstest.MapFS{}, conf), testutil.Logger(), &out)

	msg := &core.EmailMessage{
		To:      []mail.Address{{Address: "office@test.in"}},
		Subject: "Report",
		BodyStr: "see attached",
	}
	require.NoError(t, msg.Attach(strings.NewReader("roll,name\n21CS001,Asha\n"), "students.csv", "text/csv"))

	svc.SendMessages(msg)
	require.Eventually(t, func() bool { return len(svc.Sent()) == 1 }, time.Second, 10*time.Millisecond)
	written := out.String()
	assert.Contains(t, written, "multipart/mixed")
	assert.Contains(t, written, "Content-Disposition: attachment; filename=students.csv")
	assert.Equal(t, "see attached", svc.Sent()[0].TextContent)
}
