package core

//go:generate mockgen -source=mail.go -destination=mocks/mail.go -package=mocks

import (
	"bytes"
	"encoding/base64"
	htmltmpl "html/template"
	"io"
	"io/fs"
	"net/http"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

const emailTemplatesDir = "templates/email"

type (
	Attachment struct {
		Content     *bytes.Buffer
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string // simple text/plain, non-templated content
		Attachments []Attachment

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}

	// EmailRenderer renders templated EmailMessages from a template FS.
	// Templates live under templates/email as <name>.txt and <name>.gohtml, extending _base.txt / _base.gohtml.
	EmailRenderer struct {
		fsys     fs.FS
		appName  string
		frontend string
		strict   bool

		once sync.Once
		err  error
		text map[string]*texttmpl.Template
		html map[string]*htmltmpl.Template
	}
)

func NewEmailRenderer(fsys fs.FS, conf *Config) *EmailRenderer {
	return &EmailRenderer{
		fsys:     fsys,
		appName:  conf.AppName,
		frontend: conf.FrontendBaseURL,
		strict:   conf.Debug || conf.TestMode,
	}
}

// Render fills in msg.TextContent and msg.HTMLContent.
func (r *EmailRenderer) Render(msg *EmailMessage) error {
	if msg.BodyStr != "" {
		msg.TextContent = msg.BodyStr
	}
	if msg.TemplateName == "" {
		return nil
	}

	r.once.Do(r.parse) // only parse once during first render
	if r.err != nil {
		return r.err
	}

	data := ContextData{AppName: r.appName, FrontendBaseURL: r.frontend, Data: msg.TemplateData}
	var buff bytes.Buffer

	if tmpl, ok := r.text[msg.TemplateName]; ok && msg.BodyStr == "" {
		if err := tmpl.ExecuteTemplate(&buff, "base", data); err != nil {
			return errors.Wrapf(err, "rendering %s.txt", msg.TemplateName)
		}
		msg.TextContent = buff.String()
		buff.Reset()
	}
	if tmpl, ok := r.html[msg.TemplateName]; ok {
		if err := tmpl.ExecuteTemplate(&buff, "base", data); err != nil {
			return errors.Wrapf(err, "rendering %s.gohtml", msg.TemplateName)
		}
		msg.HTMLContent = buff.String()
	}
	return nil
}

func (r *EmailRenderer) parse() {
	r.text = make(map[string]*texttmpl.Template)
	r.html = make(map[string]*htmltmpl.Template)

	entries, err := fs.ReadDir(r.fsys, emailTemplatesDir)
	if err != nil {
		r.err = errors.Wrap(err, "reading email templates")
		return
	}

	for _, entry := range entries {
		fname := entry.Name()
		ext := path.Ext(fname)
		if entry.IsDir() || strings.HasPrefix(fname, "_") {
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		fp := path.Join(emailTemplatesDir, fname)

		switch ext {
		case ".txt":
			tmpl, err := texttmpl.ParseFS(r.fsys, path.Join(emailTemplatesDir, "_base.txt"), fp)
			if err != nil {
				r.err = errors.Wrapf(err, "parsing %s", fname)
				return
			}
			if r.strict {
				tmpl = tmpl.Option("missingkey=error")
			}
			r.text[name] = tmpl
		case ".gohtml":
			tmpl, err := htmltmpl.ParseFS(r.fsys, path.Join(emailTemplatesDir, "_base.gohtml"), fp)
			if err != nil {
				r.err = errors.Wrapf(err, "parsing %s", fname)
				return
			}
			if r.strict {
				tmpl = tmpl.Option("missingkey=error")
			}
			r.html[name] = tmpl
		}
	}
}

func (m *EmailMessage) Attach(r io.Reader, filename string, ct ...string) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading attachment")
	}

	at := Attachment{Filename: filename, Content: new(bytes.Buffer)}
	encoder := base64.NewEncoder(base64.StdEncoding, at.Content)
	if _, err := encoder.Write(content); err != nil {
		return errors.Wrap(err, "encoding attachment")
	}
	if err := encoder.Close(); err != nil {
		return errors.Wrap(err, "encoding attachment")
	}

	if len(ct) > 0 {
		at.ContentType = ct[0]
	} else {
		at.ContentType = http.DetectContentType(content)
	}
	m.Attachments = append(m.Attachments, at)
	return nil
}

func (m *EmailMessage) HasRecipients() bool  { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool     { return (m.TextContent != "") || (m.HTMLContent != "") }
func (m *EmailMessage) HasAttachments() bool { return len(m.Attachments) > 0 }
