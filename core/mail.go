package core

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	htmltmpl "html/template"
	"io"
	"io/fs"
	"net/http"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"
)

//go:embed templates/email/*
var templatesFS embed.FS

var (
	templates tmplCache
	tmplInit  sync.Once
	tmplErr   error
	tmplDir   = "templates/email"
)

type (
	tmplCacheEntry map[string]interface{}    // {ext: *Template}
	tmplCache      map[string]tmplCacheEntry // {name: {tmplCacheEntry}}

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

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
		// Wait blocks until every message handed to SendMessages was handled
		Wait()
	}
)

func (m *EmailMessage) getTemplate(ext string) (interface{}, error) {
	cache, ok := templates[m.TemplateName]
	if !ok {
		return nil, fmt.Errorf("email template %q not found", m.TemplateName)
	}
	tmplEntry, ok := cache[ext]
	if !ok {
		return nil, fmt.Errorf("email template %q has no %s variant", m.TemplateName, ext)
	}
	return tmplEntry, nil
}

func (m *EmailMessage) renderText() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	} else if m.TemplateName == "" {
		return nil
	}

	tmplEntry, err := m.getTemplate(".txt")
	if err != nil {
		return err
	}
	tmpl, ok := tmplEntry.(*texttmpl.Template)
	if !ok {
		return fmt.Errorf("email template %q: unexpected %T", m.TemplateName, tmplEntry)
	}

	var buff bytes.Buffer
	if err = tmpl.Execute(&buff, m.TemplateData); err != nil {
		return err
	}
	m.TextContent = buff.String()
	return nil
}

func (m *EmailMessage) renderHTML() error {
	if m.TemplateName == "" {
		return nil
	}

	tmplEntry, err := m.getTemplate(".gohtml")
	if err != nil {
		return err
	}
	tmpl, ok := tmplEntry.(*htmltmpl.Template)
	if !ok {
		return fmt.Errorf("email template %q: unexpected %T", m.TemplateName, tmplEntry)
	}

	var buff bytes.Buffer
	if err = tmpl.Execute(&buff, m.TemplateData); err != nil {
		return err
	}
	m.HTMLContent = buff.String()
	return nil
}

func (m *EmailMessage) Render() error {
	if m.TemplateName != "" {
		tmplInit.Do(func() { tmplErr = ParseEmailTemplates() }) // only execute once during first render
		if tmplErr != nil {
			return tmplErr
		}
	}
	if err := m.renderText(); err != nil {
		return err
	}
	return m.renderHTML()
}

func (m *EmailMessage) Attach(r io.Reader, filename string, ct ...string) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	at := Attachment{Filename: filename, Content: new(bytes.Buffer)}

	// base64 encode content
	encoder := base64.NewEncoder(base64.StdEncoding, at.Content)
	if _, err := encoder.Write(content); err != nil {
		return err
	}
	encoder.Close()

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

// ParseEmailTemplates parses the embedded email templates into the template cache.
// Every template is parsed along with the `_base` template of the same extension.
func ParseEmailTemplates() error {
	templates = make(tmplCache)

	fps, err := fs.Glob(templatesFS, path.Join(tmplDir, "*"))
	if err != nil {
		return fmt.Errorf("core.ParseEmailTemplates: %v", err)
	}

	for _, fp := range fps {
		fname := path.Base(fp)
		ext := path.Ext(fname)
		if strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		entry, ok := templates[name]
		if !ok {
			entry = make(tmplCacheEntry)
			templates[name] = entry
		}
		if ext == ".txt" {
			tmpl, err := texttmpl.New(fname).ParseFS(templatesFS, path.Join(tmplDir, "_base.txt"), fp)
			if err != nil {
				return fmt.Errorf("core.ParseEmailTemplates(%s): %v", fname, err)
			}
			entry[ext] = tmpl.Option("missingkey=error")
		} else {
			tmpl, err := htmltmpl.New(fname).ParseFS(templatesFS, path.Join(tmplDir, "_base.gohtml"), fp)
			if err != nil {
				return fmt.Errorf("core.ParseEmailTemplates(%s): %v", fname, err)
			}
			entry[ext] = tmpl.Option("missingkey=error")
		}
	}
	return nil
}
