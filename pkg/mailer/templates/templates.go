package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	"sync"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Each template name has three files: <name>.subject.tmpl, <name>.text.tmpl
// and <name>.html.tmpl.
const (
	Welcome        = "welcome"
	AccountDeleted = "account_deleted"
)

// EmailData defines the fields account templates can use.
type EmailData struct {
	Name        string    `json:"Name"`
	Email       string    `json:"Email"`
	AccountKind string    `json:"AccountKind"`
	CompanyName string    `json:"CompanyName"`
	AppBaseURL  string    `json:"AppBaseURL"`
	SupportURL  string    `json:"SupportURL"`
	OccurredAt  time.Time `json:"OccurredAt"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// orDefault backs the pipe {{ .Value | default "Fallback" }}.
func orDefault(fallback, value any) any {
	if s, ok := value.(string); ok {
		if strings.TrimSpace(s) == "" {
			return fallback
		}
		return s
	}
	if value == nil || reflect.ValueOf(value).IsZero() {
		return fallback
	}
	return value
}

func funcs() map[string]any {
	return map[string]any{
		"upper":   strings.ToUpper,
		"default": orDefault,
	}
}

var (
	parseOnce sync.Once
	textSet   *texttpl.Template
	htmlSet   *htmpl.Template
	parseErr  error
)

func parsed() (*texttpl.Template, *htmpl.Template, error) {
	parseOnce.Do(func() {
		textSet, parseErr = texttpl.New("mail").Funcs(funcs()).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl")
		if parseErr != nil {
			return
		}
		htmlSet, parseErr = htmpl.New("mail").Funcs(funcs()).ParseFS(FS, "*.html.tmpl")
	})
	return textSet, htmlSet, parseErr
}

// Known reports whether all three files exist for name.
func Known(name string) bool {
	t, h, err := parsed()
	if err != nil {
		return false
	}
	return t.Lookup(name+".subject.tmpl") != nil &&
		t.Lookup(name+".text.tmpl") != nil &&
		h.Lookup(name+".html.tmpl") != nil
}

// Render executes the subject, text and html templates for name.
func Render(name string, data any) (subject, text, html string, err error) {
	t, h, err := parsed()
	if err != nil {
		return "", "", "", fmt.Errorf("parse templates: %w", err)
	}
	var buf bytes.Buffer
	exec := func(run func() error, file string) (string, error) {
		buf.Reset()
		if err := run(); err != nil {
			return "", fmt.Errorf("exec %q: %w", file, err)
		}
		return buf.String(), nil
	}

	if subject, err = exec(func() error { return t.ExecuteTemplate(&buf, name+".subject.tmpl", data) }, name+".subject.tmpl"); err != nil {
		return "", "", "", err
	}
	if text, err = exec(func() error { return t.ExecuteTemplate(&buf, name+".text.tmpl", data) }, name+".text.tmpl"); err != nil {
		return "", "", "", err
	}
	if html, err = exec(func() error { return h.ExecuteTemplate(&buf, name+".html.tmpl", data) }, name+".html.tmpl"); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
