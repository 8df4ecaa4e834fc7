// Package templating renders named email templates locally for providers
// that accept a finished message rather than a stored template id.
package templating

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/tinywideclouds/go-notihub/pkg/dispatch"
)

// Template is one email template. Subject and Text use text/template, HTML
// uses html/template. Either body may be empty but not both.
type Template struct {
	Subject string `yaml:"subject"`
	Text    string `yaml:"text"`
	HTML    string `yaml:"html"`
}

// Rendered is the output of Set.Render.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

type compiled struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

// Set is an immutable collection of parsed templates.
type Set struct {
	templates map[string]compiled
}

// NewSet parses every template up front so syntax errors surface at startup.
func NewSet(templates map[string]Template) (*Set, error) {
	s := &Set{templates: make(map[string]compiled, len(templates))}
	for name, t := range templates {
		if strings.TrimSpace(t.Text) == "" && strings.TrimSpace(t.HTML) == "" {
			return nil, dispatch.Invalid("email_templates."+name, "template needs a text or html body")
		}

		var c compiled
		var err error
		if c.subject, err = texttemplate.New(name + ".subject").Option("missingkey=error").Parse(t.Subject); err != nil {
			return nil, fmt.Errorf("template %s subject: %w", name, err)
		}
		if t.Text != "" {
			if c.text, err = texttemplate.New(name + ".text").Option("missingkey=error").Parse(t.Text); err != nil {
				return nil, fmt.Errorf("template %s text: %w", name, err)
			}
		}
		if t.HTML != "" {
			if c.html, err = htmltemplate.New(name + ".html").Option("missingkey=error").Parse(t.HTML); err != nil {
				return nil, fmt.Errorf("template %s html: %w", name, err)
			}
		}
		s.templates[name] = c
	}
	return s, nil
}

// Names lists the registered templates in no particular order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	return names
}

// Render executes the named template against data. A non-empty subject
// replaces the rendered one. Unknown names wrap dispatch.ErrNotFound.
func (s *Set) Render(name string, data map[string]any, subject string) (*Rendered, error) {
	c, ok := s.templates[name]
	if !ok {
		return nil, fmt.Errorf("email template %q: %w", name, dispatch.ErrNotFound)
	}
	if data == nil {
		data = map[string]any{}
	}

	var out Rendered
	var buf bytes.Buffer

	if subject != "" {
		out.Subject = subject
	} else {
		if err := c.subject.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render %s subject: %w", name, err)
		}
		out.Subject = buf.String()
	}

	if c.text != nil {
		buf.Reset()
		if err := c.text.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render %s text: %w", name, err)
		}
		out.Text = buf.String()
	}
	if c.html != nil {
		buf.Reset()
		if err := c.html.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render %s html: %w", name, err)
		}
		out.HTML = buf.String()
	}
	return &out, nil
}
