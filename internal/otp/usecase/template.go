package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"log/slog"
)

//go:embed templates/otp_email.html
var defaultLayout string

var fallback = template.Must(template.New("otp_email").Option("missingkey=zero").Parse(defaultLayout))

type layout struct {
	source string
	tpl    *template.Template
}

type emailData struct {
	Code         string
	ValidMinutes int
}

// renderBody uses the stored layout when one is configured and falls back
// to the embedded one when it cannot be loaded, parsed or executed.
func (s *Usecase) renderBody(ctx context.Context, data emailData) (string, error) {
	if tpl := s.customLayout(ctx); tpl != nil {
		var buf bytes.Buffer
		err := tpl.Execute(&buf, data)
		if err == nil {
			return buf.String(), nil
		}
		slog.WarnContext(ctx, "failed to execute stored otp email layout, using default", "error", err)
	}

	var buf bytes.Buffer
	if err := fallback.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Usecase) customLayout(ctx context.Context) *template.Template {
	if s.templates == nil {
		return nil
	}

	src, err := s.templates.Template(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to load stored otp email layout, using default", "error", err)
		return nil
	}

	s.layoutMu.Lock()
	defer s.layoutMu.Unlock()

	if s.layout != nil && s.layout.source == src {
		return s.layout.tpl
	}

	tpl, err := template.New("otp_email").Option("missingkey=zero").Parse(src)
	if err != nil {
		slog.WarnContext(ctx, "failed to parse stored otp email layout, using default", "error", err)
		return nil
	}
	s.layout = &layout{source: src, tpl: tpl}
	return tpl
}
