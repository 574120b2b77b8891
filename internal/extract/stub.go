package extract

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/internal/model"
)

const stubDescriptionChars = 200

// StubExtractor answers without calling a model. It fills name, website and
// a description excerpt from the request and marks everything else as not
// specified. Used for offline runs.
type StubExtractor struct{}

// NewStubExtractor creates a StubExtractor.
func NewStubExtractor() *StubExtractor { return &StubExtractor{} }

func (s *StubExtractor) Name() string { return "stub" }

// Extract builds a JSON answer from the request alone.
func (s *StubExtractor) Extract(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", eris.Wrap(err, "extract: stub")
	}

	out := make(map[string]any, len(model.Fields))
	for _, f := range model.Fields {
		out[f] = "Not specified"
	}
	out[model.FieldServices] = []string{}
	if name := nameFromURL(req.Website); name != "" {
		out[model.FieldName] = name
	}
	if req.Website != "" {
		out[model.FieldWebsite] = req.Website
	}
	if desc := excerpt(req.Text, stubDescriptionChars); desc != "" {
		out[model.FieldBriefDescription] = desc
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", eris.Wrap(err, "extract: stub marshal")
	}
	return string(b), nil
}

// nameFromURL turns https://www.acme-tools.com into "Acme Tools".
func nameFromURL(raw string) string {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	label := strings.SplitN(host, ".", 2)[0]

	words := strings.FieldsFunc(label, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit])
}
