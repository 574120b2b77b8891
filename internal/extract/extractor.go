// Package extract asks a language model to pull structured company fields
// out of page text.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/sells-group/company-profiler/internal/model"
)

// ErrNoCredential is returned by every call of an extractor built without an
// API key.
var ErrNoCredential = eris.New("extract: no api credential configured")

// Request is a single extraction call.
type Request struct {
	// Text is the page text to extract from.
	Text string
	// Source says where Text came from; it changes the prompt wording.
	Source model.Source
	// Website is the company URL the lookup started from.
	Website string
	// Language is a BCP 47 tag selecting the language of free-text answers.
	Language string
}

// Extractor returns the raw model answer for a request. The answer is
// expected, not guaranteed, to be a JSON object.
type Extractor interface {
	Extract(ctx context.Context, req Request) (string, error)
	Name() string
}

const systemPrompt = "You extract company information from web page text. " +
	"Answer with a single JSON object and nothing else."

// BuildPrompt renders the user prompt for a request.
func BuildPrompt(req Request) string {
	sourceText := "the website content"
	if req.Source == model.SourceSecondary {
		sourceText = "the LinkedIn page"
	}

	keys := make([]string, len(model.Fields))
	for i, f := range model.Fields {
		keys[i] = fmt.Sprintf("%q", f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following extracted content from %s, please extract and summarize the following company information.\n", sourceText)
	b.WriteString("Return a valid JSON string with no extra text. The JSON must have the following keys exactly: ")
	b.WriteString(strings.Join(keys, ", "))
	b.WriteString(".\n")
	fmt.Fprintf(&b, "\"ownership\" must be one of: %s.\n", strings.Join(model.OwnershipValues, ", "))
	b.WriteString("\"services\" is a list of strings. \"headcount\" is the approximate number of employees and \"revenue\" the most recent known or approximate revenue.\n")
	b.WriteString("\"ticker\" is the stock ticker symbol if the company is publicly traded, otherwise \"Not provided\".\n")
	if req.Website != "" {
		fmt.Fprintf(&b, "The company's website is %s.\n", req.Website)
	}
	fmt.Fprintf(&b, "Write the \"brief_description\" and \"services\" values in %s.\n", LanguageName(req.Language))
	b.WriteString("\nContent:\n")
	b.WriteString(req.Text)
	return b.String()
}

// LanguageName returns the English display name of a BCP 47 tag, falling
// back to English for an empty or invalid tag.
func LanguageName(tag string) string {
	t, err := language.Parse(tag)
	if err != nil || tag == "" {
		t = language.English
	}
	name := display.English.Tags().Name(t)
	if name == "" {
		return "English"
	}
	return name
}
