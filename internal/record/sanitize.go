package record

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/internal/model"
)

const fence = "```"

// fenceLangRe matches a language tag left on the first line after the opening fence.
var fenceLangRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_+-]*\s*\n`)

// Sanitize strips formatting artifacts from raw extractor output. A nil input
// is returned unchanged. Fenced output (```...```) loses its fence markers and
// any language tag on the opening line.
func Sanitize(raw *string) *string {
	if raw == nil {
		return nil
	}
	cleaned := strings.TrimSpace(*raw)
	if len(cleaned) >= 2*len(fence) && strings.HasPrefix(cleaned, fence) && strings.HasSuffix(cleaned, fence) {
		cleaned = strings.Trim(cleaned, "`")
		cleaned = fenceLangRe.ReplaceAllString(cleaned, "")
		cleaned = strings.TrimSpace(cleaned)
	}
	return &cleaned
}

// SanitizeString is Sanitize for callers holding a plain string.
func SanitizeString(raw string) string {
	return *Sanitize(&raw)
}

// TryParse decodes a sanitized payload into a candidate and reports why it
// could not when decoding fails.
func TryParse(sanitized *string) (model.Candidate, error) {
	if sanitized == nil {
		return model.Candidate{}, eris.New("record: no payload")
	}
	var c model.Candidate
	if err := json.Unmarshal([]byte(*sanitized), &c); err != nil {
		return model.Candidate{}, eris.Wrap(err, "record: decode payload")
	}
	if c == nil {
		// Top-level JSON null.
		return model.Candidate{}, eris.New("record: payload is not an object")
	}
	return c, nil
}

// Parse decodes a sanitized payload, returning an empty candidate on any failure.
func Parse(sanitized *string) model.Candidate {
	c, _ := TryParse(sanitized)
	return c
}
