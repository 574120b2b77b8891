package record

import (
	"reflect"

	"github.com/sells-group/company-profiler/internal/model"
)

// NonEmpty reports whether v carries real data: nil and placeholder strings do
// not, lists do when they have elements, anything else does.
func NonEmpty(v any, placeholders PlaceholderSet) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return !placeholders.Contains(t)
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len() > 0
	}
	return true
}

// Merge combines a primary (website) and secondary (LinkedIn) candidate into a
// canonical record. For every field the secondary value wins when it is
// non-empty; otherwise the primary value is kept as is, even when it is itself
// empty or a placeholder. Merge never fails.
func Merge(primary, secondary model.Candidate, placeholders PlaceholderSet) model.Record {
	if placeholders == nil {
		placeholders = DefaultPlaceholders()
	}
	rec := model.NewRecord()
	for _, k := range model.Fields {
		s := secondary[k]
		if NonEmpty(s, placeholders) {
			rec.Values[k] = s
			continue
		}
		rec.Values[k] = primary[k]
	}
	return rec
}
