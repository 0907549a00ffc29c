package hadith

import (
	"fmt"

	"github.com/ohler55/ojg/oj"

	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
)

// Decode parses one source file. Accepted top-level shapes are a list of
// records, an object wrapping the list under "hadiths" or "data", or a single
// record object. Anything else is a parse error for the whole file.
func Decode(data []byte) ([]any, error) {
	const op = "hadith.decode"
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, ingesterr.Wrap(ingesterr.CodeParse, op, err)
	}
	switch t := doc.(type) {
	case []any:
		return t, nil
	case map[string]any:
		for _, key := range []string{"hadiths", "data"} {
			inner, ok := t[key]
			if !ok {
				continue
			}
			list, ok := inner.([]any)
			if !ok {
				return nil, ingesterr.NewError(ingesterr.CodeParse, op, fmt.Sprintf("%q is %T, expected a list", key, inner), nil)
			}
			return list, nil
		}
		return []any{t}, nil
	default:
		return nil, ingesterr.NewError(ingesterr.CodeParse, op, fmt.Sprintf("unexpected top-level JSON value %T", doc), nil)
	}
}
