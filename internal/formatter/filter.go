package formatter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// Filter runs a jq expression over v after a JSON round trip, so struct tags decide the field
// names. A single result is returned bare, several as a slice. An empty expression returns the
// round-tripped value.
func Filter(v any, expression string) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value for filtering: %w", err)
	}

	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if strings.TrimSpace(expression) == "" {
		return input, nil
	}

	// zsh escapes ! inside single quotes
	query, err := gojq.Parse(strings.ReplaceAll(expression, `\!`, `!`))
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	var results []any
	iter := query.Run(input)
	for {
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := out.(error); ok {
			return nil, fmt.Errorf("filter error: %w", err)
		}
		results = append(results, out)
	}

	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}
