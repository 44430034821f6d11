package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"snagaudit/pkg/types"
)

// ParseCandidates reads a model response as a JSON array of objects. A bare
// object is accepted as a single candidate. When the response is wrapped in
// prose, the span from the first '[' to the last ']' is tried instead.
func ParseCandidates(content string) ([]Candidate, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty response: %w", types.ErrExtractionParse)
	}

	var parsed any
	if err := json.Unmarshal([]byte(content), &parsed); err == nil {
		switch v := parsed.(type) {
		case map[string]any:
			return []Candidate{v}, nil
		case []any:
			return candidatesFrom(v)
		default:
			return nil, fmt.Errorf("response is a JSON %T, not an array: %w", parsed, types.ErrExtractionParse)
		}
	}

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response: %w", types.ErrExtractionParse)
	}

	var items []any
	if err := json.Unmarshal([]byte(content[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("recovered span is not a JSON array: %v: %w", err, types.ErrExtractionParse)
	}

	return candidatesFrom(items)
}

func candidatesFrom(items []any) ([]Candidate, error) {
	candidates := make([]Candidate, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("element %d is not an object: %w", i, types.ErrExtractionParse)
		}
		candidates = append(candidates, obj)
	}
	return candidates, nil
}

// parseMatches reads a {"photo": snag} object. Indexes are validated against
// the photo and snag counts; -1, out of range and non-numeric entries are
// dropped. An unreadable answer yields an empty map.
func parseMatches(content string, photos, snags int) map[int]int {
	matches := make(map[int]int)

	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return matches
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return matches
	}

	for key, value := range raw {
		photo, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || photo < 0 || photo >= photos {
			continue
		}

		var snag int
		switch v := value.(type) {
		case float64:
			snag = int(v)
			if float64(snag) != v {
				continue
			}
		case string:
			if snag, err = strconv.Atoi(strings.TrimSpace(v)); err != nil {
				continue
			}
		default:
			continue
		}

		if snag < 0 || snag >= snags {
			continue
		}
		matches[photo] = snag
	}

	return matches
}
