package extract

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Candidate is one untrusted snag object as returned by the model. It only
// becomes a types.Snag through Normalize.
type Candidate map[string]any

const (
	keyDescription        = "snag_description"
	keyProjectName        = "project_name"
	keyRecommendedTrade   = "recommended_trade"
	keyRecommendedBuilder = "recommended_builder"
	keyDeadline           = "deadline"
	keyMaterialsNeeded    = "materials_needed"
	keyPlantNeeded        = "plant_needed"
	keyDrawingReference   = "drawing_reference"
	keyAdditionalNotes    = "additional_notes"
)

// text returns the trimmed string form of key. Missing keys, null, false,
// zero, empty strings and empty arrays or objects all read as blank.
func (c Candidate) text(key string) string {
	switch v := c[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		if v {
			return "true"
		}
		return ""
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		if len(v) == 0 {
			return ""
		}
	case map[string]any:
		if len(v) == 0 {
			return ""
		}
	}

	return compactJSON(c[key])
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
