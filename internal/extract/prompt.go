package extract

import (
	"fmt"
	"strings"

	"snagaudit/pkg/types"
)

const extractionPrompt = `You are analyzing a voice recording transcript from a building company property audit.
Extract all snags/issues mentioned and return ONLY a valid JSON array of snag objects. No other text.
Each object must have these fields (use empty string if not mentioned):
- snag_description: Brief description of the problem
- project_name: Name of the project/property (infer from context if not stated)
- recommended_trade: Trade type (e.g., "Plumber", "Electrician", "Carpenter", "Painter", "Roofer")
- recommended_builder: Name of builder/contractor if mentioned
- deadline: ISO date string or description like "ASAP", "end of week"
- materials_needed: Comma-separated list of materials if mentioned
- plant_needed: Equipment/plant if mentioned
- drawing_reference: Reference to technical drawing if mentioned (e.g. "A-101")
- additional_notes: Any other relevant details

Return ONLY the JSON array, e.g. [{"snag_description":"...","project_name":"...",...},...]`

func matchPrompt(snags []types.Snag) string {
	var b strings.Builder
	b.WriteString(`Match these photos to the snags below. For each photo, return the snag index (0-based) it best represents. `)
	b.WriteString(`Return JSON: {"0": 1, "1": 0} where key is photo index and value is snag index. `)
	b.WriteString("Use -1 if photo doesn't match any snag.\n\nSnags:\n")
	for i, s := range snags {
		fmt.Fprintf(&b, "%d: %s\n", i, s.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
