package extract

import (
	"strconv"

	"snagaudit/pkg/types"
)

// Normalize converts candidates into snags in input order. A blank
// description becomes "Snag <n>" for the 1-based position, a blank project
// becomes defaultProject, and other blank fields are left nil.
func Normalize(candidates []Candidate, defaultProject string) []types.Snag {
	snags := make([]types.Snag, 0, len(candidates))

	for i, c := range candidates {
		snag := types.Snag{
			Description:        c.text(keyDescription),
			ProjectName:        c.text(keyProjectName),
			RecommendedTrade:   optional(c, keyRecommendedTrade),
			RecommendedBuilder: optional(c, keyRecommendedBuilder),
			Deadline:           optional(c, keyDeadline),
			MaterialsNeeded:    optional(c, keyMaterialsNeeded),
			PlantNeeded:        optional(c, keyPlantNeeded),
			DrawingReference:   optional(c, keyDrawingReference),
			AdditionalNotes:    optional(c, keyAdditionalNotes),
			Status:             types.SnagStatusNew,
		}
		if snag.Description == "" {
			snag.Description = "Snag " + strconv.Itoa(i+1)
		}
		if snag.ProjectName == "" {
			snag.ProjectName = defaultProject
		}

		// unreachable with the placeholder above, kept as the last gate before storage
		if snag.Description == "" {
			continue
		}

		snags = append(snags, snag)
	}

	return snags
}

func optional(c Candidate, key string) *string {
	if v := c.text(key); v != "" {
		return &v
	}
	return nil
}
