// Package models defines the pallet-rack audit records kept in the local
// queue and shipped to the remote store.
package models

// DamageTypeOther is the sentinel that switches a record to a free-text
// damage type with a user-supplied recommendation.
const DamageTypeOther = "Other"

var damageTypes = []string{
	"Beam Safety Clips Missing",
	"Upright Damaged",
	"Upright/Footplate Twisted",
	"Footplate Damaged/Missing",
	"Floor Fixing Damaged/Missing",
	"Horizontal Brace Damaged",
	"Diagonal Brace Damaged",
	"Beam Damaged",
	"Beam Dislodged",
	"Row Spacer Damaged/Missing",
	"Mesh Deck missing/damaged",
	"Barrier/Guard Damaged/Missing",
	"Load Sign Incorrect/Missing",
	"Splice Incorrect/Poor Quality",
	"Frames not compatible with Beam",
	DamageTypeOther,
}

var recommendations = map[string]string{
	"Beam Safety Clips Missing":       "Replace Safety Beam Clip",
	"Upright Damaged":                 "Replace Upright",
	"Upright/Footplate Twisted":       "Straighten Upright/Footplate",
	"Footplate Damaged/Missing":       "Replace Footplate",
	"Floor Fixing Damaged/Missing":    "Replace Floor Fixing",
	"Horizontal Brace Damaged":        "Replace Horizontal Brace",
	"Diagonal Brace Damaged":          "Replace Diagonal Brace",
	"Beam Damaged":                    "Replace Beam",
	"Beam Dislodged":                  "Re-Engage Dislodged Beam",
	"Row Spacer Damaged/Missing":      "Replace Row Spacer",
	"Mesh Deck missing/damaged":       "Replace Mesh Deck",
	"Barrier/Guard Damaged/Missing":   "Replace Barrier/Guard",
	"Load Sign Incorrect/Missing":     "Replace Load Sign",
	"Splice Incorrect/Poor Quality":   "Replace Splice",
	"Frames not compatible with Beam": "Unload and replace Frames and or beams",
}

// DamageTypes returns the catalog in display order, ending with the
// "Other" sentinel. The slice is a copy.
func DamageTypes() []string {
	out := make([]string, len(damageTypes))
	copy(out, damageTypes)
	return out
}

// Recommendation looks up the fixed recommendation for a catalog damage type.
// It reports false for "Other" and for values outside the catalog.
func Recommendation(damageType string) (string, bool) {
	r, ok := recommendations[damageType]
	return r, ok
}

// IsCatalogType reports whether damageType is one of the fixed catalog
// entries (the "Other" sentinel excluded).
func IsCatalogType(damageType string) bool {
	_, ok := recommendations[damageType]
	return ok
}
