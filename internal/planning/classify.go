package planning

import (
	"strconv"
	"strings"
)

// Development category tags.
const (
	CategoryResidential   = "residential"
	CategoryCommercial    = "commercial"
	CategoryIndustrial    = "industrial"
	CategoryEducation     = "education"
	CategoryPublicInst    = "public_institutional"
	CategoryModification  = "modification"
	CategoryDemolition    = "demolition"
	CategoryOther         = "other"
)

// Land type tags: signals of public land vs public housing vs private.
const (
	LandPublic        = "public"
	LandPublicHousing = "public_housing"
	LandPrivate       = "private"
)

// Development scale tags.
const (
	ScaleLarge      = "large"
	ScaleMedium     = "medium"
	ScaleSmallMulti = "small_multi"
	ScaleSingle     = "single"
)

// keywordRule pairs a tag with the keywords that select it. Rules are
// evaluated in order and the first match wins, so residential keywords
// shadow everything after them.
type keywordRule struct {
	tag      string
	keywords []string
}

var categoryRules = []keywordRule{
	{CategoryResidential, []string{"dwelling", "house", "residential", "apartment", "flat", "duplex"}},
	{CategoryCommercial, []string{"office", "commercial", "retail", "shop", "restaurant", "hotel"}},
	{CategoryIndustrial, []string{"industrial", "warehouse", "factory", "storage"}},
	{CategoryEducation, []string{"school", "college", "university", "creche", "childcare"}},
	{CategoryPublicInst, []string{"church", "hospital", "clinic", "community", "public"}},
	{CategoryModification, []string{"extension", "conversion", "alteration", "renovation"}},
	{CategoryDemolition, []string{"demolition", "demolish"}},
}

var publicLandKeywords = []string{"council", "public", "park", "civic", "library", "garda"}

var publicHousingKeywords = []string{"social housing", "affordable housing", "council housing", "part v"}

var largeScaleKeywords = []string{"strategic housing development", "shd", "large-scale"}

// classifyCategory tags the development category from the proposal text.
func classifyCategory(proposal string) string {
	lower := strings.ToLower(proposal)
	for _, rule := range categoryRules {
		if containsAny(lower, rule.keywords) {
			return rule.tag
		}
	}
	return CategoryOther
}

// classifyLandType tags public-land signals in the location ahead of
// public-housing signals in the proposal; everything else is private.
func classifyLandType(location, proposal string) string {
	if containsAny(strings.ToLower(location), publicLandKeywords) {
		return LandPublic
	}
	if containsAny(strings.ToLower(proposal), publicHousingKeywords) {
		return LandPublicHousing
	}
	return LandPrivate
}

// classifyScale tags scale from the residential unit count, with strategic
// housing keywords promoting to large regardless of the count.
func classifyScale(numUnits, proposal string) string {
	units, err := strconv.Atoi(strings.TrimSpace(numUnits))
	if err != nil {
		units = 0
	}

	switch {
	case units >= 50 || containsAny(strings.ToLower(proposal), largeScaleKeywords):
		return ScaleLarge
	case units >= 10:
		return ScaleMedium
	case units >= 2:
		return ScaleSmallMulti
	default:
		return ScaleSingle
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
