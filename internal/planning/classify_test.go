package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		name     string
		proposal string
		want     string
	}{
		{"dwelling", "Construction of a new dwelling", CategoryResidential},
		{"apartment block", "Demolition of shed and construction of 12 apartment units", CategoryResidential},
		{"office", "Change of use from office to gym", CategoryCommercial},
		{"hotel", "Extension to existing hotel", CategoryCommercial},
		{"warehouse", "New warehouse and loading bay", CategoryIndustrial},
		{"creche", "Single storey creche building", CategoryEducation},
		{"community centre", "Refurbishment of community centre", CategoryPublicInst},
		{"extension only", "Two-storey rear extension", CategoryModification},
		{"demolition only", "Demolition of existing garage", CategoryDemolition},
		{"unclassified", "Erection of signage", CategoryOther},
		{"empty", "", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyCategory(tt.proposal))
		})
	}
}

// Rule order matters: a proposal mentioning both a house and an extension
// is residential, because residential keywords are checked first.
func TestClassifyCategory_Precedence(t *testing.T) {
	assert.Equal(t, CategoryResidential, classifyCategory("Extension to existing house"))
	assert.Equal(t, CategoryCommercial, classifyCategory("Alterations to retail unit"))
	assert.Equal(t, CategoryResidential, classifyCategory("Demolition of dwelling"))
}

func TestClassifyLandType(t *testing.T) {
	tests := []struct {
		name     string
		location string
		proposal string
		want     string
	}{
		{"council land", "Council Depot, Marrowbone Lane", "New storage facility", LandPublic},
		{"park", "Phoenix Park entrance", "Kiosk", LandPublic},
		{"social housing", "Emmet Road, Inchicore", "Development of 52 social housing units", LandPublicHousing},
		{"part v", "Dock Mill site", "Residential scheme including Part V provision", LandPublicHousing},
		{"private default", "14 Oak Avenue", "Rear extension", LandPrivate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyLandType(tt.location, tt.proposal))
		})
	}
}

// Public land signals in the location win over housing signals in the
// proposal.
func TestClassifyLandType_LocationWins(t *testing.T) {
	got := classifyLandType("Council lands at Cherry Orchard", "Affordable housing scheme")
	assert.Equal(t, LandPublic, got)
}

func TestClassifyScale(t *testing.T) {
	tests := []struct {
		name     string
		numUnits string
		proposal string
		want     string
	}{
		{"large by units", "75", "Residential development", ScaleLarge},
		{"large boundary", "50", "Residential development", ScaleLarge},
		{"large by shd keyword", "0", "SHD application for build-to-rent scheme", ScaleLarge},
		{"large by strategic keyword", "", "Strategic Housing Development of apartments", ScaleLarge},
		{"medium", "10", "Apartment scheme", ScaleMedium},
		{"small multi", "2", "Pair of semi-detached dwellings", ScaleSmallMulti},
		{"single", "1", "One dwelling", ScaleSingle},
		{"no units", "", "Rear extension", ScaleSingle},
		{"unparseable units", "many", "Rear extension", ScaleSingle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyScale(tt.numUnits, tt.proposal))
		})
	}
}
