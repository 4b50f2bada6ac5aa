package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_DropsRecordsWithoutReference(t *testing.T) {
	raw := []map[string]any{
		{"ApplicationNumber": "2458/24", "DevelopmentAddress": "1 Main Street"},
		{"DevelopmentAddress": "No reference here"},
		{"ApplicationNumber": "None", "DevelopmentAddress": "Null sentinel reference"},
		{"ApplicationNumber": "3001/24"},
	}

	records := Normalize(raw)

	require.Len(t, records, 2)
	assert.Equal(t, "2458/24", records[0].Ref)
	assert.Equal(t, "3001/24", records[1].Ref)
}

func TestNormalizeOne_FieldMapping(t *testing.T) {
	attrs := map[string]any{
		"ApplicationNumber":      "  2458/24  ",
		"DevelopmentAddress":     "12 Rathmines Road Lower, Dublin 6",
		"DevelopmentPostcode":    "D06",
		"DevelopmentDescription": "Construction of a two-storey rear extension",
		"ApplicationType":        "Permission",
		"ApplicationStatus":      "DECIDED",
		"Decision":               "GRANT PERMISSION",
		"ReceivedDate":           float64(1704067200000), // 2024-01-01
		"DecisionDate":           float64(1709251200000), // 2024-03-01
		"NumResidentialUnits":    float64(2),
		"FloorArea":              "145.5",
		"LinkAppDetails":         "https://example.org/app/2458-24",
	}

	rec, ok := NormalizeOne(attrs)
	require.True(t, ok)

	assert.Equal(t, "2458/24", rec.Ref)
	assert.Equal(t, "12 Rathmines Road Lower, Dublin 6", rec.Location)
	assert.Equal(t, "D06", rec.Postcode)
	assert.Equal(t, "Construction of a two-storey rear extension", rec.Proposal)
	assert.Equal(t, "Permission", rec.AppType)
	assert.Equal(t, "GRANT PERMISSION", rec.Decision)
	assert.Equal(t, "2024-01-01", rec.RegDate)
	assert.Equal(t, "2024-03-01", rec.DecDate)
	assert.Equal(t, "2", rec.NumUnits, "integer-valued JSON numbers must not gain a decimal tail")
	assert.False(t, rec.HasAppeal)
	assert.Empty(t, rec.AppealDetails)
}

func TestNormalizeOne_DecisionNeverBlank(t *testing.T) {
	tests := []struct {
		name     string
		decision any
		status   any
		want     string
	}{
		{"explicit decision kept", "GRANT PERMISSION", "DECIDED", "GRANT PERMISSION"},
		{"withdrawn status stands in", "", "WITHDRAWN", "WITHDRAWN"},
		{"deemed withdrawn stands in", "N/A", "DEEMED WITHDRAWN", "DEEMED WITHDRAWN"},
		{"incomplete stands in", nil, "INCOMPLETED APPLICATION", "INCOMPLETED APPLICATION"},
		{"undecided defaults to pending", "", "REGISTERED", "Pending"},
		{"no status defaults to pending", nil, nil, "Pending"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := NormalizeOne(map[string]any{
				"ApplicationNumber": "1234/24",
				"Decision":          tt.decision,
				"ApplicationStatus": tt.status,
			})
			require.True(t, ok)
			assert.Equal(t, tt.want, rec.Decision)
		})
	}
}

func TestNormalizeOne_AppealSynthesis(t *testing.T) {
	rec, ok := NormalizeOne(map[string]any{
		"ApplicationNumber":  "5001/23",
		"AppealRefNumber":    "ABP-318222-23",
		"AppealStatus":       "Appeal Decided",
		"AppealDecision":     "Refused",
		"AppealDecisionDate": float64(1717200000000), // 2024-06-01
	})
	require.True(t, ok)

	assert.True(t, rec.HasAppeal)
	require.Len(t, rec.AppealDetails, 1)
	appeal := rec.AppealDetails[0]
	assert.Equal(t, "ABP-318222-23", appeal.Ref)
	assert.Equal(t, "Appeal Decided", appeal.Status)
	assert.Equal(t, "Refused", appeal.Decision)
	assert.Equal(t, "2024-06-01", appeal.DecisionDate)
}

func TestNormalizeOne_AppealFromStatusOnly(t *testing.T) {
	rec, ok := NormalizeOne(map[string]any{
		"ApplicationNumber": "5002/23",
		"AppealStatus":      "Appeal Lodged",
	})
	require.True(t, ok)

	assert.True(t, rec.HasAppeal)
	require.Len(t, rec.AppealDetails, 1)
	assert.Equal(t, "Appeal Lodged", rec.AppealDetails[0].Status)
	assert.Empty(t, rec.AppealDetails[0].Ref)
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"epoch millis float", float64(1704067200000), "2024-01-01"},
		{"epoch millis int64", int64(1704067200000), "2024-01-01"},
		{"zero epoch", float64(0), ""},
		{"nil", nil, ""},
		{"string date passes through", "2023-05-17", "2023-05-17"},
		{"none sentinel", "None", ""},
		{"nan sentinel", "nan", ""},
		{"zero string", "0", ""},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDate(tt.in))
		})
	}
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "", cleanString(nil))
	assert.Equal(t, "", cleanString("None"))
	assert.Equal(t, "", cleanString("nan"))
	assert.Equal(t, "", cleanString("N/A"))
	assert.Equal(t, "", cleanString("  "))
	assert.Equal(t, "value", cleanString("  value  "))
	assert.Equal(t, "75", cleanString(float64(75)))
	assert.Equal(t, "145.5", cleanString(float64(145.5)))
}
