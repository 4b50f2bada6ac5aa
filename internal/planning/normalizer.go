package planning

import (
	"strconv"
	"strings"
	"time"
)

// Application statuses that stand in for a decision when the council never
// issued one.
var terminalStatuses = map[string]bool{
	"DEEMED WITHDRAWN":        true,
	"WITHDRAWN":               true,
	"INCOMPLETED APPLICATION": true,
}

// Normalize converts raw attribute maps from the feature service into
// canonical records. Records without a planning reference are dropped; this
// is an expected data-quality filter, not an error, so the output count may
// be lower than the input count.
func Normalize(raw []map[string]any) []Record {
	records := make([]Record, 0, len(raw))
	for _, attrs := range raw {
		rec, ok := NormalizeOne(attrs)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// NormalizeOne maps one raw attribute set into a Record. The second return
// is false when the record has no reference and must be skipped.
func NormalizeOne(attrs map[string]any) (Record, bool) {
	rec := Record{
		Ref:          cleanString(attrs["ApplicationNumber"]),
		Location:     cleanString(attrs["DevelopmentAddress"]),
		Postcode:     cleanString(attrs["DevelopmentPostcode"]),
		Proposal:     cleanString(attrs["DevelopmentDescription"]),
		LongProposal: cleanString(attrs["DevelopmentDescription"]),
		AppType:      cleanString(attrs["ApplicationType"]),
		AppStatus:    cleanString(attrs["ApplicationStatus"]),
		Decision:     cleanString(attrs["Decision"]),
		RegDate:      formatDate(attrs["ReceivedDate"]),
		DecDate:      formatDate(attrs["DecisionDate"]),
		GrantDate:    formatDate(attrs["GrantDate"]),
		ExpiryDate:   formatDate(attrs["ExpiryDate"]),
		FIReqDate:    formatDate(attrs["FIRequestDate"]),
		FIRecDate:    formatDate(attrs["FIRecDate"]),
		NumUnits:     cleanString(attrs["NumResidentialUnits"]),
		FloorArea:    cleanString(attrs["FloorArea"]),
		Link:         cleanString(attrs["LinkAppDetails"]),
		Lat:          cleanString(attrs["Latitude"]),
		Lon:          cleanString(attrs["Longitude"]),
	}

	if rec.Ref == "" {
		return Record{}, false
	}

	appealRef := cleanString(attrs["AppealRefNumber"])
	appealStatus := cleanString(attrs["AppealStatus"])
	rec.HasAppeal = appealRef != "" || appealStatus != ""
	if rec.HasAppeal {
		appeal := Appeal{
			Ref:          appealRef,
			Status:       appealStatus,
			Decision:     cleanString(attrs["AppealDecision"]),
			DecisionDate: formatDate(attrs["AppealDecisionDate"]),
		}
		if appeal != (Appeal{}) {
			rec.AppealDetails = []Appeal{appeal}
		}
	}

	// Applications withdrawn or left incomplete never get a decision; show
	// the status instead. Anything else still undecided is Pending.
	if rec.Decision == "" {
		if terminalStatuses[rec.AppStatus] {
			rec.Decision = rec.AppStatus
		} else {
			rec.Decision = "Pending"
		}
	}

	rec.DevCategory = classifyCategory(rec.Proposal)
	rec.LandType = classifyLandType(rec.Location, rec.Proposal)
	rec.DevScale = classifyScale(rec.NumUnits, rec.Proposal)

	return rec, true
}

// cleanString renders a raw attribute as a trimmed string, treating the
// source's null sentinels ("None", "nan", "N/A") as absent.
func cleanString(v any) string {
	if v == nil {
		return ""
	}
	s := strings.TrimSpace(anyToString(v))
	switch s {
	case "None", "nan", "N/A":
		return ""
	}
	return s
}

// formatDate converts epoch-millisecond values to YYYY-MM-DD. String values
// that are not epoch numbers pass through verbatim; anything unparseable
// yields an empty string, never an error.
func formatDate(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		return epochToDate(int64(t))
	case int64:
		return epochToDate(t)
	case int:
		return epochToDate(int64(t))
	case string:
		s := strings.TrimSpace(t)
		switch s {
		case "", "None", "nan", "0":
			return ""
		}
		return s
	default:
		return ""
	}
}

func epochToDate(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}

func anyToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; integer-valued ones (unit counts,
		// floor areas) must not grow a trailing ".000000".
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
