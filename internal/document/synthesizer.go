// Package document renders planning records into the text and metadata
// shapes stored in the vector index. The text body is deliberately richer
// than the metadata: embeddings need narrative density while metadata stays
// small and typed for filtering and display.
package document

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/blindspotlabs/dublin-planning-rag/internal/planning"
)

const (
	// MinTextLength excludes documents too sparse to be useful in search.
	MinTextLength = 20

	// maxMetadataText bounds long text fields in the metadata payload.
	maxMetadataText = 500

	// maxAppeals caps the appeal summaries rendered into the text body.
	maxAppeals = 3
)

// Metadata payload keys.
const (
	KeyRef           = "ref"
	KeyLocation      = "location"
	KeyDecision      = "decision"
	KeyRegDate       = "reg_date"
	KeyDecDate       = "dec_date"
	KeyAppType       = "app_type"
	KeyStage         = "stage"
	KeyHasAppeal     = "has_appeal"
	KeyProposalShort = "proposal_short"
	KeyDevCategory   = "dev_category"
	KeyLandType      = "land_type"
	KeyDevScale      = "dev_scale"
	KeyLat           = "lat"
	KeyLon           = "lon"
)

// IndexedDocument is the 1:1 projection of a planning record for storage.
type IndexedDocument struct {
	Ref  string
	Text string
	Meta map[string]any
}

// Synthesize builds the indexed form of a record.
func Synthesize(rec planning.Record) IndexedDocument {
	return IndexedDocument{
		Ref:  rec.Ref,
		Text: synthesizeText(rec),
		Meta: synthesizeMetadata(rec),
	}
}

// Indexable reports whether the document body is long enough to index.
func (d IndexedDocument) Indexable() bool {
	return len(strings.TrimSpace(d.Text)) >= MinTextLength
}

// synthesizeText assembles the embedding text: one labeled line per
// non-empty field, newline-joined in a fixed order.
func synthesizeText(rec planning.Record) string {
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}

	add("Planning Application Reference", rec.Ref)
	add("Location", rec.Location)

	// Prefer the long proposal only when it actually differs.
	if rec.LongProposal != "" && rec.LongProposal != rec.Proposal {
		add("Proposal", rec.LongProposal)
	} else {
		add("Proposal", rec.Proposal)
	}

	add("Application Type", rec.AppType)
	add("Registration Date", rec.RegDate)
	add("Decision", rec.Decision)
	add("Decision Date", rec.DecDate)
	add("Final Grant Date", rec.GrantDate)
	add("Current Stage", rec.AppStatus)

	if hasCoordinates(rec) {
		parts = append(parts, fmt.Sprintf("Coordinates: %s, %s", rec.Lat, rec.Lon))
	}

	if rec.HasAppeal {
		parts = append(parts, "Status: This application has been appealed")
		for i, appeal := range rec.AppealDetails {
			if i >= maxAppeals {
				break
			}
			if text := appealText(appeal); text != "" {
				parts = append(parts, fmt.Sprintf("Appeal %d: %s", i+1, text))
			}
		}
	}

	return strings.Join(parts, "\n")
}

// appealText joins the non-empty appeal fields into one summary line.
func appealText(a planning.Appeal) string {
	var fields []string
	add := func(label, value string) {
		if value != "" {
			fields = append(fields, label+": "+value)
		}
	}
	add("AppealRef", a.Ref)
	add("Status", a.Status)
	add("Decision", a.Decision)
	add("DecisionDate", a.DecisionDate)
	return strings.Join(fields, "; ")
}

// synthesizeMetadata builds the flat payload stored alongside the text.
// Empty values are dropped entirely: the storage layer disallows nulls, and
// absent keys keep the payload compact.
func synthesizeMetadata(rec planning.Record) map[string]any {
	meta := make(map[string]any)
	put := func(key, value string) {
		if value != "" {
			meta[key] = value
		}
	}

	put(KeyRef, rec.Ref)
	put(KeyLocation, truncate(rec.Location, maxMetadataText))
	put(KeyDecision, rec.Decision)
	put(KeyRegDate, rec.RegDate)
	put(KeyDecDate, rec.DecDate)
	put(KeyAppType, rec.AppType)
	put(KeyStage, rec.AppStatus)
	put(KeyProposalShort, truncate(rec.Proposal, maxMetadataText))
	put(KeyDevCategory, rec.DevCategory)
	put(KeyLandType, rec.LandType)
	put(KeyDevScale, rec.DevScale)
	meta[KeyHasAppeal] = strconv.FormatBool(rec.HasAppeal)

	// Coordinates are stored as floats when both parse; a bad pair is
	// silently omitted rather than stored as text.
	if hasCoordinates(rec) {
		lat, latErr := strconv.ParseFloat(rec.Lat, 64)
		lon, lonErr := strconv.ParseFloat(rec.Lon, 64)
		if latErr == nil && lonErr == nil {
			meta[KeyLat] = lat
			meta[KeyLon] = lon
		}
	}

	return meta
}

// hasCoordinates requires both values present and neither the "nan"
// sentinel that the source uses for missing geometry.
func hasCoordinates(rec planning.Record) bool {
	return rec.Lat != "" && rec.Lon != "" && rec.Lat != "nan" && rec.Lon != "nan"
}

// truncate cuts s to at most max bytes without splitting a rune. The payload
// values end up in protobuf string fields, which reject invalid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
