package pipeline

import "github.com/MeKo-Tech/platescan/internal/nutrition"

// Source identifies which cascade stage produced a result.
type Source int

const (
	SourceBarcode Source = iota
	SourceLabel
	SourceReference
	SourceColor
)

func (s Source) String() string {
	switch s {
	case SourceBarcode:
		return "barcode"
	case SourceLabel:
		return "label"
	case SourceReference:
		return "reference"
	case SourceColor:
		return "color"
	default:
		return "unknown"
	}
}

// stage tracks cascade progress. The order is fixed; a stage is entered
// only when every earlier stage produced nothing.
type stage int

const (
	stageInit stage = iota
	stageBarcodeSearch
	stageLabelOCR
	stageReferenceMatch
	stageColorHeuristic
	stageDone
)

func (s stage) String() string {
	switch s {
	case stageInit:
		return "init"
	case stageBarcodeSearch:
		return "barcode_search"
	case stageLabelOCR:
		return "label_ocr"
	case stageReferenceMatch:
		return "reference_match"
	case stageColorHeuristic:
		return "color_heuristic"
	case stageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Result is one nutrition estimate with its provenance.
type Result struct {
	Estimate *nutrition.Estimate `json:"estimate"`
	Source   Source              `json:"-"`
	// SourceName mirrors Source for serialization.
	SourceName string `json:"source"`
	// Code is the normalized barcode payload, set for barcode results and
	// for label results where a code was decoded but unknown to the lookup.
	Code string `json:"code,omitempty"`
	// Label is the matched gallery label for reference results.
	Label string `json:"label,omitempty"`
	// Confidence is the winning candidate's in-stage ranking score. It is
	// comparable within a stage, not across stages.
	Confidence float64 `json:"confidence"`
	// Rotation is the winning rotation variant in degrees.
	Rotation int `json:"rotation"`
}
