package nutrition

import "strings"

// Status classifies how a scanned food interacts with the user's profile.
type Status string

const (
	StatusSafe    Status = "SAFE"
	StatusWarning Status = "WARNING"
	StatusDanger  Status = "DANGER"
	StatusAllergy Status = "ALLERGY"
)

var statusSet = map[Status]struct{}{
	StatusSafe:    {},
	StatusWarning: {},
	StatusDanger:  {},
	StatusAllergy: {},
}

// ParseStatus maps a raw status string onto the known classifications.
// Anything unrecognized, including the empty string, resolves to StatusSafe.
func ParseStatus(raw string) Status {
	candidate := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := statusSet[candidate]; ok {
		return candidate
	}
	return StatusSafe
}

// GridCell is one label/value tuple on the result summary grid.
type GridCell struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Color string `json:"color"`
	Emoji string `json:"emoji"`
}

// Record is the canonical, UI-ready representation of one analysis response.
// It is held in memory until the user logs or discards the capture; only its
// logged subset ever reaches persistence.
type Record struct {
	Name              string
	Calories          float64
	Protein           float64
	Sugar             float64
	Fiber             float64
	Status            Status
	Message           string
	Subtitle          string
	Risks             []string
	Swaps             []string
	SummaryGrid       []GridCell
	Tags              []string
	AIAnalysis        string
	DailySugarPercent float64
	ImageURI          string
}
