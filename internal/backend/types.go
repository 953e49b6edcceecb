package backend

import (
	"errors"
	"strings"
)

// ScanRequest is the canonical analysis request. Exactly one of Barcode or
// ImageBase64 must be set.
type ScanRequest struct {
	UserID      string  `json:"user_id"`
	Barcode     string  `json:"barcode,omitempty"`
	ImageBase64 string  `json:"image_base64,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Persona     string  `json:"persona,omitempty"`
}

// Validate enforces the one-of barcode/image invariant.
func (r ScanRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("scan request: user id required")
	}
	hasBarcode := strings.TrimSpace(r.Barcode) != ""
	hasImage := strings.TrimSpace(r.ImageBase64) != ""
	if hasBarcode == hasImage {
		return errors.New("scan request: exactly one of barcode or image required")
	}
	return nil
}

type logRequest struct {
	UserID   string         `json:"user_id"`
	FoodData map[string]any `json:"food_data"`
}

type pingResponse struct {
	Status string `json:"status"`
}

// MacroBreakdown carries the compressed macro fields the history log stores.
type MacroBreakdown struct {
	Protein float64 `json:"p"`
	Sugar   float64 `json:"s"`
	Carbs   float64 `json:"c"`
	Fat     float64 `json:"f"`
}

// HistoryEntry is one remote log line. Time is a server-assigned display
// timestamp; the client never writes it, only reads it back.
type HistoryEntry struct {
	Time     string         `json:"time"`
	Food     string         `json:"food"`
	Calories float64        `json:"calories"`
	Macros   MacroBreakdown `json:"macros"`
	Tags     []string       `json:"tags,omitempty"`
}

// DailyProgress summarizes consumption against the user's limits.
type DailyProgress struct {
	SugarPercent    float64 `json:"sugar_percent"`
	CaloriesPercent float64 `json:"calories_percent"`
}

// Dashboard models the remote dashboard payload. History is sorted newest
// first by the service.
type Dashboard struct {
	History  []HistoryEntry `json:"history"`
	Progress DailyProgress  `json:"daily_progress"`
}
