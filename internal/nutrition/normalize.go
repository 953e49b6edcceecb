package nutrition

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Normalize reshapes a raw analysis payload into a canonical Record. The
// backend has placed nutrition data under several locations over time, so
// every field is resolved through a priority-ordered probe with a safe
// default. The function is total: any JSON-shaped payload, including nil,
// produces a fully populated Record without panicking. The input is never
// mutated.
func Normalize(payload map[string]any, imageURI string) Record {
	scanResult := childMap(payload, "scan_result")
	uiCards := childMap(payload, "ui_cards")
	truth := childMap(uiCards, "truth")

	// Probe order is fixed: the macros-like object wins over micronutrients,
	// which win over the result root.
	sections := []map[string]any{
		firstMap(childMap(payload, "nutrition"), childMap(payload, "macros"), childMap(scanResult, "macros")),
		firstMap(childMap(payload, "micronutrients"), childMap(scanResult, "micronutrients")),
		scanResult,
	}

	record := Record{
		Name:              resolveName(scanResult, uiCards),
		Calories:          probeNumber(sections, "Calories", "calories"),
		Sugar:             probeNumber(sections, "Sugar", "sugar"),
		Fiber:             probeNumber(sections, "Fiber", "fiber"),
		Protein:           probeNumber(sections, "Protein", "protein"),
		Status:            ParseStatus(stringField(truth, "status")),
		Message:           stringField(uiCards, "fun_summary"),
		Subtitle:          stringField(truth, "subtitle"),
		Risks:             stringList(truth["risks"]),
		Swaps:             stringList(uiCards["swaps"]),
		SummaryGrid:       gridCells(scanResult["summary_grid"]),
		Tags:              stringList(scanResult["vision_breakdown_list"]),
		AIAnalysis:        resolveNarrative(uiCards),
		DailySugarPercent: coerceOr(childMap(childMap(payload, "user_state"), "daily_progress")["sugar_percent"], 0),
		ImageURI:          imageURI,
	}
	if record.Message == "" {
		record.Message = "Analysis complete."
	}
	return record
}

func resolveName(scanResult, uiCards map[string]any) string {
	name := stringField(scanResult, "food_name")
	if name == "" {
		name = stringField(childMap(uiCards, "ai_analysis"), "item_name")
	}
	return CleanDisplayName(name)
}

func resolveNarrative(uiCards map[string]any) string {
	switch value := uiCards["ai_analysis"].(type) {
	case string:
		return strings.TrimSpace(value)
	case map[string]any:
		for _, key := range []string{"analysis", "narrative", "summary"} {
			if text := stringField(value, key); text != "" {
				return text
			}
		}
	}
	return ""
}

// probeNumber evaluates sections lazily in priority order, trying each key
// alias within a section before moving on. Candidates that are present but
// not coercible to a number are skipped; when nothing coercible is found
// across all candidates the field defaults to 0.
func probeNumber(sections []map[string]any, keys ...string) float64 {
	for _, section := range sections {
		if section == nil {
			continue
		}
		for _, key := range keys {
			value, present := section[key]
			if !present {
				continue
			}
			if number, ok := coerce(value); ok {
				return number
			}
		}
	}
	return 0
}

func coerce(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		parsed, err := v.Float64()
		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func coerceOr(value any, fallback float64) float64 {
	if number, ok := coerce(value); ok {
		return number
	}
	return fallback
}

func childMap(parent map[string]any, key string) map[string]any {
	if parent == nil {
		return nil
	}
	child, _ := parent[key].(map[string]any)
	return child
}

func firstMap(candidates ...map[string]any) map[string]any {
	for _, candidate := range candidates {
		if candidate != nil {
			return candidate
		}
	}
	return nil
}

func stringField(parent map[string]any, key string) string {
	if parent == nil {
		return ""
	}
	value, _ := parent[key].(string)
	return strings.TrimSpace(value)
}

// stringList accepts only list-shaped input. Scalars inside the list are
// stringified; nested structures are dropped. Any non-list input yields an
// empty slice, never an error.
func stringList(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return []string{}
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				result = append(result, trimmed)
			}
		case float64, int, int64, bool, json.Number:
			result = append(result, fmt.Sprint(v))
		}
	}
	return result
}

func gridCells(value any) []GridCell {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	cells := make([]GridCell, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		cells = append(cells, GridCell{
			Label: stringField(entry, "label"),
			Value: stringField(entry, "value"),
			Color: stringField(entry, "color"),
			Emoji: stringField(entry, "emoji"),
		})
	}
	return cells
}
