// Package utils holds small parsing helpers shared by the LLM extraction and
// report paths.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON attempts to fix common JSON errors from LLM outputs: missing
// quotes around keys, single quotes, unclosed brackets, trailing commas,
// comments, and wrapping markdown code fences.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// ParseLenientJSON parses model output into schema, trying strict JSON
// first, then repair, then Hjson (which tolerates unquoted keys and
// comments).
func ParseLenientJSON(raw string, schema interface{}) error {
	if err := json.Unmarshal([]byte(raw), schema); err == nil {
		return nil
	}
	if repaired, err := RepairJSON(raw); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}
	if err := hjson.Unmarshal([]byte(raw), schema); err != nil {
		return fmt.Errorf("unparseable model output: %w", err)
	}
	return nil
}
