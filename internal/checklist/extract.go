package checklist

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// ErrNoChecklist is returned when the generated text contains no bracketed
// array literal.
var ErrNoChecklist = errors.New("no checklist array found in generated text")

// Greedy scan from the first '[' to the last ']', newlines included.
var arrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// ExtractChecklist scans free-text model output for a bracketed JSON array of
// task titles. The inference service is untrusted: anything that does not
// decode as an array of strings is an error, never a panic.
func ExtractChecklist(text string) ([]string, error) {
	match := arrayPattern.FindString(text)
	if match == "" {
		return nil, ErrNoChecklist
	}

	var items []string
	if err := json.Unmarshal([]byte(match), &items); err != nil {
		return nil, fmt.Errorf("checklist is not a JSON array of strings: %w", err)
	}

	return items, nil
}
