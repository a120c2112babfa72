package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Dimension bounds accepted for custom output sizes.
const (
	MinDimension = 1
	MaxDimension = 5000
)

// OutputSize is one requested target resolution for a derived image.
type OutputSize struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Named presets. "main" matches the marketplace zoom requirement.
var sizePresets = map[string]OutputSize{
	"main":   {Name: "main", Width: 2000, Height: 2000},
	"search": {Name: "search", Width: 500, Height: 500},
	"thumb":  {Name: "thumb", Width: 300, Height: 300},
}

// DefaultOutputSizes is used when the request carries no size specs.
func DefaultOutputSizes() []OutputSize {
	return []OutputSize{sizePresets["main"]}
}

// ParseOutputSizes parses the serialized size list from the upload form.
// It accepts a JSON array of strings or a comma-separated list; each entry
// is either a preset name or an explicit "WIDTHxHEIGHT" pair.
func ParseOutputSizes(raw string) ([]OutputSize, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultOutputSizes(), nil
	}

	var specs []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &specs); err != nil {
			return nil, fmt.Errorf("invalid sizes list: %v", err)
		}
	} else {
		specs = strings.Split(raw, ",")
	}

	sizes := make([]OutputSize, 0, len(specs))
	for _, spec := range specs {
		size, err := parseSizeSpec(spec)
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, size)
	}

	if len(sizes) == 0 {
		return DefaultOutputSizes(), nil
	}
	return sizes, nil
}

func parseSizeSpec(spec string) (OutputSize, error) {
	spec = strings.TrimSpace(strings.ToLower(spec))
	if spec == "" {
		return OutputSize{}, fmt.Errorf("empty size spec")
	}

	if preset, ok := sizePresets[spec]; ok {
		return preset, nil
	}

	parts := strings.Split(spec, "x")
	if len(parts) != 2 {
		return OutputSize{}, fmt.Errorf("invalid size spec %q: expected preset name or WIDTHxHEIGHT", spec)
	}

	width, err := parseDimension(parts[0])
	if err != nil {
		return OutputSize{}, fmt.Errorf("invalid size spec %q: %v", spec, err)
	}
	height, err := parseDimension(parts[1])
	if err != nil {
		return OutputSize{}, fmt.Errorf("invalid size spec %q: %v", spec, err)
	}

	return OutputSize{Name: spec, Width: width, Height: height}, nil
}

func parseDimension(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("dimension must be a number")
	}
	if n < MinDimension || n > MaxDimension {
		return 0, fmt.Errorf("dimension %d out of range [%d,%d]", n, MinDimension, MaxDimension)
	}
	return n, nil
}
