package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ignitionAdapters/internal/decimal"
)

const maxPathSegment = 128

// DefaultBinCount is used when a window request omits count.
const DefaultBinCount = 10

// Validator parses and bounds request input.
type Validator struct {
	maxBinCount uint32
}

func NewValidator(maxBinCount uint32) *Validator {
	return &Validator{maxBinCount: maxBinCount}
}

// Tick parses a tick query value.
func (v *Validator) Tick(raw string) (uint32, error) {
	return parseUint32("tick", raw)
}

// Spot parses a spot price query value.
func (v *Validator) Spot(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, errors.New("spot parameter is required")
	}
	spot, err := decimal.Parse(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid spot: %w", err)
	}
	return spot, nil
}

// BinQuery parses the active bin, span and count of a selection request.
func (v *Validator) BinQuery(active, span, count string) (uint32, uint32, uint32, error) {
	activeBin, err := parseUint32("active", active)
	if err != nil {
		return 0, 0, 0, err
	}
	binSpan, err := parseUint32("span", span)
	if err != nil {
		return 0, 0, 0, err
	}
	binCount, err := v.Count(count)
	if err != nil {
		return 0, 0, 0, err
	}
	return activeBin, binSpan, binCount, nil
}

// Count parses a desired bin count, defaulting to DefaultBinCount.
func (v *Validator) Count(raw string) (uint32, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultBinCount, nil
	}
	count, err := parseUint32("count", raw)
	if err != nil {
		return 0, err
	}
	if count > v.maxBinCount {
		return 0, fmt.Errorf("count must be <= %d", v.maxBinCount)
	}
	return count, nil
}

// PathSegment checks a blueprint or pool path parameter.
func (v *Validator) PathSegment(name, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	if len(raw) > maxPathSegment {
		return "", fmt.Errorf("%s is too long", name)
	}
	for _, r := range raw {
		if r < 0x20 || r == 0x7f {
			return "", fmt.Errorf("%s contains control characters", name)
		}
	}
	return raw, nil
}

func parseUint32(name, raw string) (uint32, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s parameter is required", name)
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be an unsigned 32-bit integer", name)
	}
	return uint32(value), nil
}
