package bins

import "ignitionAdapters/internal/tickmath"

// SelectedBins is the window of CaviarNine bins chosen around an active bin.
// LowerBins run downwards from the active bin, HigherBins upwards, nearest first.
type SelectedBins struct {
	ActiveBin  uint32   `json:"active_bin"`
	LowerBins  []uint32 `json:"lower_bins"`
	HigherBins []uint32 `json:"higher_bins"`
}

// Bounds is an inclusive range of valid bin indices.
type Bounds struct {
	Min int64
	Max int64
}

// CaviarNineBounds is the tick grid of CaviarNine pools.
var CaviarNineBounds = Bounds{Min: 0, Max: int64(tickmath.MaxTick)}

// Contains reports whether bin lies inside b.
func (b Bounds) Contains(bin int64) bool {
	return bin >= b.Min && bin <= b.Max
}

// Window is the bound-agnostic form of SelectedBins.
type Window struct {
	Active  int64   `json:"active"`
	BinSpan uint32  `json:"bin_span"`
	Lower   []int64 `json:"lower"`
	Higher  []int64 `json:"higher"`
}

// Len is the number of selected bins, not counting the active one.
func (w Window) Len() int {
	return len(w.Lower) + len(w.Higher)
}

// Select picks up to desiredBinCount bins, binSpan apart, around activeBin on
// the CaviarNine grid. See SelectWithin.
func Select(activeBin, binSpan, desiredBinCount uint32) SelectedBins {
	window := SelectWithin(CaviarNineBounds, int64(activeBin), binSpan, desiredBinCount)

	selected := SelectedBins{
		ActiveBin:  activeBin,
		LowerBins:  make([]uint32, 0, len(window.Lower)),
		HigherBins: make([]uint32, 0, len(window.Higher)),
	}
	for _, bin := range window.Lower {
		selected.LowerBins = append(selected.LowerBins, uint32(bin))
	}
	for _, bin := range window.Higher {
		selected.HigherBins = append(selected.HigherBins, uint32(bin))
	}
	return selected
}

// Window converts s into its bound-agnostic form.
func (s SelectedBins) Window(binSpan uint32) Window {
	window := Window{
		Active:  int64(s.ActiveBin),
		BinSpan: binSpan,
		Lower:   make([]int64, 0, len(s.LowerBins)),
		Higher:  make([]int64, 0, len(s.HigherBins)),
	}
	for _, bin := range s.LowerBins {
		window.Lower = append(window.Lower, int64(bin))
	}
	for _, bin := range s.HigherBins {
		window.Higher = append(window.Higher, int64(bin))
	}
	return window
}

// SelectWithin picks up to desiredBinCount bins spaced binSpan apart around
// active, keeping only bins inside bounds.
//
// The two sides take turns, higher first, so an even count splits evenly and
// an odd count gives the extra bin to the higher side. Once a side steps out
// of bounds it is exhausted and the rest of the budget goes to the other side.
// Fewer bins than requested, or none at all, is a valid result.
func SelectWithin(bounds Bounds, active int64, binSpan, desiredBinCount uint32) Window {
	window := Window{
		Active:  active,
		BinSpan: binSpan,
		Lower:   make([]int64, 0, sideCapacity(active-bounds.Min, binSpan, desiredBinCount)),
		Higher:  make([]int64, 0, sideCapacity(bounds.Max-active, binSpan, desiredBinCount)),
	}
	if binSpan == 0 || desiredBinCount == 0 {
		return window
	}

	span := int64(binSpan)
	remaining := desiredBinCount
	lowerCursor, higherCursor := active, active
	lowerExhausted, higherExhausted := false, false

	for remaining > 0 && !(lowerExhausted && higherExhausted) {
		if !higherExhausted {
			next := higherCursor + span
			if bounds.Contains(next) {
				window.Higher = append(window.Higher, next)
				higherCursor = next
				remaining--
			} else {
				higherExhausted = true
			}
		}
		if remaining == 0 {
			break
		}
		if !lowerExhausted {
			next := lowerCursor - span
			if bounds.Contains(next) {
				window.Lower = append(window.Lower, next)
				lowerCursor = next
				remaining--
			} else {
				lowerExhausted = true
			}
		}
	}
	return window
}

// sideCapacity bounds the allocation for one side by both the distance to
// the edge and the requested count.
func sideCapacity(distance int64, binSpan, desiredBinCount uint32) int {
	if binSpan == 0 || distance <= 0 {
		return 0
	}
	fit := distance / int64(binSpan)
	if want := int64(desiredBinCount); want < fit {
		fit = want
	}
	return int(fit)
}
