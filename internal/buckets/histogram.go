// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package buckets

// outlierFactor caps the value axis at this multiple of the budget, since a
// handful of scores on most levels sit far above it.
const outlierFactor = 2

// HistogramBin is one equal-width value bin. F is the number of percentile
// bins that fall inside it, fractional where a bin straddles a boundary.
type HistogramBin struct {
	F          float64 `json:"f"`
	StartValue float64 `json:"startValue"`
	EndValue   float64 `json:"endValue"`
}

// Histogram regroups hole-free percentile bins into n equal-width value bins.
// Values are first clamped to outlierFactor times budget, or to that multiple
// of the last bin's start value when budget is not positive. The input is not
// modified.
func Histogram(buckets []Bucket, n int, budget int) []HistogramBin {
	if len(buckets) == 0 || n <= 0 {
		return nil
	}

	clamped := make([]Bucket, len(buckets))
	copy(clamped, buckets)
	limit := budget * outlierFactor
	if budget <= 0 {
		limit = clamped[len(clamped)-1].StartValue * outlierFactor
	}
	constrainToBudget(clamped, limit)

	lo := float64(clamped[0].StartValue)
	hi := float64(clamped[len(clamped)-1].EndValue)
	if hi <= lo {
		return []HistogramBin{{F: float64(len(clamped)), StartValue: lo, EndValue: hi}}
	}

	width := (hi - lo) / float64(n)
	bins := make([]HistogramBin, n)
	for i := range bins {
		bins[i].StartValue = lo + float64(i)*width
		bins[i].EndValue = lo + float64(i+1)*width
	}

	for _, b := range clamped {
		start, end := float64(b.StartValue), float64(b.EndValue)
		if end <= start {
			bins[binIndex(start, lo, width, n)].F++
			continue
		}
		for i := binIndex(start, lo, width, n); i < n && bins[i].StartValue < end; i++ {
			overlap := min(bins[i].EndValue, end) - max(bins[i].StartValue, start)
			if overlap > 0 {
				bins[i].F += overlap / (end - start)
			}
		}
	}
	return bins
}

func binIndex(v, lo, width float64, n int) int {
	i := int((v - lo) / width)
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// constrainToBudget walks from the worst bin down, pulling every endpoint
// at or above limit just under it so the bins stay strictly ordered.
func constrainToBudget(buckets []Bucket, limit int) {
	shift := limit
	for i := len(buckets) - 1; i >= 0; i-- {
		b := &buckets[i]
		if b.EndValue >= shift {
			b.EndValue = shift
			shift--
		}
		if b.StartValue >= shift {
			b.StartValue = shift
			shift--
		}
	}
}
