// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

/*
Package buckets decodes the campaign percentile table and answers
percentile and rank estimates for scores outside the mirrored top 1000.

Each level has up to MaxBuckets bins per board type, ordered from the best
scores to the worst. Bins that the game server never filled are holes
(StartRank == -1) and must be reconstructed with ImplyMissingBuckets before
any query.
*/
package buckets

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/tomtom215/bridgeboard/internal/leaderboard"
)

// MaxBuckets is the number of percentile bins per board type.
const MaxBuckets = 100

// HoleRank marks a bin without data.
const HoleRank = -1

// Bucket maps a rank range to a value range.
type Bucket struct {
	StartRank  int `json:"startRank"`
	EndRank    int `json:"endRank"`
	StartValue int `json:"startValue"`
	EndValue   int `json:"endValue"`
}

// IsHole reports whether the bin carries no data.
func (b Bucket) IsHole() bool {
	return b.StartRank == HoleRank
}

func hole() Bucket {
	return Bucket{StartRank: HoleRank, EndRank: HoleRank, StartValue: HoleRank, EndValue: HoleRank}
}

// LevelBuckets holds the raw bins for each board type of one level.
type LevelBuckets map[leaderboard.Type][]Bucket

// Table is the decoded percentile table keyed by campaign level ID.
type Table map[string]LevelBuckets

// Buckets returns the hole-free bins for a level and type.
func (t Table) Buckets(levelID string, typ leaderboard.Type) ([]Bucket, bool) {
	lb, ok := t[levelID]
	if !ok {
		return nil, false
	}
	filled := ImplyMissingBuckets(lb[typ])
	return filled, filled != nil
}

// wireRecord follows the level ID in each record.
type wireRecord struct {
	Index  int32
	Groups [3][4]int32
}

// Decode parses the binary table. Records repeat until EOF, each holding a
// uint16 ID length, the UTF-8 level ID, a 1-based int32 bin index and four
// int32 fields (start rank, end rank, start value, end value) for each board
// type in leaderboard.Types order. All integers are little-endian.
//
// Bins whose index never appears are holes. Records with an index outside
// 1..MaxBuckets are ignored. A truncated record fails the whole decode.
func Decode(data []byte) (Table, error) {
	r := bytes.NewReader(data)
	type partial struct {
		bins [3][]Bucket
		used int
	}
	levels := make(map[string]*partial)
	var order []string

	for n := 0; ; n++ {
		var idLen uint16
		if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("record %d: read id length: %w", n, err)
		}
		id := make([]byte, idLen)
		if _, err := io.ReadFull(r, id); err != nil {
			return nil, fmt.Errorf("record %d: read id: %w", n, err)
		}
		var rec wireRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("record %d (%s): read bins: %w", n, id, err)
		}
		if rec.Index < 1 || rec.Index > MaxBuckets {
			continue
		}

		p, ok := levels[string(id)]
		if !ok {
			p = &partial{}
			for i := range p.bins {
				p.bins[i] = make([]Bucket, MaxBuckets)
				for j := range p.bins[i] {
					p.bins[i][j] = hole()
				}
			}
			levels[string(id)] = p
			order = append(order, string(id))
		}
		idx := int(rec.Index) - 1
		for t, g := range rec.Groups {
			p.bins[t][idx] = Bucket{
				StartRank:  int(g[0]),
				EndRank:    int(g[1]),
				StartValue: int(g[2]),
				EndValue:   int(g[3]),
			}
		}
		if idx+1 > p.used {
			p.used = idx + 1
		}
	}

	table := make(Table, len(levels))
	for _, id := range order {
		p := levels[id]
		lb := make(LevelBuckets, len(leaderboard.Types))
		for t, typ := range leaderboard.Types {
			lb[typ] = p.bins[t][:p.used]
		}
		table[id] = lb
	}
	return table, nil
}

// ImplyMissingBuckets returns a copy of buckets with every hole filled.
//
// A run of holes between two valid bins is split evenly across the gap from
// the previous bin's end to the next bin's start, rounding each synthesized
// endpoint to the nearest integer. Holes after the last valid bin repeat its
// end values; holes before the first valid bin repeat its start values.
// A table with no valid bin yields nil.
func ImplyMissingBuckets(buckets []Bucket) []Bucket {
	out := make([]Bucket, len(buckets))
	copy(out, buckets)

	first := -1
	for i, b := range out {
		if !b.IsHole() {
			first = i
			break
		}
	}
	if first < 0 {
		return nil
	}

	for i := 0; i < first; i++ {
		next := out[first]
		out[i] = Bucket{next.StartRank, next.StartRank, next.StartValue, next.StartValue}
	}

	prev := first
	for i := first + 1; i < len(out); {
		if !out[i].IsHole() {
			prev = i
			i++
			continue
		}
		end := i
		for end < len(out) && out[end].IsHole() {
			end++
		}
		p := out[prev]
		if end == len(out) {
			for k := i; k < end; k++ {
				out[k] = Bucket{p.EndRank, p.EndRank, p.EndValue, p.EndValue}
			}
			break
		}
		next := out[end]
		run := end - i
		for k := 0; k < run; k++ {
			f0 := float64(k) / float64(run)
			f1 := float64(k+1) / float64(run)
			out[i+k] = Bucket{
				StartRank:  lerp(p.EndRank, next.StartRank, f0),
				EndRank:    lerp(p.EndRank, next.StartRank, f1),
				StartValue: lerp(p.EndValue, next.StartValue, f0),
				EndValue:   lerp(p.EndValue, next.StartValue, f1),
			}
		}
		i = end
	}
	return out
}

func lerp(a, b int, f float64) int {
	return int(math.Round(float64(a) + (float64(b)-float64(a))*f))
}

// Percentile returns the top-N percent a score falls in, from 1 (best) to
// 100: the 1-based index of the first bin whose start value is at least
// score. Scores worse than every bin get 100.
func Percentile(score int, buckets []Bucket) int {
	for i, b := range buckets {
		if b.StartValue >= score {
			return max(i+1, 1)
		}
	}
	return 100
}

// InterpolatedRank estimates the rank of score by linear interpolation
// inside the bin whose value range contains it. Scores outside every bin
// return rank 1.
func InterpolatedRank(score int, buckets []Bucket) int {
	for _, b := range buckets {
		if score < b.StartValue || score > b.EndValue {
			continue
		}
		if b.EndValue == b.StartValue {
			return b.StartRank
		}
		f := float64(score-b.StartValue) / float64(b.EndValue-b.StartValue)
		return lerp(b.StartRank, b.EndRank, f)
	}
	return 1
}

// Estimate bundles both lookups for a score.
type Estimate struct {
	Percentile       int `json:"percentile"`
	InterpolatedRank int `json:"interpolatedRank"`
}

// EstimateScore runs Percentile and InterpolatedRank over hole-free bins.
func EstimateScore(score int, buckets []Bucket) Estimate {
	return Estimate{
		Percentile:       Percentile(score, buckets),
		InterpolatedRank: InterpolatedRank(score, buckets),
	}
}
