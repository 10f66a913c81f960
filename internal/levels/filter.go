// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package levels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/bridgeboard/internal/leaderboard"
)

// WorldFilters restricts aggregate queries to a set of worlds. The zero
// value matches every world.
type WorldFilters map[string]struct{}

// ParseWorldFilters parses a comma or space separated list of worlds, such
// as "CR, mm".
func ParseWorldFilters(s string) (WorldFilters, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	wf := make(WorldFilters, len(fields))
	for _, f := range fields {
		w := strings.ToUpper(f)
		if !IsWorld(w) {
			return nil, fmt.Errorf("unknown world %q", f)
		}
		wf[w] = struct{}{}
	}
	return wf, nil
}

// Matches reports whether a level passes the filter. Weekly challenges have
// no world and only pass an empty filter.
func (wf WorldFilters) Matches(l Level) bool {
	if len(wf) == 0 {
		return true
	}
	if l.Kind != KindCampaign {
		return false
	}
	_, ok := wf[l.Campaign.Code.World]
	return ok
}

// String lists the selected worlds in game order, or "all".
func (wf WorldFilters) String() string {
	if len(wf) == 0 {
		return "all"
	}
	var parts []string
	for _, w := range Worlds {
		if _, ok := wf[w]; ok {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, ",")
}

// FormatScore renders a board value for display. Stress values are hundredths
// of a percent, every other type is a cost in dollars.
func FormatScore(t leaderboard.Type, value int) string {
	if t == leaderboard.TypeStress {
		return strconv.FormatFloat(float64(value)/100, 'f', 2, 64) + "%"
	}
	return "$" + groupThousands(value)
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}
