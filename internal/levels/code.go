// Bridgeboard - Poly Bridge Leaderboard Mirror and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bridgeboard

package levels

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidCode is returned for level codes that do not name a known world
// and level number.
var ErrInvalidCode = errors.New("invalid level code")

// Worlds lists the campaign worlds in game order.
var Worlds = []string{"CR", "MM", "RB", "BB", "VT", "LL", "RMT", "SC", "DS", "TT", "AT", "FR"}

var codePattern = regexp.MustCompile(`^([A-Za-z]+)-?(\d+)$`)

// IsWorld reports whether w is a known world abbreviation (upper case).
func IsWorld(w string) bool {
	for _, known := range Worlds {
		if known == w {
			return true
		}
	}
	return false
}

// Code identifies a campaign level, e.g. CR-01.
type Code struct {
	World string
	Level int
}

// ParseCode parses "CR-01", "cr1" or "CR 01".
func ParseCode(s string) (Code, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	m := codePattern.FindStringSubmatch(compact)
	if m == nil {
		return Code{}, fmt.Errorf("%w: %q", ErrInvalidCode, s)
	}
	world := strings.ToUpper(m[1])
	if !IsWorld(world) {
		return Code{}, fmt.Errorf("%w: unknown world %q", ErrInvalidCode, m[1])
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n <= 0 {
		return Code{}, fmt.Errorf("%w: level number %q", ErrInvalidCode, m[2])
	}
	return Code{World: world, Level: n}, nil
}

// String renders the code as WORLD-NN.
func (c Code) String() string {
	return fmt.Sprintf("%s-%02d", c.World, c.Level)
}

// IsSecret reports whether the level belongs to the hidden world.
func (c Code) IsSecret() bool {
	return c.World == "FR"
}

// MarshalText implements encoding.TextMarshaler.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so manifests with bad
// codes are rejected while decoding.
func (c *Code) UnmarshalText(b []byte) error {
	parsed, err := ParseCode(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
