package tuning

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Expression patterns
var (
	// 220, 253.4622
	literalPattern = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	// 3/2 a4, 3:2 of a4, 5/3 * root
	ratioPattern = regexp.MustCompile(`^(\d+)\s*[/:]\s*(\d+)\s*(?:\*\s*|of\s+)?([A-Za-z_][\w.-]*)$`)
	// Variable names referenced by expressions and used as oscillator sources
	namePattern = regexp.MustCompile(`^[A-Za-z_][\w.-]*$`)
)

// ValidName reports whether s is usable as a variable or oscillator name.
func ValidName(s string) bool {
	return namePattern.MatchString(s)
}

// ParseDefinition parses a variable expression. Accepted forms:
//
//	220          literal frequency in Hz
//	3/2 a4       ratio of another variable
//	3:2 of a4    same, colon and "of" are cosmetic
//	5/3 * root   same, explicit multiply
func ParseDefinition(expr string) (Definition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Definition{}, fmt.Errorf("empty expression")
	}

	if literalPattern.MatchString(expr) {
		hz, err := strconv.ParseFloat(expr, 64)
		if err != nil {
			return Definition{}, fmt.Errorf("invalid literal %q: %w", expr, err)
		}
		return Definition{Literal: hz}, nil
	}

	if matches := ratioPattern.FindStringSubmatch(expr); len(matches) == 4 {
		num, err := strconv.ParseUint(matches[1], 10, 32)
		if err != nil {
			return Definition{}, fmt.Errorf("invalid numerator %q: %w", matches[1], err)
		}
		den, err := strconv.ParseUint(matches[2], 10, 32)
		if err != nil {
			return Definition{}, fmt.Errorf("invalid denominator %q: %w", matches[2], err)
		}
		return Definition{
			Ratio: Ratio{Numerator: uint32(num), Denominator: uint32(den)},
			Base:  matches[3],
		}, nil
	}

	return Definition{}, fmt.Errorf("cannot parse expression %q (expected a frequency like 220 or a ratio like 3/2 a4)", expr)
}
