// Package tuning provides the frequency variable model for just intonation.
// Variables hold either a literal frequency in Hz or a whole-number ratio
// relative to another variable; the resolver turns the variable graph into
// concrete frequencies.
package tuning

import "fmt"

// Ratio is a whole-number frequency ratio, e.g. 3/2 for a just perfect fifth.
type Ratio struct {
	Numerator   uint32
	Denominator uint32
}

// Multiplicand returns the factor a base frequency is scaled by.
func (r Ratio) Multiplicand() float64 {
	return float64(r.Numerator) / float64(r.Denominator)
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d/%d", r.Numerator, r.Denominator)
}

// Definition defines a variable's value: a literal frequency when Base is
// empty, otherwise Ratio applied to the variable named Base.
type Definition struct {
	Literal float64
	Ratio   Ratio
	Base    string
}

// IsLiteral reports whether the definition is a literal frequency.
func (d Definition) IsLiteral() bool {
	return d.Base == ""
}

// String renders the definition in the project-file expression syntax.
func (d Definition) String() string {
	if d.IsLiteral() {
		return trimFloat(d.Literal)
	}
	return fmt.Sprintf("%s %s", d.Ratio, d.Base)
}

// Variable is a named frequency-defining quantity.
type Variable struct {
	Name string
	Def  Definition
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.6f", f)
	// Strip trailing zeros, keep at least one decimal digit trimmed away
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
