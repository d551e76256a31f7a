package tuning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildResolver(t *testing.T, defs map[string]string) *Resolver {
	t.Helper()
	r := NewResolver()
	for name, expr := range defs {
		require.NoError(t, r.DefineExpr(name, expr))
	}
	return r
}

func TestResolver_Resolve(t *testing.T) {
	r := buildResolver(t, map[string]string{
		"a3":    "220",
		"fifth": "3/2 a3",
		"sixth": "5/3 a3",
		"high":  "2/1 fifth",
	})
	require.NoError(t, r.Resolve())

	want := map[string]float64{
		"a3":    220,
		"fifth": 330,
		"sixth": 220 * 5.0 / 3.0,
		"high":  660,
	}
	assert.Equal(t, want, r.Frequencies())
}

func TestResolver_Resolve_OrderIndependent(t *testing.T) {
	// Same definitions inserted in different orders resolve identically.
	orders := [][]string{
		{"a3", "fifth", "high"},
		{"high", "fifth", "a3"},
		{"fifth", "high", "a3"},
	}
	exprs := map[string]string{
		"a3":    "220",
		"fifth": "3/2 a3",
		"high":  "2/1 fifth",
	}

	var first map[string]float64
	for _, order := range orders {
		r := NewResolver()
		for _, name := range order {
			require.NoError(t, r.DefineExpr(name, exprs[name]))
		}
		require.NoError(t, r.Resolve())
		if first == nil {
			first = r.Frequencies()
			continue
		}
		assert.Equal(t, first, r.Frequencies())
	}
}

func TestResolver_Resolve_Cycle(t *testing.T) {
	r := buildResolver(t, map[string]string{
		"a": "3/2 c",
		"b": "3/2 a",
		"c": "3/2 b",
	})

	err := r.Resolve()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCyclicDependency)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.NotEmpty(t, cycleErr.Path)
}

func TestResolver_Resolve_SelfReference(t *testing.T) {
	r := buildResolver(t, map[string]string{"a": "2/1 a"})
	assert.ErrorIs(t, r.Resolve(), ErrCyclicDependency)
}

func TestResolver_Resolve_UnresolvedReference(t *testing.T) {
	r := buildResolver(t, map[string]string{
		"a3":    "220",
		"fifth": "3/2 nonexistent",
	})

	err := r.Resolve()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvedReference)

	var refErr *UnresolvedReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "fifth", refErr.Variable)
	assert.Equal(t, "nonexistent", refErr.Ref)
}

func TestResolver_Resolve_InvalidRatio(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{"zero denominator", Definition{Ratio: Ratio{1, 0}, Base: "a3"}},
		{"zero numerator", Definition{Ratio: Ratio{0, 2}, Base: "a3"}},
		{"zero literal", Definition{Literal: 0}},
		{"negative literal", Definition{Literal: -440}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver()
			require.NoError(t, r.Define("a3", Definition{Literal: 220}))
			require.NoError(t, r.Define("bad", tt.def))
			assert.ErrorIs(t, r.Resolve(), ErrInvalidRatio)
		})
	}
}

func TestResolver_SetLiteral_Incremental(t *testing.T) {
	r := buildResolver(t, map[string]string{
		"a3":        "220",
		"fifth":     "3/2 a3",
		"high":      "2/1 fifth",
		"unrelated": "100",
	})
	require.NoError(t, r.Resolve())

	changes, err := r.SetLiteral("a3", 440)
	require.NoError(t, err)

	// Only a3 and its dependents recompute, in dependency order
	require.Len(t, changes, 3)
	assert.Equal(t, Change{Name: "a3", Frequency: 440}, changes[0])
	assert.Equal(t, Change{Name: "fifth", Frequency: 660}, changes[1])
	assert.Equal(t, Change{Name: "high", Frequency: 1320}, changes[2])

	hz, ok := r.Frequency("unrelated")
	require.True(t, ok)
	assert.Equal(t, 100.0, hz)
}

func TestResolver_SetLiteral_Errors(t *testing.T) {
	r := buildResolver(t, map[string]string{
		"a3":    "220",
		"fifth": "3/2 a3",
	})
	require.NoError(t, r.Resolve())

	_, err := r.SetLiteral("missing", 440)
	assert.ErrorIs(t, err, ErrUnresolvedReference)

	_, err = r.SetLiteral("fifth", 440)
	assert.Error(t, err, "ratio variables cannot be set directly")

	_, err = r.SetLiteral("a3", -1)
	assert.ErrorIs(t, err, ErrInvalidRatio)
}

func TestResolver_SetRatio_Reshape(t *testing.T) {
	r := buildResolver(t, map[string]string{
		"a3":    "220",
		"c4":    "260",
		"fifth": "3/2 a3",
	})
	require.NoError(t, r.Resolve())

	changes, err := r.SetRatio("fifth", Ratio{3, 2}, "c4")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, Change{Name: "fifth", Frequency: 390}, changes[0])
}

func TestResolver_SetRatio_CycleKeepsPreviousState(t *testing.T) {
	r := buildResolver(t, map[string]string{
		"a3":    "220",
		"fifth": "3/2 a3",
		"high":  "2/1 fifth",
	})
	require.NoError(t, r.Resolve())

	// Redefining a3 in terms of high would create a cycle
	_, err := r.SetRatio("a3", Ratio{1, 2}, "high")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCyclicDependency)

	// Previous state survives
	hz, ok := r.Frequency("a3")
	require.True(t, ok)
	assert.Equal(t, 220.0, hz)
	hz, _ = r.Frequency("high")
	assert.Equal(t, 660.0, hz)
}
