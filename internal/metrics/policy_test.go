package metrics

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}

	tests := []struct {
		name     string
		ids      []string
		expected string
		strict   bool
		want     bool
	}{
		{name: "strict top hit", ids: ids, expected: "a", strict: true, want: true},
		{name: "strict second rank", ids: ids, expected: "b", strict: true, want: false},
		{name: "top5 fifth rank", ids: ids, expected: "e", strict: false, want: true},
		{name: "top5 sixth rank", ids: ids, expected: "f", strict: false, want: false},
		{name: "empty ids", ids: nil, expected: "a", strict: false, want: false},
		{name: "unresolved never matches", ids: []string{"", ""}, expected: "", strict: true, want: false},
		{name: "unresolved top", ids: []string{"", "a"}, expected: "a", strict: true, want: false},
		{name: "unresolved top, top5", ids: []string{"", "a"}, expected: "a", strict: false, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.ids, tt.expected, tt.strict, 5))
		})
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 30.0, Percentage(3, 10))
	assert.Equal(t, 70.0, Percentage(7, 10))
	assert.Equal(t, 0.0, Percentage(0, 0))
	assert.Equal(t, 100.0, Percentage(4, 4))
}

func genID() gopter.Gen {
	ids := []string{"", "01440764", "01443537"}
	return gen.IntRange(0, len(ids)-1).Map(func(i int) string { return ids[i] })
}

// TestMatches_StrictImpliesTopFive verifies a strict match is always a top-5 match.
func TestMatches_StrictImpliesTopFive(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("strict match implies top-5 match", prop.ForAll(
		func(ids []string, expected string) bool {
			if Matches(ids, expected, true, 5) {
				return Matches(ids, expected, false, 5)
			}
			return true
		},
		gen.SliceOfN(5, genID()),
		genID(),
	))

	properties.Property("percentage stays within 0..100", prop.ForAll(
		func(total, matched int) bool {
			matched = matched % (total + 1)
			p := Percentage(matched, total)
			return p >= 0 && p <= 100
		},
		gen.IntRange(0, 10000),
		gen.IntRange(0, 10000),
	))

	properties.TestingRun(t)
}
