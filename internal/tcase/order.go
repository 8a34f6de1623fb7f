package tcase

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/jbachurski/taucheck/internal"
	"github.com/jbachurski/taucheck/internal/choice"
)

// Ordering names, resolvable by unambiguous prefix.
const (
	OrderLexicographical = "lexicographical"
	OrderNatural         = "natural"
	OrderRandom          = "random"
	OrderFilesize        = "filesize"
)

// Orderings lists every ordering policy, for prefix resolution and
// help text.
var Orderings = []string{OrderLexicographical, OrderNatural, OrderRandom, OrderFilesize}

// An OrderFunc permutes cases in place. Every policy yields a
// permutation: nothing is dropped or duplicated.
type OrderFunc func(cases []internal.TestCase)

// OrderingByName resolves name (or an unambiguous prefix of it) to
// the policy it denotes. Resolution happens once, at configuration
// time; the returned function contains no name dispatch.
func OrderingByName(name string) (OrderFunc, error) {
	resolved, err := choice.Resolve(name, Orderings)
	if err != nil {
		return nil, err
	}
	switch resolved {
	case OrderLexicographical:
		return orderLexicographical, nil
	case OrderNatural:
		return orderNatural, nil
	case OrderRandom:
		return orderRandom, nil
	default:
		return orderFilesize, nil
	}
}

func orderLexicographical(cases []internal.TestCase) {
	slices.SortFunc(cases, func(a, b internal.TestCase) int {
		return strings.Compare(a.Base, b.Base)
	})
}

func orderNatural(cases []internal.TestCase) {
	slices.SortFunc(cases, func(a, b internal.TestCase) int {
		return NaturalCompare(a.Base, b.Base)
	})
}

// orderRandom shuffles uniformly. The generator is the process-wide
// one, so a single invocation is internally consistent but two
// invocations disagree.
func orderRandom(cases []internal.TestCase) {
	rand.Shuffle(len(cases), func(i, j int) {
		cases[i], cases[j] = cases[j], cases[i]
	})
}

func orderFilesize(cases []internal.TestCase) {
	slices.SortFunc(cases, func(a, b internal.TestCase) int {
		if a.InputSize != b.InputSize {
			if a.InputSize < b.InputSize {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Base, b.Base)
	})
}

// NaturalCompare orders names digit-run-aware, so case2 precedes
// case10. Names split into alternating literal and digit runs; digit
// runs compare by numeric value, literal runs byte-wise. Numerically
// equal but textually distinct names (t01 vs t1) fall back to plain
// string order to keep the result total.
func NaturalCompare(a, b string) int {
	ra, rb := splitRuns(a), splitRuns(b)
	for i := 0; i < len(ra) && i < len(rb); i++ {
		var c int
		if i%2 == 1 {
			c = compareNumeric(ra[i], rb[i])
		} else {
			c = strings.Compare(ra[i], rb[i])
		}
		if c != 0 {
			return c
		}
	}
	if c := len(ra) - len(rb); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// splitRuns cuts s into alternating literal/digit runs. The run at an
// even index is always a literal, possibly empty for names that start
// with a digit.
func splitRuns(s string) []string {
	runs := []string{}
	digits := false
	start := 0
	for i := 0; i < len(s); i++ {
		d := s[i] >= '0' && s[i] <= '9'
		if i == 0 {
			if d {
				runs = append(runs, "")
			}
			digits = d
			continue
		}
		if d != digits {
			runs = append(runs, s[start:i])
			start = i
			digits = d
		}
	}
	if len(s) > 0 {
		runs = append(runs, s[start:])
	}
	return runs
}

// compareNumeric compares two digit runs by value, without a size
// limit: leading zeros are stripped, then longer means larger.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}
