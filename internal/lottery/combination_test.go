package lottery

import (
	"testing"
)

func TestCombinationsComplex(t *testing.T) {
	// C(7,5)*C(3,2) = 21*3 = 63
	sel := &Selection{
		Type:  BetComplex,
		Front: NewNumberSet(1, 2, 3, 4, 5, 6, 7),
		Back:  NewNumberSet(1, 2, 3),
	}
	if err := sel.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := sel.Combinations(); got != 63 {
		t.Fatalf("complex count = %d, want 63", got)
	}
}

func TestCombinationsSystem(t *testing.T) {
	// 前区胆2拖5，后区无胆拖3：C(5,3)*C(3,2) = 10*3 = 30
	sel := &Selection{
		Type:        BetSystem,
		FrontAnchor: NewNumberSet(1, 2),
		FrontFollow: NewNumberSet(3, 4, 5, 6, 7),
		BackFollow:  NewNumberSet(1, 2, 3),
	}
	if err := sel.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := sel.Combinations(); got != 30 {
		t.Fatalf("system count = %d, want 30", got)
	}
}

func TestCombinationsSingle(t *testing.T) {
	sel := &Selection{
		Type:  BetSingle,
		Front: NewNumberSet(5, 4, 3, 2, 1),
		Back:  NewNumberSet(2, 1),
	}
	if err := sel.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := sel.Combinations(); got != 1 {
		t.Fatalf("single count = %d, want 1", got)
	}
}

// 迭代器产出的注数必须与 Combinations() 一致，且每注都满足单式约束
func TestIteratorMatchesCount(t *testing.T) {
	cases := []*Selection{
		{Type: BetSingle, Front: NewNumberSet(1, 2, 3, 4, 5), Back: NewNumberSet(1, 2)},
		{Type: BetComplex, Front: NewNumberSet(1, 2, 3, 4, 5, 6, 7), Back: NewNumberSet(1, 2, 3)},
		{Type: BetComplex, Front: NewNumberSet(10, 12, 14, 16, 18, 20, 22, 24), Back: NewNumberSet(3, 6, 9, 12)},
		{
			Type:        BetSystem,
			FrontAnchor: NewNumberSet(1, 2),
			FrontFollow: NewNumberSet(3, 4, 5, 6, 7),
			BackFollow:  NewNumberSet(1, 2, 3),
		},
		{
			Type:        BetSystem,
			FrontAnchor: NewNumberSet(33),
			FrontFollow: NewNumberSet(1, 5, 9, 13, 17, 21),
			BackAnchor:  NewNumberSet(12),
			BackFollow:  NewNumberSet(1, 2, 3, 4),
		},
	}
	for ci, sel := range cases {
		if err := sel.Validate(); err != nil {
			t.Fatalf("case %d validate: %v", ci, err)
		}
		want := sel.Combinations()
		it := sel.Iterator()
		var n uint64
		seen := map[string]bool{}
		for {
			f, b, ok := it.Next()
			if !ok {
				break
			}
			if err := FrontZone.ValidatePick(f); err != nil {
				t.Fatalf("case %d combo front invalid: %v", ci, err)
			}
			if err := BackZone.ValidatePick(b); err != nil {
				t.Fatalf("case %d combo back invalid: %v", ci, err)
			}
			key := keyOf(f, b)
			if seen[key] {
				t.Fatalf("case %d duplicate combo %s", ci, key)
			}
			seen[key] = true
			n++
		}
		if n != want {
			t.Fatalf("case %d enumerated %d combos, count() = %d", ci, n, want)
		}
	}
}

// Reset 后必须能完整重放
func TestIteratorReset(t *testing.T) {
	sel := &Selection{
		Type:  BetComplex,
		Front: NewNumberSet(1, 2, 3, 4, 5, 6),
		Back:  NewNumberSet(1, 2, 3),
	}
	it := sel.Iterator()
	first := collectKeys(it)
	it.Reset()
	second := collectKeys(it)
	if len(first) != len(second) {
		t.Fatalf("replay length %d != %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("replay diverges at %d: %s vs %s", i, first[i], second[i])
		}
	}
}

// 胆码必须出现在每一注中
func TestIteratorAnchorForced(t *testing.T) {
	sel := &Selection{
		Type:        BetSystem,
		FrontAnchor: NewNumberSet(7, 8),
		FrontFollow: NewNumberSet(1, 2, 3, 4),
		BackAnchor:  NewNumberSet(5),
		BackFollow:  NewNumberSet(1, 2),
	}
	if err := sel.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	it := sel.Iterator()
	for {
		f, b, ok := it.Next()
		if !ok {
			break
		}
		if !f.Contains(7) || !f.Contains(8) {
			t.Fatalf("front anchor missing in combo %v", f)
		}
		if !b.Contains(5) {
			t.Fatalf("back anchor missing in combo %v", b)
		}
	}
}

func TestBinomialEdge(t *testing.T) {
	if binomial(35, 5) != 324632 {
		t.Fatalf("C(35,5) = %d, want 324632", binomial(35, 5))
	}
	if binomial(4, 5) != 0 {
		t.Fatalf("C(4,5) should be 0")
	}
	if binomial(5, 0) != 1 {
		t.Fatalf("C(5,0) should be 1")
	}
}

func keyOf(f, b NumberSet) string {
	key := ""
	for _, n := range f {
		key += string(rune('A' + n))
	}
	key += "|"
	for _, n := range b {
		key += string(rune('A' + n))
	}
	return key
}

func collectKeys(it *ComboIterator) []string {
	var out []string
	for {
		f, b, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, keyOf(f, b))
	}
}
