package lottery

import (
	"errors"
	"testing"
)

func TestParseSelectionSingle(t *testing.T) {
	raw := []byte(`{"bet_type":1,"front":[35,1,12,23,7],"back":[12,3]}`)
	sel, err := ParseSelection(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sel.Type != BetSingle {
		t.Fatalf("type = %d", sel.Type)
	}
	// 解析后必须重建升序
	for i := 1; i < len(sel.Front); i++ {
		if sel.Front[i-1] >= sel.Front[i] {
			t.Fatalf("front not sorted: %v", sel.Front)
		}
	}
}

func TestParseSelectionRejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"front too few", `{"bet_type":1,"front":[1,2,3,4],"back":[1,2]}`},
		{"front out of range", `{"bet_type":1,"front":[1,2,3,4,36],"back":[1,2]}`},
		{"front duplicate", `{"bet_type":1,"front":[1,2,3,4,4],"back":[1,2]}`},
		{"back out of range", `{"bet_type":1,"front":[1,2,3,4,5],"back":[1,13]}`},
		{"unknown type", `{"bet_type":9,"front":[1,2,3,4,5],"back":[1,2]}`},
		{"complex front below pick", `{"bet_type":2,"front":[1,2,3,4],"back":[1,2,3]}`},
		{"system anchor full", `{"bet_type":3,"front_anchor":[1,2,3,4,5],"front_follow":[6,7],"back_follow":[1,2]}`},
		{"system back anchor full", `{"bet_type":3,"front_anchor":[1],"front_follow":[2,3,4,5],"back_anchor":[1,2],"back_follow":[3]}`},
		{"system anchor follow overlap", `{"bet_type":3,"front_anchor":[1,2],"front_follow":[2,3,4],"back_follow":[1,2]}`},
		{"system follow short", `{"bet_type":3,"front_anchor":[1,2],"front_follow":[3,4],"back_follow":[1,2]}`},
		{"not json", `{{`},
	}
	for _, c := range cases {
		if _, err := ParseSelection([]byte(c.raw)); !errors.Is(err, ErrInvalidSelection) {
			t.Fatalf("%s: err = %v, want ErrInvalidSelection", c.name, err)
		}
	}
}

func TestSelectionRoundTrip(t *testing.T) {
	sel := &Selection{
		Type:        BetSystem,
		FrontAnchor: NewNumberSet(3, 9),
		FrontFollow: NewNumberSet(12, 18, 24, 30),
		BackFollow:  NewNumberSet(1, 6, 11),
	}
	if err := sel.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	b, err := sel.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := ParseSelection(b)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if got.Combinations() != sel.Combinations() {
		t.Fatalf("round trip changed count: %d vs %d", got.Combinations(), sel.Combinations())
	}
}

func TestBetTypeString(t *testing.T) {
	for _, c := range []struct {
		bt   BetType
		want string
	}{{BetSingle, "single"}, {BetComplex, "complex"}, {BetSystem, "system"}} {
		if c.bt.String() != c.want {
			t.Fatalf("%d.String() = %s", c.bt, c.bt.String())
		}
		back, err := ParseBetType(c.want)
		if err != nil || back != c.bt {
			t.Fatalf("ParseBetType(%s) = %d, %v", c.want, back, err)
		}
	}
	if _, err := ParseBetType("parlay"); err == nil {
		t.Fatalf("ParseBetType should reject unknown type")
	}
}
