package helper

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidateBet(t *testing.T) {
	valid := func() BetParsed {
		return BetParsed{
			Selection:      json.RawMessage(`{"bet_type":1,"front":[1,2,3,4,5],"back":[6,7]}`),
			PlatformUserID: "u1001",
			IdempotencyKey: "k-1",
		}
	}

	in := valid()
	if ok, msg := ValidateBet(&in); !ok {
		t.Fatalf("valid bet rejected: %s", msg)
	}
	if in.Multiplier != 1 {
		t.Errorf("zero multiplier should default to 1, got %d", in.Multiplier)
	}
	if in.Platform != 1 {
		t.Errorf("zero platform should default to 1, got %d", in.Platform)
	}

	in = valid()
	in.Selection = nil
	if ok, _ := ValidateBet(&in); ok {
		t.Error("empty selection accepted")
	}

	in = valid()
	in.PlatformUserID = ""
	if ok, _ := ValidateBet(&in); ok {
		t.Error("empty platform_user_id accepted")
	}

	in = valid()
	in.IdempotencyKey = ""
	if ok, _ := ValidateBet(&in); ok {
		t.Error("empty idempotency_key accepted")
	}

	in = valid()
	in.IdempotencyKey = strings.Repeat("x", 65)
	if ok, _ := ValidateBet(&in); ok {
		t.Error("oversized idempotency_key accepted")
	}

	in = valid()
	in.Selection = json.RawMessage(strings.Repeat("a", 4097))
	if ok, _ := ValidateBet(&in); ok {
		t.Error("oversized selection accepted")
	}
}

func TestParseIntList(t *testing.T) {
	got, ok := parseIntList(" 1, 5 ,17,28, 35 ")
	if !ok {
		t.Fatal("valid list rejected")
	}
	want := []int{1, 5, 17, 28, 35}
	for i, v := range want {
		if got[i] != v {
			t.Fatalf("parseIntList = %v, want %v", got, want)
		}
	}

	if got, ok := parseIntList(""); !ok || got != nil {
		t.Errorf("empty string should yield nil list, got (%v, %v)", got, ok)
	}
	if _, ok := parseIntList("1,x,3"); ok {
		t.Error("non numeric element accepted")
	}
}

func TestValidateDrawNumbers(t *testing.T) {
	in := DrawNumbersParsed{DrawNumber: 20260101, Front: []int{1, 2, 3, 4, 5}, Back: []int{6, 7}}
	if ok, msg := ValidateDrawNumbers(&in); !ok {
		t.Fatalf("valid input rejected: %s", msg)
	}

	in = DrawNumbersParsed{Front: []int{1, 2, 3, 4, 5}, Back: []int{6, 7}}
	if ok, _ := ValidateDrawNumbers(&in); ok {
		t.Error("missing draw_number accepted")
	}

	in = DrawNumbersParsed{DrawNumber: 1, Auto: true}
	if ok, msg := ValidateDrawNumbers(&in); !ok {
		t.Errorf("auto mode rejected: %s", msg)
	}

	in = DrawNumbersParsed{DrawNumber: 1, Auto: true, Front: []int{1}}
	if ok, _ := ValidateDrawNumbers(&in); ok {
		t.Error("auto mode with manual numbers accepted")
	}

	in = DrawNumbersParsed{DrawNumber: 1, Front: []int{1, 2, 3}}
	if ok, _ := ValidateDrawNumbers(&in); ok {
		t.Error("missing back zone accepted")
	}
}

func TestValidateDrawEvent(t *testing.T) {
	in := DrawEventParsed{DrawNumber: 1, EventType: 1}
	if ok, msg := ValidateDrawEvent(&in); !ok {
		t.Fatalf("valid event rejected: %s", msg)
	}
	in = DrawEventParsed{DrawNumber: 1, EventType: 4}
	if ok, _ := ValidateDrawEvent(&in); ok {
		t.Error("out of range event_type accepted")
	}
	in = DrawEventParsed{EventType: 1}
	if ok, _ := ValidateDrawEvent(&in); ok {
		t.Error("missing draw_number accepted")
	}
}
