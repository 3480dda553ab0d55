package state

import "testing"

func TestNextState(t *testing.T) {
	cases := []struct {
		cur, evt, want string
		ok             bool
	}{
		{StateOpen, EvtSalesClose, StateClosed, true},
		{StateClosed, EvtDrawNumbers, StateDrawn, true},
		{StateDrawn, EvtSettle, StateSettled, true},
		{StateOpen, EvtDrawNumbers, "", false},
		{StateOpen, EvtSettle, "", false},
		{StateClosed, EvtSalesClose, "", false},
		{StateClosed, EvtSettle, "", false},
		{StateDrawn, EvtSalesClose, "", false},
		{StateSettled, EvtSettle, "", false},
		{StateSettled, EvtSalesClose, "", false},
	}
	for _, c := range cases {
		next, err := NextState(c.cur, c.evt)
		if c.ok {
			if err != nil || next != c.want {
				t.Fatalf("%s --%s--> %s, %v; want %s", c.cur, c.evt, next, err, c.want)
			}
		} else if err == nil {
			t.Fatalf("%s --%s--> %s should be rejected", c.cur, c.evt, next)
		}
	}
}

// 封盘只能发生一次：已封盘及之后任何状态上的再次封盘都被拒绝
func TestSalesCloseNotRepeatable(t *testing.T) {
	for _, cur := range []string{StateClosed, StateDrawn, StateSettled} {
		if next, err := NextState(cur, EvtSalesClose); err == nil {
			t.Fatalf("%s --sales_close--> %s, want rejection", cur, next)
		}
	}
}

func TestStateCodes(t *testing.T) {
	for code := int8(1); code <= 4; code++ {
		s := CodeToState(code)
		if s == "" || StateToCode(s) != code {
			t.Fatalf("code %d round trip failed: %s", code, s)
		}
	}
	if CodeToState(9) != "" || StateToCode("unknown") != 0 {
		t.Fatalf("unknown code/state should map to zero values")
	}
}
