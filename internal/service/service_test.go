package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"lotto-server/internal/lottery"
	"lotto-server/internal/model"
	"lotto-server/internal/state"

	mysqlerr "github.com/go-sql-driver/mysql"
	decimal "github.com/shopspring/decimal"
)

func TestGenerateBillNo(t *testing.T) {
	no := generateBillNo(123456)
	if !strings.HasPrefix(no, "LT") {
		t.Errorf("bill no %q should start with LT", no)
	}
	// LT + 14位时间 + 4位用户尾号 + 3位随机 = 23
	if len(no) != 23 {
		t.Errorf("bill no %q length = %d, want 23", no, len(no))
	}
	if !strings.Contains(no, "3456") {
		t.Errorf("bill no %q should embed the user id suffix 3456", no)
	}

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		n := generateBillNo(1)
		if seen[n] {
			t.Fatalf("duplicate bill no generated: %s", n)
		}
		seen[n] = true
	}
}

func TestEventTypeToEvt(t *testing.T) {
	cases := []struct {
		in   int8
		want string
		ok   bool
	}{
		{1, state.EvtSalesClose, true},
		{2, state.EvtDrawNumbers, true},
		{3, state.EvtSettle, true},
		{0, "", false},
		{4, "", false},
	}
	for _, c := range cases {
		got, ok := eventTypeToEvt(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("eventTypeToEvt(%d) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestParseWinningNumbers(t *testing.T) {
	front, back, err := parseWinningNumbers("[35,1,17,5,28]", "[3,11]")
	if err != nil {
		t.Fatalf("parseWinningNumbers: %v", err)
	}
	wantFront := []int{1, 5, 17, 28, 35}
	for i, v := range front {
		if v != wantFront[i] {
			t.Errorf("front = %v, want %v", []int(front), wantFront)
			break
		}
	}
	if back[0] != 3 || back[1] != 11 {
		t.Errorf("back = %v, want [3 11]", []int(back))
	}

	if _, _, err := parseWinningNumbers("[1,2,3]", "[3,11]"); err == nil {
		t.Error("short front zone should be rejected")
	}
	if _, _, err := parseWinningNumbers("not json", "[3,11]"); !errors.Is(err, lottery.ErrInvalidWinningNumber) {
		t.Errorf("malformed front json: got %v, want ErrInvalidWinningNumber", err)
	}
	if _, _, err := parseWinningNumbers("[1,2,3,4,36]", "[3,11]"); err == nil {
		t.Error("out of range front number should be rejected")
	}
}

func TestSourceToAudit(t *testing.T) {
	if got := sourceToAudit("feed"); got != "mq" {
		t.Errorf("sourceToAudit(feed) = %q, want mq", got)
	}
	if got := sourceToAudit("manual"); got != "api" {
		t.Errorf("sourceToAudit(manual) = %q, want api", got)
	}
	if got := sourceToAudit("auto"); got != "api" {
		t.Errorf("sourceToAudit(auto) = %q, want api", got)
	}
}

func TestBuildTierViews(t *testing.T) {
	rpt := &lottery.SettlementReport{}
	rpt.Tiers[1] = lottery.TierStat{Winners: 1, Payout: decimal.NewFromInt(7500000)}
	rpt.Tiers[9] = lottery.TierStat{Winners: 40, Payout: decimal.NewFromInt(200)}

	views := buildTierViews(rpt)
	if len(views) != 2 {
		t.Fatalf("views = %d, want 2 (tiers with zero winners omitted)", len(views))
	}
	if views[0].Tier != 1 || views[0].Winners != 1 || views[0].Payout != "7500000.00" {
		t.Errorf("tier1 view = %+v", views[0])
	}
	if views[1].Tier != 9 || views[1].Winners != 40 || views[1].Payout != "200.00" {
		t.Errorf("tier9 view = %+v", views[1])
	}
}

func TestIsMySQLDuplicateKeyError(t *testing.T) {
	if !isMySQLDuplicateKeyError(&mysqlerr.MySQLError{Number: 1062, Message: "Duplicate entry 'k' for key 'uniq'"}) {
		t.Error("typed 1062 error should be recognized")
	}
	wrapped := fmt.Errorf("insert settlement log: %w", &mysqlerr.MySQLError{Number: 1062})
	if !isMySQLDuplicateKeyError(wrapped) {
		t.Error("wrapped 1062 error should be recognized")
	}
	if isMySQLDuplicateKeyError(&mysqlerr.MySQLError{Number: 1213, Message: "Deadlock found"}) {
		t.Error("deadlock error should not be recognized as duplicate")
	}
	if !isMySQLDuplicateKeyError(errors.New("Error 1062: Duplicate entry 'k' for key 'uniq'")) {
		t.Error("stringly 1062 error should be recognized")
	}
	if isMySQLDuplicateKeyError(nil) {
		t.Error("nil is not a duplicate key error")
	}
}

func TestReplaySettleResultRejectsResettle(t *testing.T) {
	slog := &model.SettlementLog{
		DrawNumber:  2024101,
		TotalBets:   12,
		TotalPayout: decimal.NewFromInt(6400),
		TierStats:   `[{"tier":9,"winners":3,"payout":"15"}]`,
		Rollover:    1,
	}
	out, err := replaySettleResult(slog, 2024101)
	if !errors.Is(err, lottery.ErrAlreadySettled) {
		t.Fatalf("err = %v, want ErrAlreadySettled", err)
	}
	if out == nil || !out.Idempotent {
		t.Fatalf("out = %+v, want recorded report marked idempotent", out)
	}
	if out.TotalBets != 12 || out.TotalPayout != "6400.00" || !out.JackpotRollover {
		t.Errorf("replayed report = %+v", out)
	}
	if len(out.Tiers) != 1 || out.Tiers[0].Tier != 9 || out.Tiers[0].Winners != 3 {
		t.Errorf("tiers = %+v", out.Tiers)
	}
	if out.NextDrawNumber != 2024102 {
		t.Errorf("next draw = %d, want 2024102", out.NextDrawNumber)
	}

	// 标志位已置但结算日志缺失：仍拒绝，给最小信息
	out, err = replaySettleResult(nil, 2024101)
	if !errors.Is(err, lottery.ErrAlreadySettled) {
		t.Fatalf("missing log: err = %v, want ErrAlreadySettled", err)
	}
	if out == nil || out.DrawNumber != 2024101 || !out.Idempotent {
		t.Errorf("missing log: out = %+v", out)
	}
}
