package lottery

import (
	"testing"
)

var (
	winFront = NewNumberSet(1, 2, 3, 4, 5)
	winBack  = NewNumberSet(1, 2)
)

func TestEvaluateSingleJackpot(t *testing.T) {
	sel := &Selection{Type: BetSingle, Front: NewNumberSet(1, 2, 3, 4, 5), Back: NewNumberSet(1, 2)}
	tier, f, b := EvaluateSelection(sel, winFront, winBack)
	if tier != 1 {
		t.Fatalf("tier = %d, want 1", tier)
	}
	if len(f) != 5 || len(b) != 2 {
		t.Fatalf("matched combo not returned: %v %v", f, b)
	}
}

func TestEvaluateSingleTier5(t *testing.T) {
	// f=4, b=1 -> 五等奖
	sel := &Selection{Type: BetSingle, Front: NewNumberSet(1, 2, 3, 4, 6), Back: NewNumberSet(1, 11)}
	tier, _, _ := EvaluateSelection(sel, winFront, winBack)
	if tier != 5 {
		t.Fatalf("tier = %d, want 5", tier)
	}
}

func TestEvaluateSingleLoser(t *testing.T) {
	sel := &Selection{Type: BetSingle, Front: NewNumberSet(10, 20, 25, 30, 35), Back: NewNumberSet(8, 9)}
	tier, f, b := EvaluateSelection(sel, winFront, winBack)
	if tier != TierNone || f != nil || b != nil {
		t.Fatalf("loser should return (0,nil,nil), got (%d,%v,%v)", tier, f, b)
	}
}

// 复式包含一注全中子组合时必须解析到一等奖，与枚举顺序无关
func TestEvaluateComplexBestTier(t *testing.T) {
	sel := &Selection{
		Type:  BetComplex,
		Front: NewNumberSet(1, 2, 3, 4, 5, 30, 31),
		Back:  NewNumberSet(1, 2, 9),
	}
	tier, f, b := EvaluateSelection(sel, winFront, winBack)
	if tier != 1 {
		t.Fatalf("tier = %d, want 1", tier)
	}
	if f.IntersectCount(winFront) != 5 || b.IntersectCount(winBack) != 2 {
		t.Fatalf("matched combo is not the jackpot combo: %v %v", f, b)
	}
}

// 胆码覆盖中奖号时的最优奖级
func TestEvaluateSystemBestTier(t *testing.T) {
	sel := &Selection{
		Type:        BetSystem,
		FrontAnchor: NewNumberSet(1, 2),
		FrontFollow: NewNumberSet(3, 4, 5, 20, 21),
		BackFollow:  NewNumberSet(1, 2, 12),
	}
	tier, _, _ := EvaluateSelection(sel, winFront, winBack)
	if tier != 1 {
		t.Fatalf("tier = %d, want 1", tier)
	}
}

// 多注均中小奖时保留数值最小的奖级
func TestEvaluateKeepsBest(t *testing.T) {
	// 前区只可能命中 3 或 4 个，后区 0..2：最优为 f=4,b=2 -> 四等奖
	sel := &Selection{
		Type:  BetComplex,
		Front: NewNumberSet(1, 2, 3, 4, 30, 31),
		Back:  NewNumberSet(1, 2, 9),
	}
	tier, _, _ := EvaluateSelection(sel, winFront, winBack)
	if tier != 4 {
		t.Fatalf("tier = %d, want 4", tier)
	}
}

func TestCryptoSampler(t *testing.T) {
	for i := 0; i < 50; i++ {
		f, err := CryptoSampler(FrontZone)
		if err != nil {
			t.Fatalf("sample front: %v", err)
		}
		if err := FrontZone.ValidatePick(f); err != nil {
			t.Fatalf("sampled front invalid: %v", err)
		}
		b, err := CryptoSampler(BackZone)
		if err != nil {
			t.Fatalf("sample back: %v", err)
		}
		if err := BackZone.ValidatePick(b); err != nil {
			t.Fatalf("sampled back invalid: %v", err)
		}
	}
}
