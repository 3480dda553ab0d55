package lottery

// EvaluateSelection 求一张注单可达的最优奖级
// 遍历选号代表的所有基本注，保留数值最小（价值最高）的奖级；命中一等奖
// 立即短路返回。返回命中的那一注号码便于留痕；未中奖返回 (0, nil, nil)，
// 未中奖不是错误。
func EvaluateSelection(sel *Selection, winFront, winBack NumberSet) (tier int, matchedFront, matchedBack NumberSet) {
	// 单式无需走迭代器
	if sel.Type == BetSingle {
		f, b := MatchCounts(sel.Front, sel.Back, winFront, winBack)
		if t := ResolveTier(f, b); t != TierNone {
			return t, sel.Front, sel.Back
		}
		return TierNone, nil, nil
	}

	best := TierNone
	it := sel.Iterator()
	for {
		cf, cb, ok := it.Next()
		if !ok {
			break
		}
		f, b := MatchCounts(cf, cb, winFront, winBack)
		t := ResolveTier(f, b)
		if t == TierNone {
			continue
		}
		if best == TierNone || t < best {
			best = t
			matchedFront, matchedBack = cf, cb
			if best == 1 {
				// 一等奖封顶，无法再优
				break
			}
		}
	}
	if best == TierNone {
		return TierNone, nil, nil
	}
	return best, matchedFront, matchedBack
}
