package lottery

// 组合展开：注数计算与基本注的惰性枚举
//
// 复杂度说明：复式/胆拖的注数为二项式系数乘积，最坏情况可达数万；
// count 本身 O(1)，枚举为 O(注数)。上限由 PrizeConfig.MaxCombinations
// 约束并在投注入口拒绝（见 service 层），引擎内不重复防御。

// binomial 计算 C(n, k)，区内号码最多 35 个，uint64 不会溢出
func binomial(n, k int) uint64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	var r uint64 = 1
	for i := 1; i <= k; i++ {
		r = r * uint64(n-k+i) / uint64(i)
	}
	return r
}

// Combinations 返回该选号代表的基本注（5+2）数量
// single=1；complex=C(|front|,5)*C(|back|,2)；system 见胆拖规则。
// 不满足可成注条件时返回 0（构造期校验应已拒绝，此处保持防御语义）。
func (sel *Selection) Combinations() uint64 {
	switch sel.Type {
	case BetSingle:
		if len(sel.Front) == FrontZone.Pick && len(sel.Back) == BackZone.Pick {
			return 1
		}
		return 0
	case BetComplex:
		return binomial(len(sel.Front), FrontZone.Pick) * binomial(len(sel.Back), BackZone.Pick)
	case BetSystem:
		if len(sel.FrontAnchor) >= FrontZone.Pick || len(sel.BackAnchor) >= BackZone.Pick {
			return 0
		}
		fn := FrontZone.Pick - len(sel.FrontAnchor)
		bn := BackZone.Pick - len(sel.BackAnchor)
		if fn > len(sel.FrontFollow) || bn > len(sel.BackFollow) {
			return 0
		}
		return binomial(len(sel.FrontFollow), fn) * binomial(len(sel.BackFollow), bn)
	default:
		return 0
	}
}

// kSubsetIter 对升序集合做字典序 k 子集枚举（可 Reset 重放）
type kSubsetIter struct {
	pool NumberSet
	k    int
	idx  []int // 当前子集在 pool 中的下标
	done bool
}

func newKSubsetIter(pool NumberSet, k int) *kSubsetIter {
	it := &kSubsetIter{pool: pool, k: k}
	it.reset()
	return it
}

func (it *kSubsetIter) reset() {
	if it.k < 0 || it.k > len(it.pool) {
		it.done = true
		return
	}
	it.done = false
	it.idx = make([]int, it.k)
	for i := range it.idx {
		it.idx[i] = i
	}
}

// next 返回当前子集并推进游标；第二个返回值为 false 表示已枚举完
func (it *kSubsetIter) next() (NumberSet, bool) {
	if it.done {
		return nil, false
	}
	out := make(NumberSet, it.k)
	for i, p := range it.idx {
		out[i] = it.pool[p]
	}
	// 推进到下一个字典序组合
	i := it.k - 1
	for i >= 0 && it.idx[i] == len(it.pool)-it.k+i {
		i--
	}
	if i < 0 {
		it.done = true
	} else {
		it.idx[i]++
		for j := i + 1; j < it.k; j++ {
			it.idx[j] = it.idx[j-1] + 1
		}
	}
	return out, true
}

// ComboIterator 基本注迭代器
// 外层遍历前区组合，内层遍历后区组合；胆码固定拼接到每个子集。
// 不预先物化全量笛卡尔积，BetEvaluator 可在命中一等奖时提前终止。
type ComboIterator struct {
	frontAnchor NumberSet
	backAnchor  NumberSet

	front *kSubsetIter
	back  *kSubsetIter

	curFront NumberSet
	started  bool
}

// Iterator 构造基本注迭代器（对已校验的 Selection 调用）
func (sel *Selection) Iterator() *ComboIterator {
	it := &ComboIterator{}
	switch sel.Type {
	case BetSingle, BetComplex:
		it.front = newKSubsetIter(sel.Front, FrontZone.Pick)
		it.back = newKSubsetIter(sel.Back, BackZone.Pick)
	case BetSystem:
		it.frontAnchor = sel.FrontAnchor
		it.backAnchor = sel.BackAnchor
		it.front = newKSubsetIter(sel.FrontFollow, FrontZone.Pick-len(sel.FrontAnchor))
		it.back = newKSubsetIter(sel.BackFollow, BackZone.Pick-len(sel.BackAnchor))
	}
	return it
}

// Next 产出下一个基本注（front 5 个 + back 2 个），ok=false 表示枚举结束
func (it *ComboIterator) Next() (front, back NumberSet, ok bool) {
	if it.front == nil || it.back == nil {
		return nil, nil, false
	}
	for {
		if !it.started {
			f, fok := it.front.next()
			if !fok {
				return nil, nil, false
			}
			it.curFront = f
			it.started = true
		}
		b, bok := it.back.next()
		if bok {
			return it.join(it.frontAnchor, it.curFront), it.join(it.backAnchor, b), true
		}
		// 后区枚举完，推进前区并重放后区
		f, fok := it.front.next()
		if !fok {
			return nil, nil, false
		}
		it.curFront = f
		it.back.reset()
	}
}

// Reset 重置迭代器到初始位置（可重放）
func (it *ComboIterator) Reset() {
	if it.front != nil {
		it.front.reset()
	}
	if it.back != nil {
		it.back.reset()
	}
	it.curFront = nil
	it.started = false
}

func (it *ComboIterator) join(anchor, subset NumberSet) NumberSet {
	if len(anchor) == 0 {
		return subset
	}
	return anchor.Union(subset)
}
