package lottery

import (
	"fmt"
	"sort"
)

// ZoneSpec 号码区配置
// 大乐透为双区玩法：前区 5/35，后区 2/12
type ZoneSpec struct {
	Name string // front | back
	Min  int    // 号码下界（含）
	Max  int    // 号码上界（含）
	Pick int    // 每注需选出的号码个数
}

// 官方双区配置
var (
	FrontZone = ZoneSpec{Name: "front", Min: 1, Max: 35, Pick: 5}
	BackZone  = ZoneSpec{Name: "back", Min: 1, Max: 12, Pick: 2}
)

// NumberSet 升序去重的号码集合
// 构造后不可变；所有校验依赖“已排序且无重复”这一不变式
type NumberSet []int

// NewNumberSet 复制并升序排序，不做合法性校验（校验见 ZoneSpec）
func NewNumberSet(nums ...int) NumberSet {
	s := make(NumberSet, len(nums))
	copy(s, nums)
	sort.Ints(s)
	return s
}

// Contains 二分查找号码是否存在
func (s NumberSet) Contains(n int) bool {
	i := sort.SearchInts(s, n)
	return i < len(s) && s[i] == n
}

// IntersectCount 计算与另一个升序集合的交集大小（双指针，O(m+n)）
func (s NumberSet) IntersectCount(other NumberSet) int {
	i, j, cnt := 0, 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i] == other[j]:
			cnt++
			i++
			j++
		case s[i] < other[j]:
			i++
		default:
			j++
		}
	}
	return cnt
}

// Union 合并两个集合（要求互不相交，结果重新排序）
func (s NumberSet) Union(other NumberSet) NumberSet {
	out := make(NumberSet, 0, len(s)+len(other))
	out = append(out, s...)
	out = append(out, other...)
	sort.Ints(out)
	return out
}

// checkMembers 校验无重复且全部落在 [Min, Max]
func (z ZoneSpec) checkMembers(s NumberSet) error {
	for i, n := range s {
		if n < z.Min || n > z.Max {
			return fmt.Errorf("%w: %s zone number %d out of range [%d,%d]",
				ErrInvalidSelection, z.Name, n, z.Min, z.Max)
		}
		if i > 0 && s[i-1] == n {
			return fmt.Errorf("%w: %s zone duplicate number %d", ErrInvalidSelection, z.Name, n)
		}
	}
	return nil
}

// ValidatePick 校验单式选号：个数必须等于 Pick
func (z ZoneSpec) ValidatePick(s NumberSet) error {
	if len(s) != z.Pick {
		return fmt.Errorf("%w: %s zone requires exactly %d numbers, got %d",
			ErrInvalidSelection, z.Name, z.Pick, len(s))
	}
	return z.checkMembers(s)
}

// ValidatePool 校验复式/胆拖号码池：个数在 [minCount, 区内号码总数] 之间
func (z ZoneSpec) ValidatePool(s NumberSet, minCount int) error {
	total := z.Max - z.Min + 1
	if len(s) < minCount || len(s) > total {
		return fmt.Errorf("%w: %s zone pool size %d outside [%d,%d]",
			ErrInvalidSelection, z.Name, len(s), minCount, total)
	}
	return z.checkMembers(s)
}
