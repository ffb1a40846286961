package healthagg

import (
	"math"
	"sort"

	"mainframe-health/internal/domain/model"
)

// 聚合引擎：把原始规则值记录按系统和/或规则组分桶计数。
// 所有多组报表共用同一套规范排序（见 SortCanonical），这是对外契约而非实现细节。

type accumulator struct {
	counts   model.HealthBucketCounts
	sevSum   int
	sevCount int
}

// AggregateBySystem 按系统聚合，结果按规范顺序排列。
func AggregateBySystem(rows []model.RuleValueRecord) []model.GroupHealth {
	return aggregate(rows, func(r model.RuleValueRecord) model.GroupKey {
		return model.GroupKey{SystemID: r.SystemID}
	})
}

// AggregateByRuleGroup 按规则组聚合（单系统健康视图），结果按规范顺序排列。
func AggregateByRuleGroup(rows []model.RuleValueRecord) []model.GroupHealth {
	return aggregate(rows, func(r model.RuleValueRecord) model.GroupKey {
		return model.GroupKey{RuleGroup: r.RuleGroup}
	})
}

// AggregateBySystemGroup 按 (系统, 规则组) 复合键聚合，结果按规范顺序排列。
func AggregateBySystemGroup(rows []model.RuleValueRecord) []model.GroupHealth {
	return aggregate(rows, func(r model.RuleValueRecord) model.GroupKey {
		return model.GroupKey{SystemID: r.SystemID, RuleGroup: r.RuleGroup}
	})
}

// aggregate 按 keyFn 给出的复合键分桶计数。
// avg_severity 只统计 level>0 的行（排除不适用），无此类行时为 0，避免除零。
func aggregate(rows []model.RuleValueRecord, keyFn func(model.RuleValueRecord) model.GroupKey) []model.GroupHealth {
	agg := make(map[model.GroupKey]*accumulator)

	for _, r := range rows {
		key := keyFn(r)
		acc, ok := agg[key]
		if !ok {
			acc = &accumulator{}
			agg[key] = acc
		}

		acc.counts.Total++
		switch Classify(r.RuleLevel) {
		case BucketCritical:
			acc.counts.Critical++
		case BucketWarning:
			acc.counts.Warning++
		case BucketGood:
			acc.counts.Good++
		default:
			acc.counts.NotApplicable++
		}
		if r.RuleLevel > 0 {
			acc.sevSum += r.RuleLevel
			acc.sevCount++
		}
	}

	out := make([]model.GroupHealth, 0, len(agg))
	for key, acc := range agg {
		counts := acc.counts
		if acc.sevCount > 0 {
			counts.AvgSeverity = Round2(float64(acc.sevSum) / float64(acc.sevCount))
		}
		out = append(out, model.GroupHealth{
			SystemID:           key.SystemID,
			RuleGroup:          key.RuleGroup,
			HealthBucketCounts: counts,
		})
	}

	SortCanonical(out)
	return out
}

// SortCanonical 应用规范排序：critical 降序、warning 降序、键字典序升序。
// 键在同一聚合结果中唯一，因此该排序是全序，重复聚合产出逐字节一致。
func SortCanonical(groups []model.GroupHealth) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Critical != groups[j].Critical {
			return groups[i].Critical > groups[j].Critical
		}
		if groups[i].Warning != groups[j].Warning {
			return groups[i].Warning > groups[j].Warning
		}
		if groups[i].SystemID != groups[j].SystemID {
			return groups[i].SystemID < groups[j].SystemID
		}
		return groups[i].RuleGroup < groups[j].RuleGroup
	})
}

// SumCounts 把若干聚合条目的计数相加（不含 avg_severity）。
func SumCounts(groups []model.GroupHealth) model.HealthBucketCounts {
	var total model.HealthBucketCounts
	for _, g := range groups {
		total.Total += g.Total
		total.Critical += g.Critical
		total.Warning += g.Warning
		total.Good += g.Good
		total.NotApplicable += g.NotApplicable
	}
	return total
}

// Pct 计算百分比并保留 1 位小数，total 为 0 时返回 0。
func Pct(x, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round1(float64(x) / float64(total) * 100)
}

// Round1 四舍五入保留 1 位小数。
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 四舍五入保留 2 位小数。
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
