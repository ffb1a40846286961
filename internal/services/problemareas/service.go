package problemareas

import (
	"sort"

	"mainframe-health/internal/domain/model"
	"mainframe-health/internal/services/healthagg"
)

// 问题优先级服务：从原始规则值记录中提炼"需要关注什么"。
// 输入先过滤到 level>=2（正常/不适用的行完全排除在问题检测之外），
// 再按 (系统, 规则组) 聚合并套用规范排序。

const (
	defaultMaxIssues = 10
	maxBreakdown     = 10
	maxPriority      = 3
)

// BreakdownEntry 是 (系统, 规则组) 维度的问题计数。
type BreakdownEntry struct {
	SystemID  string `json:"system_id"`
	RuleGroup string `json:"rule_group"`
	Critical  int    `json:"critical"`
	Warnings  int    `json:"warnings"`
}

// Issue 是一条未聚合的严重问题明细行。
type Issue struct {
	SystemID    string `json:"system_id"`
	RuleGroup   string `json:"rule_group"`
	RuleID      string `json:"rule_id"`
	Description string `json:"description"`
	Level       int    `json:"level"`
	Date        string `json:"date"`
}

// ExecutiveSummary 是面向决策者的问题总览。
type ExecutiveSummary struct {
	TotalCritical   int              `json:"total_critical"`
	TotalWarnings   int              `json:"total_warnings"`
	SystemsAffected int              `json:"systems_affected"`
	PrioritySystems []BreakdownEntry `json:"priority_systems"`
}

// Report 是问题优先级报表的完整结构。
type Report struct {
	ExecutiveSummary  ExecutiveSummary `json:"executive_summary"`
	SystemBreakdown   []BreakdownEntry `json:"system_breakdown"`
	TopCriticalIssues []Issue          `json:"top_critical_issues"`
}

// Build 从原始记录构建问题优先级报表。
// maxIssues 限制明细行数量，<=0 时取默认值 10。
func Build(rows []model.RuleValueRecord, maxIssues int) *Report {
	if maxIssues <= 0 {
		maxIssues = defaultMaxIssues
	}

	problems := make([]model.RuleValueRecord, 0, len(rows))
	for _, r := range rows {
		if r.RuleLevel >= 2 {
			problems = append(problems, r)
		}
	}

	groups := healthagg.AggregateBySystemGroup(problems)

	breakdown := make([]BreakdownEntry, 0, len(groups))
	affected := make(map[string]struct{})
	totalCritical := 0
	totalWarnings := 0
	for _, g := range groups {
		breakdown = append(breakdown, BreakdownEntry{
			SystemID:  g.SystemID,
			RuleGroup: g.RuleGroup,
			Critical:  g.Critical,
			Warnings:  g.Warning,
		})
		totalCritical += g.Critical
		totalWarnings += g.Warning
		if g.Critical > 0 || g.Warning > 0 {
			affected[g.SystemID] = struct{}{}
		}
	}

	priority := make([]BreakdownEntry, 0, maxPriority)
	for _, b := range breakdown {
		if b.Critical == 0 {
			continue
		}
		priority = append(priority, b)
		if len(priority) == maxPriority {
			break
		}
	}

	shown := breakdown
	if len(shown) > maxBreakdown {
		shown = shown[:maxBreakdown]
	}

	return &Report{
		ExecutiveSummary: ExecutiveSummary{
			TotalCritical:   totalCritical,
			TotalWarnings:   totalWarnings,
			SystemsAffected: len(affected),
			PrioritySystems: priority,
		},
		SystemBreakdown:   shown,
		TopCriticalIssues: topIssues(problems, maxIssues),
	}
}

// topIssues 提取 level>=3 的明细行：级别降序、日期降序，截断到 maxIssues。
func topIssues(rows []model.RuleValueRecord, maxIssues int) []Issue {
	critical := make([]model.RuleValueRecord, 0, len(rows))
	for _, r := range rows {
		if r.RuleLevel >= 3 {
			critical = append(critical, r)
		}
	}

	sort.SliceStable(critical, func(i, j int) bool {
		if critical[i].RuleLevel != critical[j].RuleLevel {
			return critical[i].RuleLevel > critical[j].RuleLevel
		}
		return critical[i].Date > critical[j].Date
	})

	if len(critical) > maxIssues {
		critical = critical[:maxIssues]
	}

	out := make([]Issue, 0, len(critical))
	for _, r := range critical {
		out = append(out, Issue{
			SystemID:    r.SystemID,
			RuleGroup:   r.RuleGroup,
			RuleID:      r.RuleID,
			Description: r.Description,
			Level:       r.RuleLevel,
			Date:        r.Date,
		})
	}
	return out
}
