package healthapi

import (
	"context"
	"errors"
	"time"

	"mainframe-health/internal/domain/model"
	"mainframe-health/internal/services/healthagg"
)

// 健康状态三视图：系统列表、单系统分组明细、全系统两级汇总。

// Percentages 是分桶计数占比（保留 1 位小数）。
type Percentages struct {
	Critical float64 `json:"critical_pct"`
	Warning  float64 `json:"warning_pct"`
	Good     float64 `json:"good_pct"`
}

func percentagesOf(c model.HealthBucketCounts) Percentages {
	return Percentages{
		Critical: healthagg.Pct(c.Critical, c.Total),
		Warning:  healthagg.Pct(c.Warning, c.Total),
		Good:     healthagg.Pct(c.Good, c.Total),
	}
}

// SystemOverview 是系统列表里单个系统的健康概览。
type SystemOverview struct {
	SystemID       string `json:"system_id"`
	TotalRecords   int    `json:"total_records"`
	CriticalIssues int    `json:"critical_issues"`
	Warnings       int    `json:"warnings"`
}

// SystemsResult 是系统健康列表。
type SystemsResult struct {
	Envelope
	Systems      []SystemOverview `json:"systems"`
	TotalSystems int              `json:"total_systems"`
	TotalRecords int              `json:"total_records"`
}

// ShowSystems 列出时间窗口内有遥测记录的系统及其健康概览，按规范顺序排列。
func (s *Service) ShowSystems(ctx context.Context, days int) *SystemsResult {
	start := time.Now()

	days, err := normalizeDays(days, DefaultHealthDays)
	if err != nil {
		return &SystemsResult{Envelope: fail(start, 0, err)}
	}

	rows, err := s.fetch.QueryRuleValues(ctx, model.RuleValueQuery{Days: days})
	if err != nil {
		return &SystemsResult{Envelope: fail(start, days, err)}
	}

	aggregated := healthagg.AggregateBySystem(rows)
	systems := make([]SystemOverview, 0, len(aggregated))
	for _, g := range aggregated {
		systems = append(systems, SystemOverview{
			SystemID:       g.SystemID,
			TotalRecords:   g.Total,
			CriticalIssues: g.Critical,
			Warnings:       g.Warning,
		})
	}
	return &SystemsResult{
		Envelope:     done(start, days),
		Systems:      systems,
		TotalSystems: len(systems),
		TotalRecords: len(rows),
	}
}

// SystemHealthResult 是单系统的健康明细。
type SystemHealthResult struct {
	Envelope
	SystemID    string                   `json:"system_id"`
	Summary     model.HealthBucketCounts `json:"summary"`
	Percentages Percentages              `json:"percentages"`
	RuleGroups  []model.GroupHealth      `json:"rule_groups"`
}

// SystemHealth 给出单个系统按规则组的健康分桶与总体占比。
func (s *Service) SystemHealth(ctx context.Context, systemID string, days int) *SystemHealthResult {
	start := time.Now()

	sysID := normalizeSystemID(systemID)
	if sysID == "" {
		return &SystemHealthResult{Envelope: fail(start, 0, errors.New("system_id is required"))}
	}
	days, err := normalizeDays(days, DefaultHealthDays)
	if err != nil {
		return &SystemHealthResult{Envelope: fail(start, 0, err), SystemID: sysID}
	}

	rows, err := s.fetch.QueryRuleValues(ctx, model.RuleValueQuery{Days: days, SystemID: sysID})
	if err != nil {
		return &SystemHealthResult{Envelope: fail(start, days, err), SystemID: sysID}
	}

	groups := healthagg.AggregateByRuleGroup(rows)
	summary := healthagg.SumCounts(groups)
	return &SystemHealthResult{
		Envelope:    done(start, days),
		SystemID:    sysID,
		Summary:     summary,
		Percentages: percentagesOf(summary),
		RuleGroups:  groups,
	}
}

// SystemRollup 是全系统汇总里单个系统的计数。
type SystemRollup struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Total    int `json:"total"`
}

// AllSystemsResult 是全系统健康汇总：系统级总览映射 + (系统, 规则组) 明细。
// 两级视图都从同一批截断后的记录计算，口径一致。
type AllSystemsResult struct {
	Envelope
	SystemsSummary map[string]SystemRollup `json:"systems_summary"`
	DetailedData   []model.GroupHealth     `json:"detailed_data"`
	TotalRecords   int                     `json:"total_records"`
	MaxRows        int                     `json:"max_rows"`
}

// AllSystemsHealth 汇总所有系统的健康状态。maxRows 限制参与计算的记录数，<=0 时取 100。
func (s *Service) AllSystemsHealth(ctx context.Context, days, maxRows int) *AllSystemsResult {
	start := time.Now()

	days, err := normalizeDays(days, DefaultHealthDays)
	if err != nil {
		return &AllSystemsResult{Envelope: fail(start, 0, err)}
	}
	if maxRows <= 0 {
		maxRows = DefaultAllSystemsMaxRows
	}

	rows, err := s.fetch.QueryRuleValues(ctx, model.RuleValueQuery{Days: days, MaxRows: maxRows})
	if err != nil {
		return &AllSystemsResult{Envelope: fail(start, days, err)}
	}

	summary := make(map[string]SystemRollup)
	for _, g := range healthagg.AggregateBySystem(rows) {
		summary[g.SystemID] = SystemRollup{Critical: g.Critical, Warning: g.Warning, Total: g.Total}
	}
	return &AllSystemsResult{
		Envelope:       done(start, days),
		SystemsSummary: summary,
		DetailedData:   healthagg.AggregateBySystemGroup(rows),
		TotalRecords:   len(rows),
		MaxRows:        maxRows,
	}
}
