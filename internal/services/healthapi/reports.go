package healthapi

import (
	"context"
	"time"

	"mainframe-health/internal/domain/model"
	"mainframe-health/internal/services/bizimpact"
	"mainframe-health/internal/services/discovery"
	"mainframe-health/internal/services/problemareas"
)

// 问题优先级、管理层摘要与上下文发现三个报表操作。
// 前两者只拉取 level>=2 的记录，问题检测的过滤下推到存储层。

// ProblemAreasResult 是问题优先级报表的信封包装。
type ProblemAreasResult struct {
	Envelope
	*problemareas.Report
}

// ProblemAreas 构建问题优先级报表。maxIssues 限制明细行数，<=0 时取 10。
func (s *Service) ProblemAreas(ctx context.Context, days, maxIssues int) *ProblemAreasResult {
	start := time.Now()

	days, err := normalizeDays(days, DefaultHealthDays)
	if err != nil {
		return &ProblemAreasResult{Envelope: fail(start, 0, err)}
	}
	if maxIssues <= 0 {
		maxIssues = DefaultMaxIssues
	}

	rows, err := s.fetch.QueryRuleValues(ctx, model.RuleValueQuery{Days: days, MinLevel: 2})
	if err != nil {
		return &ProblemAreasResult{Envelope: fail(start, days, err)}
	}

	return &ProblemAreasResult{
		Envelope: done(start, days),
		Report:   problemareas.Build(rows, maxIssues),
	}
}

// ManagementSummaryResult 是管理层摘要的信封包装。
type ManagementSummaryResult struct {
	Envelope
	SystemID string `json:"system_id,omitempty"`
	*bizimpact.Summary
}

// ManagementSummary 构建管理层摘要。systemID 非空时只看单个系统。
func (s *Service) ManagementSummary(ctx context.Context, systemID string, days int) *ManagementSummaryResult {
	start := time.Now()

	sysID := normalizeSystemID(systemID)
	days, err := normalizeDays(days, DefaultHealthDays)
	if err != nil {
		return &ManagementSummaryResult{Envelope: fail(start, 0, err), SystemID: sysID}
	}

	rows, err := s.fetch.QueryRuleValues(ctx, model.RuleValueQuery{Days: days, SystemID: sysID, MinLevel: 2})
	if err != nil {
		return &ManagementSummaryResult{Envelope: fail(start, days, err), SystemID: sysID}
	}

	return &ManagementSummaryResult{
		Envelope: done(start, days),
		SystemID: sysID,
		Summary:  bizimpact.Build(rows, s.bundles.Impact),
	}
}

// DiscoverResult 是上下文发现的结果：原始预聚合行 + 按系统分组的视图。
type DiscoverResult struct {
	Envelope
	Rows    []model.ContextRow        `json:"rows"`
	Systems []discovery.SystemContext `json:"systems"`
}

// DiscoverContext 探查时间窗口内活跃的系统/LPAR/处理器类型组合。
// 默认窗口 30 天，行数上限 200。
func (s *Service) DiscoverContext(ctx context.Context, days, maxRows int) *DiscoverResult {
	start := time.Now()

	days, err := normalizeDays(days, DefaultDiscoverDays)
	if err != nil {
		return &DiscoverResult{Envelope: fail(start, 0, err)}
	}
	if maxRows <= 0 {
		maxRows = DefaultDiscoverMaxRows
	}

	rows, err := s.fetch.QueryContext(ctx, days, maxRows)
	if err != nil {
		return &DiscoverResult{Envelope: fail(start, days, err)}
	}

	return &DiscoverResult{
		Envelope: done(start, days),
		Rows:     rows,
		Systems:  discovery.Group(rows, 0),
	}
}
