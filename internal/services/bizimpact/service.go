package bizimpact

import (
	"fmt"

	"mainframe-health/internal/domain/model"
	"mainframe-health/internal/services/healthagg"
)

// 业务影响翻译：把技术维度的问题计数转成管理层能读懂的风险描述。
// 展示列表只保留前 3 项，但汇总数字覆盖全部匹配条目。

const maxBusinessIssues = 3

// 风险等级阈值为严格下界：101 起 CRITICAL，51 起 HIGH，11 起 MEDIUM。
const (
	RiskCritical = "CRITICAL"
	RiskHigh     = "HIGH"
	RiskMedium   = "MEDIUM"
	RiskLow      = "LOW"
)

// BusinessIssue 是一条翻译后的业务问题。
type BusinessIssue struct {
	SystemID       string `json:"system_id"`
	RuleGroup      string `json:"rule_group"`
	DisplayName    string `json:"display_name"`
	Critical       int    `json:"critical"`
	Warnings       int    `json:"warnings"`
	Impact         string `json:"impact"`
	Urgency        string `json:"urgency"`
	ResolutionTime string `json:"resolution_time"`
}

// ExecutiveSummary 是管理层摘要的总览数字与风险等级。
type ExecutiveSummary struct {
	RiskLevel           string `json:"risk_level"`
	TotalCriticalIssues int    `json:"total_critical_issues"`
	TotalWarningIssues  int    `json:"total_warning_issues"`
	SystemsAffected     int    `json:"systems_affected"`
}

// Summary 是管理层摘要的核心结构。
type Summary struct {
	ExecutiveSummary ExecutiveSummary `json:"executive_summary"`
	BusinessIssues   []BusinessIssue  `json:"business_issues"`
	Recommendations  []string         `json:"recommendations"`
}

// Build 从 level>=2 的记录构建管理层摘要。
// 非问题行（level<2）即使混入也会被剔除，保证汇总口径一致。
func Build(rows []model.RuleValueRecord, impact model.BusinessImpactBundle) *Summary {
	problems := make([]model.RuleValueRecord, 0, len(rows))
	for _, r := range rows {
		if r.RuleLevel >= 2 {
			problems = append(problems, r)
		}
	}

	groups := healthagg.AggregateBySystemGroup(problems)

	totalCritical := 0
	totalWarnings := 0
	affected := make(map[string]struct{})
	for _, g := range groups {
		totalCritical += g.Critical
		totalWarnings += g.Warning
		affected[g.SystemID] = struct{}{}
	}

	issues := make([]BusinessIssue, 0, maxBusinessIssues)
	for _, g := range groups {
		if len(issues) == maxBusinessIssues {
			break
		}
		entry := impact.Resolve(g.RuleGroup)
		issues = append(issues, BusinessIssue{
			SystemID:       g.SystemID,
			RuleGroup:      g.RuleGroup,
			DisplayName:    entry.DisplayName,
			Critical:       g.Critical,
			Warnings:       g.Warning,
			Impact:         entry.Impact,
			Urgency:        entry.Urgency,
			ResolutionTime: entry.ResolutionTime,
		})
	}

	risk := RiskFor(totalCritical)

	return &Summary{
		ExecutiveSummary: ExecutiveSummary{
			RiskLevel:           risk,
			TotalCriticalIssues: totalCritical,
			TotalWarningIssues:  totalWarnings,
			SystemsAffected:     len(affected),
		},
		BusinessIssues:  issues,
		Recommendations: recommendations(risk, issues),
	}
}

// RiskFor 把估算的严重问题总数映射为风险等级。
func RiskFor(totalCritical int) string {
	switch {
	case totalCritical > 100:
		return RiskCritical
	case totalCritical > 50:
		return RiskHigh
	case totalCritical > 10:
		return RiskMedium
	default:
		return RiskLow
	}
}

// recommendations 输出固定的分级行动建议，外加每条展示问题的定向条目。
func recommendations(risk string, issues []BusinessIssue) []string {
	var out []string
	switch risk {
	case RiskCritical:
		out = append(out,
			"Convene incident review within 24 hours",
			"Freeze non-essential changes on affected systems",
		)
	case RiskHigh:
		out = append(out,
			"Schedule remediation within 48 hours",
			"Review capacity and storage trends on affected systems",
		)
	case RiskMedium:
		out = append(out, "Plan remediation in the next maintenance window")
	default:
		out = append(out, "No management action required - continue routine monitoring")
	}

	for _, issue := range issues {
		out = append(out, fmt.Sprintf("Address %s on %s (%s)", issue.DisplayName, issue.SystemID, issue.ResolutionTime))
	}
	return out
}
