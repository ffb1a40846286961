package componentscan

import (
	"fmt"

	"mainframe-health/internal/domain/model"
	"mainframe-health/internal/services/healthagg"
)

// KMP 评估：对照固定的基础组件集检查各技术领域的关键性能监控覆盖。
// 覆盖率只统计必装项；建议按固定严重度顺序输出：
// urgent（基础项缺失）-> high（其余必装项缺失）-> info（覆盖率达到 100%）。

// TechAssessment 是单个技术领域的 KMP 评估结果。
type TechAssessment struct {
	Component  string `json:"component"`
	Installed  bool   `json:"installed"`
	Mandatory  bool   `json:"mandatory"`
	Foundation bool   `json:"foundation"`
}

// KMPRecommendation 是一条分级建议。
type KMPRecommendation struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// KMPResult 是 KMP 评估的完整结果。
type KMPResult struct {
	ByTechnology       map[string]TechAssessment `json:"assessment_by_technology"`
	CoveragePercentage float64                   `json:"coverage_percentage"`
	Recommendations    []KMPRecommendation       `json:"recommendations"`
}

// BuildKMPAssessment 对照基础集评估已安装组件。
func BuildKMPAssessment(matrix model.ComponentMatrixBundle, records []model.ComponentRecord) *KMPResult {
	installed := installedNameSet(records)

	byTech := make(map[string]TechAssessment, len(matrix.Foundation))
	mandatoryTotal := 0
	mandatoryHave := 0

	var urgent, high []KMPRecommendation
	for _, entry := range matrix.Foundation {
		_, have := installed[normName(entry.Component)]
		byTech[entry.Technology] = TechAssessment{
			Component:  entry.Component,
			Installed:  have,
			Mandatory:  entry.Mandatory,
			Foundation: entry.Foundation,
		}

		if entry.Mandatory {
			mandatoryTotal++
			if have {
				mandatoryHave++
				continue
			}
			msg := fmt.Sprintf("Install %s to cover %s key performance monitoring", entry.Component, entry.Technology)
			if entry.Foundation {
				urgent = append(urgent, KMPRecommendation{Severity: "urgent", Message: msg})
			} else {
				high = append(high, KMPRecommendation{Severity: "high", Message: msg})
			}
		}
	}

	cov := healthagg.Pct(mandatoryHave, mandatoryTotal)

	recs := append(urgent, high...)
	if mandatoryTotal > 0 && mandatoryHave == mandatoryTotal {
		recs = append(recs, KMPRecommendation{
			Severity: "info",
			Message:  "All mandatory key performance monitoring components are installed",
		})
	}
	if recs == nil {
		recs = []KMPRecommendation{}
	}

	return &KMPResult{
		ByTechnology:       byTech,
		CoveragePercentage: cov,
		Recommendations:    recs,
	}
}
