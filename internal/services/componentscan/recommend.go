package componentscan

import (
	"strings"

	"mainframe-health/internal/domain/model"
	"mainframe-health/internal/services/healthagg"
)

// 安装推荐引擎：按聚焦画像计算缺失组件、覆盖率与分阶段安装计划。

// 未知聚焦领域回退到 performance 画像。
const fallbackFocusArea = "performance"

// 第三阶段最多推荐 5 个增强类组件，避免计划过长。
const maxEnhancementComponents = 5

// Phase 是安装计划中的一个阶段。
type Phase struct {
	Phase      string   `json:"phase"`
	Components []string `json:"components"`
	Reason     string   `json:"reason"`
}

// NextAction 指示下一步动作：有缺口时给出首个非空阶段，否则给完成提示。
type NextAction struct {
	Phase      string   `json:"phase,omitempty"`
	Components []string `json:"components,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// Plan 是一次安装推荐的完整结果。
type Plan struct {
	FocusArea           string     `json:"focus_area"`
	Description         string     `json:"description"`
	MissingEssential    []string   `json:"missing_essential"`
	MissingHighPriority []string   `json:"missing_high_priority"`
	MissingUseful       []string   `json:"missing_useful"`
	InstallationPlan    []Phase    `json:"installation_plan"`
	CoveragePercentage  float64    `json:"coverage_percentage"`
	NextAction          NextAction `json:"next_action"`
}

// BuildRecommendations 按聚焦领域对照已安装组件集计算安装计划。
// 覆盖率 = 已安装 ∩ (essential ∪ high_priority) / (essential ∪ high_priority)，保留 1 位小数。
func BuildRecommendations(matrix model.ComponentMatrixBundle, focusArea string, records []model.ComponentRecord) *Plan {
	profile, ok := matrix.Profile(focusArea)
	if !ok {
		profile, _ = matrix.Profile(fallbackFocusArea)
		focusArea = fallbackFocusArea
	}

	installed := installedNameSet(records)

	missingEssential := missing(profile.Essential, installed)
	missingHigh := missing(profile.HighPriority, installed)
	missingUseful := missing(profile.Useful, installed)

	var phases []Phase
	if len(missingEssential) > 0 {
		phases = append(phases, Phase{
			Phase:      "Phase 1 - Critical",
			Components: missingEssential,
			Reason:     "Core monitoring coverage is incomplete without these components",
		})
	}
	if len(missingHigh) > 0 {
		phases = append(phases, Phase{
			Phase:      "Phase 2 - High Priority",
			Components: missingHigh,
			Reason:     "Significantly improves diagnosis depth for this focus area",
		})
	}
	if len(missingUseful) > 0 {
		enhancement := missingUseful
		if len(enhancement) > maxEnhancementComponents {
			enhancement = enhancement[:maxEnhancementComponents]
		}
		phases = append(phases, Phase{
			Phase:      "Phase 3 - Enhancement",
			Components: enhancement,
			Reason:     "Optional depth once the core plan is complete",
		})
	}

	next := NextAction{Message: "All recommended components are installed"}
	if len(phases) > 0 {
		next = NextAction{Phase: phases[0].Phase, Components: phases[0].Components}
	}

	return &Plan{
		FocusArea:           focusArea,
		Description:         profile.Description,
		MissingEssential:    missingEssential,
		MissingHighPriority: missingHigh,
		MissingUseful:       missingUseful,
		InstallationPlan:    phases,
		CoveragePercentage:  coverage(profile, installed),
		NextAction:          next,
	}
}

// coverage 计算推荐组件（essential+high_priority 去重并集）的安装覆盖率，分母为 0 时返回 0。
func coverage(profile model.FocusProfile, installed map[string]struct{}) float64 {
	recommended := make(map[string]struct{})
	for _, n := range profile.Essential {
		recommended[normName(n)] = struct{}{}
	}
	for _, n := range profile.HighPriority {
		recommended[normName(n)] = struct{}{}
	}

	have := 0
	for n := range recommended {
		if _, ok := installed[n]; ok {
			have++
		}
	}
	return healthagg.Pct(have, len(recommended))
}

// missing 返回不在已安装集合中的名称，保持画像声明顺序。
func missing(names []string, installed map[string]struct{}) []string {
	var out []string
	for _, n := range names {
		if _, ok := installed[normName(n)]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// installedNameSet 收集已安装组件的归一化名称集合。
func installedNameSet(records []model.ComponentRecord) map[string]struct{} {
	out := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if rec.Installed() {
			out[normName(rec.Name)] = struct{}{}
		}
	}
	return out
}

func normName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
