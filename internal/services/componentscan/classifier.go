package componentscan

import (
	"strings"

	"mainframe-health/internal/domain/model"
)

// 组件分类器：按安装状态和功能切面归类组件安装记录。
// 切面判定是一条有序规则链，对大写化的名称/描述逐条求值，先命中者生效。
// 规则顺序是契约的一部分：调整顺序会改变歧义名称的归类结果。

// StatusClass 是归一化后的安装状态。
type StatusClass string

const (
	StatusInstalled    StatusClass = "installed"
	StatusNotInstalled StatusClass = "not_installed"
	StatusOther        StatusClass = "other"
)

// ClassifyStatus 把原始状态码映射为状态类别："I" 已安装、空串未安装、其余透传为其他。
func ClassifyStatus(code string) StatusClass {
	switch code {
	case model.StatusCodeInstalled:
		return StatusInstalled
	case "":
		return StatusNotInstalled
	default:
		return StatusOther
	}
}

// Aspect 是组件的功能切面。
type Aspect string

const (
	AspectPerformance Aspect = "Performance_Monitoring"
	AspectAnalytics   Aspect = "Analytics"
	AspectCapacity    Aspect = "Capacity_Planning"
	AspectMonitoring  Aspect = "Monitoring"
	AspectCore        Aspect = "Core_Component"
	AspectOther       Aspect = "Other/Extension"
)

// aspectRule 是切面规则链的一项：谓词 + 命中结果。
type aspectRule struct {
	match  func(name, desc, term string) bool
	aspect Aspect
}

// aspectRules 按固定顺序求值。入参均已大写化。
var aspectRules = []aspectRule{
	{
		match: func(name, desc, _ string) bool {
			return strings.Contains(name, "AKD") || strings.Contains(name, "KPM") ||
				strings.Contains(desc, "KEY PERFORMANCE")
		},
		aspect: AspectPerformance,
	},
	{
		match: func(name, desc, _ string) bool {
			return strings.Contains(name, "ADB2") || strings.Contains(name, "AZPM") ||
				strings.Contains(desc, "ANALYTICS")
		},
		aspect: AspectAnalytics,
	},
	{
		match: func(name, desc, _ string) bool {
			return strings.Contains(name, "CP_") || strings.Contains(desc, "CAPACITY PLANNING")
		},
		aspect: AspectCapacity,
	},
	{
		match: func(name, desc, _ string) bool {
			return strings.Contains(name, "MON") || strings.Contains(desc, "MONITORING")
		},
		aspect: AspectMonitoring,
	},
	{
		match: func(name, _, term string) bool {
			return term != "" && name == term
		},
		aspect: AspectCore,
	},
}

// ClassifyAspect 返回组件的功能切面。
// searchTerm 是定位到该组件家族的检索词，名称与之完全相等时归为核心组件。
func ClassifyAspect(name, description, searchTerm string) Aspect {
	upName := strings.ToUpper(strings.TrimSpace(name))
	upDesc := strings.ToUpper(strings.TrimSpace(description))
	upTerm := strings.ToUpper(strings.TrimSpace(searchTerm))

	for _, rule := range aspectRules {
		if rule.match(upName, upDesc, upTerm) {
			return rule.aspect
		}
	}
	return AspectOther
}

// SplitByStatus 把记录按安装状态拆成三份，保持输入顺序。
func SplitByStatus(records []model.ComponentRecord) (installed, notInstalled, other []model.ComponentRecord) {
	for _, rec := range records {
		switch ClassifyStatus(rec.Status) {
		case StatusInstalled:
			installed = append(installed, rec)
		case StatusNotInstalled:
			notInstalled = append(notInstalled, rec)
		default:
			other = append(other, rec)
		}
	}
	return installed, notInstalled, other
}

// GroupByAspect 把记录按功能切面分组，组内保持输入顺序。
func GroupByAspect(records []model.ComponentRecord, searchTerm string) map[string][]model.ComponentRecord {
	out := make(map[string][]model.ComponentRecord)
	for _, rec := range records {
		aspect := string(ClassifyAspect(rec.Name, rec.Description, searchTerm))
		out[aspect] = append(out[aspect], rec)
	}
	return out
}
