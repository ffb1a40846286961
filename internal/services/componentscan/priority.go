package componentscan

import (
	"strings"

	"mainframe-health/internal/domain/model"
)

// 技术识别与优先级查询：关键词表有序，先匹配者生效；
// 技术已知但组件未入矩阵时默认 USEFUL。

// Tier 是组件在某技术领域内的优先级。
type Tier string

const (
	TierEssential Tier = "ESSENTIAL"
	TierImportant Tier = "IMPORTANT"
	TierUseful    Tier = "USEFUL"
	TierOptional  Tier = "OPTIONAL"
)

// TechnologyUnknown 表示检索词未命中任何技术关键词。
const TechnologyUnknown = "Unknown"

// ResolveTechnology 按关键词表把名称或检索词解析为技术领域。
func ResolveTechnology(matrix model.ComponentMatrixBundle, nameOrTerm string) string {
	up := strings.ToUpper(strings.TrimSpace(nameOrTerm))
	if up == "" {
		return TechnologyUnknown
	}
	for _, kw := range matrix.Keywords {
		if strings.Contains(up, strings.ToUpper(strings.TrimSpace(kw.Keyword))) {
			return kw.Technology
		}
	}
	return TechnologyUnknown
}

// ComponentPriority 返回组件在检索词所指技术领域内的优先级。
// 按 ESSENTIAL -> IMPORTANT -> USEFUL -> OPTIONAL 顺序扫描；
// 技术未知或组件未入矩阵时返回 USEFUL。
func ComponentPriority(matrix model.ComponentMatrixBundle, componentName, searchTerm string) (Tier, string) {
	tech := ResolveTechnology(matrix, searchTerm)
	if tech == TechnologyUnknown {
		return TierUseful, tech
	}

	tm, ok := matrix.Technology(tech)
	if !ok {
		return TierUseful, tech
	}

	name := strings.ToUpper(strings.TrimSpace(componentName))
	tiers := []struct {
		tier  Tier
		names []string
	}{
		{TierEssential, tm.Essential},
		{TierImportant, tm.Important},
		{TierUseful, tm.Useful},
		{TierOptional, tm.Optional},
	}
	for _, t := range tiers {
		for _, n := range t.names {
			if strings.ToUpper(strings.TrimSpace(n)) == name {
				return t.tier, tech
			}
		}
	}
	return TierUseful, tech
}
