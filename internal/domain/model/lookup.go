package model

import "strings"

// 本文件定义两类静态查找表的结构：
// - 组件矩阵（技术 -> 优先级 -> 组件名、关键词表、聚焦画像、KMP 基础集）
// - 业务影响映射（rule_group -> 业务语言描述）
// 两者在进程启动时加载一次，之后只读，不持有任何运行态数据。

// ComponentMatrixBundle 是组件矩阵规则文件的顶层结构。
type ComponentMatrixBundle struct {
	Version      string               `yaml:"version"`
	BundleType   string               `yaml:"bundle_type"`
	Maintainer   string               `yaml:"maintainer"`
	Description  string               `yaml:"description"`
	Technologies []TechnologyMatrix   `yaml:"technologies"`
	Keywords     []TechnologyKeyword  `yaml:"keywords"`
	Profiles     []FocusProfile       `yaml:"profiles"`
	Foundation   []KMPFoundationEntry `yaml:"kmp_foundation"`
}

// TechnologyMatrix 定义一个技术领域的组件分级。
// 各级列表有序：推荐顺序即列表顺序。
type TechnologyMatrix struct {
	Technology string   `yaml:"technology"`
	Essential  []string `yaml:"essential"`
	Important  []string `yaml:"important"`
	Useful     []string `yaml:"useful"`
	Optional   []string `yaml:"optional"`
}

// TechnologyKeyword 是技术识别关键词表的一项，按文件顺序先匹配者生效。
type TechnologyKeyword struct {
	Keyword    string `yaml:"keyword"`
	Technology string `yaml:"technology"`
}

// FocusProfile 定义一个安装推荐画像（聚焦领域）。
type FocusProfile struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Essential    []string `yaml:"essential"`
	HighPriority []string `yaml:"high_priority"`
	Useful       []string `yaml:"useful"`
}

// KMPFoundationEntry 定义 KMP 评估的基础组件集合中的一项。
type KMPFoundationEntry struct {
	Technology string `yaml:"technology"`
	Component  string `yaml:"component"`
	Mandatory  bool   `yaml:"mandatory"`
	Foundation bool   `yaml:"foundation"`
}

// Technology 按名称（不区分大小写）查找技术矩阵。
func (b ComponentMatrixBundle) Technology(name string) (TechnologyMatrix, bool) {
	for _, t := range b.Technologies {
		if strings.EqualFold(strings.TrimSpace(t.Technology), strings.TrimSpace(name)) {
			return t, true
		}
	}
	return TechnologyMatrix{}, false
}

// Profile 按名称查找聚焦画像；不存在时返回 false，由调用方决定回退。
func (b ComponentMatrixBundle) Profile(name string) (FocusProfile, bool) {
	for _, p := range b.Profiles {
		if strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name)) {
			return p, true
		}
	}
	return FocusProfile{}, false
}

// BusinessImpactBundle 是业务影响映射文件的顶层结构。
type BusinessImpactBundle struct {
	Version     string                `yaml:"version"`
	BundleType  string                `yaml:"bundle_type"`
	Maintainer  string                `yaml:"maintainer"`
	Description string                `yaml:"description"`
	Fallback    BusinessImpactEntry   `yaml:"fallback"`
	Groups      []BusinessImpactEntry `yaml:"groups"`
}

// BusinessImpactEntry 把一个技术 rule_group 翻译为业务语言。
type BusinessImpactEntry struct {
	RuleGroup      string `yaml:"rule_group" json:"rule_group,omitempty"`
	DisplayName    string `yaml:"display_name" json:"display_name"`
	Impact         string `yaml:"impact" json:"impact"`
	Urgency        string `yaml:"urgency" json:"urgency"`
	ResolutionTime string `yaml:"resolution_time" json:"resolution_time"`
}

// Resolve 按 rule_group 查找业务影响描述。
// 未收录的 rule_group 回退到通用描述，display_name 用 rule_group 原名填充。
func (b BusinessImpactBundle) Resolve(ruleGroup string) BusinessImpactEntry {
	key := strings.ToUpper(strings.TrimSpace(ruleGroup))
	for _, g := range b.Groups {
		if strings.ToUpper(strings.TrimSpace(g.RuleGroup)) == key {
			return g
		}
	}
	out := b.Fallback
	out.RuleGroup = ruleGroup
	if strings.TrimSpace(out.DisplayName) == "" {
		out.DisplayName = ruleGroup
	}
	return out
}
