package healthapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"mainframe-health/internal/domain/model"
	"mainframe-health/internal/services/componentscan"
)

// 组件类操作：安装清单、检索与切面分类、安装推荐、KMP 评估、层次下钻。
// 组件操作不带时间窗口，信封里 days 恒为 0 并被省略。

// ComponentsResult 是组件安装清单。
type ComponentsResult struct {
	Envelope
	Total        int                     `json:"total"`
	Installed    []model.ComponentRecord `json:"installed"`
	NotInstalled []model.ComponentRecord `json:"not_installed"`
	Other        []model.ComponentRecord `json:"other"`
}

// InstalledComponents 列出全部组件并按安装状态拆分。
func (s *Service) InstalledComponents(ctx context.Context) *ComponentsResult {
	start := time.Now()

	records, err := s.fetch.QueryComponents(ctx, "")
	if err != nil {
		return &ComponentsResult{Envelope: fail(start, 0, err)}
	}

	installed, notInstalled, other := componentscan.SplitByStatus(records)
	return &ComponentsResult{
		Envelope:     done(start, 0),
		Total:        len(records),
		Installed:    installed,
		NotInstalled: notInstalled,
		Other:        other,
	}
}

// InstallRecommendation 是检索结果中的一条安装建议。
type InstallRecommendation struct {
	Component  string `json:"component"`
	Priority   string `json:"priority"`
	Technology string `json:"technology"`
}

// FindComponentsResult 是组件检索结果：已装/未装各自按切面分组 + 定向安装建议。
type FindComponentsResult struct {
	Envelope
	SearchTerm           string                             `json:"search_term"`
	Technology           string                             `json:"technology"`
	TotalMatched         int                                `json:"total_matched"`
	InstalledCount       int                                `json:"installed_count"`
	InstalledByAspect    map[string][]model.ComponentRecord `json:"installed_by_aspect"`
	NotInstalledByAspect map[string][]model.ComponentRecord `json:"not_installed_by_aspect"`
	Recommendations      []InstallRecommendation            `json:"recommendations"`
}

// FindComponents 按检索词匹配组件，已装与未装子集分别按功能切面分组。
// 对未安装且在矩阵中标为 ESSENTIAL/IMPORTANT 的组件给出安装建议。
func (s *Service) FindComponents(ctx context.Context, searchTerm string) *FindComponentsResult {
	start := time.Now()

	term := strings.TrimSpace(searchTerm)
	if term == "" {
		return &FindComponentsResult{Envelope: fail(start, 0, errors.New("search term is required"))}
	}

	records, err := s.fetch.QueryComponents(ctx, term)
	if err != nil {
		return &FindComponentsResult{Envelope: fail(start, 0, err), SearchTerm: term}
	}

	installed, notInstalled, _ := componentscan.SplitByStatus(records)

	var recs []InstallRecommendation
	for _, rec := range notInstalled {
		tier, tech := componentscan.ComponentPriority(s.bundles.Matrix, rec.Name, term)
		if tier != componentscan.TierEssential && tier != componentscan.TierImportant {
			continue
		}
		recs = append(recs, InstallRecommendation{
			Component:  rec.Name,
			Priority:   string(tier),
			Technology: tech,
		})
	}

	return &FindComponentsResult{
		Envelope:             done(start, 0),
		SearchTerm:           term,
		Technology:           componentscan.ResolveTechnology(s.bundles.Matrix, term),
		TotalMatched:         len(records),
		InstalledCount:       len(installed),
		InstalledByAspect:    componentscan.GroupByAspect(installed, term),
		NotInstalledByAspect: componentscan.GroupByAspect(notInstalled, term),
		Recommendations:      recs,
	}
}

// RecommendationsResult 是安装推荐计划的信封包装。
type RecommendationsResult struct {
	Envelope
	*componentscan.Plan
}

// ComponentRecommendations 按聚焦领域生成安装推荐计划。
// focusArea 为空或未知时由推荐引擎回退到 performance 画像。
func (s *Service) ComponentRecommendations(ctx context.Context, focusArea string) *RecommendationsResult {
	start := time.Now()

	records, err := s.fetch.QueryComponents(ctx, "")
	if err != nil {
		return &RecommendationsResult{Envelope: fail(start, 0, err)}
	}

	return &RecommendationsResult{
		Envelope: done(start, 0),
		Plan:     componentscan.BuildRecommendations(s.bundles.Matrix, focusArea, records),
	}
}

// KMPAssessmentResult 是 KMP 基础覆盖评估的信封包装。
type KMPAssessmentResult struct {
	Envelope
	*componentscan.KMPResult
}

// KMPAssessment 对照基础组件集评估关键性能监控覆盖。
func (s *Service) KMPAssessment(ctx context.Context) *KMPAssessmentResult {
	start := time.Now()

	records, err := s.fetch.QueryComponents(ctx, "")
	if err != nil {
		return &KMPAssessmentResult{Envelope: fail(start, 0, err)}
	}

	return &KMPAssessmentResult{
		Envelope:  done(start, 0),
		KMPResult: componentscan.BuildKMPAssessment(s.bundles.Matrix, records),
	}
}

// PartsResult 是组件部件清单。
type PartsResult struct {
	Envelope
	Component string                `json:"component"`
	Total     int                   `json:"total"`
	Parts     []model.ComponentPart `json:"parts"`
}

// ComponentParts 列出某组件下的全部部件。
func (s *Service) ComponentParts(ctx context.Context, componentName string) *PartsResult {
	start := time.Now()

	name := strings.TrimSpace(componentName)
	if name == "" {
		return &PartsResult{Envelope: fail(start, 0, errors.New("component name is required"))}
	}

	parts, err := s.fetch.QueryComponentParts(ctx, name)
	if err != nil {
		return &PartsResult{Envelope: fail(start, 0, err), Component: name}
	}

	return &PartsResult{
		Envelope:  done(start, 0),
		Component: name,
		Total:     len(parts),
		Parts:     parts,
	}
}

// ObjectsResult 是组件对象清单，附带按部件分组的视图。
type ObjectsResult struct {
	Envelope
	Component string                             `json:"component"`
	Part      string                             `json:"part,omitempty"`
	Total     int                                `json:"total"`
	Objects   []model.ComponentObject            `json:"objects"`
	ByPart    map[string][]model.ComponentObject `json:"by_part"`
}

// ComponentObjects 列出某组件（可选限定部件）下的全部对象。
func (s *Service) ComponentObjects(ctx context.Context, componentName, partName string) *ObjectsResult {
	start := time.Now()

	name := strings.TrimSpace(componentName)
	if name == "" {
		return &ObjectsResult{Envelope: fail(start, 0, errors.New("component name is required"))}
	}
	part := strings.TrimSpace(partName)

	objects, err := s.fetch.QueryComponentObjects(ctx, name, part)
	if err != nil {
		return &ObjectsResult{Envelope: fail(start, 0, err), Component: name, Part: part}
	}

	return &ObjectsResult{
		Envelope:  done(start, 0),
		Component: name,
		Part:      part,
		Total:     len(objects),
		Objects:   objects,
		ByPart:    componentscan.GroupObjectsByPart(objects),
	}
}
