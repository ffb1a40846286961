package discovery

import (
	"sort"

	"mainframe-health/internal/domain/model"
)

// 上下文发现服务：把系统/LPAR/处理器类型的预聚合计数按系统分组，
// 组内按活跃度（记录数）降序展示，超出上限的配置以"还有 N 项"计数收尾。

const defaultPerSystemCap = 10

// Configuration 是一个系统下的 LPAR/处理器类型组合及其记录数。
type Configuration struct {
	LPARName      string `json:"lpar"`
	ProcessorType string `json:"processor_type"`
	Count         int    `json:"count"`
}

// SystemContext 是一个系统的活跃配置视图。
type SystemContext struct {
	SystemID       string          `json:"system_id"`
	Configurations []Configuration `json:"configurations"`
	// MoreConfigurations 是因上限被截断的配置数量，0 表示已完整展示。
	MoreConfigurations int `json:"more_configurations,omitempty"`
}

// Group 按系统分组上下文行。perSystemCap 限制每个系统展示的配置数，<=0 时取 10。
// 系统按 ID 升序；组内按 count 降序，并以 LPAR/处理器类型字典序打破平局，保证结果稳定。
func Group(rows []model.ContextRow, perSystemCap int) []SystemContext {
	if perSystemCap <= 0 {
		perSystemCap = defaultPerSystemCap
	}

	bySystem := make(map[string][]Configuration)
	for _, r := range rows {
		bySystem[r.SystemID] = append(bySystem[r.SystemID], Configuration{
			LPARName:      r.LPARName,
			ProcessorType: r.ProcessorType,
			Count:         r.Count,
		})
	}

	systemIDs := make([]string, 0, len(bySystem))
	for id := range bySystem {
		systemIDs = append(systemIDs, id)
	}
	sort.Strings(systemIDs)

	out := make([]SystemContext, 0, len(systemIDs))
	for _, id := range systemIDs {
		configs := bySystem[id]
		sort.Slice(configs, func(i, j int) bool {
			if configs[i].Count != configs[j].Count {
				return configs[i].Count > configs[j].Count
			}
			if configs[i].LPARName != configs[j].LPARName {
				return configs[i].LPARName < configs[j].LPARName
			}
			return configs[i].ProcessorType < configs[j].ProcessorType
		})

		more := 0
		if len(configs) > perSystemCap {
			more = len(configs) - perSystemCap
			configs = configs[:perSystemCap]
		}

		out = append(out, SystemContext{
			SystemID:           id,
			Configurations:     configs,
			MoreConfigurations: more,
		})
	}
	return out
}
