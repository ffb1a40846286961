package healthapi

import (
	"context"
	"time"
)

// 静态说明类操作：连通性检查、数据目录清单、健康级别字典。
// 后两者不访问存储，内容随版本固化。

// HealthcheckResult 是服务自检结果。
type HealthcheckResult struct {
	Envelope
	Status       string `json:"status"`
	ServerTime   string `json:"server_time"`
	CurrentDate  string `json:"current_date"`
	RuleValues   int    `json:"rule_value_count"`
	MatrixSHA256 string `json:"matrix_rules_sha256"`
	ImpactSHA256 string `json:"impact_rules_sha256"`
}

// Healthcheck 探测快照库连通性并报告查找表指纹。
func (s *Service) Healthcheck(ctx context.Context) *HealthcheckResult {
	start := time.Now()

	probe, err := s.fetch.Probe(ctx)
	if err != nil {
		return &HealthcheckResult{Envelope: fail(start, 0, err), Status: "degraded"}
	}

	return &HealthcheckResult{
		Envelope:     done(start, 0),
		Status:       "ok",
		ServerTime:   probe.ServerTime,
		CurrentDate:  probe.CurrentDate,
		RuleValues:   probe.RuleValueCount,
		MatrixSHA256: s.bundles.MatrixSHA256,
		ImpactSHA256: s.bundles.ImpactSHA256,
	}
}

// TableDoc 描述一张上游数据源表及其本地快照表。
type TableDoc struct {
	SourceTable string `json:"source_table"`
	LocalTable  string `json:"local_table"`
	Purpose     string `json:"purpose"`
}

// ManifestResult 是数据目录清单。
type ManifestResult struct {
	Envelope
	Tables []TableDoc `json:"tables"`
}

// SchemaManifest 列出本工具消费的上游表及其本地对应关系。
func (s *Service) SchemaManifest(_ context.Context) *ManifestResult {
	start := time.Now()
	return &ManifestResult{
		Envelope: done(start, 0),
		Tables: []TableDoc{
			{SourceTable: "KPMZ_RULE_VALUES_V", LocalTable: "rule_values", Purpose: "Daily rule evaluation results per system/LPAR"},
			{SourceTable: "KPMZ_RULES", LocalTable: "rules", Purpose: "Rule definitions: group, description, unit of measure"},
			{SourceTable: "KPMZ_RULE_LEVELS", LocalTable: "-", Purpose: "Health level dictionary, mirrored by the levels operation"},
			{SourceTable: "KPMZ_CP_SCWL_HV", LocalTable: "-", Purpose: "Capacity workload history, not snapshotted"},
			{SourceTable: "DRLCOMPONENTS", LocalTable: "components", Purpose: "Component installation registry"},
			{SourceTable: "DRLCOMP_PARTS", LocalTable: "component_parts", Purpose: "Parts within each component"},
			{SourceTable: "DRLCOMP_OBJECTS", LocalTable: "component_objects", Purpose: "Objects within each component part"},
		},
	}
}

// LevelDoc 是健康级别字典的一项。
type LevelDoc struct {
	Level   int    `json:"level"`
	Name    string `json:"name"`
	Meaning string `json:"meaning"`
}

// LevelsResult 是健康级别字典。
type LevelsResult struct {
	Envelope
	Levels []LevelDoc `json:"levels"`
}

// ExplainHealthLevels 返回规则级别 0-4 的含义及其分桶归属。
func (s *Service) ExplainHealthLevels(_ context.Context) *LevelsResult {
	start := time.Now()
	return &LevelsResult{
		Envelope: done(start, 0),
		Levels: []LevelDoc{
			{Level: 0, Name: "Not Applicable", Meaning: "Rule was not evaluated for this system; excluded from severity averages"},
			{Level: 1, Name: "Good", Meaning: "Rule evaluated within normal thresholds"},
			{Level: 2, Name: "Warning", Meaning: "Rule exceeded warning threshold; monitor and plan remediation"},
			{Level: 3, Name: "Critical", Meaning: "Rule exceeded critical threshold; immediate attention required"},
			{Level: 4, Name: "Severe", Meaning: "Highest severity; counted as critical and sorted above level 3 in issue detail"},
		},
	}
}
