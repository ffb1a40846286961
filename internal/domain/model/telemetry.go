package model

// RuleValueRecord 是一条规则评估的原始遥测记录（对应 KPMZ_RULE_VALUES_V 一行）。
// 记录按请求读取、只被一次报表计算消费，随后丢弃，不做缓存。
type RuleValueRecord struct {
	SystemID      string `json:"system_id"`
	LPARName      string `json:"lpar_name"`
	ProcessorType string `json:"processor_type"`
	RuleID        string `json:"rule_id"`
	RuleGroup     string `json:"rule_group"`
	RuleLevel     int    `json:"rule_level"`
	Date          string `json:"date"`
	// Description 来自规则定义表的联查，缺失时为空串。
	Description string `json:"description,omitempty"`
}

// RuleDefinition 是规则定义（对应 KPMZ_RULES），按 rule_id 唯一。
type RuleDefinition struct {
	RuleID      string `json:"rule_id"`
	RuleGroup   string `json:"rule_group"`
	Description string `json:"description"`
	UOM         string `json:"uom"`
}

// HealthBucketCounts 是一个聚合键下的健康分桶计数。
// 不变式：Total = Critical + Warning + Good + NotApplicable。
type HealthBucketCounts struct {
	Total         int     `json:"total"`
	Critical      int     `json:"critical"`
	Warning       int     `json:"warning"`
	Good          int     `json:"good"`
	NotApplicable int     `json:"not_applicable"`
	AvgSeverity   float64 `json:"avg_severity"`
}

// GroupKey 是聚合用的复合键。按系统聚合时 RuleGroup 为空，反之亦然。
type GroupKey struct {
	SystemID  string
	RuleGroup string
}

// GroupHealth 是一个聚合键及其分桶计数，序列化时键字段内联展开。
type GroupHealth struct {
	SystemID  string `json:"system_id,omitempty"`
	RuleGroup string `json:"rule_group,omitempty"`
	HealthBucketCounts
}

// Key 返回该聚合条目的复合键。
func (g GroupHealth) Key() GroupKey {
	return GroupKey{SystemID: g.SystemID, RuleGroup: g.RuleGroup}
}

// ContextRow 是发现场景下的预聚合行：系统/LPAR/处理器类型组合及其记录数。
type ContextRow struct {
	SystemID      string `json:"system_id"`
	LPARName      string `json:"lpar"`
	ProcessorType string `json:"processor_type"`
	Count         int    `json:"count"`
}

// ProbeStatus 是快照库连通性探测的结果。
type ProbeStatus struct {
	ServerTime     string `json:"server_time"`
	CurrentDate    string `json:"current_date"`
	RuleValueCount int    `json:"rule_value_count"`
}

// RuleValueQuery 描述一次规则值读取的全部过滤条件。
// 所有上界都由调用方显式给出，保证单次计算的行数可控。
type RuleValueQuery struct {
	// Days 是时间窗口（最近 N 天），必须大于 0。
	Days int
	// SystemID 非空时只取该系统的记录（匹配前会转大写）。
	SystemID string
	// MinLevel 非零时只取 rule_level >= MinLevel 的记录。
	MinLevel int
	// MaxRows 非零时限制返回行数。
	MaxRows int
}
