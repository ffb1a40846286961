package rules

import "mainframe-health/internal/domain/model"

// 内置默认查找表：规则文件缺席时使用，保证"安装即用"。
// 内容与仓库内 rules/*.yaml 模板保持一致。

// DefaultMatrixBundle 返回内置的组件矩阵。
func DefaultMatrixBundle() model.ComponentMatrixBundle {
	return model.ComponentMatrixBundle{
		Version:     "builtin-1.0.0",
		BundleType:  "component_matrix",
		Maintainer:  "platform-team",
		Description: "Builtin technology/tier component matrix, focus profiles and KMP foundation set",
		Technologies: []model.TechnologyMatrix{
			{
				Technology: "DB2",
				Essential:  []string{"DB2", "KPMDB2"},
				Important:  []string{"ADB2"},
				Useful:     []string{"CP_DB2"},
				Optional:   []string{"AZPM"},
			},
			{
				Technology: "CICS",
				Essential:  []string{"CICS", "KPMCICS"},
				Important:  []string{"CICSMON"},
				Useful:     []string{"CP_CICS"},
			},
			{
				Technology: "IMS",
				Essential:  []string{"IMS", "KPMIMS"},
				Useful:     []string{"CP_IMS"},
			},
			{
				Technology: "MQ",
				Essential:  []string{"MQ", "KPMMQ"},
				Optional:   []string{"AZPM"},
			},
			{
				Technology: "z/OS_SYSTEM",
				Essential:  []string{"MVS", "KPMZOS"},
				Important:  []string{"AKDZOS"},
				Useful:     []string{"CP_CPU", "CP_STORAGE"},
				Optional:   []string{"AZPM"},
			},
			{
				Technology: "NETWORK",
				Essential:  []string{"NETWORK"},
				Important:  []string{"NWMON"},
				Useful:     []string{"CP_NW"},
			},
		},
		// 关键词有序：MVS/ZOS 在 NW/NET 之前，避免 "MVSNET" 之类名称被误判为网络。
		Keywords: []model.TechnologyKeyword{
			{Keyword: "DB2", Technology: "DB2"},
			{Keyword: "CICS", Technology: "CICS"},
			{Keyword: "IMS", Technology: "IMS"},
			{Keyword: "MQ", Technology: "MQ"},
			{Keyword: "MVS", Technology: "z/OS_SYSTEM"},
			{Keyword: "ZOS", Technology: "z/OS_SYSTEM"},
			{Keyword: "Z/OS", Technology: "z/OS_SYSTEM"},
			{Keyword: "NW", Technology: "NETWORK"},
			{Keyword: "NET", Technology: "NETWORK"},
		},
		Profiles: []model.FocusProfile{
			{
				Name:         "performance",
				Description:  "Key performance monitoring across core subsystems",
				Essential:    []string{"KPMZOS", "KPMDB2", "KPMCICS"},
				HighPriority: []string{"AKDZOS", "ADB2"},
				Useful:       []string{"CP_CPU", "CP_DB2", "CP_CICS", "CP_STORAGE", "CP_NW", "AZPM"},
			},
			{
				Name:         "capacity",
				Description:  "Capacity planning coverage",
				Essential:    []string{"CP_CPU", "CP_STORAGE"},
				HighPriority: []string{"CP_DB2", "CP_CICS"},
				Useful:       []string{"CP_NW", "CP_IMS", "AZPM"},
			},
			{
				Name:         "database",
				Description:  "Database monitoring and analytics",
				Essential:    []string{"DB2", "KPMDB2"},
				HighPriority: []string{"ADB2"},
				Useful:       []string{"CP_DB2", "AZPM"},
			},
			{
				Name:         "transactions",
				Description:  "Transaction processing coverage",
				Essential:    []string{"CICS", "KPMCICS"},
				HighPriority: []string{"CICSMON"},
				Useful:       []string{"CP_CICS", "KPMIMS"},
			},
			{
				Name:         "basic",
				Description:  "Baseline component coverage",
				Essential:    []string{"MVS", "DB2", "CICS"},
				HighPriority: []string{"KPMZOS"},
				Useful:       []string{"NETWORK", "IMS", "MQ"},
			},
		},
		Foundation: []model.KMPFoundationEntry{
			{Technology: "z/OS_SYSTEM", Component: "KPMZOS", Mandatory: true, Foundation: true},
			{Technology: "DB2", Component: "KPMDB2", Mandatory: true},
			{Technology: "CICS", Component: "KPMCICS", Mandatory: true},
			{Technology: "IMS", Component: "KPMIMS"},
			{Technology: "MQ", Component: "KPMMQ"},
		},
	}
}

// DefaultImpactBundle 返回内置的业务影响映射。
func DefaultImpactBundle() model.BusinessImpactBundle {
	return model.BusinessImpactBundle{
		Version:     "builtin-1.0.0",
		BundleType:  "business_impact",
		Maintainer:  "platform-team",
		Description: "Builtin rule_group to business language translations",
		Fallback: model.BusinessImpactEntry{
			Impact:         "System performance impact",
			Urgency:        "MEDIUM - requires investigation",
			ResolutionTime: "2-6 hours technical analysis",
		},
		Groups: []model.BusinessImpactEntry{
			{
				RuleGroup:      "DB2Z",
				DisplayName:    "Database Performance",
				Impact:         "Transaction delays and application slowdowns",
				Urgency:        "HIGH - affects online workloads",
				ResolutionTime: "2-4 hours DBA analysis",
			},
			{
				RuleGroup:      "DASD",
				DisplayName:    "Storage Systems",
				Impact:         "Batch overruns and potential space abends",
				Urgency:        "HIGH - risk of job failures",
				ResolutionTime: "1-3 hours storage team",
			},
			{
				RuleGroup:      "LPAR",
				DisplayName:    "Resource Allocation",
				Impact:         "CPU contention across partitions",
				Urgency:        "MEDIUM - monitor capacity",
				ResolutionTime: "4-8 hours capacity planning",
			},
			{
				RuleGroup:      "CICS",
				DisplayName:    "Transaction Processing",
				Impact:         "Online response time degradation",
				Urgency:        "HIGH - customer facing",
				ResolutionTime: "2-4 hours CICS admin",
			},
			{
				RuleGroup:      "MVS",
				DisplayName:    "Operating System",
				Impact:         "System stability and throughput risk",
				Urgency:        "HIGH - platform wide",
				ResolutionTime: "2-6 hours systems programmer",
			},
			{
				RuleGroup:      "NW",
				DisplayName:    "Network",
				Impact:         "Connectivity and latency issues",
				Urgency:        "MEDIUM - monitor links",
				ResolutionTime: "1-4 hours network team",
			},
		},
	}
}
