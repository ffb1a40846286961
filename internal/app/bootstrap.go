package app

// Config 存放应用级默认路径配置。
type Config struct {
	DBPath         string
	MatrixRulePath string
	ImpactRulePath string
}

// DefaultConfig 返回本地开发环境的默认配置。
// 规则文件缺席时各加载器会回退到内置默认表，因此这里只给约定路径。
func DefaultConfig() Config {
	return Config{
		DBPath:         "data/health.db",
		MatrixRulePath: "rules/component_matrix.template.yaml",
		ImpactRulePath: "rules/business_impact.template.yaml",
	}
}
