package model

// 组件安装状态码约定（对应 DRLCOMPONENTS.STATUS）：
// "I" 表示已安装，空串表示未安装，其余非空值原样透传为"其他状态"。
const StatusCodeInstalled = "I"

// ComponentRecord 是一条组件安装记录（对应 DRLCOMPONENTS）。
type ComponentRecord struct {
	Name        string `json:"component_name"`
	Status      string `json:"status"`
	Description string `json:"description"`
	InstalledAt string `json:"time_installed,omitempty"`
	InstalledBy string `json:"user_id,omitempty"`
}

// Installed 判断该记录是否处于已安装状态。
func (c ComponentRecord) Installed() bool {
	return c.Status == StatusCodeInstalled
}

// ComponentPart 是组件下的部件记录（对应 DRLCOMP_PARTS）。
type ComponentPart struct {
	ComponentName string `json:"component_name"`
	PartName      string `json:"part_name"`
	Status        string `json:"status"`
	Description   string `json:"description"`
}

// ComponentObject 是部件下的对象记录（对应 DRLCOMP_OBJECTS），
// 组件 -> 部件 -> 对象构成三级层次。
type ComponentObject struct {
	ComponentName string `json:"component_name"`
	PartName      string `json:"part_name"`
	ObjectName    string `json:"object_name"`
	Status        string `json:"status"`
	Description   string `json:"description"`
}
