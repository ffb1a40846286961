package componentscan

import "mainframe-health/internal/domain/model"

// 组件层次视图：组件 -> 部件 -> 对象，这里提供对象按部件的分组，组内保持输入顺序。

// GroupObjectsByPart 按部件名分组对象记录。
func GroupObjectsByPart(objects []model.ComponentObject) map[string][]model.ComponentObject {
	out := make(map[string][]model.ComponentObject)
	for _, o := range objects {
		out[o.PartName] = append(out[o.PartName], o)
	}
	return out
}
