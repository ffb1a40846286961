package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"mainframe-health/internal/domain/model"
)

// 快照读取器：解析从上游库导出的 JSON 快照文件。
// 文件是一次性的全量导出，这里只做结构与取值校验，不做去重——
// 去重语义由存储层的 upsert 决定（rule_values 除外，按追加处理）。

// File 是快照文件的顶层结构。
type File struct {
	Source           string                  `json:"source"`
	ExportedAt       string                  `json:"exported_at"`
	RuleValues       []model.RuleValueRecord `json:"rule_values"`
	Rules            []model.RuleDefinition  `json:"rules"`
	Components       []model.ComponentRecord `json:"components"`
	ComponentParts   []model.ComponentPart   `json:"component_parts"`
	ComponentObjects []model.ComponentObject `json:"component_objects"`
}

// Read 读取并校验快照文件。
func Read(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if err := validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// validate 逐条检查必填字段与取值范围，错误信息带下标便于定位。
func validate(f *File) error {
	for i, r := range f.RuleValues {
		if strings.TrimSpace(r.SystemID) == "" {
			return fmt.Errorf("snapshot: rule_values[%d]: system_id is required", i)
		}
		if strings.TrimSpace(r.RuleID) == "" {
			return fmt.Errorf("snapshot: rule_values[%d]: rule_id is required", i)
		}
		if strings.TrimSpace(r.RuleGroup) == "" {
			return fmt.Errorf("snapshot: rule_values[%d]: rule_group is required", i)
		}
		if r.RuleLevel < 0 || r.RuleLevel > 4 {
			return fmt.Errorf("snapshot: rule_values[%d]: rule_level must be 0-4, got %d", i, r.RuleLevel)
		}
		if _, err := time.Parse("2006-01-02", r.Date); err != nil {
			return fmt.Errorf("snapshot: rule_values[%d]: date must be YYYY-MM-DD, got %q", i, r.Date)
		}
	}

	for i, r := range f.Rules {
		if strings.TrimSpace(r.RuleID) == "" {
			return fmt.Errorf("snapshot: rules[%d]: rule_id is required", i)
		}
		if strings.TrimSpace(r.RuleGroup) == "" {
			return fmt.Errorf("snapshot: rules[%d]: rule_group is required", i)
		}
	}

	for i, c := range f.Components {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("snapshot: components[%d]: component_name is required", i)
		}
	}
	for i, p := range f.ComponentParts {
		if strings.TrimSpace(p.ComponentName) == "" || strings.TrimSpace(p.PartName) == "" {
			return fmt.Errorf("snapshot: component_parts[%d]: component_name and part_name are required", i)
		}
	}
	for i, o := range f.ComponentObjects {
		if strings.TrimSpace(o.ComponentName) == "" || strings.TrimSpace(o.PartName) == "" || strings.TrimSpace(o.ObjectName) == "" {
			return fmt.Errorf("snapshot: component_objects[%d]: component_name, part_name and object_name are required", i)
		}
	}

	return nil
}
