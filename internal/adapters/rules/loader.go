package rules

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"mainframe-health/internal/domain/model"

	"gopkg.in/yaml.v3"
)

// Loader 负责从磁盘读取并校验静态查找表（组件矩阵 + 业务影响映射）。
// 文件缺席时回退到内置默认表；查找表在进程启动时加载一次，之后只读。
type Loader struct {
	MatrixFile string
	ImpactFile string
}

// LoadedBundles 是加载后的查找表集合和其文件哈希，用于留痕与版本确认。
// 使用内置默认表时哈希为 "builtin"。
type LoadedBundles struct {
	Matrix       model.ComponentMatrixBundle
	MatrixSHA256 string
	Impact       model.BusinessImpactBundle
	ImpactSHA256 string
}

func NewLoader(matrixFile, impactFile string) *Loader {
	return &Loader{MatrixFile: matrixFile, ImpactFile: impactFile}
}

// Load 按顺序加载组件矩阵与业务影响映射，并执行基础结构校验。
func (l *Loader) Load(ctx context.Context) (*LoadedBundles, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &LoadedBundles{
		Matrix:       DefaultMatrixBundle(),
		MatrixSHA256: "builtin",
		Impact:       DefaultImpactBundle(),
		ImpactSHA256: "builtin",
	}

	if raw, ok, err := readOptional(l.MatrixFile); err != nil {
		return nil, fmt.Errorf("read matrix rules: %w", err)
	} else if ok {
		var matrix model.ComponentMatrixBundle
		if err := yaml.Unmarshal(raw, &matrix); err != nil {
			return nil, fmt.Errorf("parse matrix rules: %w", err)
		}
		if err := validateMatrix(matrix); err != nil {
			return nil, err
		}
		sum := sha256.Sum256(raw)
		out.Matrix = matrix
		out.MatrixSHA256 = hex.EncodeToString(sum[:])
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if raw, ok, err := readOptional(l.ImpactFile); err != nil {
		return nil, fmt.Errorf("read impact rules: %w", err)
	} else if ok {
		var impact model.BusinessImpactBundle
		if err := yaml.Unmarshal(raw, &impact); err != nil {
			return nil, fmt.Errorf("parse impact rules: %w", err)
		}
		if err := validateImpact(impact); err != nil {
			return nil, err
		}
		sum := sha256.Sum256(raw)
		out.Impact = impact
		out.ImpactSHA256 = hex.EncodeToString(sum[:])
	}

	return out, nil
}

// readOptional 读取规则文件；路径为空或文件不存在时返回 ok=false，走内置默认。
func readOptional(path string) ([]byte, bool, error) {
	if strings.TrimSpace(path) == "" {
		return nil, false, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

// validateMatrix 检查组件矩阵的完整性与唯一性。
func validateMatrix(bundle model.ComponentMatrixBundle) error {
	if strings.TrimSpace(bundle.Version) == "" {
		return errors.New("matrix rules: version is required")
	}
	if strings.TrimSpace(bundle.BundleType) == "" {
		return errors.New("matrix rules: bundle_type is required")
	}
	if len(bundle.Technologies) == 0 {
		return errors.New("matrix rules: technologies is empty")
	}

	seen := make(map[string]struct{}, len(bundle.Technologies))
	for _, t := range bundle.Technologies {
		name := strings.ToUpper(strings.TrimSpace(t.Technology))
		if name == "" {
			return errors.New("matrix rules: technology name is required")
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("matrix rules: duplicate technology: %s", t.Technology)
		}
		seen[name] = struct{}{}

		if len(t.Essential)+len(t.Important)+len(t.Useful)+len(t.Optional) == 0 {
			return fmt.Errorf("matrix rules: no components listed for technology: %s", t.Technology)
		}
	}

	for _, kw := range bundle.Keywords {
		if strings.TrimSpace(kw.Keyword) == "" || strings.TrimSpace(kw.Technology) == "" {
			return errors.New("matrix rules: keyword entries need both keyword and technology")
		}
	}

	seenProfiles := make(map[string]struct{}, len(bundle.Profiles))
	for _, p := range bundle.Profiles {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" {
			return errors.New("matrix rules: profile name is required")
		}
		if _, ok := seenProfiles[name]; ok {
			return fmt.Errorf("matrix rules: duplicate profile: %s", p.Name)
		}
		seenProfiles[name] = struct{}{}
		if len(p.Essential) == 0 {
			return fmt.Errorf("matrix rules: profile %s has no essential components", p.Name)
		}
	}
	// 未知聚焦领域按约定回退到 performance，所以画像表必须包含它。
	if _, ok := seenProfiles["performance"]; len(bundle.Profiles) > 0 && !ok {
		return errors.New("matrix rules: profiles must include the performance fallback")
	}

	seenFoundation := make(map[string]struct{}, len(bundle.Foundation))
	for _, f := range bundle.Foundation {
		tech := strings.ToUpper(strings.TrimSpace(f.Technology))
		if tech == "" || strings.TrimSpace(f.Component) == "" {
			return errors.New("matrix rules: foundation entries need technology and component")
		}
		if _, ok := seenFoundation[tech]; ok {
			return fmt.Errorf("matrix rules: duplicate foundation technology: %s", f.Technology)
		}
		seenFoundation[tech] = struct{}{}
	}

	return nil
}

// validateImpact 检查业务影响映射的完整性与唯一性。
func validateImpact(bundle model.BusinessImpactBundle) error {
	if strings.TrimSpace(bundle.Version) == "" {
		return errors.New("impact rules: version is required")
	}
	if strings.TrimSpace(bundle.BundleType) == "" {
		return errors.New("impact rules: bundle_type is required")
	}
	if strings.TrimSpace(bundle.Fallback.Impact) == "" {
		return errors.New("impact rules: fallback impact is required")
	}

	seen := make(map[string]struct{}, len(bundle.Groups))
	for _, g := range bundle.Groups {
		key := strings.ToUpper(strings.TrimSpace(g.RuleGroup))
		if key == "" {
			return errors.New("impact rules: rule_group is required")
		}
		if _, ok := seen[key]; ok {
			return fmt.Errorf("impact rules: duplicate rule_group: %s", g.RuleGroup)
		}
		seen[key] = struct{}{}

		if strings.TrimSpace(g.DisplayName) == "" {
			return fmt.Errorf("impact rules: display_name is required: %s", g.RuleGroup)
		}
	}

	return nil
}
