package rules

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_BuiltinFallbackWhenFilesMissing(t *testing.T) {
	loader := NewLoader("", "no/such/file.yaml")
	loaded, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.MatrixSHA256 != "builtin" || loaded.ImpactSHA256 != "builtin" {
		t.Fatalf("sha256=%s/%s, want builtin/builtin", loaded.MatrixSHA256, loaded.ImpactSHA256)
	}
	if len(loaded.Matrix.Technologies) == 0 || len(loaded.Impact.Groups) == 0 {
		t.Fatalf("builtin bundles empty: technologies=%d groups=%d", len(loaded.Matrix.Technologies), len(loaded.Impact.Groups))
	}

	// 内置画像表必须包含 performance 回退画像。
	if _, ok := loaded.Matrix.Profile("performance"); !ok {
		t.Fatalf("builtin matrix missing performance profile")
	}
}

func TestLoad_FileOverridesBuiltinAndHasHash(t *testing.T) {
	dir := t.TempDir()
	matrixPath := filepath.Join(dir, "matrix.yaml")
	content := `
version: "9.9.9"
bundle_type: component_matrix
technologies:
  - technology: DB2
    essential: [DB2]
keywords:
  - { keyword: DB2, technology: DB2 }
profiles:
  - name: performance
    essential: [KPMDB2]
`
	if err := os.WriteFile(matrixPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write matrix: %v", err)
	}

	loaded, err := NewLoader(matrixPath, "").Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Matrix.Version != "9.9.9" {
		t.Fatalf("matrix version=%s, want 9.9.9", loaded.Matrix.Version)
	}
	if loaded.MatrixSHA256 == "builtin" || len(loaded.MatrixSHA256) != 64 {
		t.Fatalf("matrix sha256=%s, want real hash", loaded.MatrixSHA256)
	}
	// 业务影响未提供文件，仍走内置。
	if loaded.ImpactSHA256 != "builtin" {
		t.Fatalf("impact sha256=%s, want builtin", loaded.ImpactSHA256)
	}
}

func TestLoad_DuplicateTechnologyRejected(t *testing.T) {
	dir := t.TempDir()
	matrixPath := filepath.Join(dir, "matrix.yaml")
	content := `
version: "1.0.0"
bundle_type: component_matrix
technologies:
  - technology: DB2
    essential: [DB2]
  - technology: db2
    essential: [KPMDB2]
`
	if err := os.WriteFile(matrixPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write matrix: %v", err)
	}

	_, err := NewLoader(matrixPath, "").Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "duplicate technology") {
		t.Fatalf("err=%v, want duplicate technology", err)
	}
}

func TestLoad_ProfilesRequirePerformanceFallback(t *testing.T) {
	dir := t.TempDir()
	matrixPath := filepath.Join(dir, "matrix.yaml")
	content := `
version: "1.0.0"
bundle_type: component_matrix
technologies:
  - technology: DB2
    essential: [DB2]
profiles:
  - name: capacity
    essential: [CP_CPU]
`
	if err := os.WriteFile(matrixPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write matrix: %v", err)
	}

	_, err := NewLoader(matrixPath, "").Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "performance fallback") {
		t.Fatalf("err=%v, want performance fallback error", err)
	}
}

func TestDefaultBundles_Consistent(t *testing.T) {
	matrix := DefaultMatrixBundle()
	if err := validateMatrix(matrix); err != nil {
		t.Fatalf("builtin matrix invalid: %v", err)
	}
	impact := DefaultImpactBundle()
	if err := validateImpact(impact); err != nil {
		t.Fatalf("builtin impact invalid: %v", err)
	}

	// 未收录 rule_group 的回退要带原名。
	entry := impact.Resolve("SOMETHING_NEW")
	if entry.DisplayName != "SOMETHING_NEW" || entry.Impact == "" {
		t.Fatalf("fallback entry=%+v", entry)
	}
}
