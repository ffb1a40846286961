package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func TestRead_ValidSnapshot(t *testing.T) {
	path := writeSnapshot(t, `{
		"source": "izpca-export",
		"rule_values": [
			{"system_id": "SYS1", "rule_id": "R1", "rule_group": "DB2Z", "rule_level": 3, "date": "2026-08-20"}
		],
		"rules": [
			{"rule_id": "R1", "rule_group": "DB2Z", "description": "Buffer pool"}
		],
		"components": [
			{"component_name": "KPMDB2", "status": "I"}
		]
	}`)

	f, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if f.Source != "izpca-export" {
		t.Fatalf("source=%s", f.Source)
	}
	if len(f.RuleValues) != 1 || len(f.Rules) != 1 || len(f.Components) != 1 {
		t.Fatalf("counts=%d/%d/%d", len(f.RuleValues), len(f.Rules), len(f.Components))
	}
}

func TestRead_RejectsBadLevel(t *testing.T) {
	path := writeSnapshot(t, `{
		"rule_values": [
			{"system_id": "SYS1", "rule_id": "R1", "rule_group": "DB2Z", "rule_level": 9, "date": "2026-08-20"}
		]
	}`)

	_, err := Read(path)
	if err == nil || !strings.Contains(err.Error(), "rule_level") {
		t.Fatalf("err=%v, want rule_level error", err)
	}
}

func TestRead_RejectsBadDate(t *testing.T) {
	path := writeSnapshot(t, `{
		"rule_values": [
			{"system_id": "SYS1", "rule_id": "R1", "rule_group": "DB2Z", "rule_level": 1, "date": "20/08/2026"}
		]
	}`)

	_, err := Read(path)
	if err == nil || !strings.Contains(err.Error(), "date") {
		t.Fatalf("err=%v, want date error", err)
	}
}

func TestRead_RejectsMissingKeyFields(t *testing.T) {
	path := writeSnapshot(t, `{
		"component_parts": [
			{"component_name": "", "part_name": "TABLES"}
		]
	}`)

	_, err := Read(path)
	if err == nil || !strings.Contains(err.Error(), "component_parts[0]") {
		t.Fatalf("err=%v, want component_parts index error", err)
	}
}
