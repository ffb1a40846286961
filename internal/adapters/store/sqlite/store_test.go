package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"mainframe-health/internal/domain/model"

	_ "modernc.org/sqlite"
)

// 测试用内存库：每个用例独立建库并应用迁移。
func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	if err := NewMigrator(db).Up(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(db)
}

func daysAgo(n int) string {
	return time.Now().AddDate(0, 0, -n).Format("2006-01-02")
}

func TestQueryRuleValues_WindowAndFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.ImportRuleValues(ctx, []model.RuleValueRecord{
		{SystemID: "sys1", RuleGroup: "db2z", RuleID: "R1", RuleLevel: 3, Date: daysAgo(1)},
		{SystemID: "SYS1", RuleGroup: "DASD", RuleID: "R2", RuleLevel: 2, Date: daysAgo(3)},
		{SystemID: "SYS2", RuleGroup: "LPAR", RuleID: "R3", RuleLevel: 1, Date: daysAgo(1)},
		{SystemID: "SYS1", RuleGroup: "DB2Z", RuleID: "R4", RuleLevel: 3, Date: daysAgo(30)},
	})
	if err != nil {
		t.Fatalf("import rule values: %v", err)
	}

	// 7 天窗口应排除 30 天前的记录。
	rows, err := store.QueryRuleValues(ctx, model.RuleValueQuery{Days: 7})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d, want 3", len(rows))
	}

	// 系统过滤不区分大小写（入库和查询都做了大写规整）。
	rows, err = store.QueryRuleValues(ctx, model.RuleValueQuery{Days: 7, SystemID: "sys1"})
	if err != nil {
		t.Fatalf("query by system: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("sys1 rows=%d, want 2", len(rows))
	}
	for _, r := range rows {
		if r.SystemID != "SYS1" {
			t.Fatalf("system_id=%s, want SYS1", r.SystemID)
		}
	}

	// min_level 下推。
	rows, err = store.QueryRuleValues(ctx, model.RuleValueQuery{Days: 7, MinLevel: 2})
	if err != nil {
		t.Fatalf("query by min level: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("min_level rows=%d, want 2", len(rows))
	}

	// 行数上限。
	rows, err = store.QueryRuleValues(ctx, model.RuleValueQuery{Days: 7, MaxRows: 1})
	if err != nil {
		t.Fatalf("query with cap: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("capped rows=%d, want 1", len(rows))
	}
}

func TestQueryRuleValues_DescriptionFromRulesJoin(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.ImportRules(ctx, []model.RuleDefinition{
		{RuleID: "R1", RuleGroup: "DB2Z", Description: "Buffer pool hit ratio"},
	}); err != nil {
		t.Fatalf("import rules: %v", err)
	}
	if err := store.ImportRuleValues(ctx, []model.RuleValueRecord{
		{SystemID: "SYS1", RuleGroup: "DB2Z", RuleID: "R1", RuleLevel: 3, Date: daysAgo(1)},
		{SystemID: "SYS1", RuleGroup: "DB2Z", RuleID: "R9", RuleLevel: 2, Date: daysAgo(1)},
	}); err != nil {
		t.Fatalf("import rule values: %v", err)
	}

	rows, err := store.QueryRuleValues(ctx, model.RuleValueQuery{Days: 7})
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	byRule := make(map[string]string, len(rows))
	for _, r := range rows {
		byRule[r.RuleID] = r.Description
	}
	if byRule["R1"] != "Buffer pool hit ratio" {
		t.Fatalf("R1 description=%q", byRule["R1"])
	}
	// 无定义的规则描述为空串而非查询失败。
	if byRule["R9"] != "" {
		t.Fatalf("R9 description=%q, want empty", byRule["R9"])
	}
}

func TestQueryRuleValues_DaysRequired(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.QueryRuleValues(context.Background(), model.RuleValueQuery{}); err == nil {
		t.Fatalf("expected error for days=0")
	}
}

func TestQueryContext_GroupingAndCap(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var records []model.RuleValueRecord
	for i := 0; i < 4; i++ {
		records = append(records, model.RuleValueRecord{
			SystemID: "SYS1", LPARName: "LP1", ProcessorType: "CP",
			RuleGroup: "DB2Z", RuleID: fmt.Sprintf("R%d", i), RuleLevel: 1, Date: daysAgo(2),
		})
	}
	records = append(records, model.RuleValueRecord{
		SystemID: "SYS2", LPARName: "LP9", ProcessorType: "ZIIP",
		RuleGroup: "LPAR", RuleID: "RX", RuleLevel: 1, Date: daysAgo(2),
	})
	if err := store.ImportRuleValues(ctx, records); err != nil {
		t.Fatalf("import: %v", err)
	}

	rows, err := store.QueryContext(ctx, 30, 0)
	if err != nil {
		t.Fatalf("query context: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("context rows=%d, want 2", len(rows))
	}
	if rows[0].SystemID != "SYS1" || rows[0].Count != 4 {
		t.Fatalf("first row=%+v, want SYS1/4", rows[0])
	}

	capped, err := store.QueryContext(ctx, 30, 1)
	if err != nil {
		t.Fatalf("query context capped: %v", err)
	}
	if len(capped) != 1 {
		t.Fatalf("capped rows=%d, want 1", len(capped))
	}
}

func TestQueryComponents_PatternMatching(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.ImportComponents(ctx, []model.ComponentRecord{
		{Name: "KPMDB2", Status: "I", Description: "Key performance for DB2"},
		{Name: "CP_CPU", Status: "", Description: "Capacity planning CPU"},
		{Name: "NWMON", Status: "I", Description: "network monitoring"},
	}); err != nil {
		t.Fatalf("import components: %v", err)
	}

	all, err := store.QueryComponents(ctx, "")
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all=%d, want 3", len(all))
	}

	// 名称或描述命中都算，匹配不区分大小写。
	db2, err := store.QueryComponents(ctx, "db2")
	if err != nil {
		t.Fatalf("query db2: %v", err)
	}
	if len(db2) != 1 || db2[0].Name != "KPMDB2" {
		t.Fatalf("db2 matches=%+v", db2)
	}

	mon, err := store.QueryComponents(ctx, "MONITOR")
	if err != nil {
		t.Fatalf("query monitor: %v", err)
	}
	if len(mon) != 1 || mon[0].Name != "NWMON" {
		t.Fatalf("monitor matches=%+v", mon)
	}
}

func TestComponentHierarchyQueries(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.ImportComponentParts(ctx, []model.ComponentPart{
		{ComponentName: "KPMDB2", PartName: "TABLES", Status: "I"},
		{ComponentName: "KPMDB2", PartName: "REPORTS", Status: "I"},
		{ComponentName: "OTHER", PartName: "X", Status: "I"},
	}); err != nil {
		t.Fatalf("import parts: %v", err)
	}
	if err := store.ImportComponentObjects(ctx, []model.ComponentObject{
		{ComponentName: "KPMDB2", PartName: "TABLES", ObjectName: "T1"},
		{ComponentName: "KPMDB2", PartName: "TABLES", ObjectName: "T2"},
		{ComponentName: "KPMDB2", PartName: "REPORTS", ObjectName: "R1"},
	}); err != nil {
		t.Fatalf("import objects: %v", err)
	}

	parts, err := store.QueryComponentParts(ctx, "kpmdb2")
	if err != nil {
		t.Fatalf("query parts: %v", err)
	}
	if len(parts) != 2 || parts[0].PartName != "REPORTS" {
		t.Fatalf("parts=%+v, want REPORTS first (name order)", parts)
	}

	objects, err := store.QueryComponentObjects(ctx, "KPMDB2", "TABLES")
	if err != nil {
		t.Fatalf("query objects: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("objects=%d, want 2", len(objects))
	}

	allObjects, err := store.QueryComponentObjects(ctx, "KPMDB2", "")
	if err != nil {
		t.Fatalf("query all objects: %v", err)
	}
	if len(allObjects) != 3 {
		t.Fatalf("all objects=%d, want 3", len(allObjects))
	}
}

func TestImportComponents_UpsertByName(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.ImportComponents(ctx, []model.ComponentRecord{
		{Name: "KPMDB2", Status: "", Description: "old"},
	}); err != nil {
		t.Fatalf("first import: %v", err)
	}
	if err := store.ImportComponents(ctx, []model.ComponentRecord{
		{Name: "KPMDB2", Status: "I", Description: "new"},
	}); err != nil {
		t.Fatalf("second import: %v", err)
	}

	rows, err := store.QueryComponents(ctx, "")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 || rows[0].Status != "I" || rows[0].Description != "new" {
		t.Fatalf("rows=%+v, want single upserted record", rows)
	}
}

func TestProbeAndBatchRegistry(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	probe, err := store.Probe(ctx)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if probe.CurrentDate == "" || probe.RuleValueCount != 0 {
		t.Fatalf("probe=%+v", probe)
	}

	batchID, err := store.SaveImportBatch(ctx, "unit-test", ImportCounts{RuleValues: 5})
	if err != nil {
		t.Fatalf("save batch: %v", err)
	}
	if batchID == "" {
		t.Fatalf("empty batch id")
	}

	reportID, err := store.SaveReport(ctx, "management_summary_pdf", "/tmp/x.pdf", "abc", "test-0.1")
	if err != nil {
		t.Fatalf("save report: %v", err)
	}
	if reportID == "" {
		t.Fatalf("empty report id")
	}
}
