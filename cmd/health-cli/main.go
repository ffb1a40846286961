package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"mainframe-health/internal/adapters/rules"
	"mainframe-health/internal/adapters/snapshot"
	sqliteadapter "mainframe-health/internal/adapters/store/sqlite"
	"mainframe-health/internal/app"
	"mainframe-health/internal/services/agentgw"
	"mainframe-health/internal/services/healthapi"
	"mainframe-health/internal/services/summarypdf"

	_ "modernc.org/sqlite"
)

// CLI 入口。所有子命令错误都统一输出到 stderr 并返回非 0 状态码。
func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run 是一级命令路由。
func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printUsage()
		return nil
	}

	switch args[0] {
	case "migrate":
		return runMigrate(ctx, args[1:])
	case "rules":
		return runRules(ctx, args[1:])
	case "import":
		return runImport(ctx, args[1:])
	case "report":
		return runReport(ctx, args[1:])
	case "components":
		return runComponents(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "manifest":
		return runManifest(ctx, args[1:])
	case "levels":
		return runLevels(ctx, args[1:])
	case "serve":
		return runServe(ctx, args[1:])
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// openDB 打开快照库并应用迁移。调用方负责 Close。
func openDB(ctx context.Context, dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	migrator := sqliteadapter.NewMigrator(db)
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return db, nil
}

// openService 组装报表服务：快照库 + 查找表。调用方负责 Close 返回的 db。
func openService(ctx context.Context, dbPath, matrixPath, impactPath string) (*sql.DB, *sqliteadapter.Store, *healthapi.Service, error) {
	db, err := openDB(ctx, dbPath)
	if err != nil {
		return nil, nil, nil, err
	}

	bundles, err := rules.NewLoader(matrixPath, impactPath).Load(ctx)
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("load rule bundles: %w", err)
	}

	store := sqliteadapter.NewStore(db)
	return db, store, healthapi.NewService(store, bundles), nil
}

// runMigrate 执行 SQLite 迁移，确保数据库结构完整。
func runMigrate(ctx context.Context, args []string) error {
	cfg := app.DefaultConfig()

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dbPath := fs.String("db", cfg.DBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := openDB(ctx, *dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Printf("migrations applied successfully: db=%s\n", *dbPath)
	return nil
}

// runRules 是二级命令路由，目前支持 rules validate。
func runRules(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printRulesUsage()
		return nil
	}

	switch args[0] {
	case "validate":
		return runRulesValidate(ctx, args[1:])
	default:
		printRulesUsage()
		return fmt.Errorf("unknown rules command: %s", args[0])
	}
}

// runRulesValidate 用于规则文件合法性检查，输出规则版本与哈希摘要。
func runRulesValidate(ctx context.Context, args []string) error {
	cfg := app.DefaultConfig()

	fs := flag.NewFlagSet("rules validate", flag.ContinueOnError)
	matrixPath := fs.String("matrix", cfg.MatrixRulePath, "component matrix rule file")
	impactPath := fs.String("impact", cfg.ImpactRulePath, "business impact rule file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loaded, err := rules.NewLoader(*matrixPath, *impactPath).Load(ctx)
	if err != nil {
		return err
	}

	fmt.Println("rule validation passed")
	fmt.Printf("matrix: version=%s technologies=%d profiles=%d foundation=%d sha256=%s\n",
		loaded.Matrix.Version,
		len(loaded.Matrix.Technologies),
		len(loaded.Matrix.Profiles),
		len(loaded.Matrix.Foundation),
		loaded.MatrixSHA256,
	)
	fmt.Printf("impact: version=%s groups=%d sha256=%s\n",
		loaded.Impact.Version,
		len(loaded.Impact.Groups),
		loaded.ImpactSHA256,
	)
	return nil
}

// runImport 读取 JSON 快照文件并写入本地库，完成后登记导入批次。
func runImport(ctx context.Context, args []string) error {
	cfg := app.DefaultConfig()

	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	dbPath := fs.String("db", cfg.DBPath, "sqlite database path")
	snapshotPath := fs.String("snapshot", "", "snapshot json file (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*snapshotPath) == "" {
		return fmt.Errorf("--snapshot is required")
	}

	f, err := snapshot.Read(*snapshotPath)
	if err != nil {
		return err
	}

	db, err := openDB(ctx, *dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	store := sqliteadapter.NewStore(db)

	if err := store.ImportRules(ctx, f.Rules); err != nil {
		return err
	}
	if err := store.ImportRuleValues(ctx, f.RuleValues); err != nil {
		return err
	}
	if err := store.ImportComponents(ctx, f.Components); err != nil {
		return err
	}
	if err := store.ImportComponentParts(ctx, f.ComponentParts); err != nil {
		return err
	}
	if err := store.ImportComponentObjects(ctx, f.ComponentObjects); err != nil {
		return err
	}

	source := strings.TrimSpace(f.Source)
	if source == "" {
		source = filepath.Base(*snapshotPath)
	}
	batchID, err := store.SaveImportBatch(ctx, source, sqliteadapter.ImportCounts{
		RuleValues: len(f.RuleValues),
		Rules:      len(f.Rules),
		Components: len(f.Components),
		Parts:      len(f.ComponentParts),
		Objects:    len(f.ComponentObjects),
	})
	if err != nil {
		return err
	}

	fmt.Println("snapshot import completed")
	fmt.Printf("batch_id=%s source=%s\n", batchID, source)
	fmt.Printf("rule_values=%d rules=%d components=%d parts=%d objects=%d\n",
		len(f.RuleValues), len(f.Rules), len(f.Components), len(f.ComponentParts), len(f.ComponentObjects))
	return nil
}

// runReport 是报表命令路由。
func runReport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printReportUsage()
		return nil
	}

	switch args[0] {
	case "systems":
		return runReportSystems(ctx, args[1:])
	case "health":
		return runReportHealth(ctx, args[1:])
	case "all":
		return runReportAll(ctx, args[1:])
	case "problems":
		return runReportProblems(ctx, args[1:])
	case "summary":
		return runReportSummary(ctx, args[1:])
	case "discover":
		return runReportDiscover(ctx, args[1:])
	default:
		printReportUsage()
		return fmt.Errorf("unknown report command: %s", args[0])
	}
}

// reportFlags 是报表子命令共享的标志集合。
type reportFlags struct {
	fs         *flag.FlagSet
	dbPath     *string
	matrixPath *string
	impactPath *string
}

func newReportFlags(name string) *reportFlags {
	cfg := app.DefaultConfig()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &reportFlags{
		fs:         fs,
		dbPath:     fs.String("db", cfg.DBPath, "sqlite database path"),
		matrixPath: fs.String("matrix", cfg.MatrixRulePath, "component matrix rule file"),
		impactPath: fs.String("impact", cfg.ImpactRulePath, "business impact rule file"),
	}
}

func runReportSystems(ctx context.Context, args []string) error {
	f := newReportFlags("report systems")
	days := f.fs.Int("days", 0, "reporting window in days (default 7)")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	db, _, api, err := openService(ctx, *f.dbPath, *f.matrixPath, *f.impactPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return printJSON(api.ShowSystems(ctx, *days))
}

func runReportHealth(ctx context.Context, args []string) error {
	f := newReportFlags("report health")
	systemID := f.fs.String("system-id", "", "system id (required)")
	days := f.fs.Int("days", 0, "reporting window in days (default 7)")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	db, _, api, err := openService(ctx, *f.dbPath, *f.matrixPath, *f.impactPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return printJSON(api.SystemHealth(ctx, *systemID, *days))
}

func runReportAll(ctx context.Context, args []string) error {
	f := newReportFlags("report all")
	days := f.fs.Int("days", 0, "reporting window in days (default 7)")
	maxRows := f.fs.Int("max-rows", 0, "record cap for the computation (default 100)")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	db, _, api, err := openService(ctx, *f.dbPath, *f.matrixPath, *f.impactPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return printJSON(api.AllSystemsHealth(ctx, *days, *maxRows))
}

func runReportProblems(ctx context.Context, args []string) error {
	f := newReportFlags("report problems")
	days := f.fs.Int("days", 0, "reporting window in days (default 7)")
	maxRows := f.fs.Int("max-rows", 0, "detail row cap (default 10)")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	db, _, api, err := openService(ctx, *f.dbPath, *f.matrixPath, *f.impactPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return printJSON(api.ProblemAreas(ctx, *days, *maxRows))
}

func runReportSummary(ctx context.Context, args []string) error {
	f := newReportFlags("report summary")
	systemID := f.fs.String("system-id", "", "optional system id")
	days := f.fs.Int("days", 0, "reporting window in days (default 7)")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	db, _, api, err := openService(ctx, *f.dbPath, *f.matrixPath, *f.impactPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return printJSON(api.ManagementSummary(ctx, *systemID, *days))
}

func runReportDiscover(ctx context.Context, args []string) error {
	f := newReportFlags("report discover")
	days := f.fs.Int("days", 0, "discovery window in days (default 30)")
	maxRows := f.fs.Int("max-rows", 0, "row cap (default 200)")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	db, _, api, err := openService(ctx, *f.dbPath, *f.matrixPath, *f.impactPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return printJSON(api.DiscoverContext(ctx, *days, *maxRows))
}

// runComponents 是组件命令路由。
func runComponents(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printComponentsUsage()
		return nil
	}

	switch args[0] {
	case "list":
		return runComponentsList(ctx, args[1:])
	case "find":
		return runComponentsFind(ctx, args[1:])
	case "recommend":
		return runComponentsRecommend(ctx, args[1:])
	case "kmp":
		return runComponentsKMP(ctx, args[1:])
	case "parts":
		return runComponentsParts(ctx, args[1:])
	case "objects":
		return runComponentsObjects(ctx, args[1:])
	default:
		printComponentsUsage()
		return fmt.Errorf("unknown components command: %s", args[0])
	}
}

func runComponentsList(ctx context.Context, args []string) error {
	f := newReportFlags("components list")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	db, _, api, err := openService(ctx, *f.dbPath, *f.matrixPath, *f.impactPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return printJSON(api.InstalledComponents(ctx))
}

func runComponentsFind(ctx context.Context, args []string) error {
	f := newReportFlags("components find")
	search := f.fs.String("search", "", "search term (required)")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	db, _, api, err := openService(ctx, *f.dbPath, *f.matrixPath, *f.impactPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return printJSON(api.FindComponents(ctx, *search))
}

func runComponentsRecommend(ctx context.Context, args []string) error {
	f := newReportFlags("components recommend")
	focus := f.fs.String("focus", "", "focus area: performance|capacity|database|transactions|basic (default performance)")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	db, _, api, err := openService(ctx, *f.dbPath, *f.matrixPath, *f.impactPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return printJSON(api.ComponentRecommendations(ctx, *focus))
}

func runComponentsKMP(ctx context.Context, args []string) error {
	f := newReportFlags("components kmp")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	db, _, api, err := openService(ctx, *f.dbPath, *f.matrixPath, *f.impactPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return printJSON(api.KMPAssessment(ctx))
}

func runComponentsParts(ctx context.Context, args []string) error {
	f := newReportFlags("components parts")
	component := f.fs.String("component", "", "component name (required)")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	db, _, api, err := openService(ctx, *f.dbPath, *f.matrixPath, *f.impactPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return printJSON(api.ComponentParts(ctx, *component))
}

func runComponentsObjects(ctx context.Context, args []string) error {
	f := newReportFlags("components objects")
	component := f.fs.String("component", "", "component name (required)")
	part := f.fs.String("part", "", "optional part name filter")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	db, _, api, err := openService(ctx, *f.dbPath, *f.matrixPath, *f.impactPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return printJSON(api.ComponentObjects(ctx, *component, *part))
}

// runExport 是导出命令路由，目前支持 export summary-pdf。
func runExport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printExportUsage()
		return nil
	}

	switch args[0] {
	case "summary-pdf":
		return runExportSummaryPDF(ctx, args[1:])
	default:
		printExportUsage()
		return fmt.Errorf("unknown export command: %s", args[0])
	}
}

func runExportSummaryPDF(ctx context.Context, args []string) error {
	f := newReportFlags("export summary-pdf")
	systemID := f.fs.String("system-id", "", "optional system id")
	days := f.fs.Int("days", 0, "reporting window in days (default 7)")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	db, store, api, err := openService(ctx, *f.dbPath, *f.matrixPath, *f.impactPath)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := summarypdf.Generate(ctx, store, api, summarypdf.Options{
		DBPath:   *f.dbPath,
		Days:     *days,
		SystemID: *systemID,
	})
	if err != nil {
		return err
	}

	fmt.Println("summary pdf export completed")
	fmt.Printf("report_id=%s\n", res.ReportID)
	fmt.Printf("pdf=%s\n", res.PDFPath)
	fmt.Printf("pdf_sha256=%s\n", res.PDFSHA256)
	return nil
}

// runManifest 输出数据目录清单，不访问数据库。
func runManifest(ctx context.Context, args []string) error {
	f := newReportFlags("manifest")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	db, _, api, err := openService(ctx, *f.dbPath, *f.matrixPath, *f.impactPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return printJSON(api.SchemaManifest(ctx))
}

// runLevels 输出健康级别字典，不访问数据库。
func runLevels(ctx context.Context, args []string) error {
	f := newReportFlags("levels")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	db, _, api, err := openService(ctx, *f.dbPath, *f.matrixPath, *f.impactPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return printJSON(api.ExplainHealthLevels(ctx))
}

// runServe 启动报表 HTTP 网关。
func runServe(ctx context.Context, args []string) error {
	cfg := app.DefaultConfig()

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	dbPath := fs.String("db", cfg.DBPath, "sqlite database path")
	matrixPath := fs.String("matrix", cfg.MatrixRulePath, "component matrix rule file")
	impactPath := fs.String("impact", cfg.ImpactRulePath, "business impact rule file")
	listen := fs.String("listen", "127.0.0.1:8972", "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// 支持 Ctrl+C 优雅退出。
	sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return agentgw.Run(sigCtx, agentgw.Options{
		DBPath:         *dbPath,
		MatrixRulePath: *matrixPath,
		ImpactRulePath: *impactPath,
		ListenAddr:     *listen,
	})
}

// printUsage 输出一级命令帮助。
func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  health-cli migrate [--db data/health.db]")
	fmt.Println("  health-cli rules validate [--matrix rules/component_matrix.template.yaml] [--impact rules/business_impact.template.yaml]")
	fmt.Println("  health-cli import --snapshot FILE [--db data/health.db]")
	fmt.Println("  health-cli report systems [--days 7]")
	fmt.Println("  health-cli report health --system-id SYS1 [--days 7]")
	fmt.Println("  health-cli report all [--days 7] [--max-rows 100]")
	fmt.Println("  health-cli report problems [--days 7] [--max-rows 10]")
	fmt.Println("  health-cli report summary [--system-id SYS1] [--days 7]")
	fmt.Println("  health-cli report discover [--days 30] [--max-rows 200]")
	fmt.Println("  health-cli components list")
	fmt.Println("  health-cli components find --search DB2")
	fmt.Println("  health-cli components recommend [--focus performance]")
	fmt.Println("  health-cli components kmp")
	fmt.Println("  health-cli components parts --component KPMDB2")
	fmt.Println("  health-cli components objects --component KPMDB2 [--part TABLES]")
	fmt.Println("  health-cli export summary-pdf [--system-id SYS1] [--days 7] [--db data/health.db]")
	fmt.Println("  health-cli manifest")
	fmt.Println("  health-cli levels")
	fmt.Println("  health-cli serve [--listen 127.0.0.1:8972] [--db data/health.db]")
}

// printRulesUsage 输出 rules 子命令帮助。
func printRulesUsage() {
	fmt.Println("Usage:")
	fmt.Println("  health-cli rules validate [--matrix path] [--impact path]")
}

// printReportUsage 输出 report 子命令帮助。
func printReportUsage() {
	fmt.Println("Usage:")
	fmt.Println("  health-cli report systems [--db path] [--days 7]")
	fmt.Println("  health-cli report health --system-id SYS1 [--db path] [--days 7]")
	fmt.Println("  health-cli report all [--db path] [--days 7] [--max-rows 100]")
	fmt.Println("  health-cli report problems [--db path] [--days 7] [--max-rows 10]")
	fmt.Println("  health-cli report summary [--system-id SYS1] [--db path] [--days 7]")
	fmt.Println("  health-cli report discover [--db path] [--days 30] [--max-rows 200]")
}

// printComponentsUsage 输出 components 子命令帮助。
func printComponentsUsage() {
	fmt.Println("Usage:")
	fmt.Println("  health-cli components list [--db path]")
	fmt.Println("  health-cli components find --search TERM [--db path]")
	fmt.Println("  health-cli components recommend [--focus area] [--db path]")
	fmt.Println("  health-cli components kmp [--db path]")
	fmt.Println("  health-cli components parts --component NAME [--db path]")
	fmt.Println("  health-cli components objects --component NAME [--part NAME] [--db path]")
}

func printExportUsage() {
	fmt.Println("Usage:")
	fmt.Println("  health-cli export summary-pdf [--system-id SYS1] [--days 7] [--db path]")
}

func printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
