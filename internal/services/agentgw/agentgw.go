package agentgw

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"mainframe-health/internal/adapters/rules"
	sqliteadapter "mainframe-health/internal/adapters/store/sqlite"
	"mainframe-health/internal/app"
	"mainframe-health/internal/services/healthapi"

	_ "modernc.org/sqlite"
)

// Options 定义报表 HTTP 网关的启动参数。
// 面向本机代理/脚本消费，默认只监听回环地址，不做鉴权。
type Options struct {
	DBPath         string
	MatrixRulePath string
	ImpactRulePath string
	ListenAddr     string
}

// Run 启动 HTTP 网关：打开快照库、加载查找表、注册路由并阻塞服务。
// ctx 取消时优雅停机。
func Run(ctx context.Context, opts Options) error {
	defaults := app.DefaultConfig()
	if opts.DBPath == "" {
		opts.DBPath = defaults.DBPath
	}
	if opts.MatrixRulePath == "" {
		opts.MatrixRulePath = defaults.MatrixRulePath
	}
	if opts.ImpactRulePath == "" {
		opts.ImpactRulePath = defaults.ImpactRulePath
	}
	if opts.ListenAddr == "" {
		opts.ListenAddr = "127.0.0.1:8972"
	}

	if err := os.MkdirAll(filepath.Dir(opts.DBPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", opts.DBPath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		return fmt.Errorf("set busy_timeout: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}

	migrator := sqliteadapter.NewMigrator(db)
	if err := migrator.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	bundles, err := rules.NewLoader(opts.MatrixRulePath, opts.ImpactRulePath).Load(ctx)
	if err != nil {
		return fmt.Errorf("load rule bundles: %w", err)
	}

	s := &Server{
		opts: opts,
		api:  healthapi.NewService(sqliteadapter.NewStore(db), bundles),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	httpServer := &http.Server{
		Addr:              opts.ListenAddr,
		Handler:           logRequests(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Printf("health gateway listening: http://%s\n", opts.ListenAddr)
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
