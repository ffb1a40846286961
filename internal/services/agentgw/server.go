package agentgw

import (
	"log"
	"net/http"
	"time"

	"mainframe-health/internal/services/healthapi"
)

// Server 持有路由所需的运行时对象。
// 报表层自带信封语义（ok/error/ms），因此所有业务路由统一返回 200，
// 调用方通过信封里的 ok 字段判断成败；HTTP 状态码只表达传输层问题。
type Server struct {
	opts Options
	api  *healthapi.Service
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/levels", s.handleLevels)
	mux.HandleFunc("/api/manifest", s.handleManifest)

	mux.HandleFunc("/api/systems", s.handleSystems)
	mux.HandleFunc("/api/system-health", s.handleSystemHealth)
	mux.HandleFunc("/api/all-systems-health", s.handleAllSystemsHealth)
	mux.HandleFunc("/api/problem-areas", s.handleProblemAreas)
	mux.HandleFunc("/api/management-summary", s.handleManagementSummary)
	mux.HandleFunc("/api/discover-context", s.handleDiscoverContext)

	mux.HandleFunc("/api/components", s.handleComponents)
	mux.HandleFunc("/api/components/find", s.handleFindComponents)
	mux.HandleFunc("/api/components/recommendations", s.handleRecommendations)
	mux.HandleFunc("/api/components/kmp", s.handleKMP)
	mux.HandleFunc("/api/components/parts", s.handleParts)
	mux.HandleFunc("/api/components/objects", s.handleObjects)
}

// logRequests 给每个请求打一行访问日志：方法、路径、耗时。
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
