package agentgw

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// 所有业务路由只接受 GET，参数一律走 query string，
// 与报表层的参数默认值保持一致（0 表示"用默认"）。

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.api.Healthcheck(r.Context()))
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.api.ExplainHealthLevels(r.Context()))
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.api.SchemaManifest(r.Context()))
}

func (s *Server) handleSystems(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	days := parseInt(r.URL.Query().Get("days"), 0)
	writeJSON(w, http.StatusOK, s.api.ShowSystems(r.Context(), days))
}

func (s *Server) handleSystemHealth(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.api.SystemHealth(r.Context(),
		q.Get("system_id"),
		parseInt(q.Get("days"), 0),
	))
}

func (s *Server) handleAllSystemsHealth(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.api.AllSystemsHealth(r.Context(),
		parseInt(q.Get("days"), 0),
		parseInt(q.Get("max_rows"), 0),
	))
}

func (s *Server) handleProblemAreas(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.api.ProblemAreas(r.Context(),
		parseInt(q.Get("days"), 0),
		parseInt(q.Get("max_rows"), 0),
	))
}

func (s *Server) handleManagementSummary(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.api.ManagementSummary(r.Context(),
		q.Get("system_id"),
		parseInt(q.Get("days"), 0),
	))
}

func (s *Server) handleDiscoverContext(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.api.DiscoverContext(r.Context(),
		parseInt(q.Get("days"), 0),
		parseInt(q.Get("max_rows"), 0),
	))
}

func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.api.InstalledComponents(r.Context()))
}

func (s *Server) handleFindComponents(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.api.FindComponents(r.Context(), r.URL.Query().Get("search")))
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.api.ComponentRecommendations(r.Context(), r.URL.Query().Get("focus")))
}

func (s *Server) handleKMP(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.api.KMPAssessment(r.Context()))
}

func (s *Server) handleParts(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.api.ComponentParts(r.Context(), r.URL.Query().Get("component")))
}

func (s *Server) handleObjects(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.api.ComponentObjects(r.Context(), q.Get("component"), q.Get("part")))
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
