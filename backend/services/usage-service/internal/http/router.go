package httpserver

import (
	"net/http"
	"sort"
	"strings"

	"energydash/backend/services/usage-service/internal/http/handlers"
	"energydash/backend/services/usage-service/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	UsageHandlers    *handlers.UsageHandlers
	SettingsHandlers *handlers.SettingsHandlers
	ChatHandler      *handlers.ChatHandler
	LiveHandler      *handlers.LiveHandler
	HealthHandler    http.HandlerFunc
}

// NewRouter wires HTTP routes. Everything under /api requires authentication.
func NewRouter(deps RouterDeps, authMiddleware func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", method(http.MethodGet, deps.HealthHandler))

	authenticated := func(handler http.Handler) http.Handler {
		return middleware.Chain(handler, authMiddleware)
	}

	usage := deps.UsageHandlers
	mux.Handle("/api/usage", authenticated(methods(map[string]http.HandlerFunc{
		http.MethodGet:  usage.List,
		http.MethodPost: usage.Create,
	})))
	mux.Handle("/api/predict-usage", authenticated(method(http.MethodGet, http.HandlerFunc(usage.Predict))))
	mux.Handle("/api/energy-tips", authenticated(method(http.MethodGet, http.HandlerFunc(usage.Tips))))
	mux.Handle("/api/calculate-bill", authenticated(method(http.MethodPost, http.HandlerFunc(usage.Bill))))
	mux.Handle("/api/export-csv", authenticated(method(http.MethodGet, http.HandlerFunc(usage.ExportCSV))))

	settings := deps.SettingsHandlers
	mux.Handle("/api/goal", authenticated(methods(map[string]http.HandlerFunc{
		http.MethodGet: settings.GetGoal,
		http.MethodPut: settings.PutGoal,
	})))
	mux.Handle("/api/alerts", authenticated(methods(map[string]http.HandlerFunc{
		http.MethodGet: settings.GetAlerts,
		http.MethodPut: settings.PutAlerts,
	})))

	if deps.ChatHandler != nil {
		mux.Handle("/api/chat", authenticated(method(http.MethodPost, http.HandlerFunc(deps.ChatHandler.Chat))))
	}
	if deps.LiveHandler != nil {
		mux.Handle("/api/usage/live", authenticated(method(http.MethodGet, http.HandlerFunc(deps.LiveHandler.Live))))
	}

	return mux
}

func method(expected string, handler http.Handler) http.Handler {
	return methods(map[string]http.HandlerFunc{expected: handler.ServeHTTP})
}

func methods(byMethod map[string]http.HandlerFunc) http.Handler {
	allowed := make([]string, 0, len(byMethod))
	for m := range byMethod {
		allowed = append(allowed, m)
	}
	sort.Strings(allowed)
	allow := strings.Join(allowed, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := byMethod[r.Method]
		if !ok {
			w.Header().Set("Allow", allow)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	})
}
