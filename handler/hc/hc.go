package hc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

func Handler(version string, checks map[string]Check) http.Handler {
	t := time.Now()
	fn := func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		failures := map[string]string{}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				failures[name] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}

		body := map[string]any{
			"version": version,
			"uptime":  time.Since(t).String(),
		}

		if len(failures) > 0 {
			body["failures"] = failures
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}

	return http.HandlerFunc(fn)
}
