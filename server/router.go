package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"penney-bench/server/engine"
	"penney-bench/server/errs"
	"penney-bench/server/store"
	"penney-bench/server/sweep"
)

func Router(st store.ResultStore, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true})
	})

	// Batch headers, newest first
	r.Get("/api/batches", func(w http.ResponseWriter, r *http.Request) {
		limit, err := intParam(r, "limit", 0)
		if err != nil {
			writeError(w, log, err)
			return
		}
		rows, err := st.ListBatches(r.Context(), limit)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, map[string]any{"rows": rows})
	})

	r.Route("/api/batches/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			id, err := batchID(r)
			if err != nil {
				writeError(w, log, err)
				return
			}
			b, err := st.LoadBatch(r.Context(), id)
			if err != nil {
				writeError(w, log, err)
				return
			}
			writeJSON(w, map[string]any{"batch": b, "merged": b.Merged()})
		})

		// Flat records, one per ordered pattern pair
		r.Get("/records", func(w http.ResponseWriter, r *http.Request) {
			id, err := batchID(r)
			if err != nil {
				writeError(w, log, err)
				return
			}
			mode, err := engine.ParseMode(r.URL.Query().Get("mode"))
			if err != nil {
				writeError(w, log, err)
				return
			}
			recs, err := st.Records(r.Context(), id, mode)
			if err != nil {
				writeError(w, log, err)
				return
			}
			writeJSON(w, map[string]any{"batch_id": id, "mode": mode, "rows": recs})
		})

		// Pivoted table with display rates
		r.Get("/matrix", func(w http.ResponseWriter, r *http.Request) {
			id, err := batchID(r)
			if err != nil {
				writeError(w, log, err)
				return
			}
			mode, err := engine.ParseMode(r.URL.Query().Get("mode"))
			if err != nil {
				writeError(w, log, err)
				return
			}
			b, err := st.LoadBatch(r.Context(), id)
			if err != nil {
				writeError(w, log, err)
				return
			}
			writeJSON(w, sweep.Pivot(&b, mode))
		})
	})

	// Records addressed by (deck count, seed, mode), newest batch wins
	r.Get("/api/lookup", func(w http.ResponseWriter, r *http.Request) {
		decks, err := intParam(r, "decks", 0)
		if err != nil {
			writeError(w, log, err)
			return
		}
		if decks <= 0 {
			writeError(w, log, errs.Configurationf("decks must be > 0"))
			return
		}
		seed, err := strconv.ParseInt(r.URL.Query().Get("seed"), 10, 64)
		if err != nil {
			writeError(w, log, errs.Configurationf("seed: %v", err))
			return
		}
		mode, err := engine.ParseMode(r.URL.Query().Get("mode"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		b, err := st.FindBatch(r.Context(), decks, seed)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, map[string]any{"batch_id": b.ID, "mode": mode, "rows": b.Matrix(mode).Records()})
	})

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	code, ok := errs.CodeOf(err)
	if !ok {
		code = errs.CodeStorage
	}
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": err.Error(), "code": code})
}

func batchID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Configurationf("bad batch id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

func intParam(r *http.Request, key string, def int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.Configurationf("%s: %v", key, err)
	}
	return n, nil
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)))
		})
	}
}
