package report

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/green-analyzer/internal/share"
	"github.com/ziadkadry99/green-analyzer/internal/wizard"
)

// RegisterRoutes mounts the printable report of the working session and
// the read-only shared report.
func RegisterRoutes(r chi.Router, rr *Renderer, c *wizard.Controller, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	r.Get("/report", handleReport(rr, c, logger))
	r.Get("/shared", handleShared(rr, logger))
}

func handleReport(rr *Renderer, c *wizard.Controller, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := c.State()
		writePage(w, rr, View{Form: st.Form, Results: st.Results}, logger)
	}
}

func handleShared(rr *Renderer, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := share.Decode(r.URL.Query().Get(share.Param))
		if err != nil {
			http.Error(w, "invalid share link", http.StatusBadRequest)
			return
		}
		writePage(w, rr, View{Form: p.FormData, Results: p.AnalysisResults, Shared: true}, logger)
	}
}

func writePage(w http.ResponseWriter, rr *Renderer, v View, logger *slog.Logger) {
	var buf bytes.Buffer
	if err := rr.Render(&buf, v); err != nil {
		logger.Error("rendering report failed", "error", err)
		http.Error(w, "could not render report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
