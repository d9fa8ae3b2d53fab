package wizard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/green-analyzer/internal/form"
	"github.com/ziadkadry99/green-analyzer/internal/projects"
	"github.com/ziadkadry99/green-analyzer/internal/share"
)

// RegisterRoutes mounts the wizard API. shareBase is the public URL of the
// shared report page.
func RegisterRoutes(r chi.Router, c *Controller, shareBase string) {
	r.Get("/api/boot", handleBoot(c))
	r.Get("/api/state", handleState(c))
	r.Get("/api/steps", handleSteps(c))
	r.Get("/api/fields", handleFields())
	r.Patch("/api/form", handleSetField(c))
	r.Post("/api/form/bulk", handleMerge(c))
	r.Delete("/api/errors/{field}", handleClearError(c))
	r.Post("/api/next", handleNext(c))
	r.Post("/api/back", handleBack(c))
	r.Post("/api/start-over", handleStartOver(c))
	r.Post("/api/session/restore", handleRestore(c))
	r.Post("/api/location", handleLocation(c))
	r.Post("/api/projects", handleSaveProject(c))
	r.Post("/api/projects/{id}/load", handleLoadProject(c))
	r.Delete("/api/projects/{id}", handleDeleteProject(c))
	r.Get("/api/share", handleShare(c, shareBase))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type bootResponse struct {
	Mode   string         `json:"mode"`
	State  *State         `json:"state,omitempty"`
	Shared *share.Payload `json:"shared,omitempty"`
}

func handleBoot(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if raw := r.URL.Query().Get(share.Param); raw != "" {
			p, err := share.Decode(raw)
			if err == nil {
				writeJSON(w, http.StatusOK, bootResponse{Mode: "shared", Shared: &p})
				return
			}
			c.logger.Warn("ignoring unreadable share link", "error", err)
		}
		if err := c.Boot(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		st := c.State()
		writeJSON(w, http.StatusOK, bootResponse{Mode: "normal", State: &st})
	}
}

func handleState(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.State())
	}
}

func handleSteps(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := c.State()
		writeJSON(w, http.StatusOK, map[string]any{"steps": st.Steps, "current": st.Step})
	}
}

func handleFields() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, form.Fields())
	}
}

type setFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func handleSetField(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setFieldRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := c.SetField(req.Field, req.Value); err != nil {
			writeError(w, formStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, c.State())
	}
}

type mergeRequest struct {
	Updates    form.Patch `json:"updates"`
	AutoFilled []string   `json:"autoFilled"`
}

func handleMerge(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mergeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := c.Merge(req.Updates, req.AutoFilled); err != nil {
			writeError(w, formStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, c.State())
	}
}

func formStatus(err error) int {
	switch {
	case errors.Is(err, form.ErrUnknownField), errors.Is(err, form.ErrInvalidOption), errors.Is(err, form.ErrNotSettable):
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func handleClearError(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.ClearError(chi.URLParam(r, "field"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleNext(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := c.Next()
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "validation failed", "errors": verr.Errors})
			return
		case errors.Is(err, ErrBusy):
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, c.State())
	}
}

func handleBack(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.Back()
		writeJSON(w, http.StatusOK, c.State())
	}
}

func handleStartOver(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.StartOver(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, c.State())
	}
}

type restoreRequest struct {
	Restore bool `json:"restore"`
}

func handleRestore(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req restoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		err := c.Restore(r.Context(), req.Restore)
		if errors.Is(err, ErrNoRestore) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, c.State())
	}
}

func handleLocation(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LocationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		report, err := c.LookupLocation(r.Context(), req)
		var nf *NotFoundError
		switch {
		case errors.Is(err, ErrNoLocator):
			writeError(w, http.StatusNotImplemented, err.Error())
			return
		case errors.As(err, &nf), errors.Is(err, ErrNoAddress):
			writeError(w, http.StatusNotFound, err.Error())
			return
		case errors.Is(err, ErrRoleFirst), errors.Is(err, ErrUnparseable):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"report": report, "state": c.State()})
	}
}

type saveProjectRequest struct {
	Name string `json:"name"`
}

func handleSaveProject(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := c.SaveProject(r.Context(), req.Name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func handleLoadProject(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := c.LoadProject(chi.URLParam(r, "id"))
		if errors.Is(err, projects.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, c.State())
	}
}

func handleDeleteProject(c *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := c.DeleteProject(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, projects.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func handleShare(c *Controller, base string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, err := c.ShareLink(base)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"link": link})
	}
}
