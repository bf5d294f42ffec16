package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/batchsort/pkg/buildinfo"
	apperrors "github.com/matzehuels/batchsort/pkg/errors"
	"github.com/matzehuels/batchsort/pkg/pipeline"
	"github.com/matzehuels/batchsort/pkg/scene"
	"github.com/matzehuels/batchsort/pkg/store"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	sc, err := s.readScene(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts, err := s.optionsFromQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rep, err := s.runner.Optimize(r.Context(), sc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), rep); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInternal, err, "save report"))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	sc, err := s.readScene(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pipeline.Count(sc))
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rep, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, apperrors.New(apperrors.ErrCodeReportNotFound, "report %q not found", id))
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// readScene decodes and validates the request body.
func (s *Server) readScene(w http.ResponseWriter, r *http.Request) (*scene.Scene, error) {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	defer body.Close()
	return scene.ReadJSON(body)
}

// optionsFromQuery applies apply_unchanged, panel and refresh query
// parameters on top of the server defaults.
func (s *Server) optionsFromQuery(r *http.Request) (pipeline.Options, error) {
	opts := s.opts
	q := r.URL.Query()
	for _, name := range []string{"apply_unchanged", "refresh"} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid %s %q", name, v)
		}
		switch name {
		case "apply_unchanged":
			opts.ApplyUnchanged = b
		case "refresh":
			opts.Refresh = b
		}
	}
	if p := q.Get("panel"); p != "" {
		opts.Panel = p
	}
	return opts, nil
}

// writeError responds with the error's code and status. Details of server
// errors are logged, not returned.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		status = http.StatusRequestEntityTooLarge
	}

	code := string(apperrors.GetCode(err))
	msg := apperrors.UserMessage(err)
	var ae *apperrors.Error
	if errors.As(err, &ae) && ae.Cause != nil {
		msg += ": " + ae.Cause.Error()
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err)
		if code == "" {
			code = string(apperrors.ErrCodeInternal)
		}
		msg = "internal error"
	}
	if status == http.StatusRequestEntityTooLarge {
		code, msg = string(apperrors.ErrCodeInvalidInput), "request body too large"
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
