package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"casetriage/internal/cases/models"
	"casetriage/internal/triage"
	"casetriage/internal/triage/service"
	dErrors "casetriage/pkg/domain-errors"
	"casetriage/pkg/platform/httputil"
	"casetriage/pkg/requestcontext"
)

// Service defines the triage operations the handler exposes.
type Service interface {
	Triage(ctx context.Context, viewerID string) (*triage.View, error)
	TriageScope(ctx context.Context, label string) (*triage.View, error)
	Overview(ctx context.Context, viewerIDs []string) (map[string]*triage.View, error)
	ScoreCase(ctx context.Context, id models.CaseID) (*triage.Result, error)
	Report(ctx context.Context, req service.ReportRequest) (*models.Case, error)
	Transition(ctx context.Context, id models.CaseID, target models.Status, actor string) (*models.Case, error)
	History(ctx context.Context, id models.CaseID) ([]models.StatusChange, error)
	RegisterViewer(ctx context.Context, viewerID, jurisdiction string) (*models.Viewer, error)
}

// Handler wires triage endpoints to the triage service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a triage handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts triage and case endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/triage", h.HandleTriage)
	r.Get("/triage/overview", h.HandleOverview)
	r.Get("/triage/scopes/{label}", h.HandleTriageScope)
	r.Post("/cases", h.HandleReport)
	r.Get("/cases/{id}/score", h.HandleScore)
	r.Post("/cases/{id}/status", h.HandleTransition)
	r.Get("/cases/{id}/history", h.HandleHistory)
	r.Put("/viewers/{id}", h.HandleRegisterViewer)
}

// HandleTriage handles GET /triage?viewer_id=.
func (h *Handler) HandleTriage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := r.URL.Query().Get("viewer_id")
	if viewerID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "viewer_id is required"))
		return
	}

	start := time.Now()
	view, err := h.service.Triage(ctx, viewerID)
	if err != nil {
		h.writeFailure(ctx, w, "triage view failed", err, "viewer_id", viewerID)
		return
	}
	h.logView(ctx, view, start, "viewer_id", viewerID)
	httputil.WriteJSON(w, http.StatusOK, FromView(view))
}

// HandleOverview handles GET /triage/overview?viewer_id=a&viewer_id=b.
func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerIDs := r.URL.Query()["viewer_id"]
	if len(viewerIDs) > 50 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "at most 50 viewer ids per overview"))
		return
	}

	views, err := h.service.Overview(ctx, viewerIDs)
	if err != nil {
		h.writeFailure(ctx, w, "triage overview failed", err, "viewers", len(viewerIDs))
		return
	}
	resp := make(map[string]*ViewResponse, len(views))
	for id, view := range views {
		resp[id] = FromView(view)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleTriageScope handles GET /triage/scopes/{label}.
func (h *Handler) HandleTriageScope(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	label := chi.URLParam(r, "label")

	start := time.Now()
	view, err := h.service.TriageScope(ctx, label)
	if err != nil {
		h.writeFailure(ctx, w, "triage view failed", err, "scope", label)
		return
	}
	h.logView(ctx, view, start, "scope", label)
	httputil.WriteJSON(w, http.StatusOK, FromView(view))
}

// HandleReport handles POST /cases.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ReportCaseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.service.Report(ctx, service.ReportRequest{
		SubjectName:       req.SubjectName,
		SubjectAge:        req.SubjectAge,
		LastKnownLocation: req.LastKnownLocation,
		Jurisdiction:      req.Jurisdiction,
		Actor:             req.Actor,
	})
	if err != nil {
		h.writeFailure(ctx, w, "case report failed", err)
		return
	}
	w.Header().Set("Location", "/cases/"+string(c.ID)+"/score")
	httputil.WriteJSON(w, http.StatusCreated, fromCase(c))
}

// HandleScore handles GET /cases/{id}/score.
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.caseID(w, r)
	if !ok {
		return
	}

	result, err := h.service.ScoreCase(ctx, id)
	if err != nil {
		h.writeFailure(ctx, w, "case scoring failed", err, "case_id", id)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleTransition handles POST /cases/{id}/status.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, ok := h.caseID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	updated, err := h.service.Transition(ctx, id, req.ParsedStatus(), req.Actor)
	if err != nil {
		h.writeFailure(ctx, w, "status transition failed", err, "case_id", id, "target", req.Status)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromCase(updated))
}

// HandleHistory handles GET /cases/{id}/history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.caseID(w, r)
	if !ok {
		return
	}

	changes, err := h.service.History(ctx, id)
	if err != nil {
		h.writeFailure(ctx, w, "status history failed", err, "case_id", id)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromHistory(id, changes))
}

func (h *Handler) caseID(w http.ResponseWriter, r *http.Request) (models.CaseID, bool) {
	id, err := models.ParseCaseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return id, true
}

func (h *Handler) logView(ctx context.Context, view *triage.View, start time.Time, attrs ...any) {
	attrs = append(attrs,
		"request_id", requestcontext.RequestID(ctx),
		"level", view.Level,
		"critical", view.Summary.Critical,
		"urgent", view.Summary.Urgent,
		"unscored", view.Summary.Unscored,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	h.logger.InfoContext(ctx, "triage view built", attrs...)
}

func (h *Handler) writeFailure(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append(attrs, "request_id", requestcontext.RequestID(ctx), "error", err)
	if dErrors.Retryable(err) {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

// HandleRegisterViewer handles PUT /viewers/{id}.
func (h *Handler) HandleRegisterViewer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	viewerID := chi.URLParam(r, "id")

	req, ok := httputil.DecodeAndPrepare[RegisterViewerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	v, err := h.service.RegisterViewer(ctx, viewerID, req.Jurisdiction)
	if err != nil {
		h.writeFailure(ctx, w, "viewer registration failed", err, "viewer_id", viewerID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}
