package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/formab/internal/abtest"
	"github.com/emiliopalmerini/formab/internal/domain"
	"github.com/emiliopalmerini/formab/internal/web/templates"
)

func (s *Server) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := assignmentQuery{
		FormName:  q.Get("formName"),
		FieldName: q.Get("fieldName"),
		SessionID: q.Get("sessionId"),
	}
	if err := validateStruct(query); err != nil {
		s.writeError(w, r, err)
		return
	}

	a := s.svc.GetVariantAssignment(r.Context(), query.FormName, query.FieldName, query.SessionID)
	writeJSON(w, http.StatusOK, toAssignmentResponse(a))
}

// handleTrackEvent answers success even when the store rejects the event so
// tracking never blocks the form.
func (s *Server) handleTrackEvent(w http.ResponseWriter, r *http.Request) {
	var req trackEventRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	err := s.svc.TrackTestEvent(r.Context(), abtest.TrackEventInput{
		TestID:    req.TestID,
		VariantID: req.VariantID,
		SessionID: req.SessionID,
		Type:      domain.EventType(req.EventType),
		Data:      req.EventData,
	})
	if err != nil {
		s.logger.Warn("tracking event failed",
			zap.String("test_id", req.TestID),
			zap.String("event_type", req.EventType),
			zap.Error(err),
		)
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleCreateTest(w http.ResponseWriter, r *http.Request) {
	var req createTestRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	test, err := s.svc.CreateTest(r.Context(), req.toNewTest())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, successResponse{Success: true, TestID: test.ID})
}

func (s *Server) handleUpdateTestStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.svc.UpdateTestStatus(r.Context(), chi.URLParam(r, "id"), domain.TestStatus(req.Status)); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleGetTestStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.GetTestStatistics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsResponse(stats))
}

func (s *Server) handleListTests(w http.ResponseWriter, r *http.Request) {
	tests := s.svc.ListTests(r.Context())
	resp := make([]testResponse, len(tests))
	for i, t := range tests {
		resp[i] = toTestResponse(*t)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTestDetails(w http.ResponseWriter, r *http.Request) {
	details, err := s.svc.GetTestDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := testDetailsResponse{
		Test:     toTestResponse(*details.Test),
		Variants: make([]variantResponse, len(details.Variants)),
	}
	for i, v := range details.Variants {
		resp.Variants[i] = toVariantResponse(v)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatsPage(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.GetTestStatistics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.StatsPage(stats).Render(r.Context(), w); err != nil {
		s.logger.Error("rendering stats page", zap.Error(err))
	}
}
