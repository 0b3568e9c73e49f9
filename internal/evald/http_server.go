package evald

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"
	"google.golang.org/grpc/codes"
)

// maxEvaluateBody caps the POST /v1/evaluate request body.
const maxEvaluateBody = 1 << 20

// HTTPServer serves the evaluation API as JSON.
type HTTPServer struct {
	mux *http.ServeMux
	svc *Service
}

func NewHTTPServer(svc *Service) *HTTPServer {
	s := &HTTPServer{
		mux: http.NewServeMux(),
		svc: svc,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/evaluate", s.handleEvaluate)
	s.mux.HandleFunc("/v1/describe", s.handleDescribe)
	s.mux.HandleFunc("/v1/evaluations", s.handleEvaluations)
	s.mux.HandleFunc("/v1/evaluations/", s.handleEvaluationByID)
	s.mux.HandleFunc("/v1/metrics", s.handleMetrics)

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleEvaluate handles POST /v1/evaluate
func (s *HTTPServer) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Genome []float64 `json:"genome"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxEvaluateBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if len(req.Genome) == 0 {
		s.writeError(w, http.StatusBadRequest, "genome is required")
		return
	}

	eval, err := s.svc.Evaluate(r.Context(), models.Genome(req.Genome))
	if err != nil {
		s.writeError(w, httpStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, evaluationToJSON(eval))
}

// handleDescribe handles GET /v1/describe
func (s *HTTPServer) handleDescribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.svc.Describe())
}

// handleEvaluations handles GET /v1/evaluations?limit=N
func (s *HTTPServer) handleEvaluations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	evals, err := s.svc.History(r.Context(), limit)
	if err != nil {
		if errors.Is(err, ErrNoHistory) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]map[string]any, 0, len(evals))
	for _, e := range evals {
		out = append(out, evaluationToJSON(e))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"evaluations": out})
}

// handleEvaluationByID handles GET /v1/evaluations/{id}
func (s *HTTPServer) handleEvaluationByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/evaluations/")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "evaluation ID is required")
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	eval, err := s.svc.Lookup(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNoHistory) || errors.Is(err, ErrNotFound) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, evaluationToJSON(eval))
}

// handleMetrics handles GET /v1/metrics
func (s *HTTPServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	summary, err := s.svc.Metrics()
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.svc.log.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}

func httpStatus(err error) int {
	switch errorCode(err) {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.FailedPrecondition:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

func evaluationToJSON(e models.Evaluation) map[string]any {
	return map[string]any{
		"id":          e.ID,
		"run_index":   e.RunIndex,
		"fitness":     e.Fitness,
		"descriptor":  e.Descriptor,
		"genome":      e.Genome,
		"duration_ms": e.Duration.Milliseconds(),
		"created_at":  e.CreatedAt.Format(time.RFC3339),
	}
}
