package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/JonMunkholm/stockimport/internal/source"
	"github.com/JonMunkholm/stockimport/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

var (
	errNoFile      = errors.New("no file provided")
	errBadDecision = errors.New("invalid decision body")
)

// ImportView is the API representation of an import.
type ImportView struct {
	ID                string                `json:"id"`
	Phase             core.Phase            `json:"phase"`
	Source            string                `json:"source,omitempty"`
	Rows              int                   `json:"rows"`
	Pending           *core.DecisionRequest `json:"pending,omitempty"`
	Policy            core.DuplicatePolicy  `json:"policy,omitempty"`
	CreatedCategories []core.Category       `json:"createdCategories,omitempty"`
	Message           string                `json:"message,omitempty"`
	Result            *core.Result          `json:"result,omitempty"`
	Error             *ErrorResponse        `json:"error,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}

func newImportView(state *core.ImportState) ImportView {
	return ImportView{
		ID:                state.ID,
		Phase:             state.Phase,
		Source:            state.Source,
		Rows:              len(state.Rows),
		Pending:           state.Pending(),
		Policy:            state.Policy,
		CreatedCategories: state.CreatedCategories,
		Result:            state.Result,
		Message:           state.Summary(),
		CreatedAt:         state.Created,
		UpdatedAt:         state.Updated,
	}
}

// handleStartImport accepts a multipart upload in the "file" field.
func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	if limit := s.cfg.Import.MaxFileSize; r.ContentLength > limit {
		s.respondError(w, r, fmt.Errorf("file too large: %w", &http.MaxBytesError{Limit: limit}))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("file too large: %w", err))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	raw, err := source.Read(header.Filename, header.Header.Get("Content-Type"), file, s.cfg.Import.Sheet)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	state, err := s.service.StartImport(r.Context(), header.Filename, raw)
	s.respondImport(w, r, state, err, http.StatusCreated)
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetImport(r.Context(), chi.URLParam(r, "importID"))
	s.respondImport(w, r, state, err, http.StatusOK)
}

// handleResolveDuplicates takes {"policy":"skip"|"merge"} or a policy form value.
func (s *Server) handleResolveDuplicates(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Policy string `json:"policy"`
	}
	if err := decodeDecision(r, &body.Policy, "policy", &body); err != nil {
		s.respondError(w, r, err)
		return
	}

	policy, ok := core.ParseDuplicatePolicy(body.Policy)
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %q", core.ErrInvalidPolicy, body.Policy))
		return
	}

	state, err := s.service.ResolveDuplicates(r.Context(), chi.URLParam(r, "importID"), policy)
	s.respondImport(w, r, state, err, http.StatusOK)
}

// handleConfirmLocations takes {"confirm":true|false} or a confirm form value.
func (s *Server) handleConfirmLocations(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Confirm *bool `json:"confirm"`
	}
	var formValue string
	if err := decodeDecision(r, &formValue, "confirm", &body); err != nil {
		s.respondError(w, r, err)
		return
	}
	if wantsForm(r) {
		b, err := strconv.ParseBool(formValue)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("%w: confirm must be true or false", errBadDecision))
			return
		}
		body.Confirm = &b
	}
	if body.Confirm == nil {
		s.respondError(w, r, fmt.Errorf("%w: confirm is required", errBadDecision))
		return
	}

	state, err := s.service.ConfirmLocations(r.Context(), chi.URLParam(r, "importID"), *body.Confirm)
	s.respondImport(w, r, state, err, http.StatusOK)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.Commit(r.Context(), chi.URLParam(r, "importID"))
	s.respondImport(w, r, state, err, http.StatusOK)
}

func (s *Server) handleAbort(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.Abort(r.Context(), chi.URLParam(r, "importID"))
	s.respondImport(w, r, state, err, http.StatusOK)
}

// respondImport renders state. A user abort is a normal answer. A busy
// limiter leaves the import ready to commit, so the state is returned
// alongside the error for the client to retry the commit.
func (s *Server) respondImport(w http.ResponseWriter, r *http.Request, state *core.ImportState, err error, okStatus int) {
	status := okStatus
	var view ImportView

	switch {
	case err == nil:
		view = newImportView(state)
	case state != nil && errors.Is(err, core.ErrUserAborted):
		view = newImportView(state)
		status = http.StatusOK
	case state != nil && errors.Is(err, core.ErrTooManyImports):
		view = newImportView(state)
		view.Error = newErrorResponse(err)
		status = http.StatusServiceUnavailable
		w.Header().Set("Retry-After", "5")
	default:
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.ImportSummary(state).Render(r.Context(), w)
		return
	}
	writeJSON(w, status, view)
}

// decodeDecision reads a form field into formValue for form posts, or the
// JSON body into body otherwise.
func decodeDecision(r *http.Request, formValue *string, field string, body any) error {
	if wantsForm(r) {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %v", errBadDecision, err)
		}
		*formValue = r.PostForm.Get(field)
		return nil
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 4<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(body); err != nil {
		return fmt.Errorf("%w: %v", errBadDecision, err)
	}
	return nil
}
