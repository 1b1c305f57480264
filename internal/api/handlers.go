package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/motifhq/motif/pkg/errors"
	"github.com/motifhq/motif/pkg/pipeline"
	"github.com/motifhq/motif/pkg/session"
)

// variantPayload is the wire form of one rendered variant. Link is the
// deep-link query string that regenerates the variant.
type variantPayload struct {
	Descriptor pipeline.Descriptor `json:"descriptor"`
	TemplateID string              `json:"template_id"`
	Doc        string              `json:"doc"`
	Link       string              `json:"link"`
}

func toPayload(v pipeline.Variant, text string) variantPayload {
	return variantPayload{
		Descriptor: v.Descriptor,
		TemplateID: v.Template.ID,
		Doc:        v.Doc,
		Link:       session.DeepLink{Text: text, Descriptor: v.Descriptor}.Encode(),
	}
}

type statsPayload struct {
	Templates int `json:"templates"`
	Produced  int `json:"produced"`
	Skipped   int `json:"skipped"`
}

func toStats(s pipeline.Stats) statsPayload {
	return statsPayload{Templates: s.Templates, Produced: s.Produced, Skipped: s.Skipped}
}

type renderRequest struct {
	Text       string              `json:"text"`
	Descriptor pipeline.Descriptor `json:"descriptor"`
}

// handleRender regenerates a single variant from its descriptor.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse request body"))
		return
	}
	v, err := s.runner.Regenerate(r.Context(), req.Text, req.Descriptor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayload(*v, req.Text))
}

type catalogGroup struct {
	Family   string           `json:"family"`
	Variants []variantPayload `json:"variants"`
}

type catalogResponse struct {
	Groups []catalogGroup `json:"groups"`
	Stats  statsPayload   `json:"stats"`
}

// handleCatalog runs catalog mode for the given text.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Text:    q.Get("text"),
		Refresh: q.Get("refresh") == "true",
		Logger:  s.logger,
	}
	if raw := q.Get("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse seed %q", raw))
			return
		}
		opts.Seed = seed
	}
	result, err := s.runner.Catalog(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := catalogResponse{Stats: toStats(result.Stats), Groups: []catalogGroup{}}
	for _, g := range result.Groups {
		cg := catalogGroup{Family: g.Family}
		for _, v := range g.Variants {
			cg.Variants = append(cg.Variants, toPayload(v, opts.Text))
		}
		resp.Groups = append(resp.Groups, cg)
	}
	writeJSON(w, http.StatusOK, resp)
}

type pageResponse struct {
	BatchID   string           `json:"batch_id"`
	Page      []variantPayload `json:"page"`
	Done      bool             `json:"done"`
	Remaining int              `json:"remaining"`
	Stats     statsPayload     `json:"stats"`
}

// handleCreateBatch starts a filtered generation batch and serves its first
// page. Subsequent pages come from the batch's next endpoint.
func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse request body"))
		return
	}
	opts.Logger = s.logger
	pager, err := s.runner.Generate(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id := s.storeBatch(pager, opts.Text)
	page, done := pager.Next(r.Context())
	writeJSON(w, http.StatusOK, s.pageResponse(id, opts.Text, pager, page, done))
}

// handleNextPage serves the next page of an existing batch.
func (s *Server) handleNextPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, ok := s.lookupBatch(id)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "batch %q not found or expired", id))
		return
	}
	page, done := b.pager.Next(r.Context())
	writeJSON(w, http.StatusOK, s.pageResponse(id, b.text, b.pager, page, done))
}

func (s *Server) pageResponse(id, text string, pager *pipeline.Pager, page []pipeline.Variant, done bool) pageResponse {
	resp := pageResponse{
		BatchID:   id,
		Page:      []variantPayload{},
		Done:      done,
		Remaining: pager.Remaining(),
		Stats:     toStats(pager.Stats()),
	}
	for _, v := range page {
		resp.Page = append(resp.Page, toPayload(v, text))
	}
	return resp
}

// handleDeepLink resolves a deep-link query string back into a rendered
// variant.
func (s *Server) handleDeepLink(w http.ResponseWriter, r *http.Request) {
	link, err := session.DecodeDeepLink(r.URL.RawQuery)
	if err != nil {
		s.writeError(w, err)
		return
	}
	v, err := s.runner.Regenerate(r.Context(), link.Text, link.Descriptor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayload(*v, link.Text))
}

type sessionRequest struct {
	Text  string                `json:"text"`
	Saved []pipeline.Descriptor `json:"saved,omitempty"`
}

// handleCreateSession persists a restorable session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse request body"))
		return
	}
	if req.Text == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "text is required"))
		return
	}
	for _, d := range req.Saved {
		if err := d.Validate(); err != nil {
			s.writeError(w, err)
			return
		}
	}
	sess, err := session.New(req.Text, session.DefaultTTL)
	if err != nil {
		s.writeError(w, err)
		return
	}
	for _, d := range req.Saved {
		sess.Save(d)
	}
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// handleGetSession restores a session by ID.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sess == nil {
		s.writeError(w, errors.New(errors.ErrCodeSessionNotFound, "session %q not found or expired", id))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
