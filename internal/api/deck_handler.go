package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/unalkalkan/Prompter/internal/deck"
	"github.com/unalkalkan/Prompter/internal/parser"
	"github.com/unalkalkan/Prompter/internal/pipeline"
	"github.com/unalkalkan/Prompter/internal/render"
	"github.com/unalkalkan/Prompter/internal/segmentation"
	"github.com/unalkalkan/Prompter/internal/streaming"
	"github.com/unalkalkan/Prompter/pkg/types"
)

// FormatJSON asks POST /api/v1/decks for deck metadata instead of a download
const FormatJSON = "json"

// Options holds request defaults taken from configuration
type Options struct {
	Title          string
	Preset         string
	Thresholds     types.Thresholds // effective budget when a request names no preset
	Format         string
	MaxScriptBytes int64
}

// DeckHandler handles deck-related API endpoints
type DeckHandler struct {
	repo      deck.Repository
	builder   *pipeline.Builder
	streaming *streaming.Service
	opts      Options
	logger    *slog.Logger
}

// NewDeckHandler creates a new deck handler
func NewDeckHandler(repo deck.Repository, builder *pipeline.Builder, opts Options, logger *slog.Logger) *DeckHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.MaxScriptBytes <= 0 {
		opts.MaxScriptBytes = 512 << 10
	}
	if opts.Thresholds == (types.Thresholds{}) {
		opts.Thresholds = segmentation.DefaultThresholds()
	}
	if opts.Format == "" {
		opts.Format = "zip"
	}
	return &DeckHandler{
		repo:      repo,
		builder:   builder,
		streaming: streaming.NewService(repo),
		opts:      opts,
		logger:    logger,
	}
}

// Register mounts the form and the deck API on mux
func (h *DeckHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.Index)
	mux.HandleFunc("/api/v1/decks", h.Decks)
	mux.HandleFunc("/api/v1/decks/", h.DeckByID)
	mux.HandleFunc("/api/v1/segment", h.Segment)
}

// createDeckRequest is the body of POST /api/v1/decks, as JSON or form fields
type createDeckRequest struct {
	Script  string `json:"script"`
	Title   string `json:"title"`
	Format  string `json:"format"`
	Preset  string `json:"preset"`
	Ideal   int    `json:"ideal"`
	Maximum int    `json:"maximum"`
}

// segmentRequest is the body of POST /api/v1/segment
type segmentRequest struct {
	Text    string `json:"text"`
	Preset  string `json:"preset"`
	Ideal   int    `json:"ideal"`
	Maximum int    `json:"maximum"`
}

type segmentResponse struct {
	Speaker    string           `json:"speaker,omitempty"`
	Fragments  []string         `json:"fragments"`
	Thresholds types.Thresholds `json:"thresholds"`
}

// badRequestError marks request errors that map to a 4xx response
type badRequestError struct {
	status int
	msg    string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// Decks handles GET and POST /api/v1/decks
func (h *DeckHandler) Decks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.ListDecks(w, r)
	case http.MethodPost:
		h.CreateDeck(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// DeckByID handles /api/v1/decks/:id, /api/v1/decks/:id/download and
// /api/v1/decks/:id/slides
func (h *DeckHandler) DeckByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/decks/"), "/"), "/")
	deckID := parts[0]
	if deckID == "" {
		respondError(w, "Deck ID required", http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.GetDeck(w, r, deckID)
		case http.MethodDelete:
			h.DeleteDeck(w, r, deckID)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodDelete)
		}
	case len(parts) == 2 && parts[1] == "download":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		h.DownloadDeck(w, r, deckID)
	case len(parts) == 2 && parts[1] == "slides":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		h.StreamSlides(w, r, deckID)
	default:
		respondError(w, "Not found", http.StatusNotFound)
	}
}

// CreateDeck handles POST /api/v1/decks
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxScriptBytes)

	req, err := h.readCreateRequest(r)
	if err != nil {
		h.respondRequestError(w, err)
		return
	}

	th, err := h.thresholds(req.Preset, req.Ideal, req.Maximum)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = h.opts.Format
	}
	var enc render.Encoder
	if format != FormatJSON {
		enc, err = render.NewEncoder(format)
		if err != nil {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = h.opts.Title
	}

	ctx := r.Context()
	newDeck, err := h.builder.Build(ctx, title, []byte(req.Script), th)
	if err != nil {
		if errors.Is(err, parser.ErrEmptyScript) {
			respondError(w, "Script is empty", http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to build deck", "error", err)
		respondError(w, "Failed to build deck", http.StatusInternalServerError)
		return
	}

	if enc == nil {
		if err := h.repo.SaveDeck(ctx, newDeck); err != nil {
			h.logger.ErrorContext(ctx, "failed to save deck", "deck_id", newDeck.ID, "error", err)
			respondError(w, "Failed to save deck", http.StatusInternalServerError)
			return
		}
		respondJSON(w, newDeck, http.StatusCreated)
		return
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, newDeck); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode deck", "deck_id", newDeck.ID, "format", format, "error", err)
		respondError(w, "Failed to encode deck", http.StatusInternalServerError)
		return
	}

	newDeck.Formats = []string{enc.Extension()}
	if err := h.repo.SaveDeck(ctx, newDeck); err != nil {
		h.logger.ErrorContext(ctx, "failed to save deck", "deck_id", newDeck.ID, "error", err)
		respondError(w, "Failed to save deck", http.StatusInternalServerError)
		return
	}
	if err := h.repo.SaveArtifact(ctx, newDeck.ID, enc.Extension(), bytes.NewReader(buf.Bytes())); err != nil {
		h.logger.ErrorContext(ctx, "failed to save artifact", "deck_id", newDeck.ID, "error", err)
		respondError(w, "Failed to save deck", http.StatusInternalServerError)
		return
	}

	writeArtifact(w, enc, attachmentName(newDeck.Title, newDeck.ID, enc.Extension()), newDeck.ID, buf.Bytes())
}

// ListDecks handles GET /api/v1/decks
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.repo.ListDecks(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list decks", "error", err)
		respondError(w, "Failed to list decks", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]any{
		"decks": summaries,
		"total": len(summaries),
	}, http.StatusOK)
}

// GetDeck handles GET /api/v1/decks/:id
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request, deckID string) {
	d, ok := h.loadDeck(w, r, deckID)
	if !ok {
		return
	}
	respondJSON(w, d, http.StatusOK)
}

// DeleteDeck handles DELETE /api/v1/decks/:id
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request, deckID string) {
	if err := h.repo.DeleteDeck(r.Context(), deckID); err != nil {
		h.respondRepoError(w, r, deckID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadDeck handles GET /api/v1/decks/:id/download?format=. Formats that
// were never stored are encoded from the deck and cached.
func (h *DeckHandler) DownloadDeck(w http.ResponseWriter, r *http.Request, deckID string) {
	d, ok := h.loadDeck(w, r, deckID)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = h.opts.Format
		if len(d.Formats) > 0 {
			format = d.Formats[0]
		}
	}
	enc, err := render.NewEncoder(format)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	data, err := h.storedArtifact(r, deckID, enc.Extension())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read artifact", "deck_id", deckID, "error", err)
		respondError(w, "Failed to read artifact", http.StatusInternalServerError)
		return
	}

	if data == nil {
		var buf bytes.Buffer
		if err := enc.Encode(&buf, d); err != nil {
			h.logger.ErrorContext(ctx, "failed to encode deck", "deck_id", deckID, "format", format, "error", err)
			respondError(w, "Failed to encode deck", http.StatusInternalServerError)
			return
		}
		data = buf.Bytes()

		if err := h.repo.SaveArtifact(ctx, deckID, enc.Extension(), bytes.NewReader(data)); err != nil {
			h.logger.WarnContext(ctx, "failed to cache artifact", "deck_id", deckID, "format", format, "error", err)
		} else {
			d.Formats = append(d.Formats, enc.Extension())
			if err := h.repo.SaveDeck(ctx, d); err != nil {
				h.logger.WarnContext(ctx, "failed to update deck formats", "deck_id", deckID, "error", err)
			}
		}
	}

	writeArtifact(w, enc, attachmentName(d.Title, d.ID, enc.Extension()), d.ID, data)
}

// StreamSlides handles GET /api/v1/decks/:id/slides?after=N as NDJSON
func (h *DeckHandler) StreamSlides(w http.ResponseWriter, r *http.Request, deckID string) {
	after := 0
	if val := r.URL.Query().Get("after"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			respondError(w, fmt.Sprintf("Invalid cursor: %q", val), http.StatusBadRequest)
			return
		}
		after = n
	}

	items, err := h.streaming.StreamSlides(r.Context(), deckID, after)
	if err != nil {
		h.respondRepoError(w, r, deckID, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	if err := streaming.WriteNDJSON(w, items); err != nil {
		h.logger.WarnContext(r.Context(), "failed to stream slides", "deck_id", deckID, "error", err)
	}
}

// Segment handles POST /api/v1/segment
func (h *DeckHandler) Segment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxScriptBytes)

	var req segmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondRequestError(w, decodeError(err))
		return
	}

	th, err := h.thresholds(req.Preset, req.Ideal, req.Maximum)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	speaker, fragments, err := pipeline.SegmentText(req.Text, th)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, segmentResponse{
		Speaker:    speaker,
		Fragments:  fragments,
		Thresholds: th,
	}, http.StatusOK)
}

func (h *DeckHandler) loadDeck(w http.ResponseWriter, r *http.Request, deckID string) (*types.Deck, bool) {
	d, err := h.repo.GetDeck(r.Context(), deckID)
	if err != nil {
		h.respondRepoError(w, r, deckID, err)
		return nil, false
	}
	return d, true
}

// storedArtifact returns nil data when the artifact has not been stored
func (h *DeckHandler) storedArtifact(r *http.Request, deckID, ext string) ([]byte, error) {
	reader, err := h.repo.GetArtifact(r.Context(), deckID, ext)
	if err != nil {
		if errors.Is(err, deck.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// thresholds resolves the word budget of a request. A named preset starts
// from that preset; otherwise the configured budget is the base.
func (h *DeckHandler) thresholds(preset string, ideal, maximum int) (types.Thresholds, error) {
	override := types.Thresholds{Ideal: ideal, Maximum: maximum}
	if preset != "" {
		return segmentation.Resolve(preset, override)
	}
	return segmentation.Override(h.opts.Thresholds, override)
}

func (h *DeckHandler) readCreateRequest(r *http.Request) (createDeckRequest, error) {
	var req createDeckRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, decodeError(err)
		}
		return req, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(h.opts.MaxScriptBytes); err != nil {
			return req, decodeError(err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return req, decodeError(err)
		}
	}

	req.Script = r.FormValue("script")
	req.Title = r.FormValue("title")
	req.Format = r.FormValue("format")
	req.Preset = r.FormValue("preset")

	// An uploaded file takes precedence over the text area
	if r.MultipartForm != nil {
		if file, _, err := r.FormFile("file"); err == nil {
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				return req, decodeError(err)
			}
			if len(bytes.TrimSpace(data)) > 0 {
				req.Script = string(data)
			}
		}
	}

	var err error
	if req.Ideal, err = formInt(r, "ideal"); err != nil {
		return req, err
	}
	if req.Maximum, err = formInt(r, "maximum"); err != nil {
		return req, err
	}
	return req, nil
}

func formInt(r *http.Request, name string) (int, error) {
	val := strings.TrimSpace(r.FormValue(name))
	if val == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, badRequest("Invalid %s: %q", name, val)
	}
	return n, nil
}

// decodeError classifies body read failures; oversized bodies become 413
func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &badRequestError{
			status: http.StatusRequestEntityTooLarge,
			msg:    fmt.Sprintf("Script exceeds %d bytes", tooLarge.Limit),
		}
	}
	return badRequest("Invalid request body: %v", err)
}

func (h *DeckHandler) respondRequestError(w http.ResponseWriter, err error) {
	var reqErr *badRequestError
	if errors.As(err, &reqErr) {
		respondError(w, reqErr.msg, reqErr.status)
		return
	}
	respondError(w, err.Error(), http.StatusBadRequest)
}

func (h *DeckHandler) respondRepoError(w http.ResponseWriter, r *http.Request, deckID string, err error) {
	switch {
	case errors.Is(err, deck.ErrNotFound):
		respondError(w, "Deck not found", http.StatusNotFound)
	case errors.Is(err, deck.ErrInvalidID):
		respondError(w, "Invalid deck ID", http.StatusBadRequest)
	default:
		h.logger.ErrorContext(r.Context(), "deck repository error", "deck_id", deckID, "error", err)
		respondError(w, "Internal error", http.StatusInternalServerError)
	}
}

func writeArtifact(w http.ResponseWriter, enc render.Encoder, filename, deckID string, data []byte) {
	w.Header().Set("Content-Type", enc.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Deck-ID", deckID)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
