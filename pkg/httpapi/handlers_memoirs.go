package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/unowned-ai/memoirs/pkg/layout"
	"github.com/unowned-ai/memoirs/pkg/media"
	"github.com/unowned-ai/memoirs/pkg/memoirs"
)

type MemoirHandler struct {
	svc *memoirs.Service
}

func NewMemoirHandler(svc *memoirs.Service) *MemoirHandler {
	return &MemoirHandler{svc: svc}
}

type memoirView struct {
	memoirs.Memoir
	Categories []memoirs.Category `json:"categories"`
}

type createRequest struct {
	Title        *string       `json:"title"`
	Content      *string       `json:"content"`
	Date         *string       `json:"date"`
	Media        []media.Asset `json:"media"`
	Bookmark     bool          `json:"bookmark"`
	TitleVisible *bool         `json:"titleVisible"`
}

type updateRequest struct {
	Title        *string `json:"title"`
	Content      *string `json:"content"`
	Date         *string `json:"date"`
	TitleVisible *bool   `json:"titleVisible"`
}

type attachRequest struct {
	Media       []media.Asset `json:"media"`
	ReplaceLast bool          `json:"replaceLast"`
}

type removeMediaResponse struct {
	MemoirID string `json:"memoirId"`
	MediaID  string `json:"mediaId"`
	Outcome  string `json:"outcome"`
}

type layoutResponse struct {
	Count int           `json:"count"`
	Mode  string        `json:"mode"`
	Tree  *layout.Tree  `json:"tree"`
	Frame *layout.Frame `json:"frame,omitempty"`
}

// List handles GET /memoirs
func (h *MemoirHandler) List(w http.ResponseWriter, r *http.Request) {
	q := memoirs.Query{
		Text: r.URL.Query().Get("q"),
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			c, ok := memoirs.ParseCategory(part)
			if !ok {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", part))
				return
			}
			q.Categories = append(q.Categories, c)
		}
	}

	writeJSON(w, http.StatusOK, memoirs.Search(h.svc.Store().List(), q))
}

// Create handles POST /memoirs
func (h *MemoirHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	list, err := h.validMedia(req.Media)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(list) > h.svc.AttachmentLimit() {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("a memoir can hold at most %d media items", h.svc.AttachmentLimit()))
		return
	}

	m := h.svc.Create(r.Context(), memoirs.Draft{
		Title:        req.Title,
		Content:      req.Content,
		Date:         req.Date,
		Media:        list,
		Bookmark:     req.Bookmark,
		TitleVisible: req.TitleVisible,
	})
	writeJSON(w, http.StatusCreated, m)
}

// Get handles GET /memoirs/{id}
func (h *MemoirHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.svc.Store().Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "memoir not found")
		return
	}
	writeJSON(w, http.StatusOK, memoirView{Memoir: m, Categories: m.Categories()})
}

// Update handles PATCH /memoirs/{id}
func (h *MemoirHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	m, ok := h.svc.Edit(r.Context(), memoirs.Patch{
		ID:           chi.URLParam(r, "id"),
		Title:        req.Title,
		Content:      req.Content,
		Date:         req.Date,
		TitleVisible: req.TitleVisible,
	})
	if !ok {
		writeError(w, http.StatusNotFound, "memoir not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Delete handles DELETE /memoirs/{id}
func (h *MemoirHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.svc.DeleteMemoir(r.Context(), chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "memoir not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleBookmark handles POST /memoirs/{id}/bookmark
func (h *MemoirHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	m, ok := h.svc.ToggleBookmark(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "memoir not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// AttachMedia handles POST /memoirs/{id}/media
func (h *MemoirHandler) AttachMedia(w http.ResponseWriter, r *http.Request) {
	var req attachRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	list, err := h.validMedia(req.Media)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	confirm := func([]media.Asset, []media.Asset, int) memoirs.LimitDecision {
		if req.ReplaceLast {
			return memoirs.ReplaceLast
		}
		return memoirs.Cancel
	}
	m, err := h.svc.AttachMedia(r.Context(), chi.URLParam(r, "id"), list, confirm)
	switch {
	case errors.Is(err, memoirs.ErrNotFound):
		writeError(w, http.StatusNotFound, "memoir not found")
	case errors.Is(err, memoirs.ErrAttachmentLimit):
		writeError(w, http.StatusConflict,
			fmt.Sprintf("a memoir can hold at most %d media items; set replaceLast to swap the last one", h.svc.AttachmentLimit()))
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, m)
	}
}

// RemoveMedia handles DELETE /memoirs/{id}/media/{mediaID}
func (h *MemoirHandler) RemoveMedia(w http.ResponseWriter, r *http.Request) {
	id, mediaID := chi.URLParam(r, "id"), chi.URLParam(r, "mediaID")
	outcome, ok := h.svc.RemoveMedia(r.Context(), id, mediaID)
	if !ok {
		writeError(w, http.StatusNotFound, "media item not found")
		return
	}
	writeJSON(w, http.StatusOK, removeMediaResponse{MemoirID: id, MediaID: mediaID, Outcome: outcome.String()})
}

// Layout handles GET /memoirs/{id}/layout
func (h *MemoirHandler) Layout(w http.ResponseWriter, r *http.Request) {
	m, ok := h.svc.Store().Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "memoir not found")
		return
	}

	query := r.URL.Query()
	mode := layout.ParseMode(query.Get("mode"))
	expanded, _ := strconv.ParseBool(query.Get("expanded"))

	resp := layoutResponse{
		Count: len(m.Media),
		Mode:  mode.String(),
		Tree:  layout.Resolve(m.Media, mode, expanded),
	}
	if raw := query.Get("width"); raw != "" {
		width, err := strconv.ParseFloat(raw, 64)
		if err != nil || width <= 0 {
			writeError(w, http.StatusBadRequest, "width must be a positive number")
			return
		}
		gap := 2.0
		if raw := query.Get("gap"); raw != "" {
			if gap, err = strconv.ParseFloat(raw, 64); err != nil {
				writeError(w, http.StatusBadRequest, "gap must be a number")
				return
			}
		}
		f := layout.Place(resp.Tree, width, gap)
		resp.Frame = &f
	}
	writeJSON(w, http.StatusOK, resp)
}

// validMedia checks that every asset has a uri and normalizes its type.
func (h *MemoirHandler) validMedia(list []media.Asset) ([]media.Asset, error) {
	for i, a := range list {
		if a.URI == "" {
			return nil, fmt.Errorf("media item %d has no uri", i)
		}
		list[i].Type = media.ParseType(string(a.Type))
	}
	return list, nil
}
