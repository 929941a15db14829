package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/poiesic/wheretobuy"
	"github.com/poiesic/wheretobuy/cascade"
	"github.com/poiesic/wheretobuy/core"
)

type handlers struct {
	svc    Service
	logger *slog.Logger
}

type searchRequest struct {
	Name     string `json:"name"`
	Producer string `json:"producer"`
	Varietal string `json:"varietal"`
	Vintage  string `json:"vintage"`
	ImageURL string `json:"image_url"`
}

type placeResponse struct {
	Rank        int      `json:"rank"`
	StoreName   string   `json:"store_name"`
	URL         string   `json:"url"`
	ProductName string   `json:"product_name"`
	Price       string   `json:"price,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Tier        string   `json:"tier"`
	Score       float64  `json:"score"`
	Reason      string   `json:"reason"`
	Provenance  string   `json:"provenance"`
}

// searchResponse carries the catalog ID for product searches. TargetID is
// derived from the target's content, so repeated inline searches for the
// same bottle share it.
type searchResponse struct {
	ProductID core.ID         `json:"product_id,omitempty"`
	TargetID  core.ID         `json:"target_id"`
	Query     string          `json:"query"`
	Stages    []string        `json:"stages"`
	Places    []placeResponse `json:"places"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target := core.Target{
		Name:     req.Name,
		Producer: req.Producer,
		Varietal: req.Varietal,
		Vintage:  req.Vintage,
		ImageURL: req.ImageURL,
	}
	result, err := h.svc.Locate(r.Context(), target)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeResult(w, 0, result)
}

func (h *handlers) searchProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.LocateProduct(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeResult(w, id, result)
}

func (h *handlers) places(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	places, err := h.svc.Places(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if len(places) == 0 {
		writeError(w, http.StatusNotFound, wheretobuy.ErrNoMatch.Error())
		return
	}

	out := make([]placeResponse, len(places))
	for i, p := range places {
		out[i] = placeResponse{
			Rank:        p.Rank,
			StoreName:   p.StoreName,
			URL:         p.URL,
			ProductName: p.ProductName,
			Price:       p.Price,
			Rating:      p.Rating,
			Thumbnail:   p.Thumbnail,
			Tier:        p.Tier.String(),
			Score:       p.Score,
			Reason:      p.Reason,
			Provenance:  string(p.Provenance),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"product_id": id, "places": out})
}

func (h *handlers) writeResult(w http.ResponseWriter, id core.ID, result *cascade.Result) {
	if result.Places.Empty() {
		writeError(w, http.StatusNotFound, wheretobuy.ErrNoMatch.Error())
		return
	}

	resp := searchResponse{
		ProductID: id,
		TargetID:  result.Target.ID(),
		Query:     result.Target.Query(),
		Stages:    make([]string, len(result.Stages)),
		Places:    make([]placeResponse, len(result.Places)),
	}
	for i, s := range result.Stages {
		resp.Stages[i] = s.String()
	}
	for i, vc := range result.Places {
		resp.Places[i] = placeResponse{
			Rank:        i + 1,
			StoreName:   vc.StoreName,
			URL:         vc.Link,
			ProductName: vc.ProductName,
			Price:       vc.Price,
			Rating:      vc.Rating,
			Thumbnail:   vc.Thumbnail,
			Tier:        vc.Tier.String(),
			Score:       vc.Score,
			Reason:      vc.Reason,
			Provenance:  string(vc.Provenance),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidTarget):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, wheretobuy.ErrProductNotFound):
		writeError(w, http.StatusNotFound, wheretobuy.ErrProductNotFound.Error())
	default:
		h.logger.Error("request failed", "rid", GetRequestID(r), "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func productID(w http.ResponseWriter, r *http.Request) (core.ID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return core.ID(id), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
