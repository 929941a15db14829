package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/poiesic/wheretobuy"
	"github.com/poiesic/wheretobuy/cascade"
	"github.com/poiesic/wheretobuy/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	locate        func(ctx context.Context, target core.Target) (*cascade.Result, error)
	locateProduct func(ctx context.Context, id core.ID) (*cascade.Result, error)
	places        func(ctx context.Context, id core.ID) ([]core.Placement, error)
}

func (f *fakeService) Locate(ctx context.Context, target core.Target) (*cascade.Result, error) {
	return f.locate(ctx, target)
}

func (f *fakeService) LocateProduct(ctx context.Context, id core.ID) (*cascade.Result, error) {
	return f.locateProduct(ctx, id)
}

func (f *fakeService) Places(ctx context.Context, id core.ID) ([]core.Placement, error) {
	return f.places(ctx, id)
}

func verifiedResult(target core.Target) *cascade.Result {
	return &cascade.Result{
		Target: target,
		Stages: []cascade.Stage{cascade.StageTextSearch, cascade.StageDone},
		Places: core.PipelineResult{{
			Candidate: core.Candidate{
				ProductName: "Old Oak Reserve Acme 2015",
				StoreName:   "Acme Direct",
				Link:        "https://acme.example/oor",
				Provenance:  core.ProvenanceText,
			},
			IsMatch: true,
			Tier:    core.TierVerified,
			Score:   95,
			Reason:  "Verified: name similarity 95.0",
		}},
	}
}

func do(t *testing.T, svc Service, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	NewRouter(svc, nil).ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e.Error
}

func TestHealth(t *testing.T) {
	rec := do(t, &fakeService{}, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestSearch(t *testing.T) {
	var got core.Target
	svc := &fakeService{locate: func(_ context.Context, target core.Target) (*cascade.Result, error) {
		got = target
		return verifiedResult(target), nil
	}}

	rec := do(t, svc, http.MethodPost, "/search",
		`{"name":"Old Oak Reserve","producer":"Acme","vintage":"2015","image_url":"https://img.example/oor.jpg"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, core.Target{Name: "Old Oak Reserve", Producer: "Acme", Vintage: "2015", ImageURL: "https://img.example/oor.jpg"}, got)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Old Oak Reserve Acme 2015", resp.Query)
	assert.Equal(t, []string{"TEXT_SEARCH", "DONE"}, resp.Stages)
	require.Len(t, resp.Places, 1)
	assert.Equal(t, 1, resp.Places[0].Rank)
	assert.Equal(t, "Verified", resp.Places[0].Tier)
	assert.Equal(t, "https://acme.example/oor", resp.Places[0].URL)
	assert.Equal(t, "text_search", resp.Places[0].Provenance)
	assert.Equal(t, got.ID(), resp.TargetID)
	assert.NotZero(t, resp.TargetID)
	assert.Zero(t, resp.ProductID)

	rec = do(t, svc, http.MethodPost, "/search", `{"name":"old oak reserve","producer":"ACME","vintage":"2015"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var again searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
	assert.Equal(t, resp.TargetID, again.TargetID, "same bottle, same target id")
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		result  *cascade.Result
		err     error
		status  int
		message string
	}{
		{"malformed body", `{"name":`, nil, nil, http.StatusBadRequest, "invalid request body"},
		{"invalid target", `{"name":""}`, nil, fmt.Errorf("%w: %w", core.ErrInvalidTarget, core.ErrEmptyName), http.StatusBadRequest, ""},
		{"no match", `{"name":"Unobtainium"}`, &cascade.Result{}, nil, http.StatusNotFound, "no match"},
		{"unexpected", `{"name":"x"}`, nil, errors.New("boom"), http.StatusInternalServerError, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{locate: func(context.Context, core.Target) (*cascade.Result, error) {
				return tt.result, tt.err
			}}
			rec := do(t, svc, http.MethodPost, "/search", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decodeError(t, rec))
			}
		})
	}
}

func TestSearchProduct(t *testing.T) {
	svc := &fakeService{locateProduct: func(_ context.Context, id core.ID) (*cascade.Result, error) {
		switch id {
		case 41:
			return verifiedResult(core.Target{Name: "Old Oak Reserve"}), nil
		case 42:
			return verifiedResult(core.Target{Name: "Old Oak Reserve"}), fmt.Errorf("%w: disk full", wheretobuy.ErrPersistence)
		default:
			return nil, fmt.Errorf("%w: %d", wheretobuy.ErrProductNotFound, id)
		}
	}}

	rec := do(t, svc, http.MethodPost, "/products/41/search", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, core.ID(41), resp.ProductID)

	rec = do(t, svc, http.MethodPost, "/products/42/search", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeError(t, rec), "persistence failure")

	rec = do(t, svc, http.MethodPost, "/products/7/search", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product not found", decodeError(t, rec))

	rec = do(t, svc, http.MethodPost, "/products/abc/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaces(t *testing.T) {
	rating := 4.5
	svc := &fakeService{places: func(_ context.Context, id core.ID) ([]core.Placement, error) {
		switch id {
		case 41:
			return []core.Placement{{
				ProductID: 41, Rank: 1, StoreName: "Acme Direct", URL: "https://acme.example/oor",
				Rating: &rating, Tier: core.TierLikely, Provenance: core.ProvenanceImage,
			}}, nil
		case 42:
			return []core.Placement{}, nil
		default:
			return nil, wheretobuy.ErrProductNotFound
		}
	}}

	rec := do(t, svc, http.MethodGet, "/products/41/places", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		ProductID core.ID         `json:"product_id"`
		Places    []placeResponse `json:"places"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Places, 1)
	assert.Equal(t, "Likely", resp.Places[0].Tier)
	assert.Equal(t, "image_search", resp.Places[0].Provenance)
	require.NotNil(t, resp.Places[0].Rating)
	assert.Equal(t, 4.5, *resp.Places[0].Rating)

	rec = do(t, svc, http.MethodGet, "/products/42/places", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no match", decodeError(t, rec))

	rec = do(t, svc, http.MethodGet, "/products/43/places", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product not found", decodeError(t, rec))
}

func TestRequestID_Propagates(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	NewRouter(&fakeService{}, nil).ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRecover(t *testing.T) {
	svc := &fakeService{locate: func(context.Context, core.Target) (*cascade.Result, error) {
		panic("kaboom")
	}}
	rec := do(t, svc, http.MethodPost, "/search", `{"name":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decodeError(t, rec))
}
