package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dardanh/fieldhub/internal/cache"
	"github.com/dardanh/fieldhub/internal/domain/field"
	"github.com/dardanh/fieldhub/internal/http/handlers"
)

type fakeFieldsRepo struct {
	createFn func(ctx context.Context, f field.SportField) (field.SportField, error)
	listFn   func(ctx context.Context) ([]field.SportField, error)
	getFn    func(ctx context.Context, id string) (field.SportField, error)
	bySport  func(ctx context.Context, sportType string) ([]field.SportField, error)
	updateFn func(ctx context.Context, id string, req field.UpdateFieldRequest, urlPath *string) (field.SportField, error)
	deleteFn func(ctx context.Context, id string) error

	listCalls int
}

func (f *fakeFieldsRepo) Create(ctx context.Context, sf field.SportField) (field.SportField, error) {
	if f.createFn != nil {
		return f.createFn(ctx, sf)
	}
	return sf, nil
}

func (f *fakeFieldsRepo) List(ctx context.Context) ([]field.SportField, error) {
	f.listCalls++

	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []field.SportField{}, nil
}

func (f *fakeFieldsRepo) GetByID(ctx context.Context, id string) (field.SportField, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return field.SportField{}, nil
}

func (f *fakeFieldsRepo) ListBySportType(ctx context.Context, sportType string) ([]field.SportField, error) {
	if f.bySport != nil {
		return f.bySport(ctx, sportType)
	}
	return []field.SportField{}, nil
}

func (f *fakeFieldsRepo) Update(ctx context.Context, id string, req field.UpdateFieldRequest, urlPath *string) (field.SportField, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req, urlPath)
	}
	return field.SportField{}, nil
}

func (f *fakeFieldsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func TestGetFieldByIdentifier(t *testing.T) {
	fieldID := newUUID()

	arena := field.SportField{
		ID:          fieldID,
		SportType:   "FOOTBALL",
		TerrainName: "Arena One",
		Price:       120,
	}

	repo := &fakeFieldsRepo{
		getFn: func(ctx context.Context, id string) (field.SportField, error) {
			if id == fieldID {
				return arena, nil
			}
			return field.SportField{}, field.ErrNotFound
		},
		bySport: func(ctx context.Context, sportType string) ([]field.SportField, error) {
			if strings.EqualFold(sportType, "football") {
				return []field.SportField{arena}, nil
			}
			return nil, field.ErrNotFound
		},
	}

	tests := []struct {
		name           string
		identifier     string
		wantStatusCode int
	}{
		{name: "by_uuid", identifier: fieldID, wantStatusCode: http.StatusOK},
		{name: "uuid_not_found", identifier: newUUID(), wantStatusCode: http.StatusNotFound},
		{name: "by_sport_type", identifier: "football", wantStatusCode: http.StatusOK},
		{name: "sport_type_case_insensitive", identifier: "FOOTBALL", wantStatusCode: http.StatusOK},
		{name: "unknown_sport_type", identifier: "curling", wantStatusCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewFieldsHandler(repo, nil, t.TempDir())
			r := setupRouter(http.MethodGet, "/sportfields/:identifier", h.GetByIdentifier)

			req := httptest.NewRequest(http.MethodGet, "/sportfields/"+tt.identifier, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListFieldsUsesCacheAndETag(t *testing.T) {
	repo := &fakeFieldsRepo{
		listFn: func(ctx context.Context) ([]field.SportField, error) {
			return []field.SportField{
				{ID: newUUID(), SportType: "TENNIS", TerrainName: "Court A", Price: 40},
			}, nil
		},
	}

	h := handlers.NewFieldsHandler(repo, cache.New(time.Minute), t.TempDir())
	r := setupRouter(http.MethodGet, "/sportfields", h.ListFields)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/sportfields", nil))

	if first.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", first.Code, first.Body.String())
	}

	etag := first.Header().Get("ETag")

	if etag == "" {
		t.Fatal("expected an ETag header on the list response")
	}

	// second request with the same ETag short-circuits to 304
	req := httptest.NewRequest(http.MethodGet, "/sportfields", nil)
	req.Header.Set("If-None-Match", etag)
	second := httptest.NewRecorder()
	r.ServeHTTP(second, req)

	if second.Code != http.StatusNotModified {
		t.Fatalf("got status %d, want 304", second.Code)
	}

	if repo.listCalls != 1 {
		t.Fatalf("repo.List called %d times, cache should have served the second request", repo.listCalls)
	}
}

func TestDeleteFieldHandler(t *testing.T) {
	missing := newUUID()

	repo := &fakeFieldsRepo{
		deleteFn: func(ctx context.Context, id string) error {
			if id == missing {
				return field.ErrNotFound
			}
			return nil
		},
	}

	tests := []struct {
		name           string
		id             string
		wantStatusCode int
	}{
		{name: "deleted", id: newUUID(), wantStatusCode: http.StatusNoContent},
		{name: "not_found", id: missing, wantStatusCode: http.StatusNotFound},
		{name: "invalid_id", id: "nope", wantStatusCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewFieldsHandler(repo, nil, t.TempDir())
			r := setupRouter(http.MethodDelete, "/sportfields/:id", h.DeleteField)

			req := httptest.NewRequest(http.MethodDelete, "/sportfields/"+tt.id, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestCreateFieldMultipart(t *testing.T) {
	repo := &fakeFieldsRepo{}

	h := handlers.NewFieldsHandler(repo, nil, t.TempDir())
	r := setupRouter(http.MethodPost, "/sportfields", h.CreateField)

	form := "sportType=FOOTBALL&terrainName=Arena%20One&dimension=large&terrainType=outdoor&price=120"
	req := httptest.NewRequest(http.MethodPost, "/sportfields", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var created field.SportField

	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("bad response body: %v", err)
	}

	if created.ID == "" || created.TerrainName != "Arena One" || created.Price != 120 {
		t.Fatalf("unexpected created field: %+v", created)
	}
}

func TestCreateFieldRejectsBadDimension(t *testing.T) {
	h := handlers.NewFieldsHandler(&fakeFieldsRepo{}, nil, t.TempDir())
	r := setupRouter(http.MethodPost, "/sportfields", h.CreateField)

	form := "sportType=FOOTBALL&terrainName=Arena%20One&dimension=gigantic&price=120"
	req := httptest.NewRequest(http.MethodPost, "/sportfields", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
	}
}
