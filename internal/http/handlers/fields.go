package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dardanh/fieldhub/internal/cache"
	"github.com/dardanh/fieldhub/internal/config"
	"github.com/dardanh/fieldhub/internal/domain/field"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FieldsStore interface {
	Create(ctx context.Context, f field.SportField) (field.SportField, error)
	List(ctx context.Context) ([]field.SportField, error)
	GetByID(ctx context.Context, id string) (field.SportField, error)
	ListBySportType(ctx context.Context, sportType string) ([]field.SportField, error)
	Update(ctx context.Context, id string, req field.UpdateFieldRequest, urlPath *string) (field.SportField, error)
	Delete(ctx context.Context, id string) error
}

type FieldsHandler struct {
	repo      FieldsStore
	listCache *cache.Cache
	uploadDir string
}

const fieldsListCacheKey = "fields:list"

func NewFieldsHandler(repo FieldsStore, listCache *cache.Cache, uploadDir string) *FieldsHandler {
	return &FieldsHandler{
		repo:      repo,
		listCache: listCache,
		uploadDir: uploadDir,
	}
}

func (h *FieldsHandler) ListFields(ctx *gin.Context) {
	if h.listCache != nil {
		if cached, ok := h.listCache.Get(fieldsListCacheKey); ok {
			if fields, ok := cached.([]field.SportField); ok {
				RespondJSONWithETag(ctx, http.StatusOK, gin.H{
					"items": fields,
					"count": len(fields),
				})
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	fields, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list sport fields")
		return
	}

	if h.listCache != nil {
		h.listCache.Set(fieldsListCacheKey, fields)
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": fields,
		"count": len(fields),
	})
}

// GetByIdentifier serves GET /sportfields/:identifier. A uuid identifier
// resolves to a single field; anything else is treated as a sport type and
// returns every field of that sport.
func (h *FieldsHandler) GetByIdentifier(ctx *gin.Context) {
	identifier := ctx.Param("identifier")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if _, err := uuid.Parse(identifier); err == nil {
		f, err := h.repo.GetByID(cctx, identifier)

		if err != nil {
			if errors.Is(err, field.ErrNotFound) {
				RespondNotFound(ctx, "Sport field not found")
				return
			}

			RespondInternal(ctx, "Could not fetch sport field")
			return
		}

		ctx.JSON(http.StatusOK, f)
		return
	}

	fields, err := h.repo.ListBySportType(cctx, identifier)

	if err != nil {
		if errors.Is(err, field.ErrNotFound) {
			RespondNotFound(ctx, "No sport fields for that sport type")
			return
		}

		RespondInternal(ctx, "Could not fetch sport fields")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": fields,
		"count": len(fields),
	})
}

func (h *FieldsHandler) CreateField(ctx *gin.Context) {
	var req field.CreateFieldRequest

	if !BindForm(ctx, &req) {
		return
	}

	urlPath := ""

	if file, err := ctx.FormFile("image"); err == nil && file != nil {
		urlPath, err = h.saveImage(ctx, file, req.TerrainName)

		if err != nil {
			RespondBadRequest(ctx, "Could not store image", gin.H{"reason": err.Error()})
			return
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, field.NewFromCreateRequest(req, urlPath))

	if err != nil {
		RespondInternal(ctx, "Could not create sport field")
		return
	}

	h.invalidateListCache()

	ctx.JSON(http.StatusCreated, created)
}

func (h *FieldsHandler) UpdateField(ctx *gin.Context) {
	id := ctx.Param("id")

	if _, err := uuid.Parse(id); err != nil {
		RespondBadRequest(ctx, "Invalid sport field id", nil)
		return
	}

	var req field.UpdateFieldRequest

	if !BindForm(ctx, &req) {
		return
	}

	// nil keeps the stored image
	var urlPath *string

	if file, err := ctx.FormFile("image"); err == nil && file != nil {
		saved, err := h.saveImage(ctx, file, req.TerrainName)

		if err != nil {
			RespondBadRequest(ctx, "Could not store image", gin.H{"reason": err.Error()})
			return
		}

		urlPath = &saved
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.repo.Update(cctx, id, req, urlPath)

	if err != nil {
		if errors.Is(err, field.ErrNotFound) {
			RespondNotFound(ctx, "Sport field not found")
			return
		}

		RespondInternal(ctx, "Could not update sport field")
		return
	}

	h.invalidateListCache()

	ctx.JSON(http.StatusOK, updated)
}

func (h *FieldsHandler) DeleteField(ctx *gin.Context) {
	id := ctx.Param("id")

	if _, err := uuid.Parse(id); err != nil {
		RespondBadRequest(ctx, "Invalid sport field id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, field.ErrNotFound) {
			RespondNotFound(ctx, "Sport field not found")
			return
		}

		RespondInternal(ctx, "Could not delete sport field")
		return
	}

	h.invalidateListCache()

	ctx.Status(http.StatusNoContent)
}

func (h *FieldsHandler) invalidateListCache() {
	if h.listCache != nil {
		h.listCache.Delete(fieldsListCacheKey)
	}
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// saveImage writes the uploaded file under the configured upload dir as
// <terrain-slug>-<short-id><ext> and returns the public /uploads path.
func (h *FieldsHandler) saveImage(ctx *gin.Context, file *multipart.FileHeader, terrainName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))

	if !allowedImageExts[ext] {
		return "", errors.New("unsupported image type")
	}

	name := slugify(terrainName) + "-" + uuid.NewString()[:5] + ext

	if err := ctx.SaveUploadedFile(file, filepath.Join(h.uploadDir, name)); err != nil {
		return "", err
	}

	return "/uploads/" + name, nil
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder

	lastDash := true

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
