package field

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type SportField struct {
	ID          string    `json:"id"`
	SportType   string    `json:"sportType"`
	TerrainName string    `json:"terrainName"`
	Dimension   string    `json:"dimension,omitempty"`
	TerrainType string    `json:"terrainType,omitempty"`
	Price       int       `json:"price"`
	URLPath     string    `json:"urlPath,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("sport field not found")

// multipart form payload; the image file travels alongside it.
type CreateFieldRequest struct {
	SportType   string `form:"sportType" binding:"required,min=2,max=60"`
	TerrainName string `form:"terrainName" binding:"required,min=2,max=120"`
	Dimension   string `form:"dimension" binding:"omitempty,oneof=small medium large"`
	TerrainType string `form:"terrainType" binding:"omitempty,oneof=indoor outdoor"`
	Price       int    `form:"price" binding:"required,min=1"`
}

type UpdateFieldRequest struct {
	SportType   string `form:"sportType" binding:"required,min=2,max=60"`
	TerrainName string `form:"terrainName" binding:"required,min=2,max=120"`
	Dimension   string `form:"dimension" binding:"omitempty,oneof=small medium large"`
	TerrainType string `form:"terrainType" binding:"omitempty,oneof=indoor outdoor"`
	Price       int    `form:"price" binding:"required,min=1"`
}

func NewFromCreateRequest(req CreateFieldRequest, urlPath string) SportField {
	now := time.Now().UTC()

	return SportField{
		ID:          uuid.NewString(),
		SportType:   req.SportType,
		TerrainName: req.TerrainName,
		Dimension:   req.Dimension,
		TerrainType: req.TerrainType,
		Price:       req.Price,
		URLPath:     urlPath,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
