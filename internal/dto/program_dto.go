package dto

import (
	"time"

	"github.com/noah-isme/mealtrack-go-api/internal/models"
)

// ProgramCreateRequest captures payloads for registering a program.
type ProgramCreateRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=32,uppercase"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

// ProgramUpdateRequest captures partial program updates.
type ProgramUpdateRequest struct {
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
}

// ProgramResponse serializes program reference data.
type ProgramResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProgramResponse converts a program model into a DTO.
func NewProgramResponse(program models.Program) ProgramResponse {
	return ProgramResponse{
		ID:          program.ID,
		Name:        program.Name,
		Description: program.Description,
		Color:       program.Color,
		CreatedAt:   program.CreatedAt,
		UpdatedAt:   program.UpdatedAt,
	}
}
