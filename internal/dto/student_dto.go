package dto

import (
	"time"

	"github.com/noah-isme/mealtrack-go-api/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationMeta derives paging metadata from a total row count.
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total, TotalPages: pages}
}

// StudentCreateRequest captures payloads for creating students.
type StudentCreateRequest struct {
	StudentIDNumber string `json:"student_id_number" validate:"required,min=3,max=32"`
	Name            string `json:"name" validate:"required,min=2"`
	Program         string `json:"program" validate:"required"`
	YearLevel       int    `json:"year_level" validate:"required,min=1,max=4"`
	Section         string `json:"section" validate:"omitempty,max=32"`
	Email           string `json:"email" validate:"omitempty,email"`
}

// StudentUpdateRequest captures partial update payloads.
type StudentUpdateRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2"`
	Program   *string `json:"program" validate:"omitempty"`
	YearLevel *int    `json:"year_level" validate:"omitempty,min=1,max=4"`
	Section   *string `json:"section" validate:"omitempty,max=32"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

// StudentListRequest defines filters for listing students.
type StudentListRequest struct {
	Page      int
	PageSize  int
	Search    string
	Program   string
	YearLevel int
	Section   string
	Sort      string
}

// StudentBulkImportRequest carries rows for a bulk import.
type StudentBulkImportRequest struct {
	Students []StudentCreateRequest `json:"students" validate:"required,min=1,dive"`
}

// StudentBulkImportResponse reports how many rows were inserted.
type StudentBulkImportResponse struct {
	CreatedCount int64 `json:"created_count"`
}

// StudentResponse serializes student data for admin endpoints.
type StudentResponse struct {
	ID                uint      `json:"id"`
	StudentIDNumber   string    `json:"student_id_number"`
	Name              string    `json:"name"`
	Program           string    `json:"program"`
	YearLevel         int       `json:"year_level"`
	Section           string    `json:"section,omitempty"`
	Email             string    `json:"email,omitempty"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// StudentListResponse wraps a paginated student listing.
type StudentListResponse struct {
	Items      []StudentResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewStudentResponse converts a student model into a DTO.
func NewStudentResponse(student models.Student) StudentResponse {
	email := ""
	if student.Email != nil {
		email = *student.Email
	}
	return StudentResponse{
		ID:                student.ID,
		StudentIDNumber:   student.StudentIDNumber,
		Name:              student.Name,
		Program:           student.Program,
		YearLevel:         student.YearLevel,
		Section:           student.Section,
		Email:             email,
		ProfilePictureURL: student.ProfilePictureURL,
		CreatedAt:         student.CreatedAt,
		UpdatedAt:         student.UpdatedAt,
	}
}
