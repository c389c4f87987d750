package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/models"
)

func newStudentFixture() (StudentService, *fakeStudentRepo) {
	students := &fakeStudentRepo{}
	programs := &fakeProgramRepo{programs: []models.Program{
		{ID: 1, Name: "BSIT"},
		{ID: 2, Name: "ACT"},
	}}
	svc := NewStudentService(students, programs, validator.New(), noopRecorder{}, nil, "students.example.edu", testLogger())
	return svc, students
}

func TestStudentCreateDerivesEmail(t *testing.T) {
	svc, students := newStudentFixture()

	response, err := svc.Create(context.Background(), dto.StudentCreateRequest{
		StudentIDNumber: "2024-0001",
		Name:            "Juan Dela Cruz",
		Program:         "BSIT",
		YearLevel:       2,
		Section:         "A",
	}, 1)
	require.NoError(t, err)
	require.Equal(t, "juan.delacruz@students.example.edu", response.Email)
	require.Len(t, students.created, 1)
}

func TestStudentCreateRejectsUnknownProgram(t *testing.T) {
	svc, _ := newStudentFixture()

	_, err := svc.Create(context.Background(), dto.StudentCreateRequest{
		StudentIDNumber: "2024-0001",
		Name:            "Juan Dela Cruz",
		Program:         "BSCS",
		YearLevel:       1,
	}, 1)
	require.ErrorIs(t, err, ErrUnknownProgram)
}

func TestStudentCreateCapsACTYearLevel(t *testing.T) {
	svc, _ := newStudentFixture()

	_, err := svc.Create(context.Background(), dto.StudentCreateRequest{
		StudentIDNumber: "2024-0002",
		Name:            "Maria Santos",
		Program:         "ACT",
		YearLevel:       3,
	}, 1)
	require.ErrorIs(t, err, ErrYearLevelOutOfRange)

	_, err = svc.Create(context.Background(), dto.StudentCreateRequest{
		StudentIDNumber: "2024-0002",
		Name:            "Maria Santos",
		Program:         "ACT",
		YearLevel:       2,
	}, 1)
	require.NoError(t, err)
}

func TestStudentBulkImportReportsOffendingRow(t *testing.T) {
	svc, students := newStudentFixture()

	_, err := svc.BulkImport(context.Background(), dto.StudentBulkImportRequest{
		Students: []dto.StudentCreateRequest{
			{StudentIDNumber: "2024-0001", Name: "Juan Dela Cruz", Program: "BSIT", YearLevel: 1},
			{StudentIDNumber: "2024-0002", Name: "Maria Santos", Program: "ACT", YearLevel: 4},
		},
	}, 1)
	require.ErrorIs(t, err, ErrYearLevelOutOfRange)
	require.Contains(t, err.Error(), "2024-0002")
	require.Empty(t, students.created)
}

func TestDeriveEmail(t *testing.T) {
	require.Equal(t, "juan.delacruz@example.edu", deriveEmail("Juan Dela Cruz", "example.edu"))
	require.Equal(t, "maria@example.edu", deriveEmail("Maria", "example.edu"))
	require.Equal(t, "", deriveEmail("Juan Dela Cruz", ""))
	require.Equal(t, "", deriveEmail("  ", "example.edu"))
}
