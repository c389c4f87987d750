package service

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/mealtrack-go-api/internal/models"
	"github.com/noah-isme/mealtrack-go-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type noopRecorder struct{}

func (noopRecorder) Record(context.Context, ActivityEntry) {}

type fakeStudentRepo struct {
	students []models.Student
	created  []models.Student
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	student.ID = uint(len(f.students) + len(f.created) + 1)
	f.created = append(f.created, *student)
	return nil
}

func (f *fakeStudentRepo) CreateBatch(_ context.Context, students []models.Student) (int64, error) {
	f.created = append(f.created, students...)
	return int64(len(students)), nil
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id uint) (models.Student, error) {
	for _, student := range f.students {
		if student.ID == id {
			return student, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (f *fakeStudentRepo) GetByStudentIDNumber(_ context.Context, idNumber string) (models.Student, error) {
	for _, student := range f.students {
		if student.StudentIDNumber == idNumber {
			return student, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (f *fakeStudentRepo) List(_ context.Context, _ repository.StudentFilter) ([]models.Student, int64, error) {
	return f.students, int64(len(f.students)), nil
}

func (f *fakeStudentRepo) ListByCohorts(_ context.Context, cohorts []models.Schedule) ([]models.Student, error) {
	var matched []models.Student
	for _, student := range f.students {
		for _, cohort := range cohorts {
			if student.Program == cohort.Program && student.YearLevel == cohort.YearLevel {
				matched = append(matched, student)
				break
			}
		}
	}
	return matched, nil
}

func (f *fakeStudentRepo) Update(_ context.Context, id uint, _ map[string]interface{}) (models.Student, error) {
	for _, student := range f.students {
		if student.ID == id {
			return student, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (f *fakeStudentRepo) SoftDelete(_ context.Context, id uint) error {
	for _, student := range f.students {
		if student.ID == id {
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeStudentRepo) CountByProgram(_ context.Context, program string) (int64, error) {
	var count int64
	for _, student := range f.students {
		if student.Program == program {
			count++
		}
	}
	return count, nil
}

type fakeScheduleRepo struct {
	rows []models.Schedule
}

func (f *fakeScheduleRepo) Upsert(_ context.Context, schedule *models.Schedule) error {
	for i, row := range f.rows {
		if row.Program == schedule.Program && row.YearLevel == schedule.YearLevel && row.DayOfWeek == schedule.DayOfWeek {
			f.rows[i].IsEligible = schedule.IsEligible
			schedule.ID = row.ID
			return nil
		}
	}
	schedule.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, *schedule)
	return nil
}

func (f *fakeScheduleRepo) Find(_ context.Context, program string, yearLevel int, dayOfWeek string) (models.Schedule, error) {
	for _, row := range f.rows {
		if row.Program == program && row.YearLevel == yearLevel && row.DayOfWeek == dayOfWeek {
			return row, nil
		}
	}
	return models.Schedule{}, gorm.ErrRecordNotFound
}

func (f *fakeScheduleRepo) List(_ context.Context, program string) ([]models.Schedule, error) {
	if program == "" {
		return f.rows, nil
	}
	var matched []models.Schedule
	for _, row := range f.rows {
		if row.Program == program {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

func (f *fakeScheduleRepo) ListEligibleByDay(_ context.Context, dayOfWeek string) ([]models.Schedule, error) {
	var matched []models.Schedule
	for _, row := range f.rows {
		if row.DayOfWeek == dayOfWeek && row.IsEligible {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

func (f *fakeScheduleRepo) Delete(_ context.Context, id uint) error {
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeMealRepo struct {
	records      []models.MealRecord
	statusCounts repository.StatusCounts
	programRows  []repository.CohortCounts
	yearRows     []repository.CohortCounts
}

func (f *fakeMealRepo) Insert(_ context.Context, record *models.MealRecord) error {
	record.ID = uint(len(f.records) + 1)
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeMealRepo) InsertClaim(_ context.Context, record *models.MealRecord) (bool, error) {
	day := models.ClaimDayKey(record.DateChecked)
	record.ClaimDay = &day
	for _, existing := range f.records {
		if existing.StudentID != nil && record.StudentID != nil &&
			*existing.StudentID == *record.StudentID &&
			existing.ClaimDay != nil && *existing.ClaimDay == day {
			return false, nil
		}
	}
	record.ID = uint(len(f.records) + 1)
	f.records = append(f.records, *record)
	return true, nil
}

func (f *fakeMealRepo) InsertBatch(_ context.Context, records []models.MealRecord) (int64, error) {
	f.records = append(f.records, records...)
	return int64(len(records)), nil
}

func (f *fakeMealRepo) List(_ context.Context, _ repository.MealRecordFilter) ([]models.MealRecord, int64, error) {
	return f.records, int64(len(f.records)), nil
}

func (f *fakeMealRepo) StudentIDsWithRecordBetween(_ context.Context, start, end time.Time) ([]uint, error) {
	var ids []uint
	for _, record := range f.records {
		if record.StudentID == nil {
			continue
		}
		if record.DateChecked.Before(start) || record.DateChecked.After(end) {
			continue
		}
		ids = append(ids, *record.StudentID)
	}
	return ids, nil
}

func (f *fakeMealRepo) CountStatuses(_ context.Context, start, end time.Time) (repository.StatusCounts, error) {
	if f.statusCounts != (repository.StatusCounts{}) {
		return f.statusCounts, nil
	}
	var counts repository.StatusCounts
	for _, record := range f.records {
		if record.DateChecked.Before(start) || record.DateChecked.After(end) {
			continue
		}
		switch record.Status {
		case models.MealStatusClaimed:
			counts.Claimed++
		case models.MealStatusUnclaimed:
			counts.Unclaimed++
		}
	}
	return counts, nil
}

func (f *fakeMealRepo) GroupByProgram(_ context.Context, _, _ time.Time) ([]repository.CohortCounts, error) {
	return f.programRows, nil
}

func (f *fakeMealRepo) GroupByYearLevel(_ context.Context, _, _ time.Time, _ string) ([]repository.CohortCounts, error) {
	return f.yearRows, nil
}

type fakeProgramRepo struct {
	programs []models.Program
}

func (f *fakeProgramRepo) Create(_ context.Context, program *models.Program) error {
	program.ID = uint(len(f.programs) + 1)
	f.programs = append(f.programs, *program)
	return nil
}

func (f *fakeProgramRepo) GetByID(_ context.Context, id uint) (models.Program, error) {
	for _, program := range f.programs {
		if program.ID == id {
			return program, nil
		}
	}
	return models.Program{}, gorm.ErrRecordNotFound
}

func (f *fakeProgramRepo) GetByName(_ context.Context, name string) (models.Program, error) {
	for _, program := range f.programs {
		if program.Name == name {
			return program, nil
		}
	}
	return models.Program{}, gorm.ErrRecordNotFound
}

func (f *fakeProgramRepo) List(_ context.Context) ([]models.Program, error) {
	return f.programs, nil
}

func (f *fakeProgramRepo) Update(_ context.Context, id uint, _ map[string]interface{}) (models.Program, error) {
	return f.GetByID(context.Background(), id)
}

func (f *fakeProgramRepo) Delete(_ context.Context, id uint) error {
	for i, program := range f.programs {
		if program.ID == id {
			f.programs = append(f.programs[:i], f.programs[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
