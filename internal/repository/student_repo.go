package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/mealtrack-go-api/internal/models"
)

// StudentFilter narrows student listings from the admin console.
type StudentFilter struct {
	Search    string
	Program   string
	YearLevel int
	Section   string
	Sort      string
	Page      int
	PageSize  int
}

// StudentRepository provides access to student records.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	CreateBatch(ctx context.Context, students []models.Student) (int64, error)
	GetByID(ctx context.Context, id uint) (models.Student, error)
	GetByStudentIDNumber(ctx context.Context, idNumber string) (models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error)
	ListByCohorts(ctx context.Context, cohorts []models.Schedule) ([]models.Student, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Student, error)
	SoftDelete(ctx context.Context, id uint) error
	CountByProgram(ctx context.Context, program string) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// CreateBatch inserts students in unordered batches. A partial failure leaves
// the successfully inserted rows in place; callers re-run imports after
// fixing the offending rows.
func (r *studentRepository) CreateBatch(ctx context.Context, students []models.Student) (int64, error) {
	if len(students) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).CreateInBatches(students, 100)
	return tx.RowsAffected, tx.Error
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) GetByStudentIDNumber(ctx context.Context, idNumber string) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Where("student_id_number = ?", idNumber).
		First(&student).Error
	if err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(student_id_number) LIKE ?", like, like)
	}
	if filter.Program != "" {
		query = query.Where("program = ?", filter.Program)
	}
	if filter.YearLevel > 0 {
		query = query.Where("year_level = ?", filter.YearLevel)
	}
	if filter.Section != "" {
		query = query.Where("section = ?", filter.Section)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := filter.Sort
	if sort == "" {
		sort = "student_id_number ASC"
	}
	query = query.Order(sort)

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var students []models.Student
	if err := query.Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

// ListByCohorts returns all students belonging to any of the (program, year
// level) pairs carried by the given schedule rows.
func (r *studentRepository) ListByCohorts(ctx context.Context, cohorts []models.Schedule) ([]models.Student, error) {
	if len(cohorts) == 0 {
		return nil, nil
	}

	condition := r.db.Where("program = ? AND year_level = ?", cohorts[0].Program, cohorts[0].YearLevel)
	for _, cohort := range cohorts[1:] {
		condition = condition.Or("program = ? AND year_level = ?", cohort.Program, cohort.YearLevel)
	}

	var students []models.Student
	if err := r.db.WithContext(ctx).Model(&models.Student{}).Where(condition).Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Student, error) {
	tx := r.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return models.Student{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *studentRepository) SoftDelete(ctx context.Context, id uint) error {
	tx := r.db.WithContext(ctx).Delete(&models.Student{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentRepository) CountByProgram(ctx context.Context, program string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("program = ?", program).
		Count(&count).Error
	return count, err
}
