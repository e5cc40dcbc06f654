package localities

import (
	"context"
	"errors"
	"strings"

	"github.com/drytrack/drytrack-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists municipalities and barangays. Rows are created lazily
// and never deleted.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreateMunicipality returns the municipality named name, inserting it when missing.
func (r *Repository) GetOrCreateMunicipality(ctx context.Context, name string) (*models.Municipality, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("municipality name is required")
	}
	conn := r.db.WithContext(ctx)
	if err := conn.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Municipality{Name: name}).Error; err != nil {
		return nil, err
	}
	var m models.Municipality
	if err := conn.Where("name = ?", name).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetOrCreateBarangay returns the barangay (name, municipalityID), inserting it when missing.
func (r *Repository) GetOrCreateBarangay(ctx context.Context, name string, municipalityID uint) (*models.Barangay, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("barangay name is required")
	}
	conn := r.db.WithContext(ctx)
	if err := conn.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Barangay{Name: name, MunicipalityID: municipalityID}).Error; err != nil {
		return nil, err
	}
	var b models.Barangay
	if err := conn.Where("name = ? AND municipality_id = ?", name, municipalityID).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) FindMunicipality(ctx context.Context, id uint) (*models.Municipality, error) {
	var m models.Municipality
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) FindBarangay(ctx context.Context, id uint) (*models.Barangay, error) {
	var b models.Barangay
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) ListMunicipalities(ctx context.Context) ([]models.Municipality, error) {
	var rows []models.Municipality
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ListBarangays(ctx context.Context) ([]models.Barangay, error) {
	var rows []models.Barangay
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ListBarangaysByMunicipality(ctx context.Context, municipalityID uint) ([]models.Barangay, error) {
	var rows []models.Barangay
	if err := r.db.WithContext(ctx).
		Where("municipality_id = ?", municipalityID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
