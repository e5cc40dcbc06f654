package farmers

import (
	"context"

	"github.com/drytrack/drytrack-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes farmer persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, dto CreateFarmerDTO) (*models.Farmer, error) {
	farmer := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(farmer).Error; err != nil {
		return nil, err
	}
	return farmer, nil
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Farmer, error) {
	var farmer models.Farmer
	if err := r.db.WithContext(ctx).First(&farmer, id).Error; err != nil {
		return nil, err
	}
	return &farmer, nil
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.Farmer, error) {
	var farmer models.Farmer
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&farmer).Error; err != nil {
		return nil, err
	}
	return &farmer, nil
}

func (r *Repository) FindByUUID(ctx context.Context, id uuid.UUID) (*models.Farmer, error) {
	var farmer models.Farmer
	if err := r.db.WithContext(ctx).Where("uuid = ?", id).First(&farmer).Error; err != nil {
		return nil, err
	}
	return &farmer, nil
}

// FindByUUIDs loads every farmer whose uuid is in ids, keyed by uuid.
func (r *Repository) FindByUUIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Farmer, error) {
	out := make(map[uuid.UUID]models.Farmer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Farmer
	if err := r.db.WithContext(ctx).Where("uuid IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UUID] = row
	}
	return out, nil
}

// ListByBarangay returns the farmers registered in barangayID ordered by last name.
func (r *Repository) ListByBarangay(ctx context.Context, barangayID uint) ([]models.Farmer, error) {
	var rows []models.Farmer
	if err := r.db.WithContext(ctx).
		Where("barangay_id = ?", barangayID).
		Order("last_name ASC, first_name ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.Farmer{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}
