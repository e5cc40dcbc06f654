package records

import (
	"context"

	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/db/models"
	"github.com/drytrack/drytrack-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes drying record persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, record *models.DryingRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// CreateBatch inserts rows in one statement per chunk. Callers own the transaction.
func (r *Repository) CreateBatch(ctx context.Context, rows []models.DryingRecord) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&rows, 100).Error
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.DryingRecord, error) {
	var record models.DryingRecord
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindScoped loads id only when it is visible to principal.
func (r *Repository) FindScoped(ctx context.Context, principal *pkgauth.Principal, id uint) (*models.DryingRecord, error) {
	q, err := Scope(r.db.WithContext(ctx).Model(&models.DryingRecord{}), principal)
	if err != nil {
		return nil, err
	}
	var record models.DryingRecord
	if err := q.Where("drying_records.id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ExistingUUIDs returns the subset of ids already stored.
func (r *Repository) ExistingUUIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	out := make(map[uuid.UUID]struct{}, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var found []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.DryingRecord{}).
		Where("uuid IN ?", ids).
		Pluck("uuid", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		out[id] = struct{}{}
	}
	return out, nil
}

// ListScoped returns one page of the records visible to principal, newest first.
func (r *Repository) ListScoped(ctx context.Context, principal *pkgauth.Principal, params pagination.Params) ([]models.DryingRecord, string, error) {
	q, err := Scope(r.db.WithContext(ctx).Model(&models.DryingRecord{}), principal)
	if err != nil {
		return nil, "", err
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		q = q.Where(
			"(drying_records.timestamp < ?) OR (drying_records.timestamp = ? AND drying_records.id < ?)",
			cursor.Timestamp, cursor.Timestamp, cursor.ID,
		)
	}
	limit := pagination.NormalizeLimit(params.Limit)

	var rows []models.DryingRecord
	if err := q.Order("drying_records.timestamp DESC, drying_records.id DESC").
		Limit(limit + 1).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		last := rows[limit-1]
		next = pagination.EncodeCursor(pagination.Cursor{Timestamp: last.Timestamp, ID: last.ID})
		rows = rows[:limit]
	}
	return rows, next, nil
}

// ListAllScoped returns every record visible to principal, for aggregation.
func (r *Repository) ListAllScoped(ctx context.Context, principal *pkgauth.Principal) ([]models.DryingRecord, error) {
	q, err := Scope(r.db.WithContext(ctx).Model(&models.DryingRecord{}), principal)
	if err != nil {
		return nil, err
	}
	var rows []models.DryingRecord
	if err := q.Order("drying_records.timestamp ASC, drying_records.id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByMunicipality returns every record whose barangay belongs to municipalityID.
func (r *Repository) ListByMunicipality(ctx context.Context, municipalityID uint) ([]models.DryingRecord, error) {
	var rows []models.DryingRecord
	q := ByMunicipality(r.db.WithContext(ctx).Model(&models.DryingRecord{}), municipalityID)
	if err := q.Order("drying_records.timestamp ASC, drying_records.id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByFarmer returns a farmer's records, newest first.
func (r *Repository) ListByFarmer(ctx context.Context, farmerID uint) ([]models.DryingRecord, error) {
	var rows []models.DryingRecord
	if err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("timestamp DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update overwrites the editable columns of record.
func (r *Repository) Update(ctx context.Context, record *models.DryingRecord) error {
	return r.db.WithContext(ctx).
		Model(record).
		Select(
			"batch_name", "initial_weight", "temperature", "humidity", "sensor_value",
			"initial_moisture", "final_moisture", "drying_time", "final_weight", "shelf_life",
			"date_planted", "date_harvested", "due_date", "date_dried",
		).
		Updates(record).Error
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.DryingRecord{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
