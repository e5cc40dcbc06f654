package records

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/drytrack/drytrack-backend/internal/farmers"
	"github.com/drytrack/drytrack-backend/internal/localities"
	pkgaccess "github.com/drytrack/drytrack-backend/pkg/access"
	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/db"
	"github.com/drytrack/drytrack-backend/pkg/db/models"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/drytrack/drytrack-backend/pkg/logger"
	"github.com/drytrack/drytrack-backend/pkg/metrics"
	"github.com/drytrack/drytrack-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the drying record surface used by controllers.
type Service interface {
	Sync(ctx context.Context, payload SyncPayload) (*SyncResult, error)
	Create(ctx context.Context, principal *pkgauth.Principal, form RecordForm) (*RecordDTO, error)
	Update(ctx context.Context, principal *pkgauth.Principal, id uint, form RecordForm) (*RecordDTO, error)
	Delete(ctx context.Context, principal *pkgauth.Principal, id uint) error
	Get(ctx context.Context, principal *pkgauth.Principal, id uint) (*RecordDTO, error)
	List(ctx context.Context, principal *pkgauth.Principal, params pagination.Params) (*Page, error)
	FetchByFarmerUUID(ctx context.Context, farmerUUID string) ([]RecordDTO, error)
	FarmerOptions(ctx context.Context, principal *pkgauth.Principal) ([]FarmerOption, error)
}

// FarmerOption is one selectable farmer on the add record form.
type FarmerOption struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ServiceParams struct {
	DB        *db.Client
	Logger    *logger.Logger
	Metrics   *metrics.SyncMetrics
	MaxDrafts int
	Now       func() time.Time
}

type service struct {
	db        *db.Client
	repo      *Repository
	logg      *logger.Logger
	metrics   *metrics.SyncMetrics
	maxDrafts int
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		db:        params.DB,
		repo:      NewRepository(params.DB.DB()),
		logg:      params.Logger,
		metrics:   params.Metrics,
		maxDrafts: params.MaxDrafts,
		now:       params.Now,
	}, nil
}

// attribution is the farmer a new record belongs to and the user credited as author.
type attribution struct {
	farmer   models.Farmer
	authorID uint
}

// Create stores one interactively submitted record. The target farmer must be
// inside the acting principal's scope; a mismatch is a forbidden error and
// nothing is written.
func (s *service) Create(ctx context.Context, principal *pkgauth.Principal, form RecordForm) (*RecordDTO, error) {
	if err := gate(principal, enums.ActionAddRecord); err != nil {
		return nil, err
	}
	if form.InitialWeight == nil || form.FinalWeight == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial_weight and final_weight are required")
	}

	var created models.DryingRecord
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		who, err := resolveTarget(ctx, tx, principal, form.FarmerID)
		if err != nil {
			return err
		}
		barangay, err := localities.NewRepository(tx).FindBarangay(ctx, who.farmer.BarangayID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load farmer barangay")
		}

		created = snapshot(who.farmer, barangay, who.authorID, s.now().UTC())
		applyForm(&created, form)
		if err := NewRepository(tx).Create(ctx, &created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create drying record")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(&created)
	return &dto, nil
}

// resolveTarget decides which farmer a form submission is attributed to.
func resolveTarget(ctx context.Context, tx *gorm.DB, principal *pkgauth.Principal, rawFarmerID string) (*attribution, error) {
	repo := farmers.NewRepository(tx)
	rawFarmerID = strings.TrimSpace(rawFarmerID)

	switch principal.Role {
	case enums.RoleFarmer:
		selfID, ok := principal.FarmerID()
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "farmer role on non-farmer principal")
		}
		if rawFarmerID != "" && rawFarmerID != strconv.FormatUint(uint64(selfID), 10) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "farmers may only add records for themselves")
		}
		farmer, err := repo.FindByID(ctx, selfID)
		if err != nil {
			return nil, notFoundOr(err, "farmer not found", "load farmer")
		}
		return &attribution{farmer: *farmer, authorID: farmer.UserID}, nil

	case enums.RoleBarangay:
		staffID, ok := principal.UserID()
		if !ok || principal.BarangayID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "barangay account has no barangay")
		}
		if rawFarmerID == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer_id is required")
		}
		farmerID, err := strconv.ParseUint(rawFarmerID, 10, 64)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer_id must be a number")
		}
		farmer, err := repo.FindByID(ctx, uint(farmerID))
		if err != nil {
			return nil, notFoundOr(err, "farmer not found", "load farmer")
		}
		if farmer.BarangayID != *principal.BarangayID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "farmer is not registered in your barangay")
		}
		return &attribution{farmer: *farmer, authorID: staffID}, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not add records")
}

// Update overwrites the measured fields of a record visible to principal.
// Attribution snapshots are left as they were at insert time.
func (s *service) Update(ctx context.Context, principal *pkgauth.Principal, id uint, form RecordForm) (*RecordDTO, error) {
	if err := gate(principal, enums.ActionEditRecord); err != nil {
		return nil, err
	}
	if form.InitialWeight == nil || form.FinalWeight == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial_weight and final_weight are required")
	}

	var updated *models.DryingRecord
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		record, err := loadScoped(ctx, repo, principal, id)
		if err != nil {
			return err
		}
		applyForm(record, form)
		if err := repo.Update(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update drying record")
		}
		updated = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, principal *pkgauth.Principal, id uint) error {
	if err := gate(principal, enums.ActionDeleteRecord); err != nil {
		return err
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if _, err := loadScoped(ctx, repo, principal, id); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return notFoundOr(err, "record not found", "delete drying record")
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, principal *pkgauth.Principal, id uint) (*RecordDTO, error) {
	if err := gate(principal, enums.ActionViewRecords); err != nil {
		return nil, err
	}
	record, err := loadScoped(ctx, s.repo, principal, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(record)
	return &dto, nil
}

// List returns one page of the principal's visible records, newest first.
func (s *service) List(ctx context.Context, principal *pkgauth.Principal, params pagination.Params) (*Page, error) {
	if err := gate(principal, enums.ActionViewRecords); err != nil {
		return nil, err
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.ListScoped(ctx, principal, params)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list drying records")
	}
	return &Page{Records: FromModels(rows), NextCursor: next}, nil
}

// FetchByFarmerUUID lists a farmer's records addressed by the farmer's external uuid.
func (s *service) FetchByFarmerUUID(ctx context.Context, farmerUUID string) ([]RecordDTO, error) {
	raw := strings.TrimSpace(farmerUUID)
	if raw == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer_uuid is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer_uuid is not a valid uuid")
	}
	farmer, err := farmers.NewRepository(s.db.DB()).FindByUUID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "farmer not found", "load farmer")
	}
	rows, err := s.repo.ListByFarmer(ctx, farmer.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list farmer records")
	}
	return FromModels(rows), nil
}

// FarmerOptions lists the farmers principal may attribute a new record to.
func (s *service) FarmerOptions(ctx context.Context, principal *pkgauth.Principal) ([]FarmerOption, error) {
	if err := gate(principal, enums.ActionAddRecord); err != nil {
		return nil, err
	}
	repo := farmers.NewRepository(s.db.DB())
	var rows []models.Farmer
	switch principal.Role {
	case enums.RoleFarmer:
		selfID, _ := principal.FarmerID()
		farmer, err := repo.FindByID(ctx, selfID)
		if err != nil {
			return nil, notFoundOr(err, "farmer not found", "load farmer")
		}
		rows = []models.Farmer{*farmer}
	case enums.RoleBarangay:
		if principal.BarangayID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "barangay account has no barangay")
		}
		list, err := repo.ListByBarangay(ctx, *principal.BarangayID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list farmers")
		}
		rows = list
	}
	out := make([]FarmerOption, 0, len(rows))
	for _, f := range rows {
		out = append(out, FarmerOption{ID: f.ID, Name: f.FullName()})
	}
	return out, nil
}

func gate(principal *pkgauth.Principal, action enums.Action) error {
	if principal == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !pkgaccess.Authorize(principal.Role, action) {
		return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("role %s may not %s", principal.Role, action))
	}
	return nil
}

// loadScoped distinguishes a missing record (not found) from one that exists
// outside the principal's scope (forbidden).
func loadScoped(ctx context.Context, repo *Repository, principal *pkgauth.Principal, id uint) (*models.DryingRecord, error) {
	if _, err := repo.FindByID(ctx, id); err != nil {
		return nil, notFoundOr(err, "record not found", "load drying record")
	}
	record, err := repo.FindScoped(ctx, principal, id)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "record is outside your scope")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load drying record")
	}
	return record, nil
}

func notFoundOr(err error, notFound, internal string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, internal)
}

func snapshot(farmer models.Farmer, barangay *models.Barangay, authorID uint, now time.Time) models.DryingRecord {
	farmerID := farmer.ID
	farmerName := farmer.FullName()
	barangayID := barangay.ID
	barangayName := barangay.Name
	municipalityID := barangay.MunicipalityID
	return models.DryingRecord{
		Timestamp:      now,
		UserID:         authorID,
		FarmerID:       &farmerID,
		FarmerName:     &farmerName,
		BarangayID:     &barangayID,
		BarangayName:   &barangayName,
		MunicipalityID: &municipalityID,
	}
}

func applyForm(record *models.DryingRecord, form RecordForm) {
	record.BatchName = strings.TrimSpace(form.BatchName)
	if form.InitialWeight != nil {
		record.InitialWeight = *form.InitialWeight
	}
	if form.FinalWeight != nil {
		record.FinalWeight = *form.FinalWeight
	}
	record.Temperature = form.Temperature
	record.Humidity = form.Humidity
	record.SensorValue = form.SensorValue
	record.InitialMoisture = form.InitialMoisture
	record.FinalMoisture = form.FinalMoisture
	record.DryingTime = strings.TrimSpace(form.DryingTime)
	record.ShelfLife = optionalString(form.ShelfLife)
	record.DatePlanted = ParseDate(form.DatePlanted)
	record.DateHarvested = ParseDate(form.DateHarvested)
	record.DueDate = ParseDate(form.DueDate)
	record.DateDried = ParseDate(form.DateDried)
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
