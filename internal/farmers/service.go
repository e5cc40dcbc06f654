package farmers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgaccess "github.com/drytrack/drytrack-backend/pkg/access"
	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/db"
	"github.com/drytrack/drytrack-backend/pkg/db/models"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines the farmer operations exposed to controllers.
type Service interface {
	Add(ctx context.Context, principal *pkgauth.Principal, req AddFarmerRequest) (*FarmerDTO, error)
	ListForPrincipal(ctx context.Context, principal *pkgauth.Principal) ([]FarmerDTO, error)
	PublicProfile(ctx context.Context, username string) (*PublicProfileDTO, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

type barangayLookup interface {
	FindBarangay(ctx context.Context, id uint) (*models.Barangay, error)
}

type ServiceParams struct {
	DB         *db.Client
	Hasher     passwordHasher
	Localities barangayLookup
}

type service struct {
	db         *db.Client
	repo       *Repository
	hasher     passwordHasher
	localities barangayLookup
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	if params.Localities == nil {
		return nil, fmt.Errorf("localities repository required")
	}
	return &service{
		db:         params.DB,
		repo:       NewRepository(params.DB.DB()),
		hasher:     params.Hasher,
		localities: params.Localities,
	}, nil
}

// Add registers a farmer under the acting barangay staff user's barangay.
func (s *service) Add(ctx context.Context, principal *pkgauth.Principal, req AddFarmerRequest) (*FarmerDTO, error) {
	staffID, barangayID, err := requireBarangayStaff(principal, enums.ActionCreateFarmer)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "hash password")
	}

	var middle *string
	if m := strings.TrimSpace(req.MiddleName); m != "" {
		middle = &m
	}

	var created *models.Farmer
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if _, err := repo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if !db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}

		farmer, err := repo.Create(ctx, CreateFarmerDTO{
			UUID:         uuid.New(),
			Username:     username,
			PasswordHash: hash,
			FirstName:    strings.TrimSpace(req.FirstName),
			MiddleName:   middle,
			LastName:     strings.TrimSpace(req.LastName),
			BarangayID:   barangayID,
			UserID:       staffID,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "username already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create farmer")
		}
		created = farmer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

// ListForPrincipal returns the farmers in the acting staff user's barangay.
func (s *service) ListForPrincipal(ctx context.Context, principal *pkgauth.Principal) ([]FarmerDTO, error) {
	_, barangayID, err := requireBarangayStaff(principal, enums.ActionManageFarmers)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByBarangay(ctx, barangayID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list farmers")
	}
	out := make([]FarmerDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) PublicProfile(ctx context.Context, username string) (*PublicProfileDTO, error) {
	farmer, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "farmer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup farmer")
	}
	profile := &PublicProfileDTO{
		UUID:       farmer.UUID,
		Username:   farmer.Username,
		FirstName:  farmer.FirstName,
		MiddleName: farmer.MiddleName,
		LastName:   farmer.LastName,
		FullName:   farmer.FullName(),
		BarangayID: farmer.BarangayID,
	}
	barangay, err := s.localities.FindBarangay(ctx, farmer.BarangayID)
	switch {
	case err == nil:
		profile.BarangayName = barangay.Name
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup barangay")
	}
	return profile, nil
}

func requireBarangayStaff(principal *pkgauth.Principal, action enums.Action) (uint, uint, error) {
	if principal == nil {
		return 0, 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !pkgaccess.Authorize(principal.Role, action) {
		return 0, 0, pkgerrors.New(pkgerrors.CodeForbidden, "barangay staff only")
	}
	staffID, ok := principal.UserID()
	if !ok || principal.BarangayID == nil {
		return 0, 0, pkgerrors.New(pkgerrors.CodeForbidden, "barangay staff only")
	}
	return staffID, *principal.BarangayID, nil
}
