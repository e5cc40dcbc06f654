package auth

import (
	"context"
	"strings"

	"github.com/drytrack/drytrack-backend/internal/localities"
	"github.com/drytrack/drytrack-backend/internal/users"
	"github.com/drytrack/drytrack-backend/pkg/db"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"gorm.io/gorm"
)

// RegisterService handles staff sign-up.
type RegisterService interface {
	SignUpBarangay(ctx context.Context, req SignUpRequest) (*users.UserDTO, error)
	SignUpMunicipal(ctx context.Context, req MunicipalSignUpRequest) (*users.UserDTO, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB     *db.Client
	Hasher passwordHasher
}

type registerService struct {
	db     *db.Client
	hasher passwordHasher
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Hasher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "password hasher required")
	}
	return &registerService{db: params.DB, hasher: params.Hasher}, nil
}

// SignUpBarangay creates a barangay staff user, creating the municipality and
// barangay on first reference.
func (s *registerService) SignUpBarangay(ctx context.Context, req SignUpRequest) (*users.UserDTO, error) {
	email, hash, err := s.prepare(req.Email, req.Password1, req.Password2)
	if err != nil {
		return nil, err
	}
	fullName := defaultName(req.FullName, defaultBarangayFullName)

	var created *users.UserDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		if err := ensureEmailFree(ctx, userRepo, email); err != nil {
			return err
		}
		places := localities.NewRepository(tx)
		municipality, err := places.GetOrCreateMunicipality(ctx, req.Municipality)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "municipality")
		}
		barangay, err := places.GetOrCreateBarangay(ctx, req.BarangayName, municipality.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "barangay")
		}
		barangayID := barangay.ID
		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			FullName:     fullName,
			Role:         enums.RoleBarangay,
			PasswordHash: hash,
			BarangayID:   &barangayID,
		})
		if err != nil {
			return createUserError(err)
		}
		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SignUpMunicipal creates a municipal officer bound to a municipality.
func (s *registerService) SignUpMunicipal(ctx context.Context, req MunicipalSignUpRequest) (*users.UserDTO, error) {
	email, hash, err := s.prepare(req.Email, req.Password1, req.Password2)
	if err != nil {
		return nil, err
	}
	fullName := defaultName(req.FullName, defaultMunicipalFullName)

	var created *users.UserDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		if err := ensureEmailFree(ctx, userRepo, email); err != nil {
			return err
		}
		municipality, err := localities.NewRepository(tx).GetOrCreateMunicipality(ctx, req.Municipality)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "municipality")
		}
		municipalityID := municipality.ID
		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:          email,
			FullName:       fullName,
			Role:           enums.RoleMunicipal,
			PasswordHash:   hash,
			MunicipalityID: &municipalityID,
		})
		if err != nil {
			return createUserError(err)
		}
		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *registerService) prepare(email, password1, password2 string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if password1 == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	if password1 != password2 {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}
	hash, err := s.hasher.Hash(password1)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return email, hash, nil
}

func ensureEmailFree(ctx context.Context, repo *users.Repository, email string) error {
	_, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	case db.IsNotFound(err):
		return nil
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}
}

func createUserError(err error) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
}

func defaultName(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
