package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/config"
	"github.com/drytrack/drytrack-backend/pkg/db"
	"github.com/drytrack/drytrack-backend/pkg/db/models"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/drytrack/drytrack-backend/pkg/logger"
)

const invalidCredentialsMessage = "invalid credentials"

// Service authenticates principals and resolves session identities.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	// LoginWithEmail issues a session for a staff user whose email was
	// verified by an external identity provider.
	LoginWithEmail(ctx context.Context, email string) (*LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
	Resolve(ctx context.Context, ref pkgauth.PrincipalRef) (*pkgauth.Principal, error)
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
}

type farmerRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Farmer, error)
	FindByUsername(ctx context.Context, username string) (*models.Farmer, error)
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
}

type barangayLookup interface {
	FindBarangay(ctx context.Context, id uint) (*models.Barangay, error)
}

type passwordVerifier interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
	NeedsRehash(encoded string) bool
}

type sessionManager interface {
	Open(ctx context.Context, ref pkgauth.PrincipalRef) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Users          userRepository
	Farmers        farmerRepository
	Localities     barangayLookup
	Hasher         passwordVerifier
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Logger         *logger.Logger
	Now            func() time.Time
}

type service struct {
	users      userRepository
	farmers    farmerRepository
	localities barangayLookup
	hasher     passwordVerifier
	session    sessionManager
	jwtCfg     config.JWTConfig
	logg       *logger.Logger
	now        func() time.Time
}

// NewService constructs the login service.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Farmers == nil {
		return nil, fmt.Errorf("farmer repository is required")
	}
	if params.Localities == nil {
		return nil, fmt.Errorf("locality repository is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		users:      params.Users,
		farmers:    params.Farmers,
		localities: params.Localities,
		hasher:     params.Hasher,
		session:    params.SessionManager,
		jwtCfg:     params.JWTConfig,
		logg:       params.Logger,
		now:        params.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	identifier := strings.TrimSpace(req.Email)
	if identifier == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if strings.Contains(identifier, "@") {
		user, err := s.authenticateUser(ctx, identifier, req.Password)
		if err != nil {
			return nil, err
		}
		return s.issueForUser(ctx, user)
	}
	farmer, err := s.authenticateFarmer(ctx, identifier, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, pkgauth.FarmerRef(farmer.ID), enums.RoleFarmer, farmer.FullName())
}

func (s *service) LoginWithEmail(ctx context.Context, email string) (*LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "no account for this email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return s.issueForUser(ctx, user)
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	if err := s.session.Revoke(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// Resolve loads the principal behind a tagged id.
func (s *service) Resolve(ctx context.Context, ref pkgauth.PrincipalRef) (*pkgauth.Principal, error) {
	switch ref.Kind {
	case enums.PrincipalKindUser:
		user, err := s.users.FindByID(ctx, ref.ID)
		if err != nil {
			return nil, unauthorizedOr(err, "lookup user")
		}
		p := &pkgauth.Principal{
			Ref:            ref,
			Role:           user.Role,
			DisplayName:    user.FullName,
			BarangayID:     user.BarangayID,
			MunicipalityID: user.MunicipalityID,
		}
		if p.MunicipalityID == nil && p.BarangayID != nil {
			if p.MunicipalityID, err = s.parentMunicipality(ctx, *p.BarangayID); err != nil {
				return nil, err
			}
		}
		return p, nil

	case enums.PrincipalKindFarmer:
		farmer, err := s.farmers.FindByID(ctx, ref.ID)
		if err != nil {
			return nil, unauthorizedOr(err, "lookup farmer")
		}
		barangayID := farmer.BarangayID
		municipalityID, err := s.parentMunicipality(ctx, barangayID)
		if err != nil {
			return nil, err
		}
		return &pkgauth.Principal{
			Ref:            ref,
			Role:           enums.RoleFarmer,
			DisplayName:    farmer.FullName(),
			BarangayID:     &barangayID,
			MunicipalityID: municipalityID,
		}, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown principal kind")
}

func (s *service) parentMunicipality(ctx context.Context, barangayID uint) (*uint, error) {
	barangay, err := s.localities.FindBarangay(ctx, barangayID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup barangay")
	}
	id := barangay.MunicipalityID
	return &id, nil
}

func (s *service) authenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, unauthorizedOr(err, "lookup user")
	}
	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if s.hasher.NeedsRehash(user.PasswordHash) {
		if hash, err := s.hasher.Hash(password); err == nil {
			if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
				s.logg.Error(ctx, "auth.rehash_failed", err)
			}
		}
	}
	return user, nil
}

func (s *service) authenticateFarmer(ctx context.Context, username, password string) (*models.Farmer, error) {
	farmer, err := s.farmers.FindByUsername(ctx, username)
	if err != nil {
		return nil, unauthorizedOr(err, "lookup farmer")
	}
	ok, err := s.hasher.Verify(password, farmer.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if s.hasher.NeedsRehash(farmer.PasswordHash) {
		if hash, err := s.hasher.Hash(password); err == nil {
			if err := s.farmers.UpdatePasswordHash(ctx, farmer.ID, hash); err != nil {
				s.logg.Error(ctx, "auth.rehash_failed", err)
			}
		}
	}
	return farmer, nil
}

func (s *service) issueForUser(ctx context.Context, user *models.User) (*LoginResponse, error) {
	if !user.Role.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	return s.issue(ctx, pkgauth.UserRef(user.ID), user.Role, user.FullName)
}

func (s *service) issue(ctx context.Context, ref pkgauth.PrincipalRef, role enums.Role, name string) (*LoginResponse, error) {
	now := s.now().UTC()
	sessionID, err := s.session.Open(ctx, ref)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session")
	}
	token, err := pkgauth.MintSessionToken(s.jwtCfg, now, pkgauth.SessionTokenPayload{
		Principal: ref,
		Role:      role,
		JTI:       sessionID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &LoginResponse{
		Token:       token,
		SessionID:   sessionID,
		Principal:   ref,
		PrincipalID: ref.String(),
		Role:        role,
		DisplayName: name,
		ExpiresAt:   now.Add(s.jwtCfg.TTL()),
	}, nil
}

func unauthorizedOr(err error, op string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
