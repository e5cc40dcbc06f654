package dbtest

import (
	"testing"

	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/db"
	"github.com/drytrack/drytrack-backend/pkg/db/models"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	"github.com/google/uuid"
)

// Locality is a seeded municipality with one barangay.
type Locality struct {
	Municipality models.Municipality
	Barangay     models.Barangay
}

// SeedLocality inserts a municipality and a barangay belonging to it.
func SeedLocality(t testing.TB, client *db.Client, municipality, barangay string) Locality {
	t.Helper()
	conn := client.DB()
	m := models.Municipality{Name: municipality}
	if err := conn.Where(models.Municipality{Name: municipality}).FirstOrCreate(&m).Error; err != nil {
		t.Fatalf("seed municipality: %v", err)
	}
	b := models.Barangay{Name: barangay, MunicipalityID: m.ID}
	if err := conn.Create(&b).Error; err != nil {
		t.Fatalf("seed barangay: %v", err)
	}
	return Locality{Municipality: m, Barangay: b}
}

// SeedBarangayStaff inserts a barangay-role user for loc.
func SeedBarangayStaff(t testing.TB, client *db.Client, loc Locality, email, passwordHash string) models.User {
	t.Helper()
	barangayID := loc.Barangay.ID
	u := models.User{
		Email:        email,
		FullName:     "Barangay Staff",
		Role:         enums.RoleBarangay,
		PasswordHash: passwordHash,
		BarangayID:   &barangayID,
	}
	if err := client.DB().Create(&u).Error; err != nil {
		t.Fatalf("seed barangay staff: %v", err)
	}
	return u
}

// SeedMunicipalOfficer inserts a municipal-role user for loc's municipality.
func SeedMunicipalOfficer(t testing.TB, client *db.Client, loc Locality, email, passwordHash string) models.User {
	t.Helper()
	municipalityID := loc.Municipality.ID
	u := models.User{
		Email:          email,
		FullName:       "Municipal Officer",
		Role:           enums.RoleMunicipal,
		PasswordHash:   passwordHash,
		MunicipalityID: &municipalityID,
	}
	if err := client.DB().Create(&u).Error; err != nil {
		t.Fatalf("seed municipal officer: %v", err)
	}
	return u
}

// SeedFarmer inserts a farmer registered by staff in the staff user's barangay.
func SeedFarmer(t testing.TB, client *db.Client, staff models.User, username, first, last, passwordHash string) models.Farmer {
	t.Helper()
	if staff.BarangayID == nil {
		t.Fatalf("seed farmer: staff %d has no barangay", staff.ID)
	}
	f := models.Farmer{
		UUID:         uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		FirstName:    first,
		LastName:     last,
		BarangayID:   *staff.BarangayID,
		UserID:       staff.ID,
	}
	if err := client.DB().Create(&f).Error; err != nil {
		t.Fatalf("seed farmer: %v", err)
	}
	return f
}

// StaffPrincipal builds the authenticated principal for a staff user.
func StaffPrincipal(u models.User) *pkgauth.Principal {
	return &pkgauth.Principal{
		Ref:            pkgauth.UserRef(u.ID),
		Role:           u.Role,
		DisplayName:    u.FullName,
		BarangayID:     u.BarangayID,
		MunicipalityID: u.MunicipalityID,
	}
}

// FarmerPrincipal builds the authenticated principal for a farmer in loc.
func FarmerPrincipal(f models.Farmer, loc Locality) *pkgauth.Principal {
	barangayID := f.BarangayID
	municipalityID := loc.Municipality.ID
	return &pkgauth.Principal{
		Ref:            pkgauth.FarmerRef(f.ID),
		Role:           enums.RoleFarmer,
		DisplayName:    f.FullName(),
		BarangayID:     &barangayID,
		MunicipalityID: &municipalityID,
	}
}
