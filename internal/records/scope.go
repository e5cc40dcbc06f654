package records

import (
	pkgauth "github.com/drytrack/drytrack-backend/pkg/auth"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"gorm.io/gorm"
)

// Scope narrows a drying_records query to the rows principal may see:
// municipal officers see every record whose barangay belongs to their
// municipality, barangay staff their barangay, farmers their own records.
func Scope(q *gorm.DB, principal *pkgauth.Principal) (*gorm.DB, error) {
	if principal == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	switch principal.Role {
	case enums.RoleMunicipal:
		if principal.MunicipalityID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "municipal account has no municipality")
		}
		return ByMunicipality(q, *principal.MunicipalityID), nil
	case enums.RoleBarangay:
		if principal.BarangayID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "barangay account has no barangay")
		}
		return q.Where("drying_records.barangay_id = ?", *principal.BarangayID), nil
	case enums.RoleFarmer:
		farmerID, ok := principal.FarmerID()
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "farmer role on non-farmer principal")
		}
		return q.Where("drying_records.farmer_id = ?", farmerID), nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
	}
}

// ByMunicipality keeps records whose barangay belongs to municipalityID.
func ByMunicipality(q *gorm.DB, municipalityID uint) *gorm.DB {
	return q.Where(
		"drying_records.barangay_id IN (?)",
		q.Session(&gorm.Session{NewDB: true}).
			Table("barangays").
			Select("id").
			Where("municipality_id = ?", municipalityID),
	)
}
