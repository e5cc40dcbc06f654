package localities

import "github.com/drytrack/drytrack-backend/pkg/db/models"

type MunicipalityDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type BarangayDTO struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	MunicipalityID uint   `json:"municipality_id"`
}

func MunicipalityFromModel(m *models.Municipality) MunicipalityDTO {
	return MunicipalityDTO{ID: m.ID, Name: m.Name}
}

func BarangayFromModel(b *models.Barangay) BarangayDTO {
	return BarangayDTO{ID: b.ID, Name: b.Name, MunicipalityID: b.MunicipalityID}
}
