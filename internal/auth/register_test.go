package auth

import (
	"context"
	"strconv"
	"testing"

	"github.com/drytrack/drytrack-backend/pkg/db"
	"github.com/drytrack/drytrack-backend/pkg/db/dbtest"
	"github.com/drytrack/drytrack-backend/pkg/db/models"
	"github.com/drytrack/drytrack-backend/pkg/enums"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintString(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func newRegisterService(t *testing.T) (RegisterService, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client, Hasher: testHasher()})
	require.NoError(t, err)
	return svc, client
}

func TestSignUpBarangayCreatesLocalities(t *testing.T) {
	svc, client := newRegisterService(t)
	ctx := context.Background()

	user, err := svc.SignUpBarangay(ctx, SignUpRequest{
		Email:        " Kap@CristoRey.ph ",
		BarangayName: "Cristo Rey",
		Municipality: "Capas",
		Password1:    "secret1",
		Password2:    "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "kap@cristorey.ph", user.Email)
	assert.Equal(t, "Barangay Staff", user.FullName)
	assert.Equal(t, enums.RoleBarangay, user.Role)
	require.NotNil(t, user.BarangayID)

	second, err := svc.SignUpBarangay(ctx, SignUpRequest{
		Email:        "sec@cristorey.ph",
		FullName:     "Maria Santos",
		BarangayName: "Cristo Rey",
		Municipality: "Capas",
		Password1:    "secret2",
		Password2:    "secret2",
	})
	require.NoError(t, err)
	assert.Equal(t, *user.BarangayID, *second.BarangayID, "barangay is reused")
	assert.Equal(t, "Maria Santos", second.FullName)

	var municipalities int64
	require.NoError(t, client.DB().Model(&models.Municipality{}).Count(&municipalities).Error)
	assert.EqualValues(t, 1, municipalities)
}

func TestSignUpRejectsMismatchAndDuplicates(t *testing.T) {
	svc, _ := newRegisterService(t)
	ctx := context.Background()
	req := SignUpRequest{Email: "kap@capas.ph", BarangayName: "Cristo Rey", Municipality: "Capas", Password1: "a1b2c3", Password2: "a1b2c4"}

	_, err := svc.SignUpBarangay(ctx, req)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	req.Password2 = req.Password1
	_, err = svc.SignUpBarangay(ctx, req)
	require.NoError(t, err)

	_, err = svc.SignUpBarangay(ctx, req)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.SignUpMunicipal(ctx, MunicipalSignUpRequest{Email: req.Email, Municipality: "Capas", Password1: "x12345", Password2: "x12345"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestSignUpMunicipal(t *testing.T) {
	svc, client := newRegisterService(t)
	user, err := svc.SignUpMunicipal(context.Background(), MunicipalSignUpRequest{
		Email:        "mayor@capas.ph",
		Municipality: "Capas",
		Password1:    "secret1",
		Password2:    "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.RoleMunicipal, user.Role)
	assert.Equal(t, "Municipal Officer", user.FullName)
	require.NotNil(t, user.MunicipalityID)
	assert.Nil(t, user.BarangayID)

	var m models.Municipality
	require.NoError(t, client.DB().First(&m, *user.MunicipalityID).Error)
	assert.Equal(t, "Capas", m.Name)
}
