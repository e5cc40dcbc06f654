package records

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/drytrack/drytrack-backend/pkg/db/models"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePayload(t *testing.T, body string) SyncPayload {
	t.Helper()
	var payload SyncPayload
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	return payload
}

func storedUUIDs(t *testing.T, f fixture) []string {
	t.Helper()
	var rows []models.DryingRecord
	require.NoError(t, f.client.DB().Order("id").Find(&rows).Error)
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.UUID != nil {
			out = append(out, r.UUID.String())
		}
	}
	return out
}

func TestSyncIsIdempotentOnUUID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := uuid.NewString()
	second := uuid.NewString()
	body := `{"records":[
		{"uuid":"` + first + `","farmer_uuid":"` + f.alice.UUID.String() + `","batch_name":"B1","initial_weight":100,"final_weight":"80.5","drying_time":"5h","date_dried":"2024-05-10"},
		{"uuid":"` + second + `","farmer_uuid":"` + f.bob.UUID.String() + `","initial_weight":"40","final_weight":30}
	]}`

	res, err := f.svc.Sync(ctx, decodePayload(t, body))
	require.NoError(t, err)
	assert.Len(t, res.Accepted, 2)
	assert.Empty(t, res.Skipped)
	before := storedUUIDs(t, f)

	res, err = f.svc.Sync(ctx, decodePayload(t, body))
	require.NoError(t, err)
	assert.Empty(t, res.Accepted)
	require.Len(t, res.Skipped, 2)
	for _, sk := range res.Skipped {
		assert.Equal(t, SkipDuplicateUUID, sk.Reason)
	}
	assert.Equal(t, before, storedUUIDs(t, f))

	var stored models.DryingRecord
	require.NoError(t, f.client.DB().Where("uuid = ?", first).First(&stored).Error)
	assert.Equal(t, 80.5, stored.FinalWeight)
	assert.Equal(t, "Alice Cruz", *stored.FarmerName)
	assert.Equal(t, "Cristo Rey", *stored.BarangayName)
	assert.Equal(t, f.loc.Municipality.ID, *stored.MunicipalityID)
	assert.Equal(t, f.alice.UserID, stored.UserID)
	require.NotNil(t, stored.DateDried)
	assert.Equal(t, "2024-05-10", stored.DateDried.Format(DateLayout))
}

func TestSyncSkipsBadDraftsAndKeepsGoing(t *testing.T) {
	f := newFixture(t)
	repeated := uuid.NewString()
	good := uuid.NewString()
	alice := f.alice.UUID.String()
	body := `{"records":[
		{"farmer_uuid":"` + alice + `"},
		{"uuid":"not-a-uuid","farmer_uuid":"` + alice + `"},
		{"uuid":"` + repeated + `","farmer_uuid":"` + alice + `","initial_weight":1},
		{"uuid":"` + repeated + `","farmer_uuid":"` + alice + `","initial_weight":2},
		{"uuid":"` + uuid.NewString() + `"},
		{"uuid":"` + uuid.NewString() + `","farmer_uuid":"` + uuid.NewString() + `"},
		{"uuid":"` + uuid.NewString() + `","farmer_uuid":"` + alice + `","initial_weight":"heavy"},
		{"uuid":"` + good + `","farmer_uuid":"` + alice + `","initial_weight":10,"final_weight":8}
	]}`

	res, err := f.svc.Sync(context.Background(), decodePayload(t, body))
	require.NoError(t, err)
	assert.Len(t, res.Accepted, 2)

	reasons := make([]SkipReason, 0, len(res.Skipped))
	for _, sk := range res.Skipped {
		reasons = append(reasons, sk.Reason)
	}
	assert.Equal(t, []SkipReason{
		SkipMissingUUID,
		SkipInvalidUUID,
		SkipDuplicateUUID,
		SkipMissingFarmerUUID,
		SkipUnknownFarmer,
		SkipInvalidMeasurement,
	}, reasons)
	assert.Equal(t, 3, res.Skipped[2].Index)
	assert.ElementsMatch(t, []string{repeated, good}, storedUUIDs(t, f))
}

func TestSyncRejectsOversizedPayload(t *testing.T) {
	f := newFixture(t)
	payload := SyncPayload{Records: make([]SyncDraft, 11)}
	_, err := f.svc.Sync(context.Background(), payload)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSyncEmptyPayload(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Sync(context.Background(), SyncPayload{})
	require.NoError(t, err)
	assert.Empty(t, res.Accepted)
	assert.Empty(t, res.Skipped)
}

func TestMeasurementDecoding(t *testing.T) {
	cases := map[string]Measurement{
		`12.5`:     {Value: 12.5, Present: true, Valid: true},
		`"7"`:      {Value: 7, Present: true, Valid: true},
		`" 3.25 "`: {Value: 3.25, Present: true, Valid: true},
		`null`:     {},
		`""`:       {},
		`"  "`:     {},
		`"abc"`:    {Present: true},
		`"NaN"`:    {Present: true},
		`true`:     {Present: true},
	}
	for raw, want := range cases {
		var m Measurement
		require.NoError(t, json.Unmarshal([]byte(raw), &m), raw)
		assert.Equal(t, want, m, raw)
	}
}

func TestSyncRollsBackWholeBatchOnInsertFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.client.DB().Exec(`CREATE TRIGGER reject_poison BEFORE INSERT ON drying_records
		WHEN NEW.batch_name = 'poison'
		BEGIN SELECT RAISE(ABORT, 'boom'); END`).Error)

	payload := SyncPayload{}
	for i := 0; i < 10; i++ {
		batch := "Batch"
		if i == 6 {
			batch = "poison"
		}
		payload.Records = append(payload.Records, SyncDraft{
			UUID:        uuid.NewString(),
			FarmerUUID:  f.alice.UUID.String(),
			BatchName:   batch,
			FinalWeight: Measurement{Value: 5, Present: true, Valid: true},
		})
	}

	res, err := f.svc.Sync(context.Background(), payload)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
	assert.Contains(t, err.Error(), "boom")

	var stored int64
	require.NoError(t, f.client.DB().Model(&models.DryingRecord{}).Count(&stored).Error)
	assert.Zero(t, stored)
}

func TestSyncTreatsBlankWeightAsAbsent(t *testing.T) {
	f := newFixture(t)
	id := uuid.NewString()
	body := `{"records":[{"uuid":"` + id + `","farmer_uuid":"` + f.alice.UUID.String() + `","initial_weight":"","final_weight":5}]}`

	res, err := f.svc.Sync(context.Background(), decodePayload(t, body))
	require.NoError(t, err)
	assert.Len(t, res.Accepted, 1)
	assert.Empty(t, res.Skipped)

	var stored models.DryingRecord
	require.NoError(t, f.client.DB().Where("uuid = ?", id).First(&stored).Error)
	assert.Zero(t, stored.InitialWeight)
	assert.Equal(t, 5.0, stored.FinalWeight)
}
