package records

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/drytrack/drytrack-backend/internal/farmers"
	"github.com/drytrack/drytrack-backend/pkg/db/models"
	pkgerrors "github.com/drytrack/drytrack-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type parsedDraft struct {
	index      int
	id         uuid.UUID
	farmerUUID uuid.UUID
	draft      SyncDraft
}

// Sync stores a bulk payload of offline drafts. Drafts whose uuid is already
// stored, or whose farmer cannot be resolved, are skipped with a reason and
// the rest continue. Accepted drafts commit in a single transaction; any
// transaction failure persists nothing.
func (s *service) Sync(ctx context.Context, payload SyncPayload) (*SyncResult, error) {
	start := time.Now()
	if s.maxDrafts > 0 && len(payload.Records) > s.maxDrafts {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d records per sync", s.maxDrafts))
	}

	result := &SyncResult{Accepted: []uint{}, Skipped: []SkippedDraft{}}
	skip := func(index int, id string, reason SkipReason) {
		result.Skipped = append(result.Skipped, SkippedDraft{Index: index, UUID: id, Reason: reason})
	}

	candidates := make([]parsedDraft, 0, len(payload.Records))
	seen := make(map[uuid.UUID]struct{}, len(payload.Records))
	for i, draft := range payload.Records {
		rawID := strings.TrimSpace(draft.UUID)
		if rawID == "" {
			skip(i, "", SkipMissingUUID)
			continue
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			skip(i, rawID, SkipInvalidUUID)
			continue
		}
		if _, dup := seen[id]; dup {
			skip(i, rawID, SkipDuplicateUUID)
			continue
		}
		seen[id] = struct{}{}

		rawFarmer := strings.TrimSpace(draft.FarmerUUID)
		if rawFarmer == "" {
			skip(i, rawID, SkipMissingFarmerUUID)
			continue
		}
		farmerUUID, err := uuid.Parse(rawFarmer)
		if err != nil {
			skip(i, rawID, SkipUnknownFarmer)
			continue
		}
		if !draft.measurementsValid() {
			skip(i, rawID, SkipInvalidMeasurement)
			continue
		}
		candidates = append(candidates, parsedDraft{index: i, id: id, farmerUUID: farmerUUID, draft: draft})
	}

	preSkipped := len(result.Skipped)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		result.Skipped = result.Skipped[:preSkipped]
		result.Accepted = result.Accepted[:0]
		if len(candidates) == 0 {
			return nil
		}

		repo := NewRepository(tx)
		ids := make([]uuid.UUID, 0, len(candidates))
		farmerIDs := make([]uuid.UUID, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.id)
			farmerIDs = append(farmerIDs, c.farmerUUID)
		}
		existing, err := repo.ExistingUUIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing uuids")
		}
		byUUID, err := farmers.NewRepository(tx).FindByUUIDs(ctx, farmerIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve farmers")
		}
		barangays, err := loadBarangays(ctx, tx, byUUID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve barangays")
		}

		now := s.now().UTC()
		rows := make([]models.DryingRecord, 0, len(candidates))
		for _, c := range candidates {
			if _, ok := existing[c.id]; ok {
				skip(c.index, c.id.String(), SkipDuplicateUUID)
				continue
			}
			farmer, ok := byUUID[c.farmerUUID]
			if !ok {
				skip(c.index, c.id.String(), SkipUnknownFarmer)
				continue
			}
			barangay, ok := barangays[farmer.BarangayID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("farmer %d references missing barangay %d", farmer.ID, farmer.BarangayID))
			}
			row := snapshot(farmer, &barangay, farmer.UserID, now)
			id := c.id
			row.UUID = &id
			applyDraft(&row, c.draft)
			rows = append(rows, row)
		}

		if err := repo.CreateBatch(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert drying records")
		}
		for _, row := range rows {
			result.Accepted = append(result.Accepted, row.ID)
		}
		return nil
	})
	if err != nil {
		s.metrics.IncFailure()
		s.logg.Error(ctx, "sync.failed", err)
		return nil, err
	}

	sort.SliceStable(result.Skipped, func(i, j int) bool {
		return result.Skipped[i].Index < result.Skipped[j].Index
	})
	for _, sk := range result.Skipped {
		s.metrics.IncSkipped(string(sk.Reason))
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"index":  sk.Index,
			"uuid":   sk.UUID,
			"reason": string(sk.Reason),
		})
		s.logg.Warn(logCtx, "sync.draft.skipped")
	}
	s.metrics.ObserveBatch(time.Since(start), len(result.Accepted))
	return result, nil
}

func loadBarangays(ctx context.Context, tx *gorm.DB, byUUID map[uuid.UUID]models.Farmer) (map[uint]models.Barangay, error) {
	out := map[uint]models.Barangay{}
	if len(byUUID) == 0 {
		return out, nil
	}
	ids := make([]uint, 0, len(byUUID))
	for _, f := range byUUID {
		ids = append(ids, f.BarangayID)
	}
	var rows []models.Barangay
	if err := tx.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, b := range rows {
		out[b.ID] = b
	}
	return out, nil
}

func applyDraft(record *models.DryingRecord, d SyncDraft) {
	record.BatchName = strings.TrimSpace(d.BatchName)
	record.InitialWeight = d.InitialWeight.Value
	record.Temperature = d.Temperature.Value
	record.Humidity = d.Humidity.Value
	record.SensorValue = d.SensorValue.Value
	record.InitialMoisture = d.InitialMoisture.Value
	record.FinalMoisture = d.FinalMoisture.Value
	record.FinalWeight = d.FinalWeight.Value
	record.DryingTime = strings.TrimSpace(d.DryingTime)
	record.ShelfLife = optionalString(d.ShelfLife)
	record.DatePlanted = ParseDate(d.DatePlanted)
	record.DateHarvested = ParseDate(d.DateHarvested)
	record.DueDate = ParseDate(d.DueDate)
	record.DateDried = ParseDate(d.DateDried)
}
