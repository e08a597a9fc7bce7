package memory

import (
	"Reconcile/models"
	"Reconcile/types"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed() *Store {
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	return NewStore(
		&models.PaymentRecord{OrderSn: "A1", Amount: 100, Method: models.MethodAlipay, Status: models.StatusCompleted, CreatedAt: base},
		&models.PaymentRecord{OrderSn: "A2", Amount: 200, Method: models.MethodWechat, Status: models.StatusPending, CreatedAt: base.Add(time.Hour)},
		&models.PaymentRecord{OrderSn: "A3", Amount: 300, Method: models.MethodAlipay, Status: models.StatusPending, CreatedAt: base.Add(48 * time.Hour)},
	)
}

func TestStore_FindFilterAndPage(t *testing.T) {
	s := seed()
	ctx := context.Background()
	day := types.DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC),
	}

	list, total, err := s.Find(ctx, &types.RecordFilter{Range: &day})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	list, total, err = s.Find(ctx, &types.RecordFilter{Method: models.MethodAlipay, PerPage: 1, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	assert.Equal(t, "A3", list[0].OrderSn)

	list, _, err = s.Find(ctx, &types.RecordFilter{Status: models.StatusPending, Page: 5})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_UpdateIsolated(t *testing.T) {
	s := seed()
	ctx := context.Background()

	got, err := s.Get(ctx, 2)
	require.NoError(t, err)
	got.Status = models.StatusFailed

	again, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, again.Status)

	// patch 出错时不落库
	_, err = s.Update(ctx, 2, func(r *models.PaymentRecord) error {
		r.Status = models.StatusCompleted
		return errors.New("boom")
	})
	require.Error(t, err)
	again, _ = s.Get(ctx, 2)
	assert.Equal(t, models.StatusPending, again.Status)

	updated, err := s.Update(ctx, 2, func(r *models.PaymentRecord) error {
		r.Status = models.StatusCompleted
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	_, err = s.Get(ctx, 99)
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
	_, err = s.GetByOrderSn(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestStore_RefundLogs(t *testing.T) {
	s := seed()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &models.RefundLog{RecordID: 1, RefundNo: "RF1", State: models.RefundInFlight}))
	require.NoError(t, s.Create(ctx, &models.RefundLog{RecordID: 3, RefundNo: "RF2", State: models.RefundInFlight}))

	busy, err := s.HasInFlight(ctx, 1)
	require.NoError(t, err)
	assert.True(t, busy)

	pending, err := s.ListInFlight(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, s.Finish(ctx, "RF1", models.RefundConfirmed, "wx-1", "", nil))
	busy, _ = s.HasInFlight(ctx, 1)
	assert.False(t, busy)

	logs := s.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, "wx-1", logs[0].ConfirmationId)
}
