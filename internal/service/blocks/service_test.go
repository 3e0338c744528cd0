package blocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/service/blocks/models"
	"github.com/m04kA/SalonBookingService/internal/testutil/memstore"
	"github.com/m04kA/SalonBookingService/pkg/logger"
	"github.com/m04kA/SalonBookingService/pkg/ptr"
)

func newTestService(t *testing.T) (*Service, *memstore.Store, memstore.Seed) {
	t.Helper()
	store := memstore.New()
	seed := store.SeedSalon()
	svc := NewService(store.Blocks(), store.Salons(), store.Masters(), logger.NewNop())
	return svc, store, seed
}

func TestCreate_ManualBlock(t *testing.T) {
	svc, store, seed := newTestService(t)

	resp, err := svc.Create(context.Background(), &models.CreateBlockRequest{
		UserID:    seed.Salon.OwnerID,
		SalonID:   seed.Salon.ID,
		MasterID:  seed.Anna.ID,
		Date:      memstore.Monday(),
		TimeStart: "13:00",
		TimeEnd:   "14:00",
		Reason:    "manual",
	})
	require.NoError(t, err)

	assert.Equal(t, "13:00", resp.TimeStart)
	assert.Equal(t, "14:00", resp.TimeEnd)
	assert.Equal(t, "2025-06-02", resp.Date)
	require.Len(t, store.AllBlocks(), 1)
	assert.Equal(t, domain.BlockReasonManual, store.AllBlocks()[0].Reason)
}

func TestCreate_DayOffCoversWholeDay(t *testing.T) {
	svc, _, seed := newTestService(t)

	resp, err := svc.Create(context.Background(), &models.CreateBlockRequest{
		UserID:   seed.Salon.OwnerID,
		SalonID:  seed.Salon.ID,
		MasterID: seed.Olena.ID,
		Date:     memstore.Monday(),
		Reason:   "day_off",
	})
	require.NoError(t, err)
	assert.Equal(t, "00:00", resp.TimeStart)
	assert.Equal(t, "24:00", resp.TimeEnd)

	_, err = svc.Create(context.Background(), &models.CreateBlockRequest{
		UserID:    seed.Salon.OwnerID,
		SalonID:   seed.Salon.ID,
		MasterID:  seed.Olena.ID,
		Date:      memstore.Monday(),
		TimeStart: "19:30",
		TimeEnd:   "20:00",
		Reason:    "manual",
	})
	assert.ErrorIs(t, err, ErrBlockOverlap)
}

func TestCreate_Errors(t *testing.T) {
	svc, store, seed := newTestService(t)
	foreign := store.AddMaster(domain.Master{SalonID: 999, Name: "Чужий", IsActive: true})

	base := func() *models.CreateBlockRequest {
		return &models.CreateBlockRequest{
			UserID:    seed.Salon.OwnerID,
			SalonID:   seed.Salon.ID,
			MasterID:  seed.Anna.ID,
			Date:      memstore.Monday(),
			TimeStart: "10:00",
			TimeEnd:   "11:00",
			Reason:    "manual",
		}
	}

	tests := []struct {
		name    string
		modify  func(r *models.CreateBlockRequest)
		wantErr error
	}{
		{name: "booked reason", modify: func(r *models.CreateBlockRequest) { r.Reason = "booked" }, wantErr: ErrInvalidInput},
		{name: "end before start", modify: func(r *models.CreateBlockRequest) { r.TimeEnd = "09:00" }, wantErr: ErrInvalidInput},
		{name: "malformed time", modify: func(r *models.CreateBlockRequest) { r.TimeStart = "9:00" }, wantErr: ErrInvalidInput},
		{name: "manual without time", modify: func(r *models.CreateBlockRequest) { r.TimeStart, r.TimeEnd = "", "" }, wantErr: ErrInvalidInput},
		{name: "stranger", modify: func(r *models.CreateBlockRequest) { r.UserID = 1 }, wantErr: ErrAccessDenied},
		{name: "unknown salon", modify: func(r *models.CreateBlockRequest) { r.SalonID = 4242 }, wantErr: ErrSalonNotFound},
		{name: "master of another salon", modify: func(r *models.CreateBlockRequest) { r.MasterID = foreign.ID }, wantErr: ErrMasterNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.modify(req)
			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestList(t *testing.T) {
	svc, _, seed := newTestService(t)
	ctx := context.Background()

	for _, master := range []int64{seed.Anna.ID, seed.Olena.ID} {
		_, err := svc.Create(ctx, &models.CreateBlockRequest{
			UserID: seed.Salon.OwnerID, SalonID: seed.Salon.ID, MasterID: master,
			Date: memstore.Monday(), TimeStart: "12:00", TimeEnd: "12:30", Reason: "manual",
		})
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, &models.ListBlocksRequest{
		UserID: seed.Salon.OwnerID, SalonID: seed.Salon.ID, Date: memstore.Monday(),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Blocks, 2)

	resp, err = svc.List(ctx, &models.ListBlocksRequest{
		UserID: seed.Salon.OwnerID, SalonID: seed.Salon.ID, Date: memstore.Monday(), MasterID: ptr.Ptr(seed.Olena.ID),
	})
	require.NoError(t, err)
	require.Len(t, resp.Blocks, 1)
	assert.Equal(t, seed.Olena.ID, resp.Blocks[0].MasterID)
}

func TestDelete(t *testing.T) {
	svc, store, seed := newTestService(t)
	ctx := context.Background()

	manual, err := svc.Create(ctx, &models.CreateBlockRequest{
		UserID: seed.Salon.OwnerID, SalonID: seed.Salon.ID, MasterID: seed.Anna.ID,
		Date: memstore.Monday(), TimeStart: "12:00", TimeEnd: "13:00", Reason: "manual",
	})
	require.NoError(t, err)

	booked, err := store.Blocks().Create(ctx, &domain.ScheduleBlock{
		SalonID: seed.Salon.ID, MasterID: seed.Anna.ID, Date: memstore.Monday(),
		TimeStart: "15:00", TimeEnd: "16:00", IsBlocked: true,
		Reason: domain.BlockReasonBooked, BookingID: ptr.Ptr(int64(77)),
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, &models.DeleteBlockRequest{UserID: seed.Salon.OwnerID, SalonID: seed.Salon.ID, BlockID: booked.ID})
	assert.ErrorIs(t, err, ErrBookingBlock)

	err = svc.Delete(ctx, &models.DeleteBlockRequest{UserID: 1, SalonID: seed.Salon.ID, BlockID: manual.ID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	err = svc.Delete(ctx, &models.DeleteBlockRequest{UserID: seed.Salon.OwnerID, SalonID: seed.Salon.ID, BlockID: manual.ID})
	require.NoError(t, err)
	assert.Len(t, store.AllBlocks(), 1)

	err = svc.Delete(ctx, &models.DeleteBlockRequest{UserID: seed.Salon.OwnerID, SalonID: seed.Salon.ID, BlockID: manual.ID})
	assert.ErrorIs(t, err, ErrBlockNotFound)
}
