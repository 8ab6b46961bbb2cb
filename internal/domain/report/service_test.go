package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joaodperes/stardust/internal/domain/report"
	"github.com/joaodperes/stardust/internal/repository"
	"github.com/joaodperes/stardust/internal/repository/mocks"
	"github.com/joaodperes/stardust/internal/sqlite/sqlitetest"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestList_PaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	svc := report.NewService(sqlitetest.NewStore(t), nil, func() time.Time { return now })

	for i := 0; i < 12; i++ {
		now = now.Add(time.Minute)
		_, err := svc.Deliver(ctx, report.Report{OwnerID: "alice", Kind: report.KindAlert, Payload: report.Payload{Message: string(rune('a' + i))}})
		require.NoError(t, err)
	}
	_, err := svc.Deliver(ctx, report.Report{OwnerID: "bob", Kind: report.KindAlert})
	require.NoError(t, err)

	first, err := svc.List(ctx, "alice", 1)
	require.NoError(t, err)
	require.Len(t, first.Reports, report.PageSize)
	require.Equal(t, 12, first.Total)
	require.Equal(t, 12, first.Unread)
	require.True(t, first.HasMore)
	require.Equal(t, "l", first.Reports[0].Payload.Message)
	for i := 1; i < len(first.Reports); i++ {
		require.True(t, first.Reports[i-1].Timestamp.After(first.Reports[i].Timestamp))
	}

	second, err := svc.List(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, second.Reports, 2)
	require.False(t, second.HasMore)
	require.Equal(t, "a", second.Reports[1].Payload.Message)

	beyond, err := svc.List(ctx, "alice", 5)
	require.NoError(t, err)
	require.Empty(t, beyond.Reports)
	require.Equal(t, 12, beyond.Total)
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	svc := report.NewService(sqlitetest.NewStore(t), nil, nil)

	r, err := svc.Deliver(ctx, report.Report{OwnerID: "alice", Kind: report.KindSpyResult})
	require.NoError(t, err)
	require.NotEmpty(t, r.ID)

	read, err := svc.MarkRead(ctx, "alice", r.ID)
	require.NoError(t, err)
	require.True(t, read.Read)

	page, err := svc.List(ctx, "alice", 1)
	require.NoError(t, err)
	require.Equal(t, 0, page.Unread)
	require.Equal(t, 1, page.Total)

	_, err = svc.MarkRead(ctx, "alice", "missing")
	require.ErrorIs(t, err, report.ErrReportNotFound)
	_, err = svc.MarkRead(ctx, "bob", r.ID)
	require.ErrorIs(t, err, report.ErrReportNotFound)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	store := sqlitetest.NewStore(t)
	svc := report.NewService(store, nil, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Deliver(ctx, report.Report{OwnerID: "alice", Kind: report.KindAlert})
		require.NoError(t, err)
	}
	_, err := svc.Deliver(ctx, report.Report{OwnerID: "bob", Kind: report.KindAlert})
	require.NoError(t, err)

	n, err := svc.ClearAll(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	page, err := svc.List(ctx, "alice", 1)
	require.NoError(t, err)
	require.Zero(t, page.Total)

	page, err = svc.List(ctx, "bob", 1)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	n, err = svc.ClearAll(ctx, "alice")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestStage_CommitsWithTransaction(t *testing.T) {
	ctx := context.Background()
	store := sqlitetest.NewStore(t)
	svc := report.NewService(store, nil, nil)

	err := store.Atomic(ctx, func(txn repository.Txn) error {
		_, err := svc.Stage(txn, report.Report{OwnerID: "alice", Kind: report.KindFleetLost})
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.Atomic(ctx, func(txn repository.Txn) error {
		if _, err := svc.Stage(txn, report.Report{OwnerID: "alice", Kind: report.KindAlert}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	page, err := svc.List(ctx, "alice", 1)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, report.KindFleetLost, page.Reports[0].Kind)
}

func TestDeliver_Validation(t *testing.T) {
	svc := report.NewService(&mocks.Store{}, nil, nil)
	_, err := svc.Deliver(context.Background(), report.Report{Kind: report.KindAlert})
	require.ErrorIs(t, err, report.ErrInvalidInput)
}

func TestDeliver_StoreFailure(t *testing.T) {
	store := &mocks.Store{}
	store.On("Write", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := report.NewService(store, nil, nil)
	_, err := svc.Deliver(context.Background(), report.Report{OwnerID: "alice", Kind: report.KindAlert})
	require.ErrorContains(t, err, "disk full")
}
