package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/mocks"
	"github.com/evrlink/evrlink-mirror/internal/reconciler"
	"github.com/evrlink/evrlink-mirror/internal/store"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
)

type testCLIMocks struct {
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	service   *mocks.MockReconciler
	projector *mocks.MockProjector
	closed    int
}

func setupCLI(t *testing.T) *testCLIMocks {
	ctrl := gomock.NewController(t)
	return &testCLIMocks{
		ctrl:      ctrl,
		store:     mocks.NewMockStore(ctrl),
		service:   mocks.NewMockReconciler(ctrl),
		projector: mocks.NewMockProjector(ctrl),
	}
}

func (tm *testCLIMocks) loader() appLoader {
	return func(ctx context.Context, configFile, envPath string, debug bool) (*app, error) {
		return &app{
			store:      tm.store,
			service:    tm.service,
			projector:  tm.projector,
			closeFuncs: []func(){func() { tm.closed++ }},
		}, nil
	}
}

func (tm *testCLIMocks) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(tm.loader())
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPendingList_DefaultsToUnresolved(t *testing.T) {
	tm := setupCLI(t)
	defer tm.ctrl.Finish()

	tm.store.EXPECT().
		ListPendingOperations(gomock.Any(), store.PendingOperationFilter{
			Statuses: schema.UnresolvedOperationStatuses,
			Limit:    50,
		}).
		Return([]*schema.PendingOperation{
			{
				TxHash:      "0xabc",
				Operation:   "buyGiftCard",
				EntityType:  domain.EntityTypeGiftCard,
				Status:      schema.OperationStatusUnknown,
				SubmittedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			},
		}, uint64(1), nil)

	out, err := tm.run(t, "pending", "list")
	require.NoError(t, err)

	var body struct {
		Items []map[string]interface{} `json:"items"`
		Total uint64                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, uint64(1), body.Total)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "0xabc", body.Items[0]["tx_hash"])
	assert.Equal(t, "unknown", body.Items[0]["status"])
	assert.Equal(t, 1, tm.closed)
}

func TestPendingList_Filters(t *testing.T) {
	tm := setupCLI(t)
	defer tm.ctrl.Finish()

	caller := "0x00000000000000000000000000000000000000aa"
	tm.store.EXPECT().
		ListPendingOperations(gomock.Any(), store.PendingOperationFilter{
			Statuses: []schema.OperationStatus{schema.OperationStatusFailed, schema.OperationStatusApplied},
			Caller:   common.HexToAddress(caller).Hex(),
			Limit:    5,
			Offset:   10,
		}).
		Return(nil, uint64(0), nil)

	_, err := tm.run(t, "pending", "list",
		"--status", "failed", "--status", "applied",
		"--caller", caller, "--limit", "5", "--offset", "10")
	require.NoError(t, err)
}

func TestPendingList_InvalidCaller(t *testing.T) {
	tm := setupCLI(t)
	defer tm.ctrl.Finish()

	_, err := tm.run(t, "pending", "list", "--caller", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid caller address")
}

func TestPendingResolve(t *testing.T) {
	tm := setupCLI(t)
	defer tm.ctrl.Finish()

	tm.service.EXPECT().
		ResolveOperation(gomock.Any(), "0xdead").
		Return(&schema.PendingOperation{TxHash: "0xdead", Status: schema.OperationStatusApplied}, nil)

	out, err := tm.run(t, "pending", "resolve", "0xdead")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "applied"`)
}

func TestPendingResolve_Error(t *testing.T) {
	tm := setupCLI(t)
	defer tm.ctrl.Finish()

	tm.service.EXPECT().
		ResolveOperation(gomock.Any(), "0xdead").
		Return(nil, domain.ErrNotFound)

	_, err := tm.run(t, "pending", "resolve", "0xdead")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPendingCounts(t *testing.T) {
	tm := setupCLI(t)
	defer tm.ctrl.Finish()

	tm.store.EXPECT().
		CountPendingOperationsByStatus(gomock.Any()).
		Return(map[schema.OperationStatus]int64{schema.OperationStatusUnknown: 3}, nil)

	out, err := tm.run(t, "pending", "counts")
	require.NoError(t, err)
	assert.Contains(t, out, `"unknown": 3`)
}

func TestHeal(t *testing.T) {
	tm := setupCLI(t)
	defer tm.ctrl.Finish()

	tm.projector.EXPECT().
		HealGiftCard(gomock.Any(), uint64(7), nil).
		Return(&store.ApplyResult{GiftCardChanged: true}, nil)
	tm.projector.EXPECT().
		HealBackground(gomock.Any(), uint64(3)).
		Return(&store.ApplyResult{BackgroundChanged: true}, nil)

	out, err := tm.run(t, "heal", "giftcard", "7")
	require.NoError(t, err)
	assert.Contains(t, out, `"GiftCardChanged": true`)

	out, err = tm.run(t, "heal", "background", "3")
	require.NoError(t, err)
	assert.Contains(t, out, `"BackgroundChanged": true`)
}

func TestHeal_InvalidID(t *testing.T) {
	tm := setupCLI(t)
	defer tm.ctrl.Finish()

	for _, id := range []string{"0", "-1", "abc"} {
		_, err := tm.run(t, "heal", "giftcard", id)
		require.Error(t, err, id)
		assert.Contains(t, err.Error(), "invalid id")
	}
}

func TestStatsRecompute(t *testing.T) {
	tm := setupCLI(t)
	defer tm.ctrl.Finish()

	address := "0x00000000000000000000000000000000000000bb"
	normalized := common.HexToAddress(address).Hex()
	tm.store.EXPECT().
		RecomputeUserStats(gomock.Any(), normalized).
		Return(&schema.User{WalletAddress: normalized, GiftCardsCreated: 2}, nil)

	out, err := tm.run(t, "stats", "recompute", address)
	require.NoError(t, err)
	assert.Contains(t, out, `"gift_cards_created": 2`)

	_, err = tm.run(t, "stats", "recompute", "0x1")
	assert.Error(t, err)
}

func TestCatchUp(t *testing.T) {
	tm := setupCLI(t)
	defer tm.ctrl.Finish()

	tm.service.EXPECT().
		CatchUp(gomock.Any()).
		Return(&reconciler.CatchUpResult{Backgrounds: 1, GiftCards: 4}, nil)

	out, err := tm.run(t, "catch-up")
	require.NoError(t, err)
	assert.Contains(t, out, `"gift_cards": 4`)
}

func TestLoaderError(t *testing.T) {
	cmd := newRootCommand(func(ctx context.Context, configFile, envPath string, debug bool) (*app, error) {
		assert.Equal(t, "custom.yaml", configFile)
		assert.True(t, debug)
		return nil, errors.New("boom")
	})
	cmd.SetArgs([]string{"--config", "custom.yaml", "-D", "catch-up"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	assert.EqualError(t, err, "boom")
}
