package hospital_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"

	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/hospital"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	"liyu1981.xyz/ward-alert-service/pkg/push"
	"liyu1981.xyz/ward-alert-service/pkg/store"
	_ "liyu1981.xyz/ward-alert-service/pkg/testing"
)

func TestCreateAlertWithAssignedNurse(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	f := newFixture(t, nil)
	defer f.ctrl.Finish()

	ward := f.seedWard(t)
	bed := f.seedBed(t, ward.ID, "")
	nurse := f.seedNurse(t, ward.ID, "device-token")
	_, err := f.h.Roster.AssignBed(ctx, bed.ID, nurse.ID)
	require.NoError(t, err)

	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg push.Message) error {
			assert.Equal(t, "device-token", msg.Token)
			assert.Equal(t, bed.ID, msg.Data["bed_id"])
			assert.Equal(t, nurse.ID, msg.Data["nurse_id"])
			return nil
		})
	f.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event models.AlertEvent) error {
			assert.Equal(t, models.AlertEventAdded, event.Kind)
			assert.Equal(t, bed.ID, event.Alert.BedID)
			return nil
		})

	receipt, err := f.h.Alert.CreateAlert(ctx, hospital.CreateAlertInput{
		BedID:       bed.ID,
		PatientID:   uuid.NewString(),
		PatientName: "Maria",
		WardID:      ward.ID,
	})
	require.NoError(t, err)
	assert.True(t, receipt.NurseAssigned)
	assert.True(t, receipt.Notified)
	assert.False(t, receipt.SavedLocally)
	assert.Empty(t, receipt.Notice)
	assert.Equal(t, nurse.ID, receipt.Alert.AssignedNurseID)
	assert.Equal(t, models.AlertKindHelpRequest, receipt.Alert.Kind)

	pending, err := f.h.Alert.ListPending(ctx, []string{bed.ID})
	require.NoError(t, err)
	count := 0
	for _, a := range pending {
		if a.ID == receipt.Alert.ID {
			count++
			assert.False(t, a.Confirmed)
		}
	}
	assert.Equal(t, 1, count)
}

func TestCreateAlertWithoutNurseStillPersists(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	f := newFixture(t, nil)
	defer f.ctrl.Finish()
	f.acceptBusEvents()

	ward := f.seedWard(t)
	bed := f.seedBed(t, ward.ID, "")

	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Times(0)

	receipt, err := f.h.Alert.CreateAlert(ctx, hospital.CreateAlertInput{BedID: bed.ID, WardID: ward.ID})
	require.NoError(t, err)
	assert.False(t, receipt.NurseAssigned)
	assert.Equal(t, hospital.NoticeNoNurse, receipt.Notice)
	assert.Empty(t, receipt.Alert.AssignedNurseID)

	pending, err := f.h.Alert.ListPending(ctx, []string{bed.ID})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, receipt.Alert.ID, pending[0].ID)
}

func TestCreateAlertPushFailureIsLogged(t *testing.T) {
	var buf = &bytes.Buffer{}
	common.SetTestCaptureLogger(buf, zapcore.InfoLevel)
	ctx := context.Background()

	f := newFixture(t, nil)
	defer f.ctrl.Finish()
	f.acceptBusEvents()

	ward := f.seedWard(t)
	bed := f.seedBed(t, ward.ID, "")
	nurse := f.seedNurse(t, ward.ID, "stale-token")
	_, err := f.h.Roster.AssignBed(ctx, bed.ID, nurse.ID)
	require.NoError(t, err)

	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
		Return(&push.GatewayError{Status: 400, Detail: "InvalidRegistration"})

	receipt, err := f.h.Alert.CreateAlert(ctx, hospital.CreateAlertInput{BedID: bed.ID, WardID: ward.ID})
	require.NoError(t, err)
	assert.True(t, receipt.NurseAssigned)
	assert.False(t, receipt.Notified)

	found := false
	for _, log := range ParseLogs(buf) {
		lobj := log.(map[string]any)
		if lobj["category"] == "alert" &&
			lobj["logger"] == "hospital_core" &&
			lobj["msg"] == "Push notification failed" &&
			lobj["alert_id"] == receipt.Alert.ID {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCreateAlertBusFailureDoesNotFail(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	f := newFixture(t, nil)
	defer f.ctrl.Finish()

	ward := f.seedWard(t)
	bed := f.seedBed(t, ward.ID, "")
	f.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	receipt, err := f.h.Alert.CreateAlert(ctx, hospital.CreateAlertInput{BedID: bed.ID, WardID: ward.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.Alert.ID)
}

func TestConfirmAlertTwice(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	f := newFixture(t, nil)
	defer f.ctrl.Finish()

	ward := f.seedWard(t)
	bed := f.seedBed(t, ward.ID, "")

	gomock.InOrder(
		f.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil),
		f.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, event models.AlertEvent) error {
				assert.Equal(t, models.AlertEventRemoved, event.Kind)
				return nil
			}),
	)

	created, err := f.h.Alert.CreateAlert(ctx, hospital.CreateAlertInput{BedID: bed.ID, WardID: ward.ID})
	require.NoError(t, err)

	first, err := f.h.Alert.ConfirmAlert(ctx, hospital.ResolveInput{AlertID: created.Alert.ID, NurseID: "nurse-1"})
	require.NoError(t, err)
	assert.True(t, first.Alert.Confirmed)
	assert.False(t, first.AlreadyResolved)
	assert.Equal(t, models.ResolutionConfirmed, first.Alert.Resolution)

	second, err := f.h.Alert.ConfirmAlert(ctx, hospital.ResolveInput{AlertID: created.Alert.ID, NurseID: "nurse-2"})
	require.NoError(t, err)
	assert.True(t, second.Alert.Confirmed)
	assert.True(t, second.AlreadyResolved)
	assert.Equal(t, "nurse-1", second.Alert.ResolvedBy)
}

func TestDismissedAlertStaysDismissed(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	f := newFixture(t, nil)
	defer f.ctrl.Finish()
	f.acceptBusEvents()

	ward := f.seedWard(t)
	bed := f.seedBed(t, ward.ID, "")

	created, err := f.h.Alert.CreateAlert(ctx, hospital.CreateAlertInput{BedID: bed.ID, WardID: ward.ID})
	require.NoError(t, err)

	_, err = f.h.Alert.DismissAlert(ctx, hospital.ResolveInput{AlertID: created.Alert.ID, NurseID: "nurse-1"})
	require.NoError(t, err)

	receipt, err := f.h.Alert.ConfirmAlert(ctx, hospital.ResolveInput{AlertID: created.Alert.ID, NurseID: "nurse-1"})
	require.NoError(t, err)
	assert.True(t, receipt.AlreadyResolved)
	assert.Equal(t, models.ResolutionDismissed, receipt.Alert.Resolution)
	require.NotNil(t, receipt.Alert.ResolvedAt)

	pending, err := f.h.Alert.ListPending(ctx, []string{bed.ID})
	require.NoError(t, err)
	assert.Len(t, pending, 0)
}

func TestResolveUnknownAlert(t *testing.T) {
	common.SetTestLoggerNop()

	f := newFixture(t, nil)
	defer f.ctrl.Finish()

	_, err := f.h.Alert.ConfirmAlert(context.Background(), hospital.ResolveInput{AlertID: uuid.NewString(), NurseID: "nurse-1"})
	assert.ErrorIs(t, err, hospital.ErrAlertNotFound)

	_, err = f.h.Alert.DismissAlert(context.Background(), hospital.ResolveInput{AlertID: uuid.NewString(), NurseID: "nurse-1"})
	assert.ErrorIs(t, err, hospital.ErrAlertNotFound)
}

func TestResolveAlertOfAnotherWard(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	f := newFixture(t, nil)
	defer f.ctrl.Finish()
	f.acceptBusEvents()

	wardA := f.seedWard(t)
	wardB := f.seedWard(t)
	bed := f.seedBed(t, wardA.ID, "")

	created, err := f.h.Alert.CreateAlert(ctx, hospital.CreateAlertInput{BedID: bed.ID, WardID: wardA.ID})
	require.NoError(t, err)

	_, err = f.h.Alert.DismissAlert(ctx, hospital.ResolveInput{AlertID: created.Alert.ID, NurseID: "nb", WardID: wardB.ID})
	assert.ErrorIs(t, err, hospital.ErrAlertNotFound)
	_, err = f.h.Alert.ConfirmAlert(ctx, hospital.ResolveInput{AlertID: created.Alert.ID, NurseID: "nb", WardID: wardB.ID})
	assert.ErrorIs(t, err, hospital.ErrAlertNotFound)

	pending, err := f.h.Alert.ListPending(ctx, []string{bed.ID})
	require.NoError(t, err)
	require.Len(t, pending, 1)

	receipt, err := f.h.Alert.ConfirmAlert(ctx, hospital.ResolveInput{AlertID: created.Alert.ID, NurseID: "na", WardID: wardA.ID})
	require.NoError(t, err)
	assert.Equal(t, "na", receipt.Alert.ResolvedBy)
}

func TestCreateAlertNotifiesNurseWithoutPushToken(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	f := newFixture(t, nil)
	defer f.ctrl.Finish()
	f.acceptBusEvents()

	ward := f.seedWard(t)
	bed := f.seedBed(t, ward.ID, "")
	nurse := f.seedNurse(t, ward.ID, "")
	_, err := f.h.Roster.AssignBed(ctx, bed.ID, nurse.ID)
	require.NoError(t, err)

	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg push.Message) error {
			assert.Empty(t, msg.Token)
			assert.Equal(t, ward.ID, msg.Data["ward_id"])
			assert.Equal(t, nurse.ID, msg.Data["nurse_id"])
			return nil
		})

	receipt, err := f.h.Alert.CreateAlert(ctx, hospital.CreateAlertInput{BedID: bed.ID, WardID: ward.ID})
	require.NoError(t, err)
	assert.True(t, receipt.NurseAssigned)
	assert.True(t, receipt.Notified)
}

func TestListPendingFiltersAndOrders(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	f := newFixture(t, nil)
	defer f.ctrl.Finish()
	f.acceptBusEvents()

	ward := f.seedWard(t)
	bedA := f.seedBed(t, ward.ID, "")
	bedB := f.seedBed(t, ward.ID, "")
	bedC := f.seedBed(t, ward.ID, "")

	var ids []string
	for _, bedID := range []string{bedA.ID, bedB.ID, bedC.ID, bedA.ID} {
		receipt, err := f.h.Alert.CreateAlert(ctx, hospital.CreateAlertInput{BedID: bedID, WardID: ward.ID})
		require.NoError(t, err)
		ids = append(ids, receipt.Alert.ID)
		time.Sleep(2 * time.Millisecond)
	}

	pending, err := f.h.Alert.ListPending(ctx, []string{bedA.ID, bedB.ID})
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, []string{ids[0], ids[1], ids[3]}, []string{pending[0].ID, pending[1].ID, pending[2].ID})

	again, err := f.h.Alert.ListPending(ctx, []string{bedA.ID, bedB.ID})
	require.NoError(t, err)
	assert.Equal(t, pending, again)

	history, err := f.h.Alert.GetAlertHistory(ctx, ward.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, ids[3], history[0].ID, "newest first")
}

// Bed "101" with token "tok-abc": help request, nurse sees it, confirms it.
func TestHelpRequestScenario(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	f := newFixture(t, isolatedPrimary(t))
	defer f.ctrl.Finish()
	f.acceptBusEvents()

	ward := f.seedWard(t)
	f.seedBed(t, ward.ID, "101")
	nurse := f.seedNurse(t, ward.ID, "")
	_, err := f.h.Roster.AssignBed(ctx, "101", nurse.ID)
	require.NoError(t, err)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)

	admission, err := f.h.Roster.AdmitPatient(ctx, hospital.PatientInput{WardID: ward.ID, BedID: "101", Name: "Maria"})
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("tok-abc"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = f.h.Store.Delete(ctx, store.AccessTokens, "101")
	require.NoError(t, err)
	_, err = f.h.Store.Create(ctx, store.AccessTokens, &models.AccessToken{
		ID:        "101",
		PatientID: admission.Patient.ID,
		TokenHash: string(hash),
		IssuedAt:  time.Now(),
	})
	require.NoError(t, err)

	validation, err := f.h.Identity.ValidateToken(ctx, "101", "tok-abc")
	require.NoError(t, err)
	require.True(t, validation.Valid)

	receipt, err := f.h.Alert.CreateAlert(ctx, hospital.CreateAlertInput{
		BedID:       "101",
		PatientID:   validation.Patient.ID,
		PatientName: validation.Patient.Name,
		WardID:      validation.Patient.WardID,
	})
	require.NoError(t, err)
	assert.Equal(t, "101", receipt.Alert.BedID)
	assert.False(t, receipt.Alert.Confirmed)

	pending, err := f.h.Alert.ListPending(ctx, []string{"101"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, receipt.Alert.ID, pending[0].ID)

	confirmed, err := f.h.Alert.ConfirmAlert(ctx, hospital.ResolveInput{AlertID: receipt.Alert.ID, NurseID: nurse.ID})
	require.NoError(t, err)
	assert.True(t, confirmed.Alert.Confirmed)

	pending, err = f.h.Alert.ListPending(ctx, []string{"101"})
	require.NoError(t, err)
	assert.Len(t, pending, 0)
}

func TestCreateAlertWithPrimaryUnreachable(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t, unreachablePrimary(ctrl))
	defer f.ctrl.Finish()
	f.acceptBusEvents()

	require.NoError(t, f.local.Create(ctx, store.Nurses, &models.Nurse{
		ID: "n1", WardID: "w1", Name: "Ana", BedIDs: []string{"101"},
	}))
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)

	receipt, err := f.h.Alert.CreateAlert(ctx, hospital.CreateAlertInput{BedID: "101", WardID: "w1", PatientName: "Maria"})
	require.NoError(t, err)
	assert.True(t, receipt.SavedLocally)
	assert.True(t, receipt.NurseAssigned)
	assert.Contains(t, receipt.Notice, hospital.NoticeSavedLocally)

	var stored models.Alert
	require.NoError(t, f.local.Get(ctx, store.Alerts, receipt.Alert.ID, &stored))
	assert.Equal(t, "101", stored.BedID)

	pending, err := f.h.Alert.ListPending(ctx, []string{"101"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, receipt.Alert.ID, pending[0].ID)

	resolved, err := f.h.Alert.ConfirmAlert(ctx, hospital.ResolveInput{AlertID: receipt.Alert.ID, NurseID: "n1"})
	require.NoError(t, err)
	assert.True(t, resolved.SavedLocally)
	assert.Equal(t, hospital.NoticeSavedLocally, resolved.Notice)
}
