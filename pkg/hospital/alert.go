package hospital

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	"liyu1981.xyz/ward-alert-service/pkg/push"
	"liyu1981.xyz/ward-alert-service/pkg/store"
)

const (
	NoticeNoNurse      = "no nurse assigned to this bed"
	NoticeSavedLocally = "saved locally"
)

func (h *Hospital) alertLogger() *zap.Logger {
	return common.GetCategoryLogger(common.LoggerNameHospitalCore, common.LoggerCategoryAlert)
}

// nurseForBed scans the ward's nurses for the one holding bedID.
func (h *Hospital) nurseForBed(ctx context.Context, wardID, bedID string) (*models.Nurse, error) {
	filter := store.Filter{}
	if wardID != "" {
		filter["ward_id"] = wardID
	}
	var nurses []models.Nurse
	if _, err := h.Store.List(ctx, store.Nurses, filter, &nurses); err != nil {
		return nil, err
	}
	for i := range nurses {
		if nurses[i].HasBed(bedID) {
			return &nurses[i], nil
		}
	}
	return nil, nil
}

func (h *Hospital) createAlert(ctx context.Context, input CreateAlertInput) (*AlertReceipt, error) {
	logger := h.alertLogger()

	nurse, err := h.nurseForBed(ctx, input.WardID, input.BedID)
	if err != nil {
		logger.Warn("Nurse lookup failed, alert goes out unassigned",
			zap.String("bed_id", input.BedID), zap.Error(err))
	}

	alert := models.Alert{
		ID:          uuid.NewString(),
		BedID:       input.BedID,
		PatientID:   input.PatientID,
		PatientName: input.PatientName,
		WardID:      input.WardID,
		Kind:        models.AlertKindHelpRequest,
		CreatedAt:   time.Now().UTC(),
	}
	if nurse != nil {
		alert.AssignedNurseID = nurse.ID
	}

	result, err := h.Store.Create(ctx, store.Alerts, &alert)
	if err != nil {
		return nil, fmt.Errorf("save alert: %w", err)
	}
	logger.Info("Alert saved", zap.Reflect("alert", alert), zap.String("source", string(result.Source)))

	receipt := &AlertReceipt{
		Alert:         alert,
		NurseAssigned: nurse != nil,
		SavedLocally:  result.SavedLocally(),
	}

	var notices []string
	if nurse == nil {
		notices = append(notices, NoticeNoNurse)
	} else {
		receipt.Notified = h.notifyNurse(ctx, nurse, alert)
	}
	if receipt.SavedLocally {
		notices = append(notices, NoticeSavedLocally)
	}
	receipt.Notice = strings.Join(notices, "; ")

	h.publish(ctx, models.AlertEventAdded, alert)
	return receipt, nil
}

// notifyNurse is best effort: failures are logged and reported as false.
// Each notifier checks what it needs; a nurse without a phone token is still
// reachable at the station.
func (h *Hospital) notifyNurse(ctx context.Context, nurse *models.Nurse, alert models.Alert) bool {
	if h.Notifier == nil {
		return false
	}

	name := alert.PatientName
	if name == "" {
		name = "A patient"
	}
	msg := push.Message{
		Token: nurse.PushToken,
		Title: "Help request",
		Body:  fmt.Sprintf("%s on bed %s needs help", name, alert.BedID),
		Data: map[string]string{
			"alert_id": alert.ID,
			"bed_id":   alert.BedID,
			"ward_id":  alert.WardID,
			"nurse_id": nurse.ID,
			"kind":     string(alert.Kind),
		},
	}
	if err := h.Notifier.Notify(ctx, msg); err != nil {
		h.alertLogger().Warn("Push notification failed",
			zap.String("alert_id", alert.ID), zap.String("nurse_id", nurse.ID), zap.Error(err))
		return false
	}
	return true
}

func (h *Hospital) publish(ctx context.Context, kind models.AlertEventKind, alert models.Alert) {
	if h.Bus == nil {
		return
	}
	if err := h.Bus.Publish(ctx, models.AlertEvent{Kind: kind, Alert: alert}); err != nil {
		h.alertLogger().Warn("Alert change not published",
			zap.String("alert_id", alert.ID), zap.String("kind", string(kind)), zap.Error(err))
	}
}

// resolveAlert moves a pending alert to its terminal state. Resolving a
// resolved alert succeeds and keeps the first resolution.
func (h *Hospital) resolveAlert(ctx context.Context, input ResolveInput, resolution models.Resolution) (*AlertReceipt, error) {
	logger := h.alertLogger()
	alertID, nurseID := input.AlertID, input.NurseID

	var alert models.Alert
	result, err := h.Store.Get(ctx, store.Alerts, alertID, &alert)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}
	if err != nil {
		return nil, err
	}
	if input.WardID != "" && alert.WardID != input.WardID {
		logger.Warn("Alert resolve outside its ward refused",
			zap.String("alert_id", alertID), zap.String("ward_id", input.WardID))
		return nil, fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}

	if !alert.Pending() {
		logger.Info("Alert already resolved",
			zap.String("alert_id", alertID), zap.String("resolution", string(alert.Resolution)))
		return &AlertReceipt{
			Alert:           alert,
			NurseAssigned:   alert.AssignedNurseID != "",
			SavedLocally:    result.SavedLocally(),
			AlreadyResolved: true,
		}, nil
	}

	now := time.Now().UTC()
	result, err = h.Store.Update(ctx, store.Alerts, alertID, map[string]any{
		"confirmed":   true,
		"resolution":  resolution,
		"resolved_at": now,
		"resolved_by": nurseID,
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}
	if err != nil {
		return nil, err
	}

	alert.Confirmed = true
	alert.Resolution = resolution
	alert.ResolvedAt = &now
	alert.ResolvedBy = nurseID
	logger.Info("Alert resolved",
		zap.String("alert_id", alertID),
		zap.String("resolution", string(resolution)),
		zap.String("nurse_id", nurseID))

	receipt := &AlertReceipt{
		Alert:         alert,
		NurseAssigned: alert.AssignedNurseID != "",
		SavedLocally:  result.SavedLocally(),
	}
	if receipt.SavedLocally {
		receipt.Notice = NoticeSavedLocally
	}

	h.publish(ctx, models.AlertEventRemoved, alert)
	return receipt, nil
}

func (h *Hospital) listPending(ctx context.Context, bedIDs []string) ([]models.Alert, error) {
	filter := store.Filter{"confirmed": false}
	if len(bedIDs) == 1 {
		filter["bed_id"] = bedIDs[0]
	}

	var alerts []models.Alert
	if _, err := h.Store.List(ctx, store.Alerts, filter, &alerts); err != nil {
		return nil, err
	}

	beds := common.StringSet(bedIDs)
	pending := common.Filter(alerts, func(a models.Alert) bool {
		return a.Pending() && (len(beds) == 0 || beds[a.BedID])
	})
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending, nil
}

func (h *Hospital) getAlertHistory(ctx context.Context, wardID string) ([]models.Alert, error) {
	filter := store.Filter{}
	if wardID != "" {
		filter["ward_id"] = wardID
	}

	var alerts []models.Alert
	if _, err := h.Store.List(ctx, store.Alerts, filter, &alerts); err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})
	return alerts, nil
}

type IAlertImpl struct {
	hospital *Hospital
}

func (ia *IAlertImpl) CreateAlert(ctx context.Context, input CreateAlertInput) (*AlertReceipt, error) {
	return ia.hospital.createAlert(ctx, input)
}

func (ia *IAlertImpl) ConfirmAlert(ctx context.Context, input ResolveInput) (*AlertReceipt, error) {
	return ia.hospital.resolveAlert(ctx, input, models.ResolutionConfirmed)
}

func (ia *IAlertImpl) DismissAlert(ctx context.Context, input ResolveInput) (*AlertReceipt, error) {
	return ia.hospital.resolveAlert(ctx, input, models.ResolutionDismissed)
}

func (ia *IAlertImpl) ListPending(ctx context.Context, bedIDs []string) ([]models.Alert, error) {
	return ia.hospital.listPending(ctx, bedIDs)
}

func (ia *IAlertImpl) GetAlertHistory(ctx context.Context, wardID string) ([]models.Alert, error) {
	return ia.hospital.getAlertHistory(ctx, wardID)
}

func (h *Hospital) GetIAlert() IAlert {
	return &IAlertImpl{hospital: h}
}
