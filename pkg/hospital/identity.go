package hospital

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	"liyu1981.xyz/ward-alert-service/pkg/store"
)

const TokenPrefix = "tok-"

func (h *Hospital) identityLogger() *zap.Logger {
	return common.GetCategoryLogger(common.LoggerNameHospitalCore, common.LoggerCategoryIdentity)
}

// issueToken replaces the bed's token. Only the hash is stored; the plain
// token is returned once, for the bed QR code.
func (h *Hospital) issueToken(ctx context.Context, bedID, patientID string) (string, error) {
	token := TokenPrefix + uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(token), h.hashCost())
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	record := models.AccessToken{
		ID:        bedID,
		PatientID: patientID,
		TokenHash: string(hash),
		IssuedAt:  now,
	}
	if h.TokenTTL > 0 {
		expires := now.Add(h.TokenTTL)
		record.ExpiresAt = &expires
	}

	if err := h.revokeToken(ctx, bedID); err != nil {
		return "", err
	}
	if _, err := h.Store.Create(ctx, store.AccessTokens, &record); err != nil {
		return "", fmt.Errorf("save access token: %w", err)
	}

	h.identityLogger().Info("Access token issued", zap.String("bed_id", bedID), zap.String("patient_id", patientID))
	return token, nil
}

func (h *Hospital) validateToken(ctx context.Context, bedID, token string) (*TokenValidation, error) {
	invalid := &TokenValidation{Valid: false}
	if bedID == "" || token == "" {
		return invalid, nil
	}

	var record models.AccessToken
	_, err := h.Store.Get(ctx, store.AccessTokens, bedID, &record)
	if errors.Is(err, store.ErrNotFound) {
		return invalid, nil
	}
	if err != nil {
		return nil, err
	}

	if record.ExpiresAt != nil && time.Now().After(*record.ExpiresAt) {
		h.identityLogger().Info("Expired access token presented", zap.String("bed_id", bedID))
		return invalid, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(record.TokenHash), []byte(token)) != nil {
		return invalid, nil
	}

	patient, err := h.findPatientByBed(ctx, bedID)
	if errors.Is(err, ErrPatientNotFound) {
		return invalid, nil
	}
	if err != nil {
		return nil, err
	}
	if record.PatientID != "" && record.PatientID != patient.ID {
		return invalid, nil
	}

	return &TokenValidation{Valid: true, Patient: patient}, nil
}

func (h *Hospital) revokeToken(ctx context.Context, bedID string) error {
	_, err := h.Store.Delete(ctx, store.AccessTokens, bedID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// PatientOnBed reports whether patientID still occupies bedID. A patient
// session stays good for help requests only while this holds.
func (h *Hospital) PatientOnBed(ctx context.Context, bedID, patientID string) (bool, error) {
	patient, err := h.Roster.FindPatientByBed(ctx, bedID)
	if errors.Is(err, ErrPatientNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return patient.ID == patientID, nil
}

type IIdentityImpl struct {
	hospital *Hospital
}

func (ii *IIdentityImpl) IssueToken(ctx context.Context, bedID, patientID string) (string, error) {
	return ii.hospital.issueToken(ctx, bedID, patientID)
}

func (ii *IIdentityImpl) ValidateToken(ctx context.Context, bedID, token string) (*TokenValidation, error) {
	return ii.hospital.validateToken(ctx, bedID, token)
}

func (ii *IIdentityImpl) RevokeToken(ctx context.Context, bedID string) error {
	return ii.hospital.revokeToken(ctx, bedID)
}

func (h *Hospital) GetIIdentity() IIdentity {
	return &IIdentityImpl{hospital: h}
}
