package grpc

import (
	"liyu1981.xyz/ward-alert-service/pkg/hospital"
	"liyu1981.xyz/ward-alert-service/pkg/models"
)

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CreateAlertRequest.BedId may be left empty: a patient session already names its bed.
type CreateAlertRequest struct {
	BedId string `json:"bed_id"`
}

func (r *CreateAlertRequest) GetBedId() string {
	if r == nil {
		return ""
	}
	return r.BedId
}

type ResolveAlertRequest struct {
	AlertId string `json:"alert_id"`
}

type AlertResponse struct {
	Status  *StatusResponse        `json:"status"`
	Receipt *hospital.AlertReceipt `json:"receipt,omitempty"`
}

type ListPendingRequest struct {
	BedIds []string `json:"bed_ids"`
}

type ListPendingResponse struct {
	Status *StatusResponse `json:"status"`
	Alerts []models.Alert  `json:"alerts"`
}

type ValidateTokenRequest struct {
	BedId string `json:"bed_id"`
	Token string `json:"token"`
}

type ValidateTokenResponse struct {
	Status       *StatusResponse `json:"status"`
	Valid        bool            `json:"valid"`
	Patient      *models.Patient `json:"patient,omitempty"`
	SessionToken string          `json:"session_token,omitempty"`
}

type PostLimiterRequest struct {
	BedId    string  `json:"bed_id"`
	BedRate  float64 `json:"bed_rate"`
	BedBurst int32   `json:"bed_burst"`
}

type PostLimiterResponse struct {
	Status *StatusResponse `json:"status"`
}

type WatchAlertsRequest struct {
	BedIds []string `json:"bed_ids"`
}

type AlertEvent = models.AlertEvent

func statusOK() *StatusResponse {
	return &StatusResponse{Success: true, Message: "OK"}
}

func statusFailed(err error) *StatusResponse {
	return &StatusResponse{Success: false, Message: err.Error()}
}
