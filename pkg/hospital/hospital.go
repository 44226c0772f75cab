// Package hospital is the ward core: the alert lifecycle, the roster of wards,
// beds, nurses and patients, and the bed access tokens patients sign in with.
package hospital

//go:generate mockgen -source=hospital.go -destination=mocks/mock_hospital.go -package=mocks

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	"liyu1981.xyz/ward-alert-service/pkg/push"
	"liyu1981.xyz/ward-alert-service/pkg/store"
)

type IAlert interface {
	CreateAlert(ctx context.Context, input CreateAlertInput) (*AlertReceipt, error)
	ConfirmAlert(ctx context.Context, input ResolveInput) (*AlertReceipt, error)
	DismissAlert(ctx context.Context, input ResolveInput) (*AlertReceipt, error)
	ListPending(ctx context.Context, bedIDs []string) ([]models.Alert, error)
	GetAlertHistory(ctx context.Context, wardID string) ([]models.Alert, error)
}

type IRoster interface {
	CreateWard(ctx context.Context, input WardInput) (*models.Ward, error)
	GetWard(ctx context.Context, wardID string) (*models.Ward, error)
	ListWards(ctx context.Context) ([]models.Ward, error)
	RotateWardCredentials(ctx context.Context, wardID, username, password string) (*models.Ward, error)
	AuthenticateWard(ctx context.Context, username, password string) (*models.Ward, error)

	CreateBed(ctx context.Context, input BedInput) (*models.Bed, error)
	GetBed(ctx context.Context, bedID string) (*models.Bed, error)
	ListBeds(ctx context.Context, wardID string) ([]models.Bed, error)
	UpdateBed(ctx context.Context, bedID string, update BedUpdate) (*models.Bed, error)
	DeleteBed(ctx context.Context, bedID string) error
	AssignBed(ctx context.Context, bedID, nurseID string) (*models.Bed, error)

	CreateNurse(ctx context.Context, input NurseInput) (*models.Nurse, error)
	GetNurse(ctx context.Context, nurseID string) (*models.Nurse, error)
	ListNurses(ctx context.Context, wardID string) ([]models.Nurse, error)
	UpdateNurse(ctx context.Context, nurseID string, update NurseUpdate) (*models.Nurse, error)
	DeleteNurse(ctx context.Context, nurseID string) error

	AdmitPatient(ctx context.Context, input PatientInput) (*Admission, error)
	GetPatient(ctx context.Context, patientID string) (*models.Patient, error)
	ListPatients(ctx context.Context, wardID string) ([]models.Patient, error)
	UpdatePatient(ctx context.Context, patientID string, update PatientUpdate) (*Admission, error)
	DischargePatient(ctx context.Context, patientID string) error
	FindPatientByBed(ctx context.Context, bedID string) (*models.Patient, error)
}

type IIdentity interface {
	IssueToken(ctx context.Context, bedID, patientID string) (string, error)
	ValidateToken(ctx context.Context, bedID, token string) (*TokenValidation, error)
	RevokeToken(ctx context.Context, bedID string) error
}

// AlertPublisher receives every alert change for live subscribers.
type AlertPublisher interface {
	Publish(ctx context.Context, event models.AlertEvent) error
}

type Hospital struct {
	Store    *store.Gateway
	Notifier push.Notifier
	Bus      AlertPublisher

	// TokenTTL bounds bed access tokens; zero keeps them until discharge.
	TokenTTL time.Duration
	// PublicURL prefixes the patient access link encoded in the bed QR code.
	PublicURL string
	HashCost  int

	Alert    IAlert
	Roster   IRoster
	Identity IIdentity
}

type ServiceOpts struct {
	Alert    IAlert
	Roster   IRoster
	Identity IIdentity
}

func (h *Hospital) WithServices(opts ServiceOpts) *Hospital {
	if opts.Alert != nil {
		h.Alert = opts.Alert
	}
	if opts.Roster != nil {
		h.Roster = opts.Roster
	}
	if opts.Identity != nil {
		h.Identity = opts.Identity
	}
	return h
}

// WithDefaultServices wires the built-in implementations.
func (h *Hospital) WithDefaultServices() *Hospital {
	return h.WithServices(ServiceOpts{
		Alert:    h.GetIAlert(),
		Roster:   h.GetIRoster(),
		Identity: h.GetIIdentity(),
	})
}

func (h *Hospital) hashCost() int {
	if h.HashCost == 0 {
		return bcrypt.DefaultCost
	}
	return h.HashCost
}

type CreateAlertInput struct {
	BedID       string
	PatientID   string
	PatientName string
	WardID      string
}

// ResolveInput names the alert and the nurse acting on it. A non-empty WardID
// limits the call to alerts of that ward.
type ResolveInput struct {
	AlertID string
	NurseID string
	WardID  string
}

// AlertReceipt reports what happened around an alert write besides the write itself.
type AlertReceipt struct {
	Alert           models.Alert `json:"alert"`
	NurseAssigned   bool         `json:"nurse_assigned"`
	Notified        bool         `json:"notified"`
	SavedLocally    bool         `json:"saved_locally"`
	AlreadyResolved bool         `json:"already_resolved,omitempty"`
	Notice          string       `json:"notice,omitempty"`
}

type WardInput struct {
	Name     string
	Location string
	Username string
	Password string
}

// BedInput.ID may carry a printed bed number; empty means generate one.
type BedInput struct {
	ID     string
	WardID string
	Label  string
}

// NurseInput.ID is the badge id encoded in the nurse QR code; empty means generate one.
type NurseInput struct {
	ID        string
	WardID    string
	Name      string
	Email     string
	PushToken string
}

type BedUpdate struct {
	Label *string
}

type NurseUpdate struct {
	Name      *string
	Email     *string
	PushToken *string
}

type PatientInput struct {
	WardID    string
	BedID     string
	Name      string
	Treatment string
	Notes     string
}

type PatientUpdate struct {
	BedID     *string
	Name      *string
	Treatment *string
	Notes     *string
}

// Admission is a bound patient. Token and AccessURL are set when a new bed
// token was issued, which is what the bed QR code encodes.
type Admission struct {
	Patient   models.Patient `json:"patient"`
	Token     string         `json:"token,omitempty"`
	AccessURL string         `json:"access_url,omitempty"`
}

type TokenValidation struct {
	Valid   bool            `json:"valid"`
	Patient *models.Patient `json:"patient,omitempty"`
}
