package models

import "time"

// Keys are snake_case in every encoding (gorm column, json, bson) so the store
// backends can share filters and partial updates.

type BedState string

const (
	BedStateFree     BedState = "free"
	BedStateOccupied BedState = "occupied"
)

type AlertKind string

const (
	AlertKindHelpRequest AlertKind = "help-request"
)

// Resolution is the terminal outcome of an alert. Empty means pending.
type Resolution string

const (
	ResolutionPending   Resolution = ""
	ResolutionConfirmed Resolution = "confirmed"
	ResolutionDismissed Resolution = "dismissed"
)

type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleWardAdmin  Role = "ward_admin"
	RoleNurse      Role = "nurse"
	RolePatient    Role = "patient"
)

type Ward struct {
	ID           string    `gorm:"primaryKey" json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Location     string    `json:"location" bson:"location"`
	Username     string    `gorm:"uniqueIndex" json:"username" bson:"username"`
	PasswordHash string    `json:"password_hash,omitempty" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

func (Ward) TableName() string { return "wards" }

// Public drops the credential hash before the ward leaves the service.
func (w Ward) Public() Ward {
	w.PasswordHash = ""
	return w
}

type Bed struct {
	ID           string   `gorm:"primaryKey" json:"id" bson:"_id"`
	WardID       string   `gorm:"index" json:"ward_id" bson:"ward_id"`
	Label        string   `json:"label" bson:"label"`
	State        BedState `gorm:"type:varchar(10);check:state IN ('free','occupied')" json:"state" bson:"state"`
	OccupantName string   `json:"occupant_name,omitempty" bson:"occupant_name"`

	// AssignedNurseID is derived from Nurse.BedIDs when the bed is read; it is never stored.
	AssignedNurseID string `gorm:"-" json:"assigned_nurse_id,omitempty" bson:"-"`
}

func (Bed) TableName() string { return "beds" }

type Nurse struct {
	ID        string   `gorm:"primaryKey" json:"id" bson:"_id"`
	WardID    string   `gorm:"index" json:"ward_id" bson:"ward_id"`
	Name      string   `json:"name" bson:"name"`
	Email     string   `json:"email" bson:"email"`
	BedIDs    []string `gorm:"serializer:json" json:"bed_ids" bson:"bed_ids"`
	PushToken string   `json:"push_token,omitempty" bson:"push_token"`
}

func (Nurse) TableName() string { return "nurses" }

func (n Nurse) HasBed(bedID string) bool {
	for _, id := range n.BedIDs {
		if id == bedID {
			return true
		}
	}
	return false
}

type Patient struct {
	ID        string    `gorm:"primaryKey" json:"id" bson:"_id"`
	WardID    string    `gorm:"index" json:"ward_id" bson:"ward_id"`
	BedID     string    `gorm:"index" json:"bed_id" bson:"bed_id"`
	Name      string    `json:"name" bson:"name"`
	Treatment string    `json:"treatment" bson:"treatment"`
	Notes     string    `json:"notes" bson:"notes"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

func (Patient) TableName() string { return "patients" }

type Alert struct {
	ID              string     `gorm:"primaryKey" json:"id" bson:"_id"`
	BedID           string     `gorm:"index" json:"bed_id" bson:"bed_id"`
	PatientID       string     `json:"patient_id" bson:"patient_id"`
	PatientName     string     `json:"patient_name" bson:"patient_name"`
	WardID          string     `gorm:"index" json:"ward_id" bson:"ward_id"`
	Kind            AlertKind  `gorm:"type:varchar(20)" json:"kind" bson:"kind"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	Confirmed       bool       `gorm:"index" json:"confirmed" bson:"confirmed"`
	Resolution      Resolution `gorm:"type:varchar(10)" json:"resolution" bson:"resolution"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
	ResolvedBy      string     `json:"resolved_by,omitempty" bson:"resolved_by"`
	AssignedNurseID string     `json:"assigned_nurse_id,omitempty" bson:"assigned_nurse_id"`
}

func (Alert) TableName() string { return "alerts" }

func (a Alert) Pending() bool {
	return !a.Confirmed
}

// Same compares two copies of an alert by value. Times compare as instants,
// so copies read back from different stores still match.
func (a Alert) Same(b Alert) bool {
	if (a.ResolvedAt == nil) != (b.ResolvedAt == nil) {
		return false
	}
	if a.ResolvedAt != nil && !a.ResolvedAt.Equal(*b.ResolvedAt) {
		return false
	}
	return a.ID == b.ID &&
		a.BedID == b.BedID &&
		a.PatientID == b.PatientID &&
		a.PatientName == b.PatientName &&
		a.WardID == b.WardID &&
		a.Kind == b.Kind &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.Confirmed == b.Confirmed &&
		a.Resolution == b.Resolution &&
		a.ResolvedBy == b.ResolvedBy &&
		a.AssignedNurseID == b.AssignedNurseID
}

// AccessToken binds a patient view to a bed. ID is the bed id: one live token per bed.
type AccessToken struct {
	ID        string     `gorm:"primaryKey" json:"id" bson:"_id"`
	PatientID string     `json:"patient_id" bson:"patient_id"`
	TokenHash string     `json:"token_hash" bson:"token_hash"`
	IssuedAt  time.Time  `json:"issued_at" bson:"issued_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
}

func (AccessToken) TableName() string { return "access_tokens" }

// KVRecord holds one key of the local fallback store.
type KVRecord struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (KVRecord) TableName() string { return "kv_records" }

type AlertEventKind string

const (
	AlertEventAdded    AlertEventKind = "added"
	AlertEventModified AlertEventKind = "modified"
	AlertEventRemoved  AlertEventKind = "removed"
)

// AlertEvent is one change on the realtime channel.
type AlertEvent struct {
	Kind  AlertEventKind `json:"kind"`
	Alert Alert          `json:"alert"`
}
