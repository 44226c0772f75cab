// Package store is the data access gateway: one Backend interface over the
// primary document store (SQL or MongoDB) and a local key-value fallback.
package store

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"liyu1981.xyz/ward-alert-service/pkg/models"
)

var ErrNotFound = errors.New("record not found")

type Resource string

const (
	Wards        Resource = "wards"
	Beds         Resource = "beds"
	Nurses       Resource = "nurses"
	Patients     Resource = "patients"
	Alerts       Resource = "alerts"
	AccessTokens Resource = "access_tokens"
)

var Resources = []Resource{Wards, Beds, Nurses, Patients, Alerts, AccessTokens}

// NewRecord returns a pointer to the zero model of the resource.
func (r Resource) NewRecord() (any, error) {
	switch r {
	case Wards:
		return &models.Ward{}, nil
	case Beds:
		return &models.Bed{}, nil
	case Nurses:
		return &models.Nurse{}, nil
	case Patients:
		return &models.Patient{}, nil
	case Alerts:
		return &models.Alert{}, nil
	case AccessTokens:
		return &models.AccessToken{}, nil
	}
	return nil, fmt.Errorf("unknown resource %q", r)
}

// Filter matches records whose keys equal the given values.
type Filter map[string]any

// Backend is implemented by every store. out arguments are pointers to a model
// (Get) or to a slice of models (List); record is a pointer to a model with ID set.
type Backend interface {
	Get(ctx context.Context, res Resource, id string, out any) error
	List(ctx context.Context, res Resource, filter Filter, out any) error
	Create(ctx context.Context, res Resource, record any) error
	Update(ctx context.Context, res Resource, id string, fields map[string]any) error
	Delete(ctx context.Context, res Resource, id string) error
	Ping(ctx context.Context) error
}

// Upserter is implemented by backends that can take a full record regardless of
// whether it already exists. The gateway uses it to mirror primary writes.
type Upserter interface {
	Put(ctx context.Context, res Resource, record any) error
}

// mergeFields overlays fields on record through its JSON form, so keys are the
// same snake_case names used in filters.
func mergeFields(record any, fields map[string]any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	for k, v := range fields {
		doc[k] = v
	}
	if raw, err = json.Marshal(doc); err != nil {
		return err
	}
	return json.Unmarshal(raw, record)
}
