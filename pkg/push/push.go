// Package push forwards alert notifications to nurses: the FCM relay for
// phones and an MQTT publisher for nurse-station displays.
package push

//go:generate mockgen -source=push.go -destination=mocks/mock_push.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
)

const (
	DefaultTitle = "Hospital"
	DefaultBody  = "New notification"
)

var (
	ErrMissingToken      = errors.New("push token is required")
	ErrMissingCredential = errors.New("push gateway credential is not configured")
)

// Message is one notification. Token addresses a device on the push gateway;
// Data carries the alert reference (alert_id, bed_id, ward_id, nurse_id).
type Message struct {
	Token string            `json:"-"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

func (m Message) withDefaults() Message {
	if m.Title == "" {
		m.Title = DefaultTitle
	}
	if m.Body == "" {
		m.Body = DefaultBody
	}
	return m
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// GatewayError is a non-2xx answer of the push gateway.
type GatewayError struct {
	Status int
	Detail string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("push gateway returned %d: %s", e.Status, e.Detail)
}

// Fanout delivers to every notifier. It fails only when no notifier
// delivered, with their errors joined.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) < len(f) {
		return nil
	}
	return errors.Join(errs...)
}
