package push

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"liyu1981.xyz/ward-alert-service/pkg/common"
)

const DefaultFCMURL = "https://fcm.googleapis.com/fcm/send"

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmRequest struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

// Relay posts messages to the FCM legacy endpoint. One attempt per message.
type Relay struct {
	httpClient *resty.Client
	url        string
	serverKey  string
	logger     *zap.Logger
}

func NewRelay(url, serverKey string) *Relay {
	if url == "" {
		url = DefaultFCMURL
	}
	client := resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Relay{
		httpClient: client,
		url:        url,
		serverKey:  serverKey,
		logger:     common.GetCategoryLogger(common.LoggerNamePush, common.LoggerCategoryRelay),
	}
}

func (r *Relay) Notify(ctx context.Context, msg Message) error {
	return r.Send(ctx, msg)
}

func (r *Relay) Send(ctx context.Context, msg Message) error {
	if msg.Token == "" {
		return ErrMissingToken
	}
	if r.serverKey == "" {
		return ErrMissingCredential
	}
	msg = msg.withDefaults()

	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "key="+r.serverKey).
		SetBody(fcmRequest{
			To:           msg.Token,
			Notification: fcmNotification{Title: msg.Title, Body: msg.Body},
			Data:         msg.Data,
		}).
		Post(r.url)
	if err != nil {
		r.logger.Error("Push gateway call failed", zap.Error(err))
		return fmt.Errorf("failed to call push gateway: %w", err)
	}

	if !resp.IsSuccess() {
		r.logger.Warn("Push gateway rejected message",
			zap.Int("status", resp.StatusCode()),
			zap.String("detail", resp.String()))
		return &GatewayError{Status: resp.StatusCode(), Detail: resp.String()}
	}

	r.logger.Info("Push delivered", zap.String("alert_id", msg.Data["alert_id"]))
	return nil
}
