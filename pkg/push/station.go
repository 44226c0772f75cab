package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
	"liyu1981.xyz/ward-alert-service/pkg/common"
)

// MQTTPublisher is the part of mqtt.Client the station publisher needs.
type MQTTPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// StationPublisher mirrors alert notifications to nurse-station displays over MQTT.
type StationPublisher struct {
	client  MQTTPublisher
	timeout time.Duration
	logger  *zap.Logger
}

func NewStationPublisher(client MQTTPublisher) *StationPublisher {
	return &StationPublisher{
		client:  client,
		timeout: 5 * time.Second,
		logger:  common.GetCategoryLogger(common.LoggerNamePush, common.LoggerCategoryStation),
	}
}

// ConnectMQTT dials the broker with auto reconnect, the way the device gateway does.
func ConnectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}

func StationTopic(wardID, nurseID string) string {
	return fmt.Sprintf("ward/%s/nurse/%s/alerts", wardID, nurseID)
}

func (s *StationPublisher) Notify(ctx context.Context, msg Message) error {
	wardID, nurseID := msg.Data["ward_id"], msg.Data["nurse_id"]
	if wardID == "" || nurseID == "" {
		return errors.New("station message needs ward_id and nurse_id")
	}

	payload, err := json.Marshal(msg.withDefaults())
	if err != nil {
		return err
	}

	topic := StationTopic(wardID, nurseID)
	token := s.client.Publish(topic, 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.timeout):
		return fmt.Errorf("publish to topic %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		s.logger.Warn("Station publish failed", zap.String("topic", topic), zap.Error(err))
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}

	s.logger.Debug("Station notified", zap.String("topic", topic))
	return nil
}
