// Package notify publishes client events to an MQTT broker so home
// dashboards and automations can follow charging activity.
package notify

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/plugpoint/plugpoint/config"
	"github.com/plugpoint/plugpoint/core/events"
	"github.com/plugpoint/plugpoint/infra/logger"
	"github.com/plugpoint/plugpoint/internal/eventbus"
)

// Client is the paho client subset used by the notifier.
type Client interface {
	IsConnected() bool
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Notifier forwards session, station and pricing events to MQTT topics
// under a configurable prefix.
type Notifier struct {
	client Client
	prefix string
	qos    byte
	log    logger.Logger
}

// New connects to the broker described by cfg.
func New(cfg config.NotifyConfig) (*Notifier, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	if cfg.UseTLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	client := paho.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Notifier{
		client: client,
		prefix: cfg.TopicPrefix,
		qos:    cfg.QoS,
		log:    logger.New("notify"),
	}, nil
}

// NewWithClient wraps an existing client, for tests.
func NewWithClient(client Client, prefix string, qos byte, log logger.Logger) *Notifier {
	return &Notifier{client: client, prefix: prefix, qos: qos, log: log}
}

// Run forwards bus events to the broker until the context ends.
func (n *Notifier) Run(ctx context.Context, bus eventbus.EventBus) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if err := n.Notify(ev); err != nil {
				n.log.Errorf("publish: %v", err)
			}
		}
	}
}

// Notify publishes a single bus event to its topic. Unknown event types are
// ignored.
func (n *Notifier) Notify(ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.SessionStarted:
		return n.publish("sessions/"+e.Session.ID, e.Session)
	case events.SessionCompleted:
		return n.publish("sessions/"+e.Session.ID, e.Session)
	case events.PriceUpdated:
		return n.publish("spot-price", e.Price)
	case events.StationsRefreshed:
		return n.publish("stations", e.Stations)
	default:
		return nil
	}
}

func (n *Notifier) publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := n.client.Publish(n.prefix+"/"+topic, n.qos, false, data)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (n *Notifier) Close() {
	if n.client.IsConnected() {
		n.client.Disconnect(250)
	}
}
