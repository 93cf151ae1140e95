package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremon "github.com/kilianp07/loadshift/core/monitoring"
	"github.com/kilianp07/loadshift/core/schedule"
	"github.com/kilianp07/loadshift/infra/logger"
)

// Message is the payload sent to one appliance.
type Message struct {
	RunID       string `json:"run_id"`
	schedule.Entry
	PublishedAt int64 `json:"published_at"`
}

// Publisher sends each plan entry to its appliance topic.
type Publisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
}

var _ schedule.Publisher = (*Publisher)(nil)

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Publisher{
		cli:        c,
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		retain:     *cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
	}, nil
}

// Topic returns the schedule topic of an appliance.
func (p *Publisher) Topic(appliance string) string {
	return p.prefix + "/" + TopicSegment(appliance) + "/schedule"
}

// TopicSegment lowercases name and replaces everything outside [a-z0-9_-]
// so that it is a single valid topic level.
func TopicSegment(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// Publish sends every entry of plan. All entries are attempted; the returned
// error joins the failures.
func (p *Publisher) Publish(ctx context.Context, plan schedule.Plan) error {
	var errs []error
	for _, e := range plan.Entries {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		msg := Message{RunID: plan.RunID, Entry: e, PublishedAt: time.Now().UnixMilli()}
		if err := p.publish(ctx, p.Topic(e.Appliance), msg); err != nil {
			coremon.CaptureException(err, map[string]string{
				"module":    "mqtt",
				"run_id":    plan.RunID,
				"appliance": e.Appliance,
			})
			errs = append(errs, fmt.Errorf("publish %s: %w", e.Appliance, err))
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) publish(ctx context.Context, topic string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("sent schedule to %s", topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		if attempt == p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	return publishErr
}

// Close gracefully closes the MQTT connection.
func (p *Publisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
