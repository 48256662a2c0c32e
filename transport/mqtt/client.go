// SPDX-License-Identifier: MIT
// Package: synchghs/transport/mqtt
//
// client.go - the broker client seam and its Eclipse Paho implementation.

package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Client is the subset of an MQTT client the transport needs.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Subscribe(topic string, qos byte, fn func(topic string, payload []byte)) error
	Close()
}

// Will is the last-will message the broker publishes if the client drops.
type Will struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// ClientOptions describe a broker connection.
type ClientOptions struct {
	BrokerURL string
	ClientID  string // generated when empty
	Will      *Will
	Timeout   time.Duration
}

// pahoClient adapts paho.Client to Client.
type pahoClient struct {
	raw     paho.Client
	timeout time.Duration
}

// Connect dials the broker with paho. Messages of one subscription are
// handled in arrival order.
func Connect(opts ClientOptions) (Client, error) {
	if opts.ClientID == "" {
		opts.ClientID = "ghs-" + uuid.NewString()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	o := paho.NewClientOptions()
	o.AddBroker(opts.BrokerURL)
	o.SetClientID(opts.ClientID)
	o.SetOrderMatters(true)
	o.SetCleanSession(true)
	o.SetConnectRetry(true)
	o.SetConnectRetryInterval(2 * time.Second)
	o.SetConnectTimeout(opts.Timeout)
	if w := opts.Will; w != nil {
		o.SetBinaryWill(w.Topic, w.Payload, qosAtLeastOnce, w.Retained)
	}
	c := paho.NewClient(o)

	token := c.Connect()
	if !token.WaitTimeout(opts.Timeout) {
		c.Disconnect(0)
		return nil, fmt.Errorf("connect %s: %w", opts.BrokerURL, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", opts.BrokerURL, err)
	}

	return &pahoClient{raw: c, timeout: opts.Timeout}, nil
}

func (c *pahoClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	return c.wait(c.raw.Publish(topic, qos, retained, payload))
}

func (c *pahoClient) Subscribe(topic string, qos byte, fn func(topic string, payload []byte)) error {
	return c.wait(c.raw.Subscribe(topic, qos, func(_ paho.Client, m paho.Message) {
		fn(m.Topic(), m.Payload())
	}))
}

func (c *pahoClient) Close() { c.raw.Disconnect(250) }

func (c *pahoClient) wait(t paho.Token) error {
	if !t.WaitTimeout(c.timeout) {
		return ErrTimeout
	}

	return t.Error()
}
