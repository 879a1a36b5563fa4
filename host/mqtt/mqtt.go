// Package mqtt forwards decoded bursts from the trace monitor to an MQTT
// broker, one JSON message per completed buffer.
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"adcpipe/config"
	"adcpipe/core"
	"adcpipe/host/monitor"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/conn/v3/physic"
)

const (
	DefaultServer   = "tcp://localhost:1883"
	DefaultClientID = "adcmon"
	DefaultTopic    = "adcpipe/burst"
)

var ErrNotConnected = errors.New("mqtt client not connected")

// Config holds broker settings.
type Config struct {
	Server   string
	ClientID string
	Topic    string
	Username string
	Password string
}

// DefaultConfig returns settings for a local broker.
func DefaultConfig() Config {
	return Config{Server: DefaultServer, ClientID: DefaultClientID, Topic: DefaultTopic}
}

// client is the part of mqtt.Client the publisher uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher sends bursts to a broker.
type Publisher struct {
	client   client
	topic    string
	channels []core.ChannelConfig
	vdd      physic.ElectricPotential
}

// ChannelReading is one channel of the newest round-robin burst.
type ChannelReading struct {
	Channel int     `json:"channel"`
	Input   string  `json:"input,omitempty"`
	Raw     int16   `json:"raw"`
	Voltage float64 `json:"voltage,omitempty"`
}

// Message is the JSON payload of one burst.
type Message struct {
	Sequence uint32           `json:"sequence"`
	Missed   uint32           `json:"missed"`
	Samples  uint16           `json:"samples"`
	Readings []ChannelReading `json:"readings"`
}

// Connect dials the broker. appCfg may be nil, in which case only raw
// values are published.
func Connect(cfg Config, appCfg *config.Config) (*Publisher, error) {
	opts := mqtt.NewClientOptions().AddBroker(cfg.Server).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	c := mqtt.NewClient(opts)
	token := c.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return newPublisher(c, cfg.Topic, appCfg)
}

func newPublisher(c client, topic string, appCfg *config.Config) (*Publisher, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	p := &Publisher{client: c, topic: topic}
	if appCfg != nil {
		channels, err := appCfg.CoreChannels()
		if err != nil {
			return nil, err
		}
		p.channels = channels
		p.vdd = appCfg.VDD()
	}
	return p, nil
}

// Message builds the payload for ev from the last complete burst the
// frame carries.
func (p *Publisher) Message(ev monitor.Event) Message {
	f := &ev.Frame
	msg := Message{Sequence: f.Sequence, Missed: ev.Missed, Samples: f.Total}
	n := int(f.Channels)
	carried := f.Carried()
	if n == 0 || len(carried) < n {
		return msg
	}
	last := carried[len(carried)/n*n-n:][:n]
	for ch, raw := range last {
		r := ChannelReading{Channel: ch, Raw: raw}
		if ch < len(p.channels) {
			c := p.channels[ch]
			r.Input = strings.ToLower(c.Input.String())
			r.Voltage = float64(c.Voltage(core.Sample(raw), p.vdd)) / float64(physic.Volt)
		}
		msg.Readings = append(msg.Readings, r)
	}
	return msg
}

// Publish sends ev and waits for the broker to accept it.
func (p *Publisher) Publish(ev monitor.Event) error {
	if p.client == nil {
		return ErrNotConnected
	}
	b, err := json.Marshal(p.Message(ev))
	if err != nil {
		return err
	}
	token := p.client.Publish(p.topic, 0, false, b)
	token.Wait()
	return token.Error()
}

// Close disconnects, giving in-flight messages 250ms.
func (p *Publisher) Close() error {
	if p.client != nil {
		p.client.Disconnect(250)
	}
	return nil
}
