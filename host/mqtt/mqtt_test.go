package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"adcpipe/config"
	"adcpipe/host/monitor"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	sent         []published
	err          error
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic: topic, payload: payload.([]byte)})
	return &fakeToken{err: c.err}
}

func (c *fakeClient) Disconnect(quiesce uint) { c.disconnected = true }

func scanEvent() monitor.Event {
	ev := monitor.Event{Missed: 1}
	ev.Frame.Sequence = 41
	ev.Frame.Channels = 3
	ev.Frame.Total = 6
	ev.Frame.Count = 6
	copy(ev.Frame.Samples[:], []int16{1, 2, 3, 512, 256, 128})
	return ev
}

func TestPublishBurst(t *testing.T) {
	fc := &fakeClient{}
	p, err := newPublisher(fc, "", config.TimerScanConfig())
	if err != nil {
		t.Fatalf("newPublisher failed: %v", err)
	}

	if err := p.Publish(scanEvent()); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(fc.sent) != 1 || fc.sent[0].topic != DefaultTopic {
		t.Fatalf("Unexpected publishes: %+v", fc.sent)
	}

	var msg Message
	if err := json.Unmarshal(fc.sent[0].payload, &msg); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if msg.Sequence != 41 || msg.Missed != 1 || msg.Samples != 6 {
		t.Errorf("Unexpected header: %+v", msg)
	}
	if len(msg.Readings) != 3 {
		t.Fatalf("Expected 3 readings, got %d", len(msg.Readings))
	}
	r := msg.Readings[0]
	if r.Input != "ain2" || r.Raw != 512 || r.Voltage != 0.9 {
		t.Errorf("Unexpected reading: %+v", r)
	}

	p.Close()
	if !fc.disconnected {
		t.Error("Close did not disconnect")
	}
}

func TestMessageRawOnly(t *testing.T) {
	p, _ := newPublisher(&fakeClient{}, "bench/adc", nil)
	msg := p.Message(scanEvent())
	if len(msg.Readings) != 3 || msg.Readings[2].Raw != 128 || msg.Readings[2].Input != "" {
		t.Errorf("Unexpected raw readings: %+v", msg.Readings)
	}
	if p.topic != "bench/adc" {
		t.Errorf("Expected topic bench/adc, got %s", p.topic)
	}
}

func TestMessagePartialBurst(t *testing.T) {
	p, _ := newPublisher(&fakeClient{}, "", nil)
	ev := scanEvent()
	ev.Frame.Count = 5 // truncated mid-burst
	msg := p.Message(ev)
	if len(msg.Readings) != 3 || msg.Readings[0].Raw != 1 {
		t.Errorf("Expected the last complete burst, got %+v", msg.Readings)
	}
}

func TestPublishError(t *testing.T) {
	fc := &fakeClient{err: errors.New("broker gone")}
	p, _ := newPublisher(fc, "", nil)
	if err := p.Publish(scanEvent()); err == nil {
		t.Error("Expected publish error")
	}
}
