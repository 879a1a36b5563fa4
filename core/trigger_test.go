package core

import (
	"errors"
	"testing"
)

func TestRouterConnectEnable(t *testing.T) {
	drv := &mockRouter{free: 2}
	r := NewRouter(drv)

	if err := r.Enable(); !errors.Is(err, ErrRouteNotConnected) {
		t.Errorf("Expected ErrRouteNotConnected, got %v", err)
	}
	if err := r.Connect(0x100, 0x200); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if drv.event != 0x100 || drv.task != 0x200 {
		t.Errorf("Expected 0x100 -> 0x200, got %#x -> %#x", drv.event, drv.task)
	}
	if err := r.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if !drv.enabled || !r.Armed() {
		t.Error("Expected route armed")
	}

	// Reconnecting reuses the allocated channel.
	if err := r.Connect(0x104, 0x200); err != nil {
		t.Fatalf("reconnect failed: %v", err)
	}
	if drv.allocs != 1 {
		t.Errorf("Expected 1 allocation, got %d", drv.allocs)
	}

	r.Disable()
	if drv.enabled || r.Armed() {
		t.Error("Expected route disarmed")
	}
}

func TestRouterNoFreeChannel(t *testing.T) {
	r := NewRouter(&mockRouter{})
	if err := r.Connect(1, 2); !errors.Is(err, ErrRouteUnavailable) {
		t.Errorf("Expected ErrRouteUnavailable, got %v", err)
	}
	if _, ok := r.Channel(); ok {
		t.Error("Router reports a channel after failed allocation")
	}
}
