package sim

import (
	"sync"

	"adcpipe/core"
)

// BusChannels is the number of programmable PPI channels on nRF52.
const BusChannels = 20

type route struct {
	event    core.EventID
	task     core.TaskID
	assigned bool
	enabled  bool
}

// Bus simulates the PPI: enabled channels start their task whenever their
// event is signalled.
type Bus struct {
	mu     sync.Mutex
	routes [BusChannels]route
	used   uint32
	tasks  map[core.TaskID]func()
}

// NewBus returns a bus with no tasks attached.
func NewBus() *Bus {
	return &Bus{tasks: make(map[core.TaskID]func())}
}

// Attach registers the function a task endpoint runs.
func (b *Bus) Attach(task core.TaskID, fn func()) {
	b.mu.Lock()
	b.tasks[task] = fn
	b.mu.Unlock()
}

func (b *Bus) Alloc() (core.RouteChannel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := 0; i < BusChannels; i++ {
		if b.used&(1<<i) == 0 {
			b.used |= 1 << i
			return core.RouteChannel(i), nil
		}
	}
	return 0, core.ErrRouteUnavailable
}

func (b *Bus) Assign(ch core.RouteChannel, event core.EventID, task core.TaskID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.allocated(ch) {
		return ErrBadRoute
	}
	if _, ok := b.tasks[task]; !ok {
		return ErrUnknownEndpoint
	}
	r := &b.routes[ch]
	r.event, r.task, r.assigned = event, task, true
	return nil
}

func (b *Bus) Enable(ch core.RouteChannel) {
	b.mu.Lock()
	if b.allocated(ch) && b.routes[ch].assigned {
		b.routes[ch].enabled = true
	}
	b.mu.Unlock()
}

func (b *Bus) Disable(ch core.RouteChannel) {
	b.mu.Lock()
	if b.allocated(ch) {
		b.routes[ch].enabled = false
	}
	b.mu.Unlock()
}

// Enabled reports whether ch is armed.
func (b *Bus) Enabled(ch core.RouteChannel) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.allocated(ch) && b.routes[ch].enabled
}

// Signal fires event: every enabled route listening for it starts its task.
// Tasks run after the bus lock is released.
func (b *Bus) Signal(event core.EventID) {
	var fire [BusChannels]func()
	n := 0
	b.mu.Lock()
	for i := range b.routes {
		r := &b.routes[i]
		if r.enabled && r.event == event {
			fire[n] = b.tasks[r.task]
			n++
		}
	}
	b.mu.Unlock()
	for _, fn := range fire[:n] {
		fn()
	}
}

func (b *Bus) allocated(ch core.RouteChannel) bool {
	return int(ch) < BusChannels && b.used&(1<<ch) != 0
}
