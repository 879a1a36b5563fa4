package core

// Router maps exactly one time base event to exactly one conversion task.
//
// Enable must only be called once the channel set and the first sample buffer
// are configured. Pipeline is the only caller and does so in order; nothing
// is checked at run time.
type Router struct {
	drv       RouterDriver
	ch        RouteChannel
	event     EventID
	task      TaskID
	connected bool
	armed     bool
}

// NewRouter wraps an interconnect driver.
func NewRouter(drv RouterDriver) *Router {
	return &Router{drv: drv}
}

// Connect allocates a channel and assigns event to task. A router connects
// one pair only; a second call reassigns the same channel.
func (r *Router) Connect(event EventID, task TaskID) error {
	if !r.connected {
		ch, err := r.drv.Alloc()
		if err != nil {
			return err
		}
		r.ch = ch
	}
	if err := r.drv.Assign(r.ch, event, task); err != nil {
		return err
	}
	r.event, r.task = event, task
	r.connected = true
	return nil
}

// Enable arms the route.
func (r *Router) Enable() error {
	if !r.connected {
		return ErrRouteNotConnected
	}
	r.drv.Enable(r.ch)
	r.armed = true
	return nil
}

// Disable disarms the route. Triggers stop reaching the converter.
func (r *Router) Disable() {
	if !r.connected {
		return
	}
	r.drv.Disable(r.ch)
	r.armed = false
}

// Armed reports whether the route is enabled.
func (r *Router) Armed() bool {
	return r.armed
}

// Channel returns the allocated channel.
func (r *Router) Channel() (RouteChannel, bool) {
	return r.ch, r.connected
}
