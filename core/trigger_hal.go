package core

// RouteChannel identifies an allocated interconnect channel (a PPI channel on nRF).
type RouteChannel uint8

// RouterDriver is the abstract peripheral-interconnect interface. Once a
// channel is enabled, its event starts its task without CPU involvement.
type RouterDriver interface {
	// Alloc reserves a free channel.
	Alloc() (RouteChannel, error)

	// Assign connects event to task on ch.
	Assign(ch RouteChannel, event EventID, task TaskID) error

	// Enable arms ch.
	Enable(ch RouteChannel)

	// Disable disarms ch.
	Disable(ch RouteChannel)
}
