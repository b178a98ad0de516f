// Package timing is the cycle-time kernel that advances a harness clock by
// clock. Time is counted in whole cycles of the single global clock.
package timing

// VTimeInCycle is a point on the simulated timeline, in clock cycles.
type VTimeInCycle uint64

// Handler processes events of various types. Events are plain data; handlers
// type-switch on them.
type Handler interface {
	Handle(event any) error
}

// TimeTeller exposes the current simulation cycle.
type TimeTeller interface {
	CurrentTime() VTimeInCycle
}

// EventScheduler schedules events in the simulation timeline.
type EventScheduler interface {
	TimeTeller
	Schedule(event ScheduledEvent)
}

// ScheduledEvent is the engine-facing wrapper of a user event.
type ScheduledEvent struct {
	// Event is the payload delivered to the handler.
	Event any

	// Time is the cycle when the event should be processed.
	Time VTimeInCycle

	// Handler is the component that will process this event.
	Handler Handler
}

// An Engine keeps the simulation running.
type Engine interface {
	EventScheduler

	// Run processes events until none is left.
	Run() error
}
