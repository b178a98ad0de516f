package timing

import (
	"fmt"
	"reflect"
)

// SerialEngine processes scheduled events one after another in time order.
type SerialEngine struct {
	now   VTimeInCycle
	queue *scheduledEventQueue
}

// NewSerialEngine creates a SerialEngine.
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{
		queue: newScheduledEventQueue(),
	}
}

// Schedule registers an event to be handled in the future.
func (e *SerialEngine) Schedule(evt ScheduledEvent) {
	if evt.Time < e.now {
		panic(fmt.Sprintf(
			"timing: cannot schedule event in the past, evt %s @ %d, now %d",
			reflect.TypeOf(evt.Event), evt.Time, e.now,
		))
	}

	eventCopy := evt
	e.queue.Push(&eventCopy)
}

// Run processes all scheduled events until the queue drains. The first
// handler error stops the run and is returned.
func (e *SerialEngine) Run() error {
	for e.queue.Len() > 0 {
		evt := e.queue.Pop()
		e.now = evt.Time

		if evt.Handler == nil {
			continue
		}

		if err := evt.Handler.Handle(evt.Event); err != nil {
			return err
		}
	}

	return nil
}

// CurrentTime returns the cycle of the most recently executed event.
func (e *SerialEngine) CurrentTime() VTimeInCycle {
	return e.now
}

var _ Engine = (*SerialEngine)(nil)
