package timing

import (
	"github.com/sarchlab/rvbench/hooking"
)

// TickEvent asks a component to advance its state by one cycle.
type TickEvent struct {
	Time VTimeInCycle
}

// A Ticker is an object that updates states with ticks. Tick reports whether
// the ticker wants to be ticked again next cycle.
type Ticker interface {
	Tick() bool
}

// TickScheduler helps schedule tick events.
type TickScheduler struct {
	handler Handler
	Engine  EventScheduler

	scheduled    bool
	nextTickTime VTimeInCycle
}

// NewTickScheduler creates a scheduler for tick events.
func NewTickScheduler(handler Handler, engine EventScheduler) *TickScheduler {
	return &TickScheduler{
		handler: handler,
		Engine:  engine,
	}
}

// TickNow schedules a tick at the current cycle.
func (t *TickScheduler) TickNow() {
	t.schedule(t.CurrentTime())
}

// TickLater schedules a tick at the cycle after the current one.
func (t *TickScheduler) TickLater() {
	t.schedule(t.CurrentTime() + 1)
}

func (t *TickScheduler) schedule(time VTimeInCycle) {
	if t.scheduled && t.nextTickTime >= time {
		return
	}

	t.scheduled = true
	t.nextTickTime = time
	t.Engine.Schedule(ScheduledEvent{
		Event:   TickEvent{Time: time},
		Time:    time,
		Handler: t.handler,
	})
}

// CurrentTime returns the current cycle of the engine.
func (t *TickScheduler) CurrentTime() VTimeInCycle {
	return t.Engine.CurrentTime()
}

// TickingComponent is a component that updates its state cycle by cycle. A
// programmer only writes the Tick function of the Ticker.
type TickingComponent struct {
	*hooking.HookableBase
	*TickScheduler

	name   string
	ticker Ticker
}

// NewTickingComponent creates a new ticking component.
func NewTickingComponent(
	name string,
	engine EventScheduler,
	ticker Ticker,
) *TickingComponent {
	tc := &TickingComponent{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		ticker:       ticker,
	}
	tc.TickScheduler = NewTickScheduler(tc, engine)

	return tc
}

// Name returns the name of the component.
func (c *TickingComponent) Name() string {
	return c.name
}

// Handle triggers the tick function of the TickingComponent.
func (c *TickingComponent) Handle(e any) error {
	if _, ok := e.(TickEvent); !ok {
		return nil
	}

	madeProgress := c.ticker.Tick()
	if madeProgress {
		c.TickLater()
	}

	return nil
}
