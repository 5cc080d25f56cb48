package menu

import (
	"sync"

	"github.com/rehber360/rehber360-desktop/internal/events"
	"github.com/rehber360/rehber360-desktop/internal/logging"
)

// Dispatcher runs menu actions. Shell actions go to registered handlers;
// everything else is published on the bus for the renderer.
type Dispatcher struct {
	bus    *events.EventBus
	logger *logging.Logger

	mu       sync.RWMutex
	handlers map[string]func()
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(bus *events.EventBus, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Dispatcher{
		bus:      bus,
		logger:   logger,
		handlers: make(map[string]func()),
	}
}

// Handle registers fn for action, replacing any previous handler.
func (d *Dispatcher) Handle(action string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[action] = fn
}

func (d *Dispatcher) handler(action string) func() {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.handlers[action]
}

// Activate runs the item: shows the window if requested, then navigates or
// dispatches its action.
func (d *Dispatcher) Activate(item Item) {
	if item.ShowWindow && item.Action != ActionShow {
		d.Dispatch(ActionShow)
	}
	if item.Path != "" {
		d.Navigate(item.Path)
		return
	}
	if item.Action != "" {
		d.Dispatch(item.Action)
	}
}

// Dispatch runs action by id.
func (d *Dispatcher) Dispatch(action string) {
	if fn := d.handler(action); fn != nil {
		d.logger.Debugf("Menu: %s", action)
		fn()
		return
	}
	if !IsRendererAction(action) {
		d.logger.Warnf("Menu action %q has no handler", action)
		return
	}
	d.logger.Debugf("Menu: %s forwarded to renderer", action)
	d.bus.PublishMenuAction(action, "")
}

// Navigate asks the renderer to route to path.
func (d *Dispatcher) Navigate(path string) {
	d.logger.Debugf("Menu: navigate to %s", path)
	d.bus.PublishNavigate(path)
}
