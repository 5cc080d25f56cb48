package desktop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/events"
	"github.com/rehber360/rehber360-desktop/internal/logging"
)

// EmitFunc delivers one event to the renderer.
type EmitFunc func(name string, payload any)

// EventBridge forwards events from the internal EventBus to the renderer.
type EventBridge struct {
	eventBus     *events.EventBus
	subscription <-chan events.Event
	emit         EmitFunc
	logger       *logging.Logger

	// Throttling for download progress
	lastProgress     map[string]time.Time
	progressInterval time.Duration

	stopC   chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewEventBridge creates a bridge that emits through the Wails runtime.
func NewEventBridge(ctx context.Context, eventBus *events.EventBus, logger *logging.Logger) *EventBridge {
	return newEventBridge(eventBus, func(name string, payload any) {
		if payload == nil {
			runtime.EventsEmit(ctx, name)
			return
		}
		runtime.EventsEmit(ctx, name, payload)
	}, logger)
}

func newEventBridge(eventBus *events.EventBus, emit EmitFunc, logger *logging.Logger) *EventBridge {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &EventBridge{
		eventBus:         eventBus,
		emit:             emit,
		logger:           logger,
		lastProgress:     make(map[string]time.Time),
		progressInterval: constants.EventThrottleInterval,
		stopC:            make(chan struct{}),
	}
}

// Start begins forwarding events.
func (eb *EventBridge) Start() error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.started {
		eb.logger.Warn().Msg("Event bridge already started, ignoring duplicate Start()")
		return nil
	}

	eb.subscription = eb.eventBus.SubscribeAll()
	if eb.subscription == nil {
		return fmt.Errorf("event bridge: failed to subscribe to event bus")
	}

	eb.started = true
	eb.wg.Add(1)
	go eb.forwardLoop()

	eb.logger.Debug().Msg("Event bridge started")
	return nil
}

// Stop stops forwarding events.
func (eb *EventBridge) Stop() {
	eb.mu.Lock()
	if !eb.started {
		eb.mu.Unlock()
		return
	}
	eb.started = false
	eb.lastProgress = make(map[string]time.Time)
	sub := eb.subscription
	eb.mu.Unlock()

	close(eb.stopC)
	eb.wg.Wait()
	eb.eventBus.UnsubscribeAll(sub)

	eb.logger.Debug().Msg("Event bridge stopped")
}

func (eb *EventBridge) forwardLoop() {
	defer eb.wg.Done()

	for {
		select {
		case event, ok := <-eb.subscription:
			if !ok {
				return
			}
			eb.forwardEvent(event)

		case <-eb.stopC:
			return
		}
	}
}

func (eb *EventBridge) forwardEvent(event events.Event) {
	name, payload, ok := events.RendererEvent(event)
	if !ok {
		return
	}

	// Only progress is throttled. Terminal update states always reach the UI.
	if event.Type() == events.EventUpdateProgress && eb.shouldThrottle(name) {
		if u, isUpdate := event.(*events.UpdateEvent); !isUpdate || u.Percent < 100 {
			return
		}
	}
	eb.emit(name, payload)
}

func (eb *EventBridge) shouldThrottle(key string) bool {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	now := time.Now()
	if last, ok := eb.lastProgress[key]; ok {
		if now.Sub(last) < eb.progressInterval {
			return true
		}
	}
	eb.lastProgress[key] = now
	return false
}
