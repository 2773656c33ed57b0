package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/kode4food/caravan/topic"
	"github.com/kode4food/timebox"

	"github.com/agentflow/onboard/internal/config"
	"github.com/agentflow/onboard/internal/events"
	"github.com/agentflow/onboard/pkg/api"
	"github.com/agentflow/onboard/pkg/log"
	"github.com/agentflow/onboard/pkg/wizard"
)

type (
	// Engine drives wizard instances through their step lifecycle. Commands
	// validate against the step registry and raise events, while the event
	// loop keeps the engine aggregate's wizard roster in sync
	Engine struct {
		registry   *wizard.Registry
		ctx        context.Context
		consumer   EventConsumer
		engineExec *EngineExecutor
		wizardExec *WizardExecutor
		config     *config.Config
		cancel     context.CancelFunc
		wg         sync.WaitGroup
		handler    timebox.Handler
	}

	// EventConsumer consumes events from the event hub
	EventConsumer = topic.Consumer[*timebox.Event]

	// EngineExecutor manages engine state persistence and event sourcing
	EngineExecutor = timebox.Executor[*api.EngineState]

	// EngineAggregator aggregates engine state from events
	EngineAggregator = timebox.Aggregator[*api.EngineState]

	// WizardExecutor manages wizard state persistence and event sourcing
	WizardExecutor = timebox.Executor[*api.WizardState]

	// WizardAggregator aggregates wizard state from events
	WizardAggregator = timebox.Aggregator[*api.WizardState]
)

var (
	ErrShutdownTimeout = errors.New("shutdown timeout exceeded")
	ErrWizardNotFound  = errors.New("wizard not found")
	ErrWizardFinished  = errors.New("wizard already finished")
)

// New creates a wizard engine backed by the given stores, registry, event
// hub, and configuration
func New(
	engineStore, wizardStore *timebox.Store, registry *wizard.Registry,
	hub *timebox.EventHub, cfg *config.Config,
) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		engineExec: timebox.NewExecutor(
			engineStore, events.NewEngineState, events.EngineAppliers,
		),
		wizardExec: timebox.NewExecutor(
			wizardStore, events.NewWizardState, events.WizardAppliers,
		),
		registry: registry,
		config:   cfg,
		ctx:      ctx,
		cancel:   cancel,
		consumer: hub.NewConsumer(),
	}
	e.handler = e.createEventHandler()
	return e
}

func (e *Engine) createEventHandler() timebox.Handler {
	const (
		wizardStarted   = timebox.EventType(api.EventTypeWizardStarted)
		wizardCompleted = timebox.EventType(api.EventTypeWizardCompleted)
		wizardArchived  = timebox.EventType(api.EventTypeWizardArchived)
	)

	return timebox.MakeDispatcher(map[timebox.EventType]timebox.Handler{
		wizardStarted:   timebox.MakeHandler(e.handleWizardStarted),
		wizardCompleted: timebox.MakeHandler(e.handleWizardCompleted),
		wizardArchived:  timebox.MakeHandler(e.handleWizardArchived),
	})
}

// Registry returns the step registry the engine validates against
func (e *Engine) Registry() *wizard.Registry {
	return e.registry
}

// Start begins processing wizard lifecycle events
func (e *Engine) Start() {
	slog.Info("Engine starting")

	e.wg.Add(1)
	go e.eventLoop()
}

// Stop gracefully shuts down the engine
func (e *Engine) Stop() error {
	e.cancel()
	defer e.consumer.Close()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.saveEngineSnapshot()
		slog.Info("Engine stopped")
		return nil
	case <-time.After(e.config.ShutdownTimeout):
		return ErrShutdownTimeout
	}
}

// GetEngineState retrieves the engine's roster of active and completed
// wizards
func (e *Engine) GetEngineState(
	ctx context.Context,
) (*api.EngineState, error) {
	return e.engineExec.Exec(ctx, events.EngineID,
		func(st *api.EngineState, ag *EngineAggregator) error {
			return nil
		},
	)
}

// GetEngineStateSeq retrieves engine state and its next event sequence
func (e *Engine) GetEngineStateSeq(
	ctx context.Context,
) (*api.EngineState, int64, error) {
	var seq int64
	st, err := e.engineExec.Exec(ctx, events.EngineID,
		func(st *api.EngineState, ag *EngineAggregator) error {
			seq = ag.NextSequence()
			return nil
		},
	)
	return st, seq, err
}

func (e *Engine) eventLoop() {
	defer e.wg.Done()

	for {
		select {
		case <-e.ctx.Done():
			return

		case event, ok := <-e.consumer.Receive():
			if !ok {
				return
			}
			e.routeEvent(event)
		}
	}
}

func (e *Engine) routeEvent(event *timebox.Event) {
	if !events.IsWizardEvent(event) {
		return
	}
	if err := e.handler(event); err != nil {
		slog.Error("Failed to handle wizard lifecycle event",
			slog.String("event_type", string(event.Type)),
			log.Error(err))
	}
}

func (e *Engine) saveEngineSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.engineExec.SaveSnapshot(ctx, events.EngineID); err != nil {
		slog.Error("Failed to save engine snapshot",
			log.Error(err))
		return
	}
	slog.Info("Engine snapshot saved")
}

func (e *Engine) handleWizardStarted(
	_ *timebox.Event, data api.WizardStartedEvent,
) error {
	return e.raiseEngineEvent(context.Background(),
		api.EventTypeWizardActivated,
		api.WizardActivatedEvent{WizardID: data.WizardID})
}

func (e *Engine) handleWizardCompleted(
	_ *timebox.Event, data api.WizardCompletedEvent,
) error {
	return e.raiseEngineEvent(context.Background(),
		api.EventTypeWizardDeactivated,
		api.WizardDeactivatedEvent{WizardID: data.WizardID})
}

func (e *Engine) handleWizardArchived(
	_ *timebox.Event, data api.WizardArchivedEvent,
) error {
	return e.raiseEngineEvent(context.Background(),
		api.EventTypeWizardArchived, data)
}

func (e *Engine) raiseEngineEvent(
	ctx context.Context, eventType api.EventType, data any,
) error {
	cmd := func(st *api.EngineState, ag *EngineAggregator) error {
		return events.Raise(ag, eventType, data)
	}
	_, err := e.engineExec.Exec(ctx, events.EngineID, cmd)
	return err
}
