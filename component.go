package revue

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/roach88/revue/history"
)

// Phase is a component's lifecycle state.
type Phase int32

const (
	PhaseUninitialized Phase = iota
	PhaseRunning
	PhaseDisposed
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseRunning:
		return "running"
	case PhaseDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Init computes the initial model and the command to interpret on startup.
type Init[TModel, TMsg any] func() (TModel, Cmd[TMsg])

// Update is the pure reducer: next model and command from a message and the
// current model. Calling it must have no observable side effect by itself.
type Update[TModel, TMsg any] func(msg TMsg, model TModel) (TModel, Cmd[TMsg])

// Subscriptions describes the long-lived listeners the model wants active.
type Subscriptions[TModel, TMsg any] func(model TModel) Sub[TMsg]

// Config holds the recognized runtime options in plain-data form, the shape
// configuration files and environment variables map onto.
type Config struct {
	// EnableTimeTravel activates the history debugger.
	EnableTimeTravel bool `mapstructure:"enable_time_travel"`

	// TimeTravelMaxHistory bounds the debugger's entry log.
	// Zero means history.DefaultMaxEntries.
	TimeTravelMaxHistory int `mapstructure:"time_travel_max_history"`
}

// Component is the runtime for one MVU instance. It owns the current model,
// the active subscription set, the middleware chain, and (optionally) the
// time-travel debugger.
//
// The model is NOT guarded by a mutex. All dispatches must be delivered by
// one logical owner - in practice the goroutine running the component's
// RunLoop - and asynchronous completions marshal back onto it through the
// Scheduler. Cross-goroutine mutation is out of contract. Dispose is the
// only method safe to call from any goroutine.
type Component[TModel, TMsg any] struct {
	id     string
	init   Init[TModel, TMsg]
	update Update[TModel, TMsg]
	subs   Subscriptions[TModel, TMsg]
	equals func(a, b TModel) bool
	chain  []Middleware[TModel, TMsg]
	sched  Scheduler
	bridge EventBridge
	render func()
	onErr  func(error)
	log    *slog.Logger
	clock  *Clock

	debugger *history.Debugger[TModel, TMsg]

	phase  atomic.Int32
	ctx    context.Context
	cancel context.CancelFunc
	state  TModel

	// subMu guards disposers only: Dispose may run off-turn while the owner
	// turn is mid-rebuild. Everything else stays single-owner.
	subMu       sync.Mutex
	disposers   []func()
	disposeOnce sync.Once
}

// Option configures a Component at construction time.
type Option[TModel, TMsg any] func(*Component[TModel, TMsg])

// WithSubscriptions registers the subscriptions contract. Without it the
// component never establishes listeners.
func WithSubscriptions[TModel, TMsg any](subs Subscriptions[TModel, TMsg]) Option[TModel, TMsg] {
	return func(c *Component[TModel, TMsg]) { c.subs = subs }
}

// WithMiddleware appends middlewares to the dispatch chain in registration
// order; the first registered is outermost.
func WithMiddleware[TModel, TMsg any](mws ...Middleware[TModel, TMsg]) Option[TModel, TMsg] {
	return func(c *Component[TModel, TMsg]) { c.chain = append(c.chain, mws...) }
}

// WithScheduler sets the host scheduler bridge. Default: Immediate.
func WithScheduler[TModel, TMsg any](sched Scheduler) Option[TModel, TMsg] {
	return func(c *Component[TModel, TMsg]) { c.sched = sched }
}

// WithEventBridge connects the named environment event subscriptions to a
// host bridge. Without one, named event subscriptions establish as no-ops.
func WithEventBridge[TModel, TMsg any](bridge EventBridge) Option[TModel, TMsg] {
	return func(c *Component[TModel, TMsg]) { c.bridge = bridge }
}

// WithEquals overrides the model value-equality test used to decide whether
// subscriptions need rebuilding. Default: reflect.DeepEqual.
func WithEquals[TModel, TMsg any](equals func(a, b TModel) bool) Option[TModel, TMsg] {
	return func(c *Component[TModel, TMsg]) { c.equals = equals }
}

// WithRender sets the view notification hook, invoked after every state
// publish.
func WithRender[TModel, TMsg any](render func()) Option[TModel, TMsg] {
	return func(c *Component[TModel, TMsg]) { c.render = render }
}

// WithOnError sets the unhandled-error hook for asynchronous task failures
// that are not wrapped into a Result. The default panics, letting the
// failure escape to the host.
func WithOnError[TModel, TMsg any](onErr func(error)) Option[TModel, TMsg] {
	return func(c *Component[TModel, TMsg]) { c.onErr = onErr }
}

// WithLogger sets the component's structured logger. Default: slog.Default.
func WithLogger[TModel, TMsg any](log *slog.Logger) Option[TModel, TMsg] {
	return func(c *Component[TModel, TMsg]) { c.log = log }
}

// WithTimeTravel enables the history debugger with the given capacity.
// Non-positive means history.DefaultMaxEntries.
func WithTimeTravel[TModel, TMsg any](maxHistory int) Option[TModel, TMsg] {
	return func(c *Component[TModel, TMsg]) {
		c.debugger = history.New[TModel, TMsg](maxHistory)
	}
}

// WithConfig applies a plain-data Config.
func WithConfig[TModel, TMsg any](cfg Config) Option[TModel, TMsg] {
	return func(c *Component[TModel, TMsg]) {
		if cfg.EnableTimeTravel {
			c.debugger = history.New[TModel, TMsg](cfg.TimeTravelMaxHistory)
		}
	}
}

// New creates a component in the Uninitialized phase. init and update are
// required; everything else is optional.
func New[TModel, TMsg any](init Init[TModel, TMsg], update Update[TModel, TMsg], opts ...Option[TModel, TMsg]) *Component[TModel, TMsg] {
	c := &Component[TModel, TMsg]{
		id:     uuid.Must(uuid.NewV7()).String(),
		init:   init,
		update: update,
		equals: func(a, b TModel) bool { return reflect.DeepEqual(a, b) },
		sched:  Immediate(),
		log:    slog.Default(),
		clock:  NewClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", c.id)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	if c.onErr == nil {
		log := c.log
		c.onErr = func(err error) {
			log.Error("unhandled task error", "error", err)
			panic(err)
		}
	}
	return c
}

// ID returns the component's instance identifier, stamped on its logs.
func (c *Component[TModel, TMsg]) ID() string { return c.id }

// Phase returns the current lifecycle phase.
func (c *Component[TModel, TMsg]) Phase() Phase {
	return Phase(c.phase.Load())
}

// State returns the current published model snapshot.
func (c *Component[TModel, TMsg]) State() TModel { return c.state }

// History returns the time-travel debugger, or nil when disabled.
func (c *Component[TModel, TMsg]) History() *history.Debugger[TModel, TMsg] {
	return c.debugger
}

// Run moves the component from Uninitialized to Running: it computes the
// initial model and command, publishes the model, records it as the
// debugger's initial entry, interprets the init command, and establishes
// the initial subscription set. Must be called on the owner turn.
func (c *Component[TModel, TMsg]) Run() error {
	if !c.phase.CompareAndSwap(int32(PhaseUninitialized), int32(PhaseRunning)) {
		return fmt.Errorf("component %s: run in phase %s", c.id, c.Phase())
	}

	state, cmd := c.init()
	c.state = state
	if c.debugger != nil {
		c.debugger.RecordInitial(state)
	}
	c.notifyRender()

	c.log.Info("component running")
	c.execCmd(cmd)
	c.rebuildSubscriptions()
	return nil
}

// Dispatch feeds one message into the runtime. No-op once Disposed (and
// before Run). Reentrant: commands and subscription callbacks may call
// Dispatch again before the outer call returns; each nested call runs the
// reducer against whatever model is published at the moment it executes.
func (c *Component[TModel, TMsg]) Dispatch(msg TMsg) {
	if Phase(c.phase.Load()) != PhaseRunning {
		c.log.Debug("dispatch ignored", "phase", c.Phase())
		return
	}

	d := &DispatchContext[TModel, TMsg]{
		Msg:      msg,
		State:    c.state,
		Previous: c.state,
		Seq:      c.clock.Next(),
	}
	runChain(c.chain, d, func() { c.step(d) })
}

// step is the innermost stage of the dispatch pipeline.
func (c *Component[TModel, TMsg]) step(d *DispatchContext[TModel, TMsg]) {
	prev := c.state

	next, cmd := c.update(d.Msg, c.state)
	c.state = next
	d.Previous = prev
	d.State = next

	if c.debugger != nil {
		// Dispatching while rewound resumes the timeline: forward entries
		// are truncated and recording continues from the cursor.
		c.debugger.Resume()
		c.debugger.Record(next, &d.Msg)
	}

	c.notifyRender()
	c.execCmd(cmd)

	// Compare against the published model, not d.State: a reentrant
	// dispatch inside execCmd may already have advanced it.
	if !c.equals(c.state, prev) {
		c.rebuildSubscriptions()
	}
}

// TravelTo jumps the debugger cursor to index and republishes that entry's
// state to the view hook. No reducer step runs, no command is interpreted,
// and subscriptions are not rebuilt. The next Dispatch truncates forward
// history and resumes live recording.
func (c *Component[TModel, TMsg]) TravelTo(index int) error {
	if c.debugger == nil {
		return fmt.Errorf("component %s: time travel not enabled", c.id)
	}
	if err := c.debugger.GoTo(index); err != nil {
		return err
	}
	c.republish()
	return nil
}

// TravelBack steps the debugger cursor one entry back and republishes.
// Returns false at the oldest entry.
func (c *Component[TModel, TMsg]) TravelBack() bool {
	if c.debugger == nil || !c.debugger.GoBack() {
		return false
	}
	c.republish()
	return true
}

// TravelForward steps the debugger cursor one entry forward and
// republishes. Returns false at the newest entry.
func (c *Component[TModel, TMsg]) TravelForward() bool {
	if c.debugger == nil || !c.debugger.GoForward() {
		return false
	}
	c.republish()
	return true
}

// ResumeLive truncates forward history at the cursor and resumes recording
// from the currently published state.
func (c *Component[TModel, TMsg]) ResumeLive() {
	if c.debugger == nil {
		return
	}
	c.debugger.Resume()
	c.republish()
}

func (c *Component[TModel, TMsg]) republish() {
	if c.debugger.Len() == 0 {
		return
	}
	c.state = c.debugger.Current().State
	c.notifyRender()
}

// Dispose moves the component to the terminal Disposed phase: the shared
// cancellation context is cancelled once, causing every in-flight task and
// timer to take its silent cancelled branch; all subscription handles are
// disposed; further Dispatch calls are ignored. Idempotent, and safe to
// call from any goroutine.
func (c *Component[TModel, TMsg]) Dispose() {
	c.disposeOnce.Do(func() {
		c.phase.Store(int32(PhaseDisposed))
		c.cancel()
		c.disposeSubscriptions()
		c.log.Info("component disposed")
	})
}

func (c *Component[TModel, TMsg]) notifyRender() {
	if c.render != nil {
		c.render()
	}
}

func (c *Component[TModel, TMsg]) execCmd(cmd Cmd[TMsg]) {
	execCmd(c.ctx, c.sched, cmd, c.Dispatch, c.onErr)
}
