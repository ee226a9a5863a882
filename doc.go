// Package revue is a Model-View-Update runtime for interactive components.
//
// A component owns a single model value and evolves it by folding messages
// through a pure update function:
//
//	update(msg, model) -> (model', cmd)
//
// Side effects never happen inside update. Instead, update returns a Cmd -
// an immutable description of the effects to perform - and the runtime's
// interpreter executes it after the new model has been published. Long-lived
// event sources (timers, environment events, custom feeds) are described the
// same way through Sub values, recomputed from the model after every
// state-changing dispatch.
//
// # Dispatch flow
//
// Each call to Component.Dispatch builds a DispatchContext, runs it through
// the registered middleware chain in registration order, and reaches the core
// step: run update, publish the new model, record it to the time-travel
// debugger (when enabled), notify the view hook, interpret the returned
// command, and rebuild subscriptions if the model changed by value.
//
// Dispatch is reentrant. A command may dispatch synchronously while the outer
// dispatch is still unwinding (OfMsg does exactly that), so no lock is held
// around the dispatch path. The runtime assumes a single logical owner: all
// dispatches are delivered on one goroutine, typically the RunLoop, and
// asynchronous completions marshal back onto it through the Scheduler.
//
// # Lifecycle
//
// A component moves through Uninitialized -> Running -> Disposed. Run applies
// the init contract and establishes the initial subscriptions. Dispose cancels
// the shared context once, tears down every live subscription, and turns all
// further dispatches into silent no-ops. Dispose is idempotent.
package revue
