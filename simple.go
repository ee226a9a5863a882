package revue

// Simple is the runtime variant for components with no side effects: no
// commands, no subscriptions, no middleware. Dispatch computes the next
// model, publishes it, and notifies the view hook. A strict behavioral
// subset of Component, with the same single-logical-owner discipline.
type Simple[TModel, TMsg any] struct {
	update func(msg TMsg, model TModel) TModel
	render func()
	state  TModel
}

// NewSimple creates a simple runtime. render may be nil.
func NewSimple[TModel, TMsg any](init func() TModel, update func(msg TMsg, model TModel) TModel, render func()) *Simple[TModel, TMsg] {
	s := &Simple[TModel, TMsg]{
		update: update,
		render: render,
		state:  init(),
	}
	if s.render != nil {
		s.render()
	}
	return s
}

// Dispatch folds one message into the model.
func (s *Simple[TModel, TMsg]) Dispatch(msg TMsg) {
	s.state = s.update(msg, s.state)
	if s.render != nil {
		s.render()
	}
}

// State returns the current model.
func (s *Simple[TModel, TMsg]) State() TModel { return s.state }
