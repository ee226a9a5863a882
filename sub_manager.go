package revue

import "time"

// rebuildSubscriptions tears down every active subscription, re-evaluates
// the subscriptions contract against the current model, and establishes the
// described tree from scratch. There is no diffing by id: an unchanged
// timer is destroyed and recreated on every state change. That is the
// contract, not an oversight - ids exist for logs only.
func (c *Component[TModel, TMsg]) rebuildSubscriptions() {
	c.disposeSubscriptions()

	if c.subs == nil || c.Phase() != PhaseRunning {
		return
	}
	tree := c.subs(c.state)
	handles := c.establish(tree, nil)

	// Dispose may have run from another goroutine while the tree was being
	// established. Re-check under the lock: storing the fresh handles after
	// Dispose's teardown would leak them.
	c.subMu.Lock()
	if c.Phase() != PhaseRunning {
		c.subMu.Unlock()
		for _, dispose := range handles {
			dispose()
		}
		return
	}
	c.disposers = handles
	c.subMu.Unlock()
}

// disposeSubscriptions tears down the active set. Disposer handles are
// owned by the component and never shared.
func (c *Component[TModel, TMsg]) disposeSubscriptions() {
	c.subMu.Lock()
	handles := c.disposers
	c.disposers = nil
	c.subMu.Unlock()

	for _, dispose := range handles {
		dispose()
	}
}

// establish walks a subscription tree, starts every leaf, and accumulates
// the disposer handles.
func (c *Component[TModel, TMsg]) establish(s Sub[TMsg], acc []func()) []func() {
	switch v := s.(type) {
	case nil:

	case subBatch[TMsg]:
		for _, child := range v.children {
			acc = c.establish(child, acc)
		}

	case everySub[TMsg]:
		c.log.Debug("subscription established", "kind", "every", "id", v.id, "interval", v.interval)
		cancel := c.sched.Every(v.interval, func() {
			c.Dispatch(v.toMsg(time.Now()))
		})
		acc = append(acc, cancel)

	case afterSub[TMsg]:
		c.log.Debug("subscription established", "kind", "after", "id", v.id, "delay", v.delay)
		cancel := c.sched.After(v.delay, func() {
			c.Dispatch(v.msg)
		})
		acc = append(acc, cancel)

	case eventSub[TMsg]:
		if c.bridge == nil {
			c.log.Debug("event subscription skipped: no bridge", "kind", v.kind)
			break
		}
		c.log.Debug("subscription established", "kind", v.kind)
		toMsg := v.toMsg
		unsubscribe := c.bridge.Subscribe(v.kind, func(p EventPayload) {
			// Bridge handlers may fire on any goroutine; marshal onto the
			// owner turn like every other dispatch origin.
			c.sched.Marshal(func() { c.Dispatch(toMsg(p)) })
		})
		if unsubscribe != nil {
			acc = append(acc, unsubscribe)
		}

	case customSub[TMsg]:
		c.log.Debug("subscription established", "kind", "custom", "id", v.id)
		emit := func(msg TMsg) {
			c.sched.Marshal(func() { c.Dispatch(msg) })
		}
		dispose := v.subscribe(emit, c.ctx)
		if dispose != nil {
			acc = append(acc, dispose)
		}
	}
	return acc
}
