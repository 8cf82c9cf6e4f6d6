// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
)

// exchangeContext owns the context that in-flight exchanges run under.
// It is shared by pointer so value copies of Model cancel the same work.
type exchangeContext struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func newExchangeContext() *exchangeContext {
	ctx, cancel := context.WithCancel(context.Background())
	return &exchangeContext{ctx: ctx, cancel: cancel}
}

// current returns the context for a new exchange.
func (e *exchangeContext) current() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx
}

// cancelAll aborts every exchange still in flight.
func (e *exchangeContext) cancelAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}
