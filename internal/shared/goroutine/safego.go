// Package goroutine starts background work that must not take the process
// down with it.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/tourbook/tourbook/internal/shared/logger"
)

// SafeGo runs fn on a new goroutine. A panic in fn is logged with its stack
// and swallowed. The returned channel is closed once fn has returned or
// panicked.
func SafeGo(log logger.Interface, name string, fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("recovered panic in background task",
					"task", name,
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn()
	}()
	return done
}
