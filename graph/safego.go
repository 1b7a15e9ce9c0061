package graph

import "sync"

// SafeGo runs fn on its own goroutine under wg, recovering any panic via
// onPanic so a single failing node cannot take down the whole parallel
// fan-out.
func SafeGo(wg *sync.WaitGroup, fn func(), onPanic func(panicVal any)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil && onPanic != nil {
				onPanic(r)
			}
		}()
		fn()
	}()
}
