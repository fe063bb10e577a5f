// Package async implements a small Future pattern over goroutines.
//
// Async dispatches a synchronous function to its own goroutine and returns
// a Future whose result can be awaited, polled with IsComplete, or awaited
// with a timeout. WaitAll and WaitAny coordinate multiple futures.
//
// Cancelling the awaiting caller does not abort the dispatched function:
// the goroutine runs to completion and the future records its result. Only
// a context that is already cancelled at dispatch time short-circuits.
package async
