package timex

import "time"

var start = time.Now()

// NowMs returns milliseconds elapsed since process start. time.Since reads
// the monotonic clock, so the value never jumps on wall-clock steps. It is
// the default clock source for the task scheduler; tests substitute their
// own.
func NowMs() int64 { return time.Since(start).Milliseconds() }
