package driver

import "sync/atomic"

// Token is a cooperative cancellation flag scoped to one run. It only
// prevents the next unit from starting: an already-submitted unit's poll
// session runs to completion regardless
type Token struct {
	flag atomic.Bool
}

func (t *Token) Cancel() {
	t.flag.Store(true)
}

func (t *Token) Cancelled() bool {
	return t.flag.Load()
}
