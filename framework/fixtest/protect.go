package fixtest

import (
	"fmt"
	"runtime/debug"
)

// runProtected invokes a constructor or teardown callback, converting an
// abnormal termination into an ordinary error instead of letting it unwind into
// the run driver.
func runProtected(action func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return action()
}

func panicError(r interface{}) error {
	switch v := r.(type) {
	case error:
		return v
	case string:
		return fmt.Errorf("%s", v)
	default:
		return fmt.Errorf("panic: %+v\n%s", r, string(debug.Stack()))
	}
}
