package reactive

import "runtime"

// goroutineID returns the numeric ID of the calling goroutine, parsed from
// the header of its stack trace ("goroutine <id> [...").
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}

// checkGoroutine panics with ErrWrongGoroutine when the runtime was created
// with WithGoroutineCheck and is used from another goroutine.
func (rt *Runtime) checkGoroutine() {
	if !rt.confined {
		return
	}
	if goroutineID() != rt.goroutine {
		panic(ErrWrongGoroutine)
	}
}
