package preview

import (
	"context"
	"fmt"
	"sync"

	"github.com/vango-dev/reactor/internal/errors"
)

// Executor runs functions one at a time on a single goroutine. A reactive
// runtime created inside Do is confined to that goroutine, so every read
// and write of it must also go through Do.
type Executor struct {
	fns       chan func()
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewExecutor creates an executor with room for queue pending calls and
// starts its goroutine.
func NewExecutor(queue int) *Executor {
	if queue <= 0 {
		queue = 64
	}
	x := &Executor{
		fns:  make(chan func(), queue),
		done: make(chan struct{}),
	}
	x.wg.Add(1)
	go x.loop()
	return x
}

func (x *Executor) loop() {
	defer x.wg.Done()
	for {
		select {
		case fn := <-x.fns:
			fn()
		case <-x.done:
			return
		}
	}
}

// Do runs fn on the executor goroutine and waits for its result. A panic
// in fn is returned as an error. Do returns early when ctx is done; fn may
// still run afterwards.
func (x *Executor) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	call := func() {
		defer func() {
			if r := recover(); r != nil {
				result <- recovered(r)
			}
		}()
		result <- fn()
	}

	select {
	case <-x.done:
		return errors.New("S003")
	default:
	}

	select {
	case x.fns <- call:
	case <-x.done:
		return errors.New("S003")
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-x.done:
		return errors.New("S003")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the executor goroutine and waits for the running call, if
// any, to finish. Queued calls are dropped.
func (x *Executor) Close() {
	x.closeOnce.Do(func() {
		close(x.done)
	})
	x.wg.Wait()
}

func recovered(r any) error {
	if err, ok := r.(error); ok {
		return Coded(err)
	}
	return errors.New("R001").Wrap(fmt.Errorf("panic: %v", r))
}
