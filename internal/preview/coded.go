package preview

import (
	stderrors "errors"
	"strconv"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
)

// Coded maps runtime errors to their registry codes. Errors that already
// carry a code are returned unchanged.
func Coded(err error) *errors.Error {
	if err == nil {
		return nil
	}
	var coded *errors.Error
	if stderrors.As(err, &coded) {
		return coded
	}

	var effErr *reactive.EffectError
	switch {
	case stderrors.Is(err, reactive.ErrUncomparableTarget):
		return errors.New("R002").Wrap(err)
	case stderrors.Is(err, reactive.ErrWrongGoroutine):
		return errors.New("R003").Wrap(err)
	case stderrors.As(err, &effErr):
		return errors.New("R001").
			WithDetail("Effect " + strconv.FormatUint(effErr.EffectID, 10) + " failed while re-running after a write").
			Wrap(err)
	}
	return errors.New("R001").Wrap(err)
}
