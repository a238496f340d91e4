package statestream

import (
	"github.com/vango-dev/rxstate/internal/errors"
)

// ErrConfiguration matches errors caused by runtime setup: a primitive
// installed twice, used before installation, or not a primitive at all.
//
//	if errors.Is(err, statestream.ErrConfiguration) {
//	    // call Setup first
//	}
var ErrConfiguration error = errors.Kind(errors.CategoryConfiguration)

// ErrValue matches errors caused by bad names: blank stream, emitter or
// method names, duplicate participants in a combination, unknown methods.
var ErrValue error = errors.Kind(errors.CategoryValue)

// ErrType matches errors caused by values of the wrong shape: nil updaters,
// plugins or methods, factories that do not return a stream, participants
// that are not state streams.
var ErrType error = errors.Kind(errors.CategoryType)
