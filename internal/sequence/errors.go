package sequence

import "errors"

// ErrSlideOutOfRange is returned for a slide index outside the sequence.
var ErrSlideOutOfRange = errors.New("slide index out of range")
