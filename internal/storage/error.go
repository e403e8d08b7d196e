package storage

import "errors"

var ErrCorrupt = errors.New("stored value is corrupt")
