package relay

import "errors"

var ErrNoSnapshot = errors.New("no snapshot for session")
