package typedctx

import "errors"

// ErrDuplicateKey is the panic payload of Declare when a type already has a
// declared key.
var ErrDuplicateKey = errors.New("typed context key already declared")
