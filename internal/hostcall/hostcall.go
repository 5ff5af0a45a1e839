// Package hostcall moves calls across the host's cdecl boundary: Call turns
// a host routine address into a Go func, Export turns a Go func into an
// entry point the host can jump to.
package hostcall

import "errors"

// ErrUnsupported means the host ABI cannot be reached from this build.
var ErrUnsupported = errors.New("hostcall: host ABI needs windows/386")
