//go:build !(windows && 386)

package hostcall

import "github.com/k2io/hostpatch/intercept"

func Bridges() (intercept.Bridges, error) {
	return intercept.Bridges{}, ErrUnsupported
}
