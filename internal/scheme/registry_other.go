//go:build !windows

package scheme

import "fmt"

func newRegistryRegistrar(Options) (Registrar, error) {
	return nil, fmt.Errorf("registry registration is only available on windows")
}
