package region

import "fmt"

// ByName resolves a provider from its configuration name: "heap" or "mmap".
// An empty name selects Default (mmap on unix, heap elsewhere).
func ByName(name string) (Provider, error) {
	switch name {
	case "":
		return Default, nil
	case "heap":
		return Heap{}, nil
	case "mmap":
		return Mmap{}, nil
	default:
		return nil, fmt.Errorf("region: unknown provider %q", name)
	}
}
