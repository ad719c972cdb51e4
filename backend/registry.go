package backend

import (
	"os"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const (
	// BackendEnv is the name of the environment variable that selects the backend returned by Default.
	BackendEnv = "TFHECUDA_BACKEND"

	// CUDABackend is the name under which the native binding registers itself.
	CUDABackend = "cuda"

	// EmulatorBackend is the name under which the host-memory emulator registers itself.
	EmulatorBackend = "emulator"
)

// Constructor creates a backend. It is called at most once per registered name.
type Constructor func() (Backend, error)

var (
	// constructors and loadedBackends are protected by muBackends.
	constructors   = make(map[string]Constructor)
	loadedBackends = make(map[string]Backend)
	muBackends     sync.Mutex
)

// Register a backend constructor under the given name. Typically called from the init function of the package
// implementing it.
//
// Registering a name twice replaces the previous constructor, and drops the backend already created with it.
func Register(name string, constructor Constructor) {
	muBackends.Lock()
	defer muBackends.Unlock()
	if _, found := constructors[name]; found {
		klog.Warningf("backend %q registered more than once, the last one is used", name)
		delete(loadedBackends, name)
	}
	constructors[name] = constructor
}

// Registered returns the sorted names of the registered backends.
func Registered() []string {
	muBackends.Lock()
	defer muBackends.Unlock()
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get returns the backend registered under name, creating it the first time it is requested.
//
// Backends are singletons: Get returns the same object for every call with the same name.
// It is safe to call from different goroutines.
func Get(name string) (Backend, error) {
	muBackends.Lock()
	defer muBackends.Unlock()
	if b, found := loadedBackends[name]; found {
		return b, nil
	}
	constructor, found := constructors[name]
	if !found {
		return nil, errors.Errorf("backend %q not registered, registered backends are %v", name, sortedKeys(constructors))
	}
	klog.V(1).Infof("creating backend %q", name)
	b, err := constructor()
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create backend %q", name)
	}
	loadedBackends[name] = b
	return b, nil
}

// Default returns the backend selected by the environment variable TFHECUDA_BACKEND (see BackendEnv).
//
// If it is not set, it returns the "cuda" backend if it was compiled in, otherwise the "emulator" backend.
// The packages implementing the backends must have been imported (usually with `import _ "..."`) for them to be
// registered.
func Default() (Backend, error) {
	if name, found := os.LookupEnv(BackendEnv); found && name != "" {
		return Get(name)
	}
	muBackends.Lock()
	_, hasCUDA := constructors[CUDABackend]
	_, hasEmulator := constructors[EmulatorBackend]
	muBackends.Unlock()
	switch {
	case hasCUDA:
		return Get(CUDABackend)
	case hasEmulator:
		return Get(EmulatorBackend)
	}
	return nil, errors.Errorf("no default backend available: set %s to one of the registered backends %v, "+
		"or import the \"cuda\" (github.com/gomlx/tfhecuda/backend/cudalib) or \"emulator\" "+
		"(github.com/gomlx/tfhecuda/backend/emulator) backends", BackendEnv, Registered())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
