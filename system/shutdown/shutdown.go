package shutdown

import (
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	mu    sync.Mutex
	hooks []func()
	exit  = os.Exit
)

// OnShutdown registers a cleanup step. Steps run in reverse registration order.
func OnShutdown(fn func()) {
	mu.Lock()
	defer mu.Unlock()
	hooks = append(hooks, fn)
}

func Shutdown() {
	runHooks()
	log.Info().Msg("Replay stopped")
	exit(0)
}

func ShutdownWithError(err error, msg string) {
	log.Error().Err(err).Msg(msg)
	runHooks()
	exit(1)
}

func runHooks() {
	mu.Lock()
	pending := hooks
	hooks = nil
	mu.Unlock()

	for i := len(pending) - 1; i >= 0; i-- {
		pending[i]()
	}
}
