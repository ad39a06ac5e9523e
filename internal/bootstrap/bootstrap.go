// Package bootstrap binds the content server to a loopback port: the
// preferred port first, then a bounded number of random, never repeated
// candidates.
package bootstrap

import (
	"math/rand"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

const (
	// DefaultHost is the loopback host the content server binds to.
	DefaultHost = "127.0.0.1"
	// DefaultPort is the preferred port.
	DefaultPort = 8013
	// MaxAttempts bounds the random fallback.
	MaxAttempts = 20

	minPort = 1026 // exclusive lower bound 1025
	maxPort = 65535
)

// Starter starts a server listening on host:port.
type Starter interface {
	Start(host string, port int) error
}

// StarterFunc adapts a function to Starter.
type StarterFunc func(host string, port int) error

func (f StarterFunc) Start(host string, port int) error { return f(host, port) }

// Binding is the host and port the content server is reachable on.
// Port is -1 until bound.
type Binding struct {
	mu   sync.RWMutex
	host string
	port int
}

// NewBinding returns an unbound binding.
func NewBinding() *Binding { return &Binding{port: -1} }

// Get returns the bound host and port.
func (b *Binding) Get() (string, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.host, b.port
}

// Bound reports whether set has been called.
func (b *Binding) Bound() bool {
	_, p := b.Get()
	return p != -1
}

// Addr returns host:port, or "" when unbound.
func (b *Binding) Addr() string {
	h, p := b.Get()
	if p == -1 {
		return ""
	}
	return h + ":" + strconv.Itoa(p)
}

// set records the binding. Only the first call has an effect.
func (b *Binding) set(host string, port int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.port != -1 {
		return false
	}
	b.host, b.port = host, port
	return true
}

// Bootstrapper runs the bind sequence once per process.
type Bootstrapper struct {
	Host    string
	Port    int
	Starter Starter
	// Intn returns a value in [0, n). Defaults to math/rand/v2.IntN.
	Intn    func(n int) int
	Logger  zerolog.Logger
	Binding *Binding
}

// Bind starts the server on the preferred port or, failing that, on up to
// MaxAttempts distinct random ports in (1025, 65535]. The returned error
// satisfies IsBindExhausted and unwraps to the last start error. A Binding
// that is already bound fails with ErrAlreadyBound without starting anything.
func (b *Bootstrapper) Bind() (*Binding, error) {
	host := b.Host
	if host == "" {
		host = DefaultHost
	}
	port := b.Port
	if port <= 0 {
		port = DefaultPort
	}
	intn := b.Intn
	if intn == nil {
		intn = rand.Intn
	}
	if b.Binding == nil {
		b.Binding = NewBinding()
	}
	if b.Binding.Bound() {
		return b.Binding, ErrAlreadyBound
	}
	log := b.Logger.With().Str("component", "bootstrap").Str("host", host).Logger()

	err := b.Starter.Start(host, port)
	if err == nil {
		bindAttempts.WithLabelValues("ok").Inc()
		b.Binding.set(host, port)
		log.Info().Int("port", port).Msg("content server bound")
		return b.Binding, nil
	}
	bindAttempts.WithLabelValues("failed").Inc()
	log.Warn().Int("port", port).Err(err).Msg("preferred port unavailable")

	tried := map[int]struct{}{port: {}}
	lastErr := err
	for attempts := 0; attempts < MaxAttempts; {
		candidate := minPort + intn(maxPort-minPort+1)
		if _, seen := tried[candidate]; seen {
			continue
		}
		attempts++
		err := b.Starter.Start(host, candidate)
		if err == nil {
			bindAttempts.WithLabelValues("ok").Inc()
			b.Binding.set(host, candidate)
			log.Info().Int("port", candidate).Int("attempt", attempts).Msg("content server bound")
			return b.Binding, nil
		}
		bindAttempts.WithLabelValues("failed").Inc()
		log.Warn().Int("port", candidate).Int("attempt", attempts).Err(err).Msg("bind attempt failed")
		tried[candidate] = struct{}{}
		lastErr = err
	}
	bindAttempts.WithLabelValues("exhausted").Inc()
	return b.Binding, ErrBindExhausted(MaxAttempts, lastErr)
}
