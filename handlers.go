package bridge

import (
	"strings"

	"github.com/goliatone/go-auth-bridge/engine"
	"github.com/goliatone/go-router"
)

// Handlers is the pair of method handlers the host application mounts.
// GET and POST share the same logic; the split exists because frameworks
// dispatch by method to separately registered handlers.
type Handlers struct {
	GET  router.HandlerFunc
	POST router.HandlerFunc

	cfg     Config
	engine  *engine.Engine
	initErr error
	logger  Logger
}

type buildOptions struct {
	logger Logger
	env    *Environment
}

// Option configures BuildHandlers.
type Option func(*buildOptions)

// WithLogger overrides the default logger.
func WithLogger(logger Logger) Option {
	return func(o *buildOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEnvironment pins the environment snapshot used during config
// normalization instead of reading the process environment.
func WithEnvironment(env Environment) Option {
	return func(o *buildOptions) {
		o.env = &env
	}
}

// BuildHandlers normalizes the configuration once and returns handlers that
// claim everything under the configured prefix. Requests outside the prefix
// fall through to the next route via ctx.Next.
//
// A missing secret is not a build error: the engine cannot be constructed,
// but out-of-prefix traffic must still fall through, so the failure is held
// and returned only for requests the handlers actually own.
func BuildHandlers(cfg Config, opts ...Option) (*Handlers, error) {
	options := buildOptions{logger: defLogger{}}
	for _, opt := range opts {
		opt(&options)
	}

	var (
		normalized Config
		err        error
	)
	if options.env != nil {
		normalized, err = DefineConfig(cfg, *options.env)
	} else {
		normalized, err = DefineConfig(cfg)
	}
	if err != nil {
		return nil, err
	}

	h := &Handlers{
		cfg:    normalized,
		logger: options.logger,
	}

	eng, err := engine.New(h.cfg.engineConfig())
	if err != nil {
		if !engine.IsMissingSecret(err) {
			return nil, err
		}
		h.initErr = err
	}
	h.engine = eng

	h.GET = h.handle
	h.POST = h.handle

	return h, nil
}

// Config returns the normalized configuration the handlers were built with.
func (h *Handlers) Config() Config {
	return h.cfg
}

func (h *Handlers) handle(ctx router.Context) error {
	if !strings.HasPrefix(ctx.Path(), h.cfg.BasePath) {
		return ctx.Next()
	}

	if h.initErr != nil {
		h.logger.Error("auth request rejected", "error", h.initErr)
		return h.initErr
	}

	return h.engine.Handle(ctx)
}

// Mount registers the handlers on a router under the configured prefix,
// covering the prefix root and everything below it.
func Mount[T any](r router.Router[T], h *Handlers) {
	wildcard := h.cfg.BasePath + "/*"
	r.Get(wildcard, h.GET)
	r.Post(wildcard, h.POST)
}
