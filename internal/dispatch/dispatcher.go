package dispatch

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/command"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrDuplicateCommand = errors.New("command registered by more than one router")
)

// ParseFunc turns a raw payload into a queue request. It performs shape
// validation only; anything that needs scene state is checked at apply time.
type ParseFunc func(payload json.RawMessage) (command.Request, error)

// Router groups the commands of one domain.
type Router struct {
	name     string
	handlers map[string]ParseFunc
	order    []string
}

func NewRouter(name string) *Router {
	return &Router{name: name, handlers: make(map[string]ParseFunc)}
}

func (r *Router) Name() string { return r.name }

// Handle maps a command name to its parser.
func (r *Router) Handle(cmd string, fn ParseFunc) {
	if _, exists := r.handlers[cmd]; !exists {
		r.order = append(r.order, cmd)
	}
	r.handlers[cmd] = fn
}

// Commands lists the router's command names in registration order.
func (r *Router) Commands() []string { return r.order }

// Dispatcher routes command names to parsers and enqueues the result. It
// holds no scene state and is safe to call from any goroutine.
type Dispatcher struct {
	routers []*Router
	slot    *command.Slot
	log     *zap.Logger
}

// New builds a dispatcher trying routers in the given order. A command name
// claimed by two routers is rejected here rather than silently shadowed.
func New(slot *command.Slot, log *zap.Logger, routers ...*Router) (*Dispatcher, error) {
	owner := make(map[string]string)
	for _, r := range routers {
		for _, cmd := range r.order {
			if prev, dup := owner[cmd]; dup {
				return nil, fmt.Errorf("%w: %s (%s, %s)", ErrDuplicateCommand, cmd, prev, r.name)
			}
			owner[cmd] = r.name
		}
	}
	return &Dispatcher{routers: routers, slot: slot, log: log}, nil
}

// NewDefault builds a dispatcher with the standard routers.
func NewDefault(slot *command.Slot, log *zap.Logger) (*Dispatcher, error) {
	return New(slot, log, Routers()...)
}

// Dispatch validates payload for cmd and enqueues the request. Validation
// failures and an unregistered queue are returned synchronously.
func (d *Dispatcher) Dispatch(cmd string, payload []byte) error {
	for _, r := range d.routers {
		fn, ok := r.handlers[cmd]
		if !ok {
			continue
		}
		req, err := d.safeParse(fn, cmd, payload)
		if err != nil {
			d.log.Debug("command rejected", zap.String("command", cmd), zap.Error(err))
			return err
		}
		if err := d.slot.Enqueue(req); err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
		d.log.Debug("command queued",
			zap.String("command", cmd),
			zap.String("router", r.name),
			zap.Stringer("domain", req.Domain()),
		)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
}

// Commands lists every routed command in router order.
func (d *Dispatcher) Commands() []string {
	var out []string
	for _, r := range d.routers {
		out = append(out, r.order...)
	}
	return out
}

// safeCall-style recovery so a parser bug rejects one command instead of
// killing the connection goroutine.
func (d *Dispatcher) safeParse(fn ParseFunc, cmd string, payload []byte) (req command.Request, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error("command parser panic recovered",
				zap.String("command", cmd),
				zap.Any("panic", rec),
			)
			req, err = nil, fmt.Errorf("parser panic for %s: %v", cmd, rec)
		}
	}()
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	return fn(payload)
}
