// Package mediator routes commands and queries to exactly one handler each,
// keyed by the request's dynamic type, through a stack of middleware.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

type (
	// Request is a command or query; usually a pointer to a struct
	Request interface{}
	// Response is whatever the handler returns
	Response interface{}
)

// RequestHandler handles one request type
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc lets a plain function serve as a RequestHandler
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

func (f HandlerFunc) Handle(ctx context.Context, request Request) (Response, error) {
	return f(ctx, request)
}

// Middleware wraps every dispatch, for metrics or logging
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)

var (
	ErrNilRequest = errors.New("mediator: nil request")
	ErrNoHandler  = errors.New("mediator: no handler registered")
)

// Mediator dispatches commands and queries to their handlers
type Mediator interface {
	Send(ctx context.Context, request Request) (Response, error)
	Register(requestType reflect.Type, handler RequestHandler) error
	// Use adds a middleware inside the ones already added
	Use(middleware Middleware)
}

type mediator struct {
	mu       sync.RWMutex
	routes   map[reflect.Type]RequestHandler
	pipeline []Middleware
}

func NewMediator() Mediator {
	return &mediator{routes: make(map[reflect.Type]RequestHandler)}
}

func (m *mediator) Register(requestType reflect.Type, handler RequestHandler) error {
	if requestType == nil || handler == nil {
		return errors.New("mediator: register needs a request type and a handler")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.routes[requestType]; taken {
		return fmt.Errorf("mediator: %s already has a handler", requestType)
	}
	m.routes[requestType] = handler
	return nil
}

func (m *mediator) Use(middleware Middleware) {
	m.mu.Lock()
	m.pipeline = append(m.pipeline, middleware)
	m.mu.Unlock()
}

func (m *mediator) Send(ctx context.Context, request Request) (Response, error) {
	if request == nil {
		return nil, ErrNilRequest
	}
	requestType := reflect.TypeOf(request)

	m.mu.RLock()
	handler, found := m.routes[requestType]
	pipeline := m.pipeline[:len(m.pipeline):len(m.pipeline)]
	m.mu.RUnlock()
	if !found {
		return nil, fmt.Errorf("%w for %s", ErrNoHandler, requestType)
	}

	return wrap(pipeline, handler.Handle)(ctx, request)
}

// wrap nests the pipeline around final, the first middleware outermost
func wrap(pipeline []Middleware, final HandlerFunc) HandlerFunc {
	next := final
	for i := len(pipeline) - 1; i >= 0; i-- {
		mw, inner := pipeline[i], next
		next = func(ctx context.Context, request Request) (Response, error) {
			return mw(ctx, request, inner)
		}
	}
	return next
}

// RegisterHandler registers handler for the request type T
func RegisterHandler[T Request](m Mediator, handler RequestHandler) error {
	var zero T
	return m.Register(reflect.TypeOf(zero), handler)
}

// Ask sends request and asserts the response type
func Ask[R Response](ctx context.Context, m Mediator, request Request) (R, error) {
	var zero R
	resp, err := m.Send(ctx, request)
	if err != nil {
		return zero, err
	}
	typed, ok := resp.(R)
	if !ok {
		return zero, fmt.Errorf("mediator: %T answered with %T, want %T", request, resp, zero)
	}
	return typed, nil
}
