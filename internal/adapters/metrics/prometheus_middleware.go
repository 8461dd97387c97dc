package metrics

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/andrescamacho/marssim-go/internal/application/mediator"
)

// PrometheusMiddleware times every request passing through the mediator.
// A nil collector turns the middleware into a pass-through.
func PrometheusMiddleware(collector *RequestMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		name := requestName(request)
		collector.started(name)
		start := time.Now()

		response, err := next(ctx, request)

		collector.RecordRequest(name, requestKind(name), requestStatus(err), time.Since(start).Seconds())
		return response, err
	}
}

// requestName strips the pointer and package: "*commands.AllocateBedCommand" -> "AllocateBedCommand"
func requestName(request mediator.Request) string {
	if request == nil {
		return "Unknown"
	}
	name := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func requestKind(name string) string {
	switch {
	case strings.HasSuffix(name, "Query"):
		return "query"
	case strings.HasSuffix(name, "Command"):
		return "command"
	}
	return "other"
}

func requestStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "error"
}
