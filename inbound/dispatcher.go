package inbound

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-inapp-payments/adapters/gocommand"
	"github.com/goliatone/go-inapp-payments/core"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/puzpuzpuz/xsync/v4"
)

// Handler runs one inbound method. The returned value is the success
// payload.
type Handler func(ctx context.Context, arguments map[string]any) (any, error)

type routeKind int

const (
	routeSync routeKind = iota
	routeAsync
	routeNotImplemented
)

type route struct {
	kind    routeKind
	handler Handler
}

// Dispatcher answers method calls. Sync handlers run on the calling (UI)
// thread. Async handlers run on their own goroutine and answer through
// UIThread.Post.
type Dispatcher struct {
	ui     core.UIThread
	logger glog.Logger
	routes *xsync.Map[string, route]
}

func NewDispatcher(ui core.UIThread, logger glog.Logger) *Dispatcher {
	if logger == nil {
		_, resolved := glog.Resolve("payments.inbound", nil, nil)
		logger = resolved
	}
	return &Dispatcher{
		ui:     ui,
		logger: glog.Ensure(logger),
		routes: xsync.NewMap[string, route](),
	}
}

func (d *Dispatcher) Register(method string, handler Handler) error {
	return d.register(method, route{kind: routeSync, handler: handler})
}

// RegisterAsync registers a handler that must not block the UI thread.
func (d *Dispatcher) RegisterAsync(method string, handler Handler) error {
	if d != nil && d.ui == nil {
		return inboundBadInput("inbound: async handlers need a ui thread", map[string]any{"method": method})
	}
	return d.register(method, route{kind: routeAsync, handler: handler})
}

// RegisterNotImplemented reserves a known method name that answers
// not-implemented.
func (d *Dispatcher) RegisterNotImplemented(method string) error {
	return d.register(method, route{kind: routeNotImplemented})
}

func (d *Dispatcher) register(method string, r route) error {
	if d == nil {
		return inboundBadInput("inbound: dispatcher is nil", nil)
	}
	method = strings.TrimSpace(method)
	if method == "" {
		return inboundBadInput("inbound: method name is required", nil)
	}
	if r.kind != routeNotImplemented && r.handler == nil {
		return inboundBadInput("inbound: handler is nil", map[string]any{"method": method})
	}
	if _, exists := d.routes.LoadOrStore(method, r); exists {
		return inboundError(
			fmt.Sprintf("inbound: handler already registered for method %q", method),
			goerrors.CategoryConflict,
			http.StatusConflict,
			core.PaymentsErrorBadInput,
			map[string]any{"method": method},
		)
	}
	return nil
}

func (d *Dispatcher) Methods() []string {
	methods := make([]string, 0, d.routes.Size())
	d.routes.Range(func(method string, _ route) bool {
		methods = append(methods, method)
		return true
	})
	return methods
}

// OnMethodCall answers call through result exactly once. Unknown methods
// answer not-implemented.
func (d *Dispatcher) OnMethodCall(ctx context.Context, call core.MethodCall, result core.MethodResult) {
	if result == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	r, ok := d.routes.Load(call.Method)
	if !ok || r.kind == routeNotImplemented {
		d.logger.Debug("method not implemented", "method", call.Method)
		result.NotImplemented()
		return
	}

	if r.kind == routeAsync {
		go func() {
			value, err := d.invoke(ctx, call, r.handler)
			d.ui.Post(func() { d.answer(call.Method, result, value, err) })
		}()
		return
	}
	value, err := d.invoke(ctx, call, r.handler)
	d.answer(call.Method, result, value, err)
}

func (d *Dispatcher) invoke(ctx context.Context, call core.MethodCall, handler Handler) (value any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			d.logger.Error("method handler panicked", "method", call.Method, "panic", fmt.Sprint(recovered))
			value = nil
			err = inboundPanicError(call.Method, recovered)
		}
	}()
	return handler(ctx, call.Arguments)
}

func (d *Dispatcher) answer(method string, result core.MethodResult, value any, err error) {
	if err != nil {
		channelErr := core.ToChannelError(err)
		d.logger.Warn("method call failed",
			"method", method,
			"code", channelErr.Code,
			"debug_code", channelErr.Details["debugCode"],
			"error", err,
		)
		result.Error(channelErr.Code, channelErr.Message, channelErr.Details)
		return
	}
	result.Success(value)
}

// Decode maps channel arguments onto a message struct using its
// mapstructure tags.
func Decode[T any](method string, arguments map[string]any) (T, error) {
	var msg T
	if len(arguments) == 0 {
		return msg, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &msg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return msg, inboundDecodeError(err, method)
	}
	if err := decoder.Decode(arguments); err != nil {
		return msg, inboundDecodeError(err, method)
	}
	return msg, nil
}

// CommandHandler decodes arguments into T and executes cmd. Commands answer
// with a nil payload.
func CommandHandler[T any](method string, cmd gocmd.Commander[T]) Handler {
	return func(ctx context.Context, arguments map[string]any) (any, error) {
		msg, err := Decode[T](method, arguments)
		if err != nil {
			return nil, err
		}
		if err := gocommand.Execute(ctx, cmd, msg); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

// QueryHandler decodes arguments into T and answers with the query result.
func QueryHandler[T any, R any](method string, qry gocmd.Querier[T, R]) Handler {
	return func(ctx context.Context, arguments map[string]any) (any, error) {
		msg, err := Decode[T](method, arguments)
		if err != nil {
			return nil, err
		}
		value, err := gocommand.Query(ctx, qry, msg)
		if err != nil {
			return nil, err
		}
		return value, nil
	}
}
