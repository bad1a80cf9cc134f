package lambda

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/lambda-feedback/restproxy/internal/server"
)

// LambdaHandlerParams represents the parameters required for
// the Lambda handler.
type LambdaHandlerParams struct {
	fx.In

	// Config is the configuration for the Lambda handler.
	Config Config

	// Handlers are the proxy routes, served behind the same
	// middleware as the standalone server.
	Handlers []*server.HttpHandler `group:"handlers"`

	// Context is the context for the Lambda handler.
	Context context.Context

	// Logger is the logger for the Lambda handler.
	Logger *zap.Logger
}

// LambdaHandler translates AWS Lambda proxy events into requests
// against the proxy routes.
type LambdaHandler struct {
	config  Config
	ctx     context.Context
	cancel  context.CancelFunc
	handler http.Handler
	log     *zap.Logger
}

func NewLambdaHandler(params LambdaHandlerParams) *LambdaHandler {
	ctx, cancel := context.WithCancel(params.Context)

	return &LambdaHandler{
		config:  params.Config,
		ctx:     ctx,
		cancel:  cancel,
		handler: server.NewHandler(params.Handlers, server.DefaultMiddleware(params.Logger)...),
		log:     params.Logger,
	}
}

// NewLifecycleHandler creates a LambdaHandler that starts and stops
// with the fx app.
func NewLifecycleHandler(params LambdaHandlerParams, lc fx.Lifecycle) *LambdaHandler {
	handler := NewLambdaHandler(params)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return handler.Start()
		},
		OnStop: func(context.Context) error {
			handler.Shutdown()
			return nil
		},
	})
	return handler
}

// Start runs the lambda runtime client in a new goroutine. An error
// is returned for an unknown proxy source.
func (s *LambdaHandler) Start() error {
	handler, err := s.ProxyFunction()
	if err != nil {
		return err
	}

	s.log.Debug("using lambda event proxy", zap.Stringer("proxy_source", s.config.ProxySource))

	go lambda.StartWithOptions(handler, lambda.WithContext(s.ctx))

	return nil
}

// Shutdown cancels the lambda runtime client.
func (s *LambdaHandler) Shutdown() {
	s.cancel()
}

// ProxyFunction returns the event adapter for the configured source.
func (s *LambdaHandler) ProxyFunction() (any, error) {
	switch s.config.ProxySource {
	case ProxySourceApiGatewayV1:
		return httpadapter.New(s.handler).ProxyWithContext, nil
	case ProxySourceApiGatewayV2, "":
		return httpadapter.NewV2(s.handler).ProxyWithContext, nil
	case ProxySourceAlb:
		return httpadapter.NewALB(s.handler).ProxyWithContext, nil
	default:
		return nil, fmt.Errorf("invalid proxy source: %s", s.config.ProxySource)
	}
}
