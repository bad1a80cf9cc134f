package shell

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Shell hosts an fx application for the lifetime of a command. It starts the
// application, blocks until a shutdown signal arrives and stops it again.
type Shell struct {
	log     *zap.Logger
	options []fx.Option
}

func New(log *zap.Logger, options ...fx.Option) *Shell {
	return &Shell{
		log:     log,
		options: options,
	}
}

// Run starts an application built from the shell options and the given run
// options. It returns nil on a clean exit and an *ExitError otherwise.
func (s *Shell) Run(ctx context.Context, options ...fx.Option) error {
	defer s.log.Sync()

	appCtx, cancelApp := context.WithCancel(ctx)
	defer cancelApp()

	fxApp := s.createFxApp(appCtx, options...)

	startCtx, cancelStart := context.WithTimeout(ctx, fxApp.StartTimeout())
	defer cancelStart()

	if err := fxApp.Start(startCtx); err != nil {
		s.log.Error("failed to start", zap.Error(err))
		return NewExitError(1)
	}

	sig := <-fxApp.Wait()
	s.log.Debug("received shutdown signal", zap.Any("signal", sig.Signal), zap.Int("exit_code", sig.ExitCode))

	// the app context must outlive the stop hooks, so that in-flight
	// requests can drain before it is canceled
	stopCtx, cancelStop := context.WithTimeout(ctx, fxApp.StopTimeout())
	defer cancelStop()

	if err := fxApp.Stop(stopCtx); err != nil {
		s.log.Error("failed to stop", zap.Error(err))
		return NewExitError(1)
	}

	if sig.ExitCode != 0 {
		return NewExitError(sig.ExitCode)
	}

	return nil
}

func (s *Shell) createFxApp(ctx context.Context, options ...fx.Option) *fx.App {
	return fx.New(
		// global execution context
		fx.Supply(fx.Annotate(ctx, fx.As(new(context.Context)))),

		fx.Supply(s.log),

		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: s.log.Named("fx")}
		}),

		fx.Options(s.options...),
		fx.Options(options...),
	)
}
