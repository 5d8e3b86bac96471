// Package daemon composes the headless mirror agent with fx.
package daemon

import (
	"context"
	"errors"
	"sync"

	"github.com/matheus3301/wtox/internal/api"
	"github.com/matheus3301/wtox/internal/bus"
	"github.com/matheus3301/wtox/internal/channel"
	"github.com/matheus3301/wtox/internal/config"
	"github.com/matheus3301/wtox/internal/control"
	"github.com/matheus3301/wtox/internal/dispatch"
	"github.com/matheus3301/wtox/internal/errs"
	"github.com/matheus3301/wtox/internal/lock"
	"github.com/matheus3301/wtox/internal/logging"
	"github.com/matheus3301/wtox/internal/notify"
	"github.com/matheus3301/wtox/internal/session"
	"github.com/matheus3301/wtox/internal/status"
	"github.com/matheus3301/wtox/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const binaryName = "wtoxd"

// Params holds the resolved session passed to the fx module.
type Params struct {
	SessionName string
	Debug       bool
	Config      *config.Session // optional override; nil = read the session config
	Logger      *zap.Logger     // optional override; nil = log to the session log file
	LockPath    string          // optional override; "" = the session's wtoxd.lock
}

// Module returns the fx module for the agent, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideConfig,
			provideBus,
			provideStateMachine,
			provideClient,
			provideStore,
			provideNotifications,
			provideController,
			provideChannel,
			provideDispatcher,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if p.Logger != nil {
		return p.Logger, nil
	}
	return logging.New(session.LogPath(p.SessionName, binaryName), p.SessionName, logging.Options{Stderr: true, Debug: p.Debug})
}

func provideConfig(p Params, logger *zap.Logger) (*config.Session, error) {
	cfg := p.Config
	if cfg == nil {
		var err error
		if cfg, err = session.LoadConfig(p.SessionName); err != nil {
			return nil, err
		}
	}
	if err := session.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	logger.Info("session config loaded", zap.String("server", cfg.ServerURL), zap.Duration("reconnect_delay", cfg.ReconnectDelay.Duration))
	return cfg, nil
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideClient(cfg *config.Session, logger *zap.Logger) (*api.Client, error) {
	return api.New(cfg, logger)
}

func provideStore(b *bus.Bus) *store.Store {
	return store.New(b)
}

func provideNotifications(b *bus.Bus, logger *zap.Logger) *notify.Center {
	return notify.New(b, logger)
}

func provideController(c *api.Client, st *store.Store, n *notify.Center, logger *zap.Logger) *control.Controller {
	return control.New(c, st, n, logger)
}

func provideChannel(c *api.Client, cfg *config.Session, m *status.Machine, b *bus.Bus, logger *zap.Logger) *channel.Channel {
	return channel.New(c, channel.Options{
		Delay:   cfg.ReconnectDelay.Duration,
		Machine: m,
		Bus:     b,
		Logger:  logger,
	})
}

func provideDispatcher(st *store.Store, ctl *control.Controller, n *notify.Center, logger *zap.Logger) *dispatch.Dispatcher {
	return dispatch.New(st, ctl, n, logger)
}

type lifecycleParams struct {
	fx.In

	Channel    *channel.Channel
	Dispatcher *dispatch.Dispatcher
	Controller *control.Controller
	Bus        *bus.Bus
	Logger     *zap.Logger
	Shutdowner fx.Shutdowner
	Params     Params
}

func registerLifecycle(lc fx.Lifecycle, p lifecycleParams) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var held *lock.Lock

	lockPath := p.Params.LockPath
	if lockPath == "" {
		lockPath = session.LockPath(p.Params.SessionName, binaryName)
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			l, err := lock.Acquire(lockPath, binaryName)
			if err != nil {
				return err
			}
			held = l
			p.Dispatcher.Register(p.Channel)

			events, unsub := p.Bus.Subscribe("", 256)
			wg.Add(2)
			go func() {
				defer wg.Done()
				defer unsub()
				logEvents(ctx, events, p.Logger)
			}()

			// Run the push channel in background. Every (re)connect re-syncs
			// all mirrors because missed events are not replayed.
			go func() {
				defer wg.Done()
				err := p.Channel.Run(ctx,
					func() {
						if err := p.Controller.SyncAll(ctx); err != nil {
							p.Logger.Warn("sync after connect incomplete", zap.Error(err))
						}
					},
					func(err error) {
						p.Logger.Info("working offline until the push channel returns", zap.Error(err))
					},
				)
				if errors.Is(err, errs.ErrTransportUnavailable) {
					p.Logger.Error("push channel unavailable, shutting down", zap.Error(err))
					_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			wg.Wait()
			p.Dispatcher.Wait()
			p.Controller.Wait()
			if err := held.Release(); err != nil {
				p.Logger.Warn("release session lock", zap.Error(err))
			}
			p.Logger.Info("agent stopped")
			_ = p.Logger.Sync()
			return nil
		},
	})
}

// logEvents writes one log line per bus event until ctx is done.
func logEvents(ctx context.Context, events <-chan bus.Event, logger *zap.Logger) {
	for {
		select {
		case evt := <-events:
			fields := []zap.Field{zap.String("kind", evt.Kind)}
			switch v := evt.Payload.(type) {
			case uint32:
				fields = append(fields, zap.Uint32("friend", v))
			case status.StatusChange:
				fields = append(fields, zap.String("from", string(v.From)), zap.String("to", string(v.To)), zap.Duration("held", v.Held))
			case notify.Notification:
				fields = append(fields, zap.String("title", v.Title), zap.String("body", v.Body))
			}
			logger.Info("event", fields...)
		case <-ctx.Done():
			return
		}
	}
}
