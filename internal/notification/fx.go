package notification

import (
	"context"
	"fmt"
	"os"

	"github.com/smallbiznis/telematch/internal/config"
	"github.com/smallbiznis/telematch/internal/notification/bootstrap"
	"github.com/smallbiznis/telematch/internal/notification/domain"
	"github.com/smallbiznis/telematch/internal/notification/local"
	"github.com/smallbiznis/telematch/internal/notification/presenter"
	"github.com/smallbiznis/telematch/internal/notification/socketio"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("notification",
	fx.Provide(NewPlatform),
	fx.Provide(NewPresenter),
	fx.Provide(bootstrap.New),
)

// NewPlatform builds the configured push platform and closes it on stop.
func NewPlatform(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (domain.Platform, error) {
	switch cfg.Notification.Platform {
	case config.NotificationPlatformLocal:
		p := local.NewFromConfig(log, cfg)
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return p.Close() },
		})
		return p, nil
	case config.NotificationPlatformSocketIO:
		p, err := socketio.Dial(context.Background(), log,
			cfg.Notification.GatewayURL,
			cfg.Notification.Namespace,
			cfg.Notification.Timeout,
		)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return p.Close() },
		})
		return p, nil
	default:
		return nil, fmt.Errorf("unknown notification platform %q", cfg.Notification.Platform)
	}
}

// NewPresenter reports events to the log and as alert lines on stdout.
func NewPresenter(log *zap.Logger) domain.Presenter {
	return presenter.Multi{
		presenter.NewLog(log),
		presenter.NewConsole(os.Stdout),
	}
}
