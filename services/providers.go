package services

import (
	"context"
	"log/slog"

	"github.com/l3montree-dev/cvesync/shared"
	"github.com/l3montree-dev/cvesync/vulndb"
	"go.uber.org/fx"
)

// ServiceModule provides all service-layer constructors
var ServiceModule = fx.Options(
	fx.Provide(func(c *vulndb.NVDClient) shared.NVDClient { return c }),
	fx.Provide(fx.Annotate(NewConfigService, fx.As(new(shared.ConfigService)))),
	fx.Provide(fx.Annotate(NewVulnerabilityService, fx.As(new(shared.VulnerabilityService)))),
	fx.Provide(fx.Annotate(NewSyncService, fx.As(new(shared.SyncService)))),
	fx.Provide(fx.Annotate(NewDatabaseLeaderElector, fx.As(new(shared.LeaderElector), new(leaderElectorLifecycle)))),
	fx.Invoke(registerLifecycle),
	fx.Invoke(subscribeToSyncCompletion),
)

type leaderElectorLifecycle interface {
	Start()
	Stop()
}

func registerLifecycle(lc fx.Lifecycle, syncService shared.SyncService, elector leaderElectorLifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			elector.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			err := syncService.Shutdown(ctx)
			elector.Stop()
			return err
		},
	})
}

// subscribeToSyncCompletion purges the statistics cache whenever another instance completed a sync.
func subscribeToSyncCompletion(lc fx.Lifecycle, broker shared.PubSubBroker, vulnerabilityService shared.VulnerabilityService) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			messages, err := broker.Subscribe(ctx, shared.SyncCompletedChannel)
			if err != nil {
				cancel()
				return err
			}
			go invalidateOnMessage(messages, vulnerabilityService)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func invalidateOnMessage(messages <-chan map[string]any, vulnerabilityService shared.VulnerabilityService) {
	for message := range messages {
		slog.Debug("sync completed on another instance, purging statistics", "syncId", message["syncId"])
		vulnerabilityService.InvalidateStatistics()
	}
}
