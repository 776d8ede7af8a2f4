package services

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/l3montree-dev/cvesync/shared"
)

const (
	leaderElectionKey = "leaderElection"
	leaderTTL         = 360 * time.Second
)

type leaderElectionConfig struct {
	LeaderID string `json:"leaderId"`
	LastPing int64  `json:"lastPing"`
}

type databaseLeaderElector struct {
	leaderElectorID string
	configService   shared.ConfigService
	isLeader        atomic.Bool // this variable gets updated by a daemon goroutine. Usage of atomic is required.
	now             func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDatabaseLeaderElector(configService shared.ConfigService) *databaseLeaderElector {
	return &databaseLeaderElector{
		configService: configService,
		// generate a random ID for this leader elector
		leaderElectorID: uuid.New().String(),
		now:             time.Now,
	}
}

func randomNumberBetween(min, max int) int {
	return rand.Intn(max-min) + min // #nosec
}

func (e *databaseLeaderElector) daemon(ctx context.Context) {
	defer e.wg.Done()
	for {
		e.tick()

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(randomNumberBetween(60, 300)) * time.Second):
		}
	}
}

func (e *databaseLeaderElector) tick() {
	isLeader, err := e.checkIfLeader()
	if err != nil {
		slog.Error("could not check if leader", "err", err)
	}
	if isLeader != e.isLeader.Load() {
		slog.Info("leadership changed", "leader", isLeader, "id", e.leaderElectorID)
	}
	e.isLeader.Store(isLeader)
}

func (e *databaseLeaderElector) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.wg.Add(1)
	go e.daemon(ctx)
}

// Stop ends the election loop and releases leadership so another instance can take over without waiting for the ttl.
func (e *databaseLeaderElector) Stop() {
	if e.cancel != nil {
		e.cancel()
		e.wg.Wait()
	}
	if e.isLeader.Swap(false) {
		if err := e.configService.RemoveConfig(leaderElectionKey); err != nil {
			slog.Warn("could not release leadership", "err", err)
		}
	}
}

func (e *databaseLeaderElector) IsLeader() bool {
	return e.isLeader.Load()
}

func (e *databaseLeaderElector) ping() error {
	return e.configService.SetJSONConfig(leaderElectionKey, leaderElectionConfig{
		LeaderID: e.leaderElectorID,
		LastPing: e.now().Unix(),
	})
}

func (e *databaseLeaderElector) checkIfLeader() (bool, error) {
	var config leaderElectionConfig

	err := e.configService.GetJSONConfig(leaderElectionKey, &config)
	if err != nil {
		slog.Debug("no leader election config yet", "err", err)
		// there is no leader yet - take it.
		return true, e.ping()
	}

	if config.LeaderID == e.leaderElectorID {
		// refresh the lease
		return true, e.ping()
	}

	if e.now().Unix()-config.LastPing > int64(leaderTTL.Seconds()) {
		// probably the leader died - overwrite it.
		return true, e.ping()
	}

	return false, nil
}
