package scheduler

import (
	"citystate/internal/providers"
	"citystate/internal/scheduler/interfaces"
	"citystate/internal/services"
	"citystate/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

const defaultResetInterval = 7 * 24 * time.Hour

// Scheduler runs the periodic gamification jobs.
type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	accounts services.AccountServiceInterface
	cron     *gron.Cron
	opsMu    sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := s.config.Scheduler.PointsResetInterval
	if interval <= 0 {
		interval = defaultResetInterval
	}

	s.cron.AddFunc(gron.Every(interval), func() {
		s.ResetPoints()
	})

	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Weekly points reset scheduled every %s", interval)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// ResetPoints zeroes weekly points now and returns how many users had points.
func (s *Scheduler) ResetPoints() int {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	n := s.accounts.ResetWeeklyPoints()
	s.logger.Infof(providers.TypeApp, "Weekly points reset for %d users", n)
	return n
}

func NewScheduler(config *structures.Config, logger providers.Logger, accounts services.AccountServiceInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:   config,
		logger:   logger,
		accounts: accounts,
	}
}
