package scheduler

import (
	"fmt"
	"time"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
	"github.com/go-co-op/gocron"
)

type service struct {
	scheduler *gocron.Scheduler
}

func NewScheduler() ports.SchedulerService {
	svc := gocron.NewScheduler(time.UTC)
	return &service{svc}
}

func (s *service) Start() {
	s.scheduler.StartAsync()
}

func (s *service) Stop() {
	s.scheduler.Stop()
}

// ScheduleTaskOnce runs task a single time once delay has elapsed.
// Delays are rounded up to the millisecond.
func (s *service) ScheduleTaskOnce(delay time.Duration, task func()) error {
	ms := int(delay.Milliseconds())
	if delay%time.Millisecond != 0 {
		ms++
	}
	if ms <= 0 {
		ms = 1
	}

	if _, err := s.scheduler.Every(ms).Milliseconds().
		WaitForSchedule().LimitRunsTo(1).Do(task); err != nil {
		return fmt.Errorf("failed to schedule task: %s", err)
	}
	return nil
}
