// Package scheduler enqueues the periodic circulation scans on a cron
// schedule. The scans themselves run on the task queue.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/circulation/internal/tasks"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Enqueuer puts a task on the queue.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	if schedule == "" {
		return errors.New("schedule is empty")
	}
	_, err := parser.Parse(schedule)
	return err
}

// NotificationScheduler enqueues overdue_scan and wishlist_scan on every
// tick of its schedule.
type NotificationScheduler struct {
	queue    Enqueuer
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewNotificationScheduler(queue Enqueuer, schedule string) *NotificationScheduler {
	return &NotificationScheduler{
		queue:    queue,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start schedules the scans. It stops by itself when ctx is cancelled.
func (s *NotificationScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunNow(); err != nil {
			log.Printf("[SCHEDULER] %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule notification scans: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true
	log.Printf("[SCHEDULER] Notification scans scheduled '%s'. Next run: %v",
		s.schedule, s.cron.Entry(entryID).Next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a running tick to finish.
func (s *NotificationScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false
	log.Printf("[SCHEDULER] Notification scans stopped")
}

// RunNow enqueues both scans immediately.
func (s *NotificationScheduler) RunNow() error {
	var errs []error
	for _, task := range []backlite.Task{tasks.OverdueScanTask{}, tasks.WishlistScanTask{}} {
		id, err := s.queue.Enqueue(task)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		log.Printf("[SCHEDULER] Enqueued %s (%s)", task.Config().Name, id)
	}
	return errors.Join(errs...)
}

func (s *NotificationScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun is the time of the next tick, or zero when stopped.
func (s *NotificationScheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}
