package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

var (
	ErrNotInitialized = errors.New("scheduler not initialized")
	ErrEmptyJobName   = errors.New("job name is required")
	ErrEmptyCronExpr  = errors.New("cron expression is required")
)

// Scheduler запускает периодические задачи (ночной бэкап лиг).
type Scheduler struct {
	cron   gocron.Scheduler
	logger *slog.Logger

	stopOnce sync.Once
	stopErr  error
}

func New(logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scheduler")

	// Пока задача выполняется, следующий запуск откладывается, а не идёт параллельно.
	cron, err := gocron.NewScheduler(gocron.WithGlobalJobOptions(
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithEventListeners(failureListeners(logger)...),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{cron: cron, logger: logger}, nil
}

func failureListeners(logger *slog.Logger) []gocron.EventListener {
	return []gocron.EventListener{
		gocron.AfterJobRunsWithError(func(id uuid.UUID, name string, err error) {
			logger.Error("Job returned error", "job", name, "id", id, "error", err)
		}),
		gocron.AfterJobRunsWithPanic(func(id uuid.UUID, name string, recovered any) {
			logger.Error("Job panicked", "job", name, "id", id, "recovered", recovered)
		}),
	}
}

func (s *Scheduler) Start() {
	if s == nil {
		return
	}
	s.logger.Info("Starting scheduler", "registered", len(s.cron.Jobs()))
	s.cron.Start()
}

// Stop ждёт завершения запущенных задач. Повторный вызов возвращает
// результат первого.
func (s *Scheduler) Stop() error {
	if s == nil {
		return ErrNotInitialized
	}
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping scheduler")
		s.stopErr = s.cron.Shutdown()
	})
	return s.stopErr
}

// AddJob registers task under a five-field cron expression.
func (s *Scheduler) AddJob(name, cronExpr string, task func() error) (uuid.UUID, error) {
	if s == nil {
		return uuid.Nil, ErrNotInitialized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, ErrEmptyJobName
	}
	cronExpr = strings.TrimSpace(cronExpr)
	if cronExpr == "" {
		return uuid.Nil, ErrEmptyCronExpr
	}

	job, err := s.cron.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(s.timed(name, task)),
		gocron.WithName(name),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to register job %q with cron %q: %w", name, cronExpr, err)
	}
	s.logger.Info("Job registered", "job", name, "cron", cronExpr, "id", job.ID())
	return job.ID(), nil
}

// timed логирует длительность успешного запуска; ошибки логируют слушатели.
func (s *Scheduler) timed(name string, task func() error) func() error {
	return func() error {
		started := time.Now()
		if err := task(); err != nil {
			return err
		}
		s.logger.Debug("Job finished", "job", name, "duration", time.Since(started))
		return nil
	}
}

// JobNames lists registered jobs.
func (s *Scheduler) JobNames() []string {
	jobs := s.cron.Jobs()
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name())
	}
	return names
}
