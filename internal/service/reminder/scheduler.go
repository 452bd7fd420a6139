package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yourusername/hottakes-api/pkg/logger"
)

var (
	// ErrAlreadyStarted - Start вызван повторно
	ErrAlreadyStarted = errors.New("reminder scheduler already started")
	// ErrAlreadyRunning - предыдущий запуск джобы еще не завершился
	ErrAlreadyRunning = errors.New("reminder job is already running")
)

// Job - работа, выполняемая раз в сутки
type Job func(ctx context.Context) error

// Config - время ежедневного запуска
type Config struct {
	Hour     int
	Minute   int
	Location *time.Location
	// Timeout ограничивает один запуск джобы
	Timeout time.Duration
}

// Scheduler запускает джобу каждый день в Hour:Minute по Location.
// Start вызывается один раз, Stop отменяет ожидание и ждет текущий запуск.
type Scheduler struct {
	cfg Config
	job Job
	log *logger.Logger
	now func() time.Time

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	running chan struct{}
}

// NewScheduler создает планировщик
func NewScheduler(cfg Config, job Job, log *logger.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &Scheduler{
		cfg:     cfg,
		job:     job,
		log:     log.Named("ReminderScheduler"),
		now:     time.Now,
		running: make(chan struct{}, 1),
	}
}

// NextRun возвращает ближайший момент запуска строго после now
func (s *Scheduler) NextRun(now time.Time) time.Time {
	local := now.In(s.cfg.Location)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.cfg.Hour, s.cfg.Minute, 0, 0, s.cfg.Location)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, s.cfg.Hour, s.cfg.Minute, 0, 0, s.cfg.Location)
	}
	return next
}

// Start запускает цикл в отдельной горутине
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(loopCtx, s.done)
	s.log.Info("Планировщик напоминаний запущен", "next_run", s.NextRun(s.now()).Format(time.RFC3339))
	return nil
}

// Stop отменяет ожидание и дожидается завершения цикла. Повторный вызов безопасен.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info("Планировщик напоминаний остановлен")
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		wait := s.NextRun(s.now()).Sub(s.now())
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := s.RunNow(ctx); err != nil {
			if errors.Is(err, ErrAlreadyRunning) {
				s.log.Warn("Пропуск запуска: предыдущий еще выполняется")
				continue
			}
			s.log.Error("Ошибка рассылки напоминаний", "error", err)
		}
	}
}

// RunNow выполняет джобу синхронно; параллельный запуск дает ErrAlreadyRunning
func (s *Scheduler) RunNow(ctx context.Context) error {
	select {
	case s.running <- struct{}{}:
	default:
		return ErrAlreadyRunning
	}
	defer func() { <-s.running }()

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	started := s.now()
	err := s.job(runCtx)
	s.log.Info("Джоба напоминаний выполнена", "duration", s.now().Sub(started).String(), "failed", err != nil)
	return err
}
