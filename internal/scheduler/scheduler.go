package scheduler

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"SpotSim/internal/export"
	"SpotSim/internal/logger"
	"SpotSim/internal/model"
	"SpotSim/internal/notifier"
	"SpotSim/internal/simulator"
)

// Runner executes one simulation.
type Runner interface {
	Run(ctx context.Context, req model.SimulationRequest) (*simulator.Report, error)
}

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

const sendRetries = 3

// Scheduler re-runs the configured simulation on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Notifier Sender
	Recorder export.Recorder
	// Request is the default simulation; command arguments override its fields.
	Request model.SimulationRequest
	Ctx     context.Context

	logger *zap.Logger
	// background tracks tasks started by RunInBackground.
	background sync.WaitGroup
}

// NewScheduler creates a new Scheduler. Cron specs include a seconds field.
func NewScheduler(ctx context.Context, runner Runner, sender Sender, rec export.Recorder, req model.SimulationRequest, l *zap.Logger) *Scheduler {
	if rec == nil {
		rec = export.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Notifier: sender,
		Recorder: rec,
		Request:  req,
		Ctx:      ctx,
		logger:   logger.OrNop(l),
	}
}

// RegisterWatch schedules the default simulation.
func (s *Scheduler) RegisterWatch(expr string) error {
	if _, err := s.Cron.AddFunc(expr, s.watchTask); err != nil {
		return errors.Wrapf(err, "register watch task %q", expr)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started", zap.Int("entries", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running cron and background tasks to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.background.Wait()
	s.logger.Info("scheduler stopped")
}

// RunNow executes the watch task immediately.
func (s *Scheduler) RunNow() {
	s.watchTask()
}

// RunInBackground starts the watch task in a goroutine that Stop waits for.
func (s *Scheduler) RunInBackground() {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		s.watchTask()
	}()
}

func (s *Scheduler) watchTask() {
	s.logger.Info("running watch task", zap.String("symbol", s.Request.Symbol))
	s.trySend(s.simulate(s.Ctx, s.Request))
}

func (s *Scheduler) simulate(ctx context.Context, req model.SimulationRequest) string {
	report, err := s.Runner.Run(ctx, req)
	if err != nil {
		s.logger.Error("simulation failed", zap.String("symbol", req.Symbol), zap.Error(err))
		return notifier.FormatFailure(req.Symbol, err)
	}
	if err := s.Recorder.Record(report.Result); err != nil {
		s.logger.Error("record result failed", zap.String("id", report.Result.ID), zap.Error(err))
	}
	return notifier.FormatSimulation(report.Result)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText()
	}
	name := fields[0]
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(name) {
	case "/simulate":
		req, err := ParseSimulate(fields[1:], s.Request)
		if err != nil {
			return "⚠️ " + err.Error() + "\n\n" + notifier.HelpText()
		}
		return s.simulate(ctx, req)
	default:
		return notifier.HelpText()
	}
}

// ParseSimulate builds a request from "SYMBOL [INVESTMENT] [PROFIT_PCT]", taking omitted
// values from def.
func ParseSimulate(args []string, def model.SimulationRequest) (model.SimulationRequest, error) {
	if len(args) > 3 {
		return model.SimulationRequest{}, errors.New("too many arguments")
	}
	symbol, investment, pct := def.Symbol, def.Investment, def.ProfitPct
	if len(args) > 0 {
		symbol = args[0]
	}
	if len(args) > 1 {
		v, err := decimal.NewFromString(args[1])
		if err != nil {
			return model.SimulationRequest{}, errors.Errorf("invalid investment %q", args[1])
		}
		investment = v
	}
	if len(args) > 2 {
		v, err := decimal.NewFromString(strings.TrimSuffix(args[2], "%"))
		if err != nil {
			return model.SimulationRequest{}, errors.Errorf("invalid profit percentage %q", args[2])
		}
		pct = v
	}
	return model.NewSimulationRequest(symbol, investment, pct, false)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		s.logger.Error("send notification failed", zap.Error(err))
	}
}
