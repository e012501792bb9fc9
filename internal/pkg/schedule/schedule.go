package schedule

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/model"
)

type dispatcher interface {
	SendStartSessionCommand(params model.SessionParams) error
}

// Scheduler starts pre-programmed sessions on a cron schedule, so the cabin
// is hot when people arrive.
type Scheduler struct {
	cron    *cron.Cron
	sauna   dispatcher
	logger  *zap.Logger
	errChan chan error
}

func New(sauna dispatcher, errChan chan error) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		sauna:   sauna,
		logger:  zap.L(),
		errChan: errChan,
	}
}

// AddPreheat registers a cron expression that dispatches the given session.
func (s *Scheduler) AddPreheat(spec string, params model.SessionParams) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Info("scheduled pre-heat firing",
			zap.String("profile", params.Profile.String()), zap.Int("temperature", params.Temperature))
		if err := s.sauna.SendStartSessionCommand(params); err != nil {
			s.logger.Error("scheduled pre-heat failed", zap.Error(err))
			s.errChan <- err
		}
	})
	return err
}

// Run blocks until ctx is cancelled, then stops the cron loop and waits for
// a running job to return.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return ctx.Err()
}
