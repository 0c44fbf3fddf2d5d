package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrreynao/widgetamericanrent/internal/logger"
	"github.com/jrreynao/widgetamericanrent/internal/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 30 * time.Second

// ProbeStatus is the outcome of the last SMTP probe.
type ProbeStatus struct {
	CheckedAt time.Time `json:"checked_at"`
	OK        bool      `json:"ok"`
	Code      string    `json:"code,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// JobService runs the periodic SMTP probe and template warm-up.
type JobService struct {
	sender    MailSender
	templates *TemplateStore

	mu   sync.RWMutex
	last *ProbeStatus

	log *zap.Logger
}

func NewJobService(sender MailSender, templates *TemplateStore) *JobService {
	return &JobService{sender: sender, templates: templates, log: logger.Named("jobs")}
}

// ProbeSMTP verifies the transport and records the result.
func (s *JobService) ProbeSMTP(ctx context.Context) ProbeStatus {
	st := ProbeStatus{CheckedAt: time.Now().UTC(), OK: true}
	if err := s.sender.Verify(ctx); err != nil {
		st.OK = false
		st.Code = DiagnoseSMTP(err).Code
		st.Error = err.Error()
		metrics.SMTPUp.Set(0)
		s.log.Warn("mail transport probe failed", zap.String("transport", s.sender.Name()), zap.String("code", st.Code), zap.Error(err))
	} else {
		metrics.SMTPUp.Set(1)
		s.log.Debug("mail transport probe ok", zap.String("transport", s.sender.Name()))
	}

	s.mu.Lock()
	s.last = &st
	s.mu.Unlock()
	return st
}

// LastProbe returns the last recorded probe, if any ran.
func (s *JobService) LastProbe() (ProbeStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return ProbeStatus{}, false
	}
	return *s.last, true
}

// WarmTemplates refreshes the cached remote templates.
func (s *JobService) WarmTemplates(ctx context.Context) error {
	if s.templates == nil {
		return nil
	}
	if err := s.templates.Warm(ctx); err != nil {
		s.log.Warn("template warm-up failed", zap.Error(err))
		return err
	}
	return nil
}

// Start registers the jobs on a new cron scheduler and starts it. An empty
// schedule disables that job.
func (s *JobService) Start(probeSchedule, warmSchedule string) (*cron.Cron, error) {
	c := cron.New()

	if probeSchedule != "" {
		if _, err := c.AddFunc(probeSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			s.ProbeSMTP(ctx)
		}); err != nil {
			return nil, fmt.Errorf("smtp probe schedule %q: %w", probeSchedule, err)
		}
	}

	if warmSchedule != "" && s.templates != nil && s.templates.Remote() && s.templates.CacheEnabled() {
		if _, err := c.AddFunc(warmSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			_ = s.WarmTemplates(ctx)
		}); err != nil {
			return nil, fmt.Errorf("template warm schedule %q: %w", warmSchedule, err)
		}
	}

	c.Start()
	s.log.Info("cron started", zap.Int("jobs", len(c.Entries())))
	return c, nil
}
