package services

import (
	"sync"

	"github.com/rs/zerolog"

	"healthease/internal/sim"
)

// DefaultNoticeLimit is how many notices are kept for /api/map/notices.
const DefaultNoticeLimit = 50

// NoticePublisher pushes notices to live viewers. PublishNotice must not
// block; it is called while the simulation lock is held.
type NoticePublisher interface {
	PublishNotice(n sim.Notice)
}

// NotificationService receives map notices, logs them, remembers the most
// recent ones and forwards them to live viewers. It is the sim.Notifier of
// the tracking context.
type NotificationService struct {
	logger    zerolog.Logger
	publisher NoticePublisher

	mu     sync.Mutex
	limit  int
	recent []sim.Notice
}

func NewNotificationService(limit int, publisher NoticePublisher, logger zerolog.Logger) *NotificationService {
	if limit <= 0 {
		limit = DefaultNoticeLimit
	}
	return &NotificationService{
		logger:    logger.With().Str("component", "notices").Logger(),
		publisher: publisher,
		limit:     limit,
	}
}

// Notify implements sim.Notifier.
func (s *NotificationService) Notify(n sim.Notice) {
	s.logger.Info().Bool("transient", n.Transient).Msg(n.Text)

	s.mu.Lock()
	s.recent = append(s.recent, n)
	if over := len(s.recent) - s.limit; over > 0 {
		s.recent = append(s.recent[:0], s.recent[over:]...)
	}
	s.mu.Unlock()

	if s.publisher != nil {
		s.publisher.PublishNotice(n)
	}
}

// Recent returns the kept notices, oldest first.
func (s *NotificationService) Recent() []sim.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sim.Notice(nil), s.recent...)
}

// Latest returns the most recent notice.
func (s *NotificationService) Latest() (sim.Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recent) == 0 {
		return sim.Notice{}, false
	}
	return s.recent[len(s.recent)-1], true
}
