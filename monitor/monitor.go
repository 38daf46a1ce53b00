package monitor

import (
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

// Service forwards errors to Sentry. A zero DSN leaves it disabled so the
// rest of the code can call it unconditionally.
type Service struct {
	initialized bool
}

func New(dsn, environment string) *Service {
	if dsn == "" {
		return &Service{}
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
	if err != nil {
		log.Printf("sentry init failed: %v", err)
		return &Service{}
	}

	return &Service{initialized: true}
}

func (s *Service) CaptureException(err error) {
	if !s.initialized || err == nil {
		return
	}
	sentry.CaptureException(err)
}

// Close flushes buffered events before shutdown.
func (s *Service) Close() {
	if !s.initialized {
		return
	}
	sentry.Flush(2 * time.Second)
}
