package service

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/aa-ray-man/safehaven/internal/models"
	"github.com/aa-ray-man/safehaven/internal/repository"
)

// SMSSender dispatches one message to one phone number. The production
// implementation wraps the external SMS gateway; development uses the
// logging stub below.
type SMSSender interface {
	Send(to, body string) error
}

// LogSMSSender logs instead of sending. Stands in when no gateway is
// configured.
type LogSMSSender struct{}

// Send implements SMSSender.
func (LogSMSSender) Send(to, body string) error {
	log.Printf("SMS (not sent, no gateway configured) to %s: %s", to, body)
	return nil
}

// SOSResult summarizes one emergency fan-out.
type SOSResult struct {
	Event  *models.SOSEvent `json:"event"`
	Sent   []string         `json:"sent"`
	Failed []string         `json:"failed,omitempty"`
}

// SOSService fans an emergency message out to a contact list and
// records the event.
type SOSService struct {
	repo   *repository.SOSRepository
	sender SMSSender
}

// NewSOSService creates an SOS service.
func NewSOSService(repo *repository.SOSRepository, sender SMSSender) *SOSService {
	return &SOSService{repo: repo, sender: sender}
}

// Send dispatches the message to every contact concurrently and
// persists the outcome. Individual send failures don't abort the
// fan-out, and an event-log write failure doesn't fail the dispatch:
// reaching contacts matters more than bookkeeping.
func (s *SOSService) Send(req models.SendSOSRequest, userID string) *SOSResult {
	var mu sync.Mutex
	var wg sync.WaitGroup
	var sent, failed []string

	for _, contact := range req.Contacts {
		wg.Add(1)
		go func(to string) {
			defer wg.Done()
			err := s.sender.Send(to, req.Message)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("Failed to send SOS to %s: %v", to, err)
				failed = append(failed, to)
			} else {
				sent = append(sent, to)
			}
		}(contact)
	}
	wg.Wait()

	status := models.SOSStatusSent
	if len(failed) > 0 {
		status = models.SOSStatusFailed
	}

	event := &models.SOSEvent{
		ID:           uuid.NewString(),
		UserID:       userID,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		ContactsSent: len(sent),
		Status:       status,
	}
	if err := s.repo.Create(event); err != nil {
		log.Printf("Failed to record SOS event: %v", err)
	}

	return &SOSResult{Event: event, Sent: sent, Failed: failed}
}
