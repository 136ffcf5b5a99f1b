package scheduler

import (
	"log"
	"time"

	"github.com/orykevin/chef-rizzranker/internal/models"
	"github.com/orykevin/chef-rizzranker/internal/services"
)

// Scheduler keeps a character featured for every day. It checks at startup
// and then on every tick whether today (UTC) already has a character, and
// generates one when it does not. The unique index on active_date makes a
// duplicate create from overlapping instances fail harmlessly.
type Scheduler struct {
	characters *services.CharacterService
	interval   time.Duration

	stopCh chan struct{}
}

func New(characters *services.CharacterService, interval time.Duration) *Scheduler {
	return &Scheduler{
		characters: characters,
		interval:   interval,
		stopCh:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.ensureToday()
	go s.loop()
	log.Println("[Scheduler] started")
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
	log.Println("[Scheduler] stopped")
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.ensureToday()
		}
	}
}

func (s *Scheduler) ensureToday() {
	today := time.Now().UTC().Format(models.ActiveDateLayout)
	if _, err := s.characters.EnsureDailyCharacter(today); err != nil {
		log.Printf("[Scheduler] failed to ensure character for %s: %v", today, err)
	}
}
