package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	paymentservice "github.com/zeer-gl/thiqa-gateway/internal/payments/service"
)

// Scheduler owns the gateway's periodic jobs.
type Scheduler struct {
	payments *paymentservice.PaymentService
}

func NewScheduler(payments *paymentservice.PaymentService) *Scheduler {
	return &Scheduler{payments: payments}
}

// Start initializes cron tasks
func (s *Scheduler) Start() {
	c := cron.New(cron.WithSeconds())

	// (12:00 AM) drop the cached payment-endpoint resolution so a moved
	// upstream path is picked up by the next request instead of a failure.
	_, err := c.AddFunc("0 0 0 * * *", func() {
		s.runNightlyJobs()
	})

	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Println("Cron scheduler started (running nightly at 12:00AM)")
	c.Start()
}

func (s *Scheduler) runNightlyJobs() {
	log.Println("Nightly job started (payment endpoint re-resolution)...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.payments.InvalidateEndpoint(ctx); err != nil {
		log.Printf("Endpoint invalidation failed: %v", err)
		return
	}

	log.Println("Nightly job completed successfully at:", time.Now().Format(time.RFC1123))
}
