package scheduler

import (
	"time"

	"github.com/dkwon/comfystore-backend/internal/app/service"
	"github.com/dkwon/comfystore-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Orders abandoned at checkout are released after this long so their
// status stops looking actionable in the admin dashboard.
const stalePendingAge = 24 * time.Hour

// OrderScheduler cancels pending orders that were never paid.
type OrderScheduler struct {
	cron         *cron.Cron
	orderService service.OrderService
}

func NewOrderScheduler(orderService service.OrderService) *OrderScheduler {
	return &OrderScheduler{
		cron:         cron.New(),
		orderService: orderService,
	}
}

// Start registers the hourly sweep and starts the cron loop.
func (s *OrderScheduler) Start() error {
	_, err := s.cron.AddFunc("0 * * * *", func() {
		logger.Info("Starting stale order sweep", nil)

		count, err := s.orderService.ExpireStalePendingOrders(stalePendingAge)
		if err != nil {
			logger.Error("Stale order sweep failed", err)
			return
		}

		logger.Info("Stale order sweep finished", map[string]interface{}{
			"canceled": count,
		})
	})

	if err != nil {
		logger.Error("Failed to add cron job for stale order sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("Order scheduler started (hourly sweep)", nil)

	return nil
}

func (s *OrderScheduler) Stop() {
	logger.Info("Stopping order scheduler...", nil)
	s.cron.Stop()
	logger.Info("Order scheduler stopped", nil)
}
