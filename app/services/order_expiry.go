package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	expirySweepInterval = 5 * time.Minute
	pendingOrderMaxAge  = time.Hour
)

// ExpirySweeper cancels pending bank-transfer orders that were never
// paid. It runs once at startup and then on a fixed interval. Each
// cancellation re-checks status inside a guarded update, so a sweep that
// overlaps a manual transition loses the race cleanly.
type ExpirySweeper struct {
	orders   *OrderService
	interval time.Duration
	maxAge   time.Duration
}

func NewExpirySweeper(orders *OrderService) *ExpirySweeper {
	return &ExpirySweeper{
		orders:   orders,
		interval: expirySweepInterval,
		maxAge:   pendingOrderMaxAge,
	}
}

// Start launches the sweep loop. It stops when ctx is cancelled.
func (s *ExpirySweeper) Start(ctx context.Context) {
	go func() {
		s.sweep(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				zap.L().Info("expiry sweeper stopped")
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.maxAge)

	stale, err := s.orders.orderRepo.FindStalePendingBankTransfers(ctx, cutoff)
	if err != nil {
		zap.L().Error("expiry sweep query failed", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	cancelled := 0
	for _, order := range stale {
		ok, err := s.orders.CancelExpired(ctx, order.ID)
		if err != nil {
			zap.L().Error("failed to cancel expired order",
				zap.String("order_code", order.Code), zap.Error(err))
			continue
		}
		if ok {
			cancelled++
		}
	}

	zap.L().Info("expiry sweep finished",
		zap.Int("stale", len(stale)),
		zap.Int("cancelled", cancelled))
}
