package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersCancelledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of cancelled orders",
	}, []string{"by"})

	OrdersExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_expired_total",
		Help: "Total number of pending bank-transfer orders cancelled by the expiry sweep",
	})

	StockReservationsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_reservations_failed_total",
		Help: "Total number of stock reservations rejected by the conditional decrement",
	})

	CouponRedemptionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coupon_redemptions_total",
		Help: "Total number of coupons consumed by order creation",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
