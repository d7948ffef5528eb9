// Package metrics 提供 Prometheus helper，覆盖 HTTP 与撮合流水线的业务指标
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/privx-exchange/privx-exchange-backend/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal prometheus.Counter
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 已摄取区块数
	BlocksIngestedTotal prometheus.Counter
	// 已创建订单数
	OrdersCreatedTotal prometheus.Counter
	// 当前区块水位
	WatermarkHeight prometheus.Gauge

	// 撮合轮次计数
	MatchCyclesTotal prometheus.Counter
	// 已撮合成交数
	TradesMatchedTotal prometheus.Counter

	// 已上链结算成交数
	TradesSettledTotal prometheus.Counter
	// 结算失败计数
	SettlementFailuresTotal prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "privx",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "privx",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		BlocksIngestedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "privx",
			Subsystem: serviceName,
			Name:      "blocks_ingested_total",
			Help:      "Total ledger blocks ingested",
		}),
		OrdersCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "privx",
			Subsystem: serviceName,
			Name:      "orders_created_total",
			Help:      "Total orders decoded from ledger blocks",
		}),
		WatermarkHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "privx",
			Subsystem: serviceName,
			Name:      "watermark_height",
			Help:      "Highest fully ingested ledger height",
		}),
		MatchCyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "privx",
			Subsystem: serviceName,
			Name:      "match_cycles_total",
			Help:      "Total matching cycles executed",
		}),
		TradesMatchedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "privx",
			Subsystem: serviceName,
			Name:      "trades_matched_total",
			Help:      "Total trades produced by the matching engine",
		}),
		TradesSettledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "privx",
			Subsystem: serviceName,
			Name:      "trades_settled_total",
			Help:      "Total trades settled on chain",
		}),
		SettlementFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "privx",
			Subsystem: serviceName,
			Name:      "settlement_failures_total",
			Help:      "Total failed settlement attempts",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BlocksIngestedTotal,
		m.OrdersCreatedTotal,
		m.WatermarkHeight,
		m.MatchCyclesTotal,
		m.TradesMatchedTotal,
		m.TradesSettledTotal,
		m.SettlementFailuresTotal,
	}

	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			return fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return nil
}

// StartHTTPServer 启动 Prometheus 指标 HTTP 服务
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error(context.Background(), "metrics server exited", "error", err)
		}
	}()

	logger.Info(context.Background(), "metrics server started", "addr", addr, "path", path)
	return nil
}
