package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	NotificationDispatchJobName = "notification_dispatch"
	LowStockScanJobName         = "low_stock_scan"
)

// NotificationDispatcher is the part of the notification service the jobs drive
type NotificationDispatcher interface {
	DispatchPending(ctx context.Context, limit int) (sent int, failed int, err error)
	QueueLowStockAlerts(ctx context.Context) (int, error)
}

// NotificationDispatchJob delivers queued notifications in batches
type NotificationDispatchJob struct {
	service   NotificationDispatcher
	batchSize int
	timeout   time.Duration
	logger    *zap.Logger
}

func NewNotificationDispatchJob(service NotificationDispatcher, batchSize int, timeout time.Duration, logger *zap.Logger) *NotificationDispatchJob {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &NotificationDispatchJob{
		service:   service,
		batchSize: batchSize,
		timeout:   timeout,
		logger:    logger,
	}
}

func (j *NotificationDispatchJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	sent, failed, err := j.service.DispatchPending(ctx, j.batchSize)
	if err != nil {
		j.logger.Error("notification dispatch failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if sent+failed == 0 {
		return
	}
	j.logger.Info("notification dispatch completed",
		zap.Int("sent", sent),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
}

// LowStockScanJob queues a LOW_STOCK alert for each inventory row at or below its reorder point
type LowStockScanJob struct {
	service NotificationDispatcher
	timeout time.Duration
	logger  *zap.Logger
}

func NewLowStockScanJob(service NotificationDispatcher, timeout time.Duration, logger *zap.Logger) *LowStockScanJob {
	return &LowStockScanJob{service: service, timeout: timeout, logger: logger}
}

func (j *LowStockScanJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	queued, err := j.service.QueueLowStockAlerts(ctx)
	if err != nil {
		j.logger.Error("low stock scan failed", zap.Error(err))
		return
	}
	j.logger.Info("low stock scan completed", zap.Int("alerts_queued", queued))
}
