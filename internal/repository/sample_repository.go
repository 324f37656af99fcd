package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/ink-check/internal/logging"
)

// SampleLog represents one processed handwriting sample upload,
// accepted or rejected.
type SampleLog struct {
	ID           uint      `gorm:"primaryKey"`
	RequestID    string    `gorm:"column:request_id;uniqueIndex;size:64"`
	UserID       string    `gorm:"column:user_id;index;size:64"`
	Accepted     bool      `gorm:"column:accepted"`
	RejectReason string    `gorm:"column:reject_reason;size:64"`
	Prediction   int       `gorm:"column:prediction"`
	Label        string    `gorm:"column:label;size:64"`
	Confidence   float64   `gorm:"column:confidence"`
	Details      string    `gorm:"column:details;type:text"`
	SHA1Hash     string    `gorm:"column:sha1_hash;index;size:40"`
	LatencyMs    float64   `gorm:"column:latency_ms"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name.
func (SampleLog) TableName() string {
	return "sample_logs"
}

// MetricsAggregation holds the raw aggregates computed by the database.
type MetricsAggregation struct {
	TotalCount        int64
	AcceptedCount     int64
	AverageConfidence float64
	AverageLatencyMs  float64
}

// SampleRepository provides persistence APIs for sample logs. Writes
// and reads retry on transient database errors with doubling backoff.
type SampleRepository struct {
	db             *gorm.DB
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewSampleRepository creates a new repository instance.
func NewSampleRepository(db *gorm.DB, logger *zap.Logger) *SampleRepository {
	return &SampleRepository{
		db:             db,
		logger:         logger.Named("sample_repository"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// AutoMigrate ensures the schema is available.
func (r *SampleRepository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&SampleLog{})
}

// SaveLog persists a sample log entry.
func (r *SampleRepository) SaveLog(ctx context.Context, log *SampleLog) error {
	return r.executeWithRetry(ctx, "repository.save_log", log.RequestID, func() error {
		return r.db.WithContext(ctx).Create(log).Error
	})
}

// FindByRequestIDAndUser retrieves a sample log matching the request and owner.
func (r *SampleRepository) FindByRequestIDAndUser(ctx context.Context, requestID, userID string) (*SampleLog, error) {
	var log SampleLog
	err := r.executeWithRetry(ctx, "repository.find_by_request_id", requestID, func() error {
		return r.db.WithContext(ctx).First(&log, "request_id = ? AND user_id = ?", requestID, userID).Error
	})
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// FindDuplicatesByHash returns the user's other submissions with the
// same content hash.
func (r *SampleRepository) FindDuplicatesByHash(ctx context.Context, userID, hash, excludeRequestID string) ([]*SampleLog, error) {
	var logs []*SampleLog
	err := r.executeWithRetry(ctx, "repository.find_duplicates", excludeRequestID, func() error {
		return r.db.WithContext(ctx).
			Where("user_id = ? AND sha1_hash = ? AND request_id <> ?", userID, hash, excludeRequestID).
			Order("created_at ASC").
			Find(&logs).Error
	})
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// AggregateMetrics computes acceptance and latency aggregates over all
// sample logs. Confidence is averaged over accepted samples only.
func (r *SampleRepository) AggregateMetrics(ctx context.Context) (*MetricsAggregation, error) {
	var agg MetricsAggregation
	err := r.executeWithRetry(ctx, "repository.aggregate_metrics", "", func() error {
		row := r.db.WithContext(ctx).Model(&SampleLog{}).
			Select("COUNT(*)," +
				"COALESCE(SUM(CASE WHEN accepted THEN 1 ELSE 0 END), 0)," +
				"COALESCE(AVG(CASE WHEN accepted THEN confidence END), 0)," +
				"COALESCE(AVG(latency_ms), 0)").
			Row()
		return row.Scan(&agg.TotalCount, &agg.AcceptedCount, &agg.AverageConfidence, &agg.AverageLatencyMs)
	})
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func (r *SampleRepository) executeWithRetry(ctx context.Context, operation, requestID string, fn func() error) error {
	if r.retryAttempts <= 1 {
		return logging.NewOperationError(operation, requestID, fn())
	}

	backoff := r.initialBackoff
	opLogger := logging.WithOperation(r.logger, operation, requestID)
	var err error
	for attempt := 0; attempt < r.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, requestID, ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= r.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("database operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}

		if !logging.IsTransient(err) || attempt == r.retryAttempts-1 {
			opLogger.Error("database operation failed", zap.Error(err), zap.Int("attempt", attempt+1))
			return logging.NewOperationError(operation, requestID, err)
		}

		opLogger.Warn("transient database error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, requestID, err)
}
