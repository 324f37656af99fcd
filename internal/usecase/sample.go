package usecase

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/ink-check/internal/classifier"
	"github.com/example/ink-check/internal/imaging"
	"github.com/example/ink-check/internal/logging"
	"github.com/example/ink-check/internal/repository"
)

// SampleRepository defines the persistence operations needed by the use case.
type SampleRepository interface {
	SaveLog(ctx context.Context, log *repository.SampleLog) error
	FindByRequestIDAndUser(ctx context.Context, requestID, userID string) (*repository.SampleLog, error)
	FindDuplicatesByHash(ctx context.Context, userID, hash, excludeRequestID string) ([]*repository.SampleLog, error)
	AggregateMetrics(ctx context.Context) (*repository.MetricsAggregation, error)
}

// Runner dispatches CPU-bound pipeline work off the request path.
type Runner interface {
	Do(ctx context.Context, fn func() ([]byte, error)) ([]byte, error)
}

// SampleUseCase encapsulates the submit-validate-classify flow.
type SampleUseCase struct {
	repo           SampleRepository
	cache          Cache
	pipeline       *imaging.Pipeline
	runner         Runner
	classifier     classifier.Client
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// SampleResult is the outcome handed back to the transport layer.
// Reason and Message are set on rejection; Prediction, Label and
// Confidence on acceptance.
type SampleResult struct {
	RequestID  string
	Accepted   bool
	Reason     imaging.FailureReason
	Message    string
	Prediction int
	Label      string
	Confidence float64
}

type cachedSample struct {
	RequestID  string    `json:"request_id"`
	UserID     string    `json:"user_id"`
	Accepted   bool      `json:"accepted"`
	Reason     string    `json:"reason,omitempty"`
	Message    string    `json:"message,omitempty"`
	Prediction int       `json:"prediction"`
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Hash       string    `json:"sha1_hash"`
	CreatedAt  time.Time `json:"created_at"`
}

// DuplicateReport lists a user's other submissions with identical content.
type DuplicateReport struct {
	Request    *repository.SampleLog
	Duplicates []*repository.SampleLog
}

// NewSampleUseCase constructs a new use case instance.
func NewSampleUseCase(repo SampleRepository, cache Cache, pipeline *imaging.Pipeline, runner Runner, cl classifier.Client, logger *zap.Logger) *SampleUseCase {
	return &SampleUseCase{
		repo:           repo,
		cache:          cache,
		pipeline:       pipeline,
		runner:         runner,
		classifier:     cl,
		logger:         logger.Named("sample_usecase"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// SubmitSample runs the canonicalization pipeline on a background
// worker and, when the image is accepted, sends the canonical buffer to
// the classifier. A rejected image is a domain result, not an error:
// the rejection is persisted and returned with Accepted=false, and the
// classifier is never called for it.
func (uc *SampleUseCase) SubmitSample(ctx context.Context, userID string, imageBytes []byte) (*SampleResult, error) {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.submit_sample", requestID)
	started := time.Now()

	cacheKey := "sample:" + requestID
	if err := uc.withRedisRetry(ctx, requestID, "cache.set.processing", func() error {
		return uc.cache.Set(ctx, cacheKey, "processing", time.Minute)
	}); err != nil {
		opLogger.Error("failed to set processing flag", zap.Error(err))
		return nil, err
	}

	hash := sha1.Sum(imageBytes)
	hashHex := hex.EncodeToString(hash[:])

	canonical, err := uc.runner.Do(ctx, func() ([]byte, error) {
		return uc.pipeline.Process(imageBytes)
	})
	if err != nil {
		var (
			decodeErr     *imaging.DecodeError
			validationErr *imaging.ValidationError
			outcome       imaging.Outcome
		)
		switch {
		case errors.As(err, &validationErr):
			outcome = validationErr.Outcome
		case errors.As(err, &decodeErr):
			outcome = decodeErr.Outcome()
		default:
			wrapped := logging.NewOperationError("usecase.pipeline_process", requestID, err)
			opLogger.Error("pipeline dispatch failed", zap.Error(wrapped))
			return nil, wrapped
		}
		return uc.finishRejected(ctx, opLogger, requestID, userID, hashHex, outcome, started)
	}

	result, err := uc.classifier.Classify(ctx, canonical)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.classify_sample", requestID, err)
		opLogger.Error("classifier call failed", zap.Error(wrapped))
		return nil, wrapped
	}

	log := &repository.SampleLog{
		RequestID:  requestID,
		UserID:     userID,
		Accepted:   true,
		Prediction: result.Prediction,
		Label:      result.Label,
		Confidence: result.Confidence,
		Details:    "classified as " + result.Label,
		SHA1Hash:   hashHex,
		LatencyMs:  float64(time.Since(started).Microseconds()) / 1000.0,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.repo.SaveLog(ctx, log); err != nil {
		wrapped := logging.NewOperationError("usecase.save_log", requestID, err)
		opLogger.Error("failed to persist sample log", zap.Error(wrapped))
		return nil, wrapped
	}

	if err := uc.cacheResult(ctx, requestID, cacheKey, log); err != nil {
		opLogger.Error("failed to cache sample result", zap.Error(err))
		return nil, err
	}

	return &SampleResult{
		RequestID:  requestID,
		Accepted:   true,
		Prediction: result.Prediction,
		Label:      result.Label,
		Confidence: result.Confidence,
	}, nil
}

func (uc *SampleUseCase) finishRejected(ctx context.Context, opLogger *zap.Logger, requestID, userID, hashHex string, outcome imaging.Outcome, started time.Time) (*SampleResult, error) {
	log := &repository.SampleLog{
		RequestID:    requestID,
		UserID:       userID,
		Accepted:     false,
		RejectReason: string(outcome.Reason),
		Details:      outcome.Message,
		SHA1Hash:     hashHex,
		LatencyMs:    float64(time.Since(started).Microseconds()) / 1000.0,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.repo.SaveLog(ctx, log); err != nil {
		wrapped := logging.NewOperationError("usecase.save_log", requestID, err)
		opLogger.Error("failed to persist rejection", zap.Error(wrapped))
		return nil, wrapped
	}

	if err := uc.cacheResult(ctx, requestID, "sample:"+requestID, log); err != nil {
		opLogger.Error("failed to cache rejection", zap.Error(err))
		return nil, err
	}

	opLogger.Info("sample rejected",
		zap.String("reason", string(outcome.Reason)),
		zap.String("user_id", userID))

	return &SampleResult{
		RequestID: requestID,
		Accepted:  false,
		Reason:    outcome.Reason,
		Message:   outcome.Message,
	}, nil
}

func (uc *SampleUseCase) cacheResult(ctx context.Context, requestID, cacheKey string, log *repository.SampleLog) error {
	cached := cachedSample{
		RequestID:  log.RequestID,
		UserID:     log.UserID,
		Accepted:   log.Accepted,
		Reason:     log.RejectReason,
		Message:    log.Details,
		Prediction: log.Prediction,
		Label:      log.Label,
		Confidence: log.Confidence,
		Hash:       log.SHA1Hash,
		CreatedAt:  log.CreatedAt,
	}
	serialized, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return uc.withRedisRetry(ctx, requestID, "cache.set.result", func() error {
		return uc.cache.Set(ctx, cacheKey, string(serialized), 5*time.Minute)
	})
}

// GetResult retrieves a cached sample outcome or falls back to persistence.
func (uc *SampleUseCase) GetResult(ctx context.Context, userID, requestID string) (*repository.SampleLog, error) {
	cacheKey := "sample:" + requestID
	if cached, err := uc.withRedisGet(ctx, requestID, "cache.get.result", cacheKey); err == nil {
		var payload cachedSample
		if err := json.Unmarshal([]byte(cached), &payload); err != nil {
			logging.WithOperation(uc.logger, "usecase.get_result", requestID).Warn("failed to decode cached result", zap.Error(err))
		} else if payload.RequestID != "" {
			return &repository.SampleLog{
				RequestID:    payload.RequestID,
				UserID:       payload.UserID,
				Accepted:     payload.Accepted,
				RejectReason: payload.Reason,
				Prediction:   payload.Prediction,
				Label:        payload.Label,
				Confidence:   payload.Confidence,
				Details:      payload.Message,
				SHA1Hash:     payload.Hash,
				CreatedAt:    payload.CreatedAt,
			}, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		logging.WithOperation(uc.logger, "usecase.get_result", requestID).Warn("failed to read cache", zap.Error(err))
	}

	return uc.repo.FindByRequestIDAndUser(ctx, requestID, userID)
}

// GetDuplicateReport builds a duplicate detection report for a submission.
func (uc *SampleUseCase) GetDuplicateReport(ctx context.Context, userID, requestID string) (*DuplicateReport, error) {
	log, err := uc.repo.FindByRequestIDAndUser(ctx, requestID, userID)
	if err != nil {
		return nil, err
	}

	duplicates, err := uc.repo.FindDuplicatesByHash(ctx, userID, log.SHA1Hash, log.RequestID)
	if err != nil {
		return nil, err
	}

	return &DuplicateReport{Request: log, Duplicates: duplicates}, nil
}

func (uc *SampleUseCase) withRedisRetry(ctx context.Context, requestID, operation string, fn func() error) error {
	if uc.retryAttempts <= 1 {
		return logging.NewOperationError(operation, requestID, fn())
	}

	backoff := uc.initialBackoff
	opLogger := logging.WithOperation(uc.logger, operation, requestID)
	var err error
	for attempt := 0; attempt < uc.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, requestID, ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= uc.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("redis operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}

		if !logging.IsTransient(err) || attempt == uc.retryAttempts-1 {
			opLogger.Error("redis operation failed", zap.Error(err), zap.Int("attempt", attempt+1))
			return logging.NewOperationError(operation, requestID, err)
		}

		opLogger.Warn("transient redis error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, requestID, err)
}

func (uc *SampleUseCase) withRedisGet(ctx context.Context, requestID, operation, cacheKey string) (string, error) {
	var result string
	err := uc.withRedisRetry(ctx, requestID, operation, func() error {
		value, err := uc.cache.Get(ctx, cacheKey)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}
