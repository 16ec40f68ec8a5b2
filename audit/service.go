package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kasuganosora/modguard/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type requestInfoKey struct{}

type requestInfo struct {
	TraceID string
	IP      string
}

// WithRequestInfo attaches the request trace ID and client address to the
// context so entries written downstream carry them. The HTTP middleware
// calls this once per request.
func WithRequestInfo(ctx context.Context, traceID, ip string) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, requestInfo{TraceID: traceID, IP: ip})
}

// RequestInfo returns the trace ID and client address attached by
// WithRequestInfo, or empty strings outside a request.
func RequestInfo(ctx context.Context) (traceID, ip string) {
	if info, ok := ctx.Value(requestInfoKey{}).(requestInfo); ok {
		return info.TraceID, info.IP
	}
	return "", ""
}

// Entry holds one staff action to be logged.
type Entry struct {
	TraceID        string
	ActorIdentity  string
	ActorName      string
	Action         string
	TargetIdentity string
	Detail         interface{}
	Error          string
	IP             string
}

// Service writes audit entries asynchronously in batches so the hot path
// never waits on the store.
type Service struct {
	db     *gorm.DB
	ch     chan *model.AuditLog
	stopCh chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates the audit Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:     db,
		ch:     make(chan *model.AuditLog, 1024),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Log enqueues an entry. When the queue is full the entry is dropped with
// a warning rather than blocking a moderation action.
func (svc *Service) Log(entry Entry) {
	detailJSON, _ := json.Marshal(entry.Detail)
	record := &model.AuditLog{
		TraceID:        entry.TraceID,
		ActorIdentity:  entry.ActorIdentity,
		ActorName:      entry.ActorName,
		Action:         entry.Action,
		TargetIdentity: entry.TargetIdentity,
		Detail:         datatypes.JSON(detailJSON),
		Error:          entry.Error,
		IP:             entry.IP,
		CreatedAt:      time.Now(),
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Warn("audit channel full, dropping entry",
			zap.String("action", entry.Action))
	}
}

// Stop flushes remaining entries and shuts down the worker. It blocks
// until the worker goroutine has finished.
func (svc *Service) Stop() {
	select {
	case <-svc.stopCh:
	default:
		close(svc.stopCh)
	}
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	batch := make([]*model.AuditLog, 0, 100)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("audit batch write failed", zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= 100 {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			// Drain remaining entries.
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}
