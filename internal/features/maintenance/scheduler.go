package maintenance

import (
	"context"
	"time"

	"cxtrack/internal/config"
	"cxtrack/internal/database"
	"cxtrack/internal/features/audit"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Scheduler runs the nightly housekeeping jobs: pruning aged entries from
// the logs and audit_logs collections.
type Scheduler struct {
	cron      *cron.Cron
	db        *database.MongodbDB
	audit     audit.AuditService
	logger    *zap.Logger
	retention time.Duration
}

func NewScheduler(cfg *config.Config, db *database.MongodbDB, auditSvc audit.AuditService, logger *zap.Logger) *Scheduler {
	days := cfg.LogRetentionDays
	if days <= 0 {
		days = 90
	}
	return &Scheduler{
		cron:      cron.New(),
		db:        db,
		audit:     auditSvc,
		logger:    logger,
		retention: time.Duration(days) * 24 * time.Hour,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@daily", s.runPrune); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("maintenance scheduler started",
		zap.Duration("retention", s.retention))
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runPrune() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.retention)

	res, err := s.db.DB.Collection("logs").DeleteMany(ctx, bson.M{"created_on_utc": bson.M{"$lt": cutoff}})
	if err != nil {
		s.logger.Error("failed to prune logs", zap.Error(err))
	} else if res.DeletedCount > 0 {
		s.logger.Info("pruned logs", zap.Int64("deleted", res.DeletedCount))
	}

	deleted, err := s.audit.Prune(ctx, s.retention)
	if err != nil {
		s.logger.Error("failed to prune audit logs", zap.Error(err))
	} else if deleted > 0 {
		s.logger.Info("pruned audit logs", zap.Int64("deleted", deleted))
	}
}
