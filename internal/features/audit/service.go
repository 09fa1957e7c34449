package audit

import (
	"context"
	"time"

	common_models "cxtrack/internal/common/models"
	"cxtrack/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error)
}

type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error)
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

type AuditServiceImpl struct {
	Repo     AuditRepository
	UserRepo UserFinder
}

func NewAuditService(repo AuditRepository, userRepo UserFinder) AuditService {
	return &AuditServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	actorID := "system"
	var orgID primitive.ObjectID
	if claims, ok := ctx.Value(utils.UserClaimsKey).(*utils.UserClaims); ok {
		actorID = claims.UserID
		if oid, err := primitive.ObjectIDFromHex(claims.OrganizationID); err == nil {
			orgID = oid
		}
	}

	log := common_models.AuditLog{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Action:         action,
		Module:         module,
		RecordID:       recordID,
		ActorID:        actorID,
		Changes:        changes,
		Timestamp:      time.Now(),
	}

	return s.Repo.Create(ctx, log)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit
	logs, err := s.Repo.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, err
	}

	// Collect actor IDs for name enrichment
	actorIDs := make([]string, 0)
	uniqueIDs := make(map[string]bool)
	for _, log := range logs {
		if log.ActorID != "system" && log.ActorID != "" && !uniqueIDs[log.ActorID] {
			uniqueIDs[log.ActorID] = true
			actorIDs = append(actorIDs, log.ActorID)
		}
	}

	userMap := make(map[string]string)
	if len(actorIDs) > 0 {
		if users, err := s.UserRepo.FindByIDs(ctx, actorIDs); err == nil {
			for _, u := range users {
				userMap[u.ID.Hex()] = u.FullName
			}
		}
	}

	for i := range logs {
		if name, ok := userMap[logs[i].ActorID]; ok {
			logs[i].ActorName = name
		}
	}

	return logs, nil
}

func (s *AuditServiceImpl) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return s.Repo.DeleteOlderThan(ctx, time.Now().Add(-retention))
}
