package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	common_models "cxtrack/internal/common/models"
	"cxtrack/internal/features/audit"
	"cxtrack/internal/features/catalog"
	"cxtrack/internal/features/user"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrValidation    = errors.New("invalid report")
	ErrNotFound      = errors.New("report not found")
	ErrForbidden     = errors.New("you do not have access to this report")
	ErrSelfShare     = errors.New("cannot share a report with its owner")
	ErrAlreadyShared = errors.New("report is already shared with this user")
)

type CreateReportInput struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	ReportConfig ReportConfig `json:"report_config"`
	IsPublic     bool         `json:"is_public"`
}

type UpdateReportInput struct {
	Name         *string       `json:"name"`
	Description  *string       `json:"description"`
	ReportConfig *ReportConfig `json:"report_config"`
}

type ShareInput struct {
	UserID     string     `json:"user_id"`
	Permission Permission `json:"permission"`
}

type ReportService interface {
	Create(ctx context.Context, orgID, userID primitive.ObjectID, input CreateReportInput) (*CustomReport, error)
	Get(ctx context.Context, id string, orgID, userID primitive.ObjectID) (*CustomReport, error)
	List(ctx context.Context, orgID, userID primitive.ObjectID, query, source string, sortBy SortBy) ([]CustomReport, error)
	Update(ctx context.Context, id string, orgID, userID primitive.ObjectID, input UpdateReportInput) (*CustomReport, error)
	Duplicate(ctx context.Context, id string, orgID, userID primitive.ObjectID) (*CustomReport, error)
	ToggleFavorite(ctx context.Context, id string, orgID, userID primitive.ObjectID) (*CustomReport, error)
	TogglePublic(ctx context.Context, id string, orgID, userID primitive.ObjectID) (*CustomReport, error)
	Delete(ctx context.Context, id string, orgID, userID primitive.ObjectID) error
	AddShare(ctx context.Context, reportID string, orgID, userID primitive.ObjectID, input ShareInput) (*ReportShare, error)
	UpdateShare(ctx context.Context, reportID, shareID string, orgID, userID primitive.ObjectID, permission Permission) error
	RemoveShare(ctx context.Context, reportID, shareID string, orgID, userID primitive.ObjectID) error
	ListShares(ctx context.Context, reportID string, orgID, userID primitive.ObjectID) ([]ReportShare, error)
	CanView(ctx context.Context, report *CustomReport, orgID, userID primitive.ObjectID) bool
	CanEdit(ctx context.Context, report *CustomReport, orgID, userID primitive.ObjectID) bool
}

type ReportServiceImpl struct {
	Repo      ReportRepository
	ShareRepo ShareRepository
	UserRepo  user.UserRepository
	Catalog   *catalog.Catalog
	Audit     audit.AuditService
	Logger    *zap.Logger
}

func NewReportService(repo ReportRepository, shareRepo ShareRepository, userRepo user.UserRepository, cat *catalog.Catalog, auditSvc audit.AuditService, logger *zap.Logger) ReportService {
	return &ReportServiceImpl{
		Repo:      repo,
		ShareRepo: shareRepo,
		UserRepo:  userRepo,
		Catalog:   cat,
		Audit:     auditSvc,
		Logger:    logger,
	}
}

func (s *ReportServiceImpl) Create(ctx context.Context, orgID, userID primitive.ObjectID, input CreateReportInput) (*CustomReport, error) {
	name := strings.TrimSpace(input.Name)
	if err := Validate(name, input.ReportConfig, s.Catalog); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	var description *string
	if d := strings.TrimSpace(input.Description); d != "" {
		description = &d
	}

	report := &CustomReport{
		OrganizationID: orgID,
		CreatedBy:      userID,
		Name:           name,
		Description:    description,
		ReportConfig:   input.ReportConfig,
		IsPublic:       input.IsPublic,
	}
	if err := s.Repo.Create(ctx, report); err != nil {
		return nil, err
	}

	if err := s.Audit.LogChange(ctx, common_models.AuditActionCreate, "report", report.ID.Hex(), map[string]common_models.Change{
		"name": {Old: nil, New: report.Name},
	}); err != nil {
		s.Logger.Warn("failed to write audit log", zap.Error(err))
	}

	return report, nil
}

func (s *ReportServiceImpl) Get(ctx context.Context, id string, orgID, userID primitive.ObjectID) (*CustomReport, error) {
	report, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !s.CanView(ctx, report, orgID, userID) {
		return nil, ErrForbidden
	}
	return report, nil
}

// List returns every report in the organization the caller can view, then
// applies the in-memory search, source filter and sort.
func (s *ReportServiceImpl) List(ctx context.Context, orgID, userID primitive.ObjectID, query, source string, sortBy SortBy) ([]CustomReport, error) {
	reports, err := s.Repo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	visible := make([]CustomReport, 0, len(reports))
	for i := range reports {
		if s.CanView(ctx, &reports[i], orgID, userID) {
			visible = append(visible, reports[i])
		}
	}

	return ProjectList(visible, query, source, sortBy, s.Catalog), nil
}

func (s *ReportServiceImpl) Update(ctx context.Context, id string, orgID, userID primitive.ObjectID, input UpdateReportInput) (*CustomReport, error) {
	report, err := s.Get(ctx, id, orgID, userID)
	if err != nil {
		return nil, err
	}
	if !s.CanEdit(ctx, report, orgID, userID) {
		return nil, ErrForbidden
	}

	fields := bson.M{}
	changes := map[string]common_models.Change{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: report name is required", ErrValidation)
		}
		fields["name"] = name
		changes["name"] = common_models.Change{Old: report.Name, New: name}
	}
	if input.Description != nil {
		if d := strings.TrimSpace(*input.Description); d == "" {
			fields["description"] = nil
		} else {
			fields["description"] = d
		}
	}
	if input.ReportConfig != nil {
		name := report.Name
		if n, ok := fields["name"].(string); ok {
			name = n
		}
		if err := Validate(name, *input.ReportConfig, s.Catalog); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValidation, err)
		}
		fields["report_config"] = *input.ReportConfig
		changes["report_config"] = common_models.Change{Old: report.ReportConfig.DataSource, New: input.ReportConfig.DataSource}
	}

	if len(fields) == 0 {
		return report, nil
	}

	updated, err := s.Repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	if err := s.Audit.LogChange(ctx, common_models.AuditActionUpdate, "report", id, changes); err != nil {
		s.Logger.Warn("failed to write audit log", zap.Error(err))
	}

	return updated, nil
}

// Duplicate copies a report the caller can view into a new report owned by
// the caller. Shares are not copied.
func (s *ReportServiceImpl) Duplicate(ctx context.Context, id string, orgID, userID primitive.ObjectID) (*CustomReport, error) {
	source, err := s.Get(ctx, id, orgID, userID)
	if err != nil {
		return nil, err
	}

	dup := &CustomReport{
		OrganizationID: orgID,
		CreatedBy:      userID,
		Name:           source.Name + " (Copy)",
		Description:    source.Description,
		ReportConfig:   source.ReportConfig,
		IsPublic:       false,
	}
	if err := s.Repo.Create(ctx, dup); err != nil {
		return nil, err
	}

	if err := s.Audit.LogChange(ctx, common_models.AuditActionCreate, "report", dup.ID.Hex(), map[string]common_models.Change{
		"duplicated_from": {Old: nil, New: id},
	}); err != nil {
		s.Logger.Warn("failed to write audit log", zap.Error(err))
	}

	return dup, nil
}

func (s *ReportServiceImpl) ToggleFavorite(ctx context.Context, id string, orgID, userID primitive.ObjectID) (*CustomReport, error) {
	report, err := s.Get(ctx, id, orgID, userID)
	if err != nil {
		return nil, err
	}
	return s.Repo.Update(ctx, id, bson.M{"is_favorite": !report.IsFavorite})
}

func (s *ReportServiceImpl) TogglePublic(ctx context.Context, id string, orgID, userID primitive.ObjectID) (*CustomReport, error) {
	report, err := s.Get(ctx, id, orgID, userID)
	if err != nil {
		return nil, err
	}
	if report.CreatedBy != userID {
		return nil, ErrForbidden
	}

	updated, err := s.Repo.Update(ctx, id, bson.M{"is_public": !report.IsPublic})
	if err != nil {
		return nil, err
	}

	if err := s.Audit.LogChange(ctx, common_models.AuditActionShare, "report", id, map[string]common_models.Change{
		"is_public": {Old: report.IsPublic, New: updated.IsPublic},
	}); err != nil {
		s.Logger.Warn("failed to write audit log", zap.Error(err))
	}

	return updated, nil
}

func (s *ReportServiceImpl) Delete(ctx context.Context, id string, orgID, userID primitive.ObjectID) error {
	report, err := s.Get(ctx, id, orgID, userID)
	if err != nil {
		return err
	}
	if report.CreatedBy != userID {
		return ErrForbidden
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.ShareRepo.DeleteByReport(ctx, report.ID); err != nil {
		s.Logger.Warn("failed to delete shares for report", zap.String("report_id", id), zap.Error(err))
	}

	if err := s.Audit.LogChange(ctx, common_models.AuditActionDelete, "report", id, map[string]common_models.Change{
		"name": {Old: report.Name, New: nil},
	}); err != nil {
		s.Logger.Warn("failed to write audit log", zap.Error(err))
	}

	return nil
}

func (s *ReportServiceImpl) AddShare(ctx context.Context, reportID string, orgID, userID primitive.ObjectID, input ShareInput) (*ReportShare, error) {
	report, err := s.Get(ctx, reportID, orgID, userID)
	if err != nil {
		return nil, err
	}
	if report.CreatedBy != userID {
		return nil, ErrForbidden
	}

	targetID, err := primitive.ObjectIDFromHex(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	if targetID == report.CreatedBy {
		return nil, ErrSelfShare
	}
	if input.Permission != PermissionViewer && input.Permission != PermissionEditor {
		return nil, fmt.Errorf("%w: permission must be viewer or editor", ErrValidation)
	}

	if existing, err := s.ShareRepo.FindForUser(ctx, report.ID, targetID); err == nil && existing != nil {
		return nil, ErrAlreadyShared
	}

	share := &ReportShare{
		ReportID:   report.ID,
		UserID:     targetID,
		Permission: input.Permission,
	}
	if err := s.ShareRepo.Create(ctx, share); err != nil {
		return nil, err
	}

	if err := s.Audit.LogChange(ctx, common_models.AuditActionShare, "report", reportID, map[string]common_models.Change{
		"shared_with": {Old: nil, New: input.UserID},
	}); err != nil {
		s.Logger.Warn("failed to write audit log", zap.Error(err))
	}

	return share, nil
}

func (s *ReportServiceImpl) UpdateShare(ctx context.Context, reportID, shareID string, orgID, userID primitive.ObjectID, permission Permission) error {
	report, err := s.Get(ctx, reportID, orgID, userID)
	if err != nil {
		return err
	}
	if report.CreatedBy != userID {
		return ErrForbidden
	}
	if permission != PermissionViewer && permission != PermissionEditor {
		return fmt.Errorf("%w: permission must be viewer or editor", ErrValidation)
	}

	share, err := s.ShareRepo.Get(ctx, shareID)
	if err != nil {
		return ErrNotFound
	}
	if share.ReportID != report.ID {
		return ErrNotFound
	}

	return s.ShareRepo.UpdatePermission(ctx, shareID, permission)
}

func (s *ReportServiceImpl) RemoveShare(ctx context.Context, reportID, shareID string, orgID, userID primitive.ObjectID) error {
	report, err := s.Get(ctx, reportID, orgID, userID)
	if err != nil {
		return err
	}
	if report.CreatedBy != userID {
		return ErrForbidden
	}

	share, err := s.ShareRepo.Get(ctx, shareID)
	if err != nil {
		return ErrNotFound
	}
	if share.ReportID != report.ID {
		return ErrNotFound
	}

	return s.ShareRepo.Delete(ctx, shareID)
}

func (s *ReportServiceImpl) ListShares(ctx context.Context, reportID string, orgID, userID primitive.ObjectID) ([]ReportShare, error) {
	report, err := s.Get(ctx, reportID, orgID, userID)
	if err != nil {
		return nil, err
	}

	shares, err := s.ShareRepo.ListByReport(ctx, report.ID)
	if err != nil {
		return nil, err
	}
	if len(shares) == 0 {
		return shares, nil
	}

	ids := make([]string, 0, len(shares))
	for _, sh := range shares {
		ids = append(ids, sh.UserID.Hex())
	}
	users, err := s.UserRepo.FindByIDs(ctx, ids)
	if err != nil {
		s.Logger.Warn("failed to load users for shares", zap.Error(err))
		return shares, nil
	}

	byID := make(map[primitive.ObjectID]common_models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range shares {
		if u, ok := byID[shares[i].UserID]; ok {
			shares[i].UserName = u.FullName
			shares[i].UserEmail = u.Email
		}
	}

	return shares, nil
}

// CanView resolves read access: the owner, a user the report is shared
// with, or any organization member when the report is public.
func (s *ReportServiceImpl) CanView(ctx context.Context, report *CustomReport, orgID, userID primitive.ObjectID) bool {
	if report.OrganizationID != orgID {
		return false
	}
	if report.CreatedBy == userID {
		return true
	}
	if report.IsPublic {
		return true
	}
	share, err := s.ShareRepo.FindForUser(ctx, report.ID, userID)
	return err == nil && share != nil
}

// CanEdit resolves write access: the owner or an editor share. Public
// visibility never grants edit rights.
func (s *ReportServiceImpl) CanEdit(ctx context.Context, report *CustomReport, orgID, userID primitive.ObjectID) bool {
	if report.OrganizationID != orgID {
		return false
	}
	if report.CreatedBy == userID {
		return true
	}
	share, err := s.ShareRepo.FindForUser(ctx, report.ID, userID)
	return err == nil && share != nil && share.Permission == PermissionEditor
}
