package report

import (
	"context"
	"errors"
	"testing"
	"time"

	common_models "cxtrack/internal/common/models"
	"cxtrack/internal/features/catalog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type memReportRepo struct {
	reports map[string]*CustomReport
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{reports: make(map[string]*CustomReport)}
}

func (r *memReportRepo) Create(ctx context.Context, report *CustomReport) error {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	report.CreatedAt = time.Now()
	report.UpdatedAt = time.Now()
	cp := *report
	r.reports[report.ID.Hex()] = &cp
	return nil
}

func (r *memReportRepo) Get(ctx context.Context, id string) (*CustomReport, error) {
	report, ok := r.reports[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *report
	return &cp, nil
}

func (r *memReportRepo) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]CustomReport, error) {
	var out []CustomReport
	for _, rep := range r.reports {
		if rep.OrganizationID == orgID {
			out = append(out, *rep)
		}
	}
	return out, nil
}

func (r *memReportRepo) Update(ctx context.Context, id string, fields bson.M) (*CustomReport, error) {
	report, ok := r.reports[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	for k, v := range fields {
		switch k {
		case "name":
			report.Name = v.(string)
		case "description":
			if v == nil {
				report.Description = nil
			} else {
				d := v.(string)
				report.Description = &d
			}
		case "report_config":
			report.ReportConfig = v.(ReportConfig)
		case "is_public":
			report.IsPublic = v.(bool)
		case "is_favorite":
			report.IsFavorite = v.(bool)
		}
	}
	report.UpdatedAt = time.Now()
	cp := *report
	return &cp, nil
}

func (r *memReportRepo) Delete(ctx context.Context, id string) error {
	delete(r.reports, id)
	return nil
}

func (r *memReportRepo) EnsureIndexes(ctx context.Context) error { return nil }

type memShareRepo struct {
	shares map[string]*ReportShare
}

func newMemShareRepo() *memShareRepo {
	return &memShareRepo{shares: make(map[string]*ReportShare)}
}

func (r *memShareRepo) Create(ctx context.Context, share *ReportShare) error {
	if share.ID.IsZero() {
		share.ID = primitive.NewObjectID()
	}
	share.CreatedAt = time.Now()
	cp := *share
	r.shares[share.ID.Hex()] = &cp
	return nil
}

func (r *memShareRepo) Get(ctx context.Context, id string) (*ReportShare, error) {
	share, ok := r.shares[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *share
	return &cp, nil
}

func (r *memShareRepo) ListByReport(ctx context.Context, reportID primitive.ObjectID) ([]ReportShare, error) {
	var out []ReportShare
	for _, s := range r.shares {
		if s.ReportID == reportID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memShareRepo) FindForUser(ctx context.Context, reportID, userID primitive.ObjectID) (*ReportShare, error) {
	for _, s := range r.shares {
		if s.ReportID == reportID && s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memShareRepo) UpdatePermission(ctx context.Context, id string, permission Permission) error {
	share, ok := r.shares[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	share.Permission = permission
	return nil
}

func (r *memShareRepo) Delete(ctx context.Context, id string) error {
	delete(r.shares, id)
	return nil
}

func (r *memShareRepo) DeleteByReport(ctx context.Context, reportID primitive.ObjectID) error {
	for id, s := range r.shares {
		if s.ReportID == reportID {
			delete(r.shares, id)
		}
	}
	return nil
}

type memUserRepo struct {
	users map[string]common_models.User
}

func (r *memUserRepo) FindByID(ctx context.Context, id string) (*common_models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

func (r *memUserRepo) FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error) {
	var out []common_models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserRepo) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]common_models.User, error) {
	var out []common_models.User
	for _, u := range r.users {
		if u.OrganizationID == orgID {
			out = append(out, u)
		}
	}
	return out, nil
}

type noopAudit struct{}

func (noopAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	return nil
}

func (noopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

func (noopAudit) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return 0, nil
}

func newTestService() (*ReportServiceImpl, *memShareRepo) {
	shares := newMemShareRepo()
	svc := &ReportServiceImpl{
		Repo:      newMemReportRepo(),
		ShareRepo: shares,
		UserRepo:  &memUserRepo{users: map[string]common_models.User{}},
		Catalog:   catalog.New(),
		Audit:     noopAudit{},
		Logger:    zap.NewNop(),
	}
	return svc, shares
}

func TestCreateNormalizesInput(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	orgID, userID := primitive.NewObjectID(), primitive.NewObjectID()

	cfg := NewConfig(svc.Catalog, "invoices")
	created, err := svc.Create(ctx, orgID, userID, CreateReportInput{
		Name:         "  Revenue  ",
		Description:  "   ",
		ReportConfig: cfg,
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.Name != "Revenue" {
		t.Errorf("name = %q", created.Name)
	}
	if created.Description != nil {
		t.Errorf("blank description stored as %q", *created.Description)
	}

	_, err = svc.Create(ctx, orgID, userID, CreateReportInput{Name: "  ", ReportConfig: cfg})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("blank name error = %v", err)
	}
}

func TestAccessResolution(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	orgID := primitive.NewObjectID()
	owner, member, outsider := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	cfg := NewConfig(svc.Catalog, "invoices")
	private, err := svc.Create(ctx, orgID, owner, CreateReportInput{Name: "Private", ReportConfig: cfg})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Get(ctx, private.ID.Hex(), orgID, member); !errors.Is(err, ErrForbidden) {
		t.Errorf("unshared member access = %v, want forbidden", err)
	}
	if _, err := svc.Get(ctx, private.ID.Hex(), orgID, owner); err != nil {
		t.Errorf("owner access = %v", err)
	}

	// Viewer share grants read but not write.
	if _, err := svc.AddShare(ctx, private.ID.Hex(), orgID, owner, ShareInput{UserID: member.Hex(), Permission: PermissionViewer}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, private.ID.Hex(), orgID, member); err != nil {
		t.Errorf("shared viewer access = %v", err)
	}
	name := "Renamed"
	if _, err := svc.Update(ctx, private.ID.Hex(), orgID, member, UpdateReportInput{Name: &name}); !errors.Is(err, ErrForbidden) {
		t.Errorf("viewer update = %v, want forbidden", err)
	}

	// Public report: any organization member can view, other orgs cannot.
	public, _ := svc.Create(ctx, orgID, owner, CreateReportInput{Name: "Public", ReportConfig: cfg, IsPublic: true})
	if _, err := svc.Get(ctx, public.ID.Hex(), orgID, member); err != nil {
		t.Errorf("org member on public report = %v", err)
	}
	otherOrg := primitive.NewObjectID()
	if _, err := svc.Get(ctx, public.ID.Hex(), otherOrg, outsider); !errors.Is(err, ErrForbidden) {
		t.Errorf("cross-org access = %v, want forbidden", err)
	}
}

func TestEditorShareCanUpdate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	orgID, owner, editor := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	cfg := NewConfig(svc.Catalog, "invoices")
	rep, _ := svc.Create(ctx, orgID, owner, CreateReportInput{Name: "Shared", ReportConfig: cfg})
	if _, err := svc.AddShare(ctx, rep.ID.Hex(), orgID, owner, ShareInput{UserID: editor.Hex(), Permission: PermissionEditor}); err != nil {
		t.Fatal(err)
	}

	name := "Edited"
	updated, err := svc.Update(ctx, rep.ID.Hex(), orgID, editor, UpdateReportInput{Name: &name})
	if err != nil {
		t.Fatalf("editor update = %v", err)
	}
	if updated.Name != "Edited" {
		t.Errorf("name = %q", updated.Name)
	}

	// Editing rights never include deletion.
	if err := svc.Delete(ctx, rep.ID.Hex(), orgID, editor); !errors.Is(err, ErrForbidden) {
		t.Errorf("editor delete = %v, want forbidden", err)
	}
}

func TestShareRules(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	orgID, owner, member := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	cfg := NewConfig(svc.Catalog, "invoices")
	rep, _ := svc.Create(ctx, orgID, owner, CreateReportInput{Name: "R", ReportConfig: cfg})

	if _, err := svc.AddShare(ctx, rep.ID.Hex(), orgID, owner, ShareInput{UserID: owner.Hex(), Permission: PermissionViewer}); !errors.Is(err, ErrSelfShare) {
		t.Errorf("self share = %v", err)
	}

	if _, err := svc.AddShare(ctx, rep.ID.Hex(), orgID, owner, ShareInput{UserID: member.Hex(), Permission: PermissionViewer}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddShare(ctx, rep.ID.Hex(), orgID, owner, ShareInput{UserID: member.Hex(), Permission: PermissionEditor}); !errors.Is(err, ErrAlreadyShared) {
		t.Errorf("duplicate share = %v", err)
	}

	// Only the owner manages shares.
	if _, err := svc.AddShare(ctx, rep.ID.Hex(), orgID, member, ShareInput{UserID: primitive.NewObjectID().Hex(), Permission: PermissionViewer}); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner share = %v", err)
	}
}

func TestDuplicate(t *testing.T) {
	svc, shares := newTestService()
	ctx := context.Background()
	orgID, owner, member := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	cfg := NewConfig(svc.Catalog, "invoices")
	rep, _ := svc.Create(ctx, orgID, owner, CreateReportInput{Name: "Original", ReportConfig: cfg, IsPublic: true})
	if _, err := svc.AddShare(ctx, rep.ID.Hex(), orgID, owner, ShareInput{UserID: member.Hex(), Permission: PermissionViewer}); err != nil {
		t.Fatal(err)
	}

	dup, err := svc.Duplicate(ctx, rep.ID.Hex(), orgID, member)
	if err != nil {
		t.Fatal(err)
	}
	if dup.Name != "Original (Copy)" {
		t.Errorf("name = %q", dup.Name)
	}
	if dup.CreatedBy != member {
		t.Errorf("copy owner = %v, want the duplicating user", dup.CreatedBy)
	}
	if dup.IsPublic {
		t.Error("copy inherited public visibility")
	}

	copied, _ := shares.ListByReport(ctx, dup.ID)
	if len(copied) != 0 {
		t.Errorf("copy inherited %d shares", len(copied))
	}
}

func TestDeleteCleansUpShares(t *testing.T) {
	svc, shares := newTestService()
	ctx := context.Background()
	orgID, owner, member := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	cfg := NewConfig(svc.Catalog, "invoices")
	rep, _ := svc.Create(ctx, orgID, owner, CreateReportInput{Name: "Doomed", ReportConfig: cfg})
	if _, err := svc.AddShare(ctx, rep.ID.Hex(), orgID, owner, ShareInput{UserID: member.Hex(), Permission: PermissionViewer}); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, rep.ID.Hex(), orgID, owner); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, rep.ID.Hex(), orgID, owner); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted report still readable: %v", err)
	}
	left, _ := shares.ListByReport(ctx, rep.ID)
	if len(left) != 0 {
		t.Errorf("%d orphaned shares", len(left))
	}
}

func TestTogglePublicOwnerOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	orgID, owner, member := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	cfg := NewConfig(svc.Catalog, "invoices")
	rep, _ := svc.Create(ctx, orgID, owner, CreateReportInput{Name: "R", ReportConfig: cfg, IsPublic: true})

	// Any viewer can toggle their favorite, but publicity is owner-only.
	if _, err := svc.ToggleFavorite(ctx, rep.ID.Hex(), orgID, member); err != nil {
		t.Errorf("favorite toggle = %v", err)
	}
	if _, err := svc.TogglePublic(ctx, rep.ID.Hex(), orgID, member); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner public toggle = %v", err)
	}

	toggled, err := svc.TogglePublic(ctx, rep.ID.Hex(), orgID, owner)
	if err != nil {
		t.Fatal(err)
	}
	if toggled.IsPublic {
		t.Error("toggle did not flip is_public")
	}
}
