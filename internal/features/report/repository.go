package report

import (
	"context"
	"time"

	"cxtrack/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportRepository interface {
	Create(ctx context.Context, report *CustomReport) error
	Get(ctx context.Context, id string) (*CustomReport, error)
	ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]CustomReport, error)
	Update(ctx context.Context, id string, fields bson.M) (*CustomReport, error)
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type ReportRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewReportRepository(mongodb *database.MongodbDB) ReportRepository {
	return &ReportRepositoryImpl{
		Collection: mongodb.DB.Collection("custom_reports"),
	}
}

func (r *ReportRepositoryImpl) Create(ctx context.Context, report *CustomReport) error {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	report.CreatedAt = time.Now()
	report.UpdatedAt = time.Now()
	_, err := r.Collection.InsertOne(ctx, report)
	return err
}

func (r *ReportRepositoryImpl) Get(ctx context.Context, id string) (*CustomReport, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var report CustomReport
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ListByOrganization returns an organization's reports ordered by
// updated_at descending, the default server-side order.
func (r *ReportRepositoryImpl) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]CustomReport, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"organization_id": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []CustomReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// Update applies a partial update and always refreshes updated_at,
// returning the updated document. Concurrent saves are last-write-wins.
func (r *ReportRepositoryImpl) Update(ctx context.Context, id string, fields bson.M) (*CustomReport, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	fields["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated CustomReport
	err = r.Collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ReportRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (r *ReportRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
	})
	return err
}
