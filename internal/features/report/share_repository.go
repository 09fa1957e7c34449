package report

import (
	"context"
	"time"

	"cxtrack/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ShareRepository interface {
	Create(ctx context.Context, share *ReportShare) error
	Get(ctx context.Context, id string) (*ReportShare, error)
	ListByReport(ctx context.Context, reportID primitive.ObjectID) ([]ReportShare, error)
	FindForUser(ctx context.Context, reportID, userID primitive.ObjectID) (*ReportShare, error)
	UpdatePermission(ctx context.Context, id string, permission Permission) error
	Delete(ctx context.Context, id string) error
	DeleteByReport(ctx context.Context, reportID primitive.ObjectID) error
}

type ShareRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewShareRepository(mongodb *database.MongodbDB) ShareRepository {
	return &ShareRepositoryImpl{
		Collection: mongodb.DB.Collection("report_shares"),
	}
}

func (r *ShareRepositoryImpl) Create(ctx context.Context, share *ReportShare) error {
	if share.ID.IsZero() {
		share.ID = primitive.NewObjectID()
	}
	share.CreatedAt = time.Now()
	_, err := r.Collection.InsertOne(ctx, share)
	return err
}

func (r *ShareRepositoryImpl) Get(ctx context.Context, id string) (*ReportShare, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var share ReportShare
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&share); err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *ShareRepositoryImpl) ListByReport(ctx context.Context, reportID primitive.ObjectID) ([]ReportShare, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"report_id": reportID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shares []ReportShare
	if err := cursor.All(ctx, &shares); err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *ShareRepositoryImpl) FindForUser(ctx context.Context, reportID, userID primitive.ObjectID) (*ReportShare, error) {
	var share ReportShare
	err := r.Collection.FindOne(ctx, bson.M{"report_id": reportID, "user_id": userID}).Decode(&share)
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *ShareRepositoryImpl) UpdatePermission(ctx context.Context, id string, permission Permission) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"permission": permission}})
	return err
}

func (r *ShareRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

// DeleteByReport removes all shares when a report is deleted.
func (r *ShareRepositoryImpl) DeleteByReport(ctx context.Context, reportID primitive.ObjectID) error {
	_, err := r.Collection.DeleteMany(ctx, bson.M{"report_id": reportID})
	return err
}
