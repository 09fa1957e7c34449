package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	OrgIDKey ContextKey = "organization_id"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
	AuditActionReport AuditAction = "REPORT"
	AuditActionShare  AuditAction = "SHARE"
	AuditActionExport AuditAction = "EXPORT"
	AuditActionCron   AuditAction = "CRON"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	Action         AuditAction        `bson:"action" json:"action"`
	Module         string             `bson:"module" json:"module"`
	RecordID       string             `bson:"record_id" json:"record_id"`
	ActorID        string             `bson:"actor_id" json:"actor_id"`
	ActorName      string             `bson:"-" json:"actor_name,omitempty"`
	Changes        map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}

type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	FullName       string             `bson:"full_name" json:"full_name"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// Log is the record shape the async zap writer inserts into the "logs" collection.
type Log struct {
	Message      string    `bson:"message"`
	Caller       string    `bson:"caller"`
	LogLevelId   int       `bson:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc"`
}
