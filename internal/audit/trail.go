package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Entry is one append-only audit record of a configuration or decision
// change.
type Entry struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   string          `gorm:"type:uuid;index;not null" json:"tenantId"`
	Actor      string          `gorm:"type:varchar(100);not null" json:"actor"`
	Action     string          `gorm:"type:varchar(100);not null" json:"action"`
	EntityType string          `gorm:"type:varchar(100);not null" json:"entityType"`
	EntityID   string          `gorm:"type:varchar(100)" json:"entityId,omitempty"`
	Details    json.RawMessage `gorm:"type:json" json:"details,omitempty"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"createdAt"`
}

func (Entry) TableName() string {
	return "audit_entries"
}

// Trail is the sqlite-backed append-only audit log. Audit writes must never
// fail the operation they describe, so Record logs failures instead of
// returning them to mutation paths.
type Trail struct {
	db *gorm.DB
}

// NewTrail opens (or creates) the audit database at the given path.
func NewTrail(dbPath string) (*Trail, error) {
	if dbPath == "" {
		dbPath = "audit.db"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	// Auto-migrate the schema
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate audit database: %w", err)
	}

	return &Trail{db: db}, nil
}

// NewInMemoryTrail creates a Trail backed by an in-memory sqlite database
// (useful for testing).
func NewInMemoryTrail() (*Trail, error) {
	return NewTrail(":memory:")
}

// Record appends one entry. Details is marshaled to JSON; a marshal or write
// failure is logged and swallowed so the audited operation still succeeds.
func (t *Trail) Record(ctx context.Context, tenantID, actor, action, entityType, entityID string, details any) {
	if t == nil {
		return
	}

	entry := Entry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			slog.WarnContext(ctx, "failed to marshal audit details", "action", action, "error", err)
		} else {
			entry.Details = raw
		}
	}

	if err := t.db.WithContext(ctx).Create(&entry).Error; err != nil {
		slog.ErrorContext(ctx, "failed to record audit entry",
			"tenant_id", tenantID,
			"action", action,
			"error", err,
		)
	}
}

// ListByTenant returns the most recent entries for a tenant.
func (t *Trail) ListByTenant(ctx context.Context, tenantID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []Entry
	err := t.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}

// Close closes the underlying database connection.
func (t *Trail) Close() error {
	if t == nil {
		return nil
	}
	sqlDB, err := t.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying audit database: %w", err)
	}
	return sqlDB.Close()
}
