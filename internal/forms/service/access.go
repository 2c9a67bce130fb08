package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/OpenGRC/console/internal/forms/model"
	"gorm.io/gorm"
)

// AccessStore handles database operations for field access rules.
type AccessStore struct {
	db *gorm.DB
}

func NewAccessStore(db *gorm.DB) *AccessStore {
	return &AccessStore{db: db}
}

// ListRules returns the access rules matching the query. Rules with empty
// agent type or workflow stage act as wildcards for those dimensions.
func (s *AccessStore) ListRules(ctx context.Context, query model.AccessQuery) ([]model.FieldAccessRule, error) {
	var rules []model.FieldAccessRule
	q := s.db.WithContext(ctx).
		Where("tenant_id = ? AND request_type = ? AND role = ?", query.TenantID, query.RequestType, query.Role).
		Where("agent_type = '' OR agent_type = ?", query.AgentType).
		Where("workflow_stage = '' OR workflow_stage = ?", query.WorkflowStage)
	if err := q.Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list field access rules: %w", err)
	}
	return rules, nil
}

// UpsertRule creates or updates one access rule. Enforces can_edit implies
// can_view at write time: an editable field is implicitly viewable, and a
// rule claiming otherwise is rejected rather than silently corrected.
func (s *AccessStore) UpsertRule(ctx context.Context, rule *model.FieldAccessRule) error {
	if rule.CanEdit && !rule.CanView {
		return fmt.Errorf("field %q: can_edit requires can_view", rule.FieldName)
	}
	result := s.db.WithContext(ctx).
		Where("tenant_id = ? AND request_type = ? AND role = ? AND agent_type = ? AND workflow_stage = ? AND field_name = ?",
			rule.TenantID, rule.RequestType, rule.Role, rule.AgentType, rule.WorkflowStage, rule.FieldName).
		Assign(map[string]any{"can_view": rule.CanView, "can_edit": rule.CanEdit}).
		FirstOrCreate(rule)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert field access rule: %w", result.Error)
	}
	return nil
}

// AccessResolver resolves (request type, role, agent type, workflow stage)
// queries into per-field permission maps. Results are memoized by the query's
// composite key; a newer resolution supersedes an older one (last write
// wins). The resolver itself has no other side effects.
type AccessResolver struct {
	store *AccessStore

	mu    sync.RWMutex
	cache map[string]model.AccessMap
}

func NewAccessResolver(store *AccessStore) *AccessResolver {
	return &AccessResolver{
		store: store,
		cache: make(map[string]model.AccessMap),
	}
}

// Resolve maps the query to per-field view/edit permissions. An empty role
// yields an empty map without touching the store: callers gate on role
// presence and every field defaults to not-visible. Unrecognized
// combinations also resolve to an empty map rather than an error
// (fail-closed, not fatal). Store errors propagate.
func (r *AccessResolver) Resolve(ctx context.Context, query model.AccessQuery) (model.AccessMap, error) {
	if query.Role == "" {
		return model.AccessMap{}, nil
	}
	if query.TenantID == "" || query.RequestType == "" {
		slog.Debug("incomplete field access query resolved as no access",
			"tenant_id", query.TenantID,
			"request_type", query.RequestType,
		)
		return model.AccessMap{}, nil
	}

	r.mu.RLock()
	cached, ok := r.cache[query.Key()]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	rules, err := r.store.ListRules(ctx, query)
	if err != nil {
		return nil, err
	}

	accessMap := make(model.AccessMap, len(rules))
	for _, rule := range rules {
		entry := accessMap[rule.FieldName]
		entry.CanView = entry.CanView || rule.CanView
		entry.CanEdit = entry.CanEdit || rule.CanEdit
		accessMap[rule.FieldName] = entry
	}

	r.mu.Lock()
	r.cache[query.Key()] = accessMap
	r.mu.Unlock()

	return accessMap, nil
}

// Invalidate drops all memoized access maps. Called after rule writes.
func (r *AccessResolver) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[string]model.AccessMap)
	r.mu.Unlock()
}
