package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studyhub/studyhub/internal/database"
	"github.com/studyhub/studyhub/internal/models"
	"github.com/studyhub/studyhub/internal/tree"
	apperrors "github.com/studyhub/studyhub/pkg/errors"
	"github.com/studyhub/studyhub/pkg/logger"
	"github.com/studyhub/studyhub/pkg/metrics"
)

// SiblingKind identifies an independent ordering space.
type SiblingKind string

const (
	KindFolder  SiblingKind = "folder"
	KindFile    SiblingKind = "file"
	KindSection SiblingKind = "section"
)

// ParseSiblingKind maps request input onto a SiblingKind.
func ParseSiblingKind(value string) (SiblingKind, bool) {
	switch kind := SiblingKind(strings.ToLower(strings.TrimSpace(value))); kind {
	case KindFolder, KindFile, KindSection:
		return kind, true
	default:
		return "", false
	}
}

type siblingSpec struct {
	table       string
	scopeColumn string
	keyColumn   string
	scopeTable  string // table the scope id must resolve in
}

var siblingSpecs = map[SiblingKind]siblingSpec{
	KindFolder:  {table: "folders", scopeColumn: "parent_id", keyColumn: "name", scopeTable: "folders"},
	KindFile:    {table: "files", scopeColumn: "folder_id", keyColumn: "name", scopeTable: "folders"},
	KindSection: {table: "syllabus_sections", scopeColumn: "parent_id", keyColumn: "title", scopeTable: "syllabus_sections"},
}

func (k SiblingKind) spec() (siblingSpec, error) {
	spec, ok := siblingSpecs[k]
	if !ok {
		return siblingSpec{}, apperrors.NewBadRequest(fmt.Sprintf("unknown sibling kind %q", k))
	}
	return spec, nil
}

// siblingRow is the projection the order manager works on.
type siblingRow struct {
	ID       string
	ScopeID  *string
	Ordering int
	SortName string
}

func (r siblingRow) NodeID() string     { return r.ID }
func (r siblingRow) ParentKey() *string { return r.ScopeID }
func (r siblingRow) SortOrder() int     { return r.Ordering }
func (r siblingRow) SortKey() string    { return r.SortName }

// OrderManager rewrites sibling orderings. Every method that mutates runs inside
// a transaction and leaves the scope numbered 0..n-1.
type OrderManager struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

// NewOrderManager constructs an OrderManager.
func NewOrderManager(db *gorm.DB) (*OrderManager, error) {
	if db == nil {
		return nil, errors.New("order manager: db is required")
	}
	return &OrderManager{
		db:  db,
		log: logger.WithModule("ordering"),
		now: time.Now,
	}, nil
}

// Reorder assigns ordering = position to every id in orderedIDs. The list must
// name exactly the current siblings under scopeID, otherwise ErrStaleOrdering is
// returned and nothing is written.
func (m *OrderManager) Reorder(ctx context.Context, kind SiblingKind, scopeID *string, orderedIDs []string) error {
	ctx = ensureContext(ctx)
	spec, err := kind.spec()
	if err != nil {
		return err
	}
	scopeID = normaliseID(scopeID)

	ids := make([]string, len(orderedIDs))
	seen := make(map[string]struct{}, len(orderedIDs))
	for i, id := range orderedIDs {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup || id == "" {
			metrics.Reorders.WithLabelValues(string(kind), "rejected").Inc()
			return apperrors.NewBadRequest("orderedIds must contain distinct, non-empty ids")
		}
		seen[id] = struct{}{}
		ids[i] = id
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureScopeExists(tx, spec, scopeID); err != nil {
			return err
		}
		if err := m.lockRoot(tx, kind, scopeID); err != nil {
			return err
		}

		current, err := lockSiblings(tx, spec, scopeID)
		if err != nil {
			return err
		}
		if !sameMembers(current, seen) {
			return apperrors.ErrStaleOrdering.WithMessage(
				"expected %d %s siblings, the request names %d or includes ids outside the scope",
				len(current), kind, len(ids),
			)
		}

		return m.writeOrdering(tx, spec, current, ids)
	})

	switch {
	case err == nil:
		metrics.Reorders.WithLabelValues(string(kind), "ok").Inc()
	case errors.Is(err, apperrors.ErrStaleOrdering):
		metrics.Reorders.WithLabelValues(string(kind), "stale").Inc()
		m.log.Info("reorder rejected", zap.String("kind", string(kind)), zap.Stringp("scope", scopeID), zap.Error(err))
	default:
		metrics.Reorders.WithLabelValues(string(kind), outcome(err)).Inc()
	}
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return fmt.Errorf("order manager: reorder %s: %w", kind, err)
	}
	return nil
}

// Compact renumbers a scope to 0..n-1, keeping the current (ordering, name) ranking.
func (m *OrderManager) Compact(ctx context.Context, kind SiblingKind, scopeID *string) error {
	ctx = ensureContext(ctx)
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return m.compact(tx, kind, scopeID)
	})
}

func (m *OrderManager) compact(tx *gorm.DB, kind SiblingKind, scopeID *string) error {
	spec, err := kind.spec()
	if err != nil {
		return err
	}

	scopeID = normaliseID(scopeID)
	if err := m.lockRoot(tx, kind, scopeID); err != nil {
		return err
	}
	current, err := lockSiblings(tx, spec, scopeID)
	if err != nil {
		return err
	}
	tree.Sort(current)

	ids := make([]string, len(current))
	for i, row := range current {
		ids[i] = row.ID
	}
	return m.writeOrdering(tx, spec, current, ids)
}

// place moves id to position within its scope, shifting the other siblings.
// Positions past the end append.
func (m *OrderManager) place(tx *gorm.DB, kind SiblingKind, scopeID *string, id string, position int) error {
	spec, err := kind.spec()
	if err != nil {
		return err
	}

	scopeID = normaliseID(scopeID)
	if err := m.lockRoot(tx, kind, scopeID); err != nil {
		return err
	}
	current, err := lockSiblings(tx, spec, scopeID)
	if err != nil {
		return err
	}
	tree.Sort(current)

	ids := make([]string, 0, len(current))
	for _, row := range current {
		if row.ID != id {
			ids = append(ids, row.ID)
		}
	}
	if len(ids) == len(current) {
		return apperrors.ErrNotFound.WithMessage("%s %s is not in the requested scope", kind, id)
	}

	if position < 0 {
		position = 0
	}
	if position > len(ids) {
		position = len(ids)
	}
	ids = append(ids[:position], append([]string{id}, ids[position:]...)...)

	return m.writeOrdering(tx, spec, current, ids)
}

// nextOrdering returns the append position for a new member of the scope.
func (m *OrderManager) nextOrdering(tx *gorm.DB, kind SiblingKind, scopeID *string) (int, error) {
	spec, err := kind.spec()
	if err != nil {
		return 0, err
	}

	scopeID = normaliseID(scopeID)
	if err := m.lockRoot(tx, kind, scopeID); err != nil {
		return 0, err
	}

	var count int64
	if err := scoped(tx.Table(spec.table), spec, scopeID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("order manager: count %s siblings: %w", kind, err)
	}
	return int(count), nil
}

func (m *OrderManager) writeOrdering(tx *gorm.DB, spec siblingSpec, current []siblingRow, ids []string) error {
	existing := make(map[string]int, len(current))
	for _, row := range current {
		existing[row.ID] = row.Ordering
	}

	now := m.now()
	for position, id := range ids {
		if existing[id] == position {
			continue
		}
		res := tx.Table(spec.table).
			Where("id = ?", id).
			Updates(map[string]any{"ordering": position, "updated_at": now})
		if res.Error != nil {
			return fmt.Errorf("order manager: update %s ordering: %w", spec.table, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrStaleOrdering.WithMessage("%s was removed while reordering", id)
		}
	}
	return nil
}

// lockRoot serializes writers of a kind's root scope. There is no parent row to
// lock there, so the sentinel row in scope_locks stands in for it: the upsert
// holds its row lock until the transaction ends. Non-root scopes are covered by
// the parent row lock taken in lockScope.
func (m *OrderManager) lockRoot(tx *gorm.DB, kind SiblingKind, scopeID *string) error {
	if scopeID != nil {
		return nil
	}
	lock := models.ScopeLock{Name: rootLockName(kind), AcquiredAt: m.now()}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"acquired_at"}),
	}).Create(&lock).Error
	if err != nil {
		return fmt.Errorf("order manager: lock %s root scope: %w", kind, err)
	}
	return nil
}

func rootLockName(kind SiblingKind) string {
	return string(kind) + ":root"
}

func ensureScopeExists(tx *gorm.DB, spec siblingSpec, scopeID *string) error {
	found, err := lockScope(tx, spec.scopeTable, scopeID)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.ErrInvalidParent.WithMessage("scope %s not found", *scopeID)
	}
	return nil
}

// lockScope reports whether the scope row exists and, where supported, holds a
// row lock on it until the transaction ends. Inserts and deletes under the same
// parent take the same lock, so they serialize against each other.
func lockScope(tx *gorm.DB, table string, scopeID *string) (bool, error) {
	if scopeID == nil {
		return true, nil
	}
	query := tx.Table(table).Where("id = ?", *scopeID).Limit(1)
	if database.SupportsRowLocks(tx) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var ids []string
	if err := query.Pluck("id", &ids).Error; err != nil {
		return false, fmt.Errorf("order manager: load %s scope: %w", table, err)
	}
	return len(ids) > 0, nil
}

// lockSiblings reads the scope members, taking row locks where the dialect
// supports them so concurrent writers on the same scope queue behind us.
func lockSiblings(tx *gorm.DB, spec siblingSpec, scopeID *string) ([]siblingRow, error) {
	query := tx.Table(spec.table).
		Select(fmt.Sprintf("id, %s AS scope_id, ordering, %s AS sort_name", spec.scopeColumn, spec.keyColumn))
	if database.SupportsRowLocks(tx) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rows []siblingRow
	if err := scoped(query, spec, scopeID).Order("ordering ASC").Order("id ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("order manager: load %s siblings: %w", spec.table, err)
	}
	return rows, nil
}

func scoped(query *gorm.DB, spec siblingSpec, scopeID *string) *gorm.DB {
	if scopeID == nil {
		return query.Where(fmt.Sprintf("%s IS NULL", spec.scopeColumn))
	}
	return query.Where(fmt.Sprintf("%s = ?", spec.scopeColumn), *scopeID)
}

func sameMembers(current []siblingRow, requested map[string]struct{}) bool {
	if len(current) != len(requested) {
		return false
	}
	for _, row := range current {
		if _, ok := requested[row.ID]; !ok {
			return false
		}
	}
	return true
}
