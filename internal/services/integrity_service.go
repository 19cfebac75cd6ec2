package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub/internal/tree"
	"github.com/studyhub/studyhub/pkg/logger"
	"github.com/studyhub/studyhub/pkg/metrics"
)

// Integrity finding kinds.
const (
	FindingDanglingParent = "dangling_parent"
	FindingCycle          = "cycle"
	FindingOrderGap       = "order_gap"
	FindingOrderDuplicate = "order_duplicate"
)

var findingKinds = []string{FindingDanglingParent, FindingCycle, FindingOrderGap, FindingOrderDuplicate}

// IntegrityFinding describes one violated hierarchy invariant.
type IntegrityFinding struct {
	Kind    SiblingKind `json:"kind"`
	Finding string      `json:"finding"`
	ScopeID *string     `json:"scopeId"`
	IDs     []string    `json:"ids"`
}

// IntegrityReport is the outcome of a full audit.
type IntegrityReport struct {
	Findings []IntegrityFinding `json:"findings"`
}

// Clean reports whether the audit found nothing.
func (r *IntegrityReport) Clean() bool {
	return r == nil || len(r.Findings) == 0
}

// Count returns the number of findings of the given kind and finding type.
func (r *IntegrityReport) Count(kind SiblingKind, finding string) int {
	if r == nil {
		return 0
	}
	total := 0
	for _, f := range r.Findings {
		if f.Kind == kind && f.Finding == finding {
			total++
		}
	}
	return total
}

// IntegrityService scans stored hierarchies for rows that break the ordering
// and parent invariants the write path maintains.
type IntegrityService struct {
	db     *gorm.DB
	orders *OrderManager
	log    *zap.Logger
}

// NewIntegrityService constructs an IntegrityService.
func NewIntegrityService(db *gorm.DB, orders *OrderManager) (*IntegrityService, error) {
	if db == nil {
		return nil, errors.New("integrity service: db is required")
	}
	if orders == nil {
		var err error
		if orders, err = NewOrderManager(db); err != nil {
			return nil, err
		}
	}
	return &IntegrityService{db: db, orders: orders, log: logger.WithModule("integrity")}, nil
}

// Audit checks every sibling kind and publishes the result as gauges.
func (s *IntegrityService) Audit(ctx context.Context) (*IntegrityReport, error) {
	ctx = ensureContext(ctx)
	report := &IntegrityReport{Findings: []IntegrityFinding{}}

	for _, kind := range []SiblingKind{KindFolder, KindFile, KindSection} {
		findings, err := s.auditKind(ctx, kind)
		if err != nil {
			return nil, err
		}
		report.Findings = append(report.Findings, findings...)
	}

	for _, kind := range []SiblingKind{KindFolder, KindFile, KindSection} {
		for _, finding := range findingKinds {
			metrics.IntegrityFindings.WithLabelValues(string(kind), finding).Set(float64(report.Count(kind, finding)))
		}
	}
	for _, finding := range report.Findings {
		s.log.Warn("hierarchy integrity finding",
			zap.String("kind", string(finding.Kind)),
			zap.String("finding", finding.Finding),
			zap.Stringp("scope", finding.ScopeID),
			zap.Strings("ids", finding.IDs),
		)
	}
	return report, nil
}

// Repair compacts every scope with ordering gaps or duplicates. Parent
// problems are left for an operator. It returns the number of scopes fixed.
func (s *IntegrityService) Repair(ctx context.Context, report *IntegrityReport) (int, error) {
	if report.Clean() {
		return 0, nil
	}

	type scopeKey struct {
		kind  SiblingKind
		scope string
		root  bool
	}
	done := make(map[scopeKey]struct{})
	repaired := 0
	var errs error
	for _, finding := range report.Findings {
		if finding.Finding != FindingOrderGap && finding.Finding != FindingOrderDuplicate {
			continue
		}
		key := scopeKey{kind: finding.Kind, root: finding.ScopeID == nil}
		if finding.ScopeID != nil {
			key.scope = *finding.ScopeID
		}
		if _, seen := done[key]; seen {
			continue
		}
		done[key] = struct{}{}

		if err := s.orders.Compact(ctx, finding.Kind, finding.ScopeID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("compact %s scope: %w", finding.Kind, err))
			continue
		}
		repaired++
	}
	if repaired > 0 {
		s.log.Info("repaired sibling ordering", zap.Int("scopes", repaired))
	}
	return repaired, errs
}

func (s *IntegrityService) auditKind(ctx context.Context, kind SiblingKind) ([]IntegrityFinding, error) {
	spec, err := kind.spec()
	if err != nil {
		return nil, err
	}

	var rows []siblingRow
	if err := s.db.WithContext(ctx).Table(spec.table).
		Select(fmt.Sprintf("id, %s AS scope_id, ordering, %s AS sort_name", spec.scopeColumn, spec.keyColumn)).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("integrity service: load %s: %w", spec.table, err)
	}

	var scopes []string
	if err := s.db.WithContext(ctx).Table(spec.scopeTable).Pluck("id", &scopes).Error; err != nil {
		return nil, fmt.Errorf("integrity service: load %s ids: %w", spec.scopeTable, err)
	}
	known := make(map[string]struct{}, len(scopes))
	for _, id := range scopes {
		known[id] = struct{}{}
	}

	var findings []IntegrityFinding
	dangling := make(map[string][]string)
	groups := make(map[string][]siblingRow)
	for _, row := range rows {
		key := ""
		if row.ScopeID != nil {
			key = *row.ScopeID
			if _, ok := known[key]; !ok {
				dangling[key] = append(dangling[key], row.ID)
			}
		}
		groups[key] = append(groups[key], row)
	}

	for _, key := range sortedKeys(dangling) {
		scope := key
		findings = append(findings, IntegrityFinding{Kind: kind, Finding: FindingDanglingParent, ScopeID: &scope, IDs: dangling[key]})
	}

	// Only self-referencing kinds can loop.
	if spec.scopeTable == spec.table {
		parents := make(map[string]*string, len(rows))
		for _, row := range rows {
			parents[row.ID] = row.ScopeID
		}
		var looped []string
		for _, id := range tree.Orphans(rows) {
			if parent := parents[id]; parent != nil {
				if _, ok := known[*parent]; ok {
					looped = append(looped, id)
				}
			}
		}
		if len(looped) > 0 {
			sort.Strings(looped)
			findings = append(findings, IntegrityFinding{Kind: kind, Finding: FindingCycle, IDs: looped})
		}
	}

	for _, key := range sortedKeys(groups) {
		var scope *string
		if key != "" {
			k := key
			scope = &k
		}
		findings = append(findings, orderingFindings(kind, scope, groups[key])...)
	}
	return findings, nil
}

// orderingFindings checks that a scope is numbered exactly 0..n-1.
func orderingFindings(kind SiblingKind, scope *string, rows []siblingRow) []IntegrityFinding {
	byOrdering := make(map[int][]string, len(rows))
	for _, row := range rows {
		byOrdering[row.Ordering] = append(byOrdering[row.Ordering], row.ID)
	}

	var duplicates, gaps []string
	for ordering, ids := range byOrdering {
		if len(ids) > 1 {
			duplicates = append(duplicates, ids...)
		}
		if ordering < 0 || ordering >= len(rows) {
			gaps = append(gaps, ids...)
		}
	}
	// Distinct values all inside 0..n-1 cover the range, so duplicates and
	// out-of-range values are the only ways a scope can be misnumbered.
	var out []IntegrityFinding
	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		out = append(out, IntegrityFinding{Kind: kind, Finding: FindingOrderDuplicate, ScopeID: scope, IDs: duplicates})
	}
	if len(gaps) > 0 {
		sort.Strings(gaps)
		out = append(out, IntegrityFinding{Kind: kind, Finding: FindingOrderGap, ScopeID: scope, IDs: gaps})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
