// Package database formalizes the Database type named in spec §6's
// exposed contracts: a name->Table map, a registered-model dependency
// graph wired to a RefreshScheduler, and attached-database aliasing.
// This is a SPEC_FULL.md supplement — spec.md names these methods
// without designing the struct.
package database

import (
	"context"
	"log/slog"
	"sync"

	"github.com/malbeclabs/grizzly/pkg/dag"
	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/scheduler"
	"github.com/malbeclabs/grizzly/pkg/sqldeps"
	"github.com/malbeclabs/grizzly/pkg/table"
	"github.com/malbeclabs/grizzly/pkg/value"
)

// ModelFunc performs one model's refresh side effect. For a plain
// model this is whatever the caller's query layer wants to run; for a
// materialized view it is typically a no-op, since recomputing and
// persisting the view's rows is refreshMaterializedView's job, not
// refreshModel's (spec's "thin wrapper" framing for materialized
// views).
type ModelFunc func(ctx context.Context, db *Database) error

// ComputeFunc produces a materialized view's full current row set.
type ComputeFunc func(ctx context.Context, db *Database) ([][]value.Value, error)

// Model is a registered node in the Database's dependency graph: a
// name, the SQL text DependencyAnalyzer scans for FROM/JOIN
// dependencies, and a refresh action.
type Model struct {
	Name    string
	SQL     string
	Refresh ModelFunc

	// View, when non-nil, marks Model as a materialized view backed by
	// TableName: refreshMaterializedView recomputes Compute and
	// replaces TableName's rows after RefreshModel brings its
	// dependencies up to date.
	View *ViewSpec
}

// ViewSpec is the materialized-view half of a Model.
type ViewSpec struct {
	TableName string
	Compute   ComputeFunc
}

// Database holds tables, registered models, and attached peer
// databases under one name.
type Database struct {
	log  *slog.Logger
	name string

	mu       sync.RWMutex
	tables   map[string]*table.Table
	models   map[string]*Model
	attached map[string]*Database

	graph     *dag.Graph
	scheduler *scheduler.Scheduler
}

// New constructs an empty Database named name.
func New(name string, log *slog.Logger) *Database {
	db := &Database{
		log:      log,
		name:     name,
		tables:   make(map[string]*table.Table),
		models:   make(map[string]*Model),
		attached: make(map[string]*Database),
		graph:    dag.New(),
	}
	db.scheduler = scheduler.New(log, db.graph, db.refreshOneModel)
	return db
}

// Name returns the database's name.
func (db *Database) Name() string { return db.name }

// CreateTable registers a new empty table. Fails DuplicateTable if a
// table by that name already exists.
func (db *Database) CreateTable(name string, schema table.Schema) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.tables[name]; ok {
		return grizzlyerr.Newf(grizzlyerr.DuplicateTable, "table %q already exists in database %q", name, db.name)
	}
	db.tables[name] = table.New(name, schema)
	return nil
}

// GetTable returns the named table, or TableNotFound.
func (db *Database) GetTable(name string) (*table.Table, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	t, ok := db.tables[name]
	if !ok {
		return nil, grizzlyerr.Newf(grizzlyerr.TableNotFound, "table %q not found in database %q", name, db.name)
	}
	return t, nil
}

// DropTable removes a table. Fails TableNotFound if it doesn't exist.
func (db *Database) DropTable(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.tables[name]; !ok {
		return grizzlyerr.Newf(grizzlyerr.TableNotFound, "table %q not found in database %q", name, db.name)
	}
	delete(db.tables, name)
	return nil
}

// ListTables returns every table name currently registered.
func (db *Database) ListTables() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]string, 0, len(db.tables))
	for name := range db.tables {
		out = append(out, name)
	}
	return out
}

// CreateIndex builds a B-tree index on tableName.columnName.
func (db *Database) CreateIndex(tableName, indexName, columnName string) error {
	t, err := db.GetTable(tableName)
	if err != nil {
		return err
	}
	return t.CreateIndex(indexName, columnName)
}

// CreateCompositeIndex builds a composite hash index on tableName over
// columnNames.
func (db *Database) CreateCompositeIndex(tableName, indexName string, columnNames []string) error {
	t, err := db.GetTable(tableName)
	if err != nil {
		return err
	}
	return t.CreateCompositeIndex(indexName, columnNames)
}

// RegisterModel adds a model to the dependency graph, wiring an edge
// to every known table/model/view its SQL text references via
// DependencyAnalyzer. Unknown identifiers (CTE aliases, subquery
// targets) are ignored per sqldeps' documented scope.
func (db *Database) RegisterModel(m *Model) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.models[m.Name]; ok {
		return grizzlyerr.Newf(grizzlyerr.DuplicateTable, "model %q already registered in database %q", m.Name, db.name)
	}

	db.graph.AddNode(m.Name)
	for _, dep := range sqldeps.ExtractDependencies(m.SQL) {
		if db.isKnownName(dep) {
			db.graph.AddDependency(m.Name, dep)
		}
	}
	db.models[m.Name] = m
	return nil
}

func (db *Database) isKnownName(name string) bool {
	if _, ok := db.tables[name]; ok {
		return true
	}
	if _, ok := db.models[name]; ok {
		return true
	}
	return false
}

// refreshOneModel is the scheduler.RefreshFunc wired against this
// database's registered models. A dependency edge may point at a bare
// table (no registered model behind it, e.g. a base ingestion table)
// — that is not an error, it simply has nothing to refresh.
func (db *Database) refreshOneModel(ctx context.Context, name string) error {
	db.mu.RLock()
	m, ok := db.models[name]
	db.mu.RUnlock()
	if !ok {
		return nil
	}
	if m.Refresh == nil {
		return nil
	}
	return m.Refresh(ctx, db)
}

// RefreshModel refreshes target and every transitive dependency, in
// parallel topological groups (spec §4.12).
func (db *Database) RefreshModel(ctx context.Context, target string) error {
	return db.scheduler.RefreshModel(ctx, target)
}

// RefreshMaterializedView re-runs target's dependency set exactly like
// RefreshModel, then recomputes target's rows via its ViewSpec and
// replaces the backing table's contents.
func (db *Database) RefreshMaterializedView(ctx context.Context, target string) error {
	if err := db.RefreshModel(ctx, target); err != nil {
		return err
	}

	db.mu.RLock()
	m, ok := db.models[target]
	db.mu.RUnlock()
	if !ok {
		return grizzlyerr.Newf(grizzlyerr.ModelNotFound, "model %q not registered in database %q", target, db.name)
	}
	if m.View == nil {
		return grizzlyerr.Newf(grizzlyerr.UnsupportedOperation, "model %q is not a materialized view", target)
	}

	rows, err := m.View.Compute(ctx, db)
	if err != nil {
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "compute materialized view "+target)
	}

	t, err := db.GetTable(m.View.TableName)
	if err != nil {
		return err
	}
	fresh := table.New(t.Name, t.Schema)
	for _, row := range rows {
		if err := fresh.InsertRow(row); err != nil {
			return err
		}
	}

	db.mu.Lock()
	db.tables[m.View.TableName] = fresh
	db.mu.Unlock()
	return nil
}

// AttachDatabase registers other under alias so it can be referenced
// alongside db's own tables.
func (db *Database) AttachDatabase(alias string, other *Database) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.attached[alias]; ok {
		return grizzlyerr.Newf(grizzlyerr.DuplicateTable, "database alias %q already attached", alias)
	}
	db.attached[alias] = other
	return nil
}

// DetachDatabase removes a previously attached alias.
func (db *Database) DetachDatabase(alias string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.attached[alias]; !ok {
		return grizzlyerr.Newf(grizzlyerr.TableNotFound, "database alias %q not attached", alias)
	}
	delete(db.attached, alias)
	return nil
}

// Attached returns the database registered under alias, if any.
func (db *Database) Attached(alias string) (*Database, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	other, ok := db.attached[alias]
	return other, ok
}

// Graph exposes the underlying dependency graph, mainly for tests and
// for the metrics/health server to report model counts.
func (db *Database) Graph() *dag.Graph { return db.graph }
