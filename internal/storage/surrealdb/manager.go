// Package surrealdb implements interfaces.StorageManager on SurrealDB.
package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
)

// Table names.
const (
	tableUser      = "user"
	tablePortfolio = "portfolio"
	tableContent   = "content"
	tableSupport   = "support_ticket"
	tableAudit     = "audit_log"
	tableConfig    = "system_config"
)

var tables = []string{tableUser, tablePortfolio, tableContent, tableSupport, tableAudit, tableConfig}

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger *common.Logger

	userStore      *UserStore
	portfolioStore *PortfolioStore
	contentStore   *ContentStore
	supportStore   *SupportStore
	auditStore     *AuditStore
	configStore    *ConfigStore
}

// NewManager creates a new StorageManager connected to SurrealDB.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	m, err := newManager(ctx, db, logger)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

// newManager defines the tables on an already-selected database and wires the stores.
func newManager(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*Manager, error) {
	// SurrealDB v3 errors on querying tables that do not exist
	for _, table := range tables {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return nil, fmt.Errorf("failed to define table %s: %w", table, err)
		}
	}
	indexes := []string{
		"DEFINE INDEX IF NOT EXISTS user_email ON user FIELDS email UNIQUE",
		"DEFINE INDEX IF NOT EXISTS portfolio_user ON portfolio FIELDS user_id",
		"DEFINE INDEX IF NOT EXISTS audit_created ON audit_log FIELDS created_at",
	}
	for _, sql := range indexes {
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return nil, fmt.Errorf("failed to define index: %w", err)
		}
	}

	return &Manager{
		db:             db,
		logger:         logger,
		userStore:      NewUserStore(db, logger),
		portfolioStore: NewPortfolioStore(db, logger),
		contentStore:   NewContentStore(db, logger),
		supportStore:   NewSupportStore(db, logger),
		auditStore:     NewAuditStore(db, logger),
		configStore:    NewConfigStore(db, logger),
	}, nil
}

func (m *Manager) UserStore() interfaces.UserStore           { return m.userStore }
func (m *Manager) PortfolioStore() interfaces.PortfolioStore { return m.portfolioStore }
func (m *Manager) ContentStore() interfaces.ContentStore     { return m.contentStore }
func (m *Manager) SupportStore() interfaces.SupportStore     { return m.supportStore }
func (m *Manager) AuditStore() interfaces.AuditStore         { return m.auditStore }
func (m *Manager) ConfigStore() interfaces.ConfigStore       { return m.configStore }

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)

func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")
}

// upsert writes a record with the content of v, retrying transient failures.
func upsert[T any](ctx context.Context, db *surrealdb.DB, table, id string, v *T) error {
	sql := fmt.Sprintf("UPSERT type::record('%s', $id) CONTENT $record", table)
	vars := map[string]any{"id": id, "record": v}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]T](ctx, db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save %s after retries: %w", table, lastErr)
}

// queryAll runs sql and returns the rows of the first statement.
func queryAll[T any](ctx context.Context, db *surrealdb.DB, sql string, vars map[string]any) ([]*T, error) {
	results, err := surrealdb.Query[[]T](ctx, db, sql, vars)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0)
	if results != nil && len(*results) > 0 {
		rows := (*results)[0].Result
		for i := range rows {
			out = append(out, &rows[i])
		}
	}
	return out, nil
}

// deleteRecord removes a record and reports ErrNotFound when nothing was deleted.
func deleteRecord[T any](ctx context.Context, db *surrealdb.DB, table, id string) error {
	sql := fmt.Sprintf("DELETE type::record('%s', $id) RETURN BEFORE", table)
	rows, err := queryAll[T](ctx, db, sql, map[string]any{"id": id})
	if err != nil {
		if isNotFoundError(err) {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", table, err)
	}
	if len(rows) == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}
