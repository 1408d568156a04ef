package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	schema := `
	-- Verification records
	CREATE TABLE IF NOT EXISTS verifications (
		id TEXT PRIMARY KEY,
		contract_name TEXT NOT NULL,
		file_path TEXT,
		creation_tx_input TEXT NOT NULL,
		deployed_bytecode TEXT NOT NULL,
		status TEXT NOT NULL,
		compiler_version TEXT,
		constructor_args TEXT,
		message TEXT,
		created_at TEXT DEFAULT (datetime('now'))
	);

	-- API keys
	CREATE TABLE IF NOT EXISTS api_keys (
		id TEXT PRIMARY KEY,
		key_hash TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TEXT DEFAULT (datetime('now')),
		last_used_at TEXT,
		revoked_at TEXT
	);

	-- Indexes
	CREATE INDEX IF NOT EXISTS idx_verifications_contract ON verifications(contract_name);
	CREATE INDEX IF NOT EXISTS idx_verifications_status ON verifications(status);
	`

	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	s.logger.Info("database migrations complete")
	return nil
}

// CreateVerification stores a verification record
func (s *SQLiteStore) CreateVerification(ctx context.Context, v *Verification) error {
	query := `
		INSERT INTO verifications (id, contract_name, file_path, creation_tx_input, deployed_bytecode, status, compiler_version, constructor_args, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		RETURNING created_at
	`
	if v.ID == "" {
		v.ID = generateID()
	}
	return s.db.QueryRowContext(ctx, query, v.ID, v.ContractName, v.FilePath, v.CreationTxInput, v.DeployedBytecode, v.Status, v.CompilerVersion, v.ConstructorArgs, v.Message).Scan(&v.CreatedAt)
}

// GetVerification retrieves a verification record by ID
func (s *SQLiteStore) GetVerification(ctx context.Context, id string) (*Verification, error) {
	query := `
		SELECT id, contract_name, file_path, creation_tx_input, deployed_bytecode, status, compiler_version, constructor_args, message, created_at
		FROM verifications
		WHERE id = ?
	`
	var v Verification
	var filePath, compilerVersion, constructorArgs, message sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.ContractName, &filePath, &v.CreationTxInput, &v.DeployedBytecode, &v.Status, &compilerVersion, &constructorArgs, &message, &v.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	v.FilePath = filePath.String
	v.CompilerVersion = compilerVersion.String
	v.ConstructorArgs = constructorArgs.String
	v.Message = message.String
	return &v, nil
}

// ListVerifications lists verification records with filtering and cursor-based pagination
func (s *SQLiteStore) ListVerifications(ctx context.Context, filter VerificationFilter, pagination PaginationParams) (*PaginatedResult[Verification], error) {
	query := `
		SELECT id, contract_name, status, compiler_version, created_at
		FROM verifications
		WHERE 1=1
	`
	var args []any

	if pagination.Cursor != "" {
		query += ` AND id > ?`
		args = append(args, pagination.Cursor)
	}
	if filter.ContractName != "" {
		query += ` AND contract_name = ?`
		args = append(args, filter.ContractName)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY id LIMIT ?`
	args = append(args, pagination.Limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Verification
	for rows.Next() {
		var v Verification
		var compilerVersion sql.NullString
		if err := rows.Scan(&v.ID, &v.ContractName, &v.Status, &compilerVersion, &v.CreatedAt); err != nil {
			return nil, err
		}
		v.CompilerVersion = compilerVersion.String
		records = append(records, v)
	}

	hasMore := len(records) > pagination.Limit
	if hasMore {
		records = records[:pagination.Limit]
	}
	var nextCursor string
	if len(records) > 0 {
		nextCursor = records[len(records)-1].ID
	}

	return &PaginatedResult[Verification]{
		Data:       records,
		HasMore:    hasMore,
		NextCursor: nextCursor,
	}, rows.Err()
}

// CreateAPIKey creates a new API key
func (s *SQLiteStore) CreateAPIKey(ctx context.Context, name string) (string, error) {
	key := generateAPIKey()
	hash := hashAPIKey(key)
	id := generateID()
	_, err := s.db.ExecContext(ctx, "INSERT INTO api_keys (id, key_hash, name, created_at) VALUES (?, ?, ?, datetime('now'))", id, hash, name)
	if err != nil {
		return "", err
	}
	return key, nil
}

// ValidateAPIKey validates an API key
func (s *SQLiteStore) ValidateAPIKey(ctx context.Context, key string) (*APIKey, error) {
	hash := hashAPIKey(key)
	var ak APIKey
	err := s.db.QueryRowContext(ctx, "SELECT id, key_hash, name, created_at FROM api_keys WHERE key_hash = ? AND revoked_at IS NULL", hash).Scan(
		&ak.ID, &ak.KeyHash, &ak.Name, &ak.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// Update last used
	_, _ = s.db.ExecContext(ctx, "UPDATE api_keys SET last_used_at = datetime('now') WHERE id = ?", ak.ID)
	return &ak, nil
}

// ListAPIKeys lists all API keys
func (s *SQLiteStore) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at, last_used_at FROM api_keys WHERE revoked_at IS NULL")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var k APIKey
		var lastUsed sql.NullString
		if err := rows.Scan(&k.ID, &k.Name, &k.CreatedAt, &lastUsed); err != nil {
			return nil, err
		}
		if lastUsed.Valid {
			k.LastUsedAt = lastUsed.String
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// RevokeAPIKey revokes an API key
func (s *SQLiteStore) RevokeAPIKey(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE api_keys SET revoked_at = datetime('now') WHERE id = ? AND revoked_at IS NULL", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
