package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore creates a new Postgres store
func NewPostgresStore(url string, logger *slog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{db: db, logger: logger}, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations
func (s *PostgresStore) Migrate(ctx context.Context) error {
	schema := `
	-- Verification records
	CREATE TABLE IF NOT EXISTS verifications (
		id UUID PRIMARY KEY,
		contract_name TEXT NOT NULL,
		file_path TEXT,
		creation_tx_input TEXT NOT NULL,
		deployed_bytecode TEXT NOT NULL,
		status TEXT NOT NULL,
		compiler_version TEXT,
		constructor_args TEXT,
		message TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	-- API keys
	CREATE TABLE IF NOT EXISTS api_keys (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		key_hash TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		last_used_at TIMESTAMPTZ,
		revoked_at TIMESTAMPTZ
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
func (s *PostgresStore) CreateVerification(ctx context.Context, v *Verification) error {
	query := `
		INSERT INTO verifications (id, contract_name, file_path, creation_tx_input, deployed_bytecode, status, compiler_version, constructor_args, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at::TEXT
	`
	if v.ID == "" {
		v.ID = generateID()
	}
	return s.db.QueryRowContext(ctx, query, v.ID, v.ContractName, v.FilePath, v.CreationTxInput, v.DeployedBytecode, v.Status, v.CompilerVersion, v.ConstructorArgs, v.Message).Scan(&v.CreatedAt)
}

// GetVerification retrieves a verification record by ID
func (s *PostgresStore) GetVerification(ctx context.Context, id string) (*Verification, error) {
	query := `
		SELECT id, contract_name, file_path, creation_tx_input, deployed_bytecode, status, compiler_version, constructor_args, message, created_at::TEXT
		FROM verifications
		WHERE id = $1
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
func (s *PostgresStore) ListVerifications(ctx context.Context, filter VerificationFilter, pagination PaginationParams) (*PaginatedResult[Verification], error) {
	query := `
		SELECT id, contract_name, status, compiler_version, created_at::TEXT
		FROM verifications
		WHERE 1=1
	`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if pagination.Cursor != "" {
		query += ` AND id > ` + arg(pagination.Cursor)
	}
	if filter.ContractName != "" {
		query += ` AND contract_name = ` + arg(filter.ContractName)
	}
	if filter.Status != "" {
		query += ` AND status = ` + arg(filter.Status)
	}
	query += ` ORDER BY id LIMIT ` + arg(pagination.Limit+1)

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
func (s *PostgresStore) CreateAPIKey(ctx context.Context, name string) (string, error) {
	key := generateAPIKey()
	hash := hashAPIKey(key)
	id := generateID()
	_, err := s.db.ExecContext(ctx, "INSERT INTO api_keys (id, key_hash, name) VALUES ($1, $2, $3)", id, hash, name)
	if err != nil {
		return "", err
	}
	return key, nil
}

// ValidateAPIKey validates an API key
func (s *PostgresStore) ValidateAPIKey(ctx context.Context, key string) (*APIKey, error) {
	hash := hashAPIKey(key)
	var ak APIKey
	err := s.db.QueryRowContext(ctx, "SELECT id, key_hash, name, created_at::TEXT FROM api_keys WHERE key_hash = $1 AND revoked_at IS NULL", hash).Scan(
		&ak.ID, &ak.KeyHash, &ak.Name, &ak.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// Update last used
	_, _ = s.db.ExecContext(ctx, "UPDATE api_keys SET last_used_at = NOW() WHERE id = $1", ak.ID)
	return &ak, nil
}

// ListAPIKeys lists all API keys
func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at::TEXT, last_used_at::TEXT FROM api_keys WHERE revoked_at IS NULL")
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
func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE api_keys SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL", id)
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
