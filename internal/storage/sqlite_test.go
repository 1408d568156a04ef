package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"log/slog"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := NewSQLiteStore(dbPath, logger)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateAndGetVerification", func(t *testing.T) {
		v := &Verification{
			ContractName:     "Owner",
			FilePath:         "contracts/Owner.sol",
			CreationTxInput:  "0x608060",
			DeployedBytecode: "0x6080",
			Status:           "full",
			CompilerVersion:  "0.8.14+commit.80d49f37",
			ConstructorArgs:  "0x0fff",
			Message:          "verified",
		}

		if err := store.CreateVerification(ctx, v); err != nil {
			t.Fatalf("CreateVerification() error = %v", err)
		}
		if v.ID == "" {
			t.Fatal("CreateVerification() did not assign an ID")
		}
		if v.CreatedAt == "" {
			t.Error("CreateVerification() did not populate CreatedAt")
		}

		got, err := store.GetVerification(ctx, v.ID)
		if err != nil {
			t.Fatalf("GetVerification() error = %v", err)
		}
		if got.ContractName != v.ContractName {
			t.Errorf("ContractName = %v, want %v", got.ContractName, v.ContractName)
		}
		if got.Status != v.Status {
			t.Errorf("Status = %v, want %v", got.Status, v.Status)
		}
		if got.CompilerVersion != v.CompilerVersion {
			t.Errorf("CompilerVersion = %v, want %v", got.CompilerVersion, v.CompilerVersion)
		}
		if got.ConstructorArgs != v.ConstructorArgs {
			t.Errorf("ConstructorArgs = %v, want %v", got.ConstructorArgs, v.ConstructorArgs)
		}
	})

	t.Run("GetVerificationNotFound", func(t *testing.T) {
		_, err := store.GetVerification(ctx, "does-not-exist")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetVerification() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListVerifications", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			status := "none"
			if i%2 == 0 {
				status = "full"
			}
			v := &Verification{
				ContractName:     "Token",
				CreationTxInput:  "0x00",
				DeployedBytecode: "0x00",
				Status:           status,
			}
			if err := store.CreateVerification(ctx, v); err != nil {
				t.Fatalf("CreateVerification() error = %v", err)
			}
		}

		result, err := store.ListVerifications(ctx, VerificationFilter{ContractName: "Token"}, PaginationParams{Limit: 10})
		if err != nil {
			t.Fatalf("ListVerifications() error = %v", err)
		}
		if len(result.Data) != 5 {
			t.Errorf("got %d records, want 5", len(result.Data))
		}

		result, err = store.ListVerifications(ctx, VerificationFilter{ContractName: "Token", Status: "full"}, PaginationParams{Limit: 10})
		if err != nil {
			t.Fatalf("ListVerifications() error = %v", err)
		}
		if len(result.Data) != 3 {
			t.Errorf("got %d full records, want 3", len(result.Data))
		}
	})

	t.Run("ListVerificationsPagination", func(t *testing.T) {
		result, err := store.ListVerifications(ctx, VerificationFilter{ContractName: "Token"}, PaginationParams{Limit: 2})
		if err != nil {
			t.Fatalf("ListVerifications() error = %v", err)
		}
		if len(result.Data) != 2 || !result.HasMore {
			t.Fatalf("page 1: got %d records hasMore=%v, want 2 records with more", len(result.Data), result.HasMore)
		}

		seen := map[string]bool{}
		for _, v := range result.Data {
			seen[v.ID] = true
		}

		result, err = store.ListVerifications(ctx, VerificationFilter{ContractName: "Token"}, PaginationParams{Limit: 10, Cursor: result.NextCursor})
		if err != nil {
			t.Fatalf("ListVerifications() error = %v", err)
		}
		if len(result.Data) != 3 {
			t.Errorf("page 2: got %d records, want 3", len(result.Data))
		}
		for _, v := range result.Data {
			if seen[v.ID] {
				t.Errorf("record %s returned on both pages", v.ID)
			}
		}
	})
}

func TestSQLiteAPIKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key, err := store.CreateAPIKey(ctx, "ci")
	if err != nil {
		t.Fatalf("CreateAPIKey() error = %v", err)
	}

	ak, err := store.ValidateAPIKey(ctx, key)
	if err != nil {
		t.Fatalf("ValidateAPIKey() error = %v", err)
	}
	if ak.Name != "ci" {
		t.Errorf("Name = %v, want ci", ak.Name)
	}

	if _, err := store.ValidateAPIKey(ctx, "sv_key_bogus"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ValidateAPIKey(bogus) error = %v, want ErrNotFound", err)
	}

	keys, err := store.ListAPIKeys(ctx)
	if err != nil {
		t.Fatalf("ListAPIKeys() error = %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("got %d keys, want 1", len(keys))
	}

	if err := store.RevokeAPIKey(ctx, ak.ID); err != nil {
		t.Fatalf("RevokeAPIKey() error = %v", err)
	}
	if _, err := store.ValidateAPIKey(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("revoked key still validates: %v", err)
	}
	if err := store.RevokeAPIKey(ctx, ak.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double revoke error = %v, want ErrNotFound", err)
	}
}
