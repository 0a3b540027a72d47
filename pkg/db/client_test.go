package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/homeshopping/homeshopping-backend/pkg/config"
	pkgerrors "github.com/homeshopping/homeshopping-backend/pkg/errors"
)

type testModel struct {
	ID   int
	Name string `gorm:"uniqueIndex"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:client_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	client := Wrap(db)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	client := Wrap(newTestDB(t))
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestUniqueViolationTranslatesToIntegrity(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	if err := db.Create(&testModel{Name: "dup"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := db.Create(&testModel{Name: "dup"}).Error
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation, got %v", err)
	}

	translated := TranslateIntegrity(err)
	typed := pkgerrors.As(translated)
	if typed == nil || typed.Code() != pkgerrors.CodeIntegrity {
		t.Fatalf("expected integrity error, got %v", translated)
	}
	if typed.Message() != pkgerrors.IntegrityMessage {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestIsUniqueViolationMatchesConstraint(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_orders_number"}
	if !IsUniqueViolation(pgErr, "ux_orders_number") {
		t.Fatal("expected constraint match")
	}
	if IsUniqueViolation(pgErr, "ux_other") {
		t.Fatal("did not expect match for other constraint")
	}
	if IsUniqueViolation(errors.New("boom"), "") {
		t.Fatal("plain errors are not unique violations")
	}
}

func TestTranslateIntegrityKeepsTypedErrors(t *testing.T) {
	t.Parallel()

	typed := pkgerrors.New(pkgerrors.CodeConflict, "duplicate order number")
	if got := TranslateIntegrity(typed); got != typed {
		t.Fatalf("typed errors should pass through, got %v", got)
	}
}

func TestDialectorForRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), config.DBConfig{DSN: "ignored", Driver: "mysql"}, nil); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}
