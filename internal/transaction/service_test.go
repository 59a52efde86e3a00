package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/hitoshi/aether/internal/model"
	"github.com/hitoshi/aether/internal/repository"
)

type mockTransactionRepo struct {
	createFn       func(ctx context.Context, transaction *model.Transaction) error
	listByUserIDFn func(ctx context.Context, userID string) ([]*model.Transaction, error)
}

func (m *mockTransactionRepo) Create(ctx context.Context, transaction *model.Transaction) error {
	if m.createFn != nil {
		return m.createFn(ctx, transaction)
	}
	return nil
}

func (m *mockTransactionRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Transaction, error) {
	if m.listByUserIDFn != nil {
		return m.listByUserIDFn(ctx, userID)
	}
	return []*model.Transaction{}, nil
}

var _ repository.TransactionRepository = (*mockTransactionRepo)(nil)

func TestCreate_Success(t *testing.T) {
	var created *model.Transaction
	repo := &mockTransactionRepo{
		createFn: func(ctx context.Context, transaction *model.Transaction) error {
			created = transaction
			return nil
		},
	}
	svc := NewService(repo, nil)

	transaction, err := svc.Create(context.Background(), "identity-1", CreateInput{
		Amount:      "1250.50",
		Description: "家賃",
		Category:    "住居",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if created == nil {
		t.Fatal("expected transaction to be persisted")
	}
	if transaction.ID == "" {
		t.Error("expected generated transaction ID")
	}
	if transaction.UserID != "identity-1" {
		t.Errorf("UserID = %q, want %q", transaction.UserID, "identity-1")
	}
	if transaction.Amount.String() != "1250.5" {
		t.Errorf("Amount = %s, want 1250.5", transaction.Amount)
	}
	if transaction.Category == nil || *transaction.Category != "住居" {
		t.Errorf("Category = %v, want 住居", transaction.Category)
	}
	if transaction.Date.IsZero() {
		t.Error("expected server-assigned date")
	}
}

func TestCreate_AmountFromJSONNumber(t *testing.T) {
	svc := NewService(&mockTransactionRepo{}, nil)

	transaction, err := svc.Create(context.Background(), "identity-1", CreateInput{
		Amount:      json.Number("-42.75"),
		Description: "返金",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if transaction.Amount.String() != "-42.75" {
		t.Errorf("Amount = %s, want -42.75", transaction.Amount)
	}
}

func TestCreate_InvalidAmount(t *testing.T) {
	cases := []struct {
		name   string
		amount any
	}{
		{"missing", nil},
		{"empty string", ""},
		{"whitespace string", "   "},
		{"non-numeric string", "abc"},
		{"nan string", "NaN"},
		{"inf string", "Inf"},
		{"negative inf string", "-Inf"},
		{"nan float", math.NaN()},
		{"inf float", math.Inf(1)},
		{"boolean", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockTransactionRepo{
				createFn: func(ctx context.Context, transaction *model.Transaction) error {
					t.Error("store must not be written when amount is invalid")
					return nil
				},
			}
			svc := NewService(repo, nil)

			_, err := svc.Create(context.Background(), "identity-1", CreateInput{
				Amount:      tc.amount,
				Description: "x",
			})

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidAmount {
				t.Fatalf("expected INVALID_AMOUNT, got %v", err)
			}
		})
	}
}

func TestCreate_MissingDescription(t *testing.T) {
	repo := &mockTransactionRepo{
		createFn: func(ctx context.Context, transaction *model.Transaction) error {
			t.Error("store must not be written when description is missing")
			return nil
		},
	}
	svc := NewService(repo, nil)

	for _, description := range []string{"", "   "} {
		_, err := svc.Create(context.Background(), "identity-1", CreateInput{
			Amount:      "10",
			Description: description,
		})

		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeMissingDescription {
			t.Fatalf("expected MISSING_DESCRIPTION for %q, got %v", description, err)
		}
	}
}

func TestCreate_BlankCategoryStoredAsNull(t *testing.T) {
	var created *model.Transaction
	repo := &mockTransactionRepo{
		createFn: func(ctx context.Context, transaction *model.Transaction) error {
			created = transaction
			return nil
		},
	}
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), "identity-1", CreateInput{
		Amount:      "10",
		Description: "昼食",
		Category:    "   ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Category != nil {
		t.Errorf("Category = %v, want nil", *created.Category)
	}
}

func TestCreate_StoreFailure(t *testing.T) {
	repo := &mockTransactionRepo{
		createFn: func(ctx context.Context, transaction *model.Transaction) error {
			return errors.New("connection reset")
		},
	}
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), "identity-1", CreateInput{
		Amount:      "10",
		Description: "x",
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("unexpected APIError for store failure: %v", apiErr)
	}
}

func TestList_ReturnsRepositoryResult(t *testing.T) {
	want := []*model.Transaction{
		{ID: "t2", Description: "後の取引"},
		{ID: "t1", Description: "先の取引"},
	}
	repo := &mockTransactionRepo{
		listByUserIDFn: func(ctx context.Context, userID string) ([]*model.Transaction, error) {
			if userID != "identity-1" {
				t.Errorf("userID = %q, want %q", userID, "identity-1")
			}
			return want, nil
		},
	}
	svc := NewService(repo, nil)

	got, err := svc.List(context.Background(), "identity-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "t2" {
		t.Errorf("unexpected result: %v", got)
	}
}

func TestList_EmptyLedger(t *testing.T) {
	svc := NewService(&mockTransactionRepo{}, nil)

	got, err := svc.List(context.Background(), "identity-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got == nil {
		t.Error("expected empty non-nil slice")
	}
	if len(got) != 0 {
		t.Errorf("expected no transactions, got %d", len(got))
	}
}

func TestParseAmount_PreservesDecimalPrecision(t *testing.T) {
	d, err := parseAmount("0.1")
	if err != nil {
		t.Fatalf("parseAmount() error = %v", err)
	}
	if d.String() != "0.1" {
		t.Errorf("parseAmount(0.1) = %s, want 0.1", d)
	}
}
