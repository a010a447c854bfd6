package mock

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"qcs/models"
)

func TestNewSeedsExpectedRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := New(ctx)
	if err != nil {
		t.Fatalf("mock database initialization failed: %v", err)
	}

	counts := map[string]any{
		"suppliers":  &models.Supplier{},
		"packages":   &models.Package{},
		"products":   &models.Product{},
		"batches":    &models.Batch{},
		"color data": &models.ColorData{},
	}
	for name, model := range counts {
		var count int64
		if err := db.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if count == 0 {
			t.Fatalf("expected seeded %s", name)
		}
	}

	var batch models.Batch
	if err := db.WithContext(ctx).Preload("Product").Where("number = ?", "bx123").First(&batch).Error; err != nil {
		t.Fatalf("query batch: %v", err)
	}
	if got := batch.String(); got != "some base coat 123 bx123" {
		t.Fatalf("batch.String() = %q", got)
	}

	var user models.User
	if err := db.WithContext(ctx).Where("email = ?", UserEmail).First(&user).Error; err != nil {
		t.Fatalf("query user: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(UserPassword)); err != nil {
		t.Fatalf("unexpected password hash: %v", err)
	}
}

func TestOpenIsIsolatedPerCall(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seeded, err := New(ctx)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	empty, err := Open(ctx)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	var seededCount, emptyCount int64
	seeded.Model(&models.Supplier{}).Count(&seededCount)
	empty.Model(&models.Supplier{}).Count(&emptyCount)
	if seededCount == 0 || emptyCount != 0 {
		t.Fatalf("supplier counts = %d seeded, %d empty", seededCount, emptyCount)
	}
}
