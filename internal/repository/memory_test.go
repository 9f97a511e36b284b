package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/edumind/auth-service/internal/domain"
)

func TestMemoryUserRepository(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user := &domain.User{
		ID:       "usr-1",
		Email:    "alice@example.org",
		TenantID: "tnt-1",
		Metadata: domain.UserMetadata{IsActive: true},
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, "usr-1")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got == nil || got.Email != "alice@example.org" {
			t.Errorf("GetByID() = %+v, want alice@example.org", got)
		}
	})

	t.Run("get by email", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "alice@example.org")
		if err != nil {
			t.Fatalf("GetByEmail() error = %v", err)
		}
		if got == nil || got.ID != "usr-1" {
			t.Errorf("GetByEmail() = %+v, want usr-1", got)
		}
	})

	t.Run("unknown id returns nil without error", func(t *testing.T) {
		got, err := repo.GetByID(ctx, "usr-missing")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got != nil {
			t.Errorf("GetByID() = %+v, want nil", got)
		}
	})

	t.Run("reads return copies", func(t *testing.T) {
		got, _ := repo.GetByID(ctx, "usr-1")
		got.Email = "mutated@example.org"

		again, _ := repo.GetByID(ctx, "usr-1")
		if again.Email != "alice@example.org" {
			t.Errorf("stored user mutated through a read copy: %v", again.Email)
		}
	})

	t.Run("update reindexes email", func(t *testing.T) {
		got, _ := repo.GetByID(ctx, "usr-1")
		got.Email = "alice.renamed@example.org"
		if err := repo.Update(ctx, got); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		if old, _ := repo.GetByEmail(ctx, "alice@example.org"); old != nil {
			t.Error("old email still resolves after update")
		}
		if renamed, _ := repo.GetByEmail(ctx, "alice.renamed@example.org"); renamed == nil {
			t.Error("new email does not resolve after update")
		}
	})
}

func TestMemoryRefreshTokenRepository_Consume(t *testing.T) {
	repo := NewMemoryRefreshTokenRepository()
	ctx := context.Background()

	record := &domain.RefreshTokenRecord{
		SubjectID: "usr-1",
		TenantID:  "tnt-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	t.Run("consume deletes the record", func(t *testing.T) {
		if err := repo.Save(ctx, "token-1", record); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := repo.Consume(ctx, "token-1")
		if err != nil {
			t.Fatalf("Consume() error = %v", err)
		}
		if got == nil || got.SubjectID != "usr-1" {
			t.Errorf("Consume() = %+v, want usr-1", got)
		}

		again, err := repo.Consume(ctx, "token-1")
		if err != nil {
			t.Fatalf("Consume() error = %v", err)
		}
		if again != nil {
			t.Errorf("Consume() second call = %+v, want nil", again)
		}
	})

	t.Run("unknown token returns nil without error", func(t *testing.T) {
		got, err := repo.Consume(ctx, "never-saved")
		if err != nil {
			t.Fatalf("Consume() error = %v", err)
		}
		if got != nil {
			t.Errorf("Consume() = %+v, want nil", got)
		}
	})

	t.Run("concurrent consumers get exactly one winner", func(t *testing.T) {
		if err := repo.Save(ctx, "contested", record); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		const workers = 32
		var wg sync.WaitGroup
		wins := make(chan *domain.RefreshTokenRecord, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := repo.Consume(ctx, "contested")
				if err != nil {
					t.Errorf("Consume() error = %v", err)
					return
				}
				if got != nil {
					wins <- got
				}
			}()
		}
		wg.Wait()
		close(wins)

		winners := 0
		for range wins {
			winners++
		}
		if winners != 1 {
			t.Errorf("Consume() winners = %d, want 1", winners)
		}
	})

	t.Run("delete by subject removes every token", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			if err := repo.Save(ctx, fmt.Sprintf("subject-token-%d", i), record); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
		}
		other := &domain.RefreshTokenRecord{SubjectID: "usr-other", ExpiresAt: time.Now().Add(time.Hour)}
		if err := repo.Save(ctx, "other-token", other); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		if err := repo.DeleteBySubject(ctx, "usr-1"); err != nil {
			t.Fatalf("DeleteBySubject() error = %v", err)
		}

		for i := 0; i < 3; i++ {
			if got, _ := repo.Consume(ctx, fmt.Sprintf("subject-token-%d", i)); got != nil {
				t.Errorf("token %d survived DeleteBySubject", i)
			}
		}
		if got, _ := repo.Consume(ctx, "other-token"); got == nil {
			t.Error("unrelated subject's token was deleted")
		}
	})
}
