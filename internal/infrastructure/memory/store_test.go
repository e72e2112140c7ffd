package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/domain/repositories"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/memory"
	"github.com/bimakw/portfolio-tracker/internal/testutil"
)

func TestHoldingRepo(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewHoldingRepo()

	btc := testutil.CreateTestHolding()
	eth := testutil.CreateTestHolding(testutil.HoldingWithID("eth"), testutil.HoldingWithSymbol("ETH"))
	bobs := testutil.CreateTestHolding(testutil.HoldingWithID("bob-btc"), testutil.HoldingWithOwner(testutil.BobID))
	// Same id under another kind is a different holding
	stock := testutil.CreateTestStock(testutil.HoldingWithID(btc.ID))

	for _, h := range []entities.Holding{btc, eth, bobs, stock} {
		h := h
		if err := repo.Create(ctx, &h); err != nil {
			t.Fatalf("Create(%s/%s): %v", h.Kind, h.ID, err)
		}
	}

	if err := repo.Create(ctx, &btc); !errors.Is(err, repositories.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	list, _ := repo.ListByOwner(ctx, testutil.AliceID, entities.KindCrypto)
	if len(list) != 2 || list[0].ID != btc.ID || list[1].ID != "eth" {
		t.Errorf("expected [btc eth] in insertion order, got %+v", list)
	}

	if h, _ := repo.GetByID(ctx, testutil.BobID, entities.KindCrypto, btc.ID); h != nil {
		t.Error("Bob must not see Alice's holding")
	}

	deleted, _ := repo.Delete(ctx, testutil.BobID, entities.KindCrypto, btc.ID)
	if deleted {
		t.Error("Bob must not delete Alice's holding")
	}
	deleted, _ = repo.Delete(ctx, testutil.AliceID, entities.KindCrypto, btc.ID)
	if !deleted {
		t.Error("expected delete to succeed")
	}
	if h, _ := repo.GetByID(ctx, testutil.AliceID, entities.KindStock, btc.ID); h == nil {
		t.Error("deleting the crypto holding must keep the stock with the same id")
	}

	owners, _ := repo.ListOwners(ctx)
	if len(owners) != 2 || owners[0] != testutil.AliceID || owners[1] != testutil.BobID {
		t.Errorf("unexpected owners %v", owners)
	}
}

func TestHistoryRepo_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewHistoryRepo()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	records := []entities.HistoryRecord{
		{ID: "a", OwnerID: testutil.AliceID, Timestamp: base},
		{ID: "b", OwnerID: testutil.AliceID, Timestamp: base.Add(time.Hour)},
		{ID: "c", OwnerID: testutil.AliceID, Timestamp: base.Add(time.Hour)},
		{ID: "d", OwnerID: testutil.BobID, Timestamp: base.Add(2 * time.Hour)},
	}
	for i := range records {
		if err := repo.Create(ctx, &records[i]); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := repo.Create(ctx, &records[0]); !errors.Is(err, repositories.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	list, _ := repo.ListByOwner(ctx, testutil.AliceID)
	var ids []string
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	if len(ids) != 3 || ids[0] != "c" || ids[1] != "b" || ids[2] != "a" {
		t.Errorf("expected [c b a], got %v", ids)
	}
}

func TestUserAndSessionRepo(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepo()
	sessions := memory.NewSessionRepo()

	alice := testutil.CreateTestUser()
	if err := users.Create(ctx, alice); err != nil {
		t.Fatalf("Create: %v", err)
	}
	dup := testutil.CreateTestUser(testutil.UserWithID("user_other000000"))
	if err := users.Create(ctx, dup); !errors.Is(err, repositories.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for same email, got %v", err)
	}

	picture := "https://img.example/alice.png"
	if err := users.UpdateProfile(ctx, alice.UserID, "Alice L.", &picture); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	got, _ := users.GetByEmail(ctx, "alice@example.com")
	if got == nil || got.Name != "Alice L." || got.Picture == nil || *got.Picture != picture {
		t.Errorf("unexpected user %+v", got)
	}
	if u, _ := users.GetByID(ctx, "missing"); u != nil {
		t.Error("expected nil for unknown id")
	}

	s := &entities.Session{Token: "tok", UserID: alice.UserID, ExpiresAt: time.Now().Add(time.Hour)}
	if err := sessions.Create(ctx, s); err != nil {
		t.Fatalf("Create session: %v", err)
	}
	if err := sessions.Create(ctx, s); !errors.Is(err, repositories.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	if got, _ := sessions.GetByToken(ctx, "tok"); got == nil || got.UserID != alice.UserID {
		t.Errorf("unexpected session %+v", got)
	}
	_ = sessions.Delete(ctx, "tok")
	if got, _ := sessions.GetByToken(ctx, "tok"); got != nil {
		t.Error("expected session to be deleted")
	}
}
