package sessions

import (
	"testing"
	"time"

	"fitcenter/internal/models"
)

func testUser() models.SessionUser {
	return models.SessionUser{
		ID:       1,
		UserType: models.UserTypeMember,
		Email:    "ivanov@example.com",
		FullName: "Иван Иванов",
		Role:     "member",
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(100, time.Hour)

	session := store.Create(testUser())
	if session.ID == "" {
		t.Fatal("session_id не сгенерирован")
	}

	got, ok := store.Get(session.ID)
	if !ok {
		t.Fatal("созданная сессия не найдена")
	}
	if got.User.Email != "ivanov@example.com" {
		t.Fatalf("неожиданный снимок пользователя: %+v", got.User)
	}
}

func TestStore_ExpiredSessionNotReturned(t *testing.T) {
	store := NewStore(100, time.Hour)

	session := store.Create(testUser())
	// Принудительно просрочим сессию, не дожидаясь вытеснения кешем.
	session.ExpiresAt = time.Now().Add(-time.Minute)

	if _, ok := store.Get(session.ID); ok {
		t.Fatal("истёкшая сессия не должна резолвиться")
	}
}

func TestStore_DeleteIdempotent(t *testing.T) {
	store := NewStore(100, time.Hour)

	session := store.Create(testUser())
	store.Delete(session.ID)
	store.Delete(session.ID) // повторное удаление — не паника и не ошибка
	store.Delete("несуществующий-id")

	if _, ok := store.Get(session.ID); ok {
		t.Fatal("сессия найдена после удаления")
	}
}
