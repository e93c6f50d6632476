package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"fitcenter/internal/models"
)

// Мок-репозиторий токенов (заглушка с семантикой SQL-запросов)
type mockResetRepo struct {
	tokens  map[string]*models.PasswordResetToken // ключ — token_hash
	nextID  int64
	created int
}

func newMockResetRepo() *mockResetRepo {
	return &mockResetRepo{tokens: make(map[string]*models.PasswordResetToken)}
}

func (m *mockResetRepo) Create(_ context.Context, t *models.PasswordResetToken) error {
	m.nextID++
	t.ID = m.nextID
	t.CreatedAt = time.Now()
	cp := *t
	m.tokens[t.TokenHash] = &cp
	m.created++
	return nil
}

func (m *mockResetRepo) InvalidatePending(_ context.Context, ut models.UserType, userID int) error {
	now := time.Now()
	for _, t := range m.tokens {
		if t.UserType == ut && t.UserID == userID && t.UsedAt == nil {
			t.UsedAt = &now
		}
	}
	return nil
}

func (m *mockResetRepo) GetValidByHash(_ context.Context, ut models.UserType, hash string) (*models.PasswordResetToken, error) {
	t, ok := m.tokens[hash]
	if !ok || t.UserType != ut || !t.Valid(time.Now()) {
		return nil, errors.New("no rows")
	}
	cp := *t
	return &cp, nil
}

func (m *mockResetRepo) Consume(_ context.Context, ut models.UserType, hash, passwordHash string) (*models.PasswordResetToken, error) {
	t, ok := m.tokens[hash]
	if !ok || t.UserType != ut || !t.Valid(time.Now()) {
		return nil, errors.New("no rows")
	}
	now := time.Now()
	t.UsedAt = &now
	cp := *t
	return &cp, nil
}

func (m *mockResetRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for hash, t := range m.tokens {
		if t.ExpiresAt.Before(time.Now()) {
			delete(m.tokens, hash)
			n++
		}
	}
	return n, nil
}

type mockAccounts struct {
	accounts map[string]*models.Account // ключ — userType|email
}

func (m *mockAccounts) GetByEmail(_ context.Context, ut models.UserType, email string) (*models.Account, error) {
	acc, ok := m.accounts[string(ut)+"|"+email]
	if !ok {
		return nil, errors.New("not found")
	}
	return acc, nil
}

func drainEmailQueue() {
	for {
		select {
		case <-EmailQueue:
		default:
			return
		}
	}
}

var tokenLinkRe = regexp.MustCompile(`token=([A-Za-z0-9_-]+)&type=`)

// lastQueuedToken достаёт сырой токен из письма, поставленного в очередь.
func lastQueuedToken(t *testing.T) string {
	t.Helper()
	select {
	case job := <-EmailQueue:
		match := tokenLinkRe.FindStringSubmatch(job.Body)
		if match == nil {
			t.Fatal("в письме нет ссылки с токеном")
		}
		return match[1]
	default:
		t.Fatal("письмо не поставлено в очередь")
		return ""
	}
}

func newTestPasswordService(repo *mockResetRepo, accounts *mockAccounts) *PasswordService {
	return NewPasswordService(repo, accounts, nil, "https://fit.example.com", 30*time.Minute)
}

func TestRequestReset_UnknownEmail_NoDisclosure(t *testing.T) {
	drainEmailQueue()
	repo := newMockResetRepo()
	svc := newTestPasswordService(repo, &mockAccounts{accounts: map[string]*models.Account{}})

	if err := svc.RequestReset(context.Background(), "nobody@example.com", models.UserTypeMember); err != nil {
		t.Fatalf("для неизвестного email ошибки быть не должно: %v", err)
	}
	if repo.created != 0 {
		t.Fatal("токен не должен создаваться для неизвестного email")
	}
	select {
	case <-EmailQueue:
		t.Fatal("письмо не должно отправляться для неизвестного email")
	default:
	}
}

func TestRequestReset_InvalidatesPriorTokens(t *testing.T) {
	drainEmailQueue()
	repo := newMockResetRepo()
	accounts := &mockAccounts{accounts: map[string]*models.Account{
		"member|ivanov@example.com": {ID: 7, UserType: models.UserTypeMember, Email: "ivanov@example.com", FullName: "Иван Иванов"},
	}}
	svc := newTestPasswordService(repo, accounts)

	if err := svc.RequestReset(context.Background(), "Ivanov@Example.com", models.UserTypeMember); err != nil {
		t.Fatalf("ошибка первого запроса: %v", err)
	}
	first := lastQueuedToken(t)

	if err := svc.RequestReset(context.Background(), "ivanov@example.com", models.UserTypeMember); err != nil {
		t.Fatalf("ошибка второго запроса: %v", err)
	}
	_ = lastQueuedToken(t)

	// Старый токен погашен выдачей нового
	if _, err := svc.Verify(context.Background(), first, models.UserTypeMember); err == nil {
		t.Fatal("старый токен должен быть недействителен после выдачи нового")
	}
}

func TestResetPassword_TooShort(t *testing.T) {
	drainEmailQueue()
	repo := newMockResetRepo()
	svc := newTestPasswordService(repo, &mockAccounts{accounts: map[string]*models.Account{}})

	_, err := svc.ResetPassword(context.Background(), "any", "12345", models.UserTypeMember)
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("ожидалась ошибка короткого пароля, получено: %v", err)
	}

	// Для персонала порог строже: 7 символов мало
	_, err = svc.ResetPassword(context.Background(), "any", "1234567", models.UserTypeStaff)
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("ожидалась ошибка короткого пароля для staff, получено: %v", err)
	}
}

func TestResetPassword_ConsumesToken(t *testing.T) {
	drainEmailQueue()
	repo := newMockResetRepo()
	accounts := &mockAccounts{accounts: map[string]*models.Account{
		"member|ivanov@example.com": {ID: 7, UserType: models.UserTypeMember, Email: "ivanov@example.com", FullName: "Иван Иванов"},
	}}
	svc := newTestPasswordService(repo, accounts)

	if err := svc.RequestReset(context.Background(), "ivanov@example.com", models.UserTypeMember); err != nil {
		t.Fatalf("ошибка запроса сброса: %v", err)
	}
	token := lastQueuedToken(t)

	// До потребления токен валиден
	if _, err := svc.Verify(context.Background(), token, models.UserTypeMember); err != nil {
		t.Fatalf("токен должен быть валиден: %v", err)
	}

	if _, err := svc.ResetPassword(context.Background(), token, "новый-пароль", models.UserTypeMember); err != nil {
		t.Fatalf("ошибка сброса пароля: %v", err)
	}

	// Повторная верификация после потребления обязана провалиться
	if _, err := svc.Verify(context.Background(), token, models.UserTypeMember); err == nil {
		t.Fatal("использованный токен не должен проходить верификацию")
	}

	// И повторное потребление тоже
	if _, err := svc.ResetPassword(context.Background(), token, "ещё-один-пароль", models.UserTypeMember); err == nil {
		t.Fatal("использованный токен не должен потребляться повторно")
	}
}

func TestVerify_WrongUserType(t *testing.T) {
	drainEmailQueue()
	repo := newMockResetRepo()
	accounts := &mockAccounts{accounts: map[string]*models.Account{
		"member|ivanov@example.com": {ID: 7, UserType: models.UserTypeMember, Email: "ivanov@example.com", FullName: "Иван Иванов"},
	}}
	svc := newTestPasswordService(repo, accounts)

	if err := svc.RequestReset(context.Background(), "ivanov@example.com", models.UserTypeMember); err != nil {
		t.Fatalf("ошибка запроса сброса: %v", err)
	}
	token := lastQueuedToken(t)

	if _, err := svc.Verify(context.Background(), token, models.UserTypeStaff); err == nil {
		t.Fatal("токен члена клуба не должен проходить как staff")
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	drainEmailQueue()
	repo := newMockResetRepo()
	accounts := &mockAccounts{accounts: map[string]*models.Account{
		"member|ivanov@example.com": {ID: 7, UserType: models.UserTypeMember, Email: "ivanov@example.com", FullName: "Иван Иванов"},
	}}
	svc := newTestPasswordService(repo, accounts)

	if err := svc.RequestReset(context.Background(), "ivanov@example.com", models.UserTypeMember); err != nil {
		t.Fatalf("ошибка запроса сброса: %v", err)
	}
	token := lastQueuedToken(t)

	// Просрочим токен вручную
	for _, stored := range repo.tokens {
		stored.ExpiresAt = time.Now().Add(-time.Minute)
	}

	if _, err := svc.Verify(context.Background(), token, models.UserTypeMember); err == nil {
		t.Fatal("истёкший токен не должен проходить верификацию")
	}
}

func TestCleanupExpired_Idempotent(t *testing.T) {
	drainEmailQueue()
	repo := newMockResetRepo()
	accounts := &mockAccounts{accounts: map[string]*models.Account{
		"member|ivanov@example.com": {ID: 7, UserType: models.UserTypeMember, Email: "ivanov@example.com", FullName: "Иван Иванов"},
	}}
	svc := newTestPasswordService(repo, accounts)

	if err := svc.RequestReset(context.Background(), "ivanov@example.com", models.UserTypeMember); err != nil {
		t.Fatalf("ошибка запроса сброса: %v", err)
	}
	drainEmailQueue()

	for _, stored := range repo.tokens {
		stored.ExpiresAt = time.Now().Add(-time.Minute)
	}

	n, err := svc.CleanupExpired(context.Background())
	if err != nil {
		t.Fatalf("ошибка очистки: %v", err)
	}
	if n != 1 {
		t.Fatalf("ожидался 1 удалённый токен, получено %d", n)
	}

	n, err = svc.CleanupExpired(context.Background())
	if err != nil {
		t.Fatalf("ошибка повторной очистки: %v", err)
	}
	if n != 0 {
		t.Fatalf("повторная очистка должна удалить 0 токенов, получено %d", n)
	}
}
