package services

import (
	"context"
	"errors"
	"testing"

	"fitcenter/internal/models"
	"fitcenter/internal/utils"
)

// Мок-репозиторий аккаунтов
type mockAccountRepo struct {
	accounts map[string]*models.Account // ключ — userType|email
	nextID   int
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[string]*models.Account)}
}

func (m *mockAccountRepo) key(ut models.UserType, email string) string {
	return string(ut) + "|" + email
}

func (m *mockAccountRepo) CreateAccount(_ context.Context, acc *models.Account) error {
	m.nextID++
	acc.ID = m.nextID
	cp := *acc
	m.accounts[m.key(acc.UserType, acc.Email)] = &cp
	return nil
}

func (m *mockAccountRepo) IsEmailTaken(_ context.Context, ut models.UserType, email string) (bool, error) {
	_, ok := m.accounts[m.key(ut, email)]
	return ok, nil
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, ut models.UserType, email string) (*models.Account, error) {
	acc, ok := m.accounts[m.key(ut, email)]
	if !ok {
		return nil, errors.New("not found")
	}
	return acc, nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, ut models.UserType, id int) (*models.Account, error) {
	for _, acc := range m.accounts {
		if acc.UserType == ut && acc.ID == id {
			return acc, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockAccountRepo) UpdatePassword(_ context.Context, ut models.UserType, id int, passwordHash string) error {
	for _, acc := range m.accounts {
		if acc.UserType == ut && acc.ID == id {
			acc.PasswordHash = passwordHash
			return nil
		}
	}
	return errors.New("not found")
}

func (m *mockAccountRepo) GetAllPaginated(_ context.Context, ut models.UserType, limit, offset int) ([]*models.Account, int, error) {
	var out []*models.Account
	for _, acc := range m.accounts {
		if acc.UserType == ut {
			out = append(out, acc)
		}
	}
	return out, len(out), nil
}

func TestRegisterMember_HashesPassword(t *testing.T) {
	repo := newMockAccountRepo()
	svc := NewAuthService(repo)

	acc := &models.Account{Email: "Ivanov@Example.com", FullName: "Иван Иванов"}
	if err := svc.RegisterMember(context.Background(), acc, "пароль123"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	stored := repo.accounts["member|ivanov@example.com"]
	if stored == nil {
		t.Fatal("аккаунт не сохранён (email должен быть нормализован)")
	}
	if stored.PasswordHash == "пароль123" || stored.PasswordHash == "" {
		t.Fatal("пароль должен храниться в виде bcrypt-хеша")
	}
	if !utils.CheckPasswordHash("пароль123", stored.PasswordHash) {
		t.Fatal("хеш не совпадает с исходным паролем")
	}
	if stored.Role != "member" {
		t.Fatalf("ожидалась роль member, получено %q", stored.Role)
	}
}

func TestRegisterMember_ShortPassword(t *testing.T) {
	repo := newMockAccountRepo()
	svc := NewAuthService(repo)

	acc := &models.Account{Email: "ivanov@example.com", FullName: "Иван Иванов"}
	err := svc.RegisterMember(context.Background(), acc, "12345")
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("ожидалась ошибка короткого пароля, получено: %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockAccountRepo()
	svc := NewAuthService(repo)

	first := &models.Account{Email: "ivanov@example.com", FullName: "Иван Иванов"}
	if err := svc.RegisterMember(context.Background(), first, "пароль123"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	dup := &models.Account{Email: "ivanov@example.com", FullName: "Другой Иванов"}
	if err := svc.RegisterMember(context.Background(), dup, "пароль123"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("ожидалась ошибка занятого email, получено: %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	repo := newMockAccountRepo()
	svc := NewAuthService(repo)

	acc := &models.Account{Email: "ivanov@example.com", FullName: "Иван Иванов"}
	if err := svc.RegisterMember(context.Background(), acc, "пароль123"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	got, _, err := svc.Login(context.Background(), "IVANOV@example.com", "пароль123", models.UserTypeMember, "127.0.0.1")
	if err != nil {
		t.Fatalf("ошибка входа: %v", err)
	}
	if got.ID != acc.ID {
		t.Fatalf("вернулся не тот аккаунт: %d != %d", got.ID, acc.ID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockAccountRepo()
	svc := NewAuthService(repo)

	acc := &models.Account{Email: "ivanov@example.com", FullName: "Иван Иванов"}
	if err := svc.RegisterMember(context.Background(), acc, "пароль123"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	_, _, err := svc.Login(context.Background(), "ivanov@example.com", "не-тот-пароль", models.UserTypeMember, "127.0.0.1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("ожидалась ошибка учётных данных, получено: %v", err)
	}
}

func TestLogin_WrongUserType(t *testing.T) {
	repo := newMockAccountRepo()
	svc := NewAuthService(repo)

	acc := &models.Account{Email: "ivanov@example.com", FullName: "Иван Иванов"}
	if err := svc.RegisterMember(context.Background(), acc, "пароль123"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	// Член клуба не входит через пространство персонала
	_, _, err := svc.Login(context.Background(), "ivanov@example.com", "пароль123", models.UserTypeStaff, "127.0.0.1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("ожидалась ошибка учётных данных, получено: %v", err)
	}
}

func TestLogin_Throttle(t *testing.T) {
	repo := newMockAccountRepo()
	svc := NewAuthService(repo)

	for i := 0; i < 5; i++ {
		_, _, err := svc.Login(context.Background(), "ghost@example.com", "x", models.UserTypeMember, "10.0.0.1")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("попытка %d: ожидалась ошибка учётных данных, получено: %v", i+1, err)
		}
	}

	_, retryAfter, err := svc.Login(context.Background(), "ghost@example.com", "x", models.UserTypeMember, "10.0.0.1")
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("после 5 неудач ожидалась блокировка, получено: %v", err)
	}
	if retryAfter <= 0 {
		t.Fatalf("Retry-After должен быть положительным, получено %v", retryAfter)
	}

	// Другой IP считается отдельно
	_, _, err = svc.Login(context.Background(), "ghost@example.com", "x", models.UserTypeMember, "10.0.0.2")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("другой IP не должен быть заблокирован, получено: %v", err)
	}
}
