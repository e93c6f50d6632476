package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"fitcenter/internal/logger"
	"fitcenter/internal/models"
	"fitcenter/internal/utils"

	"github.com/rif/cache2go"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("неверный e-mail или пароль")
	ErrEmailTaken         = errors.New("адрес электронной почты уже зарегистрирован")
	ErrTooManyAttempts    = errors.New("слишком много неудачных попыток входа")
)

type AccountRepo interface {
	CreateAccount(ctx context.Context, acc *models.Account) error
	IsEmailTaken(ctx context.Context, ut models.UserType, email string) (bool, error)
	GetByEmail(ctx context.Context, ut models.UserType, email string) (*models.Account, error)
	GetByID(ctx context.Context, ut models.UserType, id int) (*models.Account, error)
	UpdatePassword(ctx context.Context, ut models.UserType, id int, passwordHash string) error
	GetAllPaginated(ctx context.Context, ut models.UserType, limit, offset int) ([]*models.Account, int, error)
}

type AuthService struct {
	repo     AccountRepo
	throttle *loginThrottle
}

func NewAuthService(repo AccountRepo) *AuthService {
	return &AuthService{
		repo:     repo,
		throttle: newLoginThrottle(),
	}
}

// RegisterMember — самостоятельная регистрация члена клуба.
func (s *AuthService) RegisterMember(ctx context.Context, acc *models.Account, plainPassword string) error {
	acc.UserType = models.UserTypeMember
	acc.Role = "member"
	return s.register(ctx, acc, plainPassword)
}

// CreateStaff — создание аккаунта персонала (только админом).
func (s *AuthService) CreateStaff(ctx context.Context, acc *models.Account, plainPassword, role string) error {
	acc.UserType = models.UserTypeStaff
	acc.Role = role
	return s.register(ctx, acc, plainPassword)
}

func (s *AuthService) register(ctx context.Context, acc *models.Account, plainPassword string) error {
	acc.Email = strings.TrimSpace(strings.ToLower(acc.Email))
	logger.Log.Info("Регистрация аккаунта (service)",
		zap.String("user_type", string(acc.UserType)), zap.String("email", utils.MaskEmail(acc.Email)))

	if len(plainPassword) < MinPasswordLen(acc.UserType) {
		return ErrPasswordTooShort
	}

	if exists, err := s.repo.IsEmailTaken(ctx, acc.UserType, acc.Email); exists || err != nil {
		if err != nil {
			logger.Log.Error("Ошибка проверки email", zap.Error(err))
		}
		return ErrEmailTaken
	}

	hashed, err := utils.HashPassword(plainPassword)
	if err != nil {
		logger.Log.Error("Ошибка хеширования пароля", zap.Error(err))
		return err
	}
	acc.PasswordHash = hashed

	if err := s.repo.CreateAccount(ctx, acc); err != nil {
		logger.Log.Error("Ошибка создания аккаунта", zap.Error(err))
		return err
	}
	logger.Log.Info("Аккаунт зарегистрирован (service)",
		zap.String("user_type", string(acc.UserType)), zap.Int("user_id", acc.ID))
	return nil
}

// Login проверяет пароль в нужном пространстве аккаунтов. Неудачные попытки
// считаются по ключу email+IP; после порога возвращается ErrTooManyAttempts
// с Retry-After.
func (s *AuthService) Login(ctx context.Context, email, password string, ut models.UserType, ip string) (*models.Account, time.Duration, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	key := string(ut) + "|" + email + "|" + ip

	if locked, retryAfter := s.throttle.locked(key); locked {
		logger.Log.Warn("Вход заблокирован по числу попыток",
			zap.String("email", utils.MaskEmail(email)), zap.String("ip", ip))
		return nil, retryAfter, ErrTooManyAttempts
	}

	acc, err := s.repo.GetByEmail(ctx, ut, email)
	if err != nil {
		logger.Log.Warn("Аккаунт не найден (service)",
			zap.String("email", utils.MaskEmail(email)), zap.String("user_type", string(ut)), zap.Error(err))
		s.throttle.noteFailure(key)
		return nil, 0, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, acc.PasswordHash) {
		logger.Log.Warn("Неверный пароль (service)", zap.Int("user_id", acc.ID), zap.String("user_type", string(ut)))
		s.throttle.noteFailure(key)
		return nil, 0, ErrInvalidCredentials
	}

	s.throttle.reset(key)
	logger.Log.Info("Вход выполнен (service)", zap.Int("user_id", acc.ID), zap.String("user_type", string(ut)))
	return acc, 0, nil
}

func (s *AuthService) GetAccountsPaginated(ctx context.Context, ut models.UserType, limit, offset int) ([]*models.Account, int, error) {
	return s.repo.GetAllPaginated(ctx, ut, limit, offset)
}

func (s *AuthService) GetAccountByID(ctx context.Context, ut models.UserType, id int) (*models.Account, error) {
	return s.repo.GetByID(ctx, ut, id)
}

// --- троттлинг неудачных входов ---

const loginFailureWindow = 15 * time.Minute

// Прогрессивные пороги блокировки.
var lockoutSteps = []struct {
	failures int
	duration time.Duration
}{
	{12, time.Hour},
	{8, 10 * time.Minute},
	{5, time.Minute},
}

type failureCounter struct {
	count int
	last  time.Time
}

type loginThrottle struct {
	cache *cache2go.Cache
	sync.Mutex
}

func newLoginThrottle() *loginThrottle {
	return &loginThrottle{
		cache: cache2go.New(10000, loginFailureWindow),
	}
}

func (t *loginThrottle) locked(key string) (bool, time.Duration) {
	t.Lock()
	defer t.Unlock()

	v, ok := t.cache.Get(key)
	if !ok {
		return false, 0
	}
	fc := v.(*failureCounter)

	for _, step := range lockoutSteps {
		if fc.count >= step.failures {
			until := fc.last.Add(step.duration)
			if remaining := time.Until(until); remaining > 0 {
				return true, remaining
			}
			return false, 0
		}
	}
	return false, 0
}

func (t *loginThrottle) noteFailure(key string) {
	t.Lock()
	defer t.Unlock()

	fc := &failureCounter{}
	if v, ok := t.cache.Get(key); ok {
		fc = v.(*failureCounter)
	}
	fc.count++
	fc.last = time.Now()
	t.cache.Set(key, fc)
}

func (t *loginThrottle) reset(key string) {
	t.Lock()
	defer t.Unlock()
	t.cache.Delete(key)
}
