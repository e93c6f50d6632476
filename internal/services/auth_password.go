package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitcenter/internal/logger"
	"fitcenter/internal/models"
	"fitcenter/internal/repository"
	"fitcenter/internal/utils"
	"fitcenter/internal/utils/helpers"

	"go.uber.org/zap"
)

var (
	ErrTokenInvalid     = errors.New("недействительный или просроченный токен")
	ErrPasswordTooShort = errors.New("пароль слишком короткий")
)

// accountReader — всё, что PasswordService нужно знать об аккаунтах.
type accountReader interface {
	GetByEmail(ctx context.Context, ut models.UserType, email string) (*models.Account, error)
}

type PasswordService struct {
	repo        repository.PasswordResetRepo
	accounts    accountReader
	events      repository.ResetEventRepo
	frontendURL string // фронтовый URL: https://example.com (ссылка вида /reset-password?token=...)
	tokenTTL    time.Duration
}

func NewPasswordService(repo repository.PasswordResetRepo, accounts accountReader, events repository.ResetEventRepo, frontendURL string, tokenTTL time.Duration) *PasswordService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	return &PasswordService{
		repo:        repo,
		accounts:    accounts,
		events:      events,
		frontendURL: frontendURL,
		tokenTTL:    tokenTTL,
	}
}

// MinPasswordLen — минимальная длина пароля для пространства аккаунтов.
// Для членов клуба — 6, для персонала строже.
func MinPasswordLen(ut models.UserType) int {
	if ut == models.UserTypeStaff {
		return 8
	}
	return 6
}

// RequestReset выдаёт одноразовый токен и ставит письмо со ссылкой в очередь.
// Если аккаунт не найден — возвращает nil: ответ не должен раскрывать,
// существует ли такой e-mail. Ошибка возвращается только при сбое хранилища
// для реально существующего аккаунта.
func (s *PasswordService) RequestReset(ctx context.Context, email string, ut models.UserType) error {
	email = strings.TrimSpace(strings.ToLower(email))
	logger.Log.Info("Запрос на сброс пароля",
		zap.String("email", utils.MaskEmail(email)), zap.String("user_type", string(ut)))

	acc, err := s.accounts.GetByEmail(ctx, ut, email)
	if err != nil {
		// Не раскрываем наличие почты пользователю, но логируем для нас:
		logger.Log.Warn("Аккаунт не найден при запросе сброса",
			zap.String("email", utils.MaskEmail(email)),
			zap.String("user_type", string(ut)),
			zap.Error(err),
		)
		return nil
	}

	// Криптостойкий токен; в базе храним только хеш
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		logger.Log.Error("Ошибка генерации токена для сброса", zap.Error(err), zap.Int("user_id", acc.ID))
		return err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	// Новый токен гасит все невостребованные старые для этого аккаунта.
	if err := s.repo.InvalidatePending(ctx, ut, acc.ID); err != nil {
		logger.Log.Warn("Не удалось погасить старые токены", zap.Error(err), zap.Int("user_id", acc.ID))
	}

	t := &models.PasswordResetToken{
		UserID:    acc.ID,
		UserType:  ut,
		TokenHash: hashToken(token),
		Email:     acc.Email,
		FullName:  acc.FullName,
		ExpiresAt: time.Now().Add(s.tokenTTL),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		logger.Log.Error("Ошибка сохранения токена сброса пароля",
			zap.Int("user_id", acc.ID),
			zap.Error(err),
		)
		return err
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s&type=%s", s.frontendURL, token, ut)
	EmailQueue <- EmailJob{
		To:      []string{acc.Email},
		Subject: "Восстановление пароля",
		Body:    helpers.BuildPasswordResetHTML(acc.FullName, resetLink, s.tokenTTL),
		IsHTML:  true,
	}

	s.appendEvent(ctx, &models.ResetEvent{
		Action:   models.ResetActionRequested,
		UserType: ut,
		Email:    utils.MaskEmail(acc.Email),
		TokenID:  t.ID,
	})

	logger.Log.Info("Письмо со ссылкой на сброс пароля поставлено на отправку",
		zap.Int("user_id", acc.ID),
		zap.String("email", utils.MaskEmail(acc.Email)),
		zap.Time("expires_at", t.ExpiresAt),
	)
	return nil
}

// Verify проверяет токен, не потребляя его: чистое чтение.
func (s *PasswordService) Verify(ctx context.Context, token string, ut models.UserType) (*models.PasswordResetToken, error) {
	t, err := s.repo.GetValidByHash(ctx, ut, hashToken(token))
	if err != nil {
		logger.Log.Warn("Неверный или просроченный токен при верификации",
			zap.String("user_type", string(ut)), zap.Error(err))
		return nil, ErrTokenInvalid
	}

	s.appendEvent(ctx, &models.ResetEvent{
		Action:   models.ResetActionVerified,
		UserType: ut,
		Email:    utils.MaskEmail(t.Email),
		TokenID:  t.ID,
	})
	return t, nil
}

// ResetPassword завершает сброс: одна транзакция перепроверяет токен,
// ставит новый хеш пароля и помечает токен использованным. Уведомление
// о смене пароля — best effort, его сбой не откатывает уже сделанное.
func (s *PasswordService) ResetPassword(ctx context.Context, token, newPassword string, ut models.UserType) (*models.PasswordResetToken, error) {
	logger.Log.Info("Попытка сброса пароля по токену", zap.String("user_type", string(ut)))

	if len(newPassword) < MinPasswordLen(ut) {
		logger.Log.Warn("Слишком короткий новый пароль", zap.String("user_type", string(ut)))
		return nil, ErrPasswordTooShort
	}

	pwHash, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.Log.Error("Ошибка генерации хеша пароля", zap.Error(err))
		return nil, err
	}

	t, err := s.repo.Consume(ctx, ut, hashToken(token), pwHash)
	if err != nil {
		logger.Log.Warn("Неверный или просроченный токен при сбросе пароля", zap.Error(err))
		return nil, ErrTokenInvalid
	}

	EmailQueue <- EmailJob{
		To:      []string{t.Email},
		Subject: "Пароль изменён",
		Body:    helpers.BuildPasswordChangedHTML(t.FullName, time.Now()),
		IsHTML:  true,
	}

	s.appendEvent(ctx, &models.ResetEvent{
		Action:   models.ResetActionCompleted,
		UserType: ut,
		Email:    utils.MaskEmail(t.Email),
		TokenID:  t.ID,
	})

	logger.Log.Info("Пароль успешно сброшен", zap.Int("user_id", t.UserID), zap.String("user_type", string(ut)))
	return t, nil
}

// CleanupExpired удаляет истёкшие токены. Безопасно вызывать повторно.
func (s *PasswordService) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		s.appendEvent(ctx, &models.ResetEvent{
			Action: models.ResetActionCleanup,
			Count:  n,
		})
	}

	logger.Log.Info("Очистка истёкших токенов", zap.Int64("cleaned", n))
	return n, nil
}

// LatestEvents отдаёт журнал сброса для админки.
func (s *PasswordService) LatestEvents(ctx context.Context, ut models.UserType, limit int64) ([]models.ResetEvent, error) {
	if s.events == nil {
		return nil, errors.New("журнал недоступен")
	}
	return s.events.Latest(ctx, ut, limit)
}

// Журнал — побочный эффект: его сбой логируем, но операцию не валим.
func (s *PasswordService) appendEvent(ctx context.Context, e *models.ResetEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, e); err != nil {
		logger.Log.Warn("Не удалось записать событие в журнал сброса",
			zap.String("action", e.Action), zap.Error(err))
	}
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(h[:])
}
