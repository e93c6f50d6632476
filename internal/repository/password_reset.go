package repository

import (
	"context"
	"fitcenter/internal/logger"
	"fitcenter/internal/models"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PasswordResetRepository struct {
	db *pgxpool.Pool
}

func NewPasswordResetRepository(db *pgxpool.Pool) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

type PasswordResetRepo interface {
	Create(ctx context.Context, t *models.PasswordResetToken) error
	InvalidatePending(ctx context.Context, ut models.UserType, userID int) error
	GetValidByHash(ctx context.Context, ut models.UserType, tokenHash string) (*models.PasswordResetToken, error)
	Consume(ctx context.Context, ut models.UserType, tokenHash, passwordHash string) (*models.PasswordResetToken, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

func (r *PasswordResetRepository) Create(ctx context.Context, t *models.PasswordResetToken) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO password_reset_tokens (user_id, user_type, token_hash, email, full_name, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		t.UserID, t.UserType, t.TokenHash, t.Email, t.FullName, t.ExpiresAt,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		logger.Log.Error("Создание токена сброса не удалось (repo)",
			zap.Error(err), zap.Int("user_id", t.UserID), zap.String("user_type", string(t.UserType)))
	}
	return err
}

// InvalidatePending помечает использованными все невостребованные токены аккаунта.
// Выдача нового токена гасит старые — политика из соображений безопасности.
func (r *PasswordResetRepository) InvalidatePending(ctx context.Context, ut models.UserType, userID int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE password_reset_tokens
		SET used_at = now()
		WHERE user_id = $1 AND user_type = $2 AND used_at IS NULL`,
		userID, ut,
	)
	return err
}

func (r *PasswordResetRepository) GetValidByHash(ctx context.Context, ut models.UserType, tokenHash string) (*models.PasswordResetToken, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, user_type, token_hash, email, full_name, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1
		  AND user_type = $2
		  AND used_at IS NULL
		  AND expires_at > now()
	`, tokenHash, ut)

	var t models.PasswordResetToken
	if err := row.Scan(&t.ID, &t.UserID, &t.UserType, &t.TokenHash, &t.Email, &t.FullName, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Consume в одной транзакции: перепроверяет токен (существует, не использован,
// не истёк, тот же user_type), обновляет хеш пароля аккаунта и помечает токен
// использованным. Снаружи нет окна, где пароль сменён, а токен ещё валиден.
func (r *PasswordResetRepository) Consume(ctx context.Context, ut models.UserType, tokenHash, passwordHash string) (*models.PasswordResetToken, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT id, user_id, user_type, token_hash, email, full_name, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1
		  AND user_type = $2
		  AND used_at IS NULL
		  AND expires_at > now()
		FOR UPDATE
	`, tokenHash, ut)

	var t models.PasswordResetToken
	if err := row.Scan(&t.ID, &t.UserID, &t.UserType, &t.TokenHash, &t.Email, &t.FullName, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt); err != nil {
		return nil, err
	}

	updateAccount := fmt.Sprintf(`UPDATE %s SET password_hash = $1, updated_at = now() WHERE id = $2`, tableFor(ut))
	if _, err := tx.Exec(ctx, updateAccount, passwordHash, t.UserID); err != nil {
		logger.Log.Error("Ошибка обновления пароля в транзакции сброса (repo)",
			zap.Error(err), zap.Int("user_id", t.UserID))
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE password_reset_tokens SET used_at = now() WHERE id = $1`, t.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	now := time.Now()
	t.UsedAt = &now
	return &t, nil
}

// DeleteExpired удаляет все истёкшие токены независимо от used_at.
// Повторный вызов находит ноль строк — операция идемпотентна.
func (r *PasswordResetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM password_reset_tokens WHERE expires_at < now()`)
	if err != nil {
		logger.Log.Error("Ошибка очистки истёкших токенов (repo)", zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}
