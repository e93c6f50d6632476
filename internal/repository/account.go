package repository

import (
	"context"
	"fitcenter/internal/logger"
	"fitcenter/internal/models"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// AccountRepository работает с двумя независимыми таблицами аккаунтов:
// staff (персонал) и members (члены клуба). Таблица выбирается по user_type.
type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, email, full_name, phone, password_hash, role, active, created_at, updated_at`

// tableFor безопасен: UserType всегда проходит через models.ParseUserType.
func tableFor(ut models.UserType) string {
	if ut == models.UserTypeStaff {
		return "staff"
	}
	return "members"
}

func (r *AccountRepository) CreateAccount(ctx context.Context, acc *models.Account) error {
	logger.Log.Info("Создание аккаунта (repo)",
		zap.String("user_type", string(acc.UserType)), zap.String("email", acc.Email))
	query := fmt.Sprintf(`
	INSERT INTO %s (email, full_name, phone, password_hash, role, active)
	VALUES (lower($1), $2, $3, $4, $5, true)
	RETURNING id, created_at, updated_at`, tableFor(acc.UserType))
	return r.db.QueryRow(ctx, query,
		acc.Email,
		acc.FullName,
		acc.Phone,
		acc.PasswordHash,
		acc.Role,
	).Scan(&acc.ID, &acc.CreatedAt, &acc.UpdatedAt)
}

func (r *AccountRepository) IsEmailTaken(ctx context.Context, ut models.UserType, email string) (bool, error) {
	logger.Log.Debug("Проверка email на уникальность (repo)", zap.String("user_type", string(ut)))
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE email = lower($1))`, tableFor(ut))
	var exists bool
	err := r.db.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		logger.Log.Error("Ошибка проверки email (repo)", zap.Error(err))
	}
	return exists, err
}

func (r *AccountRepository) GetByEmail(ctx context.Context, ut models.UserType, email string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE email = lower($1) AND active`, accountColumns, tableFor(ut))
	return r.scanAccount(ctx, ut, query, email)
}

func (r *AccountRepository) GetByID(ctx context.Context, ut models.UserType, id int) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, accountColumns, tableFor(ut))
	return r.scanAccount(ctx, ut, query, id)
}

func (r *AccountRepository) scanAccount(ctx context.Context, ut models.UserType, query string, arg any) (*models.Account, error) {
	var acc models.Account
	acc.UserType = ut
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&acc.ID,
		&acc.Email,
		&acc.FullName,
		&acc.Phone,
		&acc.PasswordHash,
		&acc.Role,
		&acc.Active,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, ut models.UserType, id int, passwordHash string) error {
	query := fmt.Sprintf(`UPDATE %s SET password_hash = $1, updated_at = now() WHERE id = $2`, tableFor(ut))
	_, err := r.db.Exec(ctx, query, passwordHash, id)
	if err != nil {
		logger.Log.Error("Ошибка обновления пароля (repo)",
			zap.String("user_type", string(ut)), zap.Int("user_id", id), zap.Error(err))
	}
	return err
}

func (r *AccountRepository) GetAllPaginated(ctx context.Context, ut models.UserType, limit, offset int) ([]*models.Account, int, error) {
	table := tableFor(ut)

	var total int
	if err := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, table)).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id LIMIT $1 OFFSET $2`, accountColumns, table)
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		logger.Log.Error("Ошибка выборки аккаунтов (repo)", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var acc models.Account
		acc.UserType = ut
		if err := rows.Scan(
			&acc.ID,
			&acc.Email,
			&acc.FullName,
			&acc.Phone,
			&acc.PasswordHash,
			&acc.Role,
			&acc.Active,
			&acc.CreatedAt,
			&acc.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, &acc)
	}
	return accounts, total, rows.Err()
}
