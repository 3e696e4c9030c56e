package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wardrobe-be/internal/db"
	"wardrobe-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error

	AddToken(ctx context.Context, userID uuid.UUID, token string) error
	DeleteToken(ctx context.Context, userID uuid.UUID, token string) error
	DeleteAllTokens(ctx context.Context, userID uuid.UUID) error
	TokenExists(ctx context.Context, userID uuid.UUID, token string) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, name, email, password, address, phone, type, description, web,
	card_number, card_expiration_date, card_holder_name, card_cvv, icon, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Password, &u.Address, &u.Phone, &u.Type, &u.Description, &u.Web,
		&u.CardNumber, &u.CardExpirationDate, &u.CardHolderName, &u.CardCVV, &u.Icon, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts the user together with their empty wishlist.
func (r *repository) Create(ctx context.Context, u *User) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("user_id", u.ID.String()),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, password, address, phone, type, description, web,
			card_number, card_expiration_date, card_holder_name, card_cvv, icon)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Email, u.Password, u.Address, u.Phone, u.Type, u.Description, u.Web,
		u.CardNumber, u.CardExpirationDate, u.CardHolderName, u.CardCVV, u.Icon,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			log.Info("email already registered")
			return ErrDuplicateEmail
		}
		log.Error("failed to insert user", zap.Error(err))
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wishlists (id, owner_id) VALUES ($1, $2)`,
		uuid.New(), u.ID,
	); err != nil {
		log.Error("failed to create wishlist", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit user", zap.Error(err))
		return err
	}

	log.Info("user created")
	return nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) Update(ctx context.Context, u *User) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Update"),
		zap.String("user_id", u.ID.String()),
	)

	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET name = $2, email = $3, password = $4, address = $5, phone = $6, type = $7,
			description = $8, web = $9, card_number = $10, card_expiration_date = $11,
			card_holder_name = $12, card_cvv = $13, icon = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		u.ID, u.Name, u.Email, u.Password, u.Address, u.Phone, u.Type, u.Description, u.Web,
		u.CardNumber, u.CardExpirationDate, u.CardHolderName, u.CardCVV, u.Icon,
	).Scan(&u.UpdatedAt)

	switch {
	case err == nil:
		log.Info("user updated")
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrUserNotFound
	case db.IsUniqueViolation(err):
		return ErrDuplicateEmail
	default:
		log.Error("failed to update user", zap.Error(err))
		return err
	}
}

// Delete removes the user. Tokens, garments, orders and the wishlist go with
// it through ON DELETE CASCADE.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to delete user",
			zap.String("user_id", id.String()),
			zap.Error(err),
		)
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) AddToken(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_tokens (token, user_id) VALUES ($1, $2)`, token, userID)
	if err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func (r *repository) DeleteToken(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_tokens WHERE user_id = $1 AND token = $2`, userID, token)
	return err
}

func (r *repository) DeleteAllTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = $1`, userID)
	return err
}

func (r *repository) TokenExists(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_tokens WHERE user_id = $1 AND token = $2)`,
		userID, token,
	).Scan(&exists)
	return exists, err
}
