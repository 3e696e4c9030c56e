package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{
	"id", "name", "email", "password", "address", "phone", "type", "description", "web",
	"card_number", "card_expiration_date", "card_holder_name", "card_cvv", "icon", "created_at", "updated_at",
}

func userRow(u *User) *sqlmock.Rows {
	return sqlmock.NewRows(userRowColumns).AddRow(
		u.ID.String(), u.Name, u.Email, u.Password, u.Address, u.Phone, string(u.Type), u.Description, u.Web,
		u.CardNumber, u.CardExpirationDate, u.CardHolderName, u.CardCVV, u.Icon, u.CreatedAt, u.UpdatedAt,
	)
}

func sampleUser() *User {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &User{
		ID:        uuid.New(),
		Name:      "Marta",
		Email:     "marta@example.com",
		Password:  "hashed",
		Address:   "Calle Mayor 1",
		Phone:     "+34600123456",
		Type:      TypeCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Success creates user and wishlist", func(t *testing.T) {
		u := sampleUser()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(u.ID, u.Name, u.Email, u.Password, u.Address, u.Phone, u.Type, "", "", "", "", "", "", "").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectExec(`INSERT INTO wishlists \(id, owner_id\) VALUES \(\$1, \$2\)`).
			WithArgs(sqlmock.AnyArg(), u.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Create(ctx, u)
		assert.NoError(t, err)
		assert.Equal(t, now, u.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
		mock.ExpectRollback()

		err := repo.Create(ctx, sampleUser())
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("WishlistFailureRollsBack", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectExec(`INSERT INTO wishlists`).
			WillReturnError(errors.New("db error"))
		mock.ExpectRollback()

		err := repo.Create(ctx, sampleUser())
		assert.EqualError(t, err, "db error")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	u := sampleUser()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`(?s)SELECT .* FROM users WHERE email = \$1`).
			WithArgs(u.Email).
			WillReturnRows(userRow(u))

		got, err := repo.FindByEmail(ctx, u.Email)
		assert.NoError(t, err)
		assert.Equal(t, u, got)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`(?s)SELECT .* FROM users WHERE email = \$1`).
			WithArgs("ghost@example.com").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Nil(t, got)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`(?s)SELECT .* FROM users`).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.FindByEmail(ctx, u.Email)
		assert.EqualError(t, err, "connection refused")
	})
}

func TestRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	u := sampleUser()

	mock.ExpectQuery(`(?s)SELECT .* FROM users WHERE id = \$1`).
		WithArgs(u.ID).
		WillReturnRows(userRow(u))

	got, err := repo.FindByID(context.Background(), u.ID)
	assert.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, TypeCustomer, got.Type)
}

func TestRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		u := sampleUser()
		later := u.UpdatedAt.Add(time.Hour)

		mock.ExpectQuery(`UPDATE users\s+SET name = \$2`).
			WithArgs(u.ID, u.Name, u.Email, u.Password, u.Address, u.Phone, u.Type, "", "", "", "", "", "", "").
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(later))

		assert.NoError(t, repo.Update(ctx, u))
		assert.Equal(t, later, u.UpdatedAt)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE users`).WillReturnError(sql.ErrNoRows)
		assert.ErrorIs(t, repo.Update(ctx, sampleUser()), ErrUserNotFound)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE users`).WillReturnError(&pq.Error{Code: "23505"})
		assert.ErrorIs(t, repo.Update(ctx, sampleUser()), ErrDuplicateEmail)
	})
}

func TestRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, id))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, id), ErrUserNotFound)
	})
}

func TestRepository_Tokens(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	id := uuid.New()

	t.Run("AddToken", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO user_tokens \(token, user_id\) VALUES \(\$1, \$2\)`).
			WithArgs("tok", id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.AddToken(ctx, id, "tok"))
	})

	t.Run("TokenExists", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM user_tokens WHERE user_id = \$1 AND token = \$2\)`).
			WithArgs(id, "tok").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		ok, err := repo.TokenExists(ctx, id, "tok")
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("DeleteToken", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM user_tokens WHERE user_id = \$1 AND token = \$2`).
			WithArgs(id, "tok").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeleteToken(ctx, id, "tok"))
	})

	t.Run("DeleteAllTokens", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM user_tokens WHERE user_id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 3))

		assert.NoError(t, repo.DeleteAllTokens(ctx, id))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
