package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
)

type userRepository struct {
	storage *Storage
}

type customerRepository struct {
	storage *Storage
}

func (r *userRepository) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	const query = `INSERT INTO users (login, password_hash, role) VALUES ($1, $2, $3) RETURNING id, created_at`
	u := model.User{Login: login, PasswordHash: passwordHash, Role: role}
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash, role).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT id, login, password_hash, role, created_at FROM users WHERE login=$1`
	return r.get(ctx, query, login)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, login, password_hash, role, created_at FROM users WHERE id=$1`
	return r.get(ctx, query, id)
}

func (r *userRepository) get(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *customerRepository) Upsert(ctx context.Context, p model.CustomerProfile) error {
	const query = `INSERT INTO customer_profiles (user_id, full_name, national_id, phone, address, city, state)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   ON CONFLICT (user_id) DO UPDATE SET
                       full_name = EXCLUDED.full_name,
                       national_id = EXCLUDED.national_id,
                       phone = EXCLUDED.phone,
                       address = EXCLUDED.address,
                       city = EXCLUDED.city,
                       state = EXCLUDED.state`
	_, err := r.storage.pool.Exec(ctx, query, p.UserID, p.FullName, p.NationalID, p.Phone, p.Address, p.City, p.State)
	return err
}

func (r *customerRepository) Get(ctx context.Context, userID int64) (*model.CustomerProfile, error) {
	const query = `SELECT user_id, full_name, national_id, phone, address, city, state
                   FROM customer_profiles WHERE user_id=$1`
	var p model.CustomerProfile
	err := r.storage.pool.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.FullName, &p.NationalID, &p.Phone, &p.Address, &p.City, &p.State)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
