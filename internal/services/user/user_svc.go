package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type UserDTO struct {
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Avatar          string    `json:"avatar"`
	Bio             string    `json:"bio"`
	ThemePreference string    `json:"theme_preference" example:"light"`
	Online          bool      `json:"online"`
	LastSeen        time.Time `json:"last_seen" example:"2025-07-27T16:05:05Z"`
}

var (
	ErrUserExists         = errors.New("username or email already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type IUserService interface {
	Register(ctx context.Context, username, email, password string) error
	Authenticate(ctx context.Context, username, password string) (*UserDTO, error)
	FindByUsername(ctx context.Context, username string) (*UserDTO, error)
	UpdateProfile(ctx context.Context, username, bio, themePreference string) (*UserDTO, error)
	SetOnline(ctx context.Context, username string, online bool) error
	SetLastSeen(ctx context.Context, username string, t time.Time) error
}

type userService struct {
	db         *sql.DB
	bcryptCost int
}

func NewUserService(db *sql.DB, bcryptCost int) IUserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{db: db, bcryptCost: bcryptCost}
}

func (svc *userService) Register(ctx context.Context, username, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), svc.bcryptCost)
	if err != nil {
		return err
	}

	const ins = `
	  INSERT INTO users (username, email, password_hash)
	       VALUES ($1, $2, $3)
	  ON CONFLICT DO NOTHING`
	res, err := svc.db.ExecContext(ctx, ins, username, email, string(hash))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserExists
	}
	return nil
}

func (svc *userService) Authenticate(ctx context.Context, username, password string) (*UserDTO, error) {
	const q = `SELECT username, email, password_hash, avatar, bio, theme_preference,
	                  online, last_seen
	             FROM users WHERE username = $1`
	row := svc.db.QueryRowContext(ctx, q, username)

	var hash string
	dto := &UserDTO{}
	err := row.Scan(&dto.Username, &dto.Email, &hash, &dto.Avatar, &dto.Bio,
		&dto.ThemePreference, &dto.Online, &dto.LastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return dto, nil
}

func (svc *userService) FindByUsername(ctx context.Context, username string) (*UserDTO, error) {
	const q = `SELECT username, email, avatar, bio, theme_preference, online, last_seen
	             FROM users WHERE username = $1`
	row := svc.db.QueryRowContext(ctx, q, username)

	dto := &UserDTO{}
	err := row.Scan(&dto.Username, &dto.Email, &dto.Avatar, &dto.Bio,
		&dto.ThemePreference, &dto.Online, &dto.LastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (svc *userService) UpdateProfile(ctx context.Context, username, bio, themePreference string) (*UserDTO, error) {
	const upd = `
	  UPDATE users
	     SET bio = $2, theme_preference = $3
	   WHERE username = $1
	 RETURNING username, email, avatar, bio, theme_preference, online, last_seen`
	row := svc.db.QueryRowContext(ctx, upd, username, bio, themePreference)

	dto := &UserDTO{}
	err := row.Scan(&dto.Username, &dto.Email, &dto.Avatar, &dto.Bio,
		&dto.ThemePreference, &dto.Online, &dto.LastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (svc *userService) SetOnline(ctx context.Context, username string, online bool) error {
	const upd = `UPDATE users SET online = $2 WHERE username = $1`
	_, err := svc.db.ExecContext(ctx, upd, username, online)
	return err
}

func (svc *userService) SetLastSeen(ctx context.Context, username string, t time.Time) error {
	const upd = `UPDATE users SET last_seen = $2 WHERE username = $1`
	_, err := svc.db.ExecContext(ctx, upd, username, t.UTC())
	return err
}
