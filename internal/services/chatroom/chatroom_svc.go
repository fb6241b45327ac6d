package chatroom

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChatRoomDTO is room metadata only. Live membership is tracked by the
// websocket hub, never persisted.
type ChatRoomDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	IsPrivate bool      `json:"is_private"`
	CreatedAt time.Time `json:"created_at" example:"2025-07-27T16:05:05Z"`
}

var ErrEmptyName = errors.New("room name is required")

type IChatRoomService interface {
	Create(ctx context.Context, name, createdBy string, isPrivate bool) (*ChatRoomDTO, error)
	List(ctx context.Context, limit, offset int) ([]ChatRoomDTO, error)
}

type chatRoomService struct {
	db *sql.DB
}

func NewChatRoomService(db *sql.DB) IChatRoomService {
	return &chatRoomService{db: db}
}

func (svc *chatRoomService) Create(ctx context.Context, name, createdBy string, isPrivate bool) (*ChatRoomDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	dto := &ChatRoomDTO{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedBy: createdBy,
		IsPrivate: isPrivate,
		CreatedAt: time.Now().UTC(),
	}

	const ins = `
	  INSERT INTO chat_rooms (id, name, created_by, is_private, created_at)
	       VALUES ($1, $2, $3, $4, $5)`
	if _, err := svc.db.ExecContext(ctx, ins,
		dto.ID, dto.Name, dto.CreatedBy, dto.IsPrivate, dto.CreatedAt); err != nil {
		return nil, err
	}
	return dto, nil
}

func (svc *chatRoomService) List(ctx context.Context, limit, offset int) ([]ChatRoomDTO, error) {
	if limit == 0 {
		limit = 50
	}

	const q = `SELECT id, name, created_by, is_private, created_at
	             FROM chat_rooms
	         ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := svc.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]ChatRoomDTO, 0, limit)
	for rows.Next() {
		var r ChatRoomDTO
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedBy, &r.IsPrivate, &r.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}
