package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	DayCount     int16
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Lift struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        string
	Weight      float64
	Reps        int32
	Sets        int32
	Date        time.Time
	Rpe         sql.NullFloat64
	Description sql.NullString
	CreatedAt   time.Time
}

type Friend struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	FriendID       uuid.UUID
	FriendUsername string
	CreatedAt      time.Time
}

type Group struct {
	ID        uuid.UUID
	Name      string
	CreatorID uuid.UUID
	CreatedAt time.Time
}

type UserGroup struct {
	UserID  uuid.UUID
	GroupID uuid.UUID
}

type Program struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Workouts  json.RawMessage
	IsPrivate bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Achievement struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Achievement int16
	CreatedAt   time.Time
}

type Chat struct {
	ID         uuid.UUID
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Message    string
	CreatedAt  time.Time
}
