package dbgen

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   pgtype.Timestamptz
}

type Drawing struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type SceneSnapshot struct {
	ID        string
	DrawingID string
	Version   int32
	Document  []byte
	CreatedAt pgtype.Timestamptz
}
