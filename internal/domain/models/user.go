package models

// Роли пользователей
const (
	RoleFan    = "fan"
	RoleArtist = "artist"
)

// User представляет пользователя (фанат или артист)
type User struct {
	ID          int64
	Email       string
	PassHash    []byte
	DisplayName string
	Role        string
}
