package models

import "time"

// ConnectStatus - состояние подключения артиста к платёжному провайдеру
type ConnectStatus string

const (
	ConnectNotConnected ConnectStatus = "not_connected"
	ConnectPending      ConnectStatus = "pending"
	ConnectConnected    ConnectStatus = "connected"
)

// Seller представляет профиль артиста, которому принадлежат товары
type Seller struct {
	ID               int64         `json:"id"`
	UserID           int64         `json:"user_id"`
	DisplayName      string        `json:"display_name"`
	Slug             string        `json:"slug"`
	AvatarURL        string        `json:"avatar_url"`
	CoverURL         string        `json:"cover_url"`
	ConnectAccountID string        `json:"connect_account_id,omitempty"`
	ConnectStatus    ConnectStatus `json:"connect_status"`
	ChargesEnabled   bool          `json:"charges_enabled"`
	PayoutsEnabled   bool          `json:"payouts_enabled"`
	RequirementsDue  []string      `json:"requirements_due"`
	CreatedAt        time.Time     `json:"created_at"`
}

// ConnectUpdate - изменения платёжного аккаунта, пришедшие от провайдера
type ConnectUpdate struct {
	AccountID       string
	Status          ConnectStatus
	ChargesEnabled  bool
	PayoutsEnabled  bool
	RequirementsDue []string
}
