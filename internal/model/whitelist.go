package model

import "time"

type WhitelistEntry struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	AddedAt  time.Time `json:"added_at"`
}
