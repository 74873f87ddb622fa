package audit

import (
	"time"

	"github.com/odyssey-erp/roleguard/internal/shared"
)

// Entry mewakili satu baris audit log. Entri tidak pernah diubah setelah ditulis.
type Entry struct {
	ID          int64     `json:"id"`
	ActorID     int64     `json:"actor_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Filters menampung filter query audit log. Tanggal dibandingkan per hari (inklusif).
type Filters struct {
	ActionType string
	DateFrom   time.Time
	DateTo     time.Time
	Search     string
	Limit      int
	Offset     int
}

// Result membungkus satu halaman entri beserta informasi paging.
type Result struct {
	Entries    []Entry           `json:"entries"`
	Pagination shared.Pagination `json:"pagination"`
	HasNext    bool              `json:"has_next"`
}

// DailyCount adalah jumlah entri per hari per action.
type DailyCount struct {
	Day    time.Time
	Action string
	Count  int
}

// ActorCount adalah jumlah entri yang ditulis oleh satu aktor.
type ActorCount struct {
	ActorID int64
	Count   int
}
