package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserExp is one ledger row. Position keeps the ledger's insertion order across restarts.
type UserExp struct {
	bun.BaseModel `bun:"table:user_exp,alias:ue"`

	UserID    string    `bun:"user_id,pk" json:"user_id"`
	Exp       int64     `bun:"exp,notnull" json:"exp"`
	Position  int       `bun:"position,notnull" json:"position"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// ExpSettings is the persisted double EXP record. There is only ever one row.
type ExpSettings struct {
	bun.BaseModel `bun:"table:exp_settings,alias:es"`

	ID               int    `bun:"id,pk" json:"-"`
	DoubleExp        bool   `bun:"double_exp,notnull" json:"doubleExp"`
	DoubleExpEndTime *int64 `bun:"double_exp_end_time" json:"doubleExpEndTime"`
}

// SettingsRowID is the primary key of the single ExpSettings row.
const SettingsRowID = 1

// EndTime converts the stored millisecond timestamp.
func (s ExpSettings) EndTime() *time.Time {
	if s.DoubleExpEndTime == nil {
		return nil
	}
	t := time.UnixMilli(*s.DoubleExpEndTime)
	return &t
}

// NewExpSettings builds the persisted form of a double EXP window.
func NewExpSettings(enabled bool, endTime *time.Time) ExpSettings {
	s := ExpSettings{ID: SettingsRowID, DoubleExp: enabled}
	if endTime != nil {
		ms := endTime.UnixMilli()
		s.DoubleExpEndTime = &ms
	}
	return s
}
