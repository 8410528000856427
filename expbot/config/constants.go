package config

import "time"

// Application-wide constants organized by domain

// Progression Constants
const (
	// Level curve
	MinLevelExp     = 15  // EXP needed to reach level 1
	LevelMultiplier = 1.4 // per-level growth factor of the step cost

	// Grants
	DefaultExp         = 0
	ExpUnit            = "EXP"
	ChatMessageExp     = 1
	ActivityTickExp    = 1
	ExpCooldown        = 30 * time.Second
	InactiveThreshold  = 5 * time.Minute
	ActivityTickPeriod = 1 * time.Minute

	// Double EXP
	DoubleExpMultiplier = 2

	// Milestones
	MilestoneLevelInterval    = 5
	AnnouncementLevelInterval = 10
	BonusExpMultiplier        = 5
)

// UI and Display Constants
const (
	LadderSize     = 100
	LadderPerPage  = 10
	ProgressBarLen = 10

	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	EmbedDefaultColor = 0x2B2D31
)

// Storage and Performance Constants
const (
	DefaultDataDir        = "impulse-db"
	LedgerFileName        = "exp.json"
	SettingsFileName      = "exp-config.json"
	DefaultSQLitePath     = "impulse-db/exp.sqlite"
	DefaultQueryTimeout   = 30 * time.Second
	PersistTimeout        = 10 * time.Second
	CommandTimeout        = 10 * time.Second
	LeaderboardCacheSize  = 32
	ShutdownFlushTimeout  = 10 * time.Second
	GatewayConnectTimeout = 10 * time.Second
)
