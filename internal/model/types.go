// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Lang       string
	Words      int
	CapsPct    float64
	PunctPct   float64
	PunctSet   string
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int
	TickMs     int
	Text       string
}

// StatsConfig defines filters for session history.
type StatsConfig struct {
	Lang  string
	Since *time.Time
	Last  int
}

// SessionStats captures a finished typing session.
type SessionStats struct {
	ID                string
	StartedAt         time.Time
	EndedAt           time.Time
	Lang              string
	Source            string
	TextLen           int
	WPM               int
	Accuracy          int
	Errors            int
	Progress          int
	CorrectNonSpace   int
	IncorrectNonSpace int
	DurationMs        int64
}

// CharStats stores per-character stats for a session.
type CharStats struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID  int64
	UUID       string
	EndedAt    time.Time
	Source     string
	WPM        int
	Accuracy   int
	Errors     int
	Progress   int
	Correct    int
	Incorrect  int
	DurationMs int64
}
