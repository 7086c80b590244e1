package domain

import (
	"time"
)

type Player struct {
	ID        string
	Name      string
	Career    PlayerStats
	CreatedAt time.Time
}

// PlayerStats are the counters tracked per player, both per session and over a career
type PlayerStats struct {
	Goals   int
	Assists int
	Wins    int
}

func (s PlayerStats) Add(other PlayerStats) PlayerStats {
	return PlayerStats{
		Goals:   s.Goals + other.Goals,
		Assists: s.Assists + other.Assists,
		Wins:    s.Wins + other.Wins,
	}
}

func (s PlayerStats) Sub(other PlayerStats) PlayerStats {
	return PlayerStats{
		Goals:   s.Goals - other.Goals,
		Assists: s.Assists - other.Assists,
		Wins:    s.Wins - other.Wins,
	}
}

func (s PlayerStats) IsZero() bool {
	return s == PlayerStats{}
}
