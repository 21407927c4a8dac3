package domain

import "time"

// Choice - a hand shape thrown in one round
type Choice string

const (
	ChoiceRock     Choice = "rock"
	ChoicePaper    Choice = "paper"
	ChoiceScissors Choice = "scissors"
)

// Choices lists every valid hand in a fixed order.
var Choices = [3]Choice{ChoiceRock, ChoicePaper, ChoiceScissors}

// Valid reports whether c is one of the three hands.
func (c Choice) Valid() bool {
	switch c {
	case ChoiceRock, ChoicePaper, ChoiceScissors:
		return true
	}
	return false
}

// Result - who took the round
type Result string

const (
	ResultPlayer   Result = "player"
	ResultComputer Result = "computer"
	ResultDraw     Result = "draw"
)

func (r Result) Valid() bool {
	switch r {
	case ResultPlayer, ResultComputer, ResultDraw:
		return true
	}
	return false
}

// Stats is the singleton aggregate of all rounds played.
type Stats struct {
	PlayerWins   int64     `db:"player_wins" json:"player_wins"`
	ComputerWins int64     `db:"computer_wins" json:"computer_wins"`
	Draws        int64     `db:"draws" json:"draws"`
	TotalGames   int64     `db:"total_games" json:"total_games"`
	UpdatedAt    time.Time `db:"last_updated" json:"-"`
}

// Consistent reports whether the total matches the three outcome counters.
func (s Stats) Consistent() bool {
	return s.PlayerWins >= 0 && s.ComputerWins >= 0 && s.Draws >= 0 &&
		s.TotalGames == s.PlayerWins+s.ComputerWins+s.Draws
}

// HistoryEntry - one played round, never edited after insert
type HistoryEntry struct {
	ID             int64     `db:"id" json:"id"`
	RoundID        string    `db:"round_id" json:"round_id"`
	PlayerChoice   Choice    `db:"player_choice" json:"player_choice"`
	ComputerChoice Choice    `db:"computer_choice" json:"computer_choice"`
	Result         Result    `db:"result" json:"result"`
	CreatedAt      time.Time `db:"timestamp" json:"timestamp"`
}
