package entity

import "fmt"

type Outcome string

const (
	OutcomeInProgress Outcome = "in_progress"
	OutcomeWon        Outcome = "won"
	OutcomeDraw       Outcome = "draw"
)

// Status is derived from a board and never stored as the source of truth.
type Status struct {
	Outcome Outcome `json:"outcome"`
	Winner  Mark    `json:"winner,omitempty"`
	Line    []int   `json:"line,omitempty"`
}

func InProgress() Status {
	return Status{Outcome: OutcomeInProgress}
}

func Won(winner Mark, line [3]int) Status {
	return Status{
		Outcome: OutcomeWon,
		Winner:  winner,
		Line:    []int{line[0], line[1], line[2]},
	}
}

func Draw() Status {
	return Status{Outcome: OutcomeDraw}
}

func (that Status) IsInProgress() bool {
	return that.Outcome == OutcomeInProgress
}

func (that Status) IsWon() bool {
	return that.Outcome == OutcomeWon
}

func (that Status) IsDraw() bool {
	return that.Outcome == OutcomeDraw
}

// IsTerminal reports whether the game is over.
func (that Status) IsTerminal() bool {
	return that.IsWon() || that.IsDraw()
}

func (that Status) String() string {
	switch that.Outcome {
	case OutcomeWon:
		return fmt.Sprintf("%s wins", that.Winner)
	case OutcomeDraw:
		return "draw"
	case OutcomeInProgress:
		return "in progress"
	default:
		return string(that.Outcome)
	}
}
