package model

import "time"

// Result is the immutable record of one finished draw cycle.
type Result struct {
	Cycle          int       `json:"cycle"`
	Date           time.Time `json:"date"`
	WinningNumbers []int     `json:"winningNumbers"`
	JackpotWon     bool      `json:"jackpotWon"`
	TotalWinnings  int       `json:"totalWinnings"`
}

func NewResult(cycle int, winningNumbers []int, jackpotWon bool, totalWinnings int) Result {
	numbers := make([]int, len(winningNumbers))
	copy(numbers, winningNumbers)

	return Result{
		Cycle:          cycle,
		Date:           time.Now(),
		WinningNumbers: numbers,
		JackpotWon:     jackpotWon,
		TotalWinnings:  totalWinnings,
	}
}
