package prize

// Kind classifies the outcome of scoring one ticket against a cycle.
type Kind string

const (
	KindJackpot Kind = "jackpot"
	KindCredits Kind = "credits"
	KindNone    Kind = "none"
)

type Result struct {
	JackpotWon    bool
	RowWinnings   []int
	TotalWinnings int
	Kind          Kind
}

// CalculateWinnings scores a ticket against the drawn rows of a cycle. A
// malformed ticket is scored as a loss, never an error. A full 6/6 row match
// pays the jackpot pot and suppresses all row payouts.
func CalculateWinnings(userNumbers []int, rows [][]int, jackpotAmount int) Result {
	result := Result{RowWinnings: make([]int, len(rows)), Kind: KindNone}
	if len(userNumbers) != TicketSize {
		return result
	}

	picked := make(map[int]bool, len(userNumbers))
	for _, n := range userNumbers {
		picked[n] = true
	}

	for i, row := range rows {
		matches := 0
		for _, n := range row {
			if picked[n] {
				matches++
			}
		}

		if matches == len(row) {
			result.JackpotWon = true
		}

		result.RowWinnings[i] = CreditsForMatches(matches)
	}

	if result.JackpotWon {
		// jackpot supersedes row payouts, never additive
		for i := range result.RowWinnings {
			result.RowWinnings[i] = 0
		}
		result.TotalWinnings = jackpotAmount
		result.Kind = KindJackpot
		return result
	}

	for _, w := range result.RowWinnings {
		result.TotalWinnings += w
	}

	if result.TotalWinnings > 0 {
		result.Kind = KindCredits
	}

	return result
}

// Matches counts how many ticket numbers appear across all rows.
func Matches(userNumbers []int, rows [][]int) int {
	picked := make(map[int]bool, len(userNumbers))
	for _, n := range userNumbers {
		picked[n] = true
	}

	var total int
	for _, row := range rows {
		for _, n := range row {
			if picked[n] {
				total++
			}
		}
	}

	return total
}
