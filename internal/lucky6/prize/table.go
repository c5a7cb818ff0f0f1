package prize

// TicketSize is the number of picks in a valid ticket and the size of a drawn row.
const TicketSize = 6

// FullMatchCredits is the flat payout used when a 6/6 match occurs with no
// jackpot pot in play.
const FullMatchCredits = 1000

// CreditsForMatches maps a per-row match count to a credit payout. Total over
// all ints; anything below 2 pays nothing.
func CreditsForMatches(matches int) int {
	switch matches {
	case TicketSize:
		return FullMatchCredits
	case 5:
		return 100
	case 4:
		return 40
	case 3:
		return 20
	case 2:
		return 10
	default:
		return 0
	}
}
