package prize

import "testing"

func TestCreditsForMatchesTotality(t *testing.T) {
	t.Parallel()

	expected := map[int]int{0: 0, 1: 0, 2: 10, 3: 20, 4: 40, 5: 100, 6: 1000}
	for m, want := range expected {
		if got := CreditsForMatches(m); got != want {
			t.Errorf("matches %d: expected %d got %d", m, want, got)
		}
	}

	if CreditsForMatches(-1) != 0 || CreditsForMatches(7) != 0 {
		t.Error("out of range match counts must pay nothing")
	}
}

func TestCalculateWinningsCredits(t *testing.T) {
	t.Parallel()

	rows := [][]int{
		{1, 2, 3, 7, 8, 9},
		{10, 11, 12, 13, 14, 15},
		{4, 5, 6, 16, 17, 18},
	}

	res := CalculateWinnings([]int{1, 2, 3, 4, 5, 6}, rows, 1000)
	if res.JackpotWon {
		t.Error("jackpot must not be won")
	}
	if res.Kind != KindCredits {
		t.Errorf("expected kind credits got %s", res.Kind)
	}
	if res.TotalWinnings != 40 {
		t.Errorf("expected total 40 got %d", res.TotalWinnings)
	}

	wantRows := []int{20, 0, 20}
	for i, w := range wantRows {
		if res.RowWinnings[i] != w {
			t.Errorf("row %d: expected %d got %d", i, w, res.RowWinnings[i])
		}
	}
}

func TestCalculateWinningsJackpotSupersedes(t *testing.T) {
	t.Parallel()

	rows := [][]int{
		{1, 2, 3, 4, 5, 6},
		{1, 2, 3, 10, 11, 12},
	}

	res := CalculateWinnings([]int{1, 2, 3, 4, 5, 6}, rows, 1000)
	if !res.JackpotWon {
		t.Fatal("expected jackpot win")
	}
	if res.Kind != KindJackpot {
		t.Errorf("expected kind jackpot got %s", res.Kind)
	}
	if res.TotalWinnings != 1000 {
		t.Errorf("expected total 1000 got %d", res.TotalWinnings)
	}
	for i, w := range res.RowWinnings {
		if w != 0 {
			t.Errorf("row %d: expected suppressed payout got %d", i, w)
		}
	}
}

func TestCalculateWinningsMalformedTicket(t *testing.T) {
	t.Parallel()

	rows := [][]int{{1, 2, 3, 4, 5, 6}}
	res := CalculateWinnings([]int{1, 2, 3}, rows, 1000)
	if res.JackpotWon || res.TotalWinnings != 0 || res.Kind != KindNone {
		t.Errorf("malformed ticket must score as a loss, got %+v", res)
	}
}

func TestCalculateWinningsNoMatches(t *testing.T) {
	t.Parallel()

	rows := [][]int{{7, 8, 9, 10, 11, 12}}
	res := CalculateWinnings([]int{1, 2, 3, 4, 5, 6}, rows, 1000)
	if res.Kind != KindNone || res.TotalWinnings != 0 {
		t.Errorf("expected loss result, got %+v", res)
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()

	rows := [][]int{
		{1, 2, 3, 7, 8, 9},
		{10, 11, 12, 13, 14, 15},
		{4, 5, 6, 16, 17, 18},
	}

	if got := Matches([]int{1, 2, 3, 4, 5, 6}, rows); got != 6 {
		t.Errorf("expected 6 total matches got %d", got)
	}
}
