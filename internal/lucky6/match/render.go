package match

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	historyModel "github.com/lucky6-games/lucky6/internal/database/drawhistory/model"
	walletModel "github.com/lucky6-games/lucky6/internal/database/wallet/model"
	"github.com/lucky6-games/lucky6/internal/lucky6/resource"

	"github.com/enescakir/emoji"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

const keyboardRowWidth = 6

func RenderNumbers(numbers []int) string {
	buf := &strings.Builder{}
	for i, n := range numbers {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(strconv.Itoa(n))
	}
	return buf.String()
}

// renderPickKeyboard builds the number grid with the current picks marked,
// plus the quick pick, confirm and new ticket controls.
func renderPickKeyboard(picked []int, domainMax int) tgbotapi.InlineKeyboardMarkup {
	pickedSet := make(map[int]bool, len(picked))
	for _, n := range picked {
		pickedSet[n] = true
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for n := 1; n <= domainMax; n++ {
		label := strconv.Itoa(n)
		if pickedSet[n] {
			label = emoji.CheckMarkButton.String() + " " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			label, fmt.Sprintf("%s%d", resource.CbPickPrefix, n),
		))
		if len(row) == keyboardRowWidth {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(emoji.GameDie.String()+" Quick pick", resource.CbQuickPick),
		tgbotapi.NewInlineKeyboardButtonData(emoji.CheckMark.String()+" Confirm", resource.CbConfirm),
		tgbotapi.NewInlineKeyboardButtonData(emoji.Plus.String()+" New ticket", resource.CbNewTicket),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// renderReveal shows the cycle's rows with unrevealed numbers masked and
// highlighted numbers marked. The reveal order walks the rows front to back,
// so the revealed prefix is attributed per row: the same number appearing in
// two rows stays masked in the later row until its own turn.
func renderReveal(cycleIdx int, rows [][]int, revealed, highlight []int) string {
	highlightSet := make(map[int]bool, len(highlight))
	for _, n := range highlight {
		highlightSet[n] = true
	}

	buf := &strings.Builder{}
	buf.WriteString(fmt.Sprintf("%s Draw %d\n", emoji.GameDie.String(), cycleIdx+1))

	offset := 0
	for _, row := range rows {
		end := offset + len(row)
		if end > len(revealed) {
			end = len(revealed)
		}
		rowRevealed := make(map[int]bool, len(row))
		if offset < end {
			for _, n := range revealed[offset:end] {
				rowRevealed[n] = true
			}
		}

		for i, n := range row {
			if i > 0 {
				buf.WriteString("  ")
			}
			switch {
			case rowRevealed[n] && highlightSet[n]:
				buf.WriteString(emoji.Sparkles.String())
				buf.WriteString(strconv.Itoa(n))
			case rowRevealed[n]:
				buf.WriteString(strconv.Itoa(n))
			default:
				buf.WriteString("··")
			}
		}
		buf.WriteString("\n")
		offset += len(row)
	}

	return buf.String()
}

// RenderWallet shows the balance and the most recent ticket records.
func RenderWallet(w walletModel.Wallet) string {
	buf := &strings.Builder{}
	history := w.History
	if len(history) > 10 {
		history = history[len(history)-10:]
	}

	if len(history) == 0 {
		buf.WriteString("No tickets yet")
	}

	for i := len(history) - 1; i >= 0; i-- {
		t := history[i]
		sign := ""
		if t.CreditChange > 0 {
			sign = "+"
		}
		buf.WriteString(fmt.Sprintf(
			"%s %s | cycle %d | %d matches | %s%d credits\n",
			emoji.AdmissionTickets.String(), RenderNumbers(t.Numbers), t.Cycle+1, t.Matches, sign, t.CreditChange,
		))
	}

	return fmt.Sprintf(resource.TextWalletMsg, w.Balance, buf.String())
}

// RenderHotCold summarizes number frequency across the session's drawn rows.
func RenderHotCold(draws [][]int) string {
	if len(draws) == 0 {
		return ""
	}

	counts := map[int]int{}
	for _, row := range draws {
		for _, n := range row {
			counts[n]++
		}
	}

	numbers := make([]int, 0, len(counts))
	for n := range counts {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool {
		if counts[numbers[i]] != counts[numbers[j]] {
			return counts[numbers[i]] > counts[numbers[j]]
		}
		return numbers[i] < numbers[j]
	})

	top := numbers
	if len(top) > 6 {
		top = top[:6]
	}
	bottom := numbers
	if len(bottom) > 6 {
		bottom = bottom[len(bottom)-6:]
	}

	hot := make([]int, len(top))
	copy(hot, top)
	sort.Ints(hot)
	cold := make([]int, len(bottom))
	copy(cold, bottom)
	sort.Ints(cold)

	return fmt.Sprintf(
		"\n%s Hot numbers: %s\n%s Cold numbers: %s\n",
		emoji.Fire.String(), RenderNumbers(hot), emoji.Snowflake.String(), RenderNumbers(cold),
	)
}

// RenderHistory shows the recent cycle results, newest first.
func RenderHistory(results []historyModel.Result) string {
	if len(results) == 0 {
		return resource.TextNoHistoryMsg
	}

	buf := &strings.Builder{}
	buf.WriteString(emoji.Scroll.String() + " *Recent draws*\n\n")
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		mark := ""
		if r.JackpotWon {
			mark = " " + emoji.MoneyBag.String()
		}
		buf.WriteString(fmt.Sprintf(
			"cycle %d | %s | won %d%s\n", r.Cycle+1, RenderNumbers(r.WinningNumbers), r.TotalWinnings, mark,
		))
	}

	return buf.String()
}
