package resource

import "github.com/enescakir/emoji"

const (
	CmdStart   = "/start"
	CmdPlay    = "/play"
	CmdRules   = "/rules"
	CmdWallet  = "/wallet"
	CmdJackpot = "/jackpot"
	CmdHistory = "/history"
	CmdReset   = "/reset"
	CmdAsk     = "/ask"
)

// manage text messages
var (
	TextGreetingMsg = emoji.FourLeafClover.String() + " Hi, %s\n\n" +
		"This is *lucky6* " + emoji.Robot.String() + " - a simulated lottery. Pick 6 numbers, " +
		"wait for the draw and watch the reveal " + emoji.GameDie.String() + "\n\n" +
		"*Commands:*\n" +
		CmdPlay + " - start or resume your game\n" +
		CmdRules + " - how the game works\n" +
		CmdWallet + " - balance and ticket history\n" +
		CmdJackpot + " - current jackpot pool\n" +
		CmdHistory + " - recent draw results\n" +
		CmdReset + " - reset your wallet\n" +
		CmdAsk + " - ask the assistant for number advice"

	TextRulesMsg = emoji.Bookmark.String() + " *Rules*\n\n" +
		"Every cycle lasts " + emoji.Stopwatch.String() + " 2 minutes. While sales are open you can pick " +
		"6 numbers and confirm up to 3 tickets, 30 credits each.\n\n" +
		"Sales close 60 seconds before the end of the cycle, the draw is revealed in the last 45 seconds.\n\n" +
		"Match 2 or more numbers in a row to win credits. Match a whole row of 6 to take the jackpot " +
		emoji.MoneyBag.String()

	TextChatNotAllowed = emoji.WomanGesturingNo.String() + " The game does not work in group chats =("

	TextSalesOpenMsg   = emoji.AdmissionTickets.String() + " Cycle %d - ticket sales are open! Pick your 6 numbers"
	TextPickHeaderMsg  = "Tap numbers to build your ticket"
	TextSalesClosedMsg = emoji.Locked.String() + " Ticket sales are closed, the draw starts soon"
	TextRevealStartMsg = emoji.GameDie.String() + " Drawing cycle %d..."
	TextStatusMsg      = emoji.Stopwatch.String() + " Game in progress: phase %s, %d seconds left in the cycle"

	TextTicketConfirmedMsg = emoji.AdmissionTickets.String() + " Ticket confirmed: %s\n-%d credits, balance %d"
	TextSelectionLockedMsg = "Ticket sales are closed right now"
	TextTicketLimitMsg     = "At most 3 tickets per cycle"
	TextTicketIncomplete   = "Pick exactly 6 numbers before confirming"

	TextTicketResultWinMsg  = emoji.PartyPopper.String() + " Ticket %d (%s) won %d credits!"
	TextTicketResultLossMsg = "Ticket %d (%s) - no luck this time"
	TextHighlightMsg        = emoji.Sparkles.String() + " Checking ticket %d: %s"

	TextJackpotWonMsg   = emoji.MoneyBag.String() + emoji.PartyPopper.String() + " JACKPOT! You won %d credits!"
	TextCreditsWonMsg   = emoji.PartyPopper.String() + " You won %d credits this cycle!"
	TextNothingWonMsg   = emoji.BrokenHeart.String() + " Nothing won this cycle. Better luck next draw!"
	TextSessionComplete = emoji.ChequeredFlag.String() + " The session is over. Send " + CmdPlay + " to start a new one"

	TextWalletMsg     = emoji.Purse.String() + " *Balance:* %d credits\n\n%s"
	TextJackpotMsg    = emoji.MoneyBag.String() + " Current jackpot: *%d credits*"
	TextNoHistoryMsg  = "No draws yet"
	TextWalletResetOk = emoji.Purse.String() + " Wallet restored to the starting balance"

	TextAssistSetupMsg = emoji.Gear.String() + " The assistant backend is not configured. " +
		"Set LUCKY6_ASSIST_URL to enable recommendations.\n\nQuick pick instead: %s"
	TextAssistFailedMsg = emoji.Robot.String() + " The assistant is unavailable right now, try again later"
	TextAskUsageMsg     = "Usage: " + CmdAsk + " which numbers should I pick?"
)
