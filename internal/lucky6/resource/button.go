package resource

// inline keyboard callback data
const (
	CbPickPrefix  = "pick:"
	CbConfirm     = "confirm"
	CbNewTicket   = "newticket"
	CbQuickPick   = "quickpick"
	CbAnswerShake = "no more room on the ticket"
	CbAnswerOk    = "ok"
)
