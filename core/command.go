package core

// CardEntryCommand tells the card entry SDK how to continue after card
// details were collected. The only implementations are Finish and
// ShowError.
type CardEntryCommand interface {
	isCardEntryCommand()
}

// Finish accepts the collected card details.
type Finish struct{}

func (Finish) isCardEntryCommand() {}

// ShowError rejects the collected card details and lets the buyer retry.
type ShowError struct {
	Message string
}

func (ShowError) isCardEntryCommand() {}

// CommandName returns a stable label for logs and metrics.
func CommandName(cmd CardEntryCommand) string {
	switch cmd.(type) {
	case Finish, *Finish:
		return "finish"
	case ShowError, *ShowError:
		return "show_error"
	default:
		return "unknown"
	}
}
