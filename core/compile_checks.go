package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ CardEntryCommand = Finish{}
	_ CardEntryCommand = ShowError{}
	_ BuyerAction      = Charge{}
	_ BuyerAction      = Store{}

	_ ServiceErrorConverter = (*ProtocolViolationError)(nil)
	_ ServiceErrorConverter = (*ExchangeInterruptedError)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
