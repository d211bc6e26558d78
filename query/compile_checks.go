package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-inapp-payments/core"
)

var (
	_ gocmd.Querier[CanUseGooglePayMessage, bool] = (*CanUseGooglePayQuery)(nil)

	_ GooglePayReader = (*core.Plugin)(nil)
)
