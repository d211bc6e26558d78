package query

import "context"

type GooglePayReader interface {
	CanUseGooglePay(ctx context.Context) (bool, error)
}

type CanUseGooglePayQuery struct {
	reader GooglePayReader
}

func NewCanUseGooglePayQuery(reader GooglePayReader) *CanUseGooglePayQuery {
	return &CanUseGooglePayQuery{reader: reader}
}

func (q *CanUseGooglePayQuery) Query(ctx context.Context, _ CanUseGooglePayMessage) (bool, error) {
	if q == nil || q.reader == nil {
		return false, queryDependencyError("query: google pay reader is required")
	}
	return q.reader.CanUseGooglePay(ctx)
}
