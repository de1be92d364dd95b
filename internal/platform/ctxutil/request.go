package ctxutil

import (
	"context"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
)

type requestDataKey struct{}

// RequestData is attached by the auth middleware after the access token
// resolves to an account.
type RequestData struct {
	User *domain.User
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey{})
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// UserID returns the authenticated user's id, or 0 when unauthenticated.
func UserID(ctx context.Context) uint {
	rd := GetRequestData(ctx)
	if rd == nil || rd.User == nil {
		return 0
	}
	return rd.User.ID
}
