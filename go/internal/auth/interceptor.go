package auth

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"github.com/rs/zerolog/log"
)

// Authenticator resolves bearer tokens
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}

// NewInterceptor requires a valid bearer token on every procedure except the
// public ones and attaches the caller identity to the context.
func NewInterceptor(authn Authenticator, publicProcedures ...string) connect.UnaryInterceptorFunc {
	public := make(map[string]struct{}, len(publicProcedures))
	for _, p := range publicProcedures {
		public[p] = struct{}{}
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if _, ok := public[req.Spec().Procedure]; ok {
				return next(ctx, req)
			}

			token, ok := BearerToken(req.Header().Get("Authorization"))
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, ErrMissingToken)
			}

			id, err := authn.Authenticate(ctx, token)
			if err != nil {
				return nil, authError(err)
			}
			return next(WithIdentity(ctx, id), req)
		}
	}
}

func authError(err error) *connect.Error {
	switch {
	case errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrSessionExpired),
		errors.Is(err, ErrSessionNotFound):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		log.Error().Err(err).Msg("failed to authenticate request")
		return connect.NewError(connect.CodeInternal, errors.New("failed to authenticate"))
	}
}
