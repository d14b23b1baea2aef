package auth

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sushirush/go/internal/models"
)

const (
	AuthServiceName = "sushirush.auth.v1.AuthService"

	AuthServiceSignUpProcedure         = "/sushirush.auth.v1.AuthService/SignUp"
	AuthServiceSignInProcedure         = "/sushirush.auth.v1.AuthService/SignIn"
	AuthServiceSignOutProcedure        = "/sushirush.auth.v1.AuthService/SignOut"
	AuthServiceGetMeProcedure          = "/sushirush.auth.v1.AuthService/GetMe"
	AuthServiceUpdateSettingsProcedure = "/sushirush.auth.v1.AuthService/UpdateSettings"
)

// PublicProcedures can be called without a session
var PublicProcedures = []string{
	AuthServiceSignUpProcedure,
	AuthServiceSignInProcedure,
}

// AuthApp defines what the service layer needs from the auth application
type AuthApp interface {
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error)
	SignIn(ctx context.Context, req SignInRequest) (*AuthResult, error)
	SignOut(ctx context.Context, token string) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateSettings(ctx context.Context, userID uuid.UUID, req UpdateSettingsRequest) (*models.User, error)
	IsAdmin(user *models.User) bool
}

// Service implements the AuthService Connect procedures
type Service struct {
	app AuthApp
}

// NewService creates a new auth service
func NewService(app AuthApp) *Service {
	return &Service{app: app}
}

// NewAuthServiceHandler mounts every AuthService procedure
func NewAuthServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(AuthServiceSignUpProcedure, connect.NewUnaryHandler(AuthServiceSignUpProcedure, svc.SignUp, opts...))
	mux.Handle(AuthServiceSignInProcedure, connect.NewUnaryHandler(AuthServiceSignInProcedure, svc.SignIn, opts...))
	mux.Handle(AuthServiceSignOutProcedure, connect.NewUnaryHandler(AuthServiceSignOutProcedure, svc.SignOut, opts...))
	mux.Handle(AuthServiceGetMeProcedure, connect.NewUnaryHandler(AuthServiceGetMeProcedure, svc.GetMe, opts...))
	mux.Handle(AuthServiceUpdateSettingsProcedure, connect.NewUnaryHandler(AuthServiceUpdateSettingsProcedure, svc.UpdateSettings, opts...))
	return "/" + AuthServiceName + "/", mux
}

// SignUp registers an account
func (s *Service) SignUp(ctx context.Context, req *connect.Request[SignUpRequestMsg]) (*connect.Response[SessionResponse], error) {
	result, err := s.app.SignUp(ctx, SignUpRequest{
		Email:       req.Msg.Email,
		Password:    req.Msg.Password,
		DisplayName: req.Msg.DisplayName,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(sessionToMsg(result)), nil
}

// SignIn starts a session for existing credentials
func (s *Service) SignIn(ctx context.Context, req *connect.Request[SignInRequestMsg]) (*connect.Response[SessionResponse], error) {
	result, err := s.app.SignIn(ctx, SignInRequest{
		Email:    req.Msg.Email,
		Password: req.Msg.Password,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(sessionToMsg(result)), nil
}

// SignOut revokes the caller's session
func (s *Service) SignOut(ctx context.Context, req *connect.Request[SignOutRequest]) (*connect.Response[SignOutResponse], error) {
	token, ok := BearerToken(req.Header().Get("Authorization"))
	if !ok {
		return nil, connect.NewError(connect.CodeUnauthenticated, ErrMissingToken)
	}
	if err := s.app.SignOut(ctx, token); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SignOutResponse{}), nil
}

// GetMe returns the caller's profile
func (s *Service) GetMe(ctx context.Context, req *connect.Request[GetMeRequest]) (*connect.Response[GetMeResponse], error) {
	id, err := RequireIdentity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	user, err := s.app.GetUser(ctx, id.UserID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetMeResponse{User: userToMsg(user, s.app.IsAdmin(user))}), nil
}

// UpdateSettings changes the caller's display name and preferences
func (s *Service) UpdateSettings(ctx context.Context, req *connect.Request[UpdateSettingsRequestMsg]) (*connect.Response[UpdateSettingsResponse], error) {
	id, err := RequireIdentity(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	user, err := s.app.UpdateSettings(ctx, id.UserID, UpdateSettingsRequest{
		DisplayName:   req.Msg.DisplayName,
		Notifications: req.Msg.Notifications,
		SoundEnabled:  req.Msg.SoundEnabled,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&UpdateSettingsResponse{User: userToMsg(user, s.app.IsAdmin(user))}), nil
}

func sessionToMsg(result *AuthResult) *SessionResponse {
	return &SessionResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      userToMsg(result.User, result.IsAdmin),
	}
}

func toConnectError(err error) *connect.Error {
	switch {
	case errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrInvalidDisplayName):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ErrEmailTaken):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, ErrUserNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrSessionExpired),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrMissingToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, ErrForbidden):
		return connect.NewError(connect.CodePermissionDenied, err)
	default:
		log.Error().Err(err).Msg("auth request failed")
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
}
