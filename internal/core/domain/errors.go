package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPasscode     = errors.New("invalid passcode")
	ErrUnknownScope        = errors.New("unknown scope")
	ErrMalformedValue      = errors.New("malformed stored value")
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrUnknownViewerAction = errors.New("unknown viewer action")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrNotGuildMember      = errors.New("user is not a member of the guild")
	ErrDiscordDisabled     = errors.New("discord login is not configured")
	ErrUnknownDocument     = errors.New("unknown document")
)

// Callback error codes, passed to the Discord login page as ?error=<code>.
const (
	CodeNoToken         = "no_token"
	CodeInvalidResponse = "invalid_response"
	CodeBotOffline      = "bot_offline"
)

var (
	ErrNoToken         = errors.New("no token in callback")
	ErrInvalidResponse = errors.New("unsupported grant response")
	ErrBotOffline      = errors.New("login could not be completed in time")
	ErrProvider        = errors.New("provider returned an error")
)

// ProviderError carries an error code returned by the OAuth provider.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("provider error: %s", e.Code)
	}
	return fmt.Sprintf("provider error: %s: %s", e.Code, e.Description)
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// CallbackErrorCode maps a callback failure to the short code shown on the
// login page.
func CallbackErrorCode(err error) string {
	var pe *ProviderError
	switch {
	case errors.As(err, &pe):
		return pe.Code
	case errors.Is(err, ErrInvalidResponse):
		return CodeInvalidResponse
	case errors.Is(err, ErrBotOffline):
		return CodeBotOffline
	default:
		return CodeNoToken
	}
}
