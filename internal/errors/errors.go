package errors

import "errors"

var (
	ErrMissingEmail     = errors.New("email is required")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrCoCNotAccepted   = errors.New("code of conduct not accepted")
	ErrAlreadyInvited   = errors.New("email already invited")
	ErrAlreadyInTeam    = errors.New("email already belongs to the team")
	ErrInviteDisabled   = errors.New("invites are disabled for this team")
	ErrMissingToken     = errors.New("slack token is empty")
	ErrMissingTeam      = errors.New("slack team is empty")
	ErrInvalidToken     = errors.New("slack token rejected")
	ErrInvalidLocale    = errors.New("invalid locale tag")
	ErrInvalidChannel   = errors.New("invalid channel name")
	ErrSlackUnavailable = errors.New("slack api unavailable")
	ErrSettingsNotFound = errors.New("settings file not found")
	ErrInvalidSettings  = errors.New("invalid settings format")
)
