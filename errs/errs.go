package errs

import (
	"errors"
	"net/http"
)

var (
	ErrNameFormat           = errors.New("E0001: name must contain first and last name")
	ErrEmailAddressFormat   = errors.New("E0002: email address format incorrect")
	ErrPasswordLength       = errors.New("E0003: password must be at least 8 characters")
	ErrRollNoRequired       = errors.New("E0004: university roll number is required")
	ErrInvalidRole          = errors.New("E0005: invalid role")
	ErrAlreadyExists        = errors.New("E0006: email or university roll number already exists")
	ErrUserNotFound         = errors.New("E0007: user not found")
	ErrInvalidCredentials   = errors.New("E0008: invalid credentials")
	ErrDatabase             = errors.New("E0009: database error")
	ErrCryptographic        = errors.New("E0010: cryptographic failure")
	ErrJWT                  = errors.New("E0011: JWT failure")
	ErrTokenExpired         = errors.New("E0012: token expired")
	ErrForbidden            = errors.New("E0013: forbidden")
	ErrInvalidID            = errors.New("E0014: invalid ID")
	ErrTeamNotFound         = errors.New("E0015: team not found")
	ErrTeamNameTaken        = errors.New("E0016: team name already taken")
	ErrHasTeam              = errors.New("E0017: already has a team")
	ErrTeamFull             = errors.New("E0018: team cannot have more than 4 members")
	ErrMemberHasTeam        = errors.New("E0019: member already belongs to another team")
	ErrNotLeader            = errors.New("E0020: not the team leader")
	ErrNoTeam               = errors.New("E0021: no team")
	ErrOTPNotFound          = errors.New("E0022: no pending verification code")
	ErrOTPExpired           = errors.New("E0023: verification code expired")
	ErrOTPMismatch          = errors.New("E0024: verification code mismatch")
	ErrMail                 = errors.New("E0025: error sending email")
	ErrInvalidPaymentStatus = errors.New("E0026: invalid payment status")
	ErrQueue                = errors.New("E0027: queue error")
	ErrTeamNameRequired     = errors.New("E0028: team name is required")
)

// StatusCode maps a backend error onto the HTTP status it is reported with.
// Unknown errors count as database-level faults.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrTeamNotFound),
		errors.Is(err, ErrNoTeam),
		errors.Is(err, ErrOTPNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrNotLeader):
		return http.StatusForbidden
	case errors.Is(err, ErrJWT),
		errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrDatabase),
		errors.Is(err, ErrCryptographic),
		errors.Is(err, ErrMail),
		errors.Is(err, ErrQueue):
		return http.StatusInternalServerError
	case errors.Is(err, ErrNameFormat),
		errors.Is(err, ErrEmailAddressFormat),
		errors.Is(err, ErrPasswordLength),
		errors.Is(err, ErrRollNoRequired),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrTeamNameTaken),
		errors.Is(err, ErrHasTeam),
		errors.Is(err, ErrTeamFull),
		errors.Is(err, ErrMemberHasTeam),
		errors.Is(err, ErrOTPExpired),
		errors.Is(err, ErrOTPMismatch),
		errors.Is(err, ErrInvalidPaymentStatus),
		errors.Is(err, ErrTeamNameRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
