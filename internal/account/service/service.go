// Package service implements the account core: credential verification,
// session token issuance, and the self-lookup authorization gate.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"searchuser-api/internal/security"
	"searchuser-api/internal/user/domain"
	"searchuser-api/internal/user/repository"
)

// Sentinel errors for the account service; the HTTP handler maps them to
// status codes.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSubjectMismatch    = errors.New("requested id does not match token subject")
	ErrSessionExpired     = errors.New("session expired")
)

// ValidationError is one violated sign-up constraint.
type ValidationError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// ValidationErrors is the full list of violated constraints for a sign-up
// attempt. Always non-empty when returned.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// SignedInUser is the result of a successful sign-in or sign-up: the user
// with LastLoginAt freshly stamped, plus the serialized session token.
type SignedInUser struct {
	User  *domain.User
	Token string
}

// SignupParams are the candidate fields for a new account.
type SignupParams struct {
	Name       string
	Email      string
	Password   string
	Telephones []string
}

// UserRepo is the minimal user repository needed by the account service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
}

// AuditLogger records account events. Implementations must be best-effort;
// see internal/audit.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, metadata string)
}

// Service implements sign-in, sign-up, and the authenticated self-lookup.
type Service struct {
	users  UserRepo
	hasher *security.Hasher
	tokens *security.TokenProvider
	window time.Duration
	audit  AuditLogger

	// now is the clock for LastLoginAt stamps and the session window;
	// overridable in tests.
	now func() time.Time
}

// NewService returns a Service with the given dependencies. window is the
// session validity duration measured from the last login. audit may be nil.
func NewService(users UserRepo, hasher *security.Hasher, tokens *security.TokenProvider, window time.Duration, audit AuditLogger) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		window: window,
		audit:  audit,
		now:    time.Now,
	}
}

// SignIn verifies the email/password pair and, on success, stamps
// LastLoginAt, persists it, and issues a session token.
// Returns ErrUserNotFound for an unknown email and ErrInvalidCredentials for
// a wrong (or empty) password. Read-only on every failure path.
func (s *Service) SignIn(ctx context.Context, email, password string) (*SignedInUser, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, ErrUserNotFound
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.logEvent(ctx, "", "signin_failure", "user", email)
		return nil, ErrUserNotFound
	}
	if password == "" || s.hasher.Compare(user.PasswordHash, []byte(password)) != nil {
		s.logEvent(ctx, user.ID, "signin_failure", "user", "bad password")
		return nil, ErrInvalidCredentials
	}
	signed, err := s.signIn(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, user.ID, "signin_success", "user", "")
	return signed, nil
}

// SignUp creates a new account and immediately signs it in.
// Constraint violations (including a duplicate email) come back as
// ValidationErrors; callers can rely on no record existing in that case.
func (s *Service) SignUp(ctx context.Context, p SignupParams) (*SignedInUser, error) {
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	p.Name = strings.TrimSpace(p.Name)
	if verrs := validateSignup(p); len(verrs) > 0 {
		return nil, verrs
	}

	hashed, err := s.hasher.Hash([]byte(p.Password))
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        p.Email,
		Name:         p.Name,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, number := range p.Telephones {
		user.Telephones = append(user.Telephones, domain.Telephone{
			ID:     uuid.New().String(),
			UserID: user.ID,
			Number: strings.TrimSpace(number),
		})
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ValidationErrors{{
				Code:        "DuplicateEmail",
				Description: fmt.Sprintf("Email '%s' is already taken.", p.Email),
			}}
		}
		return nil, err
	}
	signed, err := s.signIn(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, user.ID, "signup", "user", "")
	return signed, nil
}

// FindUser returns the user for id after three gates, short-circuit in
// order: id must equal the validated token subject (ErrSubjectMismatch), the
// record must exist (ErrUserNotFound), and the session window must still be
// open (ErrSessionExpired). Never mutates LastLoginAt and never reissues a
// token.
func (s *Service) FindUser(ctx context.Context, id, subjectID string) (*domain.User, error) {
	if id != subjectID {
		s.logEvent(ctx, subjectID, "finduser_denied", "user", id)
		return nil, ErrSubjectMismatch
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !s.SessionIsValid(user) {
		s.logEvent(ctx, id, "finduser_denied", "user", "session expired")
		return nil, ErrSessionExpired
	}
	return user, nil
}

// SessionIsValid reports whether the user signed in less than the configured
// window ago. A user who never signed in has no valid session.
func (s *Service) SessionIsValid(u *domain.User) bool {
	if u == nil || u.LastLoginAt == nil {
		return false
	}
	return !u.LastLoginAt.Add(s.window).Before(s.now())
}

// signIn stamps LastLoginAt, persists the user, and mints the session token.
// A persistence failure aborts the sign-in; there is no retry.
func (s *Service) signIn(ctx context.Context, user *domain.User) (*SignedInUser, error) {
	now := s.now().UTC()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	token, _, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &SignedInUser{User: user, Token: token}, nil
}

func (s *Service) logEvent(ctx context.Context, userID, action, resource, metadata string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, userID, action, resource, metadata)
	}
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// telephonePattern accepts phone-shaped numbers: optional +, digits, with
// spaces, dots, or dashes between groups.
var telephonePattern = regexp.MustCompile(`^\+?[0-9]+([ .-]?[0-9]+)*$`)

func validateSignup(p SignupParams) ValidationErrors {
	var verrs ValidationErrors
	if p.Name == "" {
		verrs = append(verrs, ValidationError{Code: "InvalidName", Description: "Name is required."})
	} else if len(p.Name) > domain.MaxNameLen {
		verrs = append(verrs, ValidationError{Code: "InvalidName", Description: "Name must be at most 255 characters."})
	}
	if p.Email == "" || !emailPattern.MatchString(p.Email) {
		verrs = append(verrs, ValidationError{Code: "InvalidEmail", Description: fmt.Sprintf("Email '%s' is invalid.", p.Email)})
	}
	verrs = append(verrs, validatePassword(p.Password)...)
	for _, number := range p.Telephones {
		number = strings.TrimSpace(number)
		if len(number) > domain.MaxTelephoneLen || !telephonePattern.MatchString(number) {
			verrs = append(verrs, ValidationError{Code: "InvalidTelephone", Description: fmt.Sprintf("Telephone '%s' is invalid.", number)})
		}
	}
	return verrs
}

func validatePassword(password string) ValidationErrors {
	var verrs ValidationErrors
	if len(password) < 8 {
		verrs = append(verrs, ValidationError{Code: "PasswordTooShort", Description: "Passwords must be at least 8 characters."})
	}
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		default:
			hasSymbol = true
		}
	}
	if !hasUpper {
		verrs = append(verrs, ValidationError{Code: "PasswordRequiresUpper", Description: "Passwords must have at least one uppercase letter."})
	}
	if !hasLower {
		verrs = append(verrs, ValidationError{Code: "PasswordRequiresLower", Description: "Passwords must have at least one lowercase letter."})
	}
	if !hasNumber {
		verrs = append(verrs, ValidationError{Code: "PasswordRequiresDigit", Description: "Passwords must have at least one digit."})
	}
	if !hasSymbol {
		verrs = append(verrs, ValidationError{Code: "PasswordRequiresNonAlphanumeric", Description: "Passwords must have at least one non-alphanumeric character."})
	}
	return verrs
}
