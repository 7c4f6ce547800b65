package services

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shuyan0723/study--student-mangement/internal/auth"
	"github.com/shuyan0723/study--student-mangement/internal/notify"
	"github.com/shuyan0723/study--student-mangement/internal/store"
	"github.com/shuyan0723/study--student-mangement/types"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	UpdateLoginState(ctx context.Context, user types.User) error
	Delete(ctx context.Context, id string) error
}

// StudentLookup resolves the student profile linked to an account.
type StudentLookup interface {
	GetByUserID(ctx context.Context, userID string) (types.Student, error)
}

// TeacherLookup resolves the teacher profile linked to an account.
type TeacherLookup interface {
	GetByUserID(ctx context.Context, userID string) (types.Teacher, error)
}

// LoginResult is the success payload of login, register, and refresh.
type LoginResult struct {
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	User         types.PublicUser `json:"user"`
	ExpiresIn    int              `json:"expiresIn"`
}

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Role     string
}

// AuthService runs the credential flows: the login state machine,
// token refresh, registration, and password reset.
type AuthService struct {
	users    UserRepository
	students StudentLookup
	teachers TeacherLookup
	hasher   *auth.Hasher
	tokens   *auth.TokenIssuer
	notifier *notify.Notifier
	log      *logrus.Logger

	maxAttempts  int
	lockDuration time.Duration

	// now is swapped out by tests.
	now func() time.Time
}

// NewAuthService wires the auth flows together.
func NewAuthService(
	users UserRepository,
	students StudentLookup,
	teachers TeacherLookup,
	hasher *auth.Hasher,
	tokens *auth.TokenIssuer,
	notifier *notify.Notifier,
	log *logrus.Logger,
	maxAttempts int,
	lockDuration time.Duration,
) *AuthService {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if lockDuration <= 0 {
		lockDuration = 30 * time.Minute
	}
	if notifier == nil {
		notifier = notify.New(nil)
	}
	if log == nil {
		log = logrus.New()
	}
	return &AuthService{
		users:        users,
		students:     students,
		teachers:     teachers,
		hasher:       hasher,
		tokens:       tokens,
		notifier:     notifier,
		log:          log,
		maxAttempts:  maxAttempts,
		lockDuration: lockDuration,
		now:          time.Now,
	}
}

// Login runs the five-step login state machine: lookup, lock check,
// status check, password verify, token issue. Each step gates the next;
// unknown-user and wrong-password failures are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, types.ErrInvalidCredentials()
		}
		return LoginResult{}, err
	}

	now := s.now()

	if user.Status == types.StatusLocked {
		if user.LockedUntil == nil || user.LockedUntil.After(now) {
			return LoginResult{}, types.ErrAccountLocked()
		}
		// Lock window elapsed: reconcile the stale row and proceed.
		user.Status = types.StatusActive
		user.LoginAttempts = 0
		user.LockedUntil = nil
		if err := s.users.UpdateLoginState(ctx, user); err != nil {
			return LoginResult{}, err
		}
	}

	if user.Status == types.StatusInactive {
		return LoginResult{}, types.ErrAccountInactive()
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		user.LoginAttempts++
		if user.LoginAttempts >= s.maxAttempts {
			lockedUntil := now.Add(s.lockDuration)
			user.Status = types.StatusLocked
			user.LockedUntil = &lockedUntil
			s.log.WithFields(logrus.Fields{
				"user_id":      user.ID,
				"attempts":     user.LoginAttempts,
				"locked_until": lockedUntil,
			}).Warn("account locked after repeated login failures")
		}
		if err := s.users.UpdateLoginState(ctx, user); err != nil {
			return LoginResult{}, err
		}
		return LoginResult{}, types.ErrInvalidCredentials()
	}

	user.LoginAttempts = 0
	user.LastLogin = &now
	if err := s.users.UpdateLoginState(ctx, user); err != nil {
		return LoginResult{}, err
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Username, user.Role)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         s.publicUserWithProfile(ctx, user),
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. The
// account must still exist and still be active.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (LoginResult, error) {
	claims, err := s.tokens.Verify(ctx, refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return LoginResult{}, types.ErrInvalidToken("Invalid or expired refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, types.ErrNotFound("User not found")
		}
		return LoginResult{}, err
	}

	switch user.Status {
	case types.StatusLocked:
		return LoginResult{}, types.ErrAccountLocked()
	case types.StatusInactive:
		return LoginResult{}, types.ErrAccountInactive()
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Username, user.Role)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user.Public(),
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// Authenticate resolves a bearer access token into the acting identity.
// Used by the request gate; never exposes the password hash downstream.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (types.Identity, error) {
	claims, err := s.tokens.Verify(ctx, accessToken, auth.TokenTypeAccess)
	if err != nil {
		return types.Identity{}, types.ErrInvalidToken("Invalid or expired access token")
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Identity{}, types.ErrInvalidToken("Invalid or expired access token")
		}
		return types.Identity{}, err
	}

	switch user.Status {
	case types.StatusLocked:
		return types.Identity{}, types.ErrAccountLocked()
	case types.StatusInactive:
		return types.Identity{}, types.ErrAccountInactive()
	}

	return types.Identity{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Status:   user.Status,
	}, nil
}

// Register provisions a new active account and logs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (LoginResult, error) {
	if len(input.Username) < 3 || len(input.Username) > 50 {
		return LoginResult{}, types.ErrValidation("Username must be 3-50 characters")
	}
	if len(input.Password) < 6 {
		return LoginResult{}, types.ErrValidation("Password must be at least 6 characters")
	}
	if input.Email != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			return LoginResult{}, types.ErrValidation("Invalid email address")
		}
	}
	role := input.Role
	if role == "" {
		role = types.RoleStudent
	}
	switch role {
	case types.RoleStudent, types.RoleTeacher, types.RoleAdmin:
	default:
		return LoginResult{}, types.ErrValidation("Invalid role")
	}

	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return LoginResult{}, types.NewAPIError(types.CodeUsernameExists, "Username already exists", http.StatusBadRequest)
	} else if !errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, err
	}
	if input.Email != "" {
		if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
			return LoginResult{}, types.NewAPIError(types.CodeEmailExists, "Email already exists", http.StatusBadRequest)
		} else if !errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, err
		}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return LoginResult{}, err
	}

	user, err := s.users.Create(ctx, types.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		Role:         role,
		Status:       types.StatusActive,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return LoginResult{}, types.NewAPIError(types.CodeDuplicateEntry, "Username or email already exists", http.StatusBadRequest)
		}
		return LoginResult{}, err
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Username, user.Role)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user.Public(),
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// ResetPassword changes a password after proving knowledge of the old one.
func (s *AuthService) ResetPassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return types.ErrValidation("New password must be at least 6 characters")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.ErrNotFound("User not found")
		}
		return err
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return types.NewAPIError(types.CodeAuthenticationFailed, "Old password is incorrect", http.StatusUnauthorized)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if err := s.notifier.PasswordChanged(ctx, notify.PasswordChangedEvent{
		UserID:    user.ID,
		ChangedAt: s.now(),
	}); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to publish password-changed event")
	}
	return nil
}

// ForgotPassword validates the account and hands reset delivery off to
// the notification collaborator. Delivery itself lives outside this
// service.
func (s *AuthService) ForgotPassword(ctx context.Context, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.ErrNotFound("User not found")
		}
		return err
	}

	if err := s.notifier.PasswordReset(ctx, notify.PasswordResetEvent{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		RequestedAt: s.now(),
	}); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to publish password-reset event")
	}
	return nil
}

// GetUser returns the account behind an identity.
func (s *AuthService) GetUser(ctx context.Context, id string) (types.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile updates the caller-editable slice of the account.
func (s *AuthService) UpdateProfile(ctx context.Context, id, email, avatarURL string) (types.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, types.ErrNotFound("User not found")
		}
		return types.User{}, err
	}

	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return types.User{}, types.ErrValidation("Invalid email address")
		}
		user.Email = email
	}
	if avatarURL != "" {
		user.AvatarURL = avatarURL
	}

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, types.NewAPIError(types.CodeEmailExists, "Email already exists", http.StatusBadRequest)
		}
		return types.User{}, err
	}
	return updated, nil
}

func (s *AuthService) publicUserWithProfile(ctx context.Context, user types.User) types.PublicUser {
	public := user.Public()

	switch user.Role {
	case types.RoleStudent:
		if s.students == nil {
			return public
		}
		student, err := s.students.GetByUserID(ctx, user.ID)
		if err == nil {
			public.StudentID = student.ID
			public.StudentNumber = student.StudentNumber
			public.Name = student.Name
		} else if !errors.Is(err, store.ErrNotFound) {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to load student profile")
		}
	case types.RoleTeacher:
		if s.teachers == nil {
			return public
		}
		teacher, err := s.teachers.GetByUserID(ctx, user.ID)
		if err == nil {
			public.TeacherID = teacher.ID
			public.TeacherNumber = teacher.TeacherNumber
			public.Name = teacher.Name
		} else if !errors.Is(err, store.ErrNotFound) {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to load teacher profile")
		}
	}
	return public
}
