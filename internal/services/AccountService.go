package services

import (
	"citystate/internal/access"
	"citystate/internal/models"
	"citystate/internal/providers"
	"citystate/internal/storage"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/validate"
)

// SignupInput is the signup form as posted by the page.
type SignupInput struct {
	Email       string `json:"email" validate:"required|email"`
	Password    string `json:"password" validate:"required|minLen:4"`
	Name        string `json:"name" validate:"required"`
	AccountType string `json:"accountType" validate:"required|in:individual,organization"`
	OrgName     string `json:"orgName"`
	OrgIndustry string `json:"orgIndustry"`
}

type LeaderboardEntry struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type AccountServiceInterface interface {
	Signup(in SignupInput) (*models.Session, error)
	Login(email, password string) (*models.Session, error)
	Guest() *models.Session
	Logout()
	Session() *models.Session
	Viewer() access.Viewer
	Users(actor access.Viewer) ([]*models.User, error)
	SetRole(actor access.Viewer, email string, role models.Role) error
	SetBlocked(actor access.Viewer, email string, blocked bool) error
	Delete(actor access.Viewer, email string) error
	AwardPoints(email string, points int) error
	Leaderboard(limit int) []LeaderboardEntry
	ResetWeeklyPoints() int
}

// AccountService owns the user roster and the single local session.
type AccountService struct {
	mu     sync.Mutex
	store  *storage.Store
	audit  AuditServiceInterface
	logger providers.Logger
	clock  func() time.Time
}

func NewAccountService(store *storage.Store, audit AuditServiceInterface, logger providers.Logger) AccountServiceInterface {
	return &AccountService{
		store:  store,
		audit:  audit,
		logger: logger,
		clock:  time.Now,
	}
}

func (s *AccountService) users() []*models.User {
	users := storage.Load(s.store, storage.KeyUsers, []*models.User{})
	out := users[:0]
	for _, u := range users {
		if u != nil {
			out = append(out, u)
		}
	}
	return out
}

func (s *AccountService) saveUsers(users []*models.User) {
	s.store.Save(storage.KeyUsers, users)
}

func (s *AccountService) startSession(sess *models.Session) *models.Session {
	s.store.Save(storage.KeySession, sess)
	return sess
}

func (s *AccountService) Signup(in SignupInput) (*models.Session, error) {
	v := validate.Struct(&in)
	if !v.Validate() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, v.Errors.One())
	}
	accountType := models.AccountType(in.AccountType)
	if accountType == models.AccountOrganization && strings.TrimSpace(in.OrgName) == "" {
		return nil, fmt.Errorf("%w: organization name is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.users()
	if models.FindUser(users, in.Email) >= 0 {
		return nil, fmt.Errorf("signup %s: %w", models.NormalizeEmail(in.Email), ErrDuplicateEmail)
	}

	now := s.clock()
	u := models.NewUser(in.Email, in.Password, in.Name, accountType, now)
	if accountType == models.AccountOrganization {
		u.Role = models.RoleOrgAdmin
		u.OrgContext = &models.OrgContext{
			OrgID:       uuid.NewString(),
			OrgName:     strings.TrimSpace(in.OrgName),
			OrgIndustry: strings.TrimSpace(in.OrgIndustry),
			Role:        string(models.RoleOrgAdmin),
		}
	}
	users = append(users, u)
	s.saveUsers(users)
	s.logger.Infof(providers.TypeAccess, "Signed up %s as %s", u.Email, u.AccountType)
	return s.startSession(models.SessionFor(u, now.UnixMilli())), nil
}

func (s *AccountService) Login(email, password string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.users()
	i := models.FindUser(users, email)
	if i < 0 || users[i].Password != password {
		s.logger.Infof(providers.TypeAccess, "Failed login for %s", models.NormalizeEmail(email))
		return nil, ErrInvalidCredentials
	}
	u := users[i]
	if u.Blocked {
		return nil, fmt.Errorf("login %s: %w", u.Email, ErrBlocked)
	}
	return s.startSession(models.SessionFor(u, s.clock().UnixMilli())), nil
}

func (s *AccountService) Guest() *models.Session {
	return s.startSession(models.GuestSession(s.clock().UnixMilli()))
}

func (s *AccountService) Logout() {
	s.store.Delete(storage.KeySession)
}

func (s *AccountService) Session() *models.Session {
	return storage.Load(s.store, storage.KeySession, (*models.Session)(nil))
}

// Viewer resolves the session against the current roster, so role edits and
// blocks take effect without a new login.
func (s *AccountService) Viewer() access.Viewer {
	sess := s.Session()
	if sess == nil || sess.Email == "" {
		return access.FromSession(sess)
	}
	users := s.users()
	i := models.FindUser(users, sess.Email)
	if i < 0 || users[i].Blocked {
		return access.Guest()
	}
	u := users[i]
	return access.Viewer{Email: u.Email, Role: u.Role, AccountType: u.AccountType, OrgContext: u.OrgContext}
}

func (s *AccountService) Users(actor access.Viewer) ([]*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.users(), nil
}

// mutate runs fn on the user with the given email under the roster lock
// and persists the roster if fn succeeds.
func (s *AccountService) mutate(actor access.Viewer, email string, fn func(users []*models.User, i int) []*models.User) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.users()
	i := models.FindUser(users, email)
	if i < 0 {
		return fmt.Errorf("user %s: %w", models.NormalizeEmail(email), ErrNotFound)
	}
	s.saveUsers(fn(users, i))
	return nil
}

func (s *AccountService) SetRole(actor access.Viewer, email string, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	err := s.mutate(actor, email, func(users []*models.User, i int) []*models.User {
		users[i].Role = role
		return users
	})
	if err != nil {
		return err
	}
	s.audit.Append(actor.Email, "role_set", map[string]any{"email": models.NormalizeEmail(email), "role": string(role)})
	return nil
}

func (s *AccountService) SetBlocked(actor access.Viewer, email string, blocked bool) error {
	if models.NormalizeEmail(email) == models.NormalizeEmail(actor.Email) {
		return fmt.Errorf("%w: admins cannot block themselves", ErrForbidden)
	}
	err := s.mutate(actor, email, func(users []*models.User, i int) []*models.User {
		users[i].Blocked = blocked
		return users
	})
	if err != nil {
		return err
	}
	action := "user_unblock"
	if blocked {
		action = "user_block"
	}
	s.audit.Append(actor.Email, action, map[string]any{"email": models.NormalizeEmail(email)})
	return nil
}

func (s *AccountService) Delete(actor access.Viewer, email string) error {
	if models.NormalizeEmail(email) == models.NormalizeEmail(actor.Email) {
		return fmt.Errorf("%w: admins cannot delete themselves", ErrForbidden)
	}
	err := s.mutate(actor, email, func(users []*models.User, i int) []*models.User {
		return append(users[:i], users[i+1:]...)
	})
	if err != nil {
		return err
	}
	s.audit.Append(actor.Email, "user_delete", map[string]any{"email": models.NormalizeEmail(email)})
	return nil
}

func (s *AccountService) AwardPoints(email string, points int) error {
	if points <= 0 {
		return fmt.Errorf("%w: points must be positive", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.users()
	i := models.FindUser(users, email)
	if i < 0 {
		return fmt.Errorf("user %s: %w", models.NormalizeEmail(email), ErrNotFound)
	}
	users[i].WeeklyPoints += points
	s.saveUsers(users)
	return nil
}

// Leaderboard ranks unblocked users by weekly points, ties broken by name.
func (s *AccountService) Leaderboard(limit int) []LeaderboardEntry {
	users := s.users()
	board := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		if u.Blocked || u.AccountType == models.AccountGuest {
			continue
		}
		board = append(board, LeaderboardEntry{Name: u.Name, Points: u.WeeklyPoints})
	}
	sort.SliceStable(board, func(a, b int) bool {
		if board[a].Points != board[b].Points {
			return board[a].Points > board[b].Points
		}
		return board[a].Name < board[b].Name
	})
	if limit > 0 && len(board) > limit {
		board = board[:limit]
	}
	return board
}

// ResetWeeklyPoints zeroes every user's weekly points and returns how many
// users had points.
func (s *AccountService) ResetWeeklyPoints() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.users()
	reset := 0
	for _, u := range users {
		if u.WeeklyPoints != 0 {
			u.WeeklyPoints = 0
			reset++
		}
	}
	if reset > 0 {
		s.saveUsers(users)
	}
	return reset
}
