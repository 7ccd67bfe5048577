package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hotellisting/hotellisting-api/application/port/outbound"
	"github.com/hotellisting/hotellisting-api/domain/entity"
	"github.com/hotellisting/hotellisting-api/domain/valueobject"
)

// IdentityStore keeps users, roles and claims in process memory. It is used
// for local runs and tests; state is lost on restart.
type IdentityStore struct {
	mu sync.RWMutex

	users     map[string]*entity.User
	byEmail   map[string]string
	roles     map[string]string
	userRoles map[string][]string
	claims    map[string][]entity.Claim

	passwords outbound.PasswordService
	policy    valueobject.PasswordPolicy
}

var _ outbound.IdentityStore = (*IdentityStore)(nil)

// NewIdentityStore seeds the given roles, or Administrator and User when none
// are given.
func NewIdentityStore(passwords outbound.PasswordService, roles ...string) *IdentityStore {
	if len(roles) == 0 {
		roles = []string{entity.RoleAdministrator.String(), entity.RoleUser.String()}
	}

	s := &IdentityStore{
		users:     make(map[string]*entity.User),
		byEmail:   make(map[string]string),
		roles:     make(map[string]string, len(roles)),
		userRoles: make(map[string][]string),
		claims:    make(map[string][]entity.Claim),
		passwords: passwords,
		policy:    valueobject.DefaultPasswordPolicy(),
	}
	for _, r := range roles {
		s.roles[strings.ToUpper(r)] = r
	}
	return s
}

func (s *IdentityStore) FindByID(ctx context.Context, id string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, outbound.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *IdentityStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[entity.NormalizeEmail(email)]
	if !ok {
		return nil, outbound.ErrUserNotFound
	}
	copied := *s.users[id]
	return &copied, nil
}

func (s *IdentityStore) Create(ctx context.Context, user *entity.User, password string) ([]valueobject.IdentityError, error) {
	if errs := valueobject.CheckNewUser(user.Email, password, s.policy); len(errs) > 0 {
		return errs, nil
	}

	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := user.NormalizedEmail()
	if _, taken := s.byEmail[normalized]; taken {
		return []valueobject.IdentityError{valueobject.DuplicateUserName(user.UserName)}, nil
	}
	if _, taken := s.users[user.ID]; taken {
		return nil, outbound.ErrUserAlreadyExists
	}

	user.PasswordHash = hash
	stored := *user
	s.users[user.ID] = &stored
	s.byEmail[normalized] = user.ID
	return nil, nil
}

func (s *IdentityStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return outbound.ErrUserNotFound
	}
	delete(s.byEmail, user.NormalizedEmail())
	delete(s.users, id)
	delete(s.userRoles, id)
	delete(s.claims, id)
	return nil
}

func (s *IdentityStore) CheckPassword(ctx context.Context, user *entity.User, password string) (bool, error) {
	s.mu.RLock()
	stored, ok := s.users[user.ID]
	var hash string
	if ok {
		hash = stored.PasswordHash
	}
	s.mu.RUnlock()

	if !ok {
		return false, outbound.ErrUserNotFound
	}
	if password == "" {
		return false, nil
	}
	return s.passwords.VerifyPassword(password, hash)
}

func (s *IdentityStore) UpdateSecurityStamp(ctx context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return outbound.ErrUserNotFound
	}
	stored.SecurityStamp = entity.NewSecurityStamp()
	stored.UpdatedAt = time.Now()
	user.SecurityStamp = stored.SecurityStamp
	return nil
}

func (s *IdentityStore) AddToRole(ctx context.Context, user *entity.User, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, ok := s.roles[strings.ToUpper(role)]
	if !ok {
		return outbound.ErrRoleNotFound
	}
	if _, ok := s.users[user.ID]; !ok {
		return outbound.ErrUserNotFound
	}
	for _, r := range s.userRoles[user.ID] {
		if r == name {
			return nil
		}
	}
	s.userRoles[user.ID] = append(s.userRoles[user.ID], name)
	return nil
}

func (s *IdentityStore) GetRoles(ctx context.Context, user *entity.User) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roles := s.userRoles[user.ID]
	out := make([]string, len(roles))
	copy(out, roles)
	return out, nil
}

// AddClaim attaches an extension claim that will be carried by the user's
// next access token.
func (s *IdentityStore) AddClaim(ctx context.Context, user *entity.User, claim entity.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return outbound.ErrUserNotFound
	}
	s.claims[user.ID] = append(s.claims[user.ID], claim)
	return nil
}

func (s *IdentityStore) GetClaims(ctx context.Context, user *entity.User) ([]entity.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	claims := s.claims[user.ID]
	out := make([]entity.Claim, len(claims))
	copy(out, claims)
	return out, nil
}
