package service

import (
	"acumenus/startpage-api/internal/apperr"
	"acumenus/startpage-api/internal/model"
	"acumenus/startpage-api/pkg/validators"
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	// ProtectedUsername can never be deleted
	ProtectedUsername = "admin"

	// BootstrapUserID is the subject of tokens issued for the bootstrap login
	BootstrapUserID  = 1
	bootstrapEmail   = "admin@example.com"
	msgUserNotFound  = "User not found"
	msgBadLogin      = "Invalid username or password"
	msgUserConflict  = "Username or email already exists"
	msgUserRequired  = "Username, email, and password are required"
	msgLoginRequired = "Username and password are required"

	msgPasswordTooLong = "Password is too long"
)

type PasswordHasher interface {
	GenerateFromPassword(p string) (string, error)
	VerifyPasswd(p, e string) (bool, error)
	Burn(p string)
}

// Bootstrap is a fixed credential pair that always logs in as an admin
// without touching the database. An empty password disables it.
type Bootstrap struct {
	Username string
	Password string
}

type NewUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

// UserPatch is a partial update. Nil and empty string fields are left as they are.
type UserPatch struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"isAdmin"`
}

type LoginResult struct {
	User  model.PublicUser `json:"user"`
	Token string           `json:"token"`
}

type UserService struct {
	db        *gorm.DB
	hasher    PasswordHasher
	tokens    *TokenService
	bootstrap Bootstrap
	now       func() time.Time
}

func NewUserService(db *gorm.DB, h PasswordHasher, t *TokenService, b Bootstrap) *UserService {
	return &UserService{
		db:        db,
		hasher:    h,
		tokens:    t,
		bootstrap: b,
		now:       time.Now,
	}
}

func (s *UserService) List(ctx context.Context) ([]model.PublicUser, error) {
	var users []model.User

	err := s.db.WithContext(ctx).Order("id").Find(&users).Error
	if err != nil {
		return nil, apperr.Server(err)
	}

	out := make([]model.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}

	return out, nil
}

func (s *UserService) Get(ctx context.Context, rawID string) (model.PublicUser, error) {
	u, err := s.find(ctx, rawID)
	if err != nil {
		return model.PublicUser{}, err
	}

	return u.Public(), nil
}

func (s *UserService) Create(ctx context.Context, in NewUser) (model.PublicUser, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return model.PublicUser{}, apperr.Validation(msgUserRequired)
	}

	if err := validators.EmailValidator(in.Email); err != nil {
		return model.PublicUser{}, apperr.Validation("Invalid email address")
	}

	if err := validators.PasswordValidator(in.Password); err != nil {
		return model.PublicUser{}, apperr.Validation(msgPasswordTooLong)
	}

	taken, err := s.taken(ctx, 0, in.Username, in.Email)
	if err != nil {
		return model.PublicUser{}, err
	}

	if taken {
		return model.PublicUser{}, apperr.Conflict(msgUserConflict)
	}

	hash, err := s.hasher.GenerateFromPassword(in.Password)
	if err != nil {
		return model.PublicUser{}, apperr.Server(err)
	}

	u := model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: &hash,
		IsAdmin:      in.IsAdmin,
	}

	err = s.db.WithContext(ctx).Create(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.PublicUser{}, apperr.Conflict(msgUserConflict)
		}

		return model.PublicUser{}, apperr.Server(err)
	}

	return u.Public(), nil
}

func (s *UserService) Update(ctx context.Context, rawID string, p UserPatch) (model.PublicUser, error) {
	u, err := s.find(ctx, rawID)
	if err != nil {
		return model.PublicUser{}, err
	}

	username := trimmed(p.Username)
	email := trimmed(p.Email)

	if email != "" {
		if err := validators.EmailValidator(email); err != nil {
			return model.PublicUser{}, apperr.Validation("Invalid email address")
		}
	}

	if p.Password != nil && *p.Password != "" {
		if err := validators.PasswordValidator(*p.Password); err != nil {
			return model.PublicUser{}, apperr.Validation(msgPasswordTooLong)
		}
	}

	if username != "" || email != "" {
		taken, err := s.taken(ctx, u.ID, username, email)
		if err != nil {
			return model.PublicUser{}, err
		}

		if taken {
			return model.PublicUser{}, apperr.Conflict(msgUserConflict)
		}
	}

	changes := map[string]any{}
	if username != "" {
		changes["username"] = username
	}

	if email != "" {
		changes["email"] = email
	}

	if p.Password != nil && *p.Password != "" {
		hash, err := s.hasher.GenerateFromPassword(*p.Password)
		if err != nil {
			return model.PublicUser{}, apperr.Server(err)
		}

		changes["password_hash"] = hash
	}

	if p.IsAdmin != nil {
		changes["is_admin"] = *p.IsAdmin
	}

	if len(changes) == 0 {
		return u.Public(), nil
	}

	err = s.db.WithContext(ctx).Model(u).Updates(changes).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.PublicUser{}, apperr.Conflict(msgUserConflict)
		}

		return model.PublicUser{}, apperr.Server(err)
	}

	return s.Get(ctx, rawID)
}

func (s *UserService) Delete(ctx context.Context, rawID string) error {
	u, err := s.find(ctx, rawID)
	if err != nil {
		return err
	}

	if u.Username == ProtectedUsername {
		return apperr.Forbidden("Cannot delete the admin user")
	}

	err = s.db.WithContext(ctx).Delete(&model.User{}, u.ID).Error
	if err != nil {
		return apperr.Server(err)
	}

	return nil
}

// Login checks a username and password pair and issues a session token.
// Unknown users and wrong passwords fail with the same error.
func (s *UserService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	if username == "" || password == "" {
		return LoginResult{}, apperr.Validation(msgLoginRequired)
	}

	if s.isBootstrap(username, password) {
		return s.issue(model.PublicUser{
			ID:       BootstrapUserID,
			Username: s.bootstrap.Username,
			Email:    bootstrapEmail,
			IsAdmin:  true,
		})
	}

	var u model.User

	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.hasher.Burn(password)
			return LoginResult{}, apperr.New(apperr.KindInvalidCredentials, msgBadLogin)
		}

		return LoginResult{}, apperr.Server(err)
	}

	if u.PasswordHash == nil || *u.PasswordHash == "" {
		return LoginResult{}, apperr.New(apperr.KindServer, "Server configuration error")
	}

	ok, err := s.hasher.VerifyPasswd(password, *u.PasswordHash)
	if err != nil {
		return LoginResult{}, apperr.Wrap(apperr.KindServer, "Server configuration error", err)
	}

	if !ok {
		return LoginResult{}, apperr.New(apperr.KindInvalidCredentials, msgBadLogin)
	}

	now := s.now()
	err = s.db.WithContext(ctx).Model(&u).UpdateColumn("last_login", now).Error
	if err != nil {
		return LoginResult{}, apperr.Server(err)
	}
	u.LastLogin = &now

	return s.issue(u.Public())
}

// Me returns the stored record of the token's subject
func (s *UserService) Me(ctx context.Context, id Identity) (model.PublicUser, error) {
	var u model.User

	err := s.db.WithContext(ctx).First(&u, id.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.PublicUser{}, apperr.NotFound(msgUserNotFound)
		}

		return model.PublicUser{}, apperr.Server(err)
	}

	return u.Public(), nil
}

func (s *UserService) issue(u model.PublicUser) (LoginResult, error) {
	token, err := s.tokens.Issue(Identity{
		UserID:   u.ID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	})
	if err != nil {
		return LoginResult{}, apperr.Server(err)
	}

	return LoginResult{User: u, Token: token}, nil
}

func (s *UserService) isBootstrap(username, password string) bool {
	if s.bootstrap.Username == "" || s.bootstrap.Password == "" {
		return false
	}

	u := subtle.ConstantTimeCompare([]byte(username), []byte(s.bootstrap.Username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(s.bootstrap.Password))

	return u&p == 1
}

func (s *UserService) find(ctx context.Context, rawID string) (*model.User, error) {
	id, err := parseID(rawID, msgUserNotFound)
	if err != nil {
		return nil, err
	}

	var u model.User

	err = s.db.WithContext(ctx).First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgUserNotFound)
		}

		return nil, apperr.Server(err)
	}

	return &u, nil
}

// taken reports whether another user already has username or email.
// Empty values are not checked.
func (s *UserService) taken(ctx context.Context, exclude uint, username, email string) (bool, error) {
	q := s.db.WithContext(ctx).Model(&model.User{})

	switch {
	case username != "" && email != "":
		q = q.Where("(username = ? OR email = ?)", username, email)
	case username != "":
		q = q.Where("username = ?", username)
	default:
		q = q.Where("email = ?", email)
	}

	if exclude != 0 {
		q = q.Where("id <> ?", exclude)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, apperr.Server(err)
	}

	return n > 0, nil
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}

	return strings.TrimSpace(*p)
}
