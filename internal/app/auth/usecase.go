package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"geohex/internal/app/ports"
	"geohex/internal/domain/mining"
	"geohex/internal/security"

	"github.com/google/uuid"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
	minPasswordLen = 8
)

var (
	ErrInvalidRequest     = errors.New("invalid auth request")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type RegisterRequest struct {
	Username string
	Password string
}

type LoginRequest struct {
	Username string
	Password string
}

type Session struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Token    string `json:"token"`
	Balance  int64  `json:"balance"`
}

type UseCase struct {
	Users  ports.UserRepository
	Tx     ports.TxManager
	Tokens security.TokenManager
	Now    func() time.Time
}

// Register creates an account with the starting GHX grant and returns a
// signed session.
func (u UseCase) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < minUsernameLen || len(req.Username) > maxUsernameLen || len(req.Password) < minPasswordLen {
		return Session{}, ErrInvalidRequest
	}

	salt, err := randomBytes(16)
	if err != nil {
		return Session{}, err
	}
	user := mining.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordSalt: salt,
		PasswordHash: credentialHash(salt, req.Password),
		BalanceGHX:   mining.StartingBalance,
		OwnedCells:   map[string]struct{}{},
		Version:      1,
		CreatedAt:    u.now().UTC(),
	}

	err = u.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		return u.Users.Create(txCtx, user)
	})
	if errors.Is(err, ports.ErrConflict) {
		return Session{}, ErrUsernameTaken
	}
	if err != nil {
		return Session{}, err
	}

	return u.session(user)
}

// Login verifies the password and returns a fresh session.
func (u UseCase) Login(ctx context.Context, req LoginRequest) (Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return Session{}, ErrInvalidRequest
	}

	user, err := u.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	got := credentialHash(user.PasswordSalt, req.Password)
	if subtle.ConstantTimeCompare(got, user.PasswordHash) != 1 {
		return Session{}, ErrInvalidCredentials
	}
	return u.session(user)
}

func (u UseCase) session(user mining.User) (Session, error) {
	token, err := u.Tokens.Issue(user.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{
		UserID:   user.ID,
		Username: user.Username,
		Token:    token,
		Balance:  user.BalanceGHX,
	}, nil
}

func (u UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

func credentialHash(salt []byte, password string) []byte {
	b := make([]byte, 0, len(salt)+len(password))
	b = append(b, salt...)
	b = append(b, password...)
	sum := sha256.Sum256(b)
	return sum[:]
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
