package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const DefaultTokenTTL = 7 * 24 * time.Hour

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Provider authenticates users against a UserStore and issues bearer tokens.
type Provider struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewProvider(users UserStore, secret string, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Provider{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// NewUser is the input for Register.
type NewUser struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Type      Type
}

// Register validates u, hashes its password and stores it.
func (p *Provider) Register(ctx context.Context, u NewUser) (Identity, error) {
	email := normalizeEmail(u.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return Identity{}, fmt.Errorf("invalid email %q", u.Email)
	}
	if len(u.Password) < 8 {
		return Identity{}, errors.New("password must be at least 8 characters")
	}
	if u.Type == "" {
		u.Type = TypeUser
	}
	if !u.Type.Valid() {
		return Identity{}, fmt.Errorf("invalid user type %q", u.Type)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}

	ident := Identity{
		UserID:    uuid.NewString(),
		FirstName: strings.TrimSpace(u.FirstName),
		LastName:  strings.TrimSpace(u.LastName),
		Email:     email,
		Type:      u.Type,
	}
	err = p.users.CreateUser(ctx, Credentials{
		Identity:     ident,
		PasswordHash: string(hash),
		CreatedAt:    p.now().UTC(),
	})
	if err != nil {
		return Identity{}, err
	}
	return ident, nil
}

// Authenticate checks email and password. Unknown users and wrong passwords
// both return ErrInvalidCredentials.
func (p *Provider) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	c, err := p.users.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return Identity{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return c.Identity, nil
}

// IssueToken signs an HS256 token for ident.
func (p *Provider) IssueToken(ident Identity) (string, error) {
	now := p.now()
	claims := Claims{
		UserID: ident.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// Verify parses token and loads the identity it names. Expired tokens
// return an error wrapping jwt.ErrTokenExpired.
func (p *Provider) Verify(ctx context.Context, token string) (Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return Identity{}, ErrInvalidToken
	}
	c, err := p.users.UserByID(ctx, claims.UserID)
	if err != nil {
		return Identity{}, err
	}
	return c.Identity, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
