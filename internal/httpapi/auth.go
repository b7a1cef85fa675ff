package httpapi

import (
	"context"
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"studioluzi/backoffice/internal/domain"
	"studioluzi/backoffice/internal/store"
)

// AuthManager issues and validates HS256 bearer tokens. Accounts live in the
// repository; a freshly registered account stays pending until the owner
// approves it, and pending accounts cannot log in.
type AuthManager struct {
	secret   []byte
	tokenTTL time.Duration
	repo     store.Repository
}

func NewAuthManager(secret string, tokenTTL time.Duration, repo store.Repository) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	return &AuthManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		repo:     repo,
	}
}

func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	account, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		// same message for unknown account and bad password
		return domain.LoginResponse{}, errors.New("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)) != nil {
		return domain.LoginResponse{}, errors.New("invalid credentials")
	}
	if !account.Approved {
		return domain.LoginResponse{}, errors.New("account pending approval")
	}

	expiresAt := time.Now().UTC().Add(a.tokenTTL)
	token, err := a.sign(email, expiresAt)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	return domain.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

func (a *AuthManager) Register(ctx context.Context, req domain.RegisterRequest) (domain.UserView, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.UserView{}, errors.New("valid email required")
	}
	if len(req.Password) < 6 {
		return domain.UserView{}, errors.New("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserView{}, err
	}
	account := domain.UserAccount{
		Email:     email,
		Password:  string(hash),
		Approved:  false,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.repo.CreateUser(ctx, account); err != nil {
		return domain.UserView{}, err
	}
	return domain.UserView{Email: account.Email, Approved: false, CreatedAt: account.CreatedAt}, nil
}

func (a *AuthManager) Approve(ctx context.Context, email string) error {
	return a.repo.ApproveUser(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (a *AuthManager) ListUsers(ctx context.Context) ([]domain.UserView, error) {
	accounts, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.UserView, 0, len(accounts))
	for _, acc := range accounts {
		views = append(views, domain.UserView{Email: acc.Email, Approved: acc.Approved, CreatedAt: acc.CreatedAt})
	}
	return views, nil
}

func (a *AuthManager) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &jwtlib.RegisteredClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.New("invalid or expired token")
	}
	if claims.Subject == "" {
		return domain.Actor{}, errors.New("invalid token subject")
	}
	return domain.Actor{Email: claims.Subject}, nil
}

func (a *AuthManager) sign(email string, expiresAt time.Time) (string, error) {
	claims := jwtlib.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
		ExpiresAt: jwtlib.NewNumericDate(expiresAt),
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}
