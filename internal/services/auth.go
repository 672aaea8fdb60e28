package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/data/dberr"
	"github.com/vintry/contentops-backend/internal/data/repos"
	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/platform/apierr"
	"github.com/vintry/contentops-backend/internal/platform/ctxutil"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

// JWTClaims is the payload signed into access tokens. Subject carries the
// user ID.
type JWTClaims struct {
	jwt.RegisteredClaims
}

// Expired refresh tokens are still honored for a short grace window so a
// client that refreshes right at the boundary is not logged out.
const refreshExpiryGrace = 5 * time.Minute

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	avatarService AvatarService
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	avatarService AvatarService,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		avatarService: avatarService,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	normalizeUserFields(user)
	if err := as.validateRegistration(ctx, user); err != nil {
		return err
	}
	if err := hashPassword(user); err != nil {
		return err
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		user.ID = uuid.New()
		if err := as.avatarService.CreateAndUploadUserAvatar(ctx, user); err != nil {
			return fmt.Errorf("create and upload user avatar: %w", err)
		}
		if _, err := as.userRepo.Create(dbc, []*types.User{user}); err != nil {
			// The EmailExists pre-check races with concurrent signups;
			// the unique index on email is the real guard.
			if errors.Is(dberr.Map("create user", err), dberr.ErrConflict) {
				return errEmailInUse()
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", "", fmt.Errorf("email is required to login")
	}
	if password == "" {
		return "", "", fmt.Errorf("password is required to login")
	}

	users, err := as.userRepo.GetByEmails(dbctx.New(ctx), []string{email})
	if err != nil {
		return "", "", fmt.Errorf("retrieve user by email: %w", err)
	}
	if len(users) == 0 {
		return "", "", fmt.Errorf("invalid email or password")
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", fmt.Errorf("invalid email or password")
	}

	var accessToken string
	var refreshToken string
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)

		// Single active session per user: a fresh login replaces any
		// tokens issued earlier, including ones that already expired.
		if err := as.userTokenRepo.FullDeleteByUserIDs(dbc, []uuid.UUID{user.ID}); err != nil {
			return fmt.Errorf("clear previous user tokens: %w", err)
		}

		tok, err := as.generateAccessToken(user)
		if err != nil {
			return fmt.Errorf("generate access token: %w", err)
		}
		accessToken = tok
		refreshToken = uuid.New().String()

		userToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{&userToken}); err != nil {
			as.log.Warn("create user token failed", "error", err)
			return fmt.Errorf("create user token: %w", err)
		}
		return nil
	}); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return "", "", fmt.Errorf("no request data found in context")
	}
	if rd.RefreshToken == "" {
		return "", "", fmt.Errorf("refresh token not found in request data")
	}

	var accessToken string
	var newRefreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)

		foundTokens, err := as.userTokenRepo.GetByRefreshTokens(dbc, []string{rd.RefreshToken})
		if err != nil {
			return fmt.Errorf("fetch refresh token: %w", err)
		}
		if len(foundTokens) == 0 {
			return fmt.Errorf("unknown refresh token")
		}
		existing := foundTokens[0]

		if existing.ExpiresAt.Before(time.Now().Add(-refreshExpiryGrace)) {
			if err := as.userTokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
				return fmt.Errorf("delete expired refresh token: %w", err)
			}
			return fmt.Errorf("refresh token expired")
		}

		users, err := as.userRepo.GetByIDs(dbc, []uuid.UUID{existing.UserID})
		if err != nil {
			return fmt.Errorf("load user for refresh: %w", err)
		}
		if len(users) == 0 {
			return fmt.Errorf("no user found for the given refresh token")
		}
		user := users[0]

		tok, err := as.generateAccessToken(user)
		if err != nil {
			return fmt.Errorf("generate access token: %w", err)
		}
		accessToken = tok
		newRefreshToken = uuid.New().String()

		newToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: newRefreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{&newToken}); err != nil {
			return fmt.Errorf("create rotated user token: %w", err)
		}
		if err := as.userTokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
			return fmt.Errorf("remove old refresh token: %w", err)
		}
		return nil
	})
	if err != nil {
		as.log.Warn("refresh transaction failed", "error", err)
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return fmt.Errorf("no request data found in context")
	}
	if rd.TokenString == "" {
		return fmt.Errorf("access token not found in request data")
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		foundTokens, err := as.userTokenRepo.GetByAccessTokens(dbc, []string{rd.TokenString})
		if err != nil {
			return fmt.Errorf("find user token: %w", err)
		}
		if len(foundTokens) == 0 {
			return nil
		}
		if err := as.userTokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{foundTokens[0].ID}); err != nil {
			return fmt.Errorf("delete user token: %w", err)
		}
		return nil
	})
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken validates the access token, confirms the session still
// exists in the token table, and attaches the caller's request data to ctx.
// A token row deleted by logout revokes the access token immediately even if
// its JWT expiry has not passed.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}

	foundTokens, err := as.userTokenRepo.GetByAccessTokens(dbctx.New(ctx), []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("fetch user token by access token: %w", err)
	}
	if len(foundTokens) == 0 {
		return ctx, fmt.Errorf("session not found")
	}

	rd := &ctxutil.RequestData{
		TokenString:  tokenString,
		RefreshToken: foundTokens[0].RefreshToken,
		UserID:       userID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) validateRegistration(ctx context.Context, user *types.User) error {
	if user == nil {
		return fmt.Errorf("no user given, cannot proceed with registration")
	}
	if user.Email == "" {
		return fmt.Errorf("an email is required to register")
	}
	if user.Password == "" {
		return fmt.Errorf("a password is required to register")
	}
	if user.FirstName == "" {
		return fmt.Errorf("a first name is required to register")
	}
	if user.LastName == "" {
		return fmt.Errorf("a last name is required to register")
	}
	emailExists, err := as.userRepo.EmailExists(dbctx.New(ctx), user.Email)
	if err != nil {
		return fmt.Errorf("check user email: %w", err)
	}
	if emailExists {
		return errEmailInUse()
	}
	return nil
}

func errEmailInUse() error {
	return apierr.New(http.StatusConflict, "email_taken", errors.New("email is already in use"))
}

// normalizeUserFields lowercases the email and trims whitespace. Names keep
// their casing.
func normalizeUserFields(user *types.User) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.FirstName = strings.TrimSpace(user.FirstName)
	user.LastName = strings.TrimSpace(user.LastName)
	user.BrandName = strings.TrimSpace(user.BrandName)
}

func hashPassword(user *types.User) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)
	return nil
}
