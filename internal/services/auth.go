package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/aquasync-backend/internal/data/repos"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/ctxutil"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/apierr"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

// JWTClaims is the access token payload. Subject carries the user ID.
type JWTClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// TokenPair is what login, register and refresh hand back to the client.
// ExpiresAt is the access token expiry; the refresh token outlives it.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*types.User, TokenPair, error)
	Login(ctx context.Context, email, password string) (*types.User, TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, rawToken, newPassword string) error
	AccessTTL() time.Duration
}

type authService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	userTokenRepo  repos.UserTokenRepo
	resetTokenRepo repos.PasswordResetTokenRepo
	avatarService  AvatarService
	emailService   EmailService
	cfg            AuthConfig
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	resetTokenRepo repos.PasswordResetTokenRepo,
	avatarService AvatarService,
	emailService EmailService,
	cfg AuthConfig,
) AuthService {
	return &authService{
		db:             db,
		log:            log.With("service", "AuthService"),
		userRepo:       userRepo,
		userTokenRepo:  userTokenRepo,
		resetTokenRepo: resetTokenRepo,
		avatarService:  avatarService,
		emailService:   emailService,
		cfg:            cfg,
	}
}

func (as *authService) AccessTTL() time.Duration {
	return as.cfg.AccessTokenTTL
}

func (as *authService) Register(ctx context.Context, input RegisterInput) (*types.User, TokenPair, error) {
	email := normalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, TokenPair{}, apierr.BadRequest("invalid_email", err)
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, TokenPair{}, apierr.BadRequest("weak_password", err)
	}

	exists, err := as.userRepo.EmailExists(dbctx.New(ctx), email)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, TokenPair{}, apierr.Conflict("email_taken", fmt.Errorf("email %s already registered", email))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &types.User{
		ID:          uuid.New(),
		Email:       email,
		Password:    string(hash),
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Role:        types.RoleUser,
		Plan:        types.PlanFree,
		AvatarColor: nrgbaToHex(colorForKey(email)),
	}

	var pair TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		// Rendering needs a font and a bucket; registration must not.
		if as.avatarService != nil {
			if aErr := as.avatarService.CreateAndUploadUserAvatar(dbc, user); aErr != nil {
				as.log.Warn("avatar render skipped on registration", "user_id", user.ID, "error", aErr)
			}
		}

		if _, cErr := as.userRepo.Create(dbc, []*types.User{user}); cErr != nil {
			if repos.IsUniqueViolation(cErr) {
				// Lost a race with a concurrent signup after the EmailExists check.
				return apierr.Conflict("email_taken", cErr)
			}
			return fmt.Errorf("failed to create user: %w", cErr)
		}

		p, tErr := as.issueTokenPair(dbc, user)
		if tErr != nil {
			return tErr
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, TokenPair{}, err
	}

	as.log.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, pair, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*types.User, TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, TokenPair{}, apierr.BadRequest("missing_credentials", fmt.Errorf("email and password are required"))
	}

	user, err := as.userRepo.GetByEmail(dbctx.New(ctx), email)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, TokenPair{}, apierr.Unauthorized("invalid_credentials", fmt.Errorf("unknown email"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, TokenPair{}, apierr.Unauthorized("invalid_credentials", fmt.Errorf("password mismatch"))
	}

	var pair TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, tErr := as.issueTokenPair(dbctx.Context{Ctx: ctx, Tx: tx}, user)
		if tErr != nil {
			return tErr
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, TokenPair{}, err
	}

	return user, pair, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return TokenPair{}, apierr.Unauthorized("missing_refresh_token", fmt.Errorf("refresh token required"))
	}

	var pair TokenPair
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		existing, ftErr := as.userTokenRepo.GetByRefreshToken(dbc, refreshToken)
		if ftErr != nil {
			return fmt.Errorf("failed to load refresh token: %w", ftErr)
		}
		if existing == nil {
			return apierr.Unauthorized("invalid_refresh_token", fmt.Errorf("refresh token not found"))
		}
		if existing.RefreshExpiresAt.Before(time.Now()) {
			if dErr := as.userTokenRepo.SoftDeleteByIDs(dbc, []uuid.UUID{existing.ID}); dErr != nil {
				as.log.Warn("failed to delete expired token", "token_id", existing.ID, "error", dErr)
			}
			return apierr.Unauthorized("refresh_token_expired", fmt.Errorf("refresh token expired"))
		}

		users, uErr := as.userRepo.GetByIDs(dbc, []uuid.UUID{existing.UserID})
		if uErr != nil {
			return fmt.Errorf("failed to load user for refresh: %w", uErr)
		}
		if len(users) == 0 {
			return apierr.Unauthorized("invalid_refresh_token", fmt.Errorf("user no longer exists"))
		}

		p, tErr := as.issueTokenPair(dbc, users[0])
		if tErr != nil {
			return tErr
		}
		pair = p

		// Rotation: the presented refresh token is single use.
		if dErr := as.userTokenRepo.SoftDeleteByIDs(dbc, []uuid.UUID{existing.ID}); dErr != nil {
			return fmt.Errorf("failed to rotate refresh token: %w", dErr)
		}
		return nil
	})
	if err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return apierr.Unauthorized("not_authenticated", fmt.Errorf("no token in request context"))
	}
	dbc := dbctx.New(ctx)
	token, err := as.userTokenRepo.GetByAccessToken(dbc, rd.TokenString)
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}
	if token == nil {
		return nil
	}
	return as.userTokenRepo.SoftDeleteByIDs(dbc, []uuid.UUID{token.ID})
}

// SetContextFromToken validates the access token and attaches RequestData.
// Besides the signature check it requires the matching token row, so logout
// revokes a still-unexpired JWT.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, apierr.Unauthorized("missing_token", fmt.Errorf("no bearer token"))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.cfg.JWTSecret), nil
	})
	if err != nil {
		return ctx, apierr.Unauthorized("invalid_token", fmt.Errorf("failed to parse token: %w", err))
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, apierr.Unauthorized("invalid_token", fmt.Errorf("invalid or expired token"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized("invalid_token", fmt.Errorf("invalid subject in token: %w", err))
	}

	row, err := as.userTokenRepo.GetByAccessToken(dbctx.New(ctx), tokenString)
	if err != nil {
		return ctx, fmt.Errorf("failed to check token row: %w", err)
	}
	if row == nil || row.RefreshExpiresAt.Before(time.Now()) {
		return ctx, apierr.Unauthorized("token_revoked", fmt.Errorf("token revoked or session expired"))
	}

	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Role:        claims.Role,
	}), nil
}

// RequestPasswordReset never reveals whether the email is registered.
func (as *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return apierr.BadRequest("invalid_email", err)
	}

	user, err := as.userRepo.GetByEmail(dbctx.New(ctx), email)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		as.log.Debug("password reset requested for unknown email")
		return nil
	}

	rawToken, tokenHash, err := newResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if iErr := as.resetTokenRepo.InvalidateByUserIDs(dbc, []uuid.UUID{user.ID}); iErr != nil {
			return fmt.Errorf("failed to invalidate prior reset tokens: %w", iErr)
		}
		return as.resetTokenRepo.Create(dbc, &types.PasswordResetToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			TokenHash: tokenHash,
			ExpiresAt: time.Now().Add(as.cfg.ResetTokenTTL),
		})
	})
	if err != nil {
		return err
	}

	if as.emailService == nil {
		as.log.Warn("password reset email skipped (mailer not configured)", "user_id", user.ID)
		return nil
	}
	if err := as.emailService.SendPasswordReset(ctx, user, rawToken); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	as.log.Info("password reset email sent", "user_id", user.ID)
	return nil
}

func (as *authService) ConfirmPasswordReset(ctx context.Context, rawToken, newPassword string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return apierr.BadRequest("invalid_reset_token", fmt.Errorf("reset token required"))
	}
	if err := validatePassword(newPassword); err != nil {
		return apierr.BadRequest("weak_password", err)
	}

	sum := sha256.Sum256([]byte(rawToken))
	tokenHash := hex.EncodeToString(sum[:])

	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		token, err := as.resetTokenRepo.GetByTokenHash(dbc, tokenHash)
		if err != nil {
			return fmt.Errorf("failed to load reset token: %w", err)
		}
		if token == nil {
			return apierr.BadRequest("invalid_reset_token", fmt.Errorf("reset token not found"))
		}
		if token.UsedAt != nil {
			return apierr.BadRequest("reset_token_used", fmt.Errorf("reset token already used"))
		}
		if token.ExpiresAt.Before(time.Now()) {
			return apierr.BadRequest("reset_token_expired", fmt.Errorf("reset token expired"))
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		if err := as.userRepo.UpdatePassword(dbc, token.UserID, string(hash)); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if err := as.resetTokenRepo.MarkUsed(dbc, token.ID); err != nil {
			return fmt.Errorf("failed to mark reset token used: %w", err)
		}
		// Every live session dies with the old password.
		if err := as.userTokenRepo.SoftDeleteByUserIDs(dbc, []uuid.UUID{token.UserID}); err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
		as.log.Info("password reset confirmed", "user_id", token.UserID)
		return nil
	})
}

func (as *authService) issueTokenPair(dbc dbctx.Context, user *types.User) (TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(as.cfg.AccessTokenTTL)

	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Role: user.Role,
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.cfg.JWTSecret))
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken := uuid.NewString()
	userToken := &types.UserToken{
		ID:               uuid.New(),
		UserID:           user.ID,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(as.cfg.RefreshTokenTTL),
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{userToken}); err != nil {
		return TokenPair{}, fmt.Errorf("failed to create user token: %w", err)
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpiry,
	}, nil
}

func newResetToken() (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	sum := sha256.Sum256([]byte(raw))
	return raw, hex.EncodeToString(sum[:]), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email too long")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("email %q is malformed", email)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password too long")
	}
	return nil
}
