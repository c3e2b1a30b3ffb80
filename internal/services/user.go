package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/aquasync-backend/internal/data/repos"
	types "github.com/yungbote/aquasync-backend/internal/domain"
	"github.com/yungbote/aquasync-backend/internal/pkg/ctxutil"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/platform/apierr"
	"github.com/yungbote/aquasync-backend/internal/platform/logger"
)

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateName(ctx context.Context, firstName, lastName string) (*types.User, error)
	CompleteOnboarding(ctx context.Context) (*types.User, error)
	UpdatePlan(ctx context.Context, plan string) (*types.User, error)
	UploadAvatarImage(ctx context.Context, raw []byte) (*types.User, error)
	List(ctx context.Context, limit, offset int) ([]*types.User, error)
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	avatarService AvatarService
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, avatarService AvatarService) UserService {
	return &userService{
		db:            db,
		log:           log.With("service", "UserService"),
		userRepo:      userRepo,
		avatarService: avatarService,
	}
}

// callerID pulls the authenticated user out of the request context.
func callerID(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("not_authenticated", fmt.Errorf("no authenticated user in context"))
	}
	return rd.UserID, nil
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	return us.loadUser(dbctx.New(ctx), userID)
}

func (us *userService) loadUser(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	found, err := us.userRepo.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, apierr.NotFound("user_not_found", fmt.Errorf("user %s does not exist", userID))
	}
	return found[0], nil
}

func (us *userService) UpdateName(ctx context.Context, firstName, lastName string) (*types.User, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return nil, apierr.BadRequest("invalid_name", fmt.Errorf("first name is required"))
	}

	dbc := dbctx.New(ctx)
	if err := us.userRepo.UpdateName(dbc, userID, firstName, lastName); err != nil {
		return nil, fmt.Errorf("failed to update name: %w", err)
	}
	return us.loadUser(dbc, userID)
}

func (us *userService) CompleteOnboarding(ctx context.Context) (*types.User, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	if err := us.userRepo.SetOnboardingDone(dbc, userID); err != nil {
		return nil, fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return us.loadUser(dbc, userID)
}

func (us *userService) UpdatePlan(ctx context.Context, plan string) (*types.User, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	plan = strings.ToLower(strings.TrimSpace(plan))
	if plan != types.PlanFree && plan != types.PlanPremium {
		return nil, apierr.BadRequest("invalid_plan", fmt.Errorf("plan must be %q or %q", types.PlanFree, types.PlanPremium))
	}
	dbc := dbctx.New(ctx)
	if err := us.userRepo.UpdatePlan(dbc, userID, plan); err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	us.log.Info("plan updated", "user_id", userID, "plan", plan)
	return us.loadUser(dbc, userID)
}

func (us *userService) UploadAvatarImage(ctx context.Context, raw []byte) (*types.User, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, apierr.BadRequest("empty_file", fmt.Errorf("avatar image is empty"))
	}
	if us.avatarService == nil {
		return nil, fmt.Errorf("avatar storage not configured")
	}

	var updated *types.User
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		user, lErr := us.loadUser(dbc, userID)
		if lErr != nil {
			return lErr
		}
		if uErr := us.avatarService.CreateAndUploadUserAvatarFromImage(dbc, user, raw); uErr != nil {
			return apierr.BadRequest("invalid_image", uErr)
		}
		if pErr := us.userRepo.UpdateAvatarFields(dbc, userID, user.AvatarBucketKey, user.AvatarURL); pErr != nil {
			return fmt.Errorf("failed to persist avatar fields: %w", pErr)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (us *userService) List(ctx context.Context, limit, offset int) ([]*types.User, error) {
	return us.userRepo.List(dbctx.New(ctx), limit, offset)
}
