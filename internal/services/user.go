package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/data/repos"
	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/platform/ctxutil"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

type UserService interface {
	GetMe(dbc dbctx.Context) (*types.User, error)
	UpdateName(ctx context.Context, firstName, lastName string) (*types.User, error)
	UpdateBrandName(ctx context.Context, brandName string) (*types.User, error)
	UpdateAvatarColor(ctx context.Context, avatarColor string) (*types.User, error)
	UploadAvatarImage(ctx context.Context, raw []byte) (*types.User, error)
	RegenerateAvatar(ctx context.Context) (*types.User, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	avatarService AvatarService
	notifier      UserNotifier
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, avatarService AvatarService, notifier UserNotifier) UserService {
	serviceLog := baseLog.With("service", "UserService")
	return &userService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		avatarService: avatarService,
		notifier:      notifier,
	}
}

func (us *userService) GetMe(dbc dbctx.Context) (*types.User, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil {
		us.log.Warn("Request data not set in context")
		return nil, fmt.Errorf("request data not set in context")
	}
	if rd.UserID == uuid.Nil {
		us.log.Warn("User id not set in request data")
		return nil, fmt.Errorf("user id not set in request data")
	}

	found, err := us.userRepo.GetByIDs(dbc, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, fmt.Errorf("user does not exist")
	}
	return found[0], nil
}

func (us *userService) UpdateName(ctx context.Context, firstName, lastName string) (*types.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("first_name and last_name required")
	}

	var out *types.User
	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		u, err := us.loadUser(dbc, rd.UserID)
		if err != nil {
			return err
		}

		if err := us.userRepo.UpdateName(dbc, rd.UserID, firstName, lastName); err != nil {
			return err
		}

		// Regenerate the initials avatar with the new initials but the
		// same color.
		u.FirstName = firstName
		u.LastName = lastName
		if err := us.avatarService.CreateAndUploadUserAvatar(ctx, u); err != nil {
			return err
		}
		if err := us.userRepo.UpdateAvatarFields(dbc, rd.UserID, u.AvatarBucketKey, u.AvatarURL, u.AvatarColor); err != nil {
			return err
		}

		out = u
		return nil
	}); err != nil {
		return nil, err
	}

	if us.notifier != nil {
		us.notifier.UserNameChanged(rd.UserID, out)
		us.notifier.UserAvatarChanged(rd.UserID, out)
	}
	return out, nil
}

func (us *userService) UpdateBrandName(ctx context.Context, brandName string) (*types.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	brandName = strings.TrimSpace(brandName)

	var out *types.User
	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		u, err := us.loadUser(dbc, rd.UserID)
		if err != nil {
			return err
		}
		if err := us.userRepo.UpdateBrandName(dbc, rd.UserID, brandName); err != nil {
			return err
		}
		u.BrandName = brandName
		out = u
		return nil
	}); err != nil {
		return nil, err
	}

	if us.notifier != nil {
		us.notifier.UserNameChanged(rd.UserID, out)
	}
	return out, nil
}

func (us *userService) UpdateAvatarColor(ctx context.Context, avatarColor string) (*types.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	avatarColor = strings.ToUpper(strings.TrimSpace(avatarColor))
	if avatarColor == "" {
		return nil, fmt.Errorf("avatar_color required")
	}

	var out *types.User
	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		u, err := us.loadUser(dbc, rd.UserID)
		if err != nil {
			return err
		}

		// The avatar service validates the color against its palette and
		// writes back the color it actually rendered with.
		u.AvatarColor = avatarColor
		if err := us.avatarService.CreateAndUploadUserAvatar(ctx, u); err != nil {
			return err
		}
		if err := us.userRepo.UpdateAvatarFields(dbc, rd.UserID, u.AvatarBucketKey, u.AvatarURL, u.AvatarColor); err != nil {
			return err
		}

		out = u
		return nil
	}); err != nil {
		return nil, err
	}

	if us.notifier != nil {
		us.notifier.UserAvatarChanged(rd.UserID, out)
	}
	return out, nil
}

func (us *userService) UploadAvatarImage(ctx context.Context, raw []byte) (*types.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty upload")
	}

	var out *types.User
	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		u, err := us.loadUser(dbc, rd.UserID)
		if err != nil {
			return err
		}

		if err := us.avatarService.CreateAndUploadUserAvatarFromImage(ctx, u, raw); err != nil {
			return err
		}
		if err := us.userRepo.UpdateAvatarFields(dbc, rd.UserID, u.AvatarBucketKey, u.AvatarURL, u.AvatarColor); err != nil {
			return err
		}

		out = u
		return nil
	}); err != nil {
		return nil, err
	}

	if us.notifier != nil {
		us.notifier.UserAvatarChanged(rd.UserID, out)
	}
	return out, nil
}

// RegenerateAvatar replaces an uploaded photo with a fresh initials disc.
func (us *userService) RegenerateAvatar(ctx context.Context) (*types.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	var out *types.User
	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		u, err := us.loadUser(dbc, rd.UserID)
		if err != nil {
			return err
		}

		if err := us.avatarService.CreateAndUploadUserAvatar(ctx, u); err != nil {
			return err
		}
		if err := us.userRepo.UpdateAvatarFields(dbc, rd.UserID, u.AvatarBucketKey, u.AvatarURL, u.AvatarColor); err != nil {
			return err
		}

		out = u
		return nil
	}); err != nil {
		return nil, err
	}

	if us.notifier != nil {
		us.notifier.UserAvatarChanged(rd.UserID, out)
	}
	return out, nil
}

func (us *userService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("unauthorized")
	}
	if newPassword == "" {
		return fmt.Errorf("new password required")
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("new password must be at least 8 characters")
	}

	return us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		u, err := us.loadUser(dbc, rd.UserID)
		if err != nil {
			return err
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(currentPassword)); err != nil {
			return fmt.Errorf("current password is incorrect")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		return us.userRepo.UpdatePassword(dbc, rd.UserID, string(hashed))
	})
}

func (us *userService) loadUser(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	found, err := us.userRepo.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, fmt.Errorf("user not found")
	}
	return found[0], nil
}
