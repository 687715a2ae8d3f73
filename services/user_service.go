package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/arman-dev/playoff-system/models"
	"github.com/arman-dev/playoff-system/repositories"
	"github.com/arman-dev/playoff-system/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrUserNicknameTaken = errors.New("nickname is already taken")

type UpdateUserInput struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Nickname  *string `json:"nickname,omitempty"`
	Password  *string `json:"password,omitempty"`
}

type UserService interface {
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	UpdateUser(ctx context.Context, currentUserID, id int, input UpdateUserInput) (*models.User, error)
	UploadAvatar(ctx context.Context, currentUserID, id int, contentType string, body io.Reader) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{userRepo: userRepo, uploader: uploader}
}

func (s *userService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	populateUserDetails(user, s.uploader)
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, currentUserID, id int, input UpdateUserInput) (*models.User, error) {
	if err := s.authorizeSelfOrAdmin(ctx, currentUserID, id); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Nickname != nil {
		user.Nickname = input.Nickname
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, ErrPasswordTooShort
		}
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, fmt.Errorf("failed to hash password: %w", hashErr)
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserNicknameConflict) {
			return nil, ErrUserNicknameTaken
		}
		return nil, err
	}
	populateUserDetails(user, s.uploader)
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, currentUserID, id int, contentType string, body io.Reader) (*models.User, error) {
	if err := s.authorizeSelfOrAdmin(ctx, currentUserID, id); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("users/%d/avatar-%s%s", id, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	oldKey := user.LogoKey
	if err := s.userRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != "" {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	user.LogoKey = &key
	populateUserDetails(user, s.uploader)
	return user, nil
}

func (s *userService) authorizeSelfOrAdmin(ctx context.Context, currentUserID, targetID int) error {
	if currentUserID == targetID {
		return nil
	}
	current, err := s.userRepo.GetByID(ctx, currentUserID)
	if err != nil {
		return err
	}
	if current.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}
