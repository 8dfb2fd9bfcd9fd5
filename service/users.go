package service

import (
	"context"

	"github.com/Luismorlan/conduit/model"
	"github.com/Luismorlan/conduit/store"
	Logger "github.com/Luismorlan/conduit/utils/log"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// UpdateUserInput fields left nil are not changed. A new Password must come
// with a matching ConfirmPassword.
type UpdateUserInput struct {
	Email           *string
	Username        *string
	Password        *string
	ConfirmPassword *string
	Bio             *string
	Image           *string
}

func (s *Service) userView(user *model.User) (*model.UserView, error) {
	view := &model.UserView{}
	if err := copier.Copy(view, user); err != nil {
		return nil, errors.Wrap(err, "copy user view")
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, errors.Wrap(err, "issue token")
	}
	view.Token = token
	return view, nil
}

// takenBy returns the id of the user holding key, or "" when nobody does.
func (s *Service) takenBy(ctx context.Context, key store.UserKey) (string, error) {
	user, err := s.store.FindUser(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "find user")
	}
	return user.Id, nil
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.UserView, error) {
	if id, err := s.takenBy(ctx, store.ByEmail(input.Email)); err != nil {
		return nil, err
	} else if id != "" {
		return nil, conflict("Email already exists")
	}
	if id, err := s.takenBy(ctx, store.ByUsername(input.Username)); err != nil {
		return nil, err
	} else if id != "" {
		return nil, conflict("Username already exists")
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Id:       s.newId(),
		Username: input.Username,
		Email:    input.Email,
		Password: hashed,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflict("Username or email already exists")
		}
		return nil, errors.Wrap(err, "create user")
	}

	Logger.Log.WithFields(logrus.Fields{"user": user.Id, "username": user.Username}).Info("user registered")
	return s.userView(user)
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*model.UserView, error) {
	user, err := s.store.FindUser(ctx, store.ByEmail(input.Email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	if err := s.hasher.Compare(user.Password, input.Password); err != nil {
		return nil, unauthorized("Invalid email or password")
	}
	return s.userView(user)
}

// CurrentUser returns the viewer with a freshly issued token.
func (s *Service) CurrentUser(ctx context.Context, viewer *model.User) (*model.UserView, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	return s.userView(viewer)
}

func (s *Service) UpdateUser(ctx context.Context, viewer *model.User, input UpdateUserInput) (*model.UserView, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	user, err := s.store.FindUser(ctx, store.ByUserId(viewer.Id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, unauthorized("Unauthorized")
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}

	if input.Email != nil && *input.Email != user.Email {
		if id, err := s.takenBy(ctx, store.ByEmail(*input.Email)); err != nil {
			return nil, err
		} else if id != "" && id != user.Id {
			return nil, conflict("Email already exists")
		}
		user.Email = *input.Email
	}
	if input.Username != nil && *input.Username != user.Username {
		if id, err := s.takenBy(ctx, store.ByUsername(*input.Username)); err != nil {
			return nil, err
		} else if id != "" && id != user.Id {
			return nil, conflict("Username already exists")
		}
		user.Username = *input.Username
	}
	if input.Password != nil {
		if input.ConfirmPassword == nil || *input.ConfirmPassword != *input.Password {
			return nil, badRequest("Passwords do not match")
		}
		hashed, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	if input.Bio != nil {
		user.Bio = input.Bio
	}
	if input.Image != nil {
		user.Image = input.Image
	}
	user.UpdatedAt = s.now()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflict("Username or email already exists")
		}
		return nil, errors.Wrap(err, "update user")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, user.Id); err != nil {
			Logger.Log.Errorf("fail to invalidate viewer cache for %s: %v", user.Id, err)
		}
	}

	Logger.Log.WithFields(logrus.Fields{"user": user.Id}).Info("user updated")
	return s.userView(user)
}

func (s *Service) GetProfile(ctx context.Context, username string, viewer *model.User) (*model.Profile, error) {
	rec, err := s.findProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	return ProjectProfile(rec, viewer), nil
}

// Viewer resolves the user behind a verified token, going through the viewer
// cache when one is configured. A token whose user no longer exists is
// Unauthorized.
func (s *Service) Viewer(ctx context.Context, userId string) (*model.User, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userId)
		if err != nil {
			Logger.Log.Errorf("fail to read viewer cache for %s: %v", userId, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	user, err := s.store.FindUser(ctx, store.ByUserId(userId))
	if errors.Is(err, store.ErrNotFound) {
		return nil, unauthorized("Unauthorized")
	}
	if err != nil {
		return nil, errors.Wrap(err, "find viewer")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user); err != nil {
			Logger.Log.Errorf("fail to write viewer cache for %s: %v", userId, err)
		}
	}
	return user, nil
}
