package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/docchat-io/docchat-be/repository"
	"github.com/docchat-io/docchat-be/types"
	"github.com/docchat-io/docchat-be/utils"
)

type UserService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.User, error)
	Login(ctx context.Context, req types.LoginRequest) (string, *types.User, error)
}

type userService struct {
	repo repository.UserRepo
}

func NewUserService(repo repository.UserRepo) UserService {
	return &userService{
		repo: repo,
	}
}

func (s *userService) Register(ctx context.Context, req types.RegisterRequest) (*types.User, error) {
	if !strings.Contains(req.Email, "@") {
		return nil, fmt.Errorf("%w: invalid email", types.ErrInvalidRequest)
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", types.ErrInvalidRequest)
	}

	if _, err := s.repo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", types.ErrInvalidRequest)
	} else if !errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", types.ErrPersistenceFailure, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &types.User{
		ID:        uuid.New().String(),
		Email:     req.Email,
		Password:  string(hashed),
		Name:      req.Name,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrPersistenceFailure, err)
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, req types.LoginRequest) (string, *types.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", types.ErrUnauthorized)
		}
		return "", nil, fmt.Errorf("%w: %v", types.ErrPersistenceFailure, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", types.ErrUnauthorized)
	}

	token, err := utils.GenerateUserToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
