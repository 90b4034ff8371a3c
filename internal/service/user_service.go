package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"filetree-server/internal/model"
	"filetree-server/internal/model/requestresponse"
	"filetree-server/internal/ports"
	"filetree-server/internal/security"
	"filetree-server/internal/util"
)

// UserService : регистрация, вход и поиск пользователей
type UserService struct {
	userRepository ports.UserRepository
	nodeRepository ports.NodeRepository
	fileService    ports.FileService
	jwtService     *security.JWTService
}

func NewUserService(
	userRepository ports.UserRepository,
	nodeRepository ports.NodeRepository,
	fileService ports.FileService,
	jwtService *security.JWTService,
) *UserService {
	return &UserService{
		userRepository: userRepository,
		nodeRepository: nodeRepository,
		fileService:    fileService,
		jwtService:     jwtService,
	}
}

// Register : заводит пользователя и его корневую папку одной транзакцией.
// Откат любой из двух вставок оставляет базу без «безкорневых» пользователей.
func (s *UserService) Register(ctx context.Context, req *requestresponse.RegisterRequest) (*requestresponse.RegisterResponse, error) {
	exec, rollback, commit, err := s.nodeRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[UserService] не удалось начать транзакцию", err)
	}
	defer rollback()

	existing, err := s.userRepository.FindByLogin(ctx, exec, req.Login)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("[UserService] логин %s уже занят: %w", req.Login, util.ErrForbidden)
	}

	passwordHash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, util.LogError("[UserService] не удалось захешировать пароль", err)
	}

	user := &model.User{
		UUID:         uuid.New().String(),
		Login:        req.Login,
		PasswordHash: passwordHash,
	}
	if _, err := s.userRepository.CreateUser(ctx, exec, user); err != nil {
		return nil, util.LogError("[UserService] не удалось сохранить пользователя", err)
	}

	root, err := s.fileService.CreateRootFolder(ctx, exec, user)
	if err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[UserService] не удалось зафиксировать транзакцию", err)
	}

	token, err := s.jwtService.GenerateAccessToken(user.UUID, user.Login)
	if err != nil {
		return nil, util.LogError("[UserService] не удалось выпустить токен", err)
	}

	log.Printf("[UserService] пользователь %s зарегистрирован", user.Login)
	return &requestresponse.RegisterResponse{
		UUID:        user.UUID,
		Login:       user.Login,
		AccessToken: token,
		RootUUID:    root.UUID,
	}, nil
}

// Login : проверяет пароль и выпускает access-токен
func (s *UserService) Login(ctx context.Context, req *requestresponse.LoginRequest) (*requestresponse.LoginResponse, error) {
	db, err := dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepository.FindByLogin(ctx, db, req.Login)
	if err != nil {
		return nil, err
	}
	if user == nil || !security.CheckPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("[UserService] неверный логин или пароль: %w", util.ErrForbidden)
	}

	token, err := s.jwtService.GenerateAccessToken(user.UUID, user.Login)
	if err != nil {
		return nil, util.LogError("[UserService] не удалось выпустить токен", err)
	}

	return &requestresponse.LoginResponse{AccessToken: token}, nil
}

// SearchByLogin : подбор логинов для формы шаринга
func (s *UserService) SearchByLogin(ctx context.Context, loginChunk string) ([]requestresponse.UserResponse, error) {
	db, err := dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepository.SearchByLogin(ctx, db, loginChunk)
	if err != nil {
		return nil, err
	}

	result := make([]requestresponse.UserResponse, 0, len(users))
	for _, user := range users {
		result = append(result, requestresponse.UserResponse{Login: user.Login})
	}
	return result, nil
}
