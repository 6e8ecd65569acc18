package service

import (
	"errors"

	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/util"
)

var ErrInvalidLearnerType = errors.New("learner type must be first-time or refresher")

type UserService struct {
	UserRepo *repository.UserRepository
	PathSvc  *LearningPathService
}

func NewUserService(userRepo *repository.UserRepository, pathSvc *LearningPathService) *UserService {
	return &UserService{UserRepo: userRepo, PathSvc: pathSvc}
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	return user, nil
}

type ProfileUpdateRequest struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Avatar   string `json:"avatar"`
}

func (s *UserService) UpdateProfile(userID uint, req ProfileUpdateRequest) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Language != "" {
		user.Language = req.Language
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateLearnerType 切换学习者类型。路径按类型过滤，切换后缓存的
// 控制器全部失效，下次请求按新类型重建。
func (s *UserService) UpdateLearnerType(userID uint, learnerType model.LearnerType) (*model.User, error) {
	if learnerType != model.LearnerFirstTime && learnerType != model.LearnerRefresher {
		return nil, ErrInvalidLearnerType
	}
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	if user.LearnerType == learnerType {
		return user, nil
	}
	if err := s.UserRepo.UpdateLearnerType(userID, learnerType); err != nil {
		return nil, err
	}
	user.LearnerType = learnerType
	if s.PathSvc != nil {
		s.PathSvc.InvalidateUser(userID)
	}
	return user, nil
}
