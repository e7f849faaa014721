package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	commonauth "github.com/Khizarkk7/storefront-backend/services/common/auth"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/user-service/models"
	"github.com/Khizarkk7/storefront-backend/services/user-service/repository"
)

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

type UserService interface {
	ListUsers(ctx context.Context, caller middleware.Identity, filter models.ListFilter, p pagination.Params) ([]models.User, int64, *ServiceError)
	GetUser(ctx context.Context, caller middleware.Identity, id string) (*models.User, *ServiceError)
	CreateUser(ctx context.Context, caller middleware.Identity, req *models.CreateUserRequest) (*models.User, *ServiceError)
	UpdateUser(ctx context.Context, caller middleware.Identity, id string, req *models.UpdateUserRequest) (*models.User, *ServiceError)
	DeleteUser(ctx context.Context, caller middleware.Identity, id string) *ServiceError
	GetProfile(ctx context.Context, userID string) (*models.User, *ServiceError)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, *ServiceError)
	ChangePassword(ctx context.Context, userID string, req *models.ChangePasswordRequest) *ServiceError
}

type userServiceImpl struct {
	repo      repository.UserRepository
	validator *commonauth.PasswordValidator
	logger    *zap.Logger
}

func NewUserService(repo repository.UserRepository, logger *zap.Logger) UserService {
	return &userServiceImpl{repo: repo, validator: commonauth.NewPasswordValidator(), logger: logger}
}

var (
	errUserNotFound = &ServiceError{StatusCode: 404, Message: "user not found"}
	errNoShopAccess = &ServiceError{StatusCode: 403, Message: "no access to this shop"}
)

// ListUsers: shop admins only ever see their own shop.
func (s *userServiceImpl) ListUsers(ctx context.Context, caller middleware.Identity, filter models.ListFilter, p pagination.Params) ([]models.User, int64, *ServiceError) {
	if caller.IsShopAdmin() {
		if filter.ShopID != "" && filter.ShopID != caller.ShopID {
			return nil, 0, errNoShopAccess
		}
		filter.ShopID = caller.ShopID
	}
	if filter.Role != "" {
		filter.Role = commonauth.NormalizeRole(filter.Role)
	}
	users, total, err := s.repo.FindAll(ctx, filter, p)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: 500, Message: "failed to list users"}
	}
	return users, total, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, caller middleware.Identity, id string) (*models.User, *ServiceError) {
	user, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !canManage(caller, user) {
		return nil, errUserNotFound
	}
	return user, nil
}

func (s *userServiceImpl) CreateUser(ctx context.Context, caller middleware.Identity, req *models.CreateUserRequest) (*models.User, *ServiceError) {
	role := commonauth.NormalizeRole(req.Role)
	if !commonauth.ValidRole(role) {
		return nil, &ServiceError{StatusCode: 400, Message: "invalid role"}
	}

	shopID, svcErr := parseShopID(req.ShopID)
	if svcErr != nil {
		return nil, svcErr
	}
	if caller.IsShopAdmin() {
		if role == commonauth.RoleSystemAdmin {
			return nil, &ServiceError{StatusCode: 403, Message: "shop admins cannot create system admins"}
		}
		if shopID == nil {
			own, _ := uuid.Parse(caller.ShopID)
			shopID = &own
		}
		if shopID.String() != caller.ShopID {
			return nil, errNoShopAccess
		}
	}
	if role == commonauth.RoleShopAdmin && shopID == nil {
		return nil, &ServiceError{StatusCode: 400, Message: "shop_id is required for shop admins"}
	}
	if role == commonauth.RoleSystemAdmin {
		shopID = nil
	}

	if err := s.validator.ValidatePassword(req.Password); err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: err.Error()}
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("Failed to check email", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to create user"}
	}
	if exists {
		return nil, &ServiceError{StatusCode: 409, Message: "a user with this email already exists"}
	}

	hash, err := commonauth.HashPassword(req.Password)
	if err != nil {
		return nil, &ServiceError{StatusCode: 500, Message: "failed to hash password"}
	}
	user := &models.User{
		ID:       uuid.New(),
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: hash,
		Role:     role,
		RoleID:   commonauth.RoleID(role),
		ShopID:   shopID,
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, &ServiceError{StatusCode: 409, Message: "a user with this email already exists"}
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to create user"}
	}
	s.logger.Info("User created", zap.String("user_id", user.ID.String()), zap.String("role", role), zap.String("by", caller.UserID))
	return user, nil
}

// UpdateUser changes username and password for any manageable user; role,
// shop and status changes need an admin and never apply to the caller.
func (s *userServiceImpl) UpdateUser(ctx context.Context, caller middleware.Identity, id string, req *models.UpdateUserRequest) (*models.User, *ServiceError) {
	user, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !canManage(caller, user) {
		return nil, errUserNotFound
	}
	self := caller.UserID == user.ID.String()

	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Password != nil && *req.Password != "" {
		if err := s.validator.ValidatePassword(*req.Password); err != nil {
			return nil, &ServiceError{StatusCode: 400, Message: err.Error()}
		}
		hash, err := commonauth.HashPassword(*req.Password)
		if err != nil {
			return nil, &ServiceError{StatusCode: 500, Message: "failed to hash password"}
		}
		user.Password = hash
	}
	if req.Role != nil || req.ShopID != nil || req.IsActive != nil {
		if self {
			return nil, &ServiceError{StatusCode: 403, Message: "cannot change your own role or status"}
		}
	}
	if req.Role != nil {
		role := commonauth.NormalizeRole(*req.Role)
		if !commonauth.ValidRole(role) {
			return nil, &ServiceError{StatusCode: 400, Message: "invalid role"}
		}
		if role == commonauth.RoleSystemAdmin && !caller.IsSystemAdmin() {
			return nil, &ServiceError{StatusCode: 403, Message: "only system admins can grant system admin"}
		}
		user.Role = role
		user.RoleID = commonauth.RoleID(role)
	}
	if req.ShopID != nil {
		if !caller.IsSystemAdmin() {
			return nil, &ServiceError{StatusCode: 403, Message: "only system admins can move users between shops"}
		}
		shopID, svcErr := parseShopID(req.ShopID)
		if svcErr != nil {
			return nil, svcErr
		}
		user.ShopID = shopID
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if user.Role == commonauth.RoleShopAdmin && user.ShopID == nil {
		return nil, &ServiceError{StatusCode: 400, Message: "shop_id is required for shop admins"}
	}

	if err := s.repo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update user", zap.String("user_id", id), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to update user"}
	}
	return user, nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, caller middleware.Identity, id string) *ServiceError {
	if caller.UserID == id {
		return &ServiceError{StatusCode: 400, Message: "you cannot delete your own account"}
	}
	user, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return svcErr
	}
	if !canManage(caller, user) {
		return errUserNotFound
	}
	if err := s.repo.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errUserNotFound
		}
		s.logger.Error("Failed to delete user", zap.String("user_id", id), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "failed to delete user"}
	}
	s.logger.Info("User deleted", zap.String("user_id", id), zap.String("by", caller.UserID))
	return nil
}

func (s *userServiceImpl) GetProfile(ctx context.Context, userID string) (*models.User, *ServiceError) {
	return s.load(ctx, userID)
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, *ServiceError) {
	user, svcErr := s.load(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}
	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if err := s.repo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update profile", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to update profile"}
	}
	return user, nil
}

func (s *userServiceImpl) ChangePassword(ctx context.Context, userID string, req *models.ChangePasswordRequest) *ServiceError {
	user, svcErr := s.load(ctx, userID)
	if svcErr != nil {
		return svcErr
	}
	if !commonauth.CheckPassword(user.Password, req.OldPassword) {
		return &ServiceError{StatusCode: 401, Message: "old password incorrect"}
	}
	if err := s.validator.ValidatePassword(req.NewPassword); err != nil {
		return &ServiceError{StatusCode: 400, Message: err.Error()}
	}
	hash, err := commonauth.HashPassword(req.NewPassword)
	if err != nil {
		return &ServiceError{StatusCode: 500, Message: "failed to hash password"}
	}
	user.Password = hash
	if err := s.repo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to change password", zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "failed to change password"}
	}
	return nil
}

func (s *userServiceImpl) load(ctx context.Context, id string) (*models.User, *ServiceError) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "invalid user id"}
	}
	user, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errUserNotFound
		}
		s.logger.Error("Failed to load user", zap.String("user_id", id), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to load user"}
	}
	return user, nil
}

// canManage hides users of other shops from shop admins.
func canManage(caller middleware.Identity, user *models.User) bool {
	if caller.IsSystemAdmin() || caller.UserID == user.ID.String() {
		return true
	}
	if caller.IsShopAdmin() {
		return user.ShopID != nil && user.ShopID.String() == caller.ShopID && user.Role != commonauth.RoleSystemAdmin
	}
	return false
}

func parseShopID(raw *string) (*uuid.UUID, *ServiceError) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "invalid shop_id"}
	}
	return &id, nil
}
