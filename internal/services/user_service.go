package services

import (
	stderrors "errors"

	"renthub/internal/models"
	"renthub/pkg/errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 用户服务 - 身份解析的本地实现
type UserService struct {
	db *gorm.DB
}

// NewUserService 创建用户服务实例
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// RegisterParams 注册参数
type RegisterParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
	Phone     string
}

// Register 注册用户
func (s *UserService) Register(params RegisterParams) (*models.User, error) {
	if params.Role == "" {
		params.Role = models.RoleTenant
	}
	if !models.ValidRole(params.Role) {
		return nil, errors.NewValidation("参数校验失败", errors.FieldError{
			Field:   "role",
			Message: "取值必须为 tenant property_owner property_manager 之一",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Email:     params.Email,
		Password:  string(hash),
		Role:      params.Role,
		Phone:     params.Phone,
		IsActive:  true,
	}

	if err := s.db.Create(user).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.NewConflict("该邮箱已注册")
		}
		return nil, err
	}

	return user, nil
}

// Login 校验登录凭证
func (s *UserService) Login(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewUnauthorized("邮箱或密码错误")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errors.NewUnauthorized("邮箱或密码错误")
	}

	if !user.IsActive {
		return nil, errors.NewUnauthorized("账号已被禁用")
	}

	return &user, nil
}

// GetByID 按ID获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFound("用户不存在")
		}
		return nil, err
	}
	return &user, nil
}

// IsActive 用户是否可用
func (s *UserService) IsActive(user *models.User) bool {
	return user.IsActive
}
