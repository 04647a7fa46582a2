package service

import (
	"time"

	"simedu_backend/internal/config"
	"simedu_backend/internal/model"
	"simedu_backend/internal/repository"
	"simedu_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = 24 * time.Hour

// AuthService issues credentials and runs the password reset flow.
type AuthService struct {
	UserRepo    *repository.UserRepository
	ContactRepo *repository.ContactRepository
	Mail        *MailService
	Cfg         *config.Config
}

func NewAuthService(
	userRepo *repository.UserRepository,
	contactRepo *repository.ContactRepository,
	mail *MailService,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		UserRepo:    userRepo,
		ContactRepo: contactRepo,
		Mail:        mail,
		Cfg:         cfg,
	}
}

// Login verifies the credential and returns a signed token. Inactive
// users cannot log in; the error never reveals which check failed.
func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.UserRepo.FindByEmailGlobal(email)
	if err != nil {
		return "", util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", util.ErrInvalidCredentials
	}

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

// RequestPasswordReset issues a single-use token and mails it. An
// unknown email returns nil so the endpoint does not leak which
// addresses exist; a relay rejection for a known address surfaces.
func (s *AuthService) RequestPasswordReset(email string) error {
	user, err := s.UserRepo.FindByEmailGlobal(email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	token := model.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.ContactRepo.CreateResetToken(&token); err != nil {
		return err
	}

	return s.Mail.SendPasswordReset(user.FullName(), user.Email, token.Token)
}

// ResetPassword consumes a valid token and stores the new hash.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	t, err := s.ContactRepo.FindValidResetToken(token)
	if err != nil {
		return util.ErrResetTokenInvalid
	}

	var user model.User
	if err := s.UserRepo.DB.First(&user, t.UserID).Error; err != nil {
		return util.ErrResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hash)
	if err := s.UserRepo.Update(&user); err != nil {
		return err
	}

	return s.ContactRepo.MarkResetTokenUsed(t.ID)
}

// GetCurrentUser resolves the request claims to the directory row.
func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, err := s.UserRepo.FindByID(claims.CompanyID, claims.UserID)
	if err != nil {
		return nil
	}
	return user
}
