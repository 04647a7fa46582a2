package service

import (
	"strings"
	"testing"
	"time"

	"simedu_backend/internal/config"
	"simedu_backend/internal/model"
	"simedu_backend/internal/repository"
	"simedu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// captureMailer records outbound messages instead of sending them.
type captureMailer struct {
	sent    []Message
	sendErr error
}

func (m *captureMailer) Send(msg Message) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newAuthService(t *testing.T, mailer Mailer) (*AuthService, *gorm.DB, *model.Company) {
	t.Helper()
	db := setupTestDB(t)
	company := createTestCompany(t, db, "Acme")

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-test-secret-test-secret"
	cfg.JWT.ExpireTime = time.Hour
	cfg.Mail.FrontendURL = "https://app.example.com"

	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewContactRepository(db),
		NewMailService(mailer, cfg.Mail),
		cfg,
	)
	return svc, db, company
}

func createLoginUser(t *testing.T, db *gorm.DB, companyID uint, email, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := createTestUser(t, db, companyID, "Ada", "Lovelace", email)
	user.Password = string(hash)
	require.NoError(t, db.Save(user).Error)
	return user
}

func TestLogin(t *testing.T) {
	svc, db, company := newAuthService(t, &captureMailer{})
	createLoginUser(t, db, company.ID, "ada@example.com", "correct horse")

	token, err := svc.Login("ada@example.com", "correct horse")
	require.NoError(t, err)

	claims, err := util.ParseJWT(token, "test-secret-test-secret-test-secret")
	require.NoError(t, err)
	assert.EqualValues(t, company.ID, claims.CompanyID)
	assert.Equal(t, "ada@example.com", claims.Email)

	_, err = svc.Login("ada@example.com", "wrong")
	assert.Equal(t, util.ErrInvalidCredentials, err)

	_, err = svc.Login("nobody@example.com", "whatever")
	assert.Equal(t, util.ErrInvalidCredentials, err)
}

func TestLoginInactiveUserRejected(t *testing.T) {
	svc, db, company := newAuthService(t, &captureMailer{})
	user := createLoginUser(t, db, company.ID, "ada@example.com", "correct horse")
	require.NoError(t, db.Model(user).Update("active", false).Error)

	_, err := svc.Login("ada@example.com", "correct horse")
	assert.Equal(t, util.ErrInvalidCredentials, err)
}

func TestPasswordResetFlow(t *testing.T) {
	mailer := &captureMailer{}
	svc, db, company := newAuthService(t, mailer)
	createLoginUser(t, db, company.ID, "ada@example.com", "old password")

	require.NoError(t, svc.RequestPasswordReset("ada@example.com"))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ada@example.com", mailer.sent[0].ToAddress)

	// The mailed link carries the stored token.
	var token model.PasswordResetToken
	require.NoError(t, db.First(&token).Error)
	assert.Contains(t, mailer.sent[0].Text, token.Token)
	assert.True(t, token.ExpiresAt.After(time.Now()))

	require.NoError(t, svc.ResetPassword(token.Token, "new password"))

	_, err := svc.Login("ada@example.com", "old password")
	assert.Equal(t, util.ErrInvalidCredentials, err)
	_, err = svc.Login("ada@example.com", "new password")
	require.NoError(t, err)

	// The token is single-use.
	err = svc.ResetPassword(token.Token, "another password")
	assert.Equal(t, util.ErrResetTokenInvalid, err)
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	mailer := &captureMailer{}
	svc, _, _ := newAuthService(t, mailer)

	require.NoError(t, svc.RequestPasswordReset("nobody@example.com"))
	assert.Empty(t, mailer.sent)
}

func TestPasswordResetExpiredTokenRejected(t *testing.T) {
	svc, db, company := newAuthService(t, &captureMailer{})
	user := createLoginUser(t, db, company.ID, "ada@example.com", "old password")

	token := model.PasswordResetToken{
		UserID:    user.ID,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&token).Error)

	err := svc.ResetPassword("expired-token", "new password")
	assert.Equal(t, util.ErrResetTokenInvalid, err)
}

func TestPasswordResetMailContainsFrontendLink(t *testing.T) {
	mailer := &captureMailer{}
	svc, db, company := newAuthService(t, mailer)
	createLoginUser(t, db, company.ID, "ada@example.com", "pw")

	require.NoError(t, svc.RequestPasswordReset("ada@example.com"))
	require.Len(t, mailer.sent, 1)
	assert.True(t, strings.Contains(mailer.sent[0].Text, "https://app.example.com/reset-password?token="))
}
