package service

import (
	"testing"

	"simedu_backend/internal/config"
	"simedu_backend/internal/model"
	"simedu_backend/internal/repository"
	"simedu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitDemoRequestStoresAndNotifies(t *testing.T) {
	db := setupTestDB(t)
	mailer := &captureMailer{}
	cfg := config.MailConfig{InternalAddr: "sales@simedu.example"}
	svc := NewContactService(repository.NewContactRepository(db), NewMailService(mailer, cfg))

	req, err := svc.SubmitDemoRequest(DemoRequestInput{
		Name: "Jordan Blake", Email: "jordan@corp.com", Company: "Corp", Message: "Interested",
	})
	require.NoError(t, err)
	assert.NotZero(t, req.ID)

	// Internal notification plus the requester's acknowledgment.
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "sales@simedu.example", mailer.sent[0].ToAddress)
	assert.Equal(t, "jordan@corp.com", mailer.sent[1].ToAddress)
}

func TestSubmitDemoRequestSurvivesMailFailure(t *testing.T) {
	db := setupTestDB(t)
	mailer := &captureMailer{sendErr: util.ErrDeliveryFailed}
	svc := NewContactService(repository.NewContactRepository(db), NewMailService(mailer, config.MailConfig{}))

	req, err := svc.SubmitDemoRequest(DemoRequestInput{Name: "Jordan", Email: "jordan@corp.com"})
	require.NoError(t, err)

	var stored model.DemoRequest
	require.NoError(t, db.First(&stored, req.ID).Error)
	assert.Equal(t, "jordan@corp.com", stored.Email)
}
