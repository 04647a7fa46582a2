package service

import (
	"simedu_backend/internal/model"
	"simedu_backend/internal/repository"
	"simedu_backend/pkg/logger"

	"go.uber.org/zap"
)

// ContactService handles the public demo request intake.
type ContactService struct {
	ContactRepo *repository.ContactRepository
	Mail        *MailService
}

func NewContactService(contactRepo *repository.ContactRepository, mail *MailService) *ContactService {
	return &ContactService{ContactRepo: contactRepo, Mail: mail}
}

// DemoRequestInput is the public intake form.
type DemoRequestInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// SubmitDemoRequest stores the request, then notifies. The intake is
// accepted once stored; failures of the internal copy or the thank-you
// mail are logged and never abort the accepted outcome.
func (s *ContactService) SubmitDemoRequest(in DemoRequestInput) (*model.DemoRequest, error) {
	req := model.DemoRequest{
		Name:    in.Name,
		Email:   in.Email,
		Company: in.Company,
		Phone:   in.Phone,
		Message: in.Message,
	}
	if err := s.ContactRepo.CreateDemoRequest(&req); err != nil {
		return nil, err
	}

	if err := s.Mail.SendDemoNotification(in.Name, in.Email, in.Company, in.Phone, in.Message); err != nil {
		logger.Log.Error("demo request internal notification failed", zap.Error(err))
	}
	if err := s.Mail.SendDemoAcknowledgment(in.Name, in.Email); err != nil {
		logger.Log.Error("demo request acknowledgment failed",
			zap.String("to", in.Email), zap.Error(err))
	}

	return &req, nil
}
