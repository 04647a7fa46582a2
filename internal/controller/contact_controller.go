package controller

import (
	"simedu_backend/internal/service"
	"simedu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ContactController serves the unauthenticated demo request intake.
type ContactController struct {
	ContactService *service.ContactService
}

func NewContactController(contactService *service.ContactService) *ContactController {
	return &ContactController{ContactService: contactService}
}

func (c *ContactController) SubmitDemoRequest(ctx *gin.Context) {
	var in service.DemoRequestInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, "name and a valid email are required")
		return
	}

	req, err := c.ContactService.SubmitDemoRequest(in)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"id": req.ID})
}
