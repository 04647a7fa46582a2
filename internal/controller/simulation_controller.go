package controller

import (
	"errors"

	"simedu_backend/internal/model"
	"simedu_backend/internal/service"
	"simedu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SimulationController struct {
	SimulationService *service.SimulationService
	AssetService      *service.AssetService
}

func NewSimulationController(simulationService *service.SimulationService, assetService *service.AssetService) *SimulationController {
	return &SimulationController{
		SimulationService: simulationService,
		AssetService:      assetService,
	}
}

func (c *SimulationController) ListSimulations(ctx *gin.Context) {
	sims, err := c.SimulationService.SimRepo.List()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sims)
}

// CourseSimulations lists the executable simulations of one course.
func (c *SimulationController) CourseSimulations(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	sims, err := c.SimulationService.CourseSimulations(claims.CompanyID, courseID)
	if err != nil {
		if err == util.ErrCourseNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, sims)
}

type initSessionRequest struct {
	SimulationName string `json:"simulationName" binding:"required"`
}

func (c *SimulationController) InitSession(ctx *gin.Context) {
	var req initSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "simulationName is required")
		return
	}

	session, err := c.SimulationService.InitSession(ctx.Request.Context(), req.SimulationName)
	if err != nil {
		switch {
		case err == util.ErrSimulationNotFound:
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAssistantUnavailable):
			util.BadGateway(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, session)
}

type turnRequest struct {
	ThreadID       string `json:"threadId" binding:"required"`
	CourseID       uint   `json:"courseId" binding:"required"`
	SimulationName string `json:"simulationName" binding:"required"`
	AssistantRef   string `json:"assistantRef" binding:"required"`
	Message        string `json:"message" binding:"required"`
}

// SendTurn relays one user message. The reply of the final turn carries
// the extracted scores; an incomplete score block fails the turn.
func (c *SimulationController) SendTurn(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req turnRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "threadId, courseId, simulationName, assistantRef and message are required")
		return
	}

	result, err := c.SimulationService.SendTurn(ctx.Request.Context(), service.TurnRequest{
		Key: model.SessionKey{
			UserID:         claims.UserID,
			CourseID:       req.CourseID,
			CompanyID:      claims.CompanyID,
			SimulationName: req.SimulationName,
			ThreadID:       req.ThreadID,
		},
		AssistantRef: req.AssistantRef,
		UserMessage:  req.Message,
	})
	if err != nil {
		switch {
		case err == util.ErrRunTimeout:
			util.GatewayTimeout(ctx, err.Error())
		case err == util.ErrIncompleteScores,
			err == util.ErrRunFailed,
			errors.Is(err, util.ErrAssistantUnavailable):
			util.BadGateway(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

type endSessionRequest struct {
	ThreadID       string `json:"threadId" binding:"required"`
	CourseID       uint   `json:"courseId" binding:"required"`
	SimulationName string `json:"simulationName" binding:"required"`
}

func (c *SimulationController) EndSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req endSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "threadId, courseId and simulationName are required")
		return
	}

	migrated, err := c.SimulationService.EndSession(model.SessionKey{
		UserID:         claims.UserID,
		CourseID:       req.CourseID,
		CompanyID:      claims.CompanyID,
		SimulationName: req.SimulationName,
		ThreadID:       req.ThreadID,
	})
	if err != nil {
		if err == util.ErrNoSessionTurns {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"migratedTurns": migrated})
}

func (c *SimulationController) SessionReport(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	threadID := ctx.Param("threadId")
	if threadID == "" {
		util.BadRequest(ctx, "threadId is required")
		return
	}

	report, err := c.SimulationService.SessionReport(claims.CompanyID, threadID)
	if err != nil {
		if err == util.ErrNoSessionTurns {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, report)
}

// SimulationAssets lists the static assets backing one simulation.
func (c *SimulationController) SimulationAssets(ctx *gin.Context) {
	name := ctx.Param("name")
	if name == "" {
		util.BadRequest(ctx, "simulation name is required")
		return
	}

	entries, err := c.AssetService.ListSimulationAssets(ctx.Request.Context(), name, ctx.Query("folder"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, entries)
}
