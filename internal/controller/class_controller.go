package controller

import (
	"time"

	"simedu_backend/internal/service"
	"simedu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ClassController struct {
	EnrollmentService *service.EnrollmentService
}

func NewClassController(enrollmentService *service.EnrollmentService) *ClassController {
	return &ClassController{EnrollmentService: enrollmentService}
}

// AssignUsers creates or re-points enrollments for a class in one
// batch. Individual record failures are counted, not fatal.
func (c *ClassController) AssignUsers(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var in service.AssignInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, "courseId, className and userIds are required")
		return
	}

	result, err := c.EnrollmentService.AssignUsers(claims.CompanyID, in)
	if err != nil {
		if err == util.ErrCourseNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

func (c *ClassController) DeleteClass(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	className := ctx.Param("name")
	if className == "" {
		util.BadRequest(ctx, "class name is required")
		return
	}

	removed, err := c.EnrollmentService.DeleteClass(claims.CompanyID, className)
	if err != nil {
		if err == util.ErrClassNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"removed": removed})
}

type renameClassRequest struct {
	NewName string `json:"newName" binding:"required"`
}

func (c *ClassController) RenameClass(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	className := ctx.Param("name")
	if className == "" {
		util.BadRequest(ctx, "class name is required")
		return
	}

	var req renameClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "newName is required")
		return
	}

	renamed, err := c.EnrollmentService.RenameClass(claims.CompanyID, className, req.NewName)
	if err != nil {
		if err == util.ErrClassNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"renamed": renamed})
}

type classDatesRequest struct {
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
}

func (c *ClassController) UpdateClassDates(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	className := ctx.Param("name")
	if className == "" {
		util.BadRequest(ctx, "class name is required")
		return
	}

	var req classDatesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "startDate and endDate are required")
		return
	}

	updated, err := c.EnrollmentService.UpdateClassDates(claims.CompanyID, className, req.StartDate, req.EndDate)
	if err != nil {
		if err == util.ErrClassNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"updated": updated})
}

func (c *ClassController) ListClasses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	classes, err := c.EnrollmentService.ListClasses(claims.CompanyID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, classes)
}
