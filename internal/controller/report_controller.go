package controller

import (
	"strconv"

	"simedu_backend/internal/repository"
	"simedu_backend/internal/service"
	"simedu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// parseReportFilter reads the shared reporting dimensions from the
// query string. Dates are inclusive day bounds in YYYY-MM-DD.
func parseReportFilter(ctx *gin.Context) (repository.ReportFilter, bool) {
	claims := util.GetUserFromContext(ctx)
	f := repository.ReportFilter{
		CompanyID: claims.CompanyID,
		ClassName: ctx.Query("className"),
	}

	if raw := ctx.Query("courseId"); raw != "" {
		courseID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			util.BadRequest(ctx, "courseId must be a positive integer")
			return f, false
		}
		f.CourseID = uint(courseID)
	}

	from, err := util.ParseDatePtr(ctx.Query("from"))
	if err != nil {
		util.BadRequest(ctx, "from must be YYYY-MM-DD")
		return f, false
	}
	to, err := util.ParseDatePtr(ctx.Query("to"))
	if err != nil {
		util.BadRequest(ctx, "to must be YYYY-MM-DD")
		return f, false
	}
	if to != nil {
		end := to.AddDate(0, 0, 1).Add(-1)
		to = &end
	}

	f.From = from
	f.To = to
	return f, true
}

func (c *ReportController) Summary(ctx *gin.Context) {
	f, ok := parseReportFilter(ctx)
	if !ok {
		return
	}

	summary, err := c.ReportService.Summary(ctx.Request.Context(), f)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}

func (c *ReportController) MonthlySeries(ctx *gin.Context) {
	f, ok := parseReportFilter(ctx)
	if !ok {
		return
	}

	series, err := c.ReportService.MonthlySeries(f)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, series)
}

func (c *ReportController) CourseStats(ctx *gin.Context) {
	f, ok := parseReportFilter(ctx)
	if !ok {
		return
	}

	stats, err := c.ReportService.CourseStats(f)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

func (c *ReportController) ClassStats(ctx *gin.Context) {
	className := ctx.Query("className")
	if className == "" {
		util.BadRequest(ctx, "className is required")
		return
	}

	f, ok := parseReportFilter(ctx)
	if !ok {
		return
	}

	stats, err := c.ReportService.ClassStats(f, className)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

func (c *ReportController) CriterionStats(ctx *gin.Context) {
	f, ok := parseReportFilter(ctx)
	if !ok {
		return
	}

	stats, err := c.ReportService.CriterionStats(f)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

func (c *ReportController) NonParticipants(ctx *gin.Context) {
	f, ok := parseReportFilter(ctx)
	if !ok {
		return
	}
	if f.ClassName == "" && f.CourseID == 0 {
		util.BadRequest(ctx, "className or courseId is required")
		return
	}

	users, err := c.ReportService.NonParticipants(f)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, users)
}

func (c *ReportController) Popularity(ctx *gin.Context) {
	f, ok := parseReportFilter(ctx)
	if !ok {
		return
	}

	topN := 5
	if raw := ctx.Query("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			util.BadRequest(ctx, "top must be a positive integer")
			return
		}
		topN = n
	}

	entries, err := c.ReportService.Popularity(f, topN)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, entries)
}
