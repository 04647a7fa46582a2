package controller

import (
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"simedu_backend/internal/service"
	"simedu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController exposes the tenant directory. Each operation has its
// own route and handler.
type UserController struct {
	DirectoryService *service.DirectoryService
}

func NewUserController(directoryService *service.DirectoryService) *UserController {
	return &UserController{DirectoryService: directoryService}
}

// SearchUsers matches a free-text query against name and email.
// Queries under three characters return an empty list without touching
// the store. forDeletion=true excludes the caller's own record.
func (c *UserController) SearchUsers(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	query := ctx.Query("q")

	excludeID := uint(0)
	if ctx.Query("forDeletion") == "true" {
		excludeID = claims.UserID
	}

	users, err := c.DirectoryService.Search(claims.CompanyID, query, excludeID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, users)
}

func (c *UserController) CreateUser(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var in service.CreateUserInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, "first name, last name and a valid email are required")
		return
	}

	user, err := c.DirectoryService.Create(claims.CompanyID, in)
	if err != nil {
		if err == util.ErrEmailExists {
			util.Conflict(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, user)
}

func (c *UserController) UpdateUser(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	var in service.CreateUserInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, "first name, last name and a valid email are required")
		return
	}

	user, err := c.DirectoryService.Update(claims.CompanyID, uint(id), in)
	if err != nil {
		switch err {
		case util.ErrUserNotFound:
			util.NotFound(ctx)
		case util.ErrEmailExists:
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, user)
}

// DeleteUser deactivates the target. The row is never removed, and
// admins cannot target themselves.
func (c *UserController) DeleteUser(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	if err := c.DirectoryService.SoftDelete(claims.CompanyID, uint(id), claims.UserID); err != nil {
		switch err {
		case util.ErrPermissionDenied:
			util.Forbidden(ctx)
		case util.ErrUserNotFound:
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"deleted": true})
}

// ImportUsers bulk-creates users from an uploaded spreadsheet.
func (c *UserController) ImportUsers(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "a spreadsheet file is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !slices.Contains(util.AllowedImportExtensions, ext) {
		util.BadRequest(ctx, "only .xlsx and .csv files are accepted")
		return
	}

	// Sniff the real content type on a separate handle; the parse
	// below needs the stream from the start.
	sniff, err := fileHeader.Open()
	if err != nil {
		util.BadRequest(ctx, "uploaded file could not be read")
		return
	}
	_, err = util.ValidateMimeType(sniff, []string{util.MimeXLSX, util.MimeCSV, "text/plain", util.MimeOctetStream, "application/zip"})
	sniff.Close()
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.BadRequest(ctx, "uploaded file could not be read")
		return
	}
	defer file.Close()

	result, err := c.DirectoryService.ImportSpreadsheet(claims.CompanyID, fileHeader.Filename, file)
	if err != nil {
		util.BadRequest(ctx, "uploaded file could not be parsed")
		return
	}

	util.Success(ctx, result)
}
