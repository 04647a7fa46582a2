package service

import (
	"encoding/csv"
	"io"
	"net/mail"
	"path/filepath"
	"strings"

	"simedu_backend/internal/model"
	"simedu_backend/internal/repository"
	"simedu_backend/internal/util"
	"simedu_backend/pkg/logger"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// minSearchLength is the shortest query the directory search will run.
// Anything shorter returns an empty result without touching the store.
const minSearchLength = 3

// DirectoryService manages the user directory of one tenant.
type DirectoryService struct {
	UserRepo *repository.UserRepository
}

func NewDirectoryService(userRepo *repository.UserRepository) *DirectoryService {
	return &DirectoryService{UserRepo: userRepo}
}

// Search finds active users whose name or email contains the query.
// excludeID removes the caller's own row (used when picking deletion
// targets so admins cannot select themselves).
func (s *DirectoryService) Search(companyID uint, query string, excludeID uint) ([]model.User, error) {
	query = strings.TrimSpace(query)
	if len(query) < minSearchLength {
		return []model.User{}, nil
	}
	return s.UserRepo.Search(companyID, query, excludeID)
}

// CreateUserInput carries the admin-entered fields of a new user.
type CreateUserInput struct {
	FirstName  string `json:"firstName" binding:"required"`
	LastName   string `json:"lastName" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Region     string `json:"region"`
	City       string `json:"city"`
	Department string `json:"department"`
	SubUnit    string `json:"subUnit"`
	Team       string `json:"team"`
}

// Create inserts an active, non-admin user. Duplicate email within the
// tenant fails with ErrEmailExists and inserts nothing.
func (s *DirectoryService) Create(companyID uint, in CreateUserInput) (*model.User, error) {
	taken, err := s.UserRepo.EmailTaken(companyID, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrEmailExists
	}

	user := model.User{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		CompanyID:  companyID,
		IsAdmin:    false,
		Active:     true,
		Region:     in.Region,
		City:       in.City,
		Department: in.Department,
		SubUnit:    in.SubUnit,
		Team:       in.Team,
	}
	if err := s.UserRepo.Create(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update overwrites the target's fields. The new email must not collide
// with a different user in the tenant.
func (s *DirectoryService) Update(companyID, id uint, in CreateUserInput) (*model.User, error) {
	user, err := s.UserRepo.FindByID(companyID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	taken, err := s.UserRepo.EmailTaken(companyID, in.Email, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrEmailExists
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Email = strings.ToLower(strings.TrimSpace(in.Email))
	user.Region = in.Region
	user.City = in.City
	user.Department = in.Department
	user.SubUnit = in.SubUnit
	user.Team = in.Team

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SoftDelete deactivates a user. Self-deletion is refused; history
// referencing the user keeps resolving.
func (s *DirectoryService) SoftDelete(companyID, targetID, callerID uint) error {
	if targetID == callerID {
		return util.ErrPermissionDenied
	}
	err := s.UserRepo.SoftDelete(companyID, targetID)
	if err == gorm.ErrRecordNotFound {
		return util.ErrUserNotFound
	}
	return err
}

// ImportRow identifies a spreadsheet row in the import outcome lists.
type ImportRow struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// ImportResult reports per-row outcomes of a bulk import. A bad row is
// skipped and reported, never aborts the batch.
type ImportResult struct {
	Added      []ImportRow `json:"added"`
	Duplicates []ImportRow `json:"duplicates"`
	Skipped    int         `json:"skipped"`
}

// ImportSpreadsheet bulk-creates users from an uploaded .xlsx or .csv.
// Columns: first name, last name, email, then optional classification
// attributes (region, city, department, sub-unit, team). The first row
// is treated as a header when its third column is not an email address.
func (s *DirectoryService) ImportSpreadsheet(companyID uint, filename string, file io.Reader) (*ImportResult, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSVRows(file)
	default:
		rows, err = readXLSXRows(file)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Added: []ImportRow{}, Duplicates: []ImportRow{}}

	for i, cols := range rows {
		row := importRowFromColumns(cols)
		if i == 0 && !validEmail(row.email) {
			continue // header row
		}
		if row.firstName == "" || row.lastName == "" || !validEmail(row.email) {
			result.Skipped++
			continue
		}

		entry := ImportRow{FirstName: row.firstName, LastName: row.lastName, Email: row.email}

		_, err := s.Create(companyID, CreateUserInput{
			FirstName:  row.firstName,
			LastName:   row.lastName,
			Email:      row.email,
			Region:     row.region,
			City:       row.city,
			Department: row.department,
			SubUnit:    row.subUnit,
			Team:       row.team,
		})
		switch {
		case err == nil:
			result.Added = append(result.Added, entry)
		case err == util.ErrEmailExists:
			result.Duplicates = append(result.Duplicates, entry)
		default:
			logger.Log.Error("import row failed", zap.String("email", row.email), zap.Error(err))
			result.Skipped++
		}
	}

	return result, nil
}

type importColumns struct {
	firstName, lastName, email              string
	region, city, department, subUnit, team string
}

func importRowFromColumns(cols []string) importColumns {
	get := func(i int) string {
		if i < len(cols) {
			return strings.TrimSpace(cols[i])
		}
		return ""
	}
	return importColumns{
		firstName:  get(0),
		lastName:   get(1),
		email:      strings.ToLower(get(2)),
		region:     get(3),
		city:       get(4),
		department: get(5),
		subUnit:    get(6),
		team:       get(7),
	}
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

func readCSVRows(file io.Reader) ([][]string, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func readXLSXRows(file io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, excelize.ErrSheetNotExist{SheetName: ""}
	}
	return wb.GetRows(sheets[0])
}
