package model

// User is a directory record. Deletion is always the Active flag going
// false; enrollment and score history keeps referencing the row.
type User struct {
	BaseModel
	FirstName string `gorm:"size:100;not null" json:"firstName"`
	LastName  string `gorm:"size:100;not null" json:"lastName"`
	Email     string `gorm:"size:191;not null;uniqueIndex:idx_users_company_email" json:"email"`
	Password  string `gorm:"size:100" json:"-"`
	CompanyID uint   `gorm:"not null;index;uniqueIndex:idx_users_company_email" json:"companyId"`
	IsAdmin   bool   `gorm:"default:false" json:"isAdmin"`
	Active    bool   `gorm:"default:true" json:"active"`

	// Free-form classification attributes, used only for segmentation.
	Region     string `gorm:"size:100" json:"region"`
	City       string `gorm:"size:100" json:"city"`
	Department string `gorm:"size:100" json:"department"`
	SubUnit    string `gorm:"size:100" json:"subUnit"`
	Team       string `gorm:"size:100" json:"team"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
