package model

// Company is the tenant boundary. Rows are created by provisioning and
// never mutated or deleted by this service.
type Company struct {
	BaseModel
	Name   string `gorm:"size:255;not null" json:"name"`
	Active bool   `gorm:"default:true" json:"active"`
}

func (Company) TableName() string {
	return "companies"
}
