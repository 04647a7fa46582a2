package model

// Course is a catalog entry with a fixed set of ten simulation slots.
// Catalog administration lives outside this service; the core only
// reads courses.
type Course struct {
	BaseModel
	Name      string `gorm:"size:255;not null" json:"name"`
	CompanyID uint   `gorm:"not null;index" json:"companyId"`
	Active    bool   `gorm:"default:true" json:"active"`

	Simulation1  string `gorm:"size:100" json:"simulation1"`
	Simulation2  string `gorm:"size:100" json:"simulation2"`
	Simulation3  string `gorm:"size:100" json:"simulation3"`
	Simulation4  string `gorm:"size:100" json:"simulation4"`
	Simulation5  string `gorm:"size:100" json:"simulation5"`
	Simulation6  string `gorm:"size:100" json:"simulation6"`
	Simulation7  string `gorm:"size:100" json:"simulation7"`
	Simulation8  string `gorm:"size:100" json:"simulation8"`
	Simulation9  string `gorm:"size:100" json:"simulation9"`
	Simulation10 string `gorm:"size:100" json:"simulation10"`
}

func (Course) TableName() string {
	return "courses"
}

// SimulationSlots returns the non-empty simulation names in slot order.
func (c *Course) SimulationSlots() []string {
	all := []string{
		c.Simulation1, c.Simulation2, c.Simulation3, c.Simulation4, c.Simulation5,
		c.Simulation6, c.Simulation7, c.Simulation8, c.Simulation9, c.Simulation10,
	}
	slots := make([]string, 0, len(all))
	for _, s := range all {
		if s != "" {
			slots = append(slots, s)
		}
	}
	return slots
}
