package model

import "time"

// SimulationDefinition is the catalog of conversational exercises. Name
// is the primary key; AssistantRef points at the external provider's
// assistant. Read-only from the service's perspective, seeded at
// migration time.
type SimulationDefinition struct {
	Name         string    `gorm:"primaryKey;size:100" json:"name"`
	AssistantRef string    `gorm:"size:100;not null" json:"assistantRef"`
	DisplayName  string    `gorm:"size:255" json:"displayName"`
	Instructions string    `gorm:"type:text" json:"instructions"`
	AssetFolder  string    `gorm:"size:255" json:"assetFolder"`
	Modality     string    `gorm:"size:50" json:"modality"`
	Voice        string    `gorm:"size:50" json:"voice"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (SimulationDefinition) TableName() string {
	return "simulation_definitions"
}
