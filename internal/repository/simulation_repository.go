package repository

import (
	"simedu_backend/internal/model"

	"gorm.io/gorm"
)

type SimulationRepository struct {
	DB *gorm.DB
}

func NewSimulationRepository(db *gorm.DB) *SimulationRepository {
	return &SimulationRepository{DB: db}
}

func (r *SimulationRepository) FindByName(name string) (*model.SimulationDefinition, error) {
	var def model.SimulationDefinition
	err := r.DB.Where("name = ?", name).First(&def).Error
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *SimulationRepository) List() ([]model.SimulationDefinition, error) {
	var defs []model.SimulationDefinition
	err := r.DB.Order("name").Find(&defs).Error
	return defs, err
}

// DisplayNames maps internal simulation names to human-readable labels.
func (r *SimulationRepository) DisplayNames() (map[string]string, error) {
	defs, err := r.List()
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(defs))
	for _, d := range defs {
		names[d.Name] = d.DisplayName
	}
	return names, nil
}
