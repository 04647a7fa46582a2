package database

import (
	"fmt"
	"log"

	"simedu_backend/internal/config"
	"simedu_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// Migrate runs the schema migration and seeds the simulation catalog.
// It is shared with the test suites, which run it against sqlite.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Company{},
		&model.User{},
		&model.Course{},
		&model.Enrollment{},
		&model.SimulationDefinition{},
		&model.InProgressTurn{},
		&model.CompletedScoreRecord{},
		&model.DemoRequest{},
		&model.PasswordResetToken{},
	)
	if err != nil {
		return err
	}

	seedSimulationCatalog(db)
	return nil
}

// seedSimulationCatalog inserts the built-in conversational exercises
// when the catalog is empty. The catalog is read-only at runtime.
func seedSimulationCatalog(db *gorm.DB) {
	var count int64
	db.Model(&model.SimulationDefinition{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.SimulationDefinition{
		{
			Name:         "sales_discovery",
			AssistantRef: "asst_sales_discovery",
			DisplayName:  "Discovery Call",
			Instructions: "Lead a discovery conversation with a prospective customer and uncover their needs.",
			AssetFolder:  "sales_discovery",
			Modality:     "text",
			Voice:        "alloy",
		},
		{
			Name:         "objection_handling",
			AssistantRef: "asst_objection_handling",
			DisplayName:  "Objection Handling",
			Instructions: "Respond to pricing and timing objections without losing the customer.",
			AssetFolder:  "objection_handling",
			Modality:     "text",
			Voice:        "alloy",
		},
		{
			Name:         "performance_review",
			AssistantRef: "asst_performance_review",
			DisplayName:  "Performance Review",
			Instructions: "Deliver constructive feedback to a team member in a yearly review.",
			AssetFolder:  "performance_review",
			Modality:     "voice",
			Voice:        "verse",
		},
	}
	for _, d := range defaults {
		db.Create(&d)
	}
}
