package main

import (
	"log"

	"github.com/Pavitraraman/oneflow/config"
	"github.com/Pavitraraman/oneflow/models"
	"github.com/Pavitraraman/oneflow/routes"
	"github.com/Pavitraraman/oneflow/utils"
)

func main() {
	cfg, err := config.Load("oneflow.yaml")
	if err != nil {
		log.Fatal(err)
	}
	utils.SetJwtSecret(cfg.JWTSecret)

	db, err := config.ConnectDB(cfg.DSN)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.TaskEvent{},
		&models.Timesheet{},
		&models.FinancialEntry{},
		&models.FinancialDocument{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	r := routes.SetupRouter(db)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
