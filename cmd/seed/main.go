package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"crewcall/internal/auth"
	"crewcall/internal/config"
	"crewcall/internal/db"
	"crewcall/internal/model"
	"crewcall/internal/repository"
)

// seedUser is one development fixture account.
type seedUser struct {
	Email          string
	Password       string
	Name           string
	Role           string
	Specialization string
}

var seedUsers = []seedUser{
	{Email: "producer@crewcall.local", Password: "password1", Name: "Paula Producer", Role: model.RoleProducer},
	{Email: "booking@crewcall.local", Password: "password1", Name: "Bob Booking", Role: model.RoleBookingOfficer},
	{Email: "camera@crewcall.local", Password: "password1", Name: "Olive Operator", Role: model.RoleOperator, Specialization: "camera"},
	{Email: "sound@crewcall.local", Password: "password1", Name: "Omar Operator", Role: model.RoleOperator, Specialization: "sound"},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(
		&model.Credential{},
		&model.User{},
		&model.Production{},
		&model.Requirement{},
		&model.Assignment{},
		&model.Notification{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	credentialRepo := repository.NewCredentialRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)
	productionRepo := repository.NewProductionRepository(gormDB)
	requirementRepo := repository.NewRequirementRepository(gormDB)
	credentialStore := auth.NewCredentialStore(credentialRepo)

	users := make(map[string]uuid.UUID, len(seedUsers))
	created := 0
	for _, su := range seedUsers {
		cred, err := credentialStore.CreateAccount(ctx, su.Email, su.Password)
		if err == auth.ErrEmailTaken {
			existing, err := userRepo.FindByEmail(ctx, su.Email)
			if err != nil {
				log.Fatalf("Failed to load existing user %s: %v", su.Email, err)
			}
			users[su.Role+"/"+su.Email] = existing.UID
			continue
		}
		if err != nil {
			log.Fatalf("Failed to create credential %s: %v", su.Email, err)
		}

		now := time.Now()
		user := &model.User{
			UID:            cred.ID,
			Email:          su.Email,
			Name:           su.Name,
			Role:           su.Role,
			Specialization: su.Specialization,
			CreatedAt:      now,
			LastSeen:       now,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create profile %s: %v", su.Email, err)
		}
		users[su.Role+"/"+su.Email] = cred.ID
		created++
	}
	log.Printf("Seeded %d new users (%d total fixtures)", created, len(seedUsers))

	if created == 0 {
		log.Println("Fixtures already present, skipping demo production")
		return
	}

	// One demo production with a camera requirement, starting tomorrow evening.
	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	production := &model.Production{
		Name:        "Evening News Special",
		Date:        start.Truncate(24 * time.Hour),
		CallTime:    start.Add(-90 * time.Minute),
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		Venue:       "Studio 4",
		Status:      model.StatusConfirmed,
		Notes:       "Seeded demo production",
		RequestedBy: users[model.RoleProducer+"/producer@crewcall.local"],
	}
	if err := productionRepo.Create(ctx, production); err != nil {
		log.Fatalf("Failed to create demo production: %v", err)
	}

	requirement := &model.Requirement{
		ProductionID:   production.ID,
		Role:           model.RoleOperator,
		Specialization: "camera",
		Count:          2,
		Notes:          "Two camera operators for the studio floor",
		CreatedBy:      users[model.RoleBookingOfficer+"/booking@crewcall.local"],
	}
	if err := requirementRepo.Create(ctx, requirement); err != nil {
		log.Fatalf("Failed to create demo requirement: %v", err)
	}

	log.Println("Seed completed successfully!")
}
