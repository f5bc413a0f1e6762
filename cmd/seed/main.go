// Seed script for development databases
// cmd/seed/main.go
package main

import (
	"lab-request-api/config"
	"lab-request-api/models"
	"lab-request-api/utils"
	"log"
	"time"

	"github.com/joho/godotenv"
)

type seedUser struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string
}

type seedAnalysisType struct {
	Code        string
	Name        string
	Description string
	SortOrder   int
}

var seedUsers = []seedUser{
	{"admin", "admin@lab.local", "admin123", "Lab Administrator", models.RoleAdmin},
	{"chemist1", "chemist1@lab.local", "chemist123", "Alice Nakrop", models.RoleChemist},
	{"chemist2", "chemist2@lab.local", "chemist123", "Bob Srisuwan", models.RoleChemist},
	{"analyst1", "analyst1@lab.local", "analyst123", "Carol Thongchai", models.RoleAnalyst},
	{"analyst2", "analyst2@lab.local", "analyst123", "Dan Phromma", models.RoleAnalyst},
}

var seedAnalysisTypes = []seedAnalysisType{
	{"HPLC", "High-Performance Liquid Chromatography", "Purity and assay by HPLC-UV", 1},
	{"GCMS", "Gas Chromatography-Mass Spectrometry", "Volatile impurity identification", 2},
	{"LCMS", "Liquid Chromatography-Mass Spectrometry", "Mass confirmation and impurity profiling", 3},
	{"NMR", "Nuclear Magnetic Resonance", "1H/13C structure confirmation", 4},
	{"IR", "Infrared Spectroscopy", "Functional group identification", 5},
	{"UV_VIS", "UV-Visible Spectroscopy", "Absorbance profile", 6},
	{"CHNS", "Elemental Analysis", "C/H/N/S combustion analysis", 7},
	{"TLC", "Thin-Layer Chromatography", "Reaction monitoring and purity screen", 8},
	{"PREP_HPLC", "Preparative HPLC", "Purification of target compound", 9},
	{"KF", "Karl Fischer Titration", "Water content determination", 10},
}

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()
	config.MigrateDB()

	now := time.Now()

	// Seed accounts (skip any username that already exists)
	for _, su := range seedUsers {
		var existing models.User
		if err := config.DB.Where("username = ?", su.Username).First(&existing).Error; err == nil {
			log.Printf("User %s already exists, skipping\n", su.Username)
			continue
		}

		hashed, err := utils.HashPassword(su.Password)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", su.Username, err)
		}

		user := models.User{
			Username: su.Username,
			Email:    su.Email,
			Password: hashed,
			FullName: su.FullName,
			Role:     su.Role,
			IsActive: true,
			CreateAt: &now,
			UpdateAt: &now,
		}
		if err := config.DB.Create(&user).Error; err != nil {
			log.Fatalf("Failed to create user %s: %v", su.Username, err)
		}
		log.Printf("Created %s user %s\n", su.Role, su.Username)
	}

	// Seed the analysis type catalog (skip existing codes)
	for _, st := range seedAnalysisTypes {
		var existing models.AnalysisType
		if err := config.DB.Where("code = ?", st.Code).First(&existing).Error; err == nil {
			log.Printf("Analysis type %s already exists, skipping\n", st.Code)
			continue
		}

		description := st.Description
		at := models.AnalysisType{
			Code:        st.Code,
			Name:        st.Name,
			Description: &description,
			IsActive:    true,
			SortOrder:   st.SortOrder,
			CreateAt:    &now,
		}
		if err := config.DB.Create(&at).Error; err != nil {
			log.Fatalf("Failed to create analysis type %s: %v", st.Code, err)
		}
		log.Printf("Created analysis type %s\n", st.Code)
	}

	log.Println("Seed completed!")
}
