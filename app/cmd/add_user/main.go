package main

import (
	"flag"
	"fmt"

	"github.com/TeachingLabHQ/tl-form-hub/app/config"
	"github.com/TeachingLabHQ/tl-form-hub/app/database"
	"github.com/TeachingLabHQ/tl-form-hub/app/models"
	"github.com/joho/godotenv"
)

func main() {
	email := flag.String("email", "", "user email (required)")
	firstName := flag.String("first-name", "", "first name")
	lastName := flag.String("last-name", "", "last name")
	password := flag.String("password", "", "initial password (required)")
	tier := flag.String("tier", "", "pay tier, e.g. Tier 1")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Println("Usage: add_user -email <email> -password <password> [-first-name ...] [-last-name ...] [-tier ...]")
		return
	}

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		return
	}
	defer cfg.DB.Close()

	user := &models.User{
		FirstName: *firstName,
		LastName:  *lastName,
		Email:     *email,
		Password:  *password,
		Tier:      *tier,
	}

	if err := database.CreateUser(cfg.DB, user); err != nil {
		fmt.Printf("Error creating user: %v\n", err)
		return
	}

	fmt.Printf("User created successfully: %s %s (%s)\n", user.FirstName, user.LastName, user.Email)
}
