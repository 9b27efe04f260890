package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/issue-management/internal/auth"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlxDB.Close()

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"user_violations", "issue_reporters", "issue_upvoters", "issue_solutions", "issue_comments", "images", "issues", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)

		samples := []struct {
			Email      string
			Name       string
			Role       string
			Department string
		}{
			{"ana@mail.com", "Ana", "user", "engineering"},
			{"budi@mail.com", "Budi", "user", "facilities"},
			{"mira@mail.com", "Mira", "moderator", "engineering"},
			{"dewi@mail.com", "Dewi", "auth_level_one", "engineering"},
			{"eko@mail.com", "Eko", "auth_level_two", "facilities"},
			{"sari@mail.com", "Sari", "auth_level_three", "operations"},
		}

		for _, u := range samples {
			if !auth.Role(u.Role).Valid() {
				log.Fatalf("unknown role %q for sample user %s", u.Role, u.Email)
			}

			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Println("user already exists:", u.Email)
				continue
			}

			err := db.Exec(
				"INSERT INTO users (email, name, password_hash, role, department, is_disabled, created_at, updated_at) VALUES (?, ?, ?, ?, ?, false, now(), now())",
				u.Email, u.Name, string(hash), u.Role, u.Department,
			).Error
			if err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Printf("Seeded %s user: %s (%s)\n", u.Role, u.Email, u.Department)
		}

		fmt.Println("Seeding complete. All sample users share the password: password")
	},
}
