package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
	"github.com/pwanystay/pwanystay-api/internal/config"
	"golang.org/x/crypto/bcrypt"
)

type stay struct {
	title    string
	location string
	price    float64
	tags     string
	image    string
}

var demoStays = []stay{
	{"Beachfront Villa in Diani", "Diani", 4500, `["Beachfront", "Ferry-free"]`,
		"https://images.unsplash.com/photo-1499793983690-e29da59ef1c2?auto=format&fit=crop&w=800&q=80"},
	{"Cozy Cottage in Watamu", "Watamu", 2800, `["Walkable"]`,
		"https://images.unsplash.com/photo-1520250497591-112f2f40a3f4?auto=format&fit=crop&w=800&q=80"},
	{"Mombasa Old Town Apartment", "Mombasa", 2200, `["Ferry-free", "Walkable"]`,
		"https://images.unsplash.com/photo-1502672260266-1c1ef2d93688?auto=format&fit=crop&w=800&q=80"},
	{"Kilifi Waterfront House", "Kilifi", 3500, `["Beachfront"]`,
		"https://images.unsplash.com/photo-1512917774080-9991f1c4c750?auto=format&fit=crop&w=800&q=80"},
}

func main() {
	dir := flag.String("dir", "migrations", "directory containing .sql migration files")
	seed := flag.Bool("seed", false, "insert demo data after migrating")
	flag.Parse()

	cfg := config.LoadConfig()

	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}
	defer conn.Close()

	if err := runMigrations(conn, *dir); err != nil {
		log.Fatalf("❌ Migration error: %v", err)
	}
	log.Println("✅ Migrations applied successfully")

	if *seed {
		if err := runSeed(conn); err != nil {
			log.Fatalf("❌ Seeding error: %v", err)
		}
		log.Println("✅ Seeding completed")
	}
}

// runMigrations applies each .sql file in order, once, tracked in the
// migrations table. Each file runs in its own transaction.
func runMigrations(conn *sql.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS migrations (
		filename TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	applied := map[string]bool{}
	rows, err := conn.Query(`SELECT filename FROM migrations`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		applied[name] = true
	}
	rows.Close()

	for _, file := range files {
		if applied[file] {
			log.Printf("Skipping already-applied migration %s", file)
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return err
		}

		log.Printf("Applying migration %s", file)
		tx, err := conn.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(raw)); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply %s: %w", file, err)
		}
		if _, err := tx.Exec(`INSERT INTO migrations(filename) VALUES ($1) ON CONFLICT DO NOTHING`, file); err != nil {
			tx.Rollback()
			return fmt.Errorf("record %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// runSeed inserts the demo coastal stays, two demo users and the admin
// account.
func runSeed(conn *sql.DB) error {
	for _, s := range demoStays {
		imagesJSON := fmt.Sprintf(`["%s"]`, s.image)
		if _, err := conn.Exec(
			`INSERT INTO resources (name, location, price, tags, images) VALUES ($1, $2, $3, $4::jsonb, $5::jsonb)`,
			s.title, s.location, s.price, s.tags, imagesJSON); err != nil {
			return fmt.Errorf("insert %q: %w", s.title, err)
		}
		log.Printf("Inserted: %s", s.title)
	}

	for _, email := range []string{"user1@example.com", "user2@example.com"} {
		hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := conn.Exec(
			`INSERT INTO users (email, password) VALUES ($1, $2) ON CONFLICT (email) DO NOTHING`,
			email, string(hashed)); err != nil {
			return fmt.Errorf("insert user %q: %w", email, err)
		}
		log.Printf("Inserted user: %s", email)
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@pwanystay.com"
	}
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := conn.Exec(`INSERT INTO admins (email, password) VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET password = EXCLUDED.password`,
		adminEmail, string(hashed)); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Printf("Admin seeded/updated: %s", adminEmail)

	return nil
}
