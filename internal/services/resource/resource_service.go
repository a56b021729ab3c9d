package resource

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/pwanystay/pwanystay-api/internal/config"
	"github.com/pwanystay/pwanystay-api/internal/models"
	"github.com/pwanystay/pwanystay-api/internal/services/upload"
	"github.com/pwanystay/pwanystay-api/internal/store"
	"github.com/pwanystay/pwanystay-api/internal/utils"
)

// ResourceService serves the listing API over the resilient store.
type ResourceService struct {
	cfg      *config.Config
	store    *store.Resilient
	uploader *upload.UploadService
}

// NewResourceService creates a new ResourceService.
func NewResourceService(cfg *config.Config, st *store.Resilient, uploader *upload.UploadService) *ResourceService {
	return &ResourceService{cfg: cfg, store: st, uploader: uploader}
}

// fallbackSuffix annotates messages for responses served by the local
// store. Diagnostic only, not a machine-checked field.
func fallbackSuffix(usedFallback bool) string {
	if usedFallback {
		return " (fallback)"
	}
	return ""
}

// ListResources returns active listings matching the query filters, newest
// first.
func (s *ResourceService) ListResources(c fiber.Ctx) error {
	f := store.Filter{
		Town:     c.Query("town"),
		Type:     c.Query("type"),
		Bedrooms: c.Query("bedrooms"),
		MinPrice: c.Query("minPrice"),
		MaxPrice: c.Query("maxPrice"),
		Search:   c.Query("search"),
	}

	records, usedFallback, err := s.store.List(c.Context(), f)
	if err != nil {
		log.Printf("listResources: both stores failed: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not fetch resources")
	}

	mapped := make([]models.Resource, 0, len(records))
	for _, rec := range records {
		mapped = append(mapped, models.MapResource(rec))
	}
	return utils.Success(c, fiber.StatusOK, mapped, "Resources fetched"+fallbackSuffix(usedFallback))
}

// GetResource returns one listing by id.
func (s *ResourceService) GetResource(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid id")
	}

	rec, usedFallback, err := s.store.Get(c.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return utils.Fail(c, fiber.StatusNotFound, "Resource not found"+fallbackSuffix(usedFallback))
	}
	if err != nil {
		log.Printf("getResource: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not fetch resource")
	}
	return utils.Success(c, fiber.StatusOK, models.MapResource(*rec), "Resource fetched"+fallbackSuffix(usedFallback))
}

// CreateResource creates a listing for the authenticated user. Accepts a
// multipart form (with an optional image file) or a JSON body.
func (s *ResourceService) CreateResource(c fiber.Ctx) error {
	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return utils.Fail(c, fiber.StatusUnauthorized, "Access token required")
	}

	n, errMsg := s.parsePayload(c)
	if errMsg != "" {
		return utils.Fail(c, fiber.StatusBadRequest, errMsg)
	}
	if n.Bedrooms == 0 {
		n.Bedrooms = 1
	}
	if n.Type == "" {
		n.Type = "Apartment"
	}
	n.UserID = &userID

	rec, usedFallback, err := s.store.Create(c.Context(), n)
	if err != nil {
		log.Printf("createResource: both stores failed: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not create resource")
	}
	return utils.Success(c, fiber.StatusCreated, models.MapResource(*rec), "Resource created"+fallbackSuffix(usedFallback))
}

// ListUserResources returns the authenticated user's listings. Primary
// store only: the fallback store has no owner concept, and a failure here
// is surfaced rather than masked with an empty result.
func (s *ResourceService) ListUserResources(c fiber.Ctx) error {
	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return utils.Fail(c, fiber.StatusUnauthorized, "Access token required")
	}

	records, err := s.store.ListByOwner(c.Context(), userID)
	if err != nil {
		log.Printf("listUserResources: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not fetch your listings")
	}

	mapped := make([]models.Resource, 0, len(records))
	for _, rec := range records {
		mapped = append(mapped, models.MapResource(rec))
	}
	return utils.Success(c, fiber.StatusOK, mapped, "User resources fetched")
}

// UpdateResource rewrites a listing scoped to the authenticated owner.
func (s *ResourceService) UpdateResource(c fiber.Ctx) error {
	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return utils.Fail(c, fiber.StatusUnauthorized, "Access token required")
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid id")
	}

	n, errMsg := s.parseJSONPayload(c)
	if errMsg != "" {
		return utils.Fail(c, fiber.StatusBadRequest, errMsg)
	}

	rec, err := s.store.Update(c.Context(), id, userID, n)
	if errors.Is(err, store.ErrNotFound) {
		return utils.Fail(c, fiber.StatusNotFound, "Resource not found or not owned by user")
	}
	if err != nil {
		log.Printf("updateResource: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Update failed")
	}
	return utils.Success(c, fiber.StatusOK, models.MapResource(*rec), "Resource updated")
}

// DeleteResource removes a listing scoped to the authenticated owner.
func (s *ResourceService) DeleteResource(c fiber.Ctx) error {
	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return utils.Fail(c, fiber.StatusUnauthorized, "Access token required")
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid id")
	}

	err = s.store.Delete(c.Context(), id, userID)
	if errors.Is(err, store.ErrNotFound) {
		return utils.Fail(c, fiber.StatusNotFound, "Resource not found or not owned by user")
	}
	if err != nil {
		log.Printf("deleteResource: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Delete failed")
	}
	return utils.Success(c, fiber.StatusOK, nil, "Resource deleted")
}

// parsePayload extracts resource fields from either a multipart form or a
// JSON body. Returns a message suitable for a 400 response when the payload
// is invalid.
func (s *ResourceService) parsePayload(c fiber.Ctx) (store.NewResource, string) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return s.parseFormPayload(c)
	}
	return s.parseJSONPayload(c)
}

func (s *ResourceService) parseJSONPayload(c fiber.Ctx) (store.NewResource, string) {
	var body struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       *float64        `json:"price"`
		Image       string          `json:"image"`
		Location    string          `json:"location"`
		Tags        json.RawMessage `json:"tags"`
		Images      []string        `json:"images"`
		Bedrooms    int             `json:"bedrooms"`
		Type        string          `json:"type"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return store.NewResource{}, "Invalid request body"
	}

	n := store.NewResource{
		Name:        strings.TrimSpace(body.Name),
		Description: body.Description,
		Price:       body.Price,
		Image:       body.Image,
		Location:    body.Location,
		Images:      body.Images,
		Bedrooms:    body.Bedrooms,
		Type:        body.Type,
	}
	if tags, ok := models.ParseTags(body.Tags); ok {
		n.Tags = tags
	}
	return validatePayload(n)
}

func (s *ResourceService) parseFormPayload(c fiber.Ctx) (store.NewResource, string) {
	n := store.NewResource{
		Name:        strings.TrimSpace(c.FormValue("name")),
		Description: c.FormValue("description"),
		Image:       c.FormValue("image"),
		Location:    c.FormValue("location"),
		Type:        c.FormValue("type"),
	}

	if v := c.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return n, "Invalid price"
		}
		n.Price = &price
	}
	if v := c.FormValue("bedrooms"); v != "" {
		beds, err := strconv.Atoi(v)
		if err != nil {
			return n, "Invalid bedrooms"
		}
		n.Bedrooms = beds
	}
	if v := c.FormValue("tags"); v != "" {
		n.Tags = models.SplitTags(v)
	}
	if form, err := c.MultipartForm(); err == nil {
		if imgs := form.Value["images"]; len(imgs) > 0 {
			n.Images = imgs
		}
	}

	// The uploaded file wins over an image URL field.
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		url, err := s.uploader.UploadImage(c.Context(), fh)
		if errors.Is(err, upload.ErrFileTooLarge) {
			return n, "File exceeds the 5MB limit"
		}
		if err != nil {
			log.Printf("createResource: image upload failed: %v", err)
			return n, "Image upload failed"
		}
		n.Image = url
	}

	return validatePayload(n)
}

func validatePayload(n store.NewResource) (store.NewResource, string) {
	if n.Name == "" {
		return n, "Invalid or missing `name` in request body"
	}
	if n.Price != nil && *n.Price < 0 {
		return n, "Price must be a non-negative number"
	}
	return n, ""
}
