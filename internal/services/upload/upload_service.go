package upload

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/pwanystay/pwanystay-api/internal/config"
	"github.com/pwanystay/pwanystay-api/internal/utils"
)

// MaxUploadSize caps a single image file.
const MaxUploadSize = 5 << 20 // 5MB

// ErrFileTooLarge reports an image over MaxUploadSize.
var ErrFileTooLarge = errors.New("file exceeds the 5MB limit")

// UploadService sends listing images to Cloudinary. The provider is opaque
// to the rest of the system: callers hand over a file and get back a URL.
type UploadService struct {
	cfg          *config.Config
	cld          *cloudinary.Cloudinary
	uploadFolder string
}

// NewUploadService creates the service. Missing Cloudinary credentials
// disable uploads rather than failing startup.
func NewUploadService(cfg *config.Config) *UploadService {
	s := &UploadService{cfg: cfg, uploadFolder: cfg.CloudinaryConfig.UploadFolder}

	cc := cfg.CloudinaryConfig
	if cc.CloudName == "" || cc.APIKey == "" || cc.APISecret == "" {
		log.Println("⚠️ Cloudinary not configured, image uploads disabled")
		return s
	}
	cld, err := cloudinary.NewFromParams(cc.CloudName, cc.APIKey, cc.APISecret)
	if err != nil {
		log.Printf("⚠️ Cloudinary init failed, image uploads disabled: %v", err)
		return s
	}
	s.cld = cld
	return s
}

// UploadImage sends one multipart file to Cloudinary and returns its secure
// URL. Images are converted to webp at a consistent 3:2 crop for the
// property grid.
func (s *UploadService) UploadImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if s.cld == nil {
		return "", errors.New("upload provider not configured")
	}
	if fh.Size > MaxUploadSize {
		return "", ErrFileTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	publicID := fmt.Sprintf("prop-%d-%s", time.Now().UnixMilli(), strings.Split(uuid.NewString(), "-")[0])
	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         s.uploadFolder,
		PublicID:       publicID,
		Format:         "webp",
		Transformation: "c_fill,g_auto,h_800,w_1200/f_auto,q_auto",
	})
	if err != nil {
		return "", err
	}
	return resp.SecureURL, nil
}

// UploadSingle handles a one-image multipart upload.
func (s *UploadService) UploadSingle(c fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "No file uploaded")
	}

	url, err := s.UploadImage(c.Context(), fh)
	if errors.Is(err, ErrFileTooLarge) {
		return utils.Fail(c, fiber.StatusBadRequest, "File exceeds the 5MB limit")
	}
	if err != nil {
		log.Printf("uploadSingle: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "Upload failed")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"url": url}, "File uploaded")
}

// UploadMultiple handles a multi-image multipart upload, capped at 12
// files.
func (s *UploadService) UploadMultiple(c fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["images"]) == 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "No files uploaded")
	}
	files := form.File["images"]
	if len(files) > 12 {
		return utils.Fail(c, fiber.StatusBadRequest, "Too many files (max 12)")
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := s.UploadImage(c.Context(), fh)
		if errors.Is(err, ErrFileTooLarge) {
			return utils.Fail(c, fiber.StatusBadRequest, "File exceeds the 5MB limit")
		}
		if err != nil {
			log.Printf("uploadMultiple: %v", err)
			return utils.Fail(c, fiber.StatusInternalServerError, "Upload failed")
		}
		urls = append(urls, url)
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"urls": urls}, "Files uploaded")
}

// GenerateUploadParams returns signed parameters for a direct
// browser-to-Cloudinary upload.
func (s *UploadService) GenerateUploadParams(c fiber.Ctx) error {
	groupID := c.Query("group_id")
	if groupID == "" {
		groupID = uuid.New().String()
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	params := map[string]string{
		"timestamp": timestamp,
		"folder":    s.uploadFolder,
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"timestamp":  timestamp,
		"signature":  s.GenerateSignature(params),
		"api_key":    s.cfg.CloudinaryConfig.APIKey,
		"cloud_name": s.cfg.CloudinaryConfig.CloudName,
		"folder":     s.uploadFolder,
		"group_id":   groupID,
	}, "Upload parameters generated")
}

// GenerateSignature builds the Cloudinary request signature: sorted
// key=value pairs joined with & and hashed with the API secret appended.
func (s *UploadService) GenerateSignature(params map[string]string) string {
	var keys []string
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var signParts []string
	for _, k := range keys {
		signParts = append(signParts, fmt.Sprintf("%s=%s", k, params[k]))
	}
	signatureString := strings.Join(signParts, "&") + s.cfg.CloudinaryConfig.APISecret

	h := sha1.New()
	h.Write([]byte(signatureString))
	return hex.EncodeToString(h.Sum(nil))
}
