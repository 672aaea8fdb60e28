package services

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"os"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/platform/envutil"
	"github.com/vintry/contentops-backend/internal/platform/logger"
	"github.com/vintry/contentops-backend/internal/platform/objectstore"
)

// AvatarService renders and stores user avatars: a generated initials disc
// for new accounts, or an uploaded photo cropped to a circle. The service
// mutates the user's avatar fields in memory; callers persist them.
type AvatarService interface {
	CreateAndUploadUserAvatar(ctx context.Context, user *types.User) error
	CreateAndUploadUserAvatarFromImage(ctx context.Context, user *types.User, raw []byte) error
	GenerateUserAvatar(user *types.User) (bytes.Buffer, error)
}

type avatarService struct {
	log           *logger.Logger
	bucketService objectstore.BucketService

	bgColors   []color.NRGBA
	colorByHex map[string]color.NRGBA

	fontFace font.Face
}

func NewAvatarService(baseLog *logger.Logger, bucketService objectstore.BucketService) (AvatarService, error) {
	serviceLog := baseLog.With("service", "AvatarService")

	colorsJSONPath := envutil.Str("AVATAR_COLORS_JSON_PATH", "configs/avatar_colors.json")
	serviceLog.Info("Loading avatar colors", "path", colorsJSONPath)

	bgColors, err := loadColorsFromFile(colorsJSONPath)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar colors: %w", err)
	}
	if len(bgColors) == 0 {
		return nil, fmt.Errorf("avatar colors list is empty")
	}

	colorByHex := make(map[string]color.NRGBA, len(bgColors))
	for _, c := range bgColors {
		colorByHex[strings.ToUpper(nrgbaToHex(c))] = c
	}

	fontPath := strings.TrimSpace(os.Getenv("AVATAR_FONT"))
	if fontPath == "" {
		return nil, fmt.Errorf("env var AVATAR_FONT is empty")
	}
	serviceLog.Info("Loading avatar font", "font", fontPath)

	face, err := loadFontFace(fontPath, 206)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}

	return &avatarService{
		log:           serviceLog,
		bucketService: bucketService,
		bgColors:      bgColors,
		colorByHex:    colorByHex,
		fontFace:      face,
	}, nil
}

func (as *avatarService) CreateAndUploadUserAvatar(ctx context.Context, user *types.User) error {
	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("user required")
	}

	buf, err := as.GenerateUserAvatar(user)
	if err != nil {
		return err
	}
	return as.swapAvatarObject(ctx, user, buf.Bytes())
}

func (as *avatarService) CreateAndUploadUserAvatarFromImage(ctx context.Context, user *types.User, raw []byte) error {
	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("user required")
	}

	processed, err := processUploadedAvatar(raw, 512)
	if err != nil {
		return err
	}
	return as.swapAvatarObject(ctx, user, processed.Bytes())
}

// swapAvatarObject uploads the new image under a versioned key before the old
// object is touched, so a failed upload never leaves the user without an
// avatar. Keys are versioned because CDNs ignore query params on purge.
func (as *avatarService) swapAvatarObject(ctx context.Context, user *types.User, png []byte) error {
	oldKey := strings.TrimSpace(user.AvatarBucketKey)
	newKey := fmt.Sprintf("user_avatar/%s/%d.png", user.ID.String(), time.Now().UnixNano())

	if err := as.bucketService.UploadFile(ctx, objectstore.BucketCategoryAvatar, newKey, bytes.NewReader(png)); err != nil {
		return fmt.Errorf("upload user avatar: %w", err)
	}

	user.AvatarBucketKey = newKey
	user.AvatarURL = as.bucketService.GetPublicURL(objectstore.BucketCategoryAvatar, newKey)

	if oldKey != "" && oldKey != newKey {
		if err := as.bucketService.DeleteFile(ctx, objectstore.BucketCategoryAvatar, oldKey); err != nil {
			as.log.Warn("failed to delete old avatar (ignored)", "old_key", oldKey, "error", err)
		}
	}
	return nil
}

func (as *avatarService) GenerateUserAvatar(user *types.User) (bytes.Buffer, error) {
	const size = 512
	as.ensureUserAvatarColor(user)

	dc := gg.NewContext(size, size)

	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	base := as.pickColor(user.AvatarColor)
	dc.SetColor(base)
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	initials := computeInitials(user.FirstName, user.LastName)

	dc.SetFontFace(as.fontFace)
	tw, th := dc.MeasureString(initials)
	cx, cy := float64(size)/2, float64(size)/2

	dc.SetColor(color.White)
	dc.DrawString(initials, cx-(tw/2)+5, cy+(th/2)-10)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("encode PNG: %w", err)
	}
	return buf, nil
}

func processUploadedAvatar(raw []byte, size int) (bytes.Buffer, error) {
	var out bytes.Buffer

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("decode image: %w", err)
	}

	// Center-crop to square
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()
	side := w
	if h < w {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Src)

	// Resize to NxN
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	// Circle clip
	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(dst, 0, 0)

	if err := dc.EncodePNG(&out); err != nil {
		return out, fmt.Errorf("encode png: %w", err)
	}

	return out, nil
}

// -------------------- Color helpers --------------------

func (as *avatarService) ensureUserAvatarColor(user *types.User) {
	if strings.TrimSpace(user.AvatarColor) != "" {
		n := normalizeHex(user.AvatarColor)
		if n != "" {
			if _, ok := as.colorByHex[n]; ok {
				user.AvatarColor = n
				return
			}
		}
	}

	pick := as.bgColors[rand.Intn(len(as.bgColors))]
	user.AvatarColor = nrgbaToHex(pick)
}

func (as *avatarService) pickColor(hexStr string) color.NRGBA {
	h := normalizeHex(hexStr)
	if h != "" {
		if c, ok := as.colorByHex[h]; ok {
			return c
		}
	}
	return as.bgColors[rand.Intn(len(as.bgColors))]
}

func normalizeHex(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	s = strings.ToUpper(s)
	if len(s) != 7 {
		return ""
	}
	if _, _, _, err := parseHexRGB(s); err != nil {
		return ""
	}
	return s
}

func parseHexRGB(s string) (r, g, b uint8, err error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("expected 6 hex chars")
	}

	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid hex")
	}
	return raw[0], raw[1], raw[2], nil
}

func nrgbaToHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// -------------------- Misc helpers --------------------

func computeInitials(first, last string) string {
	fInit := "?"
	if len(first) > 0 {
		fInit = strings.ToUpper(first[:1])
	}
	lInit := "?"
	if len(last) > 0 {
		lInit = strings.ToUpper(last[:1])
	}
	return fInit + lInit
}

func loadColorsFromFile(jsonPath string) ([]color.NRGBA, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read file error: %w", err)
	}
	var colors []color.NRGBA
	if err := json.Unmarshal(data, &colors); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %w", err)
	}
	return colors, nil
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parse TTF: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return face, nil
}
