package httpapi

import (
	"context"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/latroca/latroca-api/internal/apperr"
	"github.com/latroca/latroca-api/internal/auth"
	"github.com/latroca/latroca-api/internal/moderation"
	"github.com/latroca/latroca-api/internal/notification"
	"github.com/latroca/latroca-api/internal/post"
	"github.com/latroca/latroca-api/internal/review"
	"github.com/latroca/latroca-api/internal/user"
)

// Uploaded files are read fully into memory before moderation; cap them.
const maxImageBytes = 10 << 20

var errImageTooLarge = apperr.Validation("La imagen supera el tamaño máximo de 10 MB.")

// AuthService is the account flows surface the handlers call.
type AuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) error
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*auth.LoginResult, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	GetProfile(ctx context.Context, userID string) (*auth.Profile, error)
	UpdateProfile(ctx context.Context, userID string, req auth.UpdateProfileRequest) error
	ChangePassword(ctx context.Context, userID, newPassword string) error
	Deactivate(ctx context.Context, claims *auth.Claims, reason string) error
}

// PostService is the listing flows surface.
type PostService interface {
	Create(ctx context.Context, userID string, req post.Request) (*post.Response, error)
	ByID(ctx context.Context, id string) (*post.Response, error)
	ByUser(ctx context.Context, userID string) ([]post.Response, error)
	All(ctx context.Context) ([]post.Response, error)
	Update(ctx context.Context, id, userID string, req post.Request) error
	Delete(ctx context.Context, id, userID string) error
}

// Moderator exposes the standalone moderation endpoints.
type Moderator interface {
	AnalyzeText(ctx context.Context, text string) moderation.Verdict
	AnalyzeImage(ctx context.Context, data []byte, contentType string) moderation.Verdict
}

// ChatNotifier delivers chat push notifications. May be nil when FCM is not
// configured.
type ChatNotifier interface {
	SendChatNotification(ctx context.Context, m notification.ChatMessage) error
}

// UserDirectory is the user-store surface the chat and admin handlers need.
type UserDirectory interface {
	ByID(ctx context.Context, id string) (*user.User, error)
	All(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, u *user.User) error
	SetFCMToken(ctx context.Context, id, token string) error
	ClearFCMToken(ctx context.Context, id string) error
}

// FlagLister reads the flagged-content review queue. May be nil when the
// audit trail is disabled.
type FlagLister interface {
	Recent(ctx context.Context, limit int) ([]review.Flag, error)
}

// TextChecker is the lexicon-only fast path used for chat message text.
type TextChecker interface {
	TextSafe(text string) bool
}

// API bundles the handler dependencies.
type API struct {
	Auth     AuthService
	Posts    PostService
	Mod      Moderator
	Check    TextChecker
	Users    UserDirectory
	Flags    FlagLister
	Notifier ChatNotifier
}

// formLocation reads the optional location form fields. Returns nil when the
// form carries no location at all.
func formLocation(c *gin.Context) *user.Location {
	lat := c.PostForm("latitude")
	lon := c.PostForm("longitude")
	manual := c.PostForm("manualLocation")
	if lat == "" && lon == "" && manual == "" {
		return nil
	}

	loc := &user.Location{Manual: manual}
	if v, err := strconv.ParseFloat(lat, 64); err == nil {
		loc.Latitude = v
	}
	if v, err := strconv.ParseFloat(lon, 64); err == nil {
		loc.Longitude = v
	}
	return loc
}

// readUpload loads one multipart file into memory.
func readUpload(fh *multipart.FileHeader) (name, contentType string, data []byte, err error) {
	f, err := fh.Open()
	if err != nil {
		return "", "", nil, err
	}
	defer f.Close()

	data, err = io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return "", "", nil, err
	}
	if len(data) > maxImageBytes {
		return "", "", nil, errImageTooLarge
	}
	return fh.Filename, fh.Header.Get("Content-Type"), data, nil
}
