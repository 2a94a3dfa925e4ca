package auth

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/latroca/latroca-api/internal/apperr"
	"github.com/latroca/latroca-api/internal/moderation"
	"github.com/latroca/latroca-api/internal/user"
)

const (
	minPasswordLen = 8

	msgInvalidCredentials = "Credenciales inválidas."
	msgAccountSuspended   = "Tu cuenta está inactiva o ha sido suspendida. Contacta con el administrador."
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserStore is the persistence dependency of the Service.
type UserStore interface {
	Create(ctx context.Context, u *user.User) error
	ByEmail(ctx context.Context, email string) (*user.User, error)
	ByID(ctx context.Context, id string) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
}

// Uploader pushes an image to external storage and returns its public URL.
type Uploader interface {
	UploadImage(ctx context.Context, data []byte, publicID string) (string, error)
}

// Moderator covers the two moderation paths auth flows use: the lexicon-only
// check for name/bio and the image model for profile pictures.
type Moderator interface {
	TextSafe(text string) bool
	AnalyzeImage(ctx context.Context, data []byte, contentType string) moderation.Verdict
}

// TokenVerifier validates a third-party ID token and returns its email.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// AuditPublisher records content rejections for admin review. May be nil.
type AuditPublisher interface {
	PublishFlagged(ev moderation.FlaggedEvent)
}

// Image is an uploaded profile picture.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// RegisterRequest carries a new account's fields.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
	Bio      string
	Location *user.Location
	Image    *Image
}

// UpdateProfileRequest carries profile edits. Nil/empty fields are left
// unchanged.
type UpdateProfileRequest struct {
	Name     string
	Bio      string
	Location *user.Location
	Image    *Image
}

// LoginResult is returned from both login paths.
type LoginResult struct {
	Token  string `json:"token"`
	Role   string `json:"rol"`
	UserID string `json:"userId"`
}

// Profile is the public view of a user account.
type Profile struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	ProfilePicURL string          `json:"profilePicUrl"`
	Bio           string          `json:"bio"`
	Role          string          `json:"role"`
	Location      *user.Location  `json:"location,omitempty"`
	Reputation    user.Reputation `json:"reputation"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Service implements the account flows.
type Service struct {
	users    UserStore
	uploader Uploader
	mod      Moderator
	tokens   *TokenIssuer
	denylist *Denylist
	google   TokenVerifier
	audit    AuditPublisher
}

// NewService builds a Service. google, denylist and audit may be nil; the
// corresponding features (Google sign-in, token revocation, audit trail)
// are then disabled.
func NewService(users UserStore, uploader Uploader, mod Moderator, tokens *TokenIssuer, denylist *Denylist, google TokenVerifier, audit AuditPublisher) *Service {
	return &Service{
		users:    users,
		uploader: uploader,
		mod:      mod,
		tokens:   tokens,
		denylist: denylist,
		google:   google,
		audit:    audit,
	}
}

// Register creates a new account. The profile image, if any, is moderated
// and uploaded first; name and bio pass the lexicon check.
func (s *Service) Register(ctx context.Context, req RegisterRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperr.Validation("El nombre es obligatorio.")
	}
	if strings.TrimSpace(req.Email) == "" {
		return apperr.Validation("El email es obligatorio.")
	}
	if req.Password == "" {
		return apperr.Validation("La contraseña es obligatoria.")
	}
	if len(req.Password) < minPasswordLen {
		return apperr.Validation("La contraseña debe tener al menos 8 caracteres.")
	}
	if !emailPattern.MatchString(req.Email) {
		return apperr.Validation("El formato del email es inválido.")
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		return apperr.Validation("El rol es obligatorio.")
	}
	if !user.ValidRole(role) {
		return apperr.Validation("Rol no existente. Válidos: ADMIN, USER.")
	}

	if !s.mod.TextSafe(req.Name) {
		s.flag("", "register.name", req.Name)
		return apperr.Validation("El nombre contiene lenguaje inapropiado.")
	}
	if !s.mod.TextSafe(req.Bio) {
		s.flag("", "register.bio", req.Bio)
		return apperr.Validation("La biografía contiene lenguaje inapropiado.")
	}

	existing, err := s.users.ByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Validation("El email ya está registrado.")
	}

	var picURL string
	if req.Image != nil && len(req.Image.Data) > 0 {
		if v := s.mod.AnalyzeImage(ctx, req.Image.Data, req.Image.ContentType); !v.Safe {
			s.flag("", "register.image", req.Image.Name)
			return apperr.Validation("La imagen de perfil no es apropiada.")
		}
		picURL, err = s.uploader.UploadImage(ctx, req.Image.Data, req.Email)
		if err != nil {
			return fmt.Errorf("auth: upload profile image: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}

	u := &user.User{
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  string(hash),
		Role:          role,
		Bio:           req.Bio,
		ProfilePicURL: picURL,
		Location:      req.Location,
		TermsAccepted: true,
		Status:        user.StatusActive,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if err == user.ErrDuplicateEmail {
			return apperr.Validation("El email ya está registrado.")
		}
		return err
	}
	return nil
}

// Login authenticates with email and password and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation("El email y la contraseña son obligatorios.")
	}

	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	return s.issue(u)
}

// LoginWithGoogle authenticates with a Google ID token. The account must
// already exist; sign-in never auto-registers.
func (s *Service) LoginWithGoogle(ctx context.Context, idToken string) (*LoginResult, error) {
	if s.google == nil {
		return nil, apperr.Unauthorized("El inicio de sesión con Google no está habilitado.")
	}

	email, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, apperr.Unauthorized("Token de Google inválido.")
	}

	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.Unauthorized("Usuario no registrado.")
	}
	return s.issue(u)
}

func (s *Service) issue(u *user.User) (*LoginResult, error) {
	if !u.Active() {
		return nil, apperr.Unauthorized(msgAccountSuspended)
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Role: u.Role, UserID: u.ID.Hex()}, nil
}

// Logout revokes the presented token for its remaining lifetime.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if s.denylist == nil {
		return nil
	}
	return s.denylist.Revoke(ctx, claims.ID, claims.Remaining())
}

// GetProfile returns the profile for userID.
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("El ID de usuario es obligatorio.")
	}

	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("Usuario no encontrado.")
	}

	p := &Profile{
		ID:            u.ID.Hex(),
		Name:          u.Name,
		Email:         u.Email,
		ProfilePicURL: u.ProfilePicURL,
		Bio:           u.Bio,
		Role:          u.Role,
		Location:      u.Location,
		CreatedAt:     u.CreatedAt,
	}
	if u.Reputation != nil {
		p.Reputation = *u.Reputation
	}
	return p, nil
}

// UpdateProfile applies profile edits for userID. Name and bio pass the
// lexicon check; a new image is moderated and uploaded.
func (s *Service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) error {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("Usuario no encontrado.")
	}

	if req.Name != "" {
		if !s.mod.TextSafe(req.Name) {
			s.flag(userID, "profile.name", req.Name)
			return apperr.Validation("El nombre contiene lenguaje inapropiado.")
		}
		u.Name = req.Name
	}
	if req.Bio != "" {
		if !s.mod.TextSafe(req.Bio) {
			s.flag(userID, "profile.bio", req.Bio)
			return apperr.Validation("La biografía contiene lenguaje inapropiado.")
		}
		u.Bio = req.Bio
	}
	if req.Location != nil {
		u.Location = req.Location
	}
	if req.Image != nil && len(req.Image.Data) > 0 {
		if v := s.mod.AnalyzeImage(ctx, req.Image.Data, req.Image.ContentType); !v.Safe {
			s.flag(userID, "profile.image", req.Image.Name)
			return apperr.Validation("La imagen de perfil no es apropiada.")
		}
		url, err := s.uploader.UploadImage(ctx, req.Image.Data, u.Email)
		if err != nil {
			return fmt.Errorf("auth: upload profile image: %w", err)
		}
		u.ProfilePicURL = url
	}

	return s.users.Update(ctx, u)
}

// ChangePassword replaces the user's password.
func (s *Service) ChangePassword(ctx context.Context, userID, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return apperr.Validation("La contraseña debe tener al menos 8 caracteres.")
	}

	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("Usuario no encontrado.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return s.users.Update(ctx, u)
}

// Deactivate suspends the account. The presented token is revoked so the
// session ends immediately; the record is retained for the deletion grace
// period.
func (s *Service) Deactivate(ctx context.Context, claims *Claims, reason string) error {
	u, err := s.users.ByID(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("Usuario no encontrado.")
	}
	if !u.Active() {
		return apperr.Validation("La cuenta ya está desactivada.")
	}

	u.Status = user.StatusDeactivated
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}
	if reason != "" {
		log.Printf("[auth] account %s deactivated: %s", claims.UserID, reason)
	}
	return s.Logout(ctx, claims)
}

func (s *Service) flag(userID, field, excerpt string) {
	if s.audit == nil {
		return
	}
	s.audit.PublishFlagged(moderation.FlaggedEvent{
		UserID:   userID,
		Field:    field,
		Category: moderation.CategoryOffensive,
		Excerpt:  moderation.Excerpt(excerpt, 140),
		Ts:       time.Now().Unix(),
	})
}
