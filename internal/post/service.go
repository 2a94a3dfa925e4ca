package post

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/latroca/latroca-api/internal/apperr"
	"github.com/latroca/latroca-api/internal/moderation"
	"github.com/latroca/latroca-api/internal/user"
)

// PostStore is the persistence dependency of the Service.
type PostStore interface {
	Insert(ctx context.Context, p *Post) error
	ByID(ctx context.Context, id string) (*Post, error)
	ByUserID(ctx context.Context, userID string) ([]Post, error)
	All(ctx context.Context) ([]Post, error)
	Replace(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id string) error
}

// UserStore is the subset of the user store the Service needs.
type UserStore interface {
	ByID(ctx context.Context, id string) (*user.User, error)
}

// Uploader pushes an image to external storage and returns its public URL.
type Uploader interface {
	UploadImage(ctx context.Context, data []byte, publicID string) (string, error)
}

// Moderator is the moderation facade dependency.
type Moderator interface {
	AnalyzeText(ctx context.Context, text string) moderation.Verdict
	AnalyzeImage(ctx context.Context, data []byte, contentType string) moderation.Verdict
}

// AuditPublisher records content rejections for admin review. Implementations
// must be fire-and-forget; a nil publisher disables auditing.
type AuditPublisher interface {
	PublishFlagged(ev moderation.FlaggedEvent)
}

// Photo is one uploaded image from a multipart request.
type Photo struct {
	Name        string
	ContentType string
	Data        []byte
}

// Request carries the fields for creating or updating a listing.
type Request struct {
	Title       string
	Description string
	Category    string
	Need        string
	Location    *user.Location
	Photos      []Photo
}

// Service orchestrates listing operations.
type Service struct {
	posts    PostStore
	users    UserStore
	uploader Uploader
	mod      Moderator
	audit    AuditPublisher
}

// NewService builds a Service. audit may be nil.
func NewService(posts PostStore, users UserStore, uploader Uploader, mod Moderator, audit AuditPublisher) *Service {
	return &Service{posts: posts, users: users, uploader: uploader, mod: mod, audit: audit}
}

// Create validates, moderates and stores a new listing owned by userID.
func (s *Service) Create(ctx context.Context, userID string, req Request) (*Response, error) {
	owner, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if owner == nil || !owner.Active() {
		return nil, apperr.Unauthorized("Usuario no encontrado o inactivo.")
	}

	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.moderate(ctx, userID, req); err != nil {
		return nil, err
	}

	urls, err := s.uploadPhotos(ctx, userID, req.Photos)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &Post{
		UserID:      owner.ID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		PhotoURLs:   urls,
		Location:    req.Location,
		Need:        req.Need,
		CreatedAt:   now,
		UpdatedAt:   now,
		Status:      StatusActive,
	}
	if err := s.posts.Insert(ctx, p); err != nil {
		return nil, err
	}

	return s.withOwner(p, owner), nil
}

// ByID returns one listing with its owner's public info.
func (s *Service) ByID(ctx context.Context, id string) (*Response, error) {
	p, err := s.posts.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Publicación no encontrada.")
	}

	owner, err := s.users.ByID(ctx, p.UserID.Hex())
	if err != nil {
		return nil, err
	}
	return s.withOwner(p, owner), nil
}

// ByUser returns all listings owned by userID.
func (s *Service) ByUser(ctx context.Context, userID string) ([]Response, error) {
	owner, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, apperr.NotFound("Usuario no encontrado.")
	}

	posts, err := s.posts.ByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Response, 0, len(posts))
	for i := range posts {
		out = append(out, *s.withOwner(&posts[i], owner))
	}
	return out, nil
}

// All returns every listing, each enriched with owner info. Owner lookups
// are memoized per call; a missing owner leaves the field empty rather than
// failing the whole listing page.
func (s *Service) All(ctx context.Context) ([]Response, error) {
	posts, err := s.posts.All(ctx)
	if err != nil {
		return nil, err
	}

	owners := make(map[string]*user.User, len(posts))
	out := make([]Response, 0, len(posts))
	for i := range posts {
		key := posts[i].UserID.Hex()
		owner, seen := owners[key]
		if !seen {
			owner, err = s.users.ByID(ctx, key)
			if err != nil {
				log.Printf("[post] owner lookup %s: %v", key, err)
			}
			owners[key] = owner
		}
		out = append(out, *s.withOwner(&posts[i], owner))
	}
	return out, nil
}

// Update validates, moderates and replaces an existing listing. Only the
// owner may update.
func (s *Service) Update(ctx context.Context, id, userID string, req Request) error {
	p, err := s.posts.ByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("Publicación no encontrada.")
	}
	if p.UserID.Hex() != userID {
		return apperr.Unauthorized("No tienes permiso para modificar esta publicación.")
	}

	if err := validate(req); err != nil {
		return err
	}
	if err := s.moderate(ctx, userID, req); err != nil {
		return err
	}

	urls, err := s.uploadPhotos(ctx, userID, req.Photos)
	if err != nil {
		return err
	}

	p.Title = req.Title
	p.Description = req.Description
	p.Category = req.Category
	p.PhotoURLs = urls
	p.Location = req.Location
	p.Need = req.Need

	return s.posts.Replace(ctx, p)
}

// Delete removes a listing. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	p, err := s.posts.ByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("Publicación no encontrada.")
	}
	if p.UserID.Hex() != userID {
		return apperr.Unauthorized("No tienes permiso para eliminar esta publicación.")
	}
	return s.posts.Delete(ctx, id)
}

func validate(req Request) error {
	if strings.TrimSpace(req.Title) == "" {
		return apperr.Validation("El título es obligatorio.")
	}
	if strings.TrimSpace(req.Description) == "" {
		return apperr.Validation("La descripción es obligatoria.")
	}
	if strings.TrimSpace(req.Category) == "" {
		return apperr.Validation("La categoría es obligatoria.")
	}
	if len(req.Photos) > MaxPhotos {
		return apperr.Validation(fmt.Sprintf("No se pueden subir más de %d imágenes por publicación.", MaxPhotos))
	}
	return nil
}

// moderate runs the full text pipeline on the description and the image
// model on every photo. Rejections are audited.
func (s *Service) moderate(ctx context.Context, userID string, req Request) error {
	if v := s.mod.AnalyzeText(ctx, req.Description); !v.Safe {
		s.flag(userID, "post.description", v.Category, req.Description)
		return apperr.Validation("La descripción contiene contenido inapropiado.")
	}
	for _, photo := range req.Photos {
		if v := s.mod.AnalyzeImage(ctx, photo.Data, photo.ContentType); !v.Safe {
			s.flag(userID, "post.photo", v.Category, photo.Name)
			return apperr.Validation("Una de las imágenes contiene contenido inapropiado.")
		}
	}
	return nil
}

func (s *Service) uploadPhotos(ctx context.Context, userID string, photos []Photo) ([]string, error) {
	urls := make([]string, 0, len(photos))
	for _, photo := range photos {
		url, err := s.uploader.UploadImage(ctx, photo.Data, fmt.Sprintf("%s_%s", userID, uuid.NewString()))
		if err != nil {
			return nil, fmt.Errorf("post: upload photo %s: %w", photo.Name, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *Service) flag(userID, field string, cat moderation.RiskCategory, excerpt string) {
	if s.audit == nil {
		return
	}
	s.audit.PublishFlagged(moderation.FlaggedEvent{
		UserID:   userID,
		Field:    field,
		Category: cat,
		Excerpt:  moderation.Excerpt(excerpt, 140),
		Ts:       time.Now().Unix(),
	})
}

func (s *Service) withOwner(p *Post, owner *user.User) *Response {
	resp := &Response{Post: *p}
	if owner != nil {
		resp.Owner = &OwnerInfo{
			UserID:        owner.ID.Hex(),
			Name:          owner.Name,
			ProfilePicURL: owner.ProfilePicURL,
		}
	}
	return resp
}
