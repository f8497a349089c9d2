package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kindred-app/kindred-backend/internal/app"
	"github.com/kindred-app/kindred-backend/internal/cache"
	"github.com/kindred-app/kindred-backend/internal/db"
	apperr "github.com/kindred-app/kindred-backend/internal/errors"
	"github.com/kindred-app/kindred-backend/internal/repository"
)

// MaxPhotos caps the profile gallery.
const MaxPhotos = 6

// Service manages dating profiles, photos and prompts. Reads go through the
// profile cache; every mutation invalidates it.
type Service struct {
	appCtx   *app.AppContext
	profiles *repository.ProfileRepository
}

// NewService creates the profile service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		profiles: repository.NewProfileRepository(appCtx.DB),
	}
}

// View is a profile as served to clients.
type View struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	DOB         *time.Time   `json:"dob,omitempty"`
	Location    string       `json:"location,omitempty"`
	Gender      string       `json:"gender,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	Photos      []PhotoView  `json:"photos"`
	Prompts     []PromptView `json:"prompts"`
}

// PhotoView is one gallery entry.
type PhotoView struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// PromptView is one answered prompt.
type PromptView struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// UpdateInput carries the mutable profile fields; nil means "leave as is".
type UpdateInput struct {
	DOB      *time.Time
	Location *string
	Gender   *string
}

// Get returns the user's profile, served from cache when fresh.
func (s *Service) Get(ctx context.Context, userID string) (*View, error) {
	view, err := cache.GetOrLoad(ctx, s.appCtx.RedisCache, s.appCtx.Logger,
		cache.ProfileKey(userID), cache.TTLProfile,
		func(ctx context.Context) (View, error) {
			profile, err := s.profiles.GetByUserID(ctx, userID)
			if err != nil {
				return View{}, err
			}
			return buildView(profile), nil
		})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("profile not found")
		}
		return nil, apperr.Map(err)
	}
	return &view, nil
}

// Create initializes the user's profile. A second create conflicts.
func (s *Service) Create(ctx context.Context, userID string, in UpdateInput) (*View, error) {
	profile := &db.Profile{UserID: userID, DOB: in.DOB}
	if in.Location != nil {
		profile.Location = strings.TrimSpace(*in.Location)
	}
	if in.Gender != nil {
		profile.Gender = strings.TrimSpace(*in.Gender)
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("profile already exists")
		}
		return nil, apperr.Map(err)
	}

	s.invalidate(ctx, userID)
	view := buildView(profile)
	return &view, nil
}

// Update applies a partial edit to the user's profile.
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (*View, error) {
	fields := map[string]interface{}{}
	if in.DOB != nil {
		fields["dob"] = *in.DOB
	}
	if in.Location != nil {
		fields["location"] = strings.TrimSpace(*in.Location)
	}
	if in.Gender != nil {
		fields["gender"] = strings.TrimSpace(*in.Gender)
	}
	if len(fields) == 0 {
		return nil, apperr.Validation("no fields to update")
	}

	if err := s.profiles.Update(ctx, userID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("profile not found")
		}
		return nil, apperr.Map(err)
	}

	s.invalidate(ctx, userID)
	return s.reload(ctx, userID)
}

// AddPhoto appends a photo to the gallery, up to MaxPhotos. Position defaults
// to the end of the gallery when not given.
func (s *Service) AddPhoto(ctx context.Context, userID, url string, position *int) (*View, error) {
	if strings.TrimSpace(url) == "" {
		return nil, apperr.Validation("url is required")
	}

	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	count, err := s.profiles.CountPhotos(ctx, profile.ID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	if count >= MaxPhotos {
		return nil, apperr.Validation("photo limit reached")
	}

	pos := int(count)
	if position != nil {
		pos = *position
	}
	photo := &db.Photo{ProfileID: profile.ID, URL: strings.TrimSpace(url), Position: pos}
	if err := s.profiles.AddPhoto(ctx, photo); err != nil {
		return nil, apperr.Map(err)
	}

	s.invalidate(ctx, userID)
	return s.reload(ctx, userID)
}

// RemovePhoto deletes one of the user's own photos.
func (s *Service) RemovePhoto(ctx context.Context, userID, photoID string) (*View, error) {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.DeletePhoto(ctx, photoID, profile.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("photo not found")
		}
		return nil, apperr.Map(err)
	}

	s.invalidate(ctx, userID)
	return s.reload(ctx, userID)
}

// AddPrompt adds an answered prompt to the profile.
func (s *Service) AddPrompt(ctx context.Context, userID, question, answer string) (*View, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return nil, apperr.Validation("question and answer are required")
	}

	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	prompt := &db.Prompt{ProfileID: profile.ID, Question: question, Answer: answer}
	if err := s.profiles.AddPrompt(ctx, prompt); err != nil {
		return nil, apperr.Map(err)
	}

	s.invalidate(ctx, userID)
	return s.reload(ctx, userID)
}

// RemovePrompt deletes one of the user's own prompts.
func (s *Service) RemovePrompt(ctx context.Context, userID, promptID string) (*View, error) {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.DeletePrompt(ctx, promptID, profile.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("prompt not found")
		}
		return nil, apperr.Map(err)
	}

	s.invalidate(ctx, userID)
	return s.reload(ctx, userID)
}

func (s *Service) load(ctx context.Context, userID string) (*db.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("profile not found")
		}
		return nil, apperr.Map(err)
	}
	return profile, nil
}

func (s *Service) reload(ctx context.Context, userID string) (*View, error) {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := buildView(profile)
	return &view, nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	cache.Invalidate(ctx, s.appCtx.RedisCache, s.appCtx.Logger, cache.ProfileKey(userID))
}

func buildView(p *db.Profile) View {
	photos := make([]PhotoView, 0, len(p.Photos))
	for _, ph := range p.Photos {
		photos = append(photos, PhotoView{ID: ph.ID, URL: ph.URL, Position: ph.Position})
	}
	prompts := make([]PromptView, 0, len(p.Prompts))
	for _, pr := range p.Prompts {
		prompts = append(prompts, PromptView{ID: pr.ID, Question: pr.Question, Answer: pr.Answer})
	}
	return View{
		ID:          p.ID,
		UserID:      p.UserID,
		DOB:         p.DOB,
		Location:    p.Location,
		Gender:      p.Gender,
		CompletedAt: p.CompletedAt,
		Photos:      photos,
		Prompts:     prompts,
	}
}
