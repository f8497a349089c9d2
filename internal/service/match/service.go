package match

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kindred-app/kindred-backend/internal/app"
	"github.com/kindred-app/kindred-backend/internal/cache"
	apperr "github.com/kindred-app/kindred-backend/internal/errors"
	"github.com/kindred-app/kindred-backend/internal/repository"
)

// Service is the Match engine: read access to matches and the unmatch
// cascade. The userA/userB positions carry no meaning; callers treat the pair
// as unordered.
type Service struct {
	appCtx  *app.AppContext
	matches *repository.MatchRepository
	convs   *repository.ConversationRepository
	users   *repository.UserRepository
}

// NewService creates the Match engine with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		matches: repository.NewMatchRepository(appCtx.DB),
		convs:   repository.NewConversationRepository(appCtx.DB),
		users:   repository.NewUserRepository(appCtx.DB),
	}
}

// UserRef is the public slice of a user carried in match views.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// View is one match annotated with both participants and the linked
// conversation.
type View struct {
	ID             string    `json:"id"`
	UserA          UserRef   `json:"userA"`
	UserB          UserRef   `json:"userB"`
	CreatedAt      time.Time `json:"createdAt"`
	ConversationID string    `json:"conversationId,omitempty"`
}

// List returns the user's matches, newest first, read through the matches
// cache.
func (s *Service) List(ctx context.Context, userID string) ([]View, error) {
	return cache.GetOrLoad(ctx, s.appCtx.RedisCache, s.appCtx.Logger,
		cache.MatchesKey(userID), cache.TTLMatches,
		func(ctx context.Context) ([]View, error) {
			rows, err := s.matches.ListForUser(ctx, userID)
			if err != nil {
				return nil, apperr.Map(err)
			}

			userIDs := make([]string, 0, len(rows)*2)
			matchIDs := make([]string, 0, len(rows))
			for _, m := range rows {
				userIDs = append(userIDs, m.UserAID, m.UserBID)
				matchIDs = append(matchIDs, m.ID)
			}

			usersByID, err := s.users.MapByIDs(ctx, userIDs)
			if err != nil {
				return nil, apperr.Map(err)
			}
			convByMatch, err := s.convs.ConversationIDsByMatchIDs(ctx, matchIDs)
			if err != nil {
				return nil, apperr.Map(err)
			}

			views := make([]View, 0, len(rows))
			for _, m := range rows {
				a := usersByID[m.UserAID]
				b := usersByID[m.UserBID]
				views = append(views, View{
					ID:             m.ID,
					UserA:          UserRef{ID: m.UserAID, Name: a.Name},
					UserB:          UserRef{ID: m.UserBID, Name: b.Name},
					CreatedAt:      m.CreatedAt,
					ConversationID: convByMatch[m.ID],
				})
			}
			return views, nil
		})
}

// Get returns a single match. NotFound covers both a missing ID and a caller
// who is not a participant.
func (s *Service) Get(ctx context.Context, userID, matchID string) (*View, error) {
	m, err := s.matches.GetForUser(ctx, matchID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("match not found")
		}
		return nil, apperr.Map(err)
	}

	usersByID, err := s.users.MapByIDs(ctx, []string{m.UserAID, m.UserBID})
	if err != nil {
		return nil, apperr.Map(err)
	}
	conv, err := s.convs.ByMatchID(ctx, m.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Map(err)
	}

	a := usersByID[m.UserAID]
	b := usersByID[m.UserBID]
	view := &View{
		ID:        m.ID,
		UserA:     UserRef{ID: m.UserAID, Name: a.Name},
		UserB:     UserRef{ID: m.UserBID, Name: b.Name},
		CreatedAt: m.CreatedAt,
	}
	if conv != nil {
		view.ConversationID = conv.ID
	}
	return view, nil
}

// Delete unmatches: the match, its conversation, and every message are hard
// deleted together, and both participants' match and conversation views are
// invalidated.
func (s *Service) Delete(ctx context.Context, userID, matchID string) error {
	m, err := s.matches.GetForUser(ctx, matchID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("match not found")
		}
		return apperr.Map(err)
	}

	if err := s.matches.DeleteCascade(ctx, m.ID); err != nil {
		return apperr.Map(err)
	}

	a, b := m.Participants()
	cache.Invalidate(ctx, s.appCtx.RedisCache, s.appCtx.Logger,
		cache.MatchesKey(a),
		cache.MatchesKey(b),
		cache.ConversationsKey(a),
		cache.ConversationsKey(b),
	)

	s.appCtx.Logger.Info("unmatched", "match_id", matchID, "by", userID)
	return nil
}
