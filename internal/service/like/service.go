package like

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kindred-app/kindred-backend/internal/app"
	"github.com/kindred-app/kindred-backend/internal/cache"
	"github.com/kindred-app/kindred-backend/internal/db"
	apperr "github.com/kindred-app/kindred-backend/internal/errors"
	"github.com/kindred-app/kindred-backend/internal/repository"
)

// Service is the Like engine: creation with duplicate defense, the incoming
// and sent list views, and the accept/skip transition that provisions a Match
// and its Conversation.
type Service struct {
	appCtx *app.AppContext
	likes  *repository.LikeRepository
	users  *repository.UserRepository
}

// NewService creates the Like engine with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		likes:  repository.NewLikeRepository(appCtx.DB),
		users:  repository.NewUserRepository(appCtx.DB),
	}
}

// UserRef is the public slice of a user carried in list views.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// View is one like as exposed to clients. FromUser is set on incoming views,
// ToUser on sent views.
type View struct {
	ID       string        `json:"id"`
	At       time.Time     `json:"at"`
	FromUser *UserRef      `json:"fromUser,omitempty"`
	ToUser   *UserRef      `json:"toUser,omitempty"`
	Comment  string        `json:"comment,omitempty"`
	Context  *ContextInput `json:"context,omitempty"`
	Status   db.LikeStatus `json:"status,omitempty"`
}

// SendInput is the payload for sending a like.
type SendInput struct {
	ToUserID string
	Comment  string
	Context  Context
}

// MatchResult is the match slice of a successful accept.
type MatchResult struct {
	ID           string    `json:"id"`
	UserAID      string    `json:"userAId"`
	UserBID      string    `json:"userBId"`
	SourceLikeID string    `json:"sourceLikeId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ConversationResult is the conversation slice of a successful accept.
type ConversationResult struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"matchId"`
	CreatedAt time.Time `json:"createdAt"`
}

// RespondResult is the outcome of respond: either a skip acknowledgement or
// the created match with its conversation.
type RespondResult struct {
	Skipped      bool                `json:"skipped"`
	Match        *MatchResult        `json:"match,omitempty"`
	Conversation *ConversationResult `json:"conversation,omitempty"`
}

// Send creates a pending like from fromUserID. A retried send after a prior
// success fails loudly with a conflict rather than silently succeeding, so
// callers can tell "already sent" from a transient failure.
func (s *Service) Send(ctx context.Context, fromUserID string, in SendInput) (*View, error) {
	if in.ToUserID == "" {
		return nil, apperr.Validation("toUserId is required")
	}
	if fromUserID == in.ToUserID {
		return nil, apperr.Validation("cannot like yourself")
	}
	if len(in.Comment) > 500 {
		return nil, apperr.Validation("comment too long (max 500 characters)")
	}

	target, err := s.users.GetByID(ctx, in.ToUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Map(err)
	}

	exists, err := s.likes.Exists(ctx, fromUserID, in.ToUserID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	if exists {
		return nil, apperr.Conflict("like already sent")
	}

	photoIndex, promptID := contextColumns(in.Context)
	row := &db.Like{
		FromUserID: fromUserID,
		ToUserID:   in.ToUserID,
		Comment:    in.Comment,
		PhotoIndex: photoIndex,
		PromptID:   promptID,
		Status:     db.LikeStatusPending,
	}
	if err := s.likes.Create(ctx, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the race against a concurrent send for the same pair
			return nil, apperr.Conflict("like already sent")
		}
		return nil, apperr.Map(err)
	}

	cache.Invalidate(ctx, s.appCtx.RedisCache, s.appCtx.Logger,
		cache.IncomingLikesKey(in.ToUserID),
		cache.SentLikesKey(fromUserID),
	)

	s.appCtx.Logger.Info("like sent", "like_id", row.ID, "from", fromUserID, "to", in.ToUserID)

	return &View{
		ID:      row.ID,
		At:      row.CreatedAt,
		ToUser:  &UserRef{ID: target.ID, Name: target.Name},
		Comment: row.Comment,
		Context: wireContext(row),
		Status:  row.Status,
	}, nil
}

// Incoming returns still-pending likes addressed to the user, newest first,
// read through the incoming_likes cache.
func (s *Service) Incoming(ctx context.Context, userID string) ([]View, error) {
	return cache.GetOrLoad(ctx, s.appCtx.RedisCache, s.appCtx.Logger,
		cache.IncomingLikesKey(userID), cache.TTLLikes,
		func(ctx context.Context) ([]View, error) {
			rows, err := s.likes.ListIncoming(ctx, userID)
			if err != nil {
				return nil, apperr.Map(err)
			}
			return s.buildViews(ctx, rows, true)
		})
}

// Sent returns every like the user has sent, all statuses, newest first, read
// through the sent_likes cache.
func (s *Service) Sent(ctx context.Context, userID string) ([]View, error) {
	return cache.GetOrLoad(ctx, s.appCtx.RedisCache, s.appCtx.Logger,
		cache.SentLikesKey(userID), cache.TTLLikes,
		func(ctx context.Context) ([]View, error) {
			rows, err := s.likes.ListSent(ctx, userID)
			if err != nil {
				return nil, apperr.Map(err)
			}
			return s.buildViews(ctx, rows, false)
		})
}

// Respond resolves a pending like addressed to userID. Accepting runs the
// atomic like -> match -> conversation transition; of two concurrent accepts
// exactly one wins, the other sees NotFound. Skipping is terminal as well.
func (s *Service) Respond(ctx context.Context, userID, likeID string, accept bool) (*RespondResult, error) {
	if !accept {
		liked, err := s.likes.Skip(ctx, likeID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("like not found")
			}
			return nil, apperr.Map(err)
		}

		cache.Invalidate(ctx, s.appCtx.RedisCache, s.appCtx.Logger,
			cache.IncomingLikesKey(userID),
			cache.SentLikesKey(liked.FromUserID),
		)
		s.appCtx.Logger.Info("like skipped", "like_id", likeID, "by", userID)
		return &RespondResult{Skipped: true}, nil
	}

	liked, match, conv, err := s.likes.Accept(ctx, likeID, userID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperr.NotFound("like not found")
		case errors.Is(err, repository.ErrAlreadyMatched):
			return nil, apperr.Conflict("already matched with this user")
		}
		return nil, apperr.Map(err)
	}

	// The accept may also have resolved a reciprocal pending like, so both
	// users' incoming and sent views are invalidated along with their matches.
	cache.Invalidate(ctx, s.appCtx.RedisCache, s.appCtx.Logger,
		cache.IncomingLikesKey(userID),
		cache.IncomingLikesKey(liked.FromUserID),
		cache.SentLikesKey(liked.FromUserID),
		cache.SentLikesKey(userID),
		cache.MatchesKey(userID),
		cache.MatchesKey(liked.FromUserID),
	)

	s.appCtx.Logger.Info("like accepted",
		"like_id", likeID, "match_id", match.ID, "conversation_id", conv.ID)

	return &RespondResult{
		Match: &MatchResult{
			ID:           match.ID,
			UserAID:      match.UserAID,
			UserBID:      match.UserBID,
			SourceLikeID: match.SourceLikeID,
			CreatedAt:    match.CreatedAt,
		},
		Conversation: &ConversationResult{
			ID:        conv.ID,
			MatchID:   conv.MatchID,
			CreatedAt: conv.CreatedAt,
		},
	}, nil
}

// RemoveIncoming deletes a still-pending like addressed to userID outright.
func (s *Service) RemoveIncoming(ctx context.Context, userID, likeID string) error {
	if err := s.likes.DeletePending(ctx, likeID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("like not found")
		}
		return apperr.Map(err)
	}

	cache.Invalidate(ctx, s.appCtx.RedisCache, s.appCtx.Logger,
		cache.IncomingLikesKey(userID))
	return nil
}

// buildViews annotates like rows with the peer's public fields in one batched
// user lookup. incoming selects the liker as peer, otherwise the recipient.
func (s *Service) buildViews(ctx context.Context, rows []db.Like, incoming bool) ([]View, error) {
	peerIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		if incoming {
			peerIDs = append(peerIDs, row.FromUserID)
		} else {
			peerIDs = append(peerIDs, row.ToUserID)
		}
	}

	usersByID, err := s.users.MapByIDs(ctx, peerIDs)
	if err != nil {
		return nil, apperr.Map(err)
	}

	views := make([]View, 0, len(rows))
	for i := range rows {
		row := rows[i]
		v := View{
			ID:      row.ID,
			At:      row.CreatedAt,
			Comment: row.Comment,
			Context: wireContext(&row),
		}
		if incoming {
			if peer, ok := usersByID[row.FromUserID]; ok {
				v.FromUser = &UserRef{ID: peer.ID, Name: peer.Name}
			}
		} else {
			if peer, ok := usersByID[row.ToUserID]; ok {
				v.ToUser = &UserRef{ID: peer.ID, Name: peer.Name}
			}
			v.Status = row.Status
		}
		views = append(views, v)
	}
	return views, nil
}
