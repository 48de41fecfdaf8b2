package events

import (
	"time"

	"github.com/spec-kit/blog-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventArticleLiked     EventType = "article_liked"
	EventArticleCollected EventType = "article_collected"
	EventCommentAdded     EventType = "comment_added"
	EventCommentLiked     EventType = "comment_liked"
	EventUserFollowed     EventType = "user_followed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TogglePayload describes a like/collect/follow state change.
type TogglePayload struct {
	Kind     domain.ToggleKind `json:"-"`
	KindName string            `json:"kind"`
	ObjectID int64             `json:"object_id"`
	Active   bool              `json:"active"`
	Count    int               `json:"count"`
}

// CommentAddedPayload describes a newly created comment.
type CommentAddedPayload struct {
	CommentID int64  `json:"comment_id"`
	ArticleID int64  `json:"article_id"`
	ParentID  int64  `json:"parent_id,omitempty"`
	Preview   string `json:"preview"`
}
