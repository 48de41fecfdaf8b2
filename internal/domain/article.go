package domain

import "time"

// ArticleState enumerates publication states.
type ArticleState string

const (
	ArticleStateDraft     ArticleState = "draft"
	ArticleStatePublished ArticleState = "published"
)

// Valid reports whether s is a known state.
func (s ArticleState) Valid() bool {
	return s == ArticleStateDraft || s == ArticleStatePublished
}

// Article carries denormalized like and collect counters so listings never
// join against the interaction tables.
type Article struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	CoverImg     string       `json:"cover_img"`
	State        ArticleState `json:"state"`
	CategoryID   int64        `json:"category_id"`
	AuthorID     int64        `json:"author_id"`
	LikeCount    int          `json:"like_count"`
	CollectCount int          `json:"collect_count"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Published reports whether the article is visible to readers.
func (a *Article) Published() bool {
	return a.State == ArticleStatePublished
}
