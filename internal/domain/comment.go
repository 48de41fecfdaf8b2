package domain

import "time"

// Comment is soft-deleted rather than removed so replies keep their parent
// and like records keep their target.
type Comment struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	UserID    int64     `json:"user_id"`
	ParentID  int64     `json:"parent_id"`
	Content   string    `json:"content"`
	LikeCount int       `json:"like_count"`
	Deleted   bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
