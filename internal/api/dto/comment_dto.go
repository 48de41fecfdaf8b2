package dto

// CommentRequest payload for new comments.
type CommentRequest struct {
	ArticleID int64  `json:"article_id"`
	ParentID  int64  `json:"parent_id"`
	Content   string `json:"content"`
}

// CategoryRequest payload for category create/update.
type CategoryRequest struct {
	Name  string `json:"name"`
	Alias string `json:"alias"`
}
