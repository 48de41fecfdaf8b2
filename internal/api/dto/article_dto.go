package dto

import "github.com/spec-kit/blog-service/internal/domain"

// ArticleRequest payload for create/update.
type ArticleRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CoverImg   string `json:"cover_img"`
	State      string `json:"state"`
	CategoryID int64  `json:"category_id"`
}

// Validate performs shallow field checks.
func (r ArticleRequest) Validate() string {
	switch {
	case r.Title == "":
		return "title required"
	case len(r.Title) > 100:
		return "title too long"
	case r.Content == "":
		return "content required"
	case r.CategoryID == 0:
		return "category_id required"
	case !domain.ArticleState(r.State).Valid():
		return "state must be draft or published"
	}
	return ""
}

// PageResponse is the generic paged listing shape.
type PageResponse struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	List     any   `json:"list"`
}

// ToggleResponse reports a toggle outcome.
type ToggleResponse struct {
	Active bool `json:"active"`
	Count  int  `json:"count"`
}
