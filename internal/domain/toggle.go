package domain

import "time"

// ToggleKind selects which interaction table and counter a toggle operates
// on. The set is closed; dispatch is by exhaustive switch.
type ToggleKind int

const (
	KindArticleLike ToggleKind = iota
	KindArticleCollect
	KindCommentLike
	KindUserFollow
)

func (k ToggleKind) String() string {
	switch k {
	case KindArticleLike:
		return "article_like"
	case KindArticleCollect:
		return "article_collect"
	case KindCommentLike:
		return "comment_like"
	case KindUserFollow:
		return "user_follow"
	}
	return "unknown"
}

// ToggleRecord is one membership row per (subject, object) pair. The pair is
// unique per kind; state oscillates through Deleted instead of insert/delete
// churn, so CreatedAt always reflects the first interaction.
type ToggleRecord struct {
	ID        int64
	SubjectID int64
	ObjectID  int64
	Deleted   bool
	CreatedAt time.Time
}

// ToggleResult reports the state after a toggle and the object's refreshed
// counter. Count is zero for kinds without a denormalized counter.
type ToggleResult struct {
	Active bool `json:"active"`
	Count  int  `json:"count"`
}
