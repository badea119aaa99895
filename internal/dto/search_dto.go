package dto

import (
	"github.com/google/uuid"
)

type SearchUserResult struct {
	Id         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Bio        string    `json:"bio"`
	ProfilePic string    `json:"profile_pic"`
	Tier       int       `json:"tier,omitempty"`
	Score      int       `json:"score,omitempty"`
}

type SearchPostResult struct {
	PostResponse
	Tier  int `json:"tier,omitempty"`
	Score int `json:"score,omitempty"`
}

type SearchResponse struct {
	Kind   string             `json:"kind"`
	Query  string             `json:"query"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
	Users  []SearchUserResult `json:"users"`
	Posts  []SearchPostResult `json:"posts"`
}

type SuggestResponse struct {
	Query string             `json:"query"`
	Users []SearchUserResult `json:"users"`
	Posts []SearchPostResult `json:"posts"`
}

// SearchQuery is bound from the query string; limit and offset stay raw so
// each surface can apply its own page rule.
type SearchQuery struct {
	Q      string `query:"q"`
	Limit  string `query:"limit"`
	Offset string `query:"offset"`
}
