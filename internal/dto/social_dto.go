package dto

import (
	"time"

	"github.com/google/uuid"
)

// PageQuery keeps limit and offset raw; each list applies its own page rule.
type PageQuery struct {
	Limit  string `query:"limit"`
	Offset string `query:"offset"`
}

type ConnectionResponse struct {
	UserId     uuid.UUID `json:"user_id"`
	Username   string    `json:"username"`
	ProfilePic string    `json:"profile_pic"`
	Verified   bool      `json:"verified"`
	Since      time.Time `json:"since"`
}

type ConnectionListResponse struct {
	UserId uuid.UUID            `json:"user_id"`
	Total  int64                `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
	Users  []ConnectionResponse `json:"users"`
}

type FollowResponse struct {
	UserId    uuid.UUID `json:"user_id"`
	Following bool      `json:"following"`
}

type FollowStatusResponse struct {
	UserId    uuid.UUID `json:"user_id"`
	IFollow   bool      `json:"i_follow"`
	FollowsMe bool      `json:"follows_me"`
}

type UserCardResponse struct {
	Id         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	ProfilePic string    `json:"profile_pic"`
	Verified   bool      `json:"verified"`
}

type FollowCountsResponse struct {
	UserId    uuid.UUID `json:"user_id"`
	Followers int64     `json:"followers"`
	Following int64     `json:"following"`
}
