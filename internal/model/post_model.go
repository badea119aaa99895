package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Caption      *string        `gorm:"type:text"`
	MediaURL     *string        `gorm:"type:text"`
	MediaType    *string        `gorm:"type:varchar(20)"`
	Emotion      string         `gorm:"type:varchar(20);not null;default:'neutral';index"`
	LikeCount    int            `gorm:"not null;default:0"`
	CommentCount int            `gorm:"not null;default:0"`
	ShareCount   int            `gorm:"not null;default:0"`
	SavedCount   int            `gorm:"not null;default:0"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`

	Tags []PostTag `gorm:"foreignKey:PostId;constraint:OnDelete:CASCADE"`
}

func (Post) TableName() string {
	return "posts"
}

// PostTag keeps a post's tags as ordered rows.
type PostTag struct {
	PostId   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position int       `gorm:"primaryKey;autoIncrement:false"`
	Tag      string    `gorm:"type:varchar(100);not null;index"`
}

func (PostTag) TableName() string {
	return "post_tags"
}

type PostLike struct {
	UserId    uuid.UUID `gorm:"type:uuid;primaryKey"`
	PostId    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PostLike) TableName() string {
	return "post_likes"
}

type PostSave struct {
	UserId    uuid.UUID `gorm:"type:uuid;primaryKey"`
	PostId    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (PostSave) TableName() string {
	return "post_saves"
}

type PostShare struct {
	Id         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	PostId     uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserId     uuid.UUID  `gorm:"type:uuid;not null;index"`
	TargetType string     `gorm:"type:varchar(20);not null;default:'story'"`
	CircleId   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
}

func (PostShare) TableName() string {
	return "post_shares"
}

type PostComment struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	PostId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Content   string         `gorm:"type:text;not null"`
	Emotion   *string        `gorm:"type:varchar(20)"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (PostComment) TableName() string {
	return "post_comments"
}

type PostReport struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	PostId     uuid.UUID `gorm:"type:uuid;not null;index"`
	ReporterId uuid.UUID `gorm:"type:uuid;not null;index"`
	Reason     *string   `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (PostReport) TableName() string {
	return "post_reports"
}

// All lists every model in creation order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&PasswordResetToken{},
		&EmailVerificationToken{},
		&UserProvider{},
		&UserPreference{},
		&UserBlock{},
		&UserReport{},
		&Session{},
		&Post{},
		&PostTag{},
		&PostLike{},
		&PostSave{},
		&PostShare{},
		&PostComment{},
		&PostReport{},
		&Follow{},
		&MessageThread{},
		&ThreadMember{},
		&Message{},
	}
}
