package model

import "time"

// Album is a named collection of photos sharing channel/category/date metadata.
// Its photos are found by querying Photo.AlbumID; the album stores no photo list.
type Album struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	Title        string     `json:"title" gorm:"size:255;not null" bson:"title"`
	Date         time.Time  `json:"date" gorm:"index" bson:"date"`
	Description  string     `json:"description" gorm:"type:text;not null" bson:"description"`
	Channel      string     `json:"channel" gorm:"size:100;not null" bson:"channel"`
	Category     string     `json:"category" gorm:"size:100;not null" bson:"category"`
	Contributors StringList `json:"contributors" gorm:"type:text" bson:"contributors"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// TableName 指定表名
func (Album) TableName() string {
	return "albums"
}

// AlbumInput carries the fields accepted when creating an album.
type AlbumInput struct {
	Title        string     `json:"title"`
	Date         *time.Time `json:"date,omitempty"`
	Description  string     `json:"description"`
	Channel      string     `json:"channel"`
	Category     string     `json:"category"`
	Contributors StringList `json:"contributors"`
}

// AlbumPatch is a partial album update; nil fields are left untouched.
type AlbumPatch struct {
	Title        *string     `json:"title,omitempty"`
	Date         *time.Time  `json:"date,omitempty"`
	Description  *string     `json:"description,omitempty"`
	Channel      *string     `json:"channel,omitempty"`
	Category     *string     `json:"category,omitempty"`
	Contributors *StringList `json:"contributors,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p AlbumPatch) IsEmpty() bool {
	return p.Title == nil && p.Date == nil && p.Description == nil &&
		p.Channel == nil && p.Category == nil && p.Contributors == nil
}

// Apply writes the set fields onto a.
func (p AlbumPatch) Apply(a *Album) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Channel != nil {
		a.Channel = *p.Channel
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Contributors != nil {
		a.Contributors = p.Contributors.Normalize()
	}
}

// Columns returns the set fields keyed by column name.
func (p AlbumPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Date != nil {
		cols["date"] = *p.Date
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Channel != nil {
		cols["channel"] = *p.Channel
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Contributors != nil {
		cols["contributors"] = p.Contributors.Normalize()
	}
	return cols
}
