package model

import "time"

// Video is a metadata record for a video. EmbedLink may point anywhere; AssetID
// is only set when the file itself was uploaded to the asset store.
type Video struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	Title         string     `json:"title" gorm:"size:255" bson:"title"`
	Description   string     `json:"description" gorm:"type:text" bson:"description"`
	Date          time.Time  `json:"date" gorm:"index" bson:"date"`
	EmbedLink     string     `json:"embedLink" gorm:"size:1024" bson:"embedLink"`
	AssetID       string     `json:"assetId,omitempty" gorm:"size:512;index" bson:"assetId,omitempty"`
	Channel       string     `json:"channel" gorm:"size:100" bson:"channel"`
	Category      string     `json:"category" gorm:"size:100" bson:"category"`
	Contributors  StringList `json:"contributors" gorm:"type:text" bson:"contributors"`   // talent ids
	Collaborators StringList `json:"collaborators" gorm:"type:text" bson:"collaborators"` // channel ids or names
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// TableName 指定表名
func (Video) TableName() string {
	return "videos"
}

// VideoInput carries the fields accepted when creating a video.
type VideoInput struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Date          *time.Time `json:"date,omitempty"`
	EmbedLink     string     `json:"embedLink"`
	AssetID       string     `json:"assetId,omitempty"`
	Channel       string     `json:"channel"`
	Category      string     `json:"category"`
	Contributors  StringList `json:"contributors"`
	Collaborators StringList `json:"collaborators"`
}

// VideoPatch is a partial video update; nil fields are left untouched.
type VideoPatch struct {
	Title         *string     `json:"title,omitempty"`
	Description   *string     `json:"description,omitempty"`
	Date          *time.Time  `json:"date,omitempty"`
	EmbedLink     *string     `json:"embedLink,omitempty"`
	Channel       *string     `json:"channel,omitempty"`
	Category      *string     `json:"category,omitempty"`
	Contributors  *StringList `json:"contributors,omitempty"`
	Collaborators *StringList `json:"collaborators,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p VideoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.EmbedLink == nil &&
		p.Channel == nil && p.Category == nil && p.Contributors == nil && p.Collaborators == nil
}

// Apply writes the set fields onto v.
func (p VideoPatch) Apply(v *Video) {
	if p.Title != nil {
		v.Title = *p.Title
	}
	if p.Description != nil {
		v.Description = *p.Description
	}
	if p.Date != nil {
		v.Date = *p.Date
	}
	if p.EmbedLink != nil {
		v.EmbedLink = *p.EmbedLink
	}
	if p.Channel != nil {
		v.Channel = *p.Channel
	}
	if p.Category != nil {
		v.Category = *p.Category
	}
	if p.Contributors != nil {
		v.Contributors = p.Contributors.Normalize()
	}
	if p.Collaborators != nil {
		v.Collaborators = p.Collaborators.Normalize()
	}
}

// Columns returns the set fields keyed by column name.
func (p VideoPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Date != nil {
		cols["date"] = *p.Date
	}
	if p.EmbedLink != nil {
		cols["embed_link"] = *p.EmbedLink
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
	if p.Collaborators != nil {
		cols["collaborators"] = p.Collaborators.Normalize()
	}
	return cols
}
