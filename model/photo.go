package model

import "time"

// Photo labels. An empty label means the photo is unclassified.
const (
	LabelAG         = "A&G"
	LabelPhotoAlbum = "Photo Album"
)

// PhotoLabels is the closed set of accepted photo labels.
var PhotoLabels = []string{LabelAG, LabelPhotoAlbum}

// ValidLabel reports whether label is empty or one of PhotoLabels.
func ValidLabel(label string) bool {
	if label == "" {
		return true
	}
	for _, l := range PhotoLabels {
		if l == label {
			return true
		}
	}
	return false
}

// Photo is a single image owned by an album. Link and AssetID point at the
// remote asset and never change after creation.
type Photo struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	AlbumID      string     `json:"albumId" gorm:"size:36;index;not null" bson:"albumId"`
	Title        string     `json:"title" gorm:"size:255;not null" bson:"title"`
	Link         string     `json:"link" gorm:"size:1024;not null" bson:"link"`
	AssetID      string     `json:"assetId" gorm:"size:512;index;not null" bson:"assetId"`
	Label        string     `json:"label,omitempty" gorm:"size:32" bson:"label,omitempty"`
	Contributors StringList `json:"contributors" gorm:"type:text" bson:"contributors"`
	Date         time.Time  `json:"date" gorm:"index" bson:"date"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// TableName 指定表名
func (Photo) TableName() string {
	return "photos"
}

// PhotoInput carries the metadata accepted alongside a photo upload.
type PhotoInput struct {
	Title        string
	Label        string
	Contributors StringList
}

// PhotoPatch is a partial photo update. The asset reference is not patchable.
type PhotoPatch struct {
	Title        *string     `json:"title,omitempty"`
	Label        *string     `json:"label,omitempty"`
	Contributors *StringList `json:"contributors,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p PhotoPatch) IsEmpty() bool {
	return p.Title == nil && p.Label == nil && p.Contributors == nil
}

// Apply writes the set fields onto ph.
func (p PhotoPatch) Apply(ph *Photo) {
	if p.Title != nil {
		ph.Title = *p.Title
	}
	if p.Label != nil {
		ph.Label = *p.Label
	}
	if p.Contributors != nil {
		ph.Contributors = p.Contributors.Normalize()
	}
}

// Columns returns the set fields keyed by column name.
func (p PhotoPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Label != nil {
		cols["label"] = *p.Label
	}
	if p.Contributors != nil {
		cols["contributors"] = p.Contributors.Normalize()
	}
	return cols
}
