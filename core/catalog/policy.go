package catalog

// EntityKind names the record kinds kept by the catalog.
type EntityKind string

const (
	EntityAlbum EntityKind = "album"
	EntityPhoto EntityKind = "photo"
	EntityVideo EntityKind = "video"
)

// AssetPolicy decides which record kinds own their remote asset. An owned
// asset is destroyed before the record is deleted.
type AssetPolicy struct {
	VideoOwnsAsset bool
}

// OwnsRemoteAsset reports whether deleting a record of kind must destroy its
// remote asset first. Photos always own theirs; albums have none.
func (p AssetPolicy) OwnsRemoteAsset(kind EntityKind) bool {
	switch kind {
	case EntityPhoto:
		return true
	case EntityVideo:
		return p.VideoOwnsAsset
	}
	return false
}
