package services

// IsImagePrivate decides whether an image needs credentials to be viewed.
// override_public wins over everything, album protection wins over the image's own flag.
func IsImagePrivate(overridePublic, isPrivate, albumProtected bool) bool {
	if overridePublic {
		return false
	}
	if albumProtected {
		return true
	}
	return isPrivate
}

// Viewer is the caller an image is shown to
type Viewer struct {
	Admin bool
	// Unlocked reports whether the caller holds a valid unlock cookie for an album
	Unlocked func(albumID string) bool
}

// CanView reports whether v may reach the bytes of an image with the given resolved privacy.
// Private images need admin credentials, or an unlock of their protected album.
func (v Viewer) CanView(private, albumProtected bool, albumID *string) bool {
	if !private || v.Admin {
		return true
	}
	return albumProtected && albumID != nil && v.Unlocked != nil && v.Unlocked(*albumID)
}
