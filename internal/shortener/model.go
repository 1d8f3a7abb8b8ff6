package shortener

import "time"

// Link maps a public short code to the URL it redirects to.
type Link struct {
	ID          int64
	OwnerID     string
	OriginalURL string
	ShortCode   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LinkPatch lists the mutable fields of a Link. Nil fields are left unchanged.
type LinkPatch struct {
	OriginalURL *string
	ShortCode   *string
}

// Empty reports whether the patch changes nothing.
func (p LinkPatch) Empty() bool {
	return p.OriginalURL == nil && p.ShortCode == nil
}
