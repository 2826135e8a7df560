package domain

import "io"

// MediaKind names the image slots a user has.
type MediaKind string

const (
	MediaAvatar     MediaKind = "avatar"
	MediaCoverImage MediaKind = "coverImage"
)

// MediaUpload is a file received from a client, ready to be stored remotely.
type MediaUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
