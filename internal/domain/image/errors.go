package image

import "errors"

var (
	ErrImageNotFound   = errors.New("image not found")
	ErrNotImageOwner   = errors.New("you can only manage your own images")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrImageTooLarge   = errors.New("image exceeds the upload size limit")
	ErrStorageUnready  = errors.New("object storage unavailable")
)
