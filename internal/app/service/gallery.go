package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/apperror"
	"github.com/Nirajxs/Hospital-management-system/internal/app/pkg/storage"
)

const maxCaptionLen = 200

func (s *Clinic) ListGallery(ctx context.Context, caller Caller) ([]ds.GalleryImage, error) {
	if err := caller.require(allRoles...); err != nil {
		return nil, err
	}
	list, err := s.store.ListGalleryImages(ctx)
	if err != nil {
		return nil, apperror.Internal("list gallery", err)
	}
	if list == nil {
		list = []ds.GalleryImage{}
	}
	for i := range list {
		key := list[i].ImageKey
		list[i].ImageURL = s.imageURL(&key)
		s.decorateUser(&list[i].Uploader)
	}
	return list, nil
}

func (s *Clinic) UploadGalleryImage(ctx context.Context, caller Caller, caption string, image *storage.Object) (*ds.GalleryImage, Outcome, error) {
	if err := caller.require(ds.RoleDoctor, ds.RoleStaff); err != nil {
		return nil, Outcome{}, err
	}
	if image == nil {
		return nil, Outcome{}, apperror.Validation("Please choose an image to upload.").WithRedirect("/gallery")
	}
	if !image.IsImage() {
		return nil, Outcome{}, apperror.Validation("Upload a valid image.").WithRedirect("/gallery")
	}
	caption = strings.TrimSpace(caption)
	if utf8.RuneCountInString(caption) > maxCaptionLen {
		return nil, Outcome{}, apperror.Validation("Caption must be at most 200 characters.").WithRedirect("/gallery")
	}

	key, err := s.files.Put(ctx, storage.PrefixGallery, *image)
	if err != nil {
		return nil, Outcome{}, apperror.Internal("store image", err)
	}
	g := &ds.GalleryImage{UploaderID: caller.UserID, ImageKey: key, Caption: caption}
	if err := s.store.CreateGalleryImage(ctx, g); err != nil {
		s.discard(ctx, key)
		return nil, Outcome{}, apperror.Internal("save gallery image", err)
	}
	g.ImageURL = s.imageURL(&key)
	return g, Outcome{Redirect: "/gallery", Message: "Image uploaded to gallery."}, nil
}
