package handler

import (
	"net/http"

	"github.com/Nirajxs/Hospital-management-system/internal/app/middleware"

	"github.com/gin-gonic/gin"
)

// ApiListGallery
// @Summary Gallery
// @Tags gallery
// @Produce json
// @Success 200 {object} object{status=string,data=[]ds.GalleryImage}
// @Router /api/gallery [get]
func (h *Handler) ApiListGallery(ctx *gin.Context) {
	images, err := h.Clinic.ListGallery(ctx.Request.Context(), middleware.CurrentCaller(ctx))
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusOK, images, nil)
}

type galleryRequest struct {
	Caption string `form:"caption"`
}

// ApiUploadGallery adds an image to the gallery
// @Summary Upload gallery image
// @Tags gallery
// @Accept mpfd
// @Produce json
// @Param image formData file true "Image"
// @Param caption formData string false "Caption, up to 200 characters"
// @Success 201 {object} object{status=string,data=ds.GalleryImage,message=string,redirect=string}
// @Router /api/gallery [post]
func (h *Handler) ApiUploadGallery(ctx *gin.Context) {
	var body galleryRequest
	if err := bind(ctx, &body); err != nil {
		h.errorHandler(ctx, err)
		return
	}
	image, done, err := readUpload(ctx, "image")
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	defer done()

	g, out, err := h.Clinic.UploadGalleryImage(ctx.Request.Context(), middleware.CurrentCaller(ctx), body.Caption, image)
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusCreated, g, &out)
}
