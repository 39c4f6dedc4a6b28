package handler

import (
	"net/http"

	"github.com/Nirajxs/Hospital-management-system/internal/app/ds"
	"github.com/Nirajxs/Hospital-management-system/internal/app/middleware"
	"github.com/Nirajxs/Hospital-management-system/internal/app/service"

	"github.com/gin-gonic/gin"
)

// ApiListDoctors lists active doctors with their ratings
// @Summary Doctors
// @Tags doctors
// @Produce json
// @Success 200 {object} object{status=string,data=[]ds.DoctorSummary}
// @Router /api/doctors [get]
func (h *Handler) ApiListDoctors(ctx *gin.Context) {
	doctors, err := h.Clinic.ListDoctors(ctx.Request.Context())
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	if doctors == nil {
		doctors = []ds.DoctorSummary{}
	}
	jsonResponse(ctx, http.StatusOK, doctors, nil)
}

// ApiGetMyRating returns the caller's rating of the doctor, null when none
// @Summary My rating
// @Tags doctors
// @Produce json
// @Param id path int true "Doctor ID"
// @Success 200 {object} object{status=string,data=ds.Rating}
// @Router /api/doctors/{id}/rating [get]
func (h *Handler) ApiGetMyRating(ctx *gin.Context) {
	doctorID, err := parseID(ctx, "doctor")
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	rating, err := h.Clinic.GetMyRating(ctx.Request.Context(), middleware.CurrentCaller(ctx), doctorID)
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusOK, rating, nil)
}

type rateRequest struct {
	Stars  flexString `json:"stars" form:"stars"`
	Review string     `json:"review" form:"review"`
}

// ApiRateDoctor creates or replaces the caller's rating
// @Summary Rate doctor
// @Tags doctors
// @Accept json,mpfd
// @Produce json
// @Param id path int true "Doctor ID"
// @Param request body rateRequest true "Stars 1-5 and review"
// @Success 200 {object} object{status=string,data=ds.Rating,message=string,redirect=string}
// @Router /api/doctors/{id}/rating [post]
func (h *Handler) ApiRateDoctor(ctx *gin.Context) {
	doctorID, err := parseID(ctx, "doctor")
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	var body rateRequest
	if err := bind(ctx, &body); err != nil {
		h.errorHandler(ctx, err)
		return
	}

	rating, out, err := h.Clinic.Rate(ctx.Request.Context(), middleware.CurrentCaller(ctx), doctorID, service.RateInput{
		Stars:  string(body.Stars),
		Review: body.Review,
	})
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusOK, rating, &out)
}

type paymentMethod struct {
	Value ds.PaymentMethod `json:"value"`
	Label string           `json:"label"`
}

func paymentMethods() []paymentMethod {
	known := []ds.PaymentMethod{ds.PaymentUPI, ds.PaymentCard, ds.PaymentNetBanking, ds.PaymentWallet}
	out := make([]paymentMethod, 0, len(known))
	for _, m := range known {
		out = append(out, paymentMethod{Value: m, Label: m.Label()})
	}
	return out
}
