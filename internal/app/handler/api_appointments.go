package handler

import (
	"fmt"
	"net/http"

	"github.com/Nirajxs/Hospital-management-system/internal/app/middleware"
	"github.com/Nirajxs/Hospital-management-system/internal/app/service"

	"github.com/gin-gonic/gin"
)

type bookRequest struct {
	DoctorID      uint   `json:"doctor_id" form:"doctor_id"`
	Date          string `json:"date" form:"date" binding:"omitempty,clinic_date"`
	Time          string `json:"time" form:"time" binding:"omitempty,clinic_time"`
	Symptoms      string `json:"symptoms" form:"symptoms"`
	PatientName   string `json:"patient_name" form:"patient_name"`
	ContactNumber string `json:"contact_number" form:"contact_number"`
}

// ApiBookAppointment books a doctor; the appointment waits for payment
// @Summary Book appointment
// @Tags appointments
// @Accept json,mpfd
// @Produce json
// @Param request body bookRequest true "Booking"
// @Param image formData file false "Optional image"
// @Success 201 {object} object{status=string,data=ds.Appointment,message=string,redirect=string}
// @Failure 400 {object} object{status=string,code=string,description=string}
// @Router /api/appointments [post]
func (h *Handler) ApiBookAppointment(ctx *gin.Context) {
	var body bookRequest
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

	appointment, out, err := h.Clinic.Book(ctx.Request.Context(), middleware.CurrentCaller(ctx), service.BookInput{
		DoctorID:      body.DoctorID,
		Date:          body.Date,
		Time:          body.Time,
		Symptoms:      body.Symptoms,
		PatientName:   body.PatientName,
		ContactNumber: body.ContactNumber,
		Image:         image,
	})
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusCreated, appointment, &out)
}

// ApiGetPayment shows the appointment on the payment step
// @Summary Payment step
// @Tags appointments
// @Produce json
// @Param id path int true "Appointment ID"
// @Success 200 {object} object{status=string,data=object{appointment=ds.Appointment,methods=[]string}}
// @Router /api/appointments/{id}/payment [get]
func (h *Handler) ApiGetPayment(ctx *gin.Context) {
	id, err := parseID(ctx, "appointment")
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	appointment, err := h.Clinic.GetForPayment(ctx.Request.Context(), middleware.CurrentCaller(ctx), id)
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusOK, gin.H{
		"appointment": appointment,
		"methods":     paymentMethods(),
	}, nil)
}

type payRequest struct {
	PaymentMethod string `json:"payment_method" form:"payment_method"`
}

// ApiPay records the simulated payment
// @Summary Pay
// @Tags appointments
// @Accept json,mpfd
// @Produce json
// @Param id path int true "Appointment ID"
// @Param request body payRequest true "Payment method"
// @Success 200 {object} object{status=string,data=ds.Appointment,message=string,redirect=string}
// @Failure 400 {object} object{status=string,code=string,description=string,redirect=string}
// @Failure 409 {object} object{status=string,code=string,description=string}
// @Router /api/appointments/{id}/payment [post]
func (h *Handler) ApiPay(ctx *gin.Context) {
	id, err := parseID(ctx, "appointment")
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	var body payRequest
	if err := bind(ctx, &body); err != nil {
		h.errorHandler(ctx, err)
		return
	}

	appointment, out, err := h.Clinic.Pay(ctx.Request.Context(), middleware.CurrentCaller(ctx), id, body.PaymentMethod)
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusOK, appointment, &out)
}

// ApiConfirmPayment confirms the booking without a payment method
// @Summary Confirm
// @Tags appointments
// @Produce json
// @Param id path int true "Appointment ID"
// @Success 200 {object} object{status=string,data=ds.Appointment,message=string,redirect=string}
// @Router /api/appointments/{id}/confirm [post]
func (h *Handler) ApiConfirmPayment(ctx *gin.Context) {
	id, err := parseID(ctx, "appointment")
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	appointment, out, err := h.Clinic.ConfirmPayment(ctx.Request.Context(), middleware.CurrentCaller(ctx), id)
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusOK, appointment, &out)
}

type statusRequest struct {
	Status string `json:"status" form:"status"`
}

// ApiUpdateStatus sets the status of one of the doctor's appointments
// @Summary Update status
// @Tags appointments
// @Accept json,mpfd
// @Produce json
// @Param id path int true "Appointment ID"
// @Param request body statusRequest true "PENDING, ACCEPTED, IN_PROGRESS, COMPLETED or CANCELLED"
// @Success 200 {object} object{status=string,data=ds.Appointment,message=string,redirect=string}
// @Router /api/appointments/{id}/status [put]
func (h *Handler) ApiUpdateStatus(ctx *gin.Context) {
	id, err := parseID(ctx, "appointment")
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	var body statusRequest
	if err := bind(ctx, &body); err != nil {
		h.errorHandler(ctx, err)
		return
	}

	appointment, out, err := h.Clinic.UpdateStatus(ctx.Request.Context(), middleware.CurrentCaller(ctx), id, body.Status)
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusOK, appointment, &out)
}

// ApiReceipt downloads the PDF receipt of a paid appointment
// @Summary Receipt
// @Tags appointments
// @Produce application/pdf
// @Param id path int true "Appointment ID"
// @Success 200 {file} file
// @Failure 409 {object} object{status=string,code=string,description=string}
// @Router /api/appointments/{id}/receipt [get]
func (h *Handler) ApiReceipt(ctx *gin.Context) {
	id, err := parseID(ctx, "appointment")
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	pdf, name, err := h.Clinic.Receipt(ctx.Request.Context(), middleware.CurrentCaller(ctx), id)
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	ctx.Data(http.StatusOK, "application/pdf", pdf)
}
