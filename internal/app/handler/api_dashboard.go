package handler

import (
	"net/http"

	"github.com/Nirajxs/Hospital-management-system/internal/app/middleware"

	"github.com/gin-gonic/gin"
)

// ApiDashboard returns the caller's dashboard; for doctors it also acknowledges the
// appointments it reports as new
// @Summary Dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} object{status=string,data=service.Dashboard}
// @Router /api/dashboard [get]
func (h *Handler) ApiDashboard(ctx *gin.Context) {
	dashboard, err := h.Clinic.Dashboard(ctx.Request.Context(), middleware.CurrentCaller(ctx))
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusOK, dashboard, nil)
}

// ApiNotificationCount
// @Summary Unseen appointments
// @Tags dashboard
// @Produce json
// @Success 200 {object} object{status=string,data=object{new_count=int}}
// @Router /api/notifications [get]
func (h *Handler) ApiNotificationCount(ctx *gin.Context) {
	n, err := h.Clinic.NotificationCount(ctx.Request.Context(), middleware.CurrentCaller(ctx))
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusOK, gin.H{"new_count": n}, nil)
}

type ackRequest struct {
	IDs []uint `json:"ids"`
}

// ApiAcknowledgeNotifications marks the listed appointments seen, or all of them
// when no ids are sent
// @Summary Acknowledge notifications
// @Tags dashboard
// @Accept json
// @Produce json
// @Param request body ackRequest false "Appointment IDs"
// @Success 200 {object} object{status=string,data=object{acknowledged=int}}
// @Router /api/notifications/ack [post]
func (h *Handler) ApiAcknowledgeNotifications(ctx *gin.Context) {
	var body ackRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&body); err != nil {
			h.errorHandler(ctx, bindError(err))
			return
		}
	}

	caller := middleware.CurrentCaller(ctx)
	if body.IDs != nil {
		n, err := h.Clinic.AcknowledgeNotifications(ctx.Request.Context(), caller, body.IDs)
		if err != nil {
			h.errorHandler(ctx, err)
			return
		}
		jsonResponse(ctx, http.StatusOK, gin.H{"acknowledged": n}, nil)
		return
	}

	n, out, err := h.Clinic.AcknowledgeAll(ctx.Request.Context(), caller)
	if err != nil {
		h.errorHandler(ctx, err)
		return
	}
	jsonResponse(ctx, http.StatusOK, gin.H{"acknowledged": n}, &out)
}
