package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tourbook/tourbook/internal/application/payment/paymentgateway"
	"github.com/tourbook/tourbook/internal/application/payment/usecases"
	"github.com/tourbook/tourbook/internal/infrastructure/cardgateway"
	"github.com/tourbook/tourbook/internal/interfaces/http/middleware"
	"github.com/tourbook/tourbook/internal/shared/logger"
	"github.com/tourbook/tourbook/internal/shared/utils"
)

type PaymentHandler struct {
	startAuthorizationUC startAuthorizationUseCase
	confirmPaymentUC     confirmPaymentUseCase
	cancelPaymentUC      cancelPaymentUseCase
	handleNotificationUC handleNotificationUseCase
	listFlaggedUC        listFlaggedNotificationsUseCase
	logger               logger.Interface
}

func NewPaymentHandler(
	startAuthorizationUC startAuthorizationUseCase,
	confirmPaymentUC confirmPaymentUseCase,
	cancelPaymentUC cancelPaymentUseCase,
	handleNotificationUC handleNotificationUseCase,
	listFlaggedUC listFlaggedNotificationsUseCase,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		startAuthorizationUC: startAuthorizationUC,
		confirmPaymentUC:     confirmPaymentUC,
		cancelPaymentUC:      cancelPaymentUC,
		handleNotificationUC: handleNotificationUC,
		listFlaggedUC:        listFlaggedUC,
		logger:               logger,
	}
}

type StartAuthorizationRequest struct {
	// Language is a BCP 47 tag; the Accept-Language header is used when empty
	Language string `json:"language" validate:"omitempty,max=35"`
}

// NotificationRequest is the signed envelope the gateway posts as JSON.
type NotificationRequest struct {
	SignatureVersion   string `json:"Ds_SignatureVersion"`
	MerchantParameters string `json:"Ds_MerchantParameters"`
	Signature          string `json:"Ds_Signature"`
}

// @Summary		Start card preauthorization
// @Description	Returns the signed form the browser posts to the hosted payment page
// @Tags			payments
// @Accept			json
// @Produce		json
// @Param			id		path		string										true	"Reservation ID"
// @Param			request	body		StartAuthorizationRequest					false	"Shopper language"
// @Success		200		{object}	utils.APIResponse{data=paymentgateway.RedirectPayload}
// @Failure		404		{object}	utils.APIResponse	"Reservation not found"
// @Failure		409		{object}	utils.APIResponse	"Reservation is not pending"
// @Router			/reservations/{id}/payment/authorize [post]
func (h *PaymentHandler) StartAuthorization(c *gin.Context) {
	reservationID, err := utils.ParseIDParam(c, "id", "reservation")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req StartAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	language := req.Language
	if language == "" {
		language = c.GetHeader("Accept-Language")
	}

	payload, err := h.startAuthorizationUC.Execute(c.Request.Context(), usecases.StartAuthorizationCommand{
		ReservationID: reservationID,
		Language:      language,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", payload)
}

// @Summary		Confirm a preauthorized payment
// @Tags			payments
// @Produce		json
// @Security		Bearer
// @Param			id	path		string	true	"Reservation ID"
// @Success		200	{object}	utils.APIResponse{data=usecases.PaymentStateResult}
// @Failure		402	{object}	utils.APIResponse	"Declined by the gateway"
// @Failure		409	{object}	utils.APIResponse	"Reservation is not preauthorized"
// @Failure		502	{object}	utils.APIResponse	"Gateway unavailable"
// @Router			/reservations/{id}/payment/confirm [post]
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	reservationID, err := utils.ParseIDParam(c, "id", "reservation")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.confirmPaymentUC.Execute(c.Request.Context(), usecases.ConfirmPaymentCommand{
		ReservationID: reservationID,
	})
	if err != nil {
		h.logger.Warnw("payment confirmation failed",
			"reservation_id", reservationID,
			"operator_id", c.GetString(middleware.ContextKeyOperatorID),
			"error", err,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("payment confirmed",
		"reservation_id", reservationID,
		"operator_id", c.GetString(middleware.ContextKeyOperatorID),
	)
	utils.SuccessResponse(c, http.StatusOK, "payment confirmed", result)
}

// @Summary		Cancel a preauthorized payment
// @Tags			payments
// @Produce		json
// @Security		Bearer
// @Param			id	path		string	true	"Reservation ID"
// @Success		200	{object}	utils.APIResponse{data=usecases.PaymentStateResult}
// @Failure		402	{object}	utils.APIResponse	"Declined by the gateway"
// @Failure		409	{object}	utils.APIResponse	"Reservation is not preauthorized"
// @Failure		502	{object}	utils.APIResponse	"Gateway unavailable"
// @Router			/reservations/{id}/payment/cancel [post]
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	reservationID, err := utils.ParseIDParam(c, "id", "reservation")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.cancelPaymentUC.Execute(c.Request.Context(), usecases.CancelPaymentCommand{
		ReservationID: reservationID,
	})
	if err != nil {
		h.logger.Warnw("payment cancellation failed",
			"reservation_id", reservationID,
			"operator_id", c.GetString(middleware.ContextKeyOperatorID),
			"error", err,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("payment cancelled",
		"reservation_id", reservationID,
		"operator_id", c.GetString(middleware.ContextKeyOperatorID),
	)
	utils.SuccessResponse(c, http.StatusOK, "payment cancelled", result)
}

// @Summary		Gateway notification
// @Description	Asynchronous outcome posted by the card gateway, form-encoded or JSON.
// @Description	Answers 200 once the outcome is recorded or already known, so the gateway stops retrying.
// @Tags			payments
// @Accept			x-www-form-urlencoded,json
// @Produce		json
// @Success		200	{object}	utils.APIResponse{data=usecases.HandleNotificationResult}
// @Failure		400	{object}	utils.APIResponse	"Signature or integrity failure"
// @Failure		409	{object}	utils.APIResponse	"Same delivery in progress"
// @Failure		500	{object}	utils.APIResponse	"Storage failure, gateway should retry"
// @Router			/payments/notification [post]
func (h *PaymentHandler) HandleNotification(c *gin.Context) {
	var notification paymentgateway.Notification

	if c.ContentType() == gin.MIMEJSON {
		var req NotificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid notification body")
			return
		}
		notification = paymentgateway.Notification(req)
	} else {
		if err := c.Request.ParseForm(); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid notification body")
			return
		}
		env := cardgateway.ParseNotificationForm(c.Request.PostForm)
		notification = paymentgateway.Notification(env)
	}

	result, err := h.handleNotificationUC.Execute(c.Request.Context(), usecases.HandleNotificationCommand{
		Notification: notification,
		SourceIP:     c.ClientIP(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "notification processed", result)
}

// @Summary		List notifications flagged for review
// @Tags			review
// @Produce		json
// @Security		Bearer
// @Param			limit	query		int	false	"Maximum entries, default 50"
// @Success		200		{object}	utils.APIResponse{data=[]usecases.FlaggedNotificationView}
// @Router			/admin/flagged-notifications [get]
func (h *PaymentHandler) ListFlaggedNotifications(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	views, err := h.listFlaggedUC.Execute(c.Request.Context(), usecases.ListFlaggedNotificationsQuery{Limit: limit})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", views)
}
