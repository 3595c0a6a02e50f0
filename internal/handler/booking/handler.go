package booking

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/salonhq/admin-api/internal/handler"
	"github.com/salonhq/admin-api/internal/model"
	"github.com/salonhq/admin-api/internal/service/booking"
	"github.com/salonhq/admin-api/internal/service/catalog"
	"github.com/salonhq/admin-api/internal/service/scheduling"
)

type Handler struct {
	service      *booking.Service
	catalog      *catalog.Service
	availability *booking.AvailabilityService
}

func NewHandler(service *booking.Service, catalog *catalog.Service, availability *booking.AvailabilityService) *Handler {
	return &Handler{service: service, catalog: catalog, availability: availability}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/bookings")
	{
		group.POST("", h.CreateBooking)
		group.POST("/availability", h.QueryAvailability)
		group.GET("", h.ListBookings)
		group.GET("/:id", h.GetBooking)
		group.PUT("/:id", h.UpdateBooking)
		group.POST("/:id/cancel", h.CancelBooking)
		group.DELETE("/:id", h.DeleteBooking)
	}
}

// CreateBooking creates one standalone booking. The end time is derived
// from the service's duration, the add-ons' extra time and the buffer.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	serviceID, _ := uuid.Parse(req.ServiceID)
	customerID, _ := uuid.Parse(req.CustomerID)
	staffID, _ := uuid.Parse(req.StaffID)

	date, err := time.Parse("2006-01-02", req.AppointmentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment date, expected YYYY-MM-DD"))
		return
	}
	startClock, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid start time, expected HH:MM"))
		return
	}
	start := date.Add(time.Duration(startClock.Hour())*time.Hour + time.Duration(startClock.Minute())*time.Minute)

	svc, err := h.catalog.GetService(c.Request.Context(), serviceID)
	if err != nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("service not found"))
		return
	}

	addOns := make([]*model.AddOn, 0, len(req.AddOnIDs))
	addOnIDs := make(pq.StringArray, 0, len(req.AddOnIDs))
	for _, raw := range req.AddOnIDs {
		addOnID, _ := uuid.Parse(raw)
		addOn, err := h.catalog.GetAddOn(c.Request.Context(), addOnID)
		if err != nil {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("add-on not found"))
			return
		}
		if !addOn.CompatibleWith(serviceID) {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("add-on is not compatible with the service"))
			return
		}
		addOns = append(addOns, addOn)
		addOnIDs = append(addOnIDs, addOnID.String())
	}
	duration, price := bookingTotals(svc, addOns)

	b := &model.Booking{
		ServiceID:       serviceID,
		CustomerID:      customerID,
		StaffID:         staffID,
		AppointmentDate: date,
		StartTime:       start,
		EndTime:         start.Add(time.Duration(duration) * time.Minute),
		Duration:        duration,
		AddOnIDs:        addOnIDs,
		TotalPrice:      price,
		Notes:           req.Notes,
	}

	if err := h.service.CreateBooking(c.Request.Context(), b); err != nil {
		if scheduling.IsConflict(err) {
			c.JSON(http.StatusConflict, handler.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(b))
}

// QueryAvailability answers one batched slot query for a whole plan.
// Slots come back for every grid step; unavailable ones are flagged, not
// omitted, so the client can render a full day.
func (h *Handler) QueryAvailability(c *gin.Context) {
	var q scheduling.AvailabilityQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if len(q.Lines) == 0 {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("at least one service line is required"))
		return
	}

	slots, err := h.availability.QueryAvailability(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(b))
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	var req model.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	b, err := h.service.UpdateBooking(c.Request.Context(), id, &req)
	if err != nil {
		if scheduling.IsConflict(err) {
			c.JSON(http.StatusConflict, handler.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(b))
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.CancelBooking(c.Request.Context(), id, req.Reason); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ListBookings(c *gin.Context) {
	filters := &model.BookingFilters{
		Status: model.BookingStatus(c.Query("status")),
	}
	if id := c.Query("staff_id"); id != "" {
		staffID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid staff ID"))
			return
		}
		filters.StaffID = staffID
	}
	if id := c.Query("customer_id"); id != "" {
		customerID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid customer ID"))
			return
		}
		filters.CustomerID = customerID
	}
	if date := c.Query("start_date"); date != "" {
		startDate, err := time.Parse("2006-01-02", date)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid start date"))
			return
		}
		filters.StartDate = startDate
	}
	if date := c.Query("end_date"); date != "" {
		endDate, err := time.Parse("2006-01-02", date)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid end date"))
			return
		}
		filters.EndDate = endDate
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(bookings))
}

// bookingTotals derives a standalone booking's duration and price: the
// service's own minutes and price, every add-on's extra minutes and
// price, and the service's buffer folded into the duration.
func bookingTotals(svc *model.Service, addOns []*model.AddOn) (duration int, price float64) {
	duration = svc.Duration
	price = svc.Price
	for _, addOn := range addOns {
		duration += addOn.ExtraMinutes()
		price += addOn.Price
	}
	return duration + svc.EffectiveBuffer(), price
}
