package session

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salonhq/admin-api/internal/handler"
	"github.com/salonhq/admin-api/internal/model"
	bookingsvc "github.com/salonhq/admin-api/internal/service/booking"
	"github.com/salonhq/admin-api/internal/service/scheduling"
	"github.com/salonhq/admin-api/internal/service/session"
	apperrors "github.com/salonhq/admin-api/pkg/errors"
)

type Handler struct {
	service *session.Service
}

func NewHandler(service *session.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/booking-sessions")
	{
		group.POST("", h.Start)
		group.GET("/:id", h.Get)
		group.POST("/:id/services", h.SelectServices)
		group.POST("/:id/advance", h.Advance)
		group.POST("/:id/mode", h.SetMode)
		group.POST("/:id/removals", h.SelectRemovals)
		group.POST("/:id/staff", h.AssignStaff)
		group.POST("/:id/date", h.SetDate)
		group.GET("/:id/slots", h.ResolveSlots)
		group.POST("/:id/start-time", h.SetStartTime)
		group.POST("/:id/verify", h.Verify)
		group.POST("/:id/submit", h.Submit)
		group.DELETE("/:id", h.Cancel)
	}
}

func (h *Handler) Start(c *gin.Context) {
	var req struct {
		CustomerID string `json:"customer_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	customerID, _ := uuid.Parse(req.CustomerID)
	sess, err := h.service.Start(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(sess))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	sess, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sess))
}

func (h *Handler) SelectServices(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req struct {
		Lines []struct {
			ServiceID string   `json:"service_id" binding:"required,uuid"`
			AddOnIDs  []string `json:"addon_ids" binding:"omitempty,dive,uuid"`
		} `json:"lines" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	lines := make([]session.ServiceLineRequest, 0, len(req.Lines))
	for _, l := range req.Lines {
		serviceID, _ := uuid.Parse(l.ServiceID)
		addOnIDs := make([]uuid.UUID, 0, len(l.AddOnIDs))
		for _, raw := range l.AddOnIDs {
			addOnID, _ := uuid.Parse(raw)
			addOnIDs = append(addOnIDs, addOnID)
		}
		lines = append(lines, session.ServiceLineRequest{ServiceID: serviceID, AddOnIDs: addOnIDs})
	}

	sess, err := h.service.SelectServices(c.Request.Context(), id, lines)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sess))
}

func (h *Handler) Advance(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	sess, err := h.service.Advance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sess))
}

func (h *Handler) SetMode(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req struct {
		Simultaneous bool `json:"simultaneous"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	sess, err := h.service.SetMode(c.Request.Context(), id, req.Simultaneous)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sess))
}

func (h *Handler) SelectRemovals(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req struct {
		AddOnIDs []string `json:"addon_ids" binding:"omitempty,dive,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	addOnIDs := make([]uuid.UUID, 0, len(req.AddOnIDs))
	for _, raw := range req.AddOnIDs {
		addOnID, _ := uuid.Parse(raw)
		addOnIDs = append(addOnIDs, addOnID)
	}

	sess, err := h.service.SelectRemovals(c.Request.Context(), id, addOnIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sess))
}

func (h *Handler) AssignStaff(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req struct {
		LineIndex int    `json:"line_index" binding:"min=0"`
		Kind      string `json:"kind" binding:"required,oneof=any specific"`
		StaffID   string `json:"staff_id" binding:"omitempty,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	var assignment model.StaffAssignment
	switch model.AssignmentKind(req.Kind) {
	case model.AssignmentAny:
		assignment = model.AnyStaff()
	case model.AssignmentSpecific:
		staffID, err := uuid.Parse(req.StaffID)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("staff_id is required for a specific assignment"))
			return
		}
		assignment = model.SpecificStaff(staffID)
	}

	sess, err := h.service.AssignStaff(c.Request.Context(), id, req.LineIndex, assignment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sess))
}

func (h *Handler) SetDate(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
		return
	}

	sess, err := h.service.SetDate(c.Request.Context(), id, date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sess))
}

func (h *Handler) ResolveSlots(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	tzOffset := 0
	if raw := c.Query("tz_offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid tz_offset, expected minutes"))
			return
		}
		tzOffset = parsed
	}

	slots, err := h.service.ResolveSlots(c.Request.Context(), id, tzOffset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func (h *Handler) SetStartTime(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req struct {
		StartTime time.Time `json:"start_time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	sess, err := h.service.SetStartTime(c.Request.Context(), id, req.StartTime)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sess))
}

func (h *Handler) Verify(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	sess, err := h.service.Verify(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sess))
}

func (h *Handler) Submit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	// The body is optional; notes for the first booking are its only field.
	var req struct {
		Notes string `json:"notes" binding:"omitempty,max=1000"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
			return
		}
	}

	result, err := h.service.Submit(c.Request.Context(), id, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(result))
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid session ID"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError translates workflow and scheduling failures into HTTP
// statuses. Transition refusals and booking conflicts are 409 so the
// client knows the session is still alive and can be corrected.
func respondError(c *gin.Context, err error) {
	var transition *session.TransitionError
	var rollback *bookingsvc.RollbackError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, handler.NewErrorResponse(err.Error()))
	case errors.As(err, &appErr) && appErr.Code == apperrors.ErrNotFound:
		c.JSON(http.StatusNotFound, handler.NewErrorResponse(err.Error()))
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, handler.NewErrorResponse(err.Error()))
	case scheduling.IsConflict(err):
		c.JSON(http.StatusConflict, handler.NewErrorResponse(err.Error()))
	case errors.As(err, &rollback):
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
	case errors.Is(err, scheduling.ErrStaffUnassigned), errors.Is(err, scheduling.ErrEmptyPlan):
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
	case errors.Is(err, scheduling.ErrNoStaffAvailable), errors.Is(err, scheduling.ErrSharedStaff):
		c.JSON(http.StatusConflict, handler.NewErrorResponse(err.Error()))
	default:
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
	}
}
