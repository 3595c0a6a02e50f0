package staff

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salonhq/admin-api/internal/handler"
	"github.com/salonhq/admin-api/internal/model"
	"github.com/salonhq/admin-api/internal/service/scheduling"
	"github.com/salonhq/admin-api/internal/service/staff"
)

type Handler struct {
	service  *staff.Service
	assigner scheduling.StaffAssigner
}

func NewHandler(service *staff.Service, assigner scheduling.StaffAssigner) *Handler {
	return &Handler{service: service, assigner: assigner}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/staff")
	{
		group.POST("", h.CreateStaff)
		group.GET("", h.ListStaff)
		group.GET("/workloads", h.GetWorkloads)
		group.GET("/optimal", h.GetOptimalStaff)
		group.GET("/:id", h.GetStaff)
		group.PUT("/:id", h.UpdateStaff)
		group.DELETE("/:id", h.DeleteStaff)
	}
}

func (h *Handler) CreateStaff(c *gin.Context) {
	var req model.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	member, err := h.service.CreateStaff(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(member))
}

func (h *Handler) GetStaff(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid staff ID"))
		return
	}

	member, err := h.service.GetStaff(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(member))
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid staff ID"))
		return
	}

	var req model.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	member, err := h.service.UpdateStaff(c.Request.Context(), id, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(member))
}

func (h *Handler) DeleteStaff(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid staff ID"))
		return
	}

	if err := h.service.DeleteStaff(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ListStaff(c *gin.Context) {
	if c.Query("bookable") == "true" {
		members, err := h.service.ListBookable(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(members))
		return
	}

	members, err := h.service.ListStaff(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(members))
}

// GetOptimalStaff suggests the least-loaded member who is free for the
// requested window. Used by the booking screen when the customer has no
// preference.
func (h *Handler) GetOptimalStaff(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
		return
	}
	startClock, err := time.Parse("15:04", c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid start, expected HH:MM"))
		return
	}
	duration, err := strconv.Atoi(c.Query("duration"))
	if err != nil || duration <= 0 {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid duration, expected minutes"))
		return
	}

	start := date.Add(time.Duration(startClock.Hour())*time.Hour + time.Duration(startClock.Minute())*time.Minute)

	member, err := h.assigner.AssignOptimal(c.Request.Context(), date, start, duration)
	if err != nil {
		if errors.Is(err, scheduling.ErrNoStaffAvailable) {
			c.JSON(http.StatusConflict, handler.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(member))
}

// GetWorkloads returns each bookable member's busy minutes for a day, so
// the booking screen can show who is least loaded.
func (h *Handler) GetWorkloads(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
		return
	}

	workloads, err := h.service.GetWorkloads(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(workloads))
}
