package handler

import (
	"net/http"
	"time"

	md "github.com/Astemirdum/reservation-service/pkg/middleware"
	"github.com/Astemirdum/reservation-service/pkg/validate"
	"github.com/Astemirdum/reservation-service/reservation/internal/errs"
	"github.com/Astemirdum/reservation-service/reservation/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Handler struct {
	reservationSvc ReservationService
	log            *zap.Logger
}

func New(reservationSrv ReservationService, log *zap.Logger) *Handler {
	h := &Handler{
		reservationSvc: reservationSrv,
		log:            log.Named("handler"),
	}
	return h
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPatch, http.MethodPost},
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.POST("/reservations", h.CreateReservation)
	api.GET("/reservations/:reservationId", h.GetReservation)
	api.PATCH("/reservations/:reservationId", h.EditReservation)
	api.POST("/reservations/:reservationId/cancel", h.CancelReservation)
	api.GET("/rooms/:roomId/availability", h.CheckAvailability)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) CreateReservation(c echo.Context) error {
	ctx := c.Request().Context()
	var req model.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	checkIn, checkOut, err := parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rsv, err := h.reservationSvc.CreateReservation(ctx, req.UserID, req.RoomID, checkIn, checkOut)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, rsv.Response())
}

func (h *Handler) GetReservation(c echo.Context) error {
	ctx := c.Request().Context()
	reservationID := c.Param("reservationId")
	if reservationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reservationId is empty")
	}
	rsv, err := h.reservationSvc.GetReservation(ctx, reservationID)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, rsv.Response())
}

func (h *Handler) CancelReservation(c echo.Context) error {
	ctx := c.Request().Context()
	reservationID := c.Param("reservationId")
	if reservationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reservationId is empty")
	}
	ok, err := h.reservationSvc.CancelReservation(ctx, reservationID)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.CancelResponse{ReservationID: reservationID, Cancelled: ok})
}

func (h *Handler) EditReservation(c echo.Context) error {
	ctx := c.Request().Context()
	reservationID := c.Param("reservationId")
	if reservationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reservationId is empty")
	}
	var req model.EditReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	checkIn, checkOut, err := parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rsv, err := h.reservationSvc.EditReservation(ctx, reservationID, checkIn, checkOut)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, rsv.Response())
}

func (h *Handler) CheckAvailability(c echo.Context) error {
	ctx := c.Request().Context()
	roomID := c.Param("roomId")
	if roomID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "roomId is empty")
	}
	checkIn, checkOut, err := parseRange(c.QueryParam("checkIn"), c.QueryParam("checkOut"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ok, err := h.reservationSvc.CheckAvailability(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.AvailabilityResponse{
		RoomID:    roomID,
		CheckIn:   checkIn.Format(time.DateOnly),
		CheckOut:  checkOut.Format(time.DateOnly),
		Available: ok,
	})
}

func (h *Handler) httpError(err error) error {
	if !errs.IsDomain(err) {
		h.log.Error("reservation service", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.log.Debug("rejected", zap.Error(err))
	switch {
	case errors.Is(err, errs.ErrInvalidDates):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrRoomUnavailable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrReservationNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrNotImplemented):
		return echo.NewHTTPError(http.StatusNotImplemented, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func parseRange(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := model.ParseDate(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(err, "checkIn")
	}
	out, err := model.ParseDate(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(err, "checkOut")
	}
	return in, out, nil
}
