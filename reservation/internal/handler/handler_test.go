package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Astemirdum/reservation-service/pkg/validate"
	"github.com/Astemirdum/reservation-service/reservation/internal/errs"
	"github.com/Astemirdum/reservation-service/reservation/internal/handler"
	service_mocks "github.com/Astemirdum/reservation-service/reservation/internal/handler/mocks"
	"github.com/Astemirdum/reservation-service/reservation/internal/model"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	checkIn  = time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	checkOut = time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC)
)

func testReservation(status model.Status) model.Reservation {
	return model.Reservation{
		ReservationID: "res-456",
		RoomID:        "101-A",
		UserID:        "user-123",
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Status:        status,
	}
}

type response struct {
	expectedCode int
	expectedBody string
}

func newEcho(t *testing.T) (*echo.Echo, *handler.Handler, *service_mocks.MockReservationService) {
	c := gomock.NewController(t)
	svc := service_mocks.NewMockReservationService(c)
	h := handler.New(svc, zap.NewExample().Named("test"))

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	return e, h, svc
}

func TestHandler_CreateReservation(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockReservationService)

	tests := []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
		bodyContains string
	}{
		{
			name: "ok",
			body: `{"userId":"user-123","roomId":"101-A","checkIn":"2025-12-01","checkOut":"2025-12-05"}`,
			mockBehavior: func(r *service_mocks.MockReservationService) {
				r.EXPECT().
					CreateReservation(context.Background(), "user-123", "101-A", checkIn, checkOut).
					Return(testReservation(model.StatusActive), nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"reservationId":"res-456","roomId":"101-A","userId":"user-123","checkIn":"2025-12-01","checkOut":"2025-12-05","status":"ACTIVE"}`,
			},
		},
		{
			name: "err. room unavailable",
			body: `{"userId":"user-123","roomId":"101-A","checkIn":"2025-12-01","checkOut":"2025-12-05"}`,
			mockBehavior: func(r *service_mocks.MockReservationService) {
				r.EXPECT().
					CreateReservation(context.Background(), "user-123", "101-A", checkIn, checkOut).
					Return(model.Reservation{}, errs.ErrRoomUnavailable)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"room is not available for the selected dates"}`,
			},
		},
		{
			name: "err. invalid dates",
			body: `{"userId":"user-123","roomId":"101-A","checkIn":"2025-12-05","checkOut":"2025-12-01"}`,
			mockBehavior: func(r *service_mocks.MockReservationService) {
				r.EXPECT().
					CreateReservation(context.Background(), "user-123", "101-A", checkOut, checkIn).
					Return(model.Reservation{}, errs.ErrInvalidDates)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"check-out date must be after check-in date"}`,
			},
		},
		{
			name: "err. internal",
			body: `{"userId":"user-123","roomId":"101-A","checkIn":"2025-12-01","checkOut":"2025-12-05"}`,
			mockBehavior: func(r *service_mocks.MockReservationService) {
				r.EXPECT().
					CreateReservation(context.Background(), "user-123", "101-A", checkIn, checkOut).
					Return(model.Reservation{}, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
		{
			name:         "err. user required",
			body:         `{"roomId":"101-A","checkIn":"2025-12-01","checkOut":"2025-12-05"}`,
			mockBehavior: func(r *service_mocks.MockReservationService) {},
			response:     response{expectedCode: http.StatusBadRequest},
			bodyContains: "UserID",
		},
		{
			name:         "err. bad date format",
			body:         `{"userId":"user-123","roomId":"101-A","checkIn":"01/12/2025","checkOut":"2025-12-05"}`,
			mockBehavior: func(r *service_mocks.MockReservationService) {},
			response:     response{expectedCode: http.StatusBadRequest},
			bodyContains: "CheckIn",
		},
		{
			name:         "err. malformed json",
			body:         `{"userId":`,
			mockBehavior: func(r *service_mocks.MockReservationService) {},
			response:     response{expectedCode: http.StatusBadRequest},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, svc := newEcho(t)
			e.POST("/reservations", h.CreateReservation)

			r := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
			if tt.bodyContains != "" {
				require.Contains(t, w.Body.String(), tt.bodyContains)
			}
		})
	}
}

func TestHandler_CancelReservation(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockReservationService, id string)

	tests := []struct {
		name          string
		reservationID string
		mockBehavior  mockBehavior
		response      response
	}{
		{
			name:          "ok",
			reservationID: "res-456",
			mockBehavior: func(r *service_mocks.MockReservationService, id string) {
				r.EXPECT().CancelReservation(context.Background(), id).Return(true, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"reservationId":"res-456","cancelled":true}`,
			},
		},
		{
			name:          "err. not found",
			reservationID: "res-999",
			mockBehavior: func(r *service_mocks.MockReservationService, id string) {
				r.EXPECT().CancelReservation(context.Background(), id).
					Return(false, fmt.Errorf("%w with ID: %s", errs.ErrReservationNotFound, id))
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"reservation not found with ID: res-999"}`,
			},
		},
		{
			name:          "err. internal",
			reservationID: "res-456",
			mockBehavior: func(r *service_mocks.MockReservationService, id string) {
				r.EXPECT().CancelReservation(context.Background(), id).Return(false, errors.New("conn refused"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"conn refused"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, svc := newEcho(t)
			e.POST("/reservations/:reservationId/cancel", h.CancelReservation)

			r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/reservations/%s/cancel", tt.reservationID), http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc, tt.reservationID)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetReservation(t *testing.T) {
	t.Parallel()
	e, h, svc := newEcho(t)
	e.GET("/reservations/:reservationId", h.GetReservation)

	svc.EXPECT().GetReservation(context.Background(), "res-456").Return(testReservation(model.StatusCancelled), nil)
	svc.EXPECT().GetReservation(context.Background(), "res-999").
		Return(model.Reservation{}, fmt.Errorf("%w with ID: res-999", errs.ErrReservationNotFound))

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reservations/res-456", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t,
		`{"reservationId":"res-456","roomId":"101-A","userId":"user-123","checkIn":"2025-12-01","checkOut":"2025-12-05","status":"CANCELLED"}`,
		strings.Trim(w.Body.String(), "\n"))

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reservations/res-999", http.NoBody))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_EditReservation(t *testing.T) {
	t.Parallel()
	e, h, svc := newEcho(t)
	e.PATCH("/reservations/:reservationId", h.EditReservation)

	svc.EXPECT().EditReservation(context.Background(), "res-456", checkIn, checkOut).
		Return(model.Reservation{}, fmt.Errorf("edit reservation res-456: %w", errs.ErrNotImplemented))

	r := httptest.NewRequest(http.MethodPatch, "/reservations/res-456",
		strings.NewReader(`{"checkIn":"2025-12-01","checkOut":"2025-12-05"}`))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusNotImplemented, w.Code)
	require.Equal(t, `{"message":"edit reservation res-456: not implemented"}`, strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_CheckAvailability(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockReservationService)

	tests := []struct {
		name         string
		query        string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:  "available from check-out day",
			query: "checkIn=2025-12-05&checkOut=2025-12-07",
			mockBehavior: func(r *service_mocks.MockReservationService) {
				r.EXPECT().CheckAvailability(context.Background(), "101-A", checkOut, checkOut.AddDate(0, 0, 2)).Return(true, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"roomId":"101-A","checkIn":"2025-12-05","checkOut":"2025-12-07","available":true}`,
			},
		},
		{
			name:  "occupied",
			query: "checkIn=2025-12-03&checkOut=2025-12-06",
			mockBehavior: func(r *service_mocks.MockReservationService) {
				r.EXPECT().CheckAvailability(context.Background(), "101-A", checkIn.AddDate(0, 0, 2), checkOut.AddDate(0, 0, 1)).Return(false, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"roomId":"101-A","checkIn":"2025-12-03","checkOut":"2025-12-06","available":false}`,
			},
		},
		{
			name:         "err. missing dates",
			query:        "checkIn=2025-12-03",
			mockBehavior: func(r *service_mocks.MockReservationService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"checkOut: parsing time \"\" as \"2006-01-02\": cannot parse \"\" as \"2006\""}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, h, svc := newEcho(t)
			e.GET("/rooms/:roomId/availability", h.CheckAvailability)

			w := httptest.NewRecorder()
			tt.mockBehavior(svc)
			e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms/101-A/availability?"+tt.query, http.NoBody))

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_NewRouter(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	svc := service_mocks.NewMockReservationService(c)
	svc.EXPECT().CancelReservation(gomock.Any(), "res-456").Return(true, nil)
	e := handler.New(svc, zap.NewNop()).NewRouter()

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/manage/health", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/reservations/res-456/cancel", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get(echo.HeaderXRequestID))
}

func TestHandler_ErrorLogging(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.DebugLevel)
	c := gomock.NewController(t)
	svc := service_mocks.NewMockReservationService(c)
	h := handler.New(svc, zap.New(core))

	e := echo.New()
	e.POST("/reservations/:reservationId/cancel", h.CancelReservation)

	svc.EXPECT().CancelReservation(context.Background(), "res-404").
		Return(false, fmt.Errorf("%w with ID: res-404", errs.ErrReservationNotFound))
	svc.EXPECT().CancelReservation(context.Background(), "res-500").
		Return(false, errors.New("conn refused"))

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reservations/res-404/cancel", http.NoBody))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reservations/res-500/cancel", http.NoBody))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	errLogs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errLogs, 1)
	require.Equal(t, "conn refused", errLogs[0].ContextMap()["error"])
}
