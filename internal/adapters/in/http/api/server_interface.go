package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const (
	BearerAuthScopes      = "bearerAuth.Scopes"
	SchedulerSecretScopes = "schedulerSecret.Scopes"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Create a parcel
	// (POST /api/v1/parcels)
	CreateParcel(ctx echo.Context) error
	// Accept a pending parcel
	// (POST /api/v1/parcels/{parcelId}/accept)
	AcceptMission(ctx echo.Context, parcelID openapi_types.UUID) error
	// Confirm packaging
	// (POST /api/v1/parcels/{parcelId}/packaging/confirm)
	VendorConfirmPackaging(ctx echo.Context, parcelID openapi_types.UUID) error
	// Confirm the pickup with the carrier's code
	// (POST /api/v1/parcels/{parcelId}/pickup/confirm-code)
	ConfirmPickupByCode(ctx echo.Context, parcelID openapi_types.UUID) error
	// Confirm the delivery and rate the carrier
	// (POST /api/v1/parcels/{parcelId}/delivery/confirm)
	ClientConfirmDelivery(ctx echo.Context, parcelID openapi_types.UUID) error
	// Contest the delivery
	// (POST /api/v1/parcels/{parcelId}/delivery/contest)
	ClientContestDelivery(ctx echo.Context, parcelID openapi_types.UUID) error
	// Read the delivery status
	// (GET /api/v1/parcels/{parcelId}/delivery-status)
	GetDeliveryStatus(ctx echo.Context, parcelID openapi_types.UUID) error
	// Depart towards the pickup address
	// (POST /api/v1/missions/{missionId}/depart)
	StartJourney(ctx echo.Context, missionID openapi_types.UUID) error
	// Arrive at the pickup address
	// (POST /api/v1/missions/{missionId}/arrive)
	ArriveAtPickup(ctx echo.Context, missionID openapi_types.UUID) error
	// Confirm packaging with a photo
	// (POST /api/v1/missions/{missionId}/packaging)
	ConfirmPackaging(ctx echo.Context, missionID openapi_types.UUID) error
	// Mark the parcel picked up
	// (POST /api/v1/missions/{missionId}/pickup)
	PickupMission(ctx echo.Context, missionID openapi_types.UUID) error
	// Submit the delivery proof and open the confirmation window
	// (POST /api/v1/missions/{missionId}/delivery-proof)
	SubmitDeliveryProof(ctx echo.Context, missionID openapi_types.UUID) error
	// Cancel before departure
	// (POST /api/v1/missions/{missionId}/cancel)
	CancelMission(ctx echo.Context, missionID openapi_types.UUID) error
	// Auto-confirm expired confirmation windows
	// (POST /internal/sweeps/delivery-confirmations)
	RunDeliverySweep(ctx echo.Context, params RunDeliverySweepParams) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

type uuidHandler func(ctx echo.Context, id openapi_types.UUID) error

func bindUUID(name string, next uuidHandler) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var id openapi_types.UUID
		err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
		}
		ctx.Set(BearerAuthScopes, []string{})
		return next(ctx, id)
	}
}

// CreateParcel converts echo context to params.
func (w *ServerInterfaceWrapper) CreateParcel(ctx echo.Context) error {
	ctx.Set(BearerAuthScopes, []string{})
	return w.Handler.CreateParcel(ctx)
}

// RunDeliverySweep converts echo context to params.
func (w *ServerInterfaceWrapper) RunDeliverySweep(ctx echo.Context) error {
	ctx.Set(SchedulerSecretScopes, []string{})

	var params RunDeliverySweepParams
	err := runtime.BindQueryParameter("form", true, false, "batchSize", ctx.QueryParams(), &params.BatchSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter batchSize: %s", err))
	}
	return w.Handler.RunDeliverySweep(ctx, params)
}

// EchoRouter is the subset of echo.Echo and echo.Group used for registration.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each actor-facing route to router, relative to
// /api/v1. The scheduler route is registered by RegisterSchedulerHandlers.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	w := ServerInterfaceWrapper{Handler: si}

	router.POST("/parcels", w.CreateParcel)
	router.POST("/parcels/:parcelId/accept", bindUUID("parcelId", si.AcceptMission))
	router.POST("/parcels/:parcelId/packaging/confirm", bindUUID("parcelId", si.VendorConfirmPackaging))
	router.POST("/parcels/:parcelId/pickup/confirm-code", bindUUID("parcelId", si.ConfirmPickupByCode))
	router.POST("/parcels/:parcelId/delivery/confirm", bindUUID("parcelId", si.ClientConfirmDelivery))
	router.POST("/parcels/:parcelId/delivery/contest", bindUUID("parcelId", si.ClientContestDelivery))
	router.GET("/parcels/:parcelId/delivery-status", bindUUID("parcelId", si.GetDeliveryStatus))

	router.POST("/missions/:missionId/depart", bindUUID("missionId", si.StartJourney))
	router.POST("/missions/:missionId/arrive", bindUUID("missionId", si.ArriveAtPickup))
	router.POST("/missions/:missionId/packaging", bindUUID("missionId", si.ConfirmPackaging))
	router.POST("/missions/:missionId/pickup", bindUUID("missionId", si.PickupMission))
	router.POST("/missions/:missionId/delivery-proof", bindUUID("missionId", si.SubmitDeliveryProof))
	router.POST("/missions/:missionId/cancel", bindUUID("missionId", si.CancelMission))
}

// RegisterSchedulerHandlers adds the scheduler route relative to /internal.
func RegisterSchedulerHandlers(router EchoRouter, si ServerInterface) {
	w := ServerInterfaceWrapper{Handler: si}
	router.POST("/sweeps/delivery-confirmations", w.RunDeliverySweep)
}
