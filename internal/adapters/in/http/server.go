package http

import (
	"net/http"

	"handoff/internal/adapters/in/http/api"
	"handoff/internal/core/application/usecases/commands"
	"handoff/internal/core/application/usecases/queries"
	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/pkg/clock"
	"handoff/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

var _ api.ServerInterface = (*Server)(nil)

// Handlers groups the use cases exposed over HTTP.
type Handlers struct {
	// Vendor
	CreateParcel           commands.CreateParcelCommandHandler
	VendorConfirmPackaging commands.VendorConfirmPackagingCommandHandler
	ConfirmPickupByCode    commands.ConfirmPickupByCodeCommandHandler
	ClientConfirmDelivery  commands.ClientConfirmDeliveryCommandHandler
	ClientContestDelivery  commands.ClientContestDeliveryCommandHandler

	// Carrier
	AcceptMission       commands.AcceptMissionCommandHandler
	StartJourney        commands.StartJourneyCommandHandler
	ArriveAtPickup      commands.ArriveAtPickupCommandHandler
	ConfirmPackaging    commands.ConfirmPackagingCommandHandler
	PickupMission       commands.PickupMissionCommandHandler
	SubmitDeliveryProof commands.SubmitDeliveryProofCommandHandler
	CancelMission       commands.CancelMissionCommandHandler

	// Scheduler
	SweepDeliveryConfirmations commands.SweepDeliveryConfirmationsCommandHandler

	// Queries
	GetDeliveryStatus queries.GetDeliveryStatusQueryHandler
}

// Server implements api.ServerInterface on top of the application use cases.
type Server struct {
	h     Handlers
	clock clock.Clock
	log   *logger.Logger
}

func NewServer(h Handlers, clk clock.Clock, log *logger.Logger) *Server {
	return &Server{h: h, clock: clk, log: log}
}

// CreateParcel handles POST /api/v1/parcels.
func (s *Server) CreateParcel(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}

	var req api.CreateParcelRequest
	if err := s.bind(ctx, &req); err != nil {
		return err
	}

	cmd, err := commands.NewCreateParcelCommand(kernel.NewUUID(), actor, toPlace(req.Pickup), toPlace(req.Dropoff))
	if err != nil {
		return s.fail(ctx, err)
	}
	snap, err := s.h.CreateParcel.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, toParcel(snap, actor))
}

// AcceptMission handles POST /api/v1/parcels/{parcelId}/accept.
func (s *Server) AcceptMission(ctx echo.Context, parcelID openapi_types.UUID) error {
	return s.transition(ctx, http.StatusCreated, func(actor kernel.UUID) (commands.Result, error) {
		id, err := kernel.UUIDFrom(parcelID)
		if err != nil {
			return commands.Result{}, err
		}
		cmd, err := commands.NewAcceptMissionCommand(id, actor)
		if err != nil {
			return commands.Result{}, err
		}
		return s.h.AcceptMission.Handle(ctx.Request().Context(), cmd)
	})
}

// VendorConfirmPackaging handles POST /api/v1/parcels/{parcelId}/packaging/confirm.
func (s *Server) VendorConfirmPackaging(ctx echo.Context, parcelID openapi_types.UUID) error {
	return s.transition(ctx, http.StatusOK, func(actor kernel.UUID) (commands.Result, error) {
		id, err := kernel.UUIDFrom(parcelID)
		if err != nil {
			return commands.Result{}, err
		}
		cmd, err := commands.NewVendorConfirmPackagingCommand(id, actor)
		if err != nil {
			return commands.Result{}, err
		}
		return s.h.VendorConfirmPackaging.Handle(ctx.Request().Context(), cmd)
	})
}

// ConfirmPickupByCode handles POST /api/v1/parcels/{parcelId}/pickup/confirm-code.
func (s *Server) ConfirmPickupByCode(ctx echo.Context, parcelID openapi_types.UUID) error {
	var req api.PickupCodeRequest
	if err := s.bind(ctx, &req); err != nil {
		return err
	}

	return s.transition(ctx, http.StatusOK, func(actor kernel.UUID) (commands.Result, error) {
		id, err := kernel.UUIDFrom(parcelID)
		if err != nil {
			return commands.Result{}, err
		}
		cmd, err := commands.NewConfirmPickupByCodeCommand(id, actor, req.Code)
		if err != nil {
			return commands.Result{}, err
		}
		return s.h.ConfirmPickupByCode.Handle(ctx.Request().Context(), cmd)
	})
}

// ClientConfirmDelivery handles POST /api/v1/parcels/{parcelId}/delivery/confirm.
func (s *Server) ClientConfirmDelivery(ctx echo.Context, parcelID openapi_types.UUID) error {
	var req api.ConfirmDeliveryRequest
	if err := s.bind(ctx, &req); err != nil {
		return err
	}

	return s.transition(ctx, http.StatusOK, func(actor kernel.UUID) (commands.Result, error) {
		id, err := kernel.UUIDFrom(parcelID)
		if err != nil {
			return commands.Result{}, err
		}
		cmd, err := commands.NewClientConfirmDeliveryCommand(id, actor, req.Rating, req.Comment)
		if err != nil {
			return commands.Result{}, err
		}
		return s.h.ClientConfirmDelivery.Handle(ctx.Request().Context(), cmd)
	})
}

// ClientContestDelivery handles POST /api/v1/parcels/{parcelId}/delivery/contest.
func (s *Server) ClientContestDelivery(ctx echo.Context, parcelID openapi_types.UUID) error {
	var req api.ContestDeliveryRequest
	if err := s.bind(ctx, &req); err != nil {
		return err
	}

	return s.transition(ctx, http.StatusOK, func(actor kernel.UUID) (commands.Result, error) {
		id, err := kernel.UUIDFrom(parcelID)
		if err != nil {
			return commands.Result{}, err
		}
		cmd, err := commands.NewClientContestDeliveryCommand(id, actor, req.Reason)
		if err != nil {
			return commands.Result{}, err
		}
		return s.h.ClientContestDelivery.Handle(ctx.Request().Context(), cmd)
	})
}

// GetDeliveryStatus handles GET /api/v1/parcels/{parcelId}/delivery-status.
func (s *Server) GetDeliveryStatus(ctx echo.Context, parcelID openapi_types.UUID) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}

	id, err := kernel.UUIDFrom(parcelID)
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetDeliveryStatusQuery(id, actor)
	if err != nil {
		return s.fail(ctx, err)
	}
	status, err := s.h.GetDeliveryStatus.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := api.DeliveryStatus{
		ParcelID:       status.ParcelID.Bytes(),
		Status:         string(status.Status),
		HoursRemaining: status.HoursRemaining,
		Deadline:       status.Deadline,
	}
	if status.MissionID != nil {
		missionID := status.MissionID.Bytes()
		response.MissionID = &missionID
	}
	return ctx.JSON(http.StatusOK, response)
}

// StartJourney handles POST /api/v1/missions/{missionId}/depart.
func (s *Server) StartJourney(ctx echo.Context, missionID openapi_types.UUID) error {
	var req api.StartJourneyRequest
	if err := s.bind(ctx, &req); err != nil {
		return err
	}

	return s.transition(ctx, http.StatusOK, func(actor kernel.UUID) (commands.Result, error) {
		id, err := kernel.UUIDFrom(missionID)
		if err != nil {
			return commands.Result{}, err
		}
		cmd, err := commands.NewStartJourneyCommand(id, actor, *req.OriginLat, *req.OriginLon)
		if err != nil {
			return commands.Result{}, err
		}
		return s.h.StartJourney.Handle(ctx.Request().Context(), cmd)
	})
}

// ArriveAtPickup handles POST /api/v1/missions/{missionId}/arrive.
func (s *Server) ArriveAtPickup(ctx echo.Context, missionID openapi_types.UUID) error {
	return s.transition(ctx, http.StatusOK, func(actor kernel.UUID) (commands.Result, error) {
		id, err := kernel.UUIDFrom(missionID)
		if err != nil {
			return commands.Result{}, err
		}
		cmd, err := commands.NewArriveAtPickupCommand(id, actor)
		if err != nil {
			return commands.Result{}, err
		}
		return s.h.ArriveAtPickup.Handle(ctx.Request().Context(), cmd)
	})
}

// ConfirmPackaging handles POST /api/v1/missions/{missionId}/packaging.
func (s *Server) ConfirmPackaging(ctx echo.Context, missionID openapi_types.UUID) error {
	var req api.PackagingRequest
	if err := s.bind(ctx, &req); err != nil {
		return err
	}

	return s.transition(ctx, http.StatusOK, func(actor kernel.UUID) (commands.Result, error) {
		id, err := kernel.UUIDFrom(missionID)
		if err != nil {
			return commands.Result{}, err
		}
		cmd, err := commands.NewConfirmPackagingCommand(id, actor, req.PhotoURL)
		if err != nil {
			return commands.Result{}, err
		}
		return s.h.ConfirmPackaging.Handle(ctx.Request().Context(), cmd)
	})
}

// PickupMission handles POST /api/v1/missions/{missionId}/pickup.
func (s *Server) PickupMission(ctx echo.Context, missionID openapi_types.UUID) error {
	return s.transition(ctx, http.StatusOK, func(actor kernel.UUID) (commands.Result, error) {
		id, err := kernel.UUIDFrom(missionID)
		if err != nil {
			return commands.Result{}, err
		}
		cmd, err := commands.NewPickupMissionCommand(id, actor)
		if err != nil {
			return commands.Result{}, err
		}
		return s.h.PickupMission.Handle(ctx.Request().Context(), cmd)
	})
}

// SubmitDeliveryProof handles POST /api/v1/missions/{missionId}/delivery-proof.
func (s *Server) SubmitDeliveryProof(ctx echo.Context, missionID openapi_types.UUID) error {
	var req api.DeliveryProofRequest
	if err := s.bind(ctx, &req); err != nil {
		return err
	}

	return s.transition(ctx, http.StatusOK, func(actor kernel.UUID) (commands.Result, error) {
		id, err := kernel.UUIDFrom(missionID)
		if err != nil {
			return commands.Result{}, err
		}
		cmd, err := commands.NewSubmitDeliveryProofCommand(id, actor, req.ProofURL)
		if err != nil {
			return commands.Result{}, err
		}
		return s.h.SubmitDeliveryProof.Handle(ctx.Request().Context(), cmd)
	})
}

// CancelMission handles POST /api/v1/missions/{missionId}/cancel.
func (s *Server) CancelMission(ctx echo.Context, missionID openapi_types.UUID) error {
	var req api.CancelRequest
	if err := s.bind(ctx, &req); err != nil {
		return err
	}

	return s.transition(ctx, http.StatusOK, func(actor kernel.UUID) (commands.Result, error) {
		id, err := kernel.UUIDFrom(missionID)
		if err != nil {
			return commands.Result{}, err
		}
		cmd, err := commands.NewCancelMissionCommand(id, actor, req.Reason)
		if err != nil {
			return commands.Result{}, err
		}
		return s.h.CancelMission.Handle(ctx.Request().Context(), cmd)
	})
}

// RunDeliverySweep handles POST /internal/sweeps/delivery-confirmations.
func (s *Server) RunDeliverySweep(ctx echo.Context, params api.RunDeliverySweepParams) error {
	batchSize := commands.DefaultSweepBatchSize
	if params.BatchSize != nil {
		batchSize = *params.BatchSize
	}

	cmd, err := commands.NewSweepDeliveryConfirmationsCommand(batchSize)
	if err != nil {
		return s.fail(ctx, err)
	}
	report, err := s.h.SweepDeliveryConfirmations.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := api.SweepReport{
		Processed: report.Count(commands.SweepConfirmed),
		Outcomes:  make([]api.SweepOutcome, len(report.Items)),
	}
	for i, item := range report.Items {
		response.Outcomes[i] = api.SweepOutcome{
			MissionID: item.MissionID.Bytes(),
			Outcome:   string(item.Outcome),
		}
		if item.Err != nil {
			response.Outcomes[i].Error = item.Err.Error()
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// transition runs a mission state change for the authenticated actor and
// renders the resulting mission and parcel.
func (s *Server) transition(ctx echo.Context, status int, run func(actor kernel.UUID) (commands.Result, error)) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}

	result, err := run(actor)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(status, api.Transition{
		Mission: toMission(result.Mission, s.clock.Now()),
		Parcel:  toParcel(result.Parcel, actor),
	})
}

func (s *Server) bind(ctx echo.Context, dst any) error {
	if err := ctx.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(dst); err != nil {
		return err
	}
	return nil
}
