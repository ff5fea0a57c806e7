package http

import (
	"net/http"

	"pizzaworkflow/internal/core/application/usecases/commands"
	"pizzaworkflow/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

// Server exposes the order workflow operations over HTTP.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	startOrderHandler       commands.StartOrderCommandHandler
	submitValidationHandler commands.SubmitValidationCommandHandler
	pauseOrderHandler       commands.PauseOrderCommandHandler
	resumeOrderHandler      commands.ResumeOrderCommandHandler
	cancelOrderHandler      commands.CancelOrderCommandHandler
	deleteOrderHandler      commands.DeleteOrderCommandHandler

	// Query handlers
	getWorkflowStatusHandler queries.GetWorkflowStatusQueryHandler
	getOrderHandler          queries.GetOrderQueryHandler
}

func NewServer(
	startOrderHandler commands.StartOrderCommandHandler,
	submitValidationHandler commands.SubmitValidationCommandHandler,
	pauseOrderHandler commands.PauseOrderCommandHandler,
	resumeOrderHandler commands.ResumeOrderCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	deleteOrderHandler commands.DeleteOrderCommandHandler,
	getWorkflowStatusHandler queries.GetWorkflowStatusQueryHandler,
	getOrderHandler queries.GetOrderQueryHandler,
) *Server {
	return &Server{
		startOrderHandler:        startOrderHandler,
		submitValidationHandler:  submitValidationHandler,
		pauseOrderHandler:        pauseOrderHandler,
		resumeOrderHandler:       resumeOrderHandler,
		cancelOrderHandler:       cancelOrderHandler,
		deleteOrderHandler:       deleteOrderHandler,
		getWorkflowStatusHandler: getWorkflowStatusHandler,
		getOrderHandler:          getOrderHandler,
	}
}

// Register mounts the workflow routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/start-order", s.StartOrder)
	e.POST("/validate-pizza", s.ValidatePizza)
	e.GET("/get-status/:order_id", s.GetStatus)
	e.POST("/pause-order", s.PauseOrder)
	e.POST("/resume-order", s.ResumeOrder)
	e.POST("/cancel-order", s.CancelOrder)
	e.GET("/order/:order_id", s.GetOrder)
	e.DELETE("/order/:order_id", s.DeleteOrder)
}

// StartOrder handles POST /start-order.
func (s *Server) StartOrder(ctx echo.Context) error {
	var req StartOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewStartOrderCommand(req.OrderID, req.Customer, req.PizzaType, req.Size)
	if err != nil {
		return errorResponse(ctx, err)
	}

	result, err := s.startOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, StartOrderResponse{
		OrderID:    result.OrderID,
		InstanceID: result.InstanceID,
		Status:     result.Status.String(),
	})
}

// ValidatePizza handles POST /validate-pizza and raises ValidationComplete.
func (s *Server) ValidatePizza(ctx echo.Context) error {
	var req ValidatePizzaRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewSubmitValidationCommand(req.OrderID, req.Approved, req.Reason)
	if err != nil {
		return errorResponse(ctx, err)
	}

	result, err := s.submitValidationHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, ValidatePizzaResponse{
		OrderID:          result.OrderID,
		ValidationStatus: result.ValidationStatus,
	})
}

// GetStatus handles GET /get-status/:order_id.
func (s *Server) GetStatus(ctx echo.Context) error {
	query, err := queries.NewGetWorkflowStatusQuery(ctx.Param("order_id"))
	if err != nil {
		return errorResponse(ctx, err)
	}

	response, err := s.getWorkflowStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, StatusResponse{
		OrderID: response.OrderID,
		Status:  response.Report.State.String(),
		Details: response.Report,
	})
}

// PauseOrder handles POST /pause-order.
func (s *Server) PauseOrder(ctx echo.Context) error {
	var req ControlRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewPauseOrderCommand(req.OrderID)
	if err != nil {
		return errorResponse(ctx, err)
	}
	result, err := s.pauseOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, ControlResponse(result))
}

// ResumeOrder handles POST /resume-order.
func (s *Server) ResumeOrder(ctx echo.Context) error {
	var req ControlRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewResumeOrderCommand(req.OrderID)
	if err != nil {
		return errorResponse(ctx, err)
	}
	result, err := s.resumeOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, ControlResponse(result))
}

// CancelOrder handles POST /cancel-order.
func (s *Server) CancelOrder(ctx echo.Context) error {
	var req ControlRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCancelOrderCommand(req.OrderID, req.Reason)
	if err != nil {
		return errorResponse(ctx, err)
	}
	result, err := s.cancelOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, ControlResponse(result))
}

// GetOrder handles GET /order/:order_id and returns the stored document.
func (s *Server) GetOrder(ctx echo.Context) error {
	query, err := queries.NewGetOrderQuery(ctx.Param("order_id"))
	if err != nil {
		return errorResponse(ctx, err)
	}

	o, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, o.Document())
}

// DeleteOrder handles DELETE /order/:order_id. Only the stored document is
// removed; the workflow instance keeps its state.
func (s *Server) DeleteOrder(ctx echo.Context) error {
	cmd, err := commands.NewDeleteOrderCommand(ctx.Param("order_id"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	result, err := s.deleteOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, ControlResponse(result))
}
