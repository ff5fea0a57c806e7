package http

import "pizzaworkflow/internal/core/domain/model/workflow"

type StartOrderRequest struct {
	OrderID   string `json:"order_id"`
	Customer  string `json:"customer"`
	PizzaType string `json:"pizza_type"`
	Size      string `json:"size"`
}

type StartOrderResponse struct {
	OrderID    string `json:"order_id"`
	InstanceID string `json:"instance_id"`
	Status     string `json:"status"`
}

type ValidatePizzaRequest struct {
	OrderID  string `json:"order_id"`
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

type ValidatePizzaResponse struct {
	OrderID          string `json:"order_id"`
	ValidationStatus string `json:"validation_status"`
}

type StatusResponse struct {
	OrderID string                `json:"order_id"`
	Status  string                `json:"status"`
	Details workflow.StatusReport `json:"details"`
}

// ControlRequest is the body of pause, resume and cancel. Reason is only
// read by cancel.
type ControlRequest struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason,omitempty"`
}

type ControlResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
