// Lifecycle enumerations for orders, devices, faults, and the priority scale
// used to derive fault SLA windows.
package domain

import "time"

// OrderStatus is the lifecycle state of an order. New orders always start as
// StatusInitiated; transitions are driven by explicit status-update calls.
type OrderStatus string

const (
	StatusInitiated OrderStatus = "initiated"
	StatusDiagnosed OrderStatus = "diagnosed"
	StatusApproved  OrderStatus = "approved"
	StatusInRepair  OrderStatus = "in_repair"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// orderTransitions maps each status to the set of states reachable from it.
// Cancellation is allowed from any non-terminal state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusInitiated: {StatusDiagnosed, StatusCancelled},
	StatusDiagnosed: {StatusApproved, StatusCancelled},
	StatusApproved:  {StatusInRepair, StatusCancelled},
	StatusInRepair:  {StatusReady, StatusCancelled},
	StatusReady:     {StatusDelivered, StatusCancelled},
	StatusDelivered: nil,
	StatusCancelled: nil,
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// DeviceStatus is the mutable state of a device within an order.
type DeviceStatus string

const (
	DeviceReceived DeviceStatus = "received"
	DeviceInRepair DeviceStatus = "in_repair"
	DeviceRepaired DeviceStatus = "repaired"
	DeviceReturned DeviceStatus = "returned"
)

// FaultState is the progress state of a diagnosed fault.
type FaultState string

const (
	FaultPending    FaultState = "pending"
	FaultInProgress FaultState = "in_progress"
	FaultResolved   FaultState = "resolved"
)

// Priority ranks a fault; higher priority means a shorter SLA window.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// slaDays is the policy constant mapping priority to the estimated
// completion window, in days.
var slaDays = map[Priority]int{
	PriorityHigh:   2,
	PriorityMedium: 5,
	PriorityLow:    10,
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	_, ok := slaDays[p]
	return ok
}

// SLADue returns the estimated completion date for a fault of priority p
// diagnosed at the given time. Unknown priorities fall back to the low
// priority window.
func (p Priority) SLADue(from time.Time) time.Time {
	days, ok := slaDays[p]
	if !ok {
		days = slaDays[PriorityLow]
	}
	return from.AddDate(0, 0, days)
}
