package dto

import "encoding/json"

type SetStatusRequest struct {
	Status       string  `json:"status"`
	TrackingLink *string `json:"trackingLink"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

// UpdatePriceRequest keeps the price raw so that numbers and numeric strings
// are both accepted and a malformed value is reported on the field.
type UpdatePriceRequest struct {
	Price json.RawMessage `json:"price"`
}

type UpdateDeadlineRequest struct {
	Deadline string `json:"deadline"`
}

type StaffSignatureRequest struct {
	Signature    string          `json:"signature"`
	ContractData json.RawMessage `json:"contractData"`
}

type CustomerSignatureRequest struct {
	ContractData json.RawMessage `json:"contractData"`
}
