package handler

import "time"

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, now time.Time, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: now.UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID string, now time.Time, code, message string) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: now.UnixMilli(),
	}
}

// CartItem is one photo in the cart.
type CartItem struct {
	PhotoID int64 `json:"photo_id"`
	Price   int64 `json:"price"`
}

// CartResponse is the response body for the cart endpoints.
type CartResponse struct {
	Items   []CartItem `json:"items"`
	Count   int        `json:"count"`
	Total   int64      `json:"total"`
	Renewed bool       `json:"renewed"`
}

// AddItemRequest is the request body for POST /cart/items.
type AddItemRequest struct {
	PhotoID int64 `json:"photo_id"`
	Price   int64 `json:"price"`
}

// AddItemResponse is the response body for POST /cart/items.
type AddItemResponse struct {
	Added bool         `json:"added"`
	Cart  CartResponse `json:"cart"`
}

// LoginRequest is the request body for POST /login. Credentials are
// checked upstream; this service only binds the identity to the session.
type LoginRequest struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// LoginResponse is the response body for POST /login.
type LoginResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
