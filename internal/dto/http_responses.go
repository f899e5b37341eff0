package dto

import (
	"time"

	"github.com/wb-go/wbf/ginext"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	EventNotFound      = "EVENT_NOT_FOUND"
	InvalidCredentials = "INVALID_CREDENTIALS"
	Forbidden          = "FORBIDDEN"
)

type RegisterRequest struct {
	StudentName string `json:"student_name" validate:"required,min=1,max=255"`
	EventName   string `json:"event_name"`
	EventID     int64  `json:"event_id"`
	Tickets     int    `json:"tickets"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
}

type RegistrationResponse struct {
	ID          int64     `json:"id"`
	StudentName string    `json:"student_name"`
	EventName   string    `json:"event_name"`
	Tickets     int       `json:"tickets"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	EventID     int64     `json:"event_id,omitempty"`
}

type RegistrationCreatedMessage struct {
	RegistrationID int64  `json:"registration_id"`
	StudentName    string `json:"student_name"`
	EventName      string `json:"event_name"`
	Tickets        int    `json:"tickets"`
	Email          string `json:"email,omitempty"`
}

type EventRequest struct {
	Title         string `json:"title" validate:"required"`
	Type          string `json:"type"`
	StartDatetime string `json:"start_datetime"`
	EndDatetime   string `json:"end_datetime"`
	Venue         string `json:"venue"`
	Description   string `json:"description"`
	Rules         string `json:"rules"`
	Coordinators  string `json:"coordinators"`
	Prizes        string `json:"prizes"`
	Fee           string `json:"fee"`
	Banner        string `json:"banner"`
}

type EventResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Type          string `json:"type,omitempty"`
	StartDatetime string `json:"start_datetime,omitempty"`
	EndDatetime   string `json:"end_datetime,omitempty"`
	Venue         string `json:"venue,omitempty"`
	Description   string `json:"description,omitempty"`
	Rules         string `json:"rules,omitempty"`
	Coordinators  string `json:"coordinators,omitempty"`
	Prizes        string `json:"prizes,omitempty"`
	Fee           string `json:"fee,omitempty"`
	Banner        string `json:"banner,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: InternalError,
		},
	})
}

func EventNotFoundError(c *ginext.Context) {
	c.JSON(404, Response{
		Status: "error",
		Error: &Error{
			Code: EventNotFound,
			Desc: "Event not found",
		},
	})
}

func UnauthorizedError(c *ginext.Context) {
	c.JSON(401, Response{
		Status: "error",
		Error: &Error{
			Code: InvalidCredentials,
			Desc: "Invalid username or password",
		},
	})
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{
		Status: "ok",
		Data:   data,
	})
}
