package model

import (
	"database/sql"
	"time"
)

type Event struct {
	ID            int64  `db:"id" json:"id"`
	Title         string `db:"title" json:"title"`
	Type          string `db:"type" json:"type,omitempty"`
	StartDatetime string `db:"start_datetime" json:"start_datetime,omitempty"`
	EndDatetime   string `db:"end_datetime" json:"end_datetime,omitempty"`
	Venue         string `db:"venue" json:"venue,omitempty"`
	Description   string `db:"description" json:"description,omitempty"`
	Rules         string `db:"rules" json:"rules,omitempty"`
	Coordinators  string `db:"coordinators" json:"coordinators,omitempty"`
	Prizes        string `db:"prizes" json:"prizes,omitempty"`
	Fee           string `db:"fee" json:"fee,omitempty"`
	Banner        string `db:"banner" json:"banner,omitempty"`
}

type Registration struct {
	ID          int64         `db:"id" json:"id"`
	StudentName string        `db:"student_name" json:"student_name"`
	EventName   string        `db:"event_name" json:"event_name"`
	Tickets     int           `db:"tickets" json:"tickets"`
	Email       string        `db:"email" json:"email,omitempty"`
	Phone       string        `db:"phone" json:"phone,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	EventID     sql.NullInt64 `db:"event_id" json:"event_id,omitempty"`
}

type User struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Password string `db:"password" json:"-"`
	Role     string `db:"role" json:"role"`
}
