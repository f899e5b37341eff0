package service

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"eventreg/internal/auth"
	"eventreg/internal/dto"
	"eventreg/internal/model"
	"eventreg/internal/repo"
	"eventreg/pkg/validator"
)

type Service interface {
	Health(ctx *ginext.Context)
	Register(ctx *ginext.Context)
	RecentRegistrations(ctx *ginext.Context)
	AllEvents(ctx *ginext.Context)
	EventByID(ctx *ginext.Context)
	Login(ctx *ginext.Context)

	CreateEvent(ctx *ginext.Context)
	UpdateEvent(ctx *ginext.Context)
	DeleteEvent(ctx *ginext.Context)
	AllRegistrations(ctx *ginext.Context)
	RegistrationsForEvent(ctx *ginext.Context)
	RegistrationsForEmail(ctx *ginext.Context)
}

// Publisher is the post-commit notification hook. A nil Publisher
// disables notifications entirely.
type Publisher interface {
	Publish(message []byte) error
}

type service struct {
	repo      repo.Repository
	log       *zerolog.Logger
	publisher Publisher
	jwtSecret string
	tokenTTL  time.Duration
}

func NewService(repository repo.Repository, logger *zerolog.Logger, publisher Publisher, jwtSecret string, tokenTTL time.Duration) Service {
	return &service{
		repo:      repository,
		log:       logger,
		publisher: publisher,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (s *service) Health(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"status": "ok"})
}

func (s *service) Register(ctx *ginext.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	req.StudentName = strings.TrimSpace(req.StudentName)
	if req.StudentName == "" || (req.EventName == "" && req.EventID == 0) {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "student_name and event selection are required")
		return
	}

	registration := &model.Registration{
		StudentName: req.StudentName,
		EventName:   req.EventName,
		Tickets:     req.Tickets,
		Email:       req.Email,
		Phone:       req.Phone,
	}
	if registration.Tickets <= 0 {
		registration.Tickets = 1
	}

	// Registering against a known event takes the event title over the
	// free-text name and records the back-reference.
	if req.EventID > 0 {
		event, err := s.repo.EventByID(ctx.Request.Context(), req.EventID)
		if err != nil {
			if errors.Is(err, repo.ErrEventNotFound) && req.EventName == "" {
				dto.EventNotFoundError(ctx)
				return
			}
			if !errors.Is(err, repo.ErrEventNotFound) {
				s.log.Error().Err(err).Msg("failed to resolve event for registration")
				dto.InternalServerError(ctx)
				return
			}
		} else {
			registration.EventName = event.Title
			registration.EventID = sql.NullInt64{Int64: event.ID, Valid: true}
		}
	}

	id, err := s.repo.InsertRegistration(ctx.Request.Context(), registration)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to insert registration")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("registration_id", id).Msg("registration created successfully")

	if s.publisher != nil {
		msg := dto.RegistrationCreatedMessage{
			RegistrationID: id,
			StudentName:    registration.StudentName,
			EventName:      registration.EventName,
			Tickets:        registration.Tickets,
			Email:          registration.Email,
		}
		if payload, err := json.Marshal(msg); err == nil {
			if err := s.publisher.Publish(payload); err != nil {
				s.log.Warn().Err(err).Msg("failed to publish registration-created message")
			}
		}
	}

	dto.SuccessCreatedResponse(ctx, dto.RegistrationResponse{
		ID:          id,
		StudentName: registration.StudentName,
		EventName:   registration.EventName,
		Tickets:     registration.Tickets,
		Email:       registration.Email,
		Phone:       registration.Phone,
		CreatedAt:   time.Now().UTC(),
		EventID:     registration.EventID.Int64,
	})
}

func (s *service) RecentRegistrations(ctx *ginext.Context) {
	limit := 50
	if l := ctx.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	regs, err := s.repo.RecentRegistrations(ctx.Request.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get recent registrations")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, registrationResponses(regs))
}

func (s *service) AllEvents(ctx *ginext.Context) {
	events, err := s.repo.AllEvents(ctx.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get events")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.EventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, eventResponse(&e))
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) EventByID(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	event, err := s.repo.EventByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to get event")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, eventResponse(event))
}

func (s *service) Login(ctx *ginext.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	ok, err := s.repo.ValidateCredential(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to validate credential")
		dto.InternalServerError(ctx)
		return
	}
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}

	token, err := auth.NewAccessToken(s.jwtSecret, req.Username, s.tokenTTL)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to mint access token")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Str("username", req.Username).Msg("admin logged in")
	dto.SuccessResponse(ctx, dto.LoginResponse{Token: token.Token, ExpiresAt: token.Exp})
}

func (s *service) CreateEvent(ctx *ginext.Context) {
	var req dto.EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event := eventFromRequest(&req)
	id, err := s.repo.CreateEvent(ctx.Request.Context(), event)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create event in DB")
		dto.InternalServerError(ctx)
		return
	}

	event.ID = id
	s.log.Info().Int64("event_id", id).Msg("event created successfully")
	dto.SuccessCreatedResponse(ctx, eventResponse(event))
}

func (s *service) UpdateEvent(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	var req dto.EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event := eventFromRequest(&req)
	event.ID = id

	if err := s.repo.UpdateEvent(ctx.Request.Context(), event); err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to update event")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("event_id", id).Msg("event updated successfully")
	dto.SuccessResponse(ctx, eventResponse(event))
}

func (s *service) DeleteEvent(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	if err := s.repo.DeleteEvent(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to delete event")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("event_id", id).Msg("event deleted")
	dto.SuccessResponse(ctx, map[string]int64{"deleted": id})
}

func (s *service) AllRegistrations(ctx *ginext.Context) {
	regs, err := s.repo.AllRegistrations(ctx.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get registrations")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, registrationResponses(regs))
}

func (s *service) RegistrationsForEvent(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	regs, err := s.repo.RegistrationsForEvent(ctx.Request.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get registrations for event")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, registrationResponses(regs))
}

func (s *service) RegistrationsForEmail(ctx *ginext.Context) {
	email := ctx.Query("email")
	if email == "" {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "email query parameter is required")
		return
	}

	regs, err := s.repo.RegistrationsForEmail(ctx.Request.Context(), email)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get registrations for email")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, registrationResponses(regs))
}

func registrationResponses(regs []model.Registration) []dto.RegistrationResponse {
	resp := make([]dto.RegistrationResponse, 0, len(regs))
	for _, r := range regs {
		resp = append(resp, dto.RegistrationResponse{
			ID:          r.ID,
			StudentName: r.StudentName,
			EventName:   r.EventName,
			Tickets:     r.Tickets,
			Email:       r.Email,
			Phone:       r.Phone,
			CreatedAt:   r.CreatedAt,
			EventID:     r.EventID.Int64,
		})
	}
	return resp
}

func eventFromRequest(req *dto.EventRequest) *model.Event {
	return &model.Event{
		Title:         req.Title,
		Type:          req.Type,
		StartDatetime: req.StartDatetime,
		EndDatetime:   req.EndDatetime,
		Venue:         req.Venue,
		Description:   req.Description,
		Rules:         req.Rules,
		Coordinators:  req.Coordinators,
		Prizes:        req.Prizes,
		Fee:           req.Fee,
		Banner:        req.Banner,
	}
}

func eventResponse(e *model.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:            e.ID,
		Title:         e.Title,
		Type:          e.Type,
		StartDatetime: e.StartDatetime,
		EndDatetime:   e.EndDatetime,
		Venue:         e.Venue,
		Description:   e.Description,
		Rules:         e.Rules,
		Coordinators:  e.Coordinators,
		Prizes:        e.Prizes,
		Fee:           e.Fee,
		Banner:        e.Banner,
	}
}
