package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"slotbook/internal/reservations/colors"
	"slotbook/internal/reservations/eligibility"
	reservationserrors "slotbook/internal/reservations/errors"
	"slotbook/internal/reservations/mutation"
	"slotbook/internal/reservations/report"
	"slotbook/internal/reservations/validator"
	"slotbook/internal/reservations/window"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/events"
	"slotbook/pkg/locale"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"
	"slotbook/pkg/store"
)

type ReservationService interface {
	Window(ctx context.Context) window.Window
	Calendar(ctx context.Context, month string) (report.Month, error)
	DaySlots(ctx context.Context, date string) ([]report.SlotView, error)
	Select(ctx context.Context, date, clock string) (mutation.Action, error)
	Create(ctx context.Context, req *model.CreateReservationRequest) (*model.SlotReservation, error)
	Cancel(ctx context.Context, date, clock string, req *model.CancelReservationRequest) error
	Week(ctx context.Context) report.Week
	Colors(ctx context.Context) colors.Assignment
	Export(ctx context.Context) (filename string, body string, err error)
}

type reservationService struct {
	source    SnapshotSource
	store     store.Store
	validator *validator.ReservationValidator
	publisher events.Publisher
	cfg       *config.Config
	clocks    []model.Clock
	quota     eligibility.QuotaPolicy
}

func NewReservationService(
	source SnapshotSource,
	st store.Store,
	validator *validator.ReservationValidator,
	publisher events.Publisher,
	cfg *config.Config,
) ReservationService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &reservationService{
		source:    source,
		store:     st,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		clocks:    Clocks(cfg.SlotTimes),
		quota:     Quota(cfg),
	}
}

// Clocks parses the configured slot times, skipping anything malformed.
// Config validation rejects malformed times before this runs.
func Clocks(times []string) []model.Clock {
	clocks := make([]model.Clock, 0, len(times))
	for _, t := range times {
		c, err := model.ParseClock(t)
		if err != nil {
			continue
		}
		clocks = append(clocks, c)
	}
	return clocks
}

func Quota(cfg *config.Config) eligibility.QuotaPolicy {
	return eligibility.QuotaPolicy{
		Times:    cfg.QuotaTimes,
		Weekdays: cfg.QuotaWeekdays,
		Cap:      cfg.QuotaCap,
	}
}

// Policy builds the booking window policy from configuration.
func Policy(cfg *config.Config) window.Policy {
	return window.Policy{
		Location:  cfg.Location,
		Weekday:   cfg.AdmissionWeekday,
		OpenHour:  cfg.AdmissionOpenHour,
		CloseHour: cfg.CloseHour,
	}
}

func (s *reservationService) Window(ctx context.Context) window.Window {
	return s.source.State().Window
}

func (s *reservationService) Calendar(ctx context.Context, month string) (report.Month, error) {
	st := s.source.State()
	loc := st.Window.Location()

	first := st.Now.In(loc)
	if month != "" {
		parsed, err := time.ParseInLocation(model.MonthLayout, month, loc)
		if err != nil {
			return report.Month{}, apperrors.Validation(locale.MsgInvalidMonth, map[string]any{
				"month": month,
			})
		}
		first = parsed
	}

	return report.MonthCalendar(st.Snapshot, st.Window, first, st.Now, s.clocks, s.cfg.WeekdayLabels), nil
}

func (s *reservationService) DaySlots(ctx context.Context, date string) ([]report.SlotView, error) {
	st := s.source.State()
	day, err := model.ParseDate(date, st.Window.Location())
	if err != nil {
		return nil, apperrors.Validation(locale.MsgInvalidDate, map[string]any{
			"date": date,
		})
	}
	return report.DaySlots(st.Snapshot, st.Window, day, s.clocks, colors.Assign(st.Snapshot)), nil
}

func (s *reservationService) Select(ctx context.Context, date, clock string) (mutation.Action, error) {
	st := s.source.State()
	day, c, err := s.parseSlot(st.Window, date, clock)
	if err != nil {
		return "", err
	}

	action, err := mutation.Select(st.Snapshot, st.Window, day, c)
	if err != nil {
		return "", s.mapError(err, locale.MsgValidationFailed)
	}
	return action, nil
}

func (s *reservationService) Create(ctx context.Context, req *model.CreateReservationRequest) (*model.SlotReservation, error) {
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Reservation validation failed",
			"date", req.Date,
			"time", req.Time,
			"error", err,
		)
		return nil, apperrors.Validation(locale.MsgValidationFailed, map[string]any{
			"error": err.Error(),
		})
	}

	st := s.source.State()
	day, c, err := s.parseSlot(st.Window, req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	// The name is stored as entered so it compares equal to names written by
	// other clients of the same store.
	name := req.Name
	next, err := mutation.PlanCreate(st.Snapshot, st.Window, s.quota, mutation.CreateRequest{
		Date:       day,
		Clock:      c,
		Name:       name,
		Passphrase: sanitizer.NormalizePassphrase(req.Passphrase),
	})
	if err != nil {
		s.cfg.Log.Info("Reservation rejected",
			"date", req.Date,
			"time", req.Time,
			"name", name,
			"reason", err,
		)
		return nil, s.mapError(err, locale.MsgCreateFailed)
	}

	if err := s.write(ctx, st.Version, next); err != nil {
		s.cfg.Log.Error("Failed to write reservation",
			"date", req.Date,
			"time", req.Time,
			"version", st.Version,
			"error", err,
		)
		return nil, s.mapError(err, locale.MsgCreateFailed)
	}

	s.cfg.Log.Info("Reservation created",
		"date", req.Date,
		"time", req.Time,
		"name", name,
	)
	s.publish(ctx, model.ReservationEvent{
		Type:       model.EventReservationCreated,
		Date:       req.Date,
		Time:       req.Time,
		Name:       name,
		OccurredAt: st.Now,
	})

	return &model.SlotReservation{Date: req.Date, Time: req.Time, Name: name}, nil
}

func (s *reservationService) Cancel(ctx context.Context, date, clock string, req *model.CancelReservationRequest) error {
	if err := s.validator.ValidateCancel(req); err != nil {
		return apperrors.Validation(locale.MsgValidationFailed, map[string]any{
			"error": err.Error(),
		})
	}

	st := s.source.State()
	day, c, err := s.parseSlot(st.Window, date, clock)
	if err != nil {
		return err
	}

	next, held, err := mutation.PlanCancel(st.Snapshot, st.Window, mutation.CancelRequest{
		Date:       day,
		Clock:      c,
		Passphrase: req.Passphrase,
	})
	if err != nil {
		s.cfg.Log.Info("Cancellation rejected",
			"date", date,
			"time", clock,
			"reason", err,
		)
		return s.mapError(err, locale.MsgCancelFailed)
	}

	if err := s.write(ctx, st.Version, next); err != nil {
		s.cfg.Log.Error("Failed to write cancellation",
			"date", date,
			"time", clock,
			"version", st.Version,
			"error", err,
		)
		return s.mapError(err, locale.MsgCancelFailed)
	}

	s.cfg.Log.Info("Reservation cancelled",
		"date", date,
		"time", clock,
		"name", held.Holder(),
	)
	s.publish(ctx, model.ReservationEvent{
		Type:       model.EventReservationCancelled,
		Date:       date,
		Time:       clock,
		Name:       held.Holder(),
		OccurredAt: st.Now,
	})
	return nil
}

func (s *reservationService) Week(ctx context.Context) report.Week {
	st := s.source.State()
	return report.WeekGrid(st.Snapshot, st.Window, s.clocks, s.cfg.WeekdayLabels, colors.Assign(st.Snapshot))
}

func (s *reservationService) Colors(ctx context.Context) colors.Assignment {
	return colors.Assign(s.source.State().Snapshot)
}

func (s *reservationService) Export(ctx context.Context) (string, string, error) {
	st := s.source.State()
	body, err := report.Export(st.Snapshot, st.Window, s.clocks, s.cfg.WeekdayLabels)
	if err != nil {
		return "", "", s.mapError(err, locale.MsgEmptyExport)
	}
	return report.ExportFilename(st.Now.In(st.Window.Location())), body, nil
}

func (s *reservationService) parseSlot(w window.Window, date, clock string) (time.Time, model.Clock, error) {
	if err := s.validator.ValidateSlot(date, clock); err != nil {
		return time.Time{}, model.Clock{}, apperrors.Validation(locale.MsgValidationFailed, map[string]any{
			"error": err.Error(),
		})
	}
	day, err := model.ParseDate(date, w.Location())
	if err != nil {
		return time.Time{}, model.Clock{}, apperrors.Validation(locale.MsgInvalidDate, map[string]any{"date": date})
	}
	c, err := model.ParseClock(clock)
	if err != nil {
		return time.Time{}, model.Clock{}, apperrors.Validation(locale.MsgUnknownTime, map[string]any{"time": clock})
	}
	return day, c, nil
}

// write replaces the whole snapshot. With conditional writes enabled it only
// succeeds while the store still holds the version the plan was built on.
func (s *reservationService) write(ctx context.Context, version string, next model.Snapshot) error {
	if s.cfg.StoreWriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.StoreWriteTimeout)
		defer cancel()
	}

	var err error
	if s.cfg.StoreConditionalWrites {
		_, err = s.store.ReplaceIfUnchanged(ctx, version, next)
	} else {
		_, err = s.store.Replace(ctx, next)
	}
	return err
}

// publish announces a change that is already stored. A failure is logged and
// never undoes the write. The publisher decides whether delivery is async.
func (s *reservationService) publish(ctx context.Context, evt model.ReservationEvent) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), evt); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event",
			"type", evt.Type,
			"date", evt.Date,
			"time", evt.Time,
			"error", err,
		)
	}
}

// mapError turns domain failures into AppErrors whose messages are locale
// keys. writeFailed is the message for a store write that did not go through.
func (s *reservationService) mapError(err error, writeFailed string) error {
	switch {
	case errors.Is(err, reservationserrors.ErrWindowClosed):
		return apperrors.OutsideWindow(locale.MsgWindowClosed, string(eligibility.Closed))
	case errors.Is(err, reservationserrors.ErrOutOfRange):
		return apperrors.OutsideWindow(locale.MsgOutOfRange, string(eligibility.OutOfRange))
	case errors.Is(err, reservationserrors.ErrMissingFields):
		return apperrors.Validation(locale.MsgMissingFields, nil)
	case errors.Is(err, reservationserrors.ErrWrongPassphrase):
		return apperrors.Validation(locale.MsgWrongPassphrase, nil)
	case errors.Is(err, reservationserrors.ErrSlotTaken):
		return apperrors.SlotTaken(locale.MsgSlotTaken)
	case errors.Is(err, reservationserrors.ErrQuotaExceeded):
		return apperrors.QuotaExceeded(locale.MsgQuotaExceeded, s.quota.Cap)
	case errors.Is(err, reservationserrors.ErrSlotEmpty):
		return apperrors.New(apperrors.CodeNotFound, locale.MsgSlotEmpty, http.StatusNotFound)
	case errors.Is(err, reservationserrors.ErrEmptyExport):
		return apperrors.EmptyExport(locale.MsgEmptyExport)
	case errors.Is(err, store.ErrVersionMismatch):
		return apperrors.StaleSnapshot(locale.MsgStaleSnapshot)
	}
	return apperrors.StoreWriteFailed(writeFailed, err)
}
