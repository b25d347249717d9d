package validator

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// ReservationValidator checks request shape. Blank names and passphrases are
// left to the mutation planner so the window is always checked first.
type ReservationValidator struct {
	validate  *validator.Validate
	slotTimes []string
	logger    *logger.Logger
}

func NewReservationValidator(log *logger.Logger, slotTimes []string) *ReservationValidator {
	rv := &ReservationValidator{
		validate:  validator.New(),
		slotTimes: slotTimes,
		logger:    log,
	}

	if err := rv.validate.RegisterValidation("slot_date", validateSlotDate); err != nil {
		log.Fatal("Failed to register 'slot_date' validator", "error", err)
	}
	if err := rv.validate.RegisterValidation("slot_time", rv.validateSlotTime); err != nil {
		log.Fatal("Failed to register 'slot_time' validator", "error", err)
	}

	log.Info("Reservation validator initialized successfully", "slot_times", slotTimes)
	return rv
}

func validateSlotDate(fl validator.FieldLevel) bool {
	_, err := model.ParseDate(fl.Field().String(), time.UTC)
	return err == nil
}

func (v *ReservationValidator) validateSlotTime(fl validator.FieldLevel) bool {
	return slices.Contains(v.slotTimes, fl.Field().String())
}

func (v *ReservationValidator) ValidateCreate(req *model.CreateReservationRequest) error {
	return v.validateStruct(req)
}

func (v *ReservationValidator) ValidateCancel(req *model.CancelReservationRequest) error {
	return v.validateStruct(req)
}

func (v *ReservationValidator) ValidateLogin(req *model.AdminLoginRequest) error {
	return v.validateStruct(req)
}

// ValidateSlot checks a (date, time) pair taken from a URL path.
func (v *ReservationValidator) ValidateSlot(date, clock string) error {
	var errs ValidationErrors
	if err := v.validate.Var(date, "required,slot_date"); err != nil {
		errs = append(errs, ValidationError{Field: "date", Message: "date must be formatted as YYYY-MM-DD"})
	}
	if err := v.validate.Var(clock, "required,slot_time"); err != nil {
		errs = append(errs, ValidationError{Field: "time", Message: fmt.Sprintf("time must be one of: %s", strings.Join(v.slotTimes, ", "))})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *ReservationValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "slot_date":
			message = fmt.Sprintf("%s must be formatted as YYYY-MM-DD", err.Field())
		case "slot_time":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), strings.Join(v.slotTimes, ", "))
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
