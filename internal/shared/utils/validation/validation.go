package validation

import (
	"errors"
	"regexp"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var timeSlotPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d - ([01]\d|2[0-3]):[0-5]\d$`)

// Register installs the custom binding validators used by the request DTOs.
// Must run once at startup, before the first request is bound.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator engine unavailable")
	}
	if err := v.RegisterValidation("slotdate", validSlotDate); err != nil {
		return err
	}
	return v.RegisterValidation("timeslot", validTimeSlot)
}

// validSlotDate accepts calendar dates in YYYY-MM-DD form.
func validSlotDate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// validTimeSlot accepts window labels like "10:00 - 11:00".
func validTimeSlot(fl validator.FieldLevel) bool {
	return timeSlotPattern.MatchString(fl.Field().String())
}
