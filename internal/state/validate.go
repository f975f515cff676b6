package state

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bobmcallan/vire-markets/internal/models"
)

var recordValidator = newRecordValidator()

func newRecordValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		switch f.Kind() {
		case reflect.Float32, reflect.Float64:
			return !math.IsNaN(f.Float()) && !math.IsInf(f.Float(), 0)
		default:
			return false
		}
	})
	return v
}

// ValidateRecord checks that a record carries its identity and a finite,
// non-null latest price.
func ValidateRecord(r *models.AssetRecord) error {
	if r == nil {
		return errors.New("record is null")
	}
	if err := recordValidator.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid record: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}
