// Package schema declares the inbound lead shape and turns untrusted
// key-value payloads into validated models.Lead values.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"oxyspa/b2b/internal/models"
)

// leadInput is the declared form of a lead submission. A nil pointer means the
// key was absent or null. The validate tags are the single source of truth for
// both validation and the published JSON Schema.
type leadInput struct {
	CompanyName         *string  `json:"company_name" validate:"required,min=2,max=200" desc:"Company or property name"`
	ContactName         *string  `json:"contact_name" validate:"required,min=2,max=120" desc:"Primary contact full name"`
	Email               *string  `json:"email" validate:"required,email" desc:"Business email"`
	Phone               *string  `json:"phone" validate:"omitnil,max=30" desc:"Phone number"`
	Country             *string  `json:"country" validate:"omitnil,max=80" desc:"Country"`
	City                *string  `json:"city" validate:"omitnil,max=80" desc:"City"`
	SpaCount            *int     `json:"spa_count" validate:"omitnil,min=1,max=5000" desc:"Number of pools/spas managed"`
	CurrentChemicals    *string  `json:"current_chemicals" validate:"omitnil,oneof=chlorine bromine mixed other none" desc:"Current disinfection approach"`
	MonthlyChemicalCost *float64 `json:"monthly_chemical_cost" validate:"omitnil,gte=0" desc:"Estimated monthly spend on chemicals (USD)"`
	PainPoints          *string  `json:"pain_points" validate:"omitnil,max=1000" desc:"Key challenges with current solution"`
	Message             *string  `json:"message" validate:"omitnil,max=1500" desc:"Additional notes or requirements"`
	Consent             *bool    `json:"consent" default:"true" desc:"Consent to be contacted and store data"`
	Source              *string  `json:"source" default:"landing" desc:"Lead source identifier"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return jsonName(f)
	})
	return v
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// ValidateLead checks payload against the lead schema. Unknown keys are
// ignored. On failure the returned error is a *ValidationError naming every
// rejected field.
func ValidateLead(payload map[string]interface{}) (models.Lead, error) {
	var in leadInput
	failures := decodeInput(payload, &in)

	if err := validate.Struct(&in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return models.Lead{}, fmt.Errorf("validate lead: %w", err)
		}
		for _, fe := range verrs {
			// A field that could not be decoded keeps its type error.
			if _, seen := failures[fe.Field()]; seen {
				continue
			}
			failures[fe.Field()] = FieldError{Field: fe.Field(), Rule: fe.Tag(), Message: describe(fe)}
		}
	}

	if len(failures) > 0 {
		return models.Lead{}, &ValidationError{Errors: ordered(failures)}
	}
	return in.toLead(), nil
}

func (in *leadInput) toLead() models.Lead {
	lead := models.Lead{
		CompanyName:         *in.CompanyName,
		ContactName:         *in.ContactName,
		Email:               *in.Email,
		Phone:               in.Phone,
		Country:             in.Country,
		City:                in.City,
		SpaCount:            in.SpaCount,
		MonthlyChemicalCost: in.MonthlyChemicalCost,
		PainPoints:          in.PainPoints,
		Message:             in.Message,
		Consent:             true,
		Source:              models.DefaultLeadSource,
	}
	if in.CurrentChemicals != nil {
		approach := models.ChemicalApproach(*in.CurrentChemicals)
		lead.CurrentChemicals = &approach
	}
	if in.Consent != nil {
		lead.Consent = *in.Consent
	}
	// An explicit null source was dropped in decodeInput and stores the default.
	if in.Source != nil {
		lead.Source = *in.Source
	}
	return lead
}

// ordered returns failures sorted by the declaration order of leadInput.
func ordered(failures map[string]FieldError) []FieldError {
	t := reflect.TypeOf(leadInput{})
	out := make([]FieldError, 0, len(failures))
	for i := 0; i < t.NumField(); i++ {
		if fe, ok := failures[jsonName(t.Field(i))]; ok {
			out = append(out, fe)
		}
	}
	return out
}

// decodeInput copies declared keys from payload into in through mapstructure,
// one field at a time so that type mismatches stay keyed by field name.
func decodeInput(payload map[string]interface{}, in *leadInput) map[string]FieldError {
	failures := make(map[string]FieldError)
	rv := reflect.ValueOf(in).Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		name := jsonName(rt.Field(i))
		raw, ok := payload[name]
		// null counts as absent, so defaulted fields take their default.
		if !ok || raw == nil {
			continue
		}

		target := reflect.New(rt.Field(i).Type.Elem())
		if err := decodeValue(raw, target.Interface()); err != nil {
			failures[name] = FieldError{Field: name, Rule: "type", Message: typeMessage(target.Elem().Kind())}
			continue
		}
		rv.Field(i).Set(target)
	}
	return failures
}

func decodeValue(raw, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.DecodeHookFuncType(coerceScalar),
		Result:     out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

var (
	errNotString  = errors.New("must be a string")
	errNotInteger = errors.New("must be an integer")
	errNotNumber  = errors.New("must be a finite number")
	errNotBoolean = errors.New("must be a boolean")
)

func typeMessage(kind reflect.Kind) string {
	switch kind {
	case reflect.Int:
		return errNotInteger.Error()
	case reflect.Float64:
		return errNotNumber.Error()
	case reflect.Bool:
		return errNotBoolean.Error()
	default:
		return errNotString.Error()
	}
}

// coerceScalar is a mapstructure.DecodeHookFuncType accepting the JSON shapes
// a form post produces: integral floats and numeric strings for numbers, and
// 0/1, yes/no, on/off for booleans. Everything else is rejected rather than
// weakly converted.
func coerceScalar(from, to reflect.Type, data interface{}) (interface{}, error) {
	switch to.Kind() {
	case reflect.String:
		if from.Kind() != reflect.String {
			return nil, errNotString
		}
		return data, nil
	case reflect.Int:
		return toInt(data)
	case reflect.Float64:
		return toFloat(data)
	case reflect.Bool:
		return toBool(data)
	default:
		return data, nil
	}
}

func toInt(data interface{}) (int, error) {
	var n int64
	switch v := data.(type) {
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || v > math.MaxInt32 || v < math.MinInt32 {
			return 0, errNotInteger
		}
		n = int64(v)
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return 0, errNotInteger
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
		if err != nil {
			return 0, errNotInteger
		}
		n = parsed
	default:
		return 0, errNotInteger
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, errNotInteger
	}
	return int(n), nil
}

func toFloat(data interface{}) (float64, error) {
	var f float64
	switch v := data.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, errNotNumber
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, errNotNumber
		}
		f = parsed
	default:
		return 0, errNotNumber
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumber
	}
	return f, nil
}

func toBool(data interface{}) (bool, error) {
	switch v := data.(type) {
	case bool:
		return v, nil
	case float64:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
	case int:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
	}
	return false, errNotBoolean
}

func describe(fe validator.FieldError) string {
	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "min":
		if isText {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "max":
		if isText {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
