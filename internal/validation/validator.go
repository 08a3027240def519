// Package validation turns raw request input into validated domain values.
// Every function here is pure: it either returns a domain value or a
// *domain.ValidationError with field-level messages.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/taskdesk/taskdesk-api/internal/domain"
)

// bodyField is the field name reported for payload-level failures.
const bodyField = "body"

// Validator parses and validates task and credential payloads.
type Validator struct {
	validate *validator.Validate
	statuses domain.StatusSet
}

type createTaskRequest struct {
	Name        string `json:"name"        validate:"required,max=128"`
	Description string `json:"description" validate:"required,max=255"`
	Status      string `json:"status"      validate:"required,task_status"`
}

type patchTaskRequest struct {
	Name        *string `json:"name"        validate:"omitnil,min=1,max=128"`
	Description *string `json:"description" validate:"omitnil,min=1,max=255"`
	Status      *string `json:"status"      validate:"omitnil,task_status"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,password_bytes"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// New creates a Validator bound to the given status set.
func New(statuses domain.StatusSet) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	vr := &Validator{validate: v, statuses: statuses}

	// Registration only fails for an empty tag name or nil func.
	_ = v.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
		return statuses.Contains(domain.TaskStatus(fl.Field().String()))
	})
	_ = v.RegisterValidation("password_bytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= domain.MaxPasswordBytes
	})

	return vr
}

// Statuses returns the status set the validator enforces.
func (v *Validator) Statuses() domain.StatusSet {
	return v.statuses
}

// Task validates a full create payload.
func (v *Validator) Task(raw []byte) (domain.TaskInput, error) {
	var req createTaskRequest
	if err := decode(raw, &req); err != nil {
		return domain.TaskInput{}, err
	}
	if err := v.check(req); err != nil {
		return domain.TaskInput{}, err
	}
	return domain.TaskInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
	}, nil
}

// Patch validates a partial update. Absent or null fields are left out of
// the patch; an empty object yields an empty patch.
func (v *Validator) Patch(raw []byte) (domain.TaskPatch, error) {
	var req patchTaskRequest
	if err := decode(raw, &req); err != nil {
		return domain.TaskPatch{}, err
	}
	if err := v.check(req); err != nil {
		return domain.TaskPatch{}, err
	}

	patch := domain.TaskPatch{Name: req.Name, Description: req.Description}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		patch.Status = &s
	}
	return patch, nil
}

// StatusFilter validates the optional list filter. An empty value means no
// filter and returns nil.
func (v *Validator) StatusFilter(raw string) (*domain.TaskStatus, error) {
	if raw == "" {
		return nil, nil
	}
	s := domain.TaskStatus(raw)
	if !v.statuses.Contains(s) {
		return nil, domain.NewValidationError("status", v.statusMessage(), domain.ErrInvalidStatus)
	}
	return &s, nil
}

// TaskID validates a task id taken from the request path.
func (v *Validator) TaskID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", domain.NewValidationError("id", "is required", domain.ErrInvalidID)
	}
	return id, nil
}

// Registration validates a sign-up payload.
func (v *Validator) Registration(raw []byte) (domain.Credentials, error) {
	var req registerRequest
	if err := decode(raw, &req); err != nil {
		return domain.Credentials{}, err
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := v.check(req); err != nil {
		return domain.Credentials{}, err
	}
	return domain.Credentials{Username: req.Username, Password: req.Password}, nil
}

// Login validates a sign-in payload.
func (v *Validator) Login(raw []byte) (domain.Credentials, error) {
	var req loginRequest
	if err := decode(raw, &req); err != nil {
		return domain.Credentials{}, err
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := v.check(req); err != nil {
		return domain.Credentials{}, err
	}
	return domain.Credentials{Username: req.Username, Password: req.Password}, nil
}

func (v *Validator) check(req any) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewValidationError(bodyField, "is invalid", err)
	}

	verr := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), v.message(fe))
	}
	return verr
}

func (v *Validator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Param() == "1" {
			return "must not be empty"
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "task_status":
		return v.statusMessage()
	case "password_bytes":
		return fmt.Sprintf("must be at most %d bytes", domain.MaxPasswordBytes)
	default:
		return "is invalid"
	}
}

func (v *Validator) statusMessage() string {
	return "must be one of: " + strings.Join(v.statuses.Strings(), ", ")
}

// decode unmarshals a JSON object, reporting syntax and type problems as
// field errors.
func decode(raw []byte, dst any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return domain.NewValidationError(bodyField, "is required", domain.ErrInvalidFormat)
	}
	if trimmed[0] != '{' {
		return domain.NewValidationError(bodyField, "must be a JSON object", domain.ErrInvalidFormat)
	}

	if err := json.Unmarshal(trimmed, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domain.NewValidationError(
				typeErr.Field,
				"must be a "+typeErr.Type.String(),
				domain.ErrInvalidFormat,
			)
		}
		return domain.NewValidationError(bodyField, "must be valid JSON", domain.ErrInvalidFormat)
	}
	return nil
}
