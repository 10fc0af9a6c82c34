package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"shopcatalog/internal/models"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Request bodies.
type (
	createCategoryRequest struct {
		Title       string `json:"title" validate:"category_title"`
		Description string `json:"description" validate:"max=2000"`
	}

	updateCategoryRequest = createCategoryRequest

	addParentRequest struct {
		ParentID uuid.UUID `json:"parent_id" validate:"required"`
	}

	addChildRequest struct {
		ChildID uuid.UUID `json:"child_id" validate:"required"`
	}

	replaceParentsRequest struct {
		ParentIDs []uuid.UUID `json:"parent_ids" validate:"max=500,dive,required"`
	}

	relationsRequest struct {
		AddParents     []uuid.UUID `json:"add_parents" validate:"max=500,dive,required"`
		RemoveParents  []uuid.UUID `json:"remove_parents" validate:"max=500,dive,required"`
		AddChildren    []uuid.UUID `json:"add_children" validate:"max=500,dive,required"`
		RemoveChildren []uuid.UUID `json:"remove_children" validate:"max=500,dive,required"`
	}
)

var validate = newValidator()

// newValidator builds the request validator: field names come from json
// tags and category_title applies the model's title rule.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("category_title", func(fl validator.FieldLevel) bool {
		return models.ValidateTitle(fl.Field().String()) == nil
	})
	// uuid.UUID is an array type; validate it as a string so required
	// rejects the zero id.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if id, ok := field.Interface().(uuid.UUID); ok && id != uuid.Nil {
			return id.String()
		}
		return ""
	}, uuid.UUID{})
	return v
}

// decode reads a JSON body into dst and validates it. On failure it writes
// the response and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		badRequest(w, "invalid_body", fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			badRequest(w, "invalid_body", err.Error())
			return false
		}
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse(verrs))
		return false
	}
	return true
}

// validationResponse describes the failing fields. A failing title reports
// the model's own message.
func validationResponse(verrs validator.ValidationErrors) errorResponse {
	resp := errorResponse{Error: "validation_failed", Message: "request validation failed"}
	for _, fe := range verrs {
		resp.Fields = append(resp.Fields, fe.Field())
		if fe.Tag() == "category_title" {
			if err := models.ValidateTitle(fmt.Sprint(fe.Value())); err != nil {
				resp.Error = "invalid_title"
				resp.Message = err.Error()
			}
		}
	}
	return resp
}
