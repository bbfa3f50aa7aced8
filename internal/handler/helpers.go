package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/tinks231/bizbooks/internal/apierror"
	"github.com/tinks231/bizbooks/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0 and gt=0 work on money fields.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs the validator tags.
// Returns false after writing the error response; the caller should return.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQueryAndValidate is bindAndValidate for query strings.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeServiceError maps service errors onto HTTP statuses. Anything not
// recognised is logged and reported as a 500 without detail.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFormNotFound):
		c.JSON(http.StatusNotFound, apierror.New("form not found"))
	case errors.Is(err, service.ErrRowNotFound):
		c.JSON(http.StatusNotFound, apierror.New("row not found"))
	case errors.Is(err, service.ErrItemNotFound):
		c.JSON(http.StatusNotFound, apierror.New("item not found"))
	case errors.Is(err, service.ErrDuplicateItem):
		c.JSON(http.StatusConflict, apierror.New("an item with this SKU or item code already exists"))
	case errors.Is(err, service.ErrNoSuchOption):
		c.JSON(http.StatusConflict, apierror.New("option is not in the current dropdown"))
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}
