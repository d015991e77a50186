package dto

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Singleton(t *testing.T) {
	assert.Same(t, Validator(), Validator())
}

func TestValidate(t *testing.T) {
	type input struct {
		Name string `json:"name" validate:"required,notempty"`
		ID   string `json:"id"   validate:"omitempty,uuid"`
		Size int    `json:"size" validate:"gte=0,lte=10"`
	}

	tests := []struct {
		name    string
		in      input
		wantErr bool
		field   string
	}{
		{"valid", input{Name: "a", ID: "7b1e0e8c-3c4f-4f7e-9a53-2f7e8f5b6d10", Size: 3}, false, ""},
		{"missing name", input{Size: 1}, true, "name"},
		{"blank name", input{Name: "   "}, true, "name"},
		{"bad uuid", input{Name: "a", ID: "nope"}, true, "id"},
		{"size too big", input{Name: "a", Size: 11}, true, "size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.in)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			assert.True(t, IsValidationError(err))
			assert.Contains(t, ValidationErrors(err), tt.field)
		})
	}
}

func TestBindQueryAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    int
		wantErr error
	}{
		{"default", "", DefaultObserveSteps, nil},
		{"explicit", "?steps=5", 5, nil},
		{"too many", "?steps=65", 0, ErrValidation},
		{"not a number", "?steps=many", 0, ErrBinding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/trace"+tt.query, nil)

			var req TraceRequest

			err := BindQueryAndValidate(c, &req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, req.GetSteps())
		})
	}
}

func TestBindQueryAndValidate_RunsCustomValidation(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/tasks?cursor=garbage", nil)

	var req PaginationRequest

	err := BindQueryAndValidate(c, &req)
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, ErrInvalidCursor)
}

func TestBindURIAndValidate(t *testing.T) {
	bind := func(id string) error {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/tasks/"+id, nil)
		c.Params = gin.Params{{Key: "id", Value: id}}

		var req TaskRequest

		return BindURIAndValidate(c, &req)
	}

	require.NoError(t, bind("7b1e0e8c-3c4f-4f7e-9a53-2f7e8f5b6d10"))
	require.ErrorIs(t, bind("not-a-uuid"), ErrValidation)
}

func TestValidationMessage(t *testing.T) {
	type input struct {
		Steps int    `json:"steps" validate:"min=1"`
		Name  string `json:"name"  validate:"max=2"`
		Kind  string `json:"kind"  validate:"oneof=a b"`
		Ref   string `json:"ref"   validate:"omitempty,ip"`
	}

	err := Validate(&input{Steps: 0, Name: "abc", Kind: "c", Ref: "::x"})
	require.Error(t, err)

	msgs := ValidationErrors(err)
	assert.Equal(t, "must be at least 1", msgs["steps"])
	assert.Equal(t, "must be at most 2 characters", msgs["name"])
	assert.Equal(t, "must be one of: a b", msgs["kind"])
	assert.Equal(t, "failed validation: ip", msgs["ref"])
}

func TestValidationErrors_UsesRequestFieldNames(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/tasks?limit=0", nil)

	type query struct {
		Limit int `form:"limit" validate:"required"`
		Plain int `validate:"lte=-1"`
	}

	var req query

	err := BindQueryAndValidate(c, &req)
	require.Error(t, err)

	msgs := ValidationErrors(err)
	assert.Equal(t, "this field is required", msgs["limit"])
	assert.Equal(t, "must be less than or equal to -1", msgs["Plain"])
}

func TestMinMaxMessage(t *testing.T) {
	assert.Equal(t, "must be at least 3 characters", minMaxMessage("min", "3", reflect.String))
	assert.Equal(t, "must be at most 9", minMaxMessage("max", "9", reflect.Int))
}

func TestValidationErrors_NotValidatorError(t *testing.T) {
	assert.Empty(t, ValidationErrors(errors.New("plain")))
	assert.False(t, IsValidationError(errors.New("plain")))

	var ve validator.ValidationErrors
	assert.False(t, errors.As(errors.New("plain"), &ve))
}

type checked struct {
	Name string `validate:"required"`
}

func (c *checked) Validate() error {
	if c.Name == "forbidden" {
		return errors.New("name is forbidden")
	}

	return nil
}

func TestValidateAll(t *testing.T) {
	var _ Validatable = (*checked)(nil)

	require.NoError(t, ValidateAll(&checked{Name: "ok"}))
	require.ErrorIs(t, ValidateAll(&checked{}), ErrValidation)

	err := ValidateAll(&checked{Name: "forbidden"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "name is forbidden")
}
