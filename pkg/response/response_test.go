package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestJSONWithMeta(t *testing.T) {
	c, rec := newContext()
	JSON(c, http.StatusOK, []int{1, 2}, map[string]interface{}{"count": 2})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"data":[1,2],"meta":{"count":2}}`, rec.Body.String())
}

func TestErrorUsesTypedStatus(t *testing.T) {
	c, rec := newContext()
	Error(c, appErrors.Validation(appErrors.FieldErrors{"DNI": {"exists"}}, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env struct {
		Error appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "DNI: exists", env.Error.Message)
	assert.Len(t, c.Errors, 1)
}

func TestErrorFallsBackToInternal(t *testing.T) {
	c, rec := newContext()
	Error(c, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestAttachment(t *testing.T) {
	c, rec := newContext()
	Attachment(c, "estudiantes.csv", "text/csv; charset=utf-8", []byte("DNI\n"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="estudiantes.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "DNI\n", rec.Body.String())
}
