package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTable_Default(t *testing.T) {
	table, err := LoadTable("")
	require.NoError(t, err)

	assert.Equal(t, "S001", table.Code(LoginSuccess))
	assert.Equal(t, "E001", table.Code(InvalidCredentials))
	assert.Equal(t, "E004", table.Code(AccountLocked))
	assert.Equal(t, "E007", table.Code(Forbidden))
	assert.Equal(t, "SOMETHING_ELSE", table.Code(Outcome("SOMETHING_ELSE")))
}

func TestLoadTable_File(t *testing.T) {
	var codes map[string]string
	require.NoError(t, json.Unmarshal(defaultCodes, &codes))
	codes[string(LoginSuccess)] = "200-LOGIN"

	raw, err := json.Marshal(codes)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "codes.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, "200-LOGIN", table.Code(LoginSuccess))
}

func TestParseTable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{name: "malformed", raw: "{", wantMsg: "failed to parse"},
		{name: "missing outcomes", raw: `{"LOGIN_SUCCESS": "S001"}`, wantMsg: "ACCOUNT_LOCKED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tt.raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

type bindTarget struct {
	Name     string `json:"name" binding:"required,max=5"`
	Quantity *int   `json:"quantity" binding:"required,gte=0"`
	Status   string `json:"status" binding:"omitempty,oneof=PENDING APPROVED"`
}

func bind(t *testing.T, body string) *ValidationError {
	gin.SetMode(gin.TestMode)
	NewResponder(mustTable(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var target bindTarget
	err := c.ShouldBindJSON(&target)
	require.Error(t, err)
	return FromBindError(err)
}

func mustTable(t *testing.T) *Table {
	table, err := LoadTable("")
	require.NoError(t, err)
	return table
}

func TestFromBindError(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields map[string][]string
	}{
		{
			name: "missing fields",
			body: `{}`,
			fields: map[string][]string{
				"name":     {"This field is required."},
				"quantity": {"This field is required."},
			},
		},
		{
			name: "constraint violations",
			body: `{"name": "toolong", "quantity": -1, "status": "NOPE"}`,
			fields: map[string][]string{
				"name":     {"Ensure this field has no more than 5 characters."},
				"quantity": {"Ensure this value is greater than or equal to 0."},
				"status":   {`"NOPE" is not a valid choice.`},
			},
		},
		{
			name:   "wrong type",
			body:   `{"name": "x", "quantity": "ten"}`,
			fields: map[string][]string{"quantity": {"Expected a value of type int."}},
		},
		{
			name:   "malformed json",
			body:   `{"name": `,
			fields: map[string][]string{NonFieldErrors: {"Malformed JSON body."}},
		},
		{
			name:   "empty body",
			body:   ``,
			fields: map[string][]string{NonFieldErrors: {"No data provided."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := bind(t, tt.body)
			assert.Equal(t, tt.fields, ve.Fields)
		})
	}
}

func TestResponder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewResponder(mustTable(t))

	t.Run("json with data", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		r.JSON(c, http.StatusCreated, MedicationCreated, gin.H{"id": 1})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"code":"S004","data":{"id":1}}`, w.Body.String())
	})

	t.Run("error has null data", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		r.Error(c, http.StatusForbidden, Forbidden)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"code":"E007","data":null}`, w.Body.String())
	})

	t.Run("validation", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		r.Validation(c, NewValidationError().Add("password", "This password is too short."))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"code":"E002","data":{"password":["This password is too short."]}}`, w.Body.String())
	})

	t.Run("abort stops chain", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		r.Abort(c, http.StatusUnauthorized, Unauthorized)

		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestValidationError(t *testing.T) {
	ve := NewValidationError()
	assert.NoError(t, ve.OrNil())

	ve.Add("b", "second").Add("a", "first")
	require.Error(t, ve.OrNil())
	assert.Equal(t, "validation failed: a: first; b: second", ve.Error())
}
