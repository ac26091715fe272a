package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response.
type Envelope struct {
	Code string      `json:"code"`
	Data interface{} `json:"data"`
}

// Responder writes envelopes using the loaded code table.
type Responder struct {
	table *Table
}

func NewResponder(table *Table) *Responder {
	useJSONFieldNames()
	return &Responder{table: table}
}

func (r *Responder) Envelope(o Outcome, data interface{}) Envelope {
	return Envelope{Code: r.table.Code(o), Data: data}
}

// JSON writes status with the envelope for o carrying data.
func (r *Responder) JSON(c *gin.Context, status int, o Outcome, data interface{}) {
	c.JSON(status, r.Envelope(o, data))
}

// Error writes a data-less envelope.
func (r *Responder) Error(c *gin.Context, status int, o Outcome) {
	c.JSON(status, r.Envelope(o, nil))
}

// Abort writes a data-less envelope and stops the middleware chain.
func (r *Responder) Abort(c *gin.Context, status int, o Outcome) {
	c.AbortWithStatusJSON(status, r.Envelope(o, nil))
}

// Validation writes VALIDATION_ERROR with the field-error map.
func (r *Responder) Validation(c *gin.Context, err *ValidationError) {
	c.JSON(http.StatusBadRequest, r.Envelope(ValidationFailed, err.Fields))
}

// Unexpected writes UNEXPECTED_ERROR with HTTP 500.
func (r *Responder) Unexpected(c *gin.Context) {
	r.Error(c, http.StatusInternalServerError, UnexpectedError)
}
