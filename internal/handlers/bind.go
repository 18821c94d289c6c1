package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/dbdesk/mysql-admin/internal/services"
)

// bindJSON decodes the request body keeping numbers as json.Number so that
// integers are bound to the driver without a float64 round trip.
func bindJSON(c *gin.Context, v interface{}) error {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: Invalid request body: %v", services.ErrInvalidInput, err)
	}
	return nil
}
