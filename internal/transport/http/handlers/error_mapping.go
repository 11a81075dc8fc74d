package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorCase binds a sentinel error to the HTTP status and message the API
// returns for it. Share endpoints deliberately map authorization failures
// to 404 so grant existence never leaks to strangers.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError matches err against the cases in order and writes
// the first hit. Sentinels are compared with errors.Is, so wrapped
// repository and usecase errors still match. Unmatched errors get the
// fallback response; a zero fallback status degrades to 500.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, mapping := range cases {
		if mapping.Err == nil {
			continue
		}
		if errors.Is(err, mapping.Err) {
			c.JSON(mapping.Status, NewErrorResponse(c, mapping.Message))
			return
		}
	}

	if fallbackStatus == 0 {
		fallbackStatus = http.StatusInternalServerError
	}
	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}
