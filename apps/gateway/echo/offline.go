package echogw

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HeaderOfflineResponse marks synthesized placeholder responses so the
// front end can tell them apart from real upstream data.
const HeaderOfflineResponse = "X-Offline-Response"

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// placeholders keeps known read endpoints rendering an empty-but-valid
// shape instead of an error while offline.
var placeholders = map[string]apiResponse{
	"/courses/public/all": {
		Success: true,
		Data:    []interface{}{},
		Message: "Offline mode - limited data available",
	},
	"/user/progress": {
		Success: true,
		Data: map[string]interface{}{
			"completedCourses":  0,
			"enrolledCourses":   0,
			"averageCompletion": 0,
		},
		Message: "Offline mode - progress data unavailable",
	},
}

// offlinePlaceholder is the end of the API fallback chain: no network and
// no cached copy. Known paths get a benign empty payload, everything else
// an explicit failure envelope. Always HTTP 200 so the front end handles
// the body rather than a transport error.
func (s *server) offlinePlaceholder(ctx echo.Context, path string) error {
	resp, ok := placeholders[path]
	if !ok {
		resp = apiResponse{Success: false, Message: "This feature requires an internet connection"}
	}
	ctx.Response().Header().Set(HeaderOfflineResponse, "true")
	return ctx.JSON(http.StatusOK, resp)
}
