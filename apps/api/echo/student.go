package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/student"
)

func registerStudentAPI(g *echo.Group, svc *student.Service) {
	registerResource(g, "/students", svc, adminMiddleware())
}
