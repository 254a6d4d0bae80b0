package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/ventas-api/pkg/logger"
)

// RequestLogger abre un span por petición (el span de la mutación cuelga de él vía
// c.UserContext()) y registra método, ruta, estado y duración.
func RequestLogger(log *logger.Logger, tracer trace.Tracer) fiber.Handler {
	log = log.Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		ctx, span := tracer.Start(c.UserContext(), c.Method()+" "+c.Path())
		defer span.End()
		c.SetUserContext(ctx)

		err := c.Next()
		if err != nil {
			// Deja que el ErrorHandler de fiber fije el estado antes de registrar.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		span.SetAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.route", c.Route().Path),
			attribute.Int("http.status_code", status),
		)

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Method()).Str("path", c.Path()).Int("status", status).
			Dur("elapsed", time.Since(start)).Str("user_id", GetUserID(c)).Msg("request")
		return nil
	}
}
