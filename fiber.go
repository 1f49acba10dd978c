package bridge

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
)

// NewFiberServer builds a Fiber-backed server with the auth handlers
// mounted. It is a convenience for apps that do not need to customize the
// Fiber instance; anything more involved should use router.NewFiberAdapter
// directly and call Mount.
func NewFiberServer(cfg Config, opts ...Option) (router.Server[*fiber.App], error) {
	handlers, err := BuildHandlers(cfg, opts...)
	if err != nil {
		return nil, err
	}

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			StrictRouting: false,
			UnescapePath:  true,
		}))
	})

	Mount(srv.Router(), handlers)

	return srv, nil
}
