package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
	"github.com/i474232898/airquality-dashboard/internal/playback"
)

type openRequest struct {
	Device string `json:"device" validate:"required"`
	Range  string `json:"range"`
}

type seekRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}

type skipRequest struct {
	Direction string `json:"direction" validate:"required,oneof=forward back"`
}

type speedRequest struct {
	Speed float64 `json:"speed" validate:"gt=0"`
}

func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func registerPlayback(r fiber.Router, d Deps) {
	pb := r.Group("/playback")

	pb.Post("/", func(c *fiber.Ctx) error {
		var req openRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		rng, err := airquality.LookupTimeRange(req.Range)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx := requestContext(c)
		device, err := d.Devices.Get(ctx, req.Device)
		if err != nil {
			return toHTTPError(err)
		}
		v, err := d.Playback.Open(ctx, device, rng)
		if err != nil {
			return toHTTPError(err)
		}

		st := v.State()
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"state":  st,
			"places": places(ctx, d, st.Summary),
		})
	})

	pb.Get("/:id", withView(d, func(c *fiber.Ctx, v *playback.View) (playback.State, error) {
		return v.State(), nil
	}))

	pb.Post("/:id/toggle", withView(d, func(c *fiber.Ctx, v *playback.View) (playback.State, error) {
		return v.Toggle()
	}))

	pb.Post("/:id/seek", withView(d, func(c *fiber.Ctx, v *playback.View) (playback.State, error) {
		var req seekRequest
		if err := bindBody(c, &req); err != nil {
			return playback.State{}, err
		}
		return v.Seek(*req.Index)
	}))

	pb.Post("/:id/skip", withView(d, func(c *fiber.Ctx, v *playback.View) (playback.State, error) {
		var req skipRequest
		if err := bindBody(c, &req); err != nil {
			return playback.State{}, err
		}
		return v.Skip(req.Direction == "forward")
	}))

	pb.Post("/:id/speed", withView(d, func(c *fiber.Ctx, v *playback.View) (playback.State, error) {
		var req speedRequest
		if err := bindBody(c, &req); err != nil {
			return playback.State{}, err
		}
		return v.SetSpeed(req.Speed)
	}))

	pb.Delete("/:id", func(c *fiber.Ctx) error {
		if err := d.Playback.Close(c.Params("id")); err != nil {
			return toHTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func withView(d Deps, fn func(*fiber.Ctx, *playback.View) (playback.State, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := d.Playback.Get(c.Params("id"))
		if err != nil {
			return toHTTPError(err)
		}
		st, err := fn(c, v)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(st)
	}
}
