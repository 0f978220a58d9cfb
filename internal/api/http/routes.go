package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
	"github.com/i474232898/airquality-dashboard/internal/export"
	"github.com/i474232898/airquality-dashboard/internal/geocode"
	"github.com/i474232898/airquality-dashboard/internal/playback"
	"github.com/i474232898/airquality-dashboard/internal/route"
	"github.com/i474232898/airquality-dashboard/internal/session"
	"github.com/i474232898/airquality-dashboard/internal/store"
)

var validate = validator.New()

// DeviceStore looks devices up by id.
type DeviceStore interface {
	Get(ctx context.Context, id string) (airquality.Device, error)
	List(ctx context.Context) ([]airquality.Device, error)
}

// LatestReader returns the most recent cached snapshot for a device.
type LatestReader interface {
	Latest(deviceID string) (airquality.Snapshot, error)
}

// Exporter renders CSV exports.
type Exporter interface {
	GenerateExport(ctx context.Context, device airquality.Device, start, end time.Time, bucketMinutes int) (*export.Document, error)
}

// PlaceResolver names route endpoints. Optional.
type PlaceResolver interface {
	Endpoints(ctx context.Context, s route.Summary) geocode.Places
}

// Deps are the services the HTTP handlers call into.
type Deps struct {
	Devices  DeviceStore
	Latest   LatestReader
	Exporter Exporter
	Playback *playback.Manager
	Sessions *session.Manager
	Places   PlaceResolver
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	v1 := app.Group("/api/v1", sessionMiddleware(d.Sessions))

	v1.Get("/devices", func(c *fiber.Ctx) error {
		devices, err := d.Devices.List(requestContext(c))
		if err != nil {
			return toHTTPError(err)
		}
		if devices == nil {
			devices = []airquality.Device{}
		}
		return c.JSON(devices)
	})

	v1.Get("/devices/:id/latest", func(c *fiber.Ctx) error {
		device, err := d.Devices.Get(requestContext(c), c.Params("id"))
		if err != nil {
			return toHTTPError(err)
		}
		snap, err := d.Latest.Latest(device.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no readings for requested device")
			}
			return toHTTPError(err)
		}

		resp := fiber.Map{
			"device":   device,
			"online":   device.Online(),
			"snapshot": snap,
		}
		if pm25, ok := snap.Values[airquality.MetricPM25]; ok {
			resp["tier"] = airquality.TierFor(pm25)
			resp["color"] = airquality.ColorFor(pm25)
		}
		return c.JSON(resp)
	})

	v1.Get("/export", exportHandler(d))

	v1.Get("/routes/:id", routeHandler(d))

	registerPlayback(v1, d)
}

// routeHandler serves the whole route for a device in one shot, with the
// cursor parked on the last point.
func routeHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rng, err := airquality.LookupTimeRange(c.Query("range"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ctx := requestContext(c)
		device, err := d.Devices.Get(ctx, c.Params("id"))
		if err != nil {
			return toHTTPError(err)
		}

		v, err := d.Playback.Open(ctx, device, rng)
		if err != nil {
			return toHTTPError(err)
		}
		defer d.Playback.Close(v.ID)

		st := v.State()
		if st.Cursor.Length > 0 {
			st, err = v.Seek(st.Cursor.Length - 1)
			if err != nil {
				return toHTTPError(err)
			}
		}

		return c.JSON(fiber.Map{
			"deviceId": device.ID,
			"range":    rng,
			"noData":   st.NoData,
			"segments": st.Segments,
			"frame":    st.Frame,
			"summary":  st.Summary,
			"places":   places(ctx, d, st.Summary),
		})
	}
}

func places(ctx context.Context, d Deps, s route.Summary) geocode.Places {
	if d.Places == nil {
		return geocode.Places{}
	}
	return d.Places.Endpoints(ctx, s)
}
