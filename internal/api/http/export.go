package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
)

// exportQuery holds query parameters for the CSV export endpoint.
type exportQuery struct {
	Device string    `validate:"required"`
	From   time.Time `validate:"required"`
	To     time.Time `validate:"required,gtefield=From"`
	Bucket int       `validate:"min=1"`
}

func (q *exportQuery) bind(c *fiber.Ctx) error {
	q.Device = c.Query("device")

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}
	q.From, q.To = from, to

	q.Bucket = c.QueryInt("bucket", 0)
	return nil
}

func exportHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q exportQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx := requestContext(c)
		device, err := d.Devices.Get(ctx, q.Device)
		if err != nil {
			return toHTTPError(err)
		}

		doc, err := d.Exporter.GenerateExport(ctx, device, q.From, q.To, q.Bucket)
		if err != nil {
			return toHTTPError(err)
		}

		c.Attachment(doc.Filename)
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		if doc.Synthetic {
			c.Set("X-Synthetic-Data", "true")
		}
		return c.SendString(doc.Body)
	}
}

// parseTime accepts RFC3339 or unix seconds/milliseconds.
func parseTime(s string) (time.Time, error) {
	ts, err := airquality.ParseTimestamp(s)
	if err != nil {
		return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
	}
	return ts, nil
}
