// Command squishd serves the compression pipeline over HTTP so browser and
// batch clients can recompress images without shipping a decoder themselves.
// The request body is the raw image; the response body is the compressed
// image in its output container.
package main

import (
	"bytes"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/pkg/errors"

	"github.com/fennal/squish"
)

var (
	addr    = flag.String("addr", ":8090", "set the address to listen on")
	maxBody = flag.Int64("max-body", 64<<20, "set the maximum accepted body size in bytes")
)

func main() {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.POST("/compress", func(c echo.Context) error {
		input, err := io.ReadAll(io.LimitReader(c.Request().Body, *maxBody+1))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
		}
		if int64(len(input)) > *maxBody {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image too large")
		}

		opts := squish.Options{
			Quality:       80,
			ResizePercent: 1.0,
			Logger:        logger,
		}
		if q := c.QueryParam("quality"); q != "" {
			v, err := strconv.Atoi(q)
			if err != nil || v < 0 || v > 100 {
				return echo.NewHTTPError(http.StatusBadRequest, "quality must be 0-100")
			}
			opts.Quality = uint8(v)
		}
		if r := c.QueryParam("resize"); r != "" {
			v, err := strconv.ParseFloat(r, 32)
			if err != nil || v <= 0 || v > 1 {
				return echo.NewHTTPError(http.StatusBadRequest, "resize must be in (0, 1]")
			}
			opts.ResizePercent = float32(v)
		}

		format, err := squish.DetectFormat(input)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnsupportedMediaType, "unsupported image format")
		}

		output, err := squish.Compress(input, opts)
		switch {
		case err == nil:
		case errors.Is(err, squish.ErrDecodeFailed):
			return echo.NewHTTPError(http.StatusBadRequest, "failed to decode image")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		// The size guard may hand back the original bytes, in which case
		// the container is still the input's.
		contentType := format.Output().MIME()
		if len(output) == len(input) && bytes.Equal(output, input) {
			contentType = format.MIME()
		}

		return c.Blob(http.StatusOK, contentType, output)
	})

	e.Logger.Fatal(e.Start(*addr))
}
