package stream

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/remocast/remocast/filesystem"
)

const testFileSize = 1000

// writeTestFile puts a deterministic byte pattern on the in-memory
// filesystem so range responses can be verified byte for byte.
func writeTestFile(path string) []byte {
	content := make([]byte, testFileSize)
	for i := range content {
		content[i] = byte(i % 251)
	}
	lo.Must0(filesystem.API().WriteFile(path, content, 0644))
	return content
}

func get(handler http.Handler, path, rangeHeader string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, path, nil)
	if rangeHeader != "" {
		request.Header.Set("Range", rangeHeader)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestHandler(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	Convey("Handler", t, func() {
		registry := NewRegistry()
		handler := newHandler(registry)

		content := writeTestFile("/media/movie.mp4")
		id := registry.Add("/media/movie.mp4")

		Convey("Serves the full file without a Range header", func() {
			response := get(handler, "/stream/"+id, "")

			So(response.Code, ShouldEqual, http.StatusOK)
			So(response.Header().Get("Content-Type"), ShouldEqual, "video/mp4")
			So(response.Header().Get("Accept-Ranges"), ShouldEqual, "bytes")
			So(response.Header().Get("Content-Length"), ShouldEqual, "1000")
			So(response.Body.Bytes(), ShouldResemble, content)
		})

		Convey("Serves the filename variant the same way", func() {
			response := get(handler, "/stream/"+id+"/movie.mp4", "")

			So(response.Code, ShouldEqual, http.StatusOK)
			So(response.Body.Len(), ShouldEqual, testFileSize)
		})

		Convey("Serves a bounded range as partial content", func() {
			response := get(handler, "/stream/"+id, "bytes=0-99")

			So(response.Code, ShouldEqual, http.StatusPartialContent)
			So(response.Header().Get("Content-Range"), ShouldEqual, "bytes 0-99/1000")
			So(response.Header().Get("Content-Length"), ShouldEqual, "100")
			So(response.Body.Bytes(), ShouldResemble, content[:100])
		})

		Convey("Serves an open-ended range to the end of the file", func() {
			response := get(handler, "/stream/"+id, "bytes=900-")

			So(response.Code, ShouldEqual, http.StatusPartialContent)
			So(response.Header().Get("Content-Range"), ShouldEqual, "bytes 900-999/1000")
			So(response.Body.Bytes(), ShouldResemble, content[900:])
		})

		Convey("Serves a suffix range from the end of the file", func() {
			response := get(handler, "/stream/"+id, "bytes=-100")

			So(response.Code, ShouldEqual, http.StatusPartialContent)
			So(response.Header().Get("Content-Range"), ShouldEqual, "bytes 900-999/1000")
			So(response.Body.Bytes(), ShouldResemble, content[900:])
		})

		Convey("Clamps ranges past the end of the file", func() {
			response := get(handler, "/stream/"+id, "bytes=500-2000")

			So(response.Code, ShouldEqual, http.StatusPartialContent)
			So(response.Header().Get("Content-Range"), ShouldEqual, "bytes 500-999/1000")
			So(response.Body.Len(), ShouldEqual, 500)
		})

		Convey("Degrades unsatisfiable ranges to a full response", func() {
			for _, header := range []string{
				"bytes=2000-3000",
				"bytes=5-2",
				"bytes=abc",
				"bytes=0-1,5-6",
				"chunks=0-99",
			} {
				response := get(handler, "/stream/"+id, header)

				So(response.Code, ShouldEqual, http.StatusOK)
				So(response.Body.Len(), ShouldEqual, testFileSize)
			}
		})

		Convey("Serves the head of a large file with the full size in Content-Range", func() {
			size := 10 * 1024 * 1024
			lo.Must0(filesystem.API().WriteFile("/media/large.mkv", make([]byte, size), 0644))
			large := registry.Add("/media/large.mkv")

			response := get(handler, "/stream/"+large, "bytes=0-99")

			So(response.Code, ShouldEqual, http.StatusPartialContent)
			So(response.Header().Get("Content-Range"), ShouldEqual, "bytes 0-99/10485760")
			So(response.Body.Len(), ShouldEqual, 100)
		})

		Convey("Unknown ids yield 404", func() {
			response := get(handler, "/stream/deadbeefdeadbeef", "")

			So(response.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Registered paths that vanished yield 404", func() {
			gone := registry.Add("/media/deleted.mkv")
			response := get(handler, "/stream/"+gone, "")

			So(response.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Unrecognized extensions fall back to octet-stream", func() {
			writeTestFile("/media/movie.xyz")
			other := registry.Add("/media/movie.xyz")

			response := get(handler, "/stream/"+other, "")

			So(response.Header().Get("Content-Type"), ShouldEqual, "application/octet-stream")
		})
	})
}

func TestParseRange(t *testing.T) {
	Convey("parseRange", t, func() {
		Convey("Suffix larger than the file covers the whole file", func() {
			start, end, ok := parseRange("bytes=-5000", testFileSize)

			So(ok, ShouldBeTrue)
			So(start, ShouldEqual, 0)
			So(end, ShouldEqual, testFileSize-1)
		})

		Convey("Zero suffix is rejected", func() {
			_, _, ok := parseRange("bytes=-0", testFileSize)

			So(ok, ShouldBeFalse)
		})

		Convey("Empty header is rejected", func() {
			_, _, ok := parseRange("", testFileSize)

			So(ok, ShouldBeFalse)
		})
	})
}
