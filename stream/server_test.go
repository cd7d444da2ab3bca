package stream

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestServer(t *testing.T) {
	Convey("Server", t, func() {
		server := NewServer()

		Convey("Is unreachable before Start", func() {
			So(server.Binding().IsAbsent(), ShouldBeTrue)
			So(server.URL().IsAbsent(), ShouldBeTrue)
			So(server.StreamURL("deadbeef").IsAbsent(), ShouldBeTrue)
		})

		Convey("Start binds an ephemeral port", func() {
			So(server.Start(0), ShouldBeNil)
			defer server.Stop()

			binding := server.Binding().MustGet()
			So(binding.Port, ShouldBeGreaterThan, 0)
			So(binding.IP, ShouldNotBeEmpty)

			So(server.URL().MustGet(), ShouldEqual, fmt.Sprintf("http://%s:%d", binding.IP, binding.Port))
		})

		Convey("Start on a running server fails", func() {
			So(server.Start(0), ShouldBeNil)
			defer server.Stop()

			So(server.Start(0), ShouldEqual, ErrAlreadyRunning)
		})

		Convey("StreamURL points at the stream route", func() {
			So(server.Start(0), ShouldBeNil)
			defer server.Stop()

			id := server.Registry().Add("/media/movie.mkv")
			url := server.StreamURL(id).MustGet()

			So(url, ShouldEndWith, "/stream/"+id)
		})

		Convey("Stop clears the binding and the registry", func() {
			So(server.Start(0), ShouldBeNil)
			server.Registry().Add("/media/movie.mkv")

			server.Stop()

			So(server.Binding().IsAbsent(), ShouldBeTrue)
			So(server.Registry().Len(), ShouldEqual, 0)

			Convey("And the server can start again", func() {
				So(server.Start(0), ShouldBeNil)
				server.Stop()
			})
		})
	})
}
