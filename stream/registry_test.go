package stream

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("Registry", t, func() {
		registry := NewRegistry()

		Convey("Add returns a resolvable id", func() {
			id := registry.Add("/media/movie.mkv")

			So(id, ShouldHaveLength, 16)
			So(registry.Resolve(id).MustGet(), ShouldEqual, "/media/movie.mkv")
		})

		Convey("Adding the same path twice yields distinct ids", func() {
			first := registry.Add("/media/movie.mkv")
			second := registry.Add("/media/movie.mkv")

			So(first, ShouldNotEqual, second)
			So(registry.Len(), ShouldEqual, 2)
		})

		Convey("Resolve misses after Remove", func() {
			id := registry.Add("/media/movie.mkv")
			registry.Remove(id)

			So(registry.Resolve(id).IsAbsent(), ShouldBeTrue)
			So(registry.Len(), ShouldEqual, 0)
		})

		Convey("Removing an unknown id is harmless", func() {
			registry.Remove("deadbeefdeadbeef")

			So(registry.Len(), ShouldEqual, 0)
		})

		Convey("Clear drops everything", func() {
			registry.Add("/media/a.mkv")
			registry.Add("/media/b.mkv")
			registry.Clear()

			So(registry.Len(), ShouldEqual, 0)
		})

		Convey("Concurrent adds produce unique ids", func() {
			var (
				wg  sync.WaitGroup
				mu  sync.Mutex
				ids = map[string]struct{}{}
			)

			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					id := registry.Add("/media/movie.mkv")
					mu.Lock()
					ids[id] = struct{}{}
					mu.Unlock()
				}()
			}
			wg.Wait()

			So(ids, ShouldHaveLength, 50)
			So(registry.Len(), ShouldEqual, 50)
		})
	})
}
