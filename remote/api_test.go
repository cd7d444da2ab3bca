package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/remocast/remocast/key"
	"github.com/remocast/remocast/mpv"
	"github.com/remocast/remocast/stream"
)

// fakeTransport emulates a player endpoint so the facade under the API
// can run real protocol round trips.
type fakeTransport struct {
	props map[string]any
	queue []string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{props: map[string]any{}}
}

func (t *fakeTransport) WriteLine(line []byte) error {
	var req struct {
		Command   []any  `json:"command"`
		RequestID uint64 `json:"request_id"`
	}
	if err := json.Unmarshal(line, &req); err != nil {
		return err
	}

	reply := map[string]any{"error": "success", "request_id": req.RequestID}

	switch req.Command[0] {
	case "get_property":
		value, found := t.props[req.Command[1].(string)]
		if found {
			reply["data"] = value
		} else {
			reply["error"] = "property unavailable"
		}
	case "set_property":
		t.props[req.Command[1].(string)] = req.Command[2]
	case "cycle":
		current, _ := t.props[req.Command[1].(string)].(bool)
		t.props[req.Command[1].(string)] = !current
	}

	encoded, _ := json.Marshal(reply)
	t.queue = append(t.queue, string(encoded))
	return nil
}

func (t *fakeTransport) ReadLine() (string, error) {
	if len(t.queue) == 0 {
		return `{"event":"tick"}`, nil
	}

	line := t.queue[0]
	t.queue = t.queue[1:]
	return line, nil
}

func (t *fakeTransport) Close() error { return nil }

// fakeSupervisor records lifecycle calls and hands out a client over
// the fake transport.
type fakeSupervisor struct {
	client   *mpv.Client
	startErr error
	started  bool
	stopped  bool
}

func (s *fakeSupervisor) Start() error {
	s.started = true
	return s.startErr
}

func (s *fakeSupervisor) Stop() {
	s.stopped = true
}

func (s *fakeSupervisor) Client() (*mpv.Client, error) {
	if s.client == nil {
		return nil, mpv.ErrNotRunning
	}
	return s.client, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func call(handler http.Handler, method, path string, body any) envelope {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(lo.Must(json.Marshal(body)))
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	var result envelope
	lo.Must0(json.Unmarshal(recorder.Body.Bytes(), &result))
	return result
}

func TestAPI(t *testing.T) {
	viper.Set(key.PlayerReadAttempts, 100)
	viper.Set(key.StreamingPort, 0)

	Convey("API", t, func() {
		transport := newFakeTransport()
		supervisor := &fakeSupervisor{client: mpv.NewClient(transport)}
		server := stream.NewServer()
		handler := NewAPI(supervisor, mpv.NewPlayer(supervisor), server).Routes()

		Convey("init starts the player process", func() {
			result := call(handler, http.MethodPost, "/player/init", nil)

			So(result.Success, ShouldBeTrue)
			So(supervisor.started, ShouldBeTrue)
		})

		Convey("init reports supervisor failures in the envelope", func() {
			supervisor.startErr = errors.New("executable not found")

			result := call(handler, http.MethodPost, "/player/init", nil)

			So(result.Success, ShouldBeFalse)
			So(result.Error, ShouldEqual, "executable not found")
		})

		Convey("load spawns the player when none is attached", func() {
			result := call(handler, http.MethodPost, "/player/load", map[string]string{"target": "/media/movie.mkv"})

			So(result.Success, ShouldBeTrue)
			So(supervisor.started, ShouldBeTrue)
		})

		Convey("destroy stops the player process", func() {
			result := call(handler, http.MethodPost, "/player/destroy", nil)

			So(result.Success, ShouldBeTrue)
			So(supervisor.stopped, ShouldBeTrue)
		})

		Convey("volume set is clamped before reaching the player", func() {
			result := call(handler, http.MethodPost, "/player/volume", map[string]any{"volume": 150})

			So(result.Success, ShouldBeTrue)
			So(transport.props["volume"], ShouldEqual, 100.0)
		})

		Convey("toggle-pause reports the new state", func() {
			transport.props["pause"] = true

			result := call(handler, http.MethodPost, "/player/toggle-pause", nil)

			So(result.Success, ShouldBeTrue)
			So(string(result.Data), ShouldEqual, `{"paused":false}`)
		})

		Convey("state answers with the composite snapshot", func() {
			transport.props["time-pos"] = 12.0
			transport.props["pause"] = false

			result := call(handler, http.MethodGet, "/player/state", nil)
			So(result.Success, ShouldBeTrue)

			var state mpv.PlaybackState
			lo.Must0(json.Unmarshal(result.Data, &state))
			So(state.Position, ShouldEqual, 12)
			So(state.IsPaused, ShouldBeFalse)
			So(state.Volume, ShouldEqual, 100)
		})

		Convey("player operations fail cleanly when not initialized", func() {
			supervisor.client = nil

			result := call(handler, http.MethodPost, "/player/play", nil)

			So(result.Success, ShouldBeFalse)
			So(result.Error, ShouldEqual, mpv.ErrNotRunning.Error())
		})

		Convey("malformed request bodies fail cleanly", func() {
			request := httptest.NewRequest(http.MethodPost, "/player/seek", strings.NewReader("{"))
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			var result envelope
			lo.Must0(json.Unmarshal(recorder.Body.Bytes(), &result))
			So(result.Success, ShouldBeFalse)
			So(result.Error, ShouldNotBeEmpty)
		})

		Convey("streams cannot be shared while streaming is stopped", func() {
			result := call(handler, http.MethodPost, "/streams", map[string]string{"path": "/media/movie.mkv"})

			So(result.Success, ShouldBeFalse)
			So(server.Registry().Len(), ShouldEqual, 0)
		})

		Convey("streaming lifecycle", func() {
			result := call(handler, http.MethodPost, "/streaming/start", nil)
			So(result.Success, ShouldBeTrue)
			defer server.Stop()

			var status streamingStatus
			lo.Must0(json.Unmarshal(result.Data, &status))
			So(status.Running, ShouldBeTrue)
			So(status.Binding.Port, ShouldBeGreaterThan, 0)

			Convey("second start fails in the envelope", func() {
				again := call(handler, http.MethodPost, "/streaming/start", nil)

				So(again.Success, ShouldBeFalse)
				So(again.Error, ShouldEqual, stream.ErrAlreadyRunning.Error())
			})

			Convey("shared streams answer with their URL", func() {
				shared := call(handler, http.MethodPost, "/streams", map[string]string{"path": "/media/movie.mkv"})
				So(shared.Success, ShouldBeTrue)

				var payload sharedStream
				lo.Must0(json.Unmarshal(shared.Data, &payload))
				So(payload.ID, ShouldNotBeEmpty)
				So(payload.URL, ShouldContainSubstring, "/stream/"+payload.ID)

				removed := call(handler, http.MethodDelete, "/streams/"+payload.ID, nil)
				So(removed.Success, ShouldBeTrue)
				So(server.Registry().Len(), ShouldEqual, 0)
			})

			Convey("stop clears the status", func() {
				stopped := call(handler, http.MethodPost, "/streaming/stop", nil)
				So(stopped.Success, ShouldBeTrue)

				status := call(handler, http.MethodGet, "/streaming/status", nil)
				So(status.Success, ShouldBeTrue)
				So(string(status.Data), ShouldEqual, `{"running":false}`)
			})
		})

		Convey("local-ip answers with an address", func() {
			result := call(handler, http.MethodGet, "/local-ip", nil)

			So(result.Success, ShouldBeTrue)
			So(string(result.Data), ShouldContainSubstring, "ip")
		})
	})
}
