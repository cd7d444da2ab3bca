package mpv

import (
	"encoding/json"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/remocast/remocast/key"
)

// fakeEndpoint emulates a player on the far side of a Transport. It
// keeps a property map and answers get_property, set_property, cycle
// and a few playback commands.
type fakeEndpoint struct {
	props    map[string]any
	queue    []string
	pending  []string
	commands [][]any
	silent   bool
}

func newFakeEndpoint() *fakeEndpoint {
	return &fakeEndpoint{props: map[string]any{}}
}

// inject queues raw lines that are emitted before the next reply, the
// way a real player interleaves event broadcasts with replies.
func (f *fakeEndpoint) inject(lines ...string) {
	f.pending = append(f.pending, lines...)
}

func (f *fakeEndpoint) WriteLine(line []byte) error {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		return err
	}

	f.commands = append(f.commands, req.Command)

	if f.silent {
		return nil
	}

	f.queue = append(f.queue, f.pending...)
	f.pending = nil
	f.queue = append(f.queue, f.reply(req))
	return nil
}

func (f *fakeEndpoint) reply(req request) string {
	answer := func(err string, data any) string {
		payload := map[string]any{
			"error":      err,
			"request_id": req.RequestID,
		}
		if data != nil {
			payload["data"] = data
		}
		encoded, _ := json.Marshal(payload)
		return string(encoded)
	}

	name, _ := req.Command[0].(string)
	switch name {
	case "get_property":
		property := req.Command[1].(string)
		value, ok := f.props[property]
		if !ok {
			return answer("property unavailable", nil)
		}
		return answer("success", value)

	case "set_property":
		property := req.Command[1].(string)
		f.props[property] = req.Command[2]
		return answer("success", nil)

	case "cycle":
		property := req.Command[1].(string)
		current, _ := f.props[property].(bool)
		f.props[property] = !current
		return answer("success", nil)

	case "loadfile", "seek", "stop", "quit":
		return answer("success", nil)

	default:
		return answer(fmt.Sprintf("unknown command %q", name), nil)
	}
}

func (f *fakeEndpoint) ReadLine() (string, error) {
	if f.silent || len(f.queue) == 0 {
		// A real idle stream keeps delivering event broadcasts.
		return `{"event":"tick"}`, nil
	}

	line := f.queue[0]
	f.queue = f.queue[1:]
	return line, nil
}

func (f *fakeEndpoint) Close() error { return nil }

func TestClient(t *testing.T) {
	viper.Set(key.PlayerReadAttempts, 100)

	Convey("Client", t, func() {
		endpoint := newFakeEndpoint()
		client := NewClient(endpoint)

		Convey("Command returns the reply payload on success", func() {
			endpoint.props["volume"] = 42.0

			data, err := client.Command("get_property", "volume")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "42")
		})

		Convey("Command surfaces protocol failures", func() {
			_, err := client.Command("get_property", "time-pos")

			So(err, ShouldNotBeNil)
			protocolErr, ok := err.(*ProtocolError)
			So(ok, ShouldBeTrue)
			So(protocolErr.Reason, ShouldEqual, "property unavailable")
		})

		Convey("Command skips event broadcasts before the reply", func() {
			endpoint.props["pause"] = true
			endpoint.inject(
				`{"event":"playback-restart"}`,
				`{"event":"property-change","id":1,"name":"pause","data":false}`,
			)

			value, err := GetProperty[bool](client, "pause")
			So(err, ShouldBeNil)
			So(value, ShouldBeTrue)
		})

		Convey("Command skips replies with a foreign request id", func() {
			endpoint.props["speed"] = 1.5
			endpoint.inject(`{"error":"success","data":99,"request_id":9999}`)

			value, err := GetProperty[float64](client, "speed")
			So(err, ShouldBeNil)
			So(value, ShouldEqual, 1.5)
		})

		Convey("Command assigns increasing request ids", func() {
			_, _ = client.Command("quit")
			_, _ = client.Command("quit")

			So(client.requestID.Load(), ShouldEqual, 2)
		})

		Convey("Command times out when the player never answers", func() {
			viper.Set(key.PlayerReadAttempts, 5)
			defer viper.Set(key.PlayerReadAttempts, 100)

			endpoint.silent = true

			_, err := client.Command("get_property", "volume")
			So(err, ShouldEqual, ErrResponseTimeout)
		})

		Convey("SetProperty writes through to the player", func() {
			err := SetProperty(client, "volume", 80.0)
			So(err, ShouldBeNil)
			So(endpoint.props["volume"], ShouldEqual, 80.0)
		})
	})
}
