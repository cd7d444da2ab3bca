package remote

import (
	"net/http"

	"github.com/spf13/viper"

	"github.com/remocast/remocast/key"
	"github.com/remocast/remocast/stream"
)

type streamingStatus struct {
	Running bool            `json:"running"`
	Binding *stream.Binding `json:"binding,omitempty"`
	URL     string          `json:"url,omitempty"`
}

type sharedStream struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (a *API) handleStreamingStart(w http.ResponseWriter, _ *http.Request) {
	if err := a.server.Start(viper.GetInt(key.StreamingPort)); err != nil {
		fail(w, err)
		return
	}

	ok(w, a.status())
}

func (a *API) handleStreamingStop(w http.ResponseWriter, _ *http.Request) {
	a.server.Stop()
	ok(w, nil)
}

func (a *API) handleStreamingStatus(w http.ResponseWriter, _ *http.Request) {
	ok(w, a.status())
}

func (a *API) status() streamingStatus {
	status := streamingStatus{}
	if binding, present := a.server.Binding().Get(); present {
		status.Running = true
		status.Binding = &binding
		status.URL = a.server.URL().MustGet()
	}
	return status
}

// handleShare registers a local file with the streaming server and
// answers with the URL it is reachable at. The server must be running
// so the response can carry a complete URL.
func (a *API) handleShare(w http.ResponseWriter, r *http.Request) {
	body, err := decode[shareRequest](r)
	if err != nil {
		fail(w, err)
		return
	}

	id := a.server.Registry().Add(body.Path)

	url, present := a.server.StreamURL(id).Get()
	if !present {
		a.server.Registry().Remove(id)
		fail(w, stream.ErrNotRunning)
		return
	}

	ok(w, sharedStream{ID: id, URL: url})
}

func (a *API) handleUnshare(w http.ResponseWriter, r *http.Request) {
	a.server.Registry().Remove(r.PathValue("id"))
	ok(w, nil)
}

func (a *API) handleLocalIP(w http.ResponseWriter, _ *http.Request) {
	ok(w, map[string]string{"ip": stream.LocalIP()})
}
