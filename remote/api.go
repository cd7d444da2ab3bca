// Package remote exposes player control and streaming management as a
// local HTTP API with a uniform response envelope, suitable for UI
// shells and scripted remotes.
package remote

import (
	"encoding/json"
	"net/http"

	"github.com/samber/mo"

	"github.com/remocast/remocast/log"
	"github.com/remocast/remocast/mpv"
	"github.com/remocast/remocast/stream"
)

// Result is the envelope every endpoint answers with. Failures are
// carried inside, the HTTP status stays 200.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Supervisor controls the lifetime of the external player process.
// mpv.Process implements it.
type Supervisor interface {
	Start() error
	Stop()
}

// API wires the playback facade, the player supervisor and the
// streaming server into HTTP routes.
type API struct {
	supervisor Supervisor
	player     *mpv.Player
	server     *stream.Server
}

// NewAPI creates the HTTP API around the given collaborators.
func NewAPI(supervisor Supervisor, player *mpv.Player, server *stream.Server) *API {
	return &API{
		supervisor: supervisor,
		player:     player,
		server:     server,
	}
}

func respond(w http.ResponseWriter, result Result) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Errorf("remote: encode response: %s", err)
	}
}

func ok(w http.ResponseWriter, data any) {
	respond(w, Result{Success: true, Data: data})
}

func fail(w http.ResponseWriter, err error) {
	respond(w, Result{Success: false, Error: err.Error()})
}

// result collapses the common call-then-answer pattern.
func result(w http.ResponseWriter, data any, err error) {
	if err != nil {
		fail(w, err)
		return
	}

	ok(w, data)
}

func decode[T any](r *http.Request) (T, error) {
	var body T
	err := json.NewDecoder(r.Body).Decode(&body)
	return body, err
}

type loadRequest struct {
	Target        string            `json:"target"`
	StartPosition *float64          `json:"start_position,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
}

type positionRequest struct {
	Position float64 `json:"position"`
}

type offsetRequest struct {
	Offset float64 `json:"offset"`
}

type volumeRequest struct {
	Volume float64 `json:"volume"`
}

type flagRequest struct {
	Enabled bool `json:"enabled"`
}

type speedRequest struct {
	Speed float64 `json:"speed"`
}

type trackRequest struct {
	ID int64 `json:"id"`
}

type shareRequest struct {
	Path string `json:"path"`
}

// Routes builds the HTTP handler for all remote operations.
func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /player/init", a.handleInit)
	mux.HandleFunc("POST /player/destroy", a.handleDestroy)
	mux.HandleFunc("POST /player/load", a.handleLoad)
	mux.HandleFunc("POST /player/play", a.handlePlay)
	mux.HandleFunc("POST /player/pause", a.handlePause)
	mux.HandleFunc("POST /player/toggle-pause", a.handleTogglePause)
	mux.HandleFunc("POST /player/stop", a.handleStop)
	mux.HandleFunc("POST /player/seek", a.handleSeek)
	mux.HandleFunc("POST /player/seek-relative", a.handleSeekRelative)
	mux.HandleFunc("GET /player/volume", a.handleGetVolume)
	mux.HandleFunc("POST /player/volume", a.handleSetVolume)
	mux.HandleFunc("POST /player/mute", a.handleSetMuted)
	mux.HandleFunc("POST /player/toggle-mute", a.handleToggleMute)
	mux.HandleFunc("POST /player/speed", a.handleSetSpeed)
	mux.HandleFunc("POST /player/fullscreen", a.handleSetFullscreen)
	mux.HandleFunc("POST /player/toggle-fullscreen", a.handleToggleFullscreen)
	mux.HandleFunc("POST /player/subtitle", a.handleSetSubtitle)
	mux.HandleFunc("POST /player/audio", a.handleSetAudio)
	mux.HandleFunc("GET /player/state", a.handleState)
	mux.HandleFunc("GET /player/position", a.handlePosition)
	mux.HandleFunc("GET /player/duration", a.handleDuration)
	mux.HandleFunc("GET /player/tracks", a.handleTracks)

	mux.HandleFunc("POST /streaming/start", a.handleStreamingStart)
	mux.HandleFunc("POST /streaming/stop", a.handleStreamingStop)
	mux.HandleFunc("GET /streaming/status", a.handleStreamingStatus)
	mux.HandleFunc("POST /streams", a.handleShare)
	mux.HandleFunc("DELETE /streams/{id}", a.handleUnshare)
	mux.HandleFunc("GET /local-ip", a.handleLocalIP)

	return mux
}

func (a *API) handleInit(w http.ResponseWriter, _ *http.Request) {
	result(w, nil, a.supervisor.Start())
}

func (a *API) handleDestroy(w http.ResponseWriter, _ *http.Request) {
	a.supervisor.Stop()
	ok(w, nil)
}

func (a *API) handleLoad(w http.ResponseWriter, r *http.Request) {
	body, err := decode[loadRequest](r)
	if err != nil {
		fail(w, err)
		return
	}

	options := mpv.LoadOptions{Headers: body.Headers}
	if body.StartPosition != nil {
		options.StartPosition = mo.Some(*body.StartPosition)
	}

	// Loading implies wanting a player; spawn one when none is
	// attached. Start is a no-op on a running supervisor.
	if err := a.supervisor.Start(); err != nil {
		fail(w, err)
		return
	}

	result(w, nil, a.player.Load(body.Target, options))
}

func (a *API) handlePlay(w http.ResponseWriter, _ *http.Request) {
	result(w, nil, a.player.Play())
}

func (a *API) handlePause(w http.ResponseWriter, _ *http.Request) {
	result(w, nil, a.player.Pause())
}

func (a *API) handleTogglePause(w http.ResponseWriter, _ *http.Request) {
	paused, err := a.player.TogglePause()
	result(w, map[string]bool{"paused": paused}, err)
}

func (a *API) handleStop(w http.ResponseWriter, _ *http.Request) {
	result(w, nil, a.player.Stop())
}

func (a *API) handleSeek(w http.ResponseWriter, r *http.Request) {
	body, err := decode[positionRequest](r)
	if err != nil {
		fail(w, err)
		return
	}

	result(w, nil, a.player.Seek(body.Position))
}

func (a *API) handleSeekRelative(w http.ResponseWriter, r *http.Request) {
	body, err := decode[offsetRequest](r)
	if err != nil {
		fail(w, err)
		return
	}

	result(w, nil, a.player.SeekRelative(body.Offset))
}

func (a *API) handleGetVolume(w http.ResponseWriter, _ *http.Request) {
	volume, err := a.player.Volume()
	result(w, map[string]float64{"volume": volume}, err)
}

func (a *API) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	body, err := decode[volumeRequest](r)
	if err != nil {
		fail(w, err)
		return
	}

	result(w, nil, a.player.SetVolume(body.Volume))
}

func (a *API) handleSetMuted(w http.ResponseWriter, r *http.Request) {
	body, err := decode[flagRequest](r)
	if err != nil {
		fail(w, err)
		return
	}

	result(w, nil, a.player.SetMuted(body.Enabled))
}

func (a *API) handleToggleMute(w http.ResponseWriter, _ *http.Request) {
	muted, err := a.player.ToggleMute()
	result(w, map[string]bool{"muted": muted}, err)
}

func (a *API) handleSetSpeed(w http.ResponseWriter, r *http.Request) {
	body, err := decode[speedRequest](r)
	if err != nil {
		fail(w, err)
		return
	}

	result(w, nil, a.player.SetSpeed(body.Speed))
}

func (a *API) handleSetFullscreen(w http.ResponseWriter, r *http.Request) {
	body, err := decode[flagRequest](r)
	if err != nil {
		fail(w, err)
		return
	}

	result(w, nil, a.player.SetFullscreen(body.Enabled))
}

func (a *API) handleToggleFullscreen(w http.ResponseWriter, _ *http.Request) {
	fullscreen, err := a.player.ToggleFullscreen()
	result(w, map[string]bool{"fullscreen": fullscreen}, err)
}

func (a *API) handleSetSubtitle(w http.ResponseWriter, r *http.Request) {
	body, err := decode[trackRequest](r)
	if err != nil {
		fail(w, err)
		return
	}

	result(w, nil, a.player.SetSubtitleTrack(body.ID))
}

func (a *API) handleSetAudio(w http.ResponseWriter, r *http.Request) {
	body, err := decode[trackRequest](r)
	if err != nil {
		fail(w, err)
		return
	}

	result(w, nil, a.player.SetAudioTrack(body.ID))
}

func (a *API) handleState(w http.ResponseWriter, _ *http.Request) {
	state, err := a.player.State()
	result(w, state, err)
}

func (a *API) handlePosition(w http.ResponseWriter, _ *http.Request) {
	position, err := a.player.Position()
	result(w, map[string]float64{"position": position}, err)
}

func (a *API) handleDuration(w http.ResponseWriter, _ *http.Request) {
	duration, err := a.player.Duration()
	result(w, map[string]float64{"duration": duration}, err)
}

func (a *API) handleTracks(w http.ResponseWriter, _ *http.Request) {
	tracks, err := a.player.Tracks()
	result(w, tracks, err)
}
