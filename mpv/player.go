package mpv

import (
	"fmt"
	"strings"

	"github.com/samber/mo"

	"github.com/remocast/remocast/log"
	"github.com/remocast/remocast/util"
)

const (
	minSpeed = 0.1
	maxSpeed = 4.0
)

// ClientSource yields the IPC client of a running player.
// Process implements it.
type ClientSource interface {
	Client() (*Client, error)
}

// PlaybackState is a snapshot of the player. Fields that could not be
// read fall back to sensible idle defaults.
type PlaybackState struct {
	Position   float64 `json:"position"`
	Duration   float64 `json:"duration"`
	IsPlaying  bool    `json:"is_playing"`
	IsPaused   bool    `json:"is_paused"`
	Volume     float64 `json:"volume"`
	IsMuted    bool    `json:"is_muted"`
	Filename   string  `json:"filename"`
	MediaTitle string  `json:"media_title"`
}

// Track describes a single audio, video or subtitle track of the
// loaded media.
type Track struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Lang     string `json:"lang,omitempty"`
	Codec    string `json:"codec,omitempty"`
	Default  bool   `json:"default"`
	Selected bool   `json:"selected"`
}

// LoadOptions tune how a file is loaded into the player.
type LoadOptions struct {
	// StartPosition seeks to the given second once the file opens.
	StartPosition mo.Option[float64]

	// Headers are sent with every HTTP request for remote media.
	Headers map[string]string
}

// Player runs playback operations against whatever player instance the
// source currently holds.
type Player struct {
	source ClientSource

	// loadedFile mirrors the target of the last successful Load so
	// state snapshots can report it even while mpv is still opening
	// the file.
	loadedFile string
}

// NewPlayer creates a Player on top of the given client source.
func NewPlayer(source ClientSource) *Player {
	return &Player{source: source}
}

// Load replaces the current media with the given file or URL.
func (p *Player) Load(target string, options LoadOptions) error {
	client, err := p.source.Client()
	if err != nil {
		return err
	}

	if len(options.Headers) > 0 {
		fields := make([]string, 0, len(options.Headers))
		for name, value := range options.Headers {
			fields = append(fields, fmt.Sprintf("%s: %s", name, value))
		}
		if err := SetProperty(client, "http-header-fields", strings.Join(fields, "\r\n")); err != nil {
			return err
		}
	}

	if start, ok := options.StartPosition.Get(); ok {
		if err := SetProperty(client, "start", fmt.Sprintf("%f", start)); err != nil {
			return err
		}
	}

	if _, err := client.Command("loadfile", target, "replace"); err != nil {
		return err
	}

	log.Infof("player: loaded %s", target)
	p.loadedFile = target
	return nil
}

// Play resumes playback.
func (p *Player) Play() error {
	return p.setPaused(false)
}

// Pause suspends playback.
func (p *Player) Pause() error {
	return p.setPaused(true)
}

func (p *Player) setPaused(paused bool) error {
	client, err := p.source.Client()
	if err != nil {
		return err
	}

	return SetProperty(client, "pause", paused)
}

// TogglePause inverts the suspension state and returns the new one.
func (p *Player) TogglePause() (bool, error) {
	client, err := p.source.Client()
	if err != nil {
		return false, err
	}

	if _, err := client.Command("cycle", "pause"); err != nil {
		return false, err
	}

	return GetProperty[bool](client, "pause")
}

// Stop unloads the current media and returns the player to idle.
func (p *Player) Stop() error {
	client, err := p.source.Client()
	if err != nil {
		return err
	}

	if _, err := client.Command("stop"); err != nil {
		return err
	}

	p.loadedFile = ""
	return nil
}

// Seek jumps to an absolute position in seconds.
func (p *Player) Seek(seconds float64) error {
	client, err := p.source.Client()
	if err != nil {
		return err
	}

	_, err = client.Command("seek", seconds, "absolute")
	return err
}

// SeekRelative moves the position by the given offset in seconds.
func (p *Player) SeekRelative(offset float64) error {
	client, err := p.source.Client()
	if err != nil {
		return err
	}

	_, err = client.Command("seek", offset, "relative")
	return err
}

// Volume returns the current volume level.
func (p *Player) Volume() (float64, error) {
	client, err := p.source.Client()
	if err != nil {
		return 0, err
	}

	return GetProperty[float64](client, "volume")
}

// SetVolume sets the volume level, clamped to the 0-100 range.
func (p *Player) SetVolume(level float64) error {
	client, err := p.source.Client()
	if err != nil {
		return err
	}

	return SetProperty(client, "volume", util.Clamp(level, 0, 100))
}

// Muted reports whether audio is muted.
func (p *Player) Muted() (bool, error) {
	client, err := p.source.Client()
	if err != nil {
		return false, err
	}

	return GetProperty[bool](client, "mute")
}

// SetMuted turns audio muting on or off.
func (p *Player) SetMuted(muted bool) error {
	client, err := p.source.Client()
	if err != nil {
		return err
	}

	return SetProperty(client, "mute", muted)
}

// ToggleMute inverts the muting state and returns the new one.
func (p *Player) ToggleMute() (bool, error) {
	client, err := p.source.Client()
	if err != nil {
		return false, err
	}

	if _, err := client.Command("cycle", "mute"); err != nil {
		return false, err
	}

	return GetProperty[bool](client, "mute")
}

// SetSpeed sets the playback speed, clamped to mpv's usable range.
func (p *Player) SetSpeed(speed float64) error {
	client, err := p.source.Client()
	if err != nil {
		return err
	}

	return SetProperty(client, "speed", util.Clamp(speed, minSpeed, maxSpeed))
}

// Fullscreen reports whether the player window is fullscreen.
func (p *Player) Fullscreen() (bool, error) {
	client, err := p.source.Client()
	if err != nil {
		return false, err
	}

	return GetProperty[bool](client, "fullscreen")
}

// SetFullscreen switches the player window in or out of fullscreen.
func (p *Player) SetFullscreen(fullscreen bool) error {
	client, err := p.source.Client()
	if err != nil {
		return err
	}

	return SetProperty(client, "fullscreen", fullscreen)
}

// ToggleFullscreen inverts the fullscreen state and returns the new
// one.
func (p *Player) ToggleFullscreen() (bool, error) {
	client, err := p.source.Client()
	if err != nil {
		return false, err
	}

	if _, err := client.Command("cycle", "fullscreen"); err != nil {
		return false, err
	}

	return GetProperty[bool](client, "fullscreen")
}

// SetSubtitleTrack selects a subtitle track by id. Ids of zero or
// below disable subtitles entirely.
func (p *Player) SetSubtitleTrack(id int64) error {
	client, err := p.source.Client()
	if err != nil {
		return err
	}

	if id <= 0 {
		return SetProperty(client, "sid", "no")
	}

	return SetProperty(client, "sid", id)
}

// SetAudioTrack selects an audio track by id.
func (p *Player) SetAudioTrack(id int64) error {
	client, err := p.source.Client()
	if err != nil {
		return err
	}

	return SetProperty(client, "aid", id)
}

// Position returns the current playback position in seconds. A player
// with no file loaded reports zero rather than an error.
func (p *Player) Position() (float64, error) {
	client, err := p.source.Client()
	if err != nil {
		return 0, err
	}

	position, err := GetProperty[float64](client, "time-pos")
	if isProtocolError(err) {
		return 0, nil
	}

	return position, err
}

// Duration returns the length of the loaded media in seconds. A player
// with no file loaded reports zero rather than an error.
func (p *Player) Duration() (float64, error) {
	client, err := p.source.Client()
	if err != nil {
		return 0, err
	}

	duration, err := GetProperty[float64](client, "duration")
	if isProtocolError(err) {
		return 0, nil
	}

	return duration, err
}

// Tracks lists the audio, video and subtitle tracks of the loaded
// media.
func (p *Player) Tracks() ([]Track, error) {
	client, err := p.source.Client()
	if err != nil {
		return nil, err
	}

	tracks, err := GetProperty[[]Track](client, "track-list")
	if isProtocolError(err) {
		return nil, nil
	}

	return tracks, err
}

// State assembles a full playback snapshot. Properties the player
// cannot answer while idle are filled with defaults instead of
// failing the whole snapshot.
func (p *Player) State() (PlaybackState, error) {
	client, err := p.source.Client()
	if err != nil {
		return PlaybackState{}, err
	}

	state := PlaybackState{
		IsPaused: true,
		Volume:   100,
		Filename: p.loadedFile,
	}

	if position, err := GetProperty[float64](client, "time-pos"); err == nil {
		state.Position = position
	}
	if duration, err := GetProperty[float64](client, "duration"); err == nil {
		state.Duration = duration
	}
	if paused, err := GetProperty[bool](client, "pause"); err == nil {
		state.IsPaused = paused
	}
	if idle, err := GetProperty[bool](client, "core-idle"); err == nil {
		state.IsPlaying = !idle
	}
	if volume, err := GetProperty[float64](client, "volume"); err == nil {
		state.Volume = volume
	}
	if muted, err := GetProperty[bool](client, "mute"); err == nil {
		state.IsMuted = muted
	}
	if filename, err := GetProperty[string](client, "filename"); err == nil && filename != "" {
		state.Filename = filename
	}
	if title, err := GetProperty[string](client, "media-title"); err == nil {
		state.MediaTitle = title
	}

	return state, nil
}

// isProtocolError reports whether err is an error raised by mpv
// itself, e.g. reading a property that is unavailable while idle.
func isProtocolError(err error) bool {
	if err == nil {
		return false
	}

	_, ok := err.(*ProtocolError)
	return ok
}
