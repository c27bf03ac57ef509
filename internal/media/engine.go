package media

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/codec/opus"
	"github.com/pion/mediadevices/pkg/codec/vpx"
	_ "github.com/pion/mediadevices/pkg/driver/camera"
	_ "github.com/pion/mediadevices/pkg/driver/microphone"
	"github.com/pion/mediadevices/pkg/frame"
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/pion/webrtc/v4"
)

// ErrNoDevice is returned when every capture attempt failed.
var ErrNoDevice = errors.New("no usable camera or microphone")

// Engine owns the codec selector shared between device capture and the
// peer connection's media engine. Both sides must use the same selector or
// the captured tracks cannot be negotiated.
type Engine struct {
	selector *mediadevices.CodecSelector
}

// NewEngine builds a VP8+Opus codec selector.
func NewEngine() (*Engine, error) {
	vpxParams, err := vpx.NewVP8Params()
	if err != nil {
		return nil, fmt.Errorf("vp8 params: %w", err)
	}
	vpxParams.BitRate = 1_000_000

	opusParams, err := opus.NewParams()
	if err != nil {
		return nil, fmt.Errorf("opus params: %w", err)
	}

	return &Engine{
		selector: mediadevices.NewCodecSelector(
			mediadevices.WithVideoEncoders(&vpxParams),
			mediadevices.WithAudioEncoders(&opusParams),
		),
	}, nil
}

// Populate registers the selector's codecs on a peer connection media engine.
func (e *Engine) Populate(me *webrtc.MediaEngine) {
	e.selector.Populate(me)
}

// capture opens the local camera and microphone. GetUserMedia fails as a unit
// if either track can't be opened, so try video+audio first, then video-only,
// then audio-only; a busy microphone must not take the camera down with it.
func (e *Engine) capture() (mediadevices.MediaStream, error) {
	attempts := []struct {
		video, audio bool
		label        string
	}{
		{true, true, "video+audio"},
		{true, false, "video-only"},
		{false, true, "audio-only"},
	}

	for _, a := range attempts {
		constraints := mediadevices.MediaStreamConstraints{Codec: e.selector}
		if a.video {
			constraints.Video = func(c *mediadevices.MediaTrackConstraints) {
				// Raw frame formats only; some cameras expose an MJPEG node
				// that produces frames the VP8 encoder chokes on.
				c.FrameFormat = prop.FrameFormatOneOf{
					frame.FormatYUYV,
					frame.FormatI420,
					frame.FormatI444,
					frame.FormatRGBA,
				}
				c.Width = prop.IntRanged{Max: 640}
				c.Height = prop.IntRanged{Max: 480}
			}
		}
		if a.audio {
			constraints.Audio = func(_ *mediadevices.MediaTrackConstraints) {}
		}

		stream, err := mediadevices.GetUserMedia(constraints)
		if err != nil {
			slog.Warn("media capture attempt failed", "attempt", a.label, "err", err)
			continue
		}
		slog.Info("local media captured", "attempt", a.label, "tracks", len(stream.GetTracks()))
		return stream, nil
	}

	return nil, ErrNoDevice
}
