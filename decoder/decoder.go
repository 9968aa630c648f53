// Package decoder drives libav (through go-astiav) to decode the video stream
// of an input, and reports every decoded frame into a statistics session.
//
// Only the frame-level fields are filled here; the per-phase spans and
// counters are reported by an instrumented codec through the same Recorder.
package decoder

import (
	"context"
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astikit"
	"github.com/facebookincubator/go-belt"
	"github.com/xaionaro-go/avdecodestats/logger"
	"github.com/xaionaro-go/avdecodestats/stats"
	"github.com/xaionaro-go/avdecodestats/timer"
	"github.com/xaionaro-go/avdecodestats/types"
	"github.com/xaionaro-go/typing"
)

type Config struct {
	// StreamIndex selects the stream to decode; if not set, the first video stream is used.
	StreamIndex typing.Optional[int]

	// DecoderName forces a specific decoder (e.g. "hevc"), instead of the
	// default one for the stream's codec.
	DecoderName string
}

// StatsSink is where the decoder reports the statistics into.
type StatsSink interface {
	Recorder() *stats.Recorder
	Commit(ctx context.Context) error
	IsInterruptRequested() bool
}

type Result struct {
	Frames      uint64
	Interrupted bool
}

type Decoder struct {
	URL           string
	FormatContext *astiav.FormatContext
	Stream        *astiav.Stream
	Codec         *astiav.Codec
	CodecContext  *astiav.CodecContext
	BitDepth      uint64

	closer *astikit.Closer
	packet *astiav.Packet
	frame  *astiav.Frame
}

// Open opens the input and the decoder of the selected stream.
func Open(
	ctx context.Context,
	url string,
	cfg Config,
) (_ret *Decoder, _err error) {
	logger.Debugf(ctx, "Open(ctx, '%s')", url)
	defer func() { logger.Debugf(ctx, "/Open(ctx, '%s'): %v", url, _err) }()

	d := &Decoder{
		URL:    url,
		closer: astikit.NewCloser(),
	}
	defer func() {
		if _err != nil {
			_ = d.Close(ctx)
		}
	}()

	if d.FormatContext = astiav.AllocFormatContext(); d.FormatContext == nil {
		return nil, errors.New("unable to allocate a format context")
	}
	d.closer.Add(d.FormatContext.Free)

	if err := d.FormatContext.OpenInput(url, nil, nil); err != nil {
		return nil, fmt.Errorf("unable to open input '%s': %w", url, err)
	}
	d.closer.Add(d.FormatContext.CloseInput)

	if err := d.FormatContext.FindStreamInfo(nil); err != nil {
		return nil, fmt.Errorf("unable to get the stream info: %w", err)
	}

	d.Stream = selectStream(d.FormatContext.Streams(), cfg.StreamIndex)
	if d.Stream == nil {
		return nil, fmt.Errorf("no suitable video stream in '%s'", url)
	}
	codecParameters := d.Stream.CodecParameters()
	ctx = belt.WithField(ctx, "stream_index", d.Stream.Index())

	if cfg.DecoderName != "" {
		d.Codec = astiav.FindDecoderByName(cfg.DecoderName)
	} else {
		d.Codec = astiav.FindDecoder(codecParameters.CodecID())
	}
	if d.Codec == nil {
		return nil, fmt.Errorf("unable to find a decoder for codec %s (name: '%s')", codecParameters.CodecID(), cfg.DecoderName)
	}

	if d.CodecContext = astiav.AllocCodecContext(d.Codec); d.CodecContext == nil {
		return nil, errors.New("unable to allocate a codec context")
	}
	d.closer.Add(d.CodecContext.Free)

	if err := codecParameters.ToCodecContext(d.CodecContext); err != nil {
		return nil, fmt.Errorf("unable to copy the codec parameters: %w", err)
	}
	if err := d.CodecContext.Open(d.Codec, nil); err != nil {
		return nil, fmt.Errorf("unable to open the decoder '%s': %w", d.Codec.Name(), err)
	}

	d.packet = astiav.AllocPacket()
	d.closer.Add(d.packet.Free)
	d.frame = astiav.AllocFrame()
	d.closer.Add(d.frame.Free)

	d.BitDepth = BitDepthFromPixelFormatName(codecParameters.PixelFormat().String())
	logger.Infof(ctx, "video codec [%s]: resolution %dx%d, pixel format %s",
		d.Codec.Name(), codecParameters.Width(), codecParameters.Height(), codecParameters.PixelFormat())
	return d, nil
}

func selectStream(
	streams []*astiav.Stream,
	streamIndex typing.Optional[int],
) *astiav.Stream {
	for _, s := range streams {
		if streamIndex.IsSet() {
			if s.Index() == streamIndex.Get() {
				return s
			}
			continue
		}
		if s.CodecParameters().MediaType() == astiav.MediaTypeVideo {
			return s
		}
	}
	return nil
}

func (d *Decoder) String() string {
	if d.Codec == nil {
		return fmt.Sprintf("Decoder(%s)", d.URL)
	}
	return fmt.Sprintf("Decoder(%s: %s)", d.URL, d.Codec.Name())
}

func (d *Decoder) Close(ctx context.Context) error {
	logger.Debugf(ctx, "Close")
	return d.closer.Close()
}

// Run decodes the stream until its end, committing one record per decoded
// frame into the sink. It stops early (after a completed frame) if the sink
// requests an interruption.
func (d *Decoder) Run(
	ctx context.Context,
	sink StatsSink,
) (_ret Result, _err error) {
	logger.Debugf(ctx, "Run")
	defer func() { logger.Debugf(ctx, "/Run: %#+v %v", _ret, _err) }()

	r := &run{
		Decoder: d,
		sink:    sink,
		rec:     sink.Recorder(),
	}
	for {
		if err := ctx.Err(); err != nil {
			return r.result, err
		}
		if sink.IsInterruptRequested() {
			r.result.Interrupted = true
			return r.result, nil
		}

		eof, err := r.readPacket(ctx)
		if err != nil {
			return r.result, err
		}
		if eof {
			logger.Debugf(ctx, "EOF, draining the decoder")
			if err := r.send(ctx, nil); err != nil {
				return r.result, err
			}
			return r.result, nil
		}
	}
}

type run struct {
	*Decoder
	sink   StatsSink
	rec    *stats.Recorder
	result Result

	// the decoding time and bytes consumed since the previous frame was output
	pending     timer.Ticks
	pendingSize uint64
}

func (r *run) readPacket(ctx context.Context) (bool, error) {
	if err := r.FormatContext.ReadFrame(r.packet); err != nil {
		if errors.Is(err, astiav.ErrEof) {
			return true, nil
		}
		return false, fmt.Errorf("unable to read a packet: %w", err)
	}
	defer r.packet.Unref()

	if r.packet.StreamIndex() != r.Stream.Index() {
		return false, nil
	}
	r.pendingSize += uint64(r.packet.Size())
	return false, r.send(ctx, r.packet)
}

// send sends the packet (nil means draining) and receives all the frames
// which became available.
func (r *run) send(ctx context.Context, pkt *astiav.Packet) error {
	mark := r.rec.Begin()
	err := r.CodecContext.SendPacket(pkt)
	r.rec.End(mark, &r.pending)
	if err != nil && !errors.Is(err, astiav.ErrEagain) {
		return fmt.Errorf("unable to send a packet to the decoder: %w", err)
	}

	for {
		mark := r.rec.Begin()
		err := r.CodecContext.ReceiveFrame(r.frame)
		r.rec.End(mark, &r.pending)
		if err != nil {
			if errors.Is(err, astiav.ErrEof) || errors.Is(err, astiav.ErrEagain) {
				return nil
			}
			return fmt.Errorf("unable to receive a frame from the decoder: %w", err)
		}
		err = r.commitFrame(ctx)
		r.frame.Unref()
		if err != nil {
			return err
		}
		if r.sink.IsInterruptRequested() {
			return nil
		}
	}
}

func (r *run) commitFrame(ctx context.Context) error {
	record := r.rec.Record()
	record.FrameTime += r.pending
	r.rec.SetSliceType(SliceTypeFromPictureType(r.frame.PictureType()))
	r.rec.Set(types.CounterSliceSize, r.pendingSize)
	r.rec.Set(types.CounterPixelCount, uint64(r.frame.Width())*uint64(r.frame.Height()))
	r.rec.Set(types.CounterBitDepth, r.BitDepth)
	logger.Tracef(ctx, "frame #%d: %s, %d bytes", record.FrameNumber, record.SliceType, r.pendingSize)

	if err := r.sink.Commit(ctx); err != nil {
		return fmt.Errorf("unable to commit frame #%d: %w", r.result.Frames, err)
	}
	r.result.Frames++
	r.pending = 0
	r.pendingSize = 0
	return nil
}
