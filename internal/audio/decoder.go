package audio

import (
	"context"
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"
)

const (
	SampleRate = 48000
	Channels   = 2
)

// decoder turns one local file into interleaved s16le stereo 48k PCM.
type decoder struct {
	fc  *astiav.FormatContext
	st  *astiav.Stream
	cc  *astiav.CodecContext
	swr *astiav.SoftwareResampleContext
	pkt *astiav.Packet
	src *astiav.Frame
	dst *astiav.Frame
}

func openDecoder(path string) (*decoder, error) {
	d := &decoder{fc: astiav.AllocFormatContext()}
	if d.fc == nil {
		return nil, errors.New("alloc format context")
	}
	if err := d.fc.OpenInput(path, nil, nil); err != nil {
		d.fc.Free()
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	if err := d.init(); err != nil {
		d.close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func (d *decoder) init() error {
	if err := d.fc.FindStreamInfo(nil); err != nil {
		return fmt.Errorf("find stream info: %w", err)
	}
	for _, s := range d.fc.Streams() {
		if s.CodecParameters().MediaType() == astiav.MediaTypeAudio {
			d.st = s
			break
		}
	}
	if d.st == nil {
		return errors.New("no audio stream found")
	}

	codec := astiav.FindDecoder(d.st.CodecParameters().CodecID())
	if codec == nil {
		return errors.New("no decoder for audio stream")
	}
	if d.cc = astiav.AllocCodecContext(codec); d.cc == nil {
		return errors.New("alloc codec context")
	}
	if err := d.st.CodecParameters().ToCodecContext(d.cc); err != nil {
		return fmt.Errorf("codec from params: %w", err)
	}
	d.cc.SetTimeBase(d.st.TimeBase())
	if err := d.cc.Open(codec, nil); err != nil {
		return fmt.Errorf("open decoder: %w", err)
	}

	// the resampler configures itself from the first frame pair it sees
	if d.swr = astiav.AllocSoftwareResampleContext(); d.swr == nil {
		return errors.New("alloc swr")
	}
	d.pkt = astiav.AllocPacket()
	d.src = astiav.AllocFrame()
	d.dst = astiav.AllocFrame()
	return nil
}

// decode feeds every converted chunk to emit until the file ends, emit fails
// or ctx is done.
func (d *decoder) decode(ctx context.Context, emit func([]byte) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		d.pkt.Unref()
		if err := d.fc.ReadFrame(d.pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				break
			}
			if errors.Is(err, astiav.ErrEagain) {
				continue
			}
			return fmt.Errorf("read frame: %w", err)
		}
		if d.pkt.StreamIndex() != d.st.Index() {
			continue
		}
		if err := d.cc.SendPacket(d.pkt); err != nil && !errors.Is(err, astiav.ErrEagain) {
			return fmt.Errorf("send packet: %w", err)
		}
		if err := d.drain(emit); err != nil {
			return err
		}
	}

	// flush the decoder
	if err := d.cc.SendPacket(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
		return fmt.Errorf("flush decoder: %w", err)
	}
	return d.drain(emit)
}

func (d *decoder) drain(emit func([]byte) error) error {
	for {
		d.src.Unref()
		if err := d.cc.ReceiveFrame(d.src); err != nil {
			if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
				return nil
			}
			return fmt.Errorf("receive frame: %w", err)
		}
		b, err := d.convert(d.src)
		if err != nil {
			return err
		}
		if len(b) == 0 {
			continue
		}
		if err := emit(b); err != nil {
			return err
		}
	}
}

func (d *decoder) convert(src *astiav.Frame) ([]byte, error) {
	d.dst.Unref()
	d.dst.SetChannelLayout(astiav.ChannelLayoutStereo)
	d.dst.SetSampleRate(SampleRate)
	d.dst.SetSampleFormat(astiav.SampleFormatS16)
	// room for the resampled frame plus whatever the resampler had buffered
	n := src.NbSamples()
	if rate := src.SampleRate(); rate > 0 {
		n = n*SampleRate/rate + 256
	}
	d.dst.SetNbSamples(n)
	if err := d.dst.AllocBuffer(0); err != nil {
		return nil, fmt.Errorf("dst alloc buffer: %w", err)
	}
	if err := d.swr.ConvertFrame(src, d.dst); err != nil {
		return nil, fmt.Errorf("swr convert: %w", err)
	}
	if d.dst.NbSamples() == 0 {
		return nil, nil
	}
	b, err := d.dst.Data().Bytes(1)
	if err != nil {
		return nil, fmt.Errorf("dst bytes: %w", err)
	}
	return b, nil
}

func (d *decoder) close() {
	if d.dst != nil {
		d.dst.Free()
	}
	if d.src != nil {
		d.src.Free()
	}
	if d.pkt != nil {
		d.pkt.Free()
	}
	if d.swr != nil {
		d.swr.Free()
	}
	if d.cc != nil {
		d.cc.Free()
	}
	if d.fc != nil {
		d.fc.CloseInput()
		d.fc.Free()
	}
}
