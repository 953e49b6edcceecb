package camera

import (
	"context"
	"errors"
	"strings"
	"testing"

	"nutriscan/internal/logging"
	"nutriscan/internal/testsupport"
)

type fakeExecutor struct {
	outputs map[string][]byte
	errs    map[string]error
	calls   []string
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	f.calls = append(f.calls, binary+" "+strings.Join(args, " "))
	if err, ok := f.errs[binary]; ok {
		return nil, err
	}
	return f.outputs[binary], nil
}

func TestParseFormatResolution(t *testing.T) {
	output := `Format Video Capture:
	Width/Height      : 2560/1440
	Pixel Format      : 'MJPG' (Motion-JPEG)
	Field             : None
`
	width, height, ok := ParseFormatResolution(output)
	if !ok {
		t.Fatal("expected resolution parse to succeed")
	}
	if width != 2560 || height != 1440 {
		t.Fatalf("unexpected resolution %dx%d", width, height)
	}
}

func TestParseFormatResolutionRejectsGarbage(t *testing.T) {
	for _, output := range []string{
		"",
		"Pixel Format : 'MJPG'",
		"Width/Height : abc/def",
		"Width/Height : 0/1440",
	} {
		if _, _, ok := ParseFormatResolution(output); ok {
			t.Fatalf("expected parse failure for %q", output)
		}
	}
}

func TestSnapshotUsesProbedResolution(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	exec := &fakeExecutor{outputs: map[string][]byte{
		"v4l2-ctl": []byte("Width/Height      : 1920/1080\n"),
		"ffmpeg":   []byte{0xff, 0xd8, 0xff, 0xe0},
	}}

	frame, err := NewGrabberWithExecutor(cfg, logging.NewNop(), exec).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if frame.Width != 1920 || frame.Height != 1080 {
		t.Fatalf("expected probed resolution, got %dx%d", frame.Width, frame.Height)
	}
	if len(exec.calls) != 2 {
		t.Fatalf("expected probe then grab, got calls %v", exec.calls)
	}
	if !strings.Contains(exec.calls[1], "-video_size 1920x1080") {
		t.Fatalf("grab command missing probed size: %s", exec.calls[1])
	}
}

func TestSnapshotFallsBackToConfiguredHints(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	exec := &fakeExecutor{
		outputs: map[string][]byte{"ffmpeg": {0xff, 0xd8}},
		errs:    map[string]error{"v4l2-ctl": errors.New("probe unavailable")},
	}

	frame, err := NewGrabberWithExecutor(cfg, logging.NewNop(), exec).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if frame.Width != cfg.Camera.WidthHint || frame.Height != cfg.Camera.HeightHint {
		t.Fatalf("expected hint resolution, got %dx%d", frame.Width, frame.Height)
	}
}

func TestSnapshotEmptyFrameIsAnError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	exec := &fakeExecutor{outputs: map[string][]byte{
		"v4l2-ctl": []byte("Width/Height : 640/480\n"),
		"ffmpeg":   {},
	}}

	if _, err := NewGrabberWithExecutor(cfg, logging.NewNop(), exec).Snapshot(context.Background()); err == nil {
		t.Fatal("expected error for empty frame")
	}
}

func TestSnapshotRequiresDevice(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCameraDevice(""))
	if _, err := NewGrabberWithExecutor(cfg, logging.NewNop(), &fakeExecutor{}).Snapshot(context.Background()); err == nil {
		t.Fatal("expected error without camera device")
	}
}

func TestFrameDataURI(t *testing.T) {
	frame := &Frame{Data: []byte{0x01, 0x02, 0x03}}
	uri := frame.DataURI()
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected data URI prefix: %s", uri)
	}

	var nilFrame *Frame
	if nilFrame.DataURI() != "" {
		t.Fatal("nil frame should render empty data URI")
	}
}

func TestScanCodesSkipsBlankLines(t *testing.T) {
	input := "4006381333931\n\n   \n0123456789012\n"
	var codes []string
	ScanCodes(strings.NewReader(input), func(code string) {
		codes = append(codes, code)
	})
	if len(codes) != 2 || codes[0] != "4006381333931" || codes[1] != "0123456789012" {
		t.Fatalf("unexpected codes %v", codes)
	}
}

func TestQualityToScale(t *testing.T) {
	if got := qualityToScale(100); got != 2 {
		t.Fatalf("quality 100 should map to best scale, got %d", got)
	}
	if got := qualityToScale(1); got <= 2 || got > 31 {
		t.Fatalf("quality 1 should map near worst scale, got %d", got)
	}
	if got := qualityToScale(-5); got < 2 || got > 31 {
		t.Fatalf("clamped quality out of range: %d", got)
	}
}
