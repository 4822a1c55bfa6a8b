package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type stubEngine struct {
	name  string
	text  string
	err   error
	calls int
	input []byte
}

func (e *stubEngine) Name() string { return e.name }

func (e *stubEngine) Recognize(_ context.Context, image []byte) (string, error) {
	e.calls++
	e.input = image
	return e.text, e.err
}

func samplePNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x < 4 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode sample: %v", err)
	}
	return buf.Bytes()
}

func TestExtractUsesLocalEngineOnBinarizedImage(t *testing.T) {
	t.Parallel()

	local := &stubEngine{name: "local", text: " STOP \n"}
	remote := &stubEngine{name: "remote", text: "unused"}
	extractor := NewExtractor(local, remote, zerolog.Nop())

	text, err := extractor.Extract(context.Background(), samplePNG(t))
	if err != nil {
		t.Fatalf("Extract error = %v", err)
	}
	if text != "STOP" {
		t.Fatalf("unexpected text %q", text)
	}
	if remote.calls != 0 {
		t.Fatalf("remote should not run when local succeeds")
	}
	decoded, err := png.Decode(bytes.NewReader(local.input))
	if err != nil {
		t.Fatalf("local engine did not receive a png: %v", err)
	}
	if _, ok := decoded.(*image.Gray); !ok {
		t.Fatalf("expected grayscale bitmap, got %T", decoded)
	}
}

func TestExtractFallsBackToRemoteOnBlankLocal(t *testing.T) {
	t.Parallel()

	raw := samplePNG(t)
	local := &stubEngine{name: "local", text: "   "}
	remote := &stubEngine{name: "remote", text: "EXIT"}
	extractor := NewExtractor(local, remote, zerolog.Nop())

	text, err := extractor.Extract(context.Background(), raw)
	if err != nil || text != "EXIT" {
		t.Fatalf("expected remote text, got %q err=%v", text, err)
	}
	if !bytes.Equal(remote.input, raw) {
		t.Fatalf("remote engine should receive the original upload")
	}
}

func TestExtractBothFailReturnsErrNoText(t *testing.T) {
	t.Parallel()

	local := &stubEngine{name: "local", err: errors.New("crash")}
	remote := &stubEngine{name: "remote", err: errors.New("quota")}
	extractor := NewExtractor(local, remote, zerolog.Nop())

	_, err := extractor.Extract(context.Background(), samplePNG(t))
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
	if local.calls != 1 || remote.calls != 1 {
		t.Fatalf("expected one attempt each, got local=%d remote=%d", local.calls, remote.calls)
	}
}

func TestExtractWithoutLocalEngine(t *testing.T) {
	t.Parallel()

	remote := &stubEngine{name: "remote", text: "hello"}
	extractor := NewExtractor(nil, remote, zerolog.Nop())
	if extractor.LocalAvailable() {
		t.Fatalf("expected no local engine")
	}
	text, err := extractor.Extract(context.Background(), samplePNG(t))
	if err != nil || text != "hello" {
		t.Fatalf("expected remote text, got %q err=%v", text, err)
	}
}

func TestOCRSpaceEngineRecognize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("apikey") != "key-1" || r.FormValue("language") != "eng" || r.FormValue("isOverlayRequired") != "false" {
			t.Errorf("unexpected form: %v", r.MultipartForm.Value)
		}
		if !strings.HasPrefix(r.FormValue("base64Image"), "data:image/png;base64,") {
			t.Errorf("unexpected data uri prefix: %.40s", r.FormValue("base64Image"))
		}
		_, _ = w.Write([]byte(`{"ParsedResults":[{"ParsedText":"Hello\r\nWorld "}],"IsErroredOnProcessing":false}`))
	}))
	defer srv.Close()

	engine := NewOCRSpaceEngine("key-1", srv.URL, srv.Client())
	text, err := engine.Recognize(context.Background(), samplePNG(t))
	if err != nil {
		t.Fatalf("Recognize error = %v", err)
	}
	if text != "Hello\r\nWorld" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestOCRSpaceEngineProcessingError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"IsErroredOnProcessing":true,"ErrorMessage":["Unable to recognize the file type"]}`))
	}))
	defer srv.Close()

	engine := NewOCRSpaceEngine("", srv.URL, srv.Client())
	if _, err := engine.Recognize(context.Background(), []byte("garbage")); err == nil {
		t.Fatalf("expected processing error")
	}
}

func TestTesseractEngineWithoutBinary(t *testing.T) {
	t.Parallel()

	if _, err := NewTesseractEngine("").Recognize(context.Background(), []byte("x")); err == nil {
		t.Fatalf("expected error when tesseract is missing")
	}
}

func TestExtractSkipsLocalForOversizedImage(t *testing.T) {
	t.Parallel()

	raw := samplePNG(t)
	local := &stubEngine{name: "local", text: "unused"}
	remote := &stubEngine{name: "remote", text: "EXIT"}
	extractor := NewExtractor(local, remote, zerolog.Nop()).WithMaxImagePixels(32)

	text, err := extractor.Extract(context.Background(), raw)
	if err != nil || text != "EXIT" {
		t.Fatalf("expected remote text, got %q err=%v", text, err)
	}
	if local.calls != 0 {
		t.Fatalf("local engine must not run on an image over the pixel cap")
	}
	if !bytes.Equal(remote.input, raw) {
		t.Fatalf("remote engine should receive the original upload")
	}
}
