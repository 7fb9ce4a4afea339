package transcribe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWhisperClient_Transcribe(t *testing.T) {
	var gotModel, gotLanguage, gotHotwords, gotPrompt, gotMaxTokens string
	var gotAudio []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		gotHotwords = r.FormValue("hotwords")
		gotPrompt = r.FormValue("prompt")
		gotMaxTokens = r.FormValue("max_new_tokens")

		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
		} else {
			buf := make([]byte, 16)
			n, _ := f.Read(buf)
			gotAudio = buf[:n]
			f.Close()
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"  hello world ","language":"en","duration":1.5}`))
	}))
	defer srv.Close()

	wc := NewWhisperClient(srv.URL, "faster-whisper-small", "de", 5*time.Second)
	resp, err := wc.Transcribe(context.Background(), Request{
		WAV:          []byte("RIFFfakewav"),
		SampleRate:   16000,
		Vocabulary:   []string{"CUDA", "Hopper"},
		MaxNewTokens: 128,
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if resp.Text != "hello world" {
		t.Errorf("Text = %q, want %q", resp.Text, "hello world")
	}
	if resp.Language != "en" {
		t.Errorf("Language = %q, want en", resp.Language)
	}
	if resp.Duration != 1.5 {
		t.Errorf("Duration = %v, want 1.5", resp.Duration)
	}
	if gotModel != "faster-whisper-small" {
		t.Errorf("model field = %q, want faster-whisper-small", gotModel)
	}
	if gotLanguage != "de" {
		t.Errorf("language field = %q, want de", gotLanguage)
	}
	if gotHotwords != "CUDA, Hopper" {
		t.Errorf("hotwords field = %q, want %q", gotHotwords, "CUDA, Hopper")
	}
	if gotPrompt != "CUDA, Hopper" {
		t.Errorf("prompt field = %q, want %q", gotPrompt, "CUDA, Hopper")
	}
	if gotMaxTokens != "128" {
		t.Errorf("max_new_tokens field = %q, want 128", gotMaxTokens)
	}
	if string(gotAudio) != "RIFFfakewav" {
		t.Errorf("uploaded audio = %q, want RIFFfakewav", gotAudio)
	}
}

func TestWhisperClient_EmptyVocabularyOmitsBiasFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(10 << 20)
		if _, ok := r.MultipartForm.Value["hotwords"]; ok {
			t.Error("hotwords field sent for empty vocabulary")
		}
		if _, ok := r.MultipartForm.Value["prompt"]; ok {
			t.Error("prompt field sent for empty vocabulary")
		}
		w.Write([]byte(`{"text":""}`))
	}))
	defer srv.Close()

	wc := NewWhisperClient(srv.URL, "m", "en", 5*time.Second)
	if _, err := wc.Transcribe(context.Background(), Request{WAV: []byte("x")}); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
}

func TestWhisperClient_ModelNotLoaded(t *testing.T) {
	t.Run("http_503", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		wc := NewWhisperClient(srv.URL, "m", "en", 5*time.Second)
		_, err := wc.Transcribe(context.Background(), Request{WAV: []byte("x")})
		if !errors.Is(err, ErrModelNotLoaded) {
			t.Errorf("error = %v, want ErrModelNotLoaded", err)
		}
	})

	t.Run("connection_refused", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // nothing listening anymore

		wc := NewWhisperClient(srv.URL, "m", "en", 5*time.Second)
		_, err := wc.Transcribe(context.Background(), Request{WAV: []byte("x")})
		if !errors.Is(err, ErrModelNotLoaded) {
			t.Errorf("error = %v, want ErrModelNotLoaded", err)
		}
	})
}

func TestWhisperClient_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	wc := NewWhisperClient(srv.URL, "m", "en", 50*time.Millisecond)
	_, err := wc.Transcribe(context.Background(), Request{WAV: []byte("x")})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("error = %v, want ErrTimeout", err)
	}
}

func TestWhisperClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad audio"}`))
	}))
	defer srv.Close()

	wc := NewWhisperClient(srv.URL, "m", "en", 5*time.Second)
	_, err := wc.Transcribe(context.Background(), Request{WAV: []byte("x")})
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if errors.Is(err, ErrModelNotLoaded) || errors.Is(err, ErrTimeout) {
		t.Errorf("400 should be a plain inference error, got %v", err)
	}
}
