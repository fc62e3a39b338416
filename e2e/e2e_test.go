package e2e

import (
	"encoding/json"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gocv.io/x/gocv"

	"github.com/ayusman/scribbly/internal/app"
	"github.com/ayusman/scribbly/internal/config"
	"github.com/ayusman/scribbly/internal/detector"
	"github.com/ayusman/scribbly/internal/metrics"
	"github.com/ayusman/scribbly/internal/server"
	"github.com/ayusman/scribbly/internal/store"
)

type strokeList struct {
	Count   int `json:"count"`
	Strokes []struct {
		Color  string `json:"color"`
		Size   int    `json:"size"`
		Points []struct {
			X int `json:"x"`
			Y int `json:"y"`
		} `json:"points"`
	} `json:"strokes"`
}

func getStrokes(t *testing.T, client *http.Client, url string) strokeList {
	t.Helper()

	resp, err := client.Get(url + "/api/strokes")
	if err != nil {
		t.Fatalf("GET /api/strokes error = %v", err)
	}
	defer resp.Body.Close()

	var list strokeList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode strokes: %v", err)
	}
	return list
}

func post(t *testing.T, client *http.Client, url string) {
	t.Helper()

	resp, err := client.Post(url, "application/json", nil)
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST %s status = %d", url, resp.StatusCode)
	}
}

func TestE2E_DrawOverHTTP(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "scribbly.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	// Persisted overrides flow into the engine configuration.
	if err := s.Settings().Set("interaction.alpha", "1"); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	overrides, _ := s.Settings().Map()
	if err := cfg.ApplySettings(overrides); err != nil {
		t.Fatalf("ApplySettings() error = %v", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	application := app.New(app.Config{
		Camera:      cfg.Camera,
		Detector:    cfg.Detector,
		Interaction: cfg.Engine(),
		Metrics:     m,
	})
	mock := detector.NewMockDetector()
	application.SetDetector(mock)
	defer application.Stop()

	srv := server.New(server.Config{
		Store:    s,
		Canvas:   application,
		Frames:   application.Frames(),
		Metrics:  m,
		Gatherer: reg,
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Shutdown(t.Context())
	client := ts.Client()

	src := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	src.SetTo(gocv.NewScalar(30, 30, 30, 0))
	defer src.Close()

	// Fingertip pixels (200,300), (205,302), (210,305) on a 640x480 frame.
	tips := [][2]float64{{0.3125, 0.625}, {0.3203125, 0.6291667}, {0.328125, 0.6354167}}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	step := func(t *testing.T, i int, hands []detector.HandLandmarks) {
		t.Helper()
		mock.SetHands(hands)
		frame := src.Clone()
		defer frame.Close()
		if _, err := application.ProcessFrame(&frame, start.Add(time.Duration(i)*33*time.Millisecond)); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}

	t.Run("DrawStroke", func(t *testing.T) {
		for i, tip := range tips {
			step(t, i, []detector.HandLandmarks{detector.PointingLandmarks(tip[0], tip[1])})
			if i == 1 {
				// A UI change mid-stroke does not alter the open stroke.
				post(t, client, ts.URL+"/api/strokes/color")
			}
		}
		step(t, len(tips), nil)

		list := getStrokes(t, client, ts.URL)
		if list.Count != 1 {
			t.Fatalf("count = %d, want 1", list.Count)
		}
		got := list.Strokes[0]
		if got.Color != "#ffffff" || got.Size != 10 {
			t.Errorf("stroke attributes = %s/%d, want #ffffff/10", got.Color, got.Size)
		}
		want := []image.Point{{200, 300}, {205, 302}, {210, 305}}
		if len(got.Points) != len(want) {
			t.Fatalf("points = %v, want %v", got.Points, want)
		}
		for i, p := range want {
			if got.Points[i].X != p.X || got.Points[i].Y != p.Y {
				t.Errorf("point %d = %v, want %v", i, got.Points[i], p)
			}
		}
	})

	t.Run("NextStrokeUsesNewColor", func(t *testing.T) {
		step(t, 10, []detector.HandLandmarks{detector.PointingLandmarks(0.5, 0.5)})
		step(t, 11, []detector.HandLandmarks{detector.PointingLandmarks(0.51, 0.5)})
		step(t, 12, []detector.HandLandmarks{detector.CurledLandmarks(0.52, 0.5)})

		list := getStrokes(t, client, ts.URL)
		if list.Count != 2 || list.Strokes[1].Color != "#000000" {
			t.Errorf("second stroke = %+v", list)
		}
	})

	t.Run("UndoRedoClear", func(t *testing.T) {
		post(t, client, ts.URL+"/api/strokes/undo")
		if n := getStrokes(t, client, ts.URL).Count; n != 1 {
			t.Errorf("after undo count = %d, want 1", n)
		}
		post(t, client, ts.URL+"/api/strokes/redo")
		if n := getStrokes(t, client, ts.URL).Count; n != 2 {
			t.Errorf("after redo count = %d, want 2", n)
		}
		post(t, client, ts.URL+"/api/strokes/clear")
		post(t, client, ts.URL+"/api/strokes/undo")
		if n := getStrokes(t, client, ts.URL).Count; n != 0 {
			t.Errorf("undo after clear restored %d strokes", n)
		}
	})

	t.Run("HealthAndMetrics", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatal(err)
		}
		var health struct {
			Status string `json:"status"`
			Frames uint64 `json:"frames"`
		}
		json.NewDecoder(resp.Body).Decode(&health)
		resp.Body.Close()
		if health.Status != "ok" || health.Frames != 7 {
			t.Errorf("health = %+v, want ok with 7 frames", health)
		}

		resp, err = client.Get(ts.URL + "/metrics")
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		for _, want := range []string{
			"scribbly_frames_total 7",
			"scribbly_strokes_started_total 2",
			`scribbly_actions_total{button="color"} 1`,
		} {
			if !strings.Contains(string(body), want) {
				t.Errorf("metrics missing %q", want)
			}
		}
	})
}
