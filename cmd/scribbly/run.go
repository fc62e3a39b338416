package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ayusman/scribbly/internal/app"
	"github.com/ayusman/scribbly/internal/config"
	"github.com/ayusman/scribbly/internal/interact"
	"github.com/ayusman/scribbly/internal/metrics"
	"github.com/ayusman/scribbly/internal/server"
	"github.com/ayusman/scribbly/internal/tray"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the camera and start drawing",
	Long: `Starts the capture loop. By default the composited canvas is shown in a
window (press q to quit) and served over HTTP for the browser viewer.`,
	Args: cobra.NoArgs,
	RunE: runScribbly,
}

func init() {
	rootCmd.AddCommand(runCmd)
	setRunFlags(runCmd)
}

func setRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int("camera", 0, "Camera device id")
	cmd.Flags().String("addr", "", "HTTP listen address (default :8080)")
	cmd.Flags().Bool("no-window", false, "Do not open the preview window")
	cmd.Flags().Bool("no-server", false, "Do not start the HTTP server")
	cmd.Flags().Bool("tray", false, "Show a system tray menu instead of the window")
}

// applyFlags overrides cfg with the run flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("camera") {
		cfg.Camera.DeviceID, _ = flags.GetInt("camera")
	}
	if flags.Changed("addr") {
		cfg.Server.Addr, _ = flags.GetString("addr")
	}
	if v, _ := flags.GetBool("no-window"); v {
		cfg.Display.Window = false
	}
	if v, _ := flags.GetBool("no-server"); v {
		cfg.Server.Enabled = false
	}
	if v, _ := flags.GetBool("tray"); v {
		cfg.Display.Tray = true
	}
	if cfg.Display.Tray && cfg.Display.Window {
		log.Println("tray requested, disabling the preview window")
		cfg.Display.Window = false
	}
}

func runScribbly(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if overrides, err := st.Settings().Map(); err != nil {
		log.Printf("failed to read persisted settings: %v", err)
	} else if err := cfg.ApplySettings(overrides); err != nil {
		log.Printf("ignoring persisted settings: %v", err)
	}
	applyFlags(cmd, &cfg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	a := app.New(app.Config{
		Camera:      cfg.Camera,
		Detector:    cfg.Detector,
		Interaction: cfg.Engine(),
		Metrics:     m,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *server.Server
	if cfg.Server.Enabled {
		staticDir := cfg.Server.StaticDir
		if staticDir == "" {
			staticDir = findWebDir(cfg.DataDir)
		}
		if staticDir != "" {
			log.Printf("serving static files from %s", staticDir)
		}

		srv = server.New(server.Config{
			StaticDir: staticDir,
			Store:     st,
			Canvas:    a,
			Frames:    a.Frames(),
			Metrics:   m,
			Gatherer:  reg,
		})
		go func() {
			log.Printf("starting server on %s", cfg.Server.Addr)
			if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
				log.Printf("server error: %v", err)
				stop()
			}
		}()
	}

	switch {
	case cfg.Display.Tray:
		err = runTray(ctx, stop, a, viewerURL(cfg.Server.Addr))
	case cfg.Display.Window:
		w := app.NewWindow(cfg.Display.Title)
		err = a.Run(ctx, w)
		w.Close()
	default:
		err = a.Run(ctx, nil)
	}

	a.Stop()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}
	return err
}

// runTray runs the pipeline in the background and the tray menu on the
// calling goroutine until quit or ctx is done.
func runTray(ctx context.Context, quit func(), a *app.App, viewer string) error {
	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnClear(func() { a.Trigger(interact.ButtonClear) })
	t.OnViewer(func() {
		if err := openBrowser(viewer); err != nil {
			log.Printf("failed to open viewer: %v", err)
		}
	})
	t.OnQuit(quit)
	a.OnAction(func(b interact.Button) { t.SetLastAction(b.String()) })

	if err := a.Start(); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
	return nil
}

// viewerURL returns the browser address for a listen address.
func viewerURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

func openBrowser(url string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		c = exec.Command("xdg-open", url)
	}
	if err := c.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

// findWebDir searches for the viewer directory in common locations.
// It checks "web", "../web", "../../web" and dataDir/web, returning the
// first existing directory or "" if none is found.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
