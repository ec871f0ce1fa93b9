package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/arvindh/mudra/internal/app"
	"github.com/arvindh/mudra/internal/capture"
	"github.com/arvindh/mudra/internal/config"
	"github.com/arvindh/mudra/internal/photo"
	"github.com/arvindh/mudra/internal/server"
	"github.com/arvindh/mudra/internal/server/api"
	"github.com/arvindh/mudra/internal/store"
	"github.com/arvindh/mudra/internal/tray"
)

func main() {
	fmt.Println("Mudra - Gesture Camera")

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	capturer, err := photo.NewCapturer(cfg.PhotoDir(), st.Photos())
	if err != nil {
		log.Fatalf("Failed to initialize photo capturer: %v", err)
	}

	// The supervisor wraps the raw camera with reconnects and a hang
	// watchdog.
	var cam capture.Camera
	if cfg.StreamURL != "" {
		log.Printf("Using stream camera: %s", cfg.StreamURL)
		cam = capture.NewStreamCamera(cfg.StreamURL)
	} else {
		cam = capture.NewCamera(cfg.CameraID)
	}
	supervised := capture.NewSupervisor(cam, capture.DefaultSupervisorConfig())

	hub := server.NewHub()

	a := app.New(app.Config{
		Camera:        supervised,
		Capturer:      capturer,
		Publisher:     hub,
		MotionThresh:  cfg.MotionThreshold,
		GestureConfig: cfg.Gesture,
	})

	// Settings persisted by the API win over file/env configuration.
	if err := api.ApplyStoredSettings(st, a); err != nil {
		log.Printf("Could not apply stored settings: %v", err)
	}

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	defer a.Stop()

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findWebDir(cfg.DataDir)
	}
	if staticDir != "" {
		fmt.Printf("Serving static files from: %s\n", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Frames:    a,
		Capturer:  capturer,
		Tuner:     a,
		Hub:       hub,
	})

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.ListenAddr)
		if err := srv.ListenAndServe(cfg.ListenAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if cfg.Tray {
		runTray(a, cfg.ListenAddr)
		return
	}

	// Headless mode: wait for a signal.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("Shutting down")
}

// runTray runs the system tray loop. It blocks until Quit is chosen.
func runTray(a *app.App, listenAddr string) {
	t := tray.New()
	t.SetEnabled(a.Enabled())

	t.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
	})
	a.OnGesture(func(name string) {
		t.SetLastGesture(name)
	})
	t.OnResetView(func() {
		a.ResetView()
	})
	t.OnOpenViewer(func() {
		openBrowser(viewerURL(listenAddr))
	})
	t.OnQuit(func() {
		log.Println("Shutting down")
	})

	t.Run()
}

// viewerURL turns a listen address into a browsable URL.
func viewerURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Could not open browser: %v", err)
	}
}

// findWebDir searches for the web viewer directory in common locations.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
