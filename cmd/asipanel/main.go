package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/linusw/asipanel/internal/config"
	"github.com/linusw/asipanel/internal/log"
	"github.com/linusw/asipanel/pkg/camera"
	"github.com/linusw/asipanel/pkg/sched"
	"github.com/linusw/asipanel/pkg/web"
)

// scheduleRunner adapts the camera manager to the scheduler.
type scheduleRunner struct {
	cam *camera.Manager
}

func (r scheduleRunner) StartWindow(s sched.Schedule) (string, error) {
	if err := r.cam.UpdateSettings(s.Settings); err != nil {
		return "", err
	}
	if err := r.cam.StartCapture(); err != nil {
		return "", err
	}
	return r.cam.StartRecording(s.Name)
}

func (r scheduleRunner) StopWindow(s sched.Schedule) error {
	_, err := r.cam.StopRecording()
	return err
}

func main() {
	port := flag.String("port", "", "HTTP listen port (overrides PANEL_PORT)")
	device := flag.Int("device", -1, "capture device index (overrides PANEL_DEVICE_ID)")
	flag.Parse()

	config.Load()
	log.Init(config.LogLevel())

	listenPort := config.ListenPort()
	if *port != "" {
		listenPort = *port
	}
	deviceID := config.DeviceID()
	if *device >= 0 {
		deviceID = *device
	}

	cam := camera.NewManager(config.CapturesDir())

	store, err := sched.OpenStore(config.ScheduleDBPath())
	if err != nil {
		log.Error("opening schedule store failed", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	scheduler := sched.New(store, scheduleRunner{cam: cam})
	if err := scheduler.Recover(); err != nil {
		log.Error("schedule recovery failed", "err", err)
		os.Exit(1)
	}
	go scheduler.Run()
	defer scheduler.Stop()

	server := web.NewServer(listenPort, deviceID, cam, scheduler, config.CameraAPIURL(), config.StaticDir())

	// The camera may not be attached at boot; the monitor picks it up.
	if err := cam.Connect(deviceID); err != nil {
		log.Warn("camera not available at startup", "err", err)
	} else if err := cam.StartCapture(); err != nil {
		log.Warn("initial capture start failed", "err", err)
	}
	cam.StartMonitor(deviceID)
	defer cam.StopMonitor()
	defer cam.Disconnect()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Error("shutdown failed", "err", err)
		}
	}()

	log.Info("asipanel starting", "port", listenPort, "device", deviceID)
	if err := server.Start(); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
