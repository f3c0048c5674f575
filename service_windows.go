//go:build windows

// Windows service support for the VRAM estimator via
// github.com/kardianos/service. Lets the estimator run as a background
// service with proper Start/Stop handling.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kardianos/service"
)

// program implements service.Interface. Start launches the estimator
// server in a goroutine; Stop cancels its context and waits for the
// graceful shutdown to finish.
type program struct {
	ctx    context.Context
	cancel context.CancelFunc
	exit   chan struct{}
}

func (p *program) Start(s service.Service) error {
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.exit = make(chan struct{})

	go func() {
		defer close(p.exit)
		run(p.ctx)
	}()

	return nil
}

func (p *program) Stop(s service.Service) error {
	p.cancel()

	select {
	case <-p.exit:
	case <-time.After(30 * time.Second):
		return fmt.Errorf("timeout waiting for service to stop")
	}

	return nil
}

// serviceConfig returns the Windows service definition.
func serviceConfig() *service.Config {
	return &service.Config{
		Name:        "VRAMEstimator",
		DisplayName: "SD v1.5 VRAM Estimator",
		Description: "Analytical peak VRAM prediction service for Stable Diffusion v1.5 FP16 inference",
		Option: service.KeyValue{
			"StartType": "automatic",
		},
	}
}

// RunAsService runs the application under the Windows service manager.
// Returns false without error when running interactively.
func RunAsService() (bool, error) {
	prg := &program{}

	s, err := service.New(prg, serviceConfig())
	if err != nil {
		return false, fmt.Errorf("failed to create service: %w", err)
	}

	if service.Interactive() {
		return false, nil
	}

	if err := s.Run(); err != nil {
		return true, fmt.Errorf("service run failed: %w", err)
	}

	return true, nil
}

// controlService applies a service control action (install, start, ...).
func controlService(action string) error {
	prg := &program{}

	s, err := service.New(prg, serviceConfig())
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	if action == "status" {
		status, err := s.Status()
		if err != nil {
			return fmt.Errorf("failed to get service status: %w", err)
		}
		switch status {
		case service.StatusRunning:
			fmt.Println("Service is running")
		case service.StatusStopped:
			fmt.Println("Service is stopped")
		default:
			fmt.Println("Service status unknown")
		}
		return nil
	}

	if err := service.Control(s, action); err != nil {
		return fmt.Errorf("failed to %s service: %w", action, err)
	}

	fmt.Printf("Service %s successful\n", action)
	return nil
}

// printServiceUsage prints help for the service management commands.
func printServiceUsage() {
	fmt.Println("VRAM Estimator Service Management")
	fmt.Println()
	fmt.Println("Usage: vram_backend.exe <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  install    Install the estimator as a Windows service")
	fmt.Println("  uninstall  Remove the Windows service")
	fmt.Println("  start      Start the Windows service")
	fmt.Println("  stop       Stop the Windows service")
	fmt.Println("  restart    Restart the Windows service")
	fmt.Println("  status     Show the current service status")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Run without arguments to start in foreground mode.")
}

// HandleServiceCommand handles service-related command-line arguments.
// Returns true if a service command was handled.
func HandleServiceCommand(args []string) bool {
	if len(args) < 2 {
		return false
	}

	var err error
	switch args[1] {
	case "install", "start", "stop", "restart", "status":
		err = controlService(args[1])
	case "uninstall", "remove":
		err = controlService("uninstall")
	case "help", "-h", "--help", "-help":
		printServiceUsage()
		return true
	default:
		return false
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	return true
}
