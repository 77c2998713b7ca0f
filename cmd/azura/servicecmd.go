package main

import (
	"fmt"
	"os"

	"github.com/azura-ai/azura/pkg/app"
	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

// program adapts the application loop to the service manager interface.
type program struct {
	configPath string
	dataDir    string
}

func (p *program) Start(_ service.Service) error {
	go p.run()
	return nil
}

func (p *program) run() {
	if err := app.Run(app.RunParams{ConfigPath: p.configPath, DataDir: p.dataDir}); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (p *program) Stop(_ service.Service) error {
	// app.Run shuts down on the termination signal the service manager
	// sends alongside this call.
	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		return nil
	}
	_ = proc.Signal(os.Interrupt)
	return nil
}

func serviceConfig(cfgPath, dataDir string) *service.Config {
	args := []string{"service", "run"}
	if cfgPath != "" {
		args = append(args, "--config", cfgPath)
	}
	if dataDir != "" {
		args = append(args, "--data-dir", dataDir)
	}
	return &service.Config{
		Name:        "azura",
		DisplayName: "Azura AI",
		Description: "Meme and memecoin trend analysis bot",
		Arguments:   args,
	}
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Run azura under the system service manager",
	}
	cmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	cmd.PersistentFlags().String("data-dir", "", "Persistent data directory")

	newService := func(cmd *cobra.Command) (service.Service, error) {
		cfgPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		return service.New(
			&program{configPath: cfgPath, dataDir: dataDir},
			serviceConfig(cfgPath, dataDir),
		)
	}

	control := func(action string) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			if err := service.Control(svc, action); err != nil {
				return fmt.Errorf("service %s: %w", action, err)
			}
			fmt.Printf("Service %s: done\n", action)
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "install", Short: "Install azura as a system service", RunE: control("install")},
		&cobra.Command{Use: "uninstall", Short: "Remove the system service", RunE: control("uninstall")},
		&cobra.Command{Use: "start", Short: "Start the installed service", RunE: control("start")},
		&cobra.Command{Use: "stop", Short: "Stop the installed service", RunE: control("stop")},
		&cobra.Command{
			Use:    "run",
			Short:  "Run under the service manager (used by the installed unit)",
			Hidden: true,
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := newService(cmd)
				if err != nil {
					return err
				}
				return svc.Run()
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the service status",
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := newService(cmd)
				if err != nil {
					return err
				}
				status, err := svc.Status()
				if err != nil {
					return fmt.Errorf("service status: %w", err)
				}
				switch status {
				case service.StatusRunning:
					fmt.Println("running")
				case service.StatusStopped:
					fmt.Println("stopped")
				default:
					fmt.Println("unknown")
				}
				return nil
			},
		},
	)
	return cmd
}
