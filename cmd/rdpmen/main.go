package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"rdpManager/internal/config"
	"rdpManager/internal/credentials"
	"rdpManager/internal/launcher"
	"rdpManager/internal/models"
	"rdpManager/internal/monitor"
	"rdpManager/internal/registry"
	"rdpManager/internal/vault"
)

type app struct {
	cfg      config.Config
	registry *registry.Registry
	resolver *credentials.Resolver
	vault    vault.Vault
	launcher *launcher.Launcher
	monitor  *monitor.Monitor
	log      *logrus.Entry
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(os.Getenv("RDPMEN_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load config: %v\n", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	log := logrus.NewEntry(logger)

	v, err := vault.Open(cfg.VaultBackend, cfg.VaultPath, cfg.VaultPassphrase, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open credential vault: %v\n", err)
		os.Exit(1)
	}

	reg := registry.New(cfg.RegistryPath, log)
	resolver := credentials.NewResolver(v, log)
	a := &app{
		cfg:      cfg,
		registry: reg,
		resolver: resolver,
		vault:    v,
		launcher: launcher.New(cfg, reg, resolver, v, log),
		monitor: monitor.New(monitor.Options{
			Port:        cfg.SessionPort,
			Timeout:     cfg.ProbeTimeout,
			Concurrency: cfg.ProbeConcurrency,
			GroupPause:  cfg.ProbePause,
		}, monitor.NewCache(cfg.CacheTTL), log),
		log: log,
	}

	if err := a.dispatch(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) dispatch(command string, args []string) error {
	switch command {
	case "list":
		return a.cmdList()
	case "search":
		return a.cmdSearch(args)
	case "add":
		return a.cmdAdd(args)
	case "rm":
		return a.cmdRemove(args)
	case "clear":
		return a.registry.DeleteAll()
	case "connect":
		return a.cmdConnect(args)
	case "check":
		return a.cmdCheck(args)
	case "watch":
		return a.cmdWatch()
	case "cred":
		return a.cmdCred(args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) cmdList() error {
	hosts, err := a.registry.List()
	if err != nil {
		return err
	}
	printHosts(hosts)
	return nil
}

func (a *app) cmdSearch(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: rdpmen search <query>")
	}
	hosts, err := a.registry.Search(args[0])
	if err != nil {
		return err
	}
	printHosts(hosts)
	return nil
}

func (a *app) cmdAdd(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: rdpmen add <hostname> [description]")
	}
	host := models.Host{Hostname: args[0]}
	if len(args) > 1 {
		host.Description = strings.Join(args[1:], " ")
	}
	return a.registry.Upsert(host)
}

func (a *app) cmdRemove(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: rdpmen rm <hostname>")
	}
	return a.registry.Delete(args[0])
}

func (a *app) cmdConnect(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: rdpmen connect <hostname>")
	}
	hostname := args[0]

	// Force a fresh probe on the next status query for this host.
	a.monitor.Invalidate(hostname)

	result := a.launcher.Launch(hostname)
	if result.Err != nil {
		return fmt.Errorf("launch failed while %s: %w", result.FailedIn, result.Err)
	}
	fmt.Printf("session started for %s (%s)\n", hostname, result.ArtifactPath)
	return nil
}

func (a *app) cmdCheck(args []string) error {
	names := args
	if len(names) == 0 {
		hosts, err := a.registry.List()
		if err != nil {
			return err
		}
		for _, h := range hosts {
			names = append(names, h.Hostname)
		}
	}

	results := a.monitor.CheckBatch(context.Background(), names)
	for _, name := range names {
		fmt.Printf("%-40s %s\n", name, results[name])
	}
	return nil
}

func (a *app) cmdWatch() error {
	watcher := monitor.NewWatcher(a.monitor, a.registry, a.log)
	if err := watcher.Start(a.cfg.RefreshSchedule); err != nil {
		return err
	}
	defer watcher.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-ctx.Done()
	return nil
}

func (a *app) cmdCred(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: rdpmen cred set-global <user> | set-host <hostname> <user> | del-host <hostname> | clear")
	}

	switch args[0] {
	case "set-global":
		if len(args) < 2 {
			return fmt.Errorf("usage: rdpmen cred set-global <user>")
		}
		secret, err := readSecret(fmt.Sprintf("Password for %s: ", args[1]))
		if err != nil {
			return err
		}
		return a.resolver.SaveGlobal(args[1], secret)
	case "set-host":
		if len(args) < 3 {
			return fmt.Errorf("usage: rdpmen cred set-host <hostname> <user>")
		}
		secret, err := readSecret(fmt.Sprintf("Password for %s on %s: ", args[2], args[1]))
		if err != nil {
			return err
		}
		return a.resolver.SavePerHost(args[1], args[2], secret)
	case "del-host":
		if len(args) < 2 {
			return fmt.Errorf("usage: rdpmen cred del-host <hostname>")
		}
		return a.resolver.DeletePerHost(args[1])
	case "clear":
		report := a.resolver.ClearAll()
		fmt.Printf("deleted %d credential(s), %d failure(s)\n", report.Deleted, report.Failed)
		return report.Err()
	default:
		return fmt.Errorf("unknown cred subcommand %q", args[0])
	}
}

// readSecret prompts on the terminal without echoing.
func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("could not read password: %v", err)
	}
	return string(secret), nil
}

func printHosts(hosts []models.Host) {
	for _, h := range hosts {
		last := "never"
		if h.LastConnected != nil {
			last = h.LastConnected.Local().Format(time.RFC822)
		}
		fmt.Printf("%-40s %-30s last connected: %s\n", h.Hostname, h.Description, last)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `rdpmen - remote desktop connection manager

Usage:
  rdpmen list
  rdpmen search <query>
  rdpmen add <hostname> [description]
  rdpmen rm <hostname>
  rdpmen clear
  rdpmen connect <hostname>
  rdpmen check [hostname ...]
  rdpmen watch
  rdpmen cred set-global <user>
  rdpmen cred set-host <hostname> <user>
  rdpmen cred del-host <hostname>
  rdpmen cred clear`)
}
