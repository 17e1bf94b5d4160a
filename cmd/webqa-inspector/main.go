package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/webqa-inspector/internal/core"
	"github.com/RecoveryAshes/webqa-inspector/internal/discovery"
	"github.com/RecoveryAshes/webqa-inspector/internal/httpheaders"
	"github.com/RecoveryAshes/webqa-inspector/internal/logging"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	configFile string
	verbose    bool
	quiet      bool
	logLevel   string
	headerArgs []string

	domain     string
	depth      int
	threads    int
	timeout    int
	onlyAlive  bool
	techniques string
	outputJSON bool
	outputTxt  bool
	outputFile string
	silent     bool
)

var rootCmd = &cobra.Command{
	Use:   "webqa-inspector",
	Short: "Autonomous web-QA discovery and inspection engine",
	Long: `webqa-inspector discovers every reachable URL on a target domain using
six independent techniques (live crawl, JS-endpoint mining, Wayback Machine
search, brute force, robots.txt, sitemap.xml), confirms which are alive, and
can optionally hand the discovered pages to a browser-driven inspection
pipeline for hygiene scoring.

Version: ` + Version + `
Built: ` + BuildTime,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		if verbose {
			level = "debug"
		}
		if quiet {
			level = "error"
		}

		logConfig := logging.DefaultConfig()
		logConfig.Level = level
		logConfig.LogDir = cfg.Logging.LogDir
		if cfg.Logging.Rotation.MaxSize > 0 {
			logConfig.MaxSize = cfg.Logging.Rotation.MaxSize
		}
		logConfig.MaxBackups = cfg.Logging.Rotation.MaxBackups
		logConfig.MaxAge = cfg.Logging.Rotation.MaxAge
		logConfig.Compress = cfg.Logging.Rotation.Compress

		if err := logging.Init(logConfig); err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		return nil
	},
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	interrupted := make(chan struct{})
	go func() {
		<-sigChan
		logging.Warn("received interrupt signal, shutting down")
		close(interrupted)
	}()

	techniqueList := strings.Split(techniques, ",")
	for i := range techniqueList {
		techniqueList[i] = strings.TrimSpace(techniqueList[i])
	}

	if err := validateFlags(domain, depth, threads, timeout, techniqueList); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return errSilentExit{}
	}

	cfg, err := core.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return errSilentExit{}
	}

	headerManager, err := httpheaders.NewManager(configFile, headerArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid headers: %v\n", err)
		return errSilentExit{}
	}

	targetURL := normalizeDomainURL(domain)

	enumerator, err := discovery.NewEnumerator(targetURL, discovery.Options{
		Depth:       depth,
		Threads:     threads,
		Timeout:     time.Duration(timeout) * time.Second,
		OnlyAlive:   onlyAlive,
		Techniques:  parseTechniques(techniqueList),
		Headers:     headerManager,
		ValidateSSL: cfg.Discovery.ValidateSSL,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return errSilentExit{}
	}

	resultCh := make(chan *discovery.Result, 1)
	go func() {
		resultCh <- enumerator.Run()
	}()

	var result *discovery.Result
	select {
	case result = <-resultCh:
	case <-interrupted:
		return errSilentExit{}
	}

	if !silent {
		fmt.Printf("Discovered %d URLs (%d alive) across %v\n",
			result.Summary.TotalURLs, result.Summary.AliveURLs, result.Summary.SourcesUsed)
	}

	if err := writeDiscoveryOutput(result); err != nil {
		fmt.Fprintf(os.Stderr, "error writing output: %v\n", err)
		return errSilentExit{}
	}

	return nil
}

func writeDiscoveryOutput(result *discovery.Result) error {
	if outputJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		return writeOutput(data, outputFile, "urls.json")
	}
	if outputTxt {
		var sb strings.Builder
		for _, u := range result.URLs {
			detail := result.URLDetails[u]
			sb.WriteString(fmt.Sprintf("%s %s\n", detail.StatusTag, u))
		}
		return writeOutput([]byte(sb.String()), outputFile, "urls.txt")
	}
	for _, u := range result.URLs {
		fmt.Println(u)
	}
	return nil
}

func writeOutput(data []byte, path, fallback string) error {
	if path == "" {
		path = fallback
	}
	return os.WriteFile(path, data, 0o644)
}

// errSilentExit signals main to exit(1) without cobra re-printing usage.
type errSilentExit struct{}

func (errSilentExit) Error() string { return "" }

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("webqa-inspector %s (built %s)\n", Version, BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug) logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet (errors only) logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringSliceVarP(&headerArgs, "header", "H", []string{}, "custom HTTP header 'Name: Value', may be repeated")

	rootCmd.Flags().StringVarP(&domain, "domain", "d", "", "target domain (required)")
	rootCmd.Flags().IntVar(&depth, "depth", 3, "live-crawl depth")
	rootCmd.Flags().IntVar(&threads, "threads", 50, "worker threads for liveness validation and live crawl")
	rootCmd.Flags().IntVar(&timeout, "timeout", 5, "per-request timeout in seconds")
	rootCmd.Flags().BoolVar(&onlyAlive, "only-alive", false, "only include URLs confirmed alive")
	rootCmd.Flags().StringVar(&techniques, "techniques", "live,js,wayback,bruteforce,robots,sitemap", "comma list of discovery techniques")
	rootCmd.Flags().BoolVar(&outputJSON, "json", false, "write results as JSON")
	rootCmd.Flags().BoolVar(&outputTxt, "txt", false, "write results as plain text")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file path")
	rootCmd.Flags().BoolVar(&silent, "silent", false, "suppress the summary line")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if _, silent := err.(errSilentExit); !silent {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
