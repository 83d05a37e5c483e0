// Package cli is the command line front end: it merges flags, a manifest
// and the environment into one configuration, builds the deploy use case
// and prints what a command did.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/a9b3/aws-site-deploy/internal/ports"
	siteaws "github.com/a9b3/aws-site-deploy/pkg/aws"
	"github.com/a9b3/aws-site-deploy/pkg/clients"
	"github.com/a9b3/aws-site-deploy/pkg/metrics"
)

const (
	CommandDeploy     = "deploy"
	CommandPlan       = "plan"
	CommandInvalidate = "invalidate"
)

const metricsPushTimeout = 10 * time.Second

// Flags are the command line options. Zero values mean "not given".
type Flags struct {
	File               string
	FQDN               string
	Source             string
	IndexDocument      string
	Region             string
	Endpoint           string
	AccessKeyID        string
	SecretAccessKey    string
	Profile            string
	MetricsPushgateway string
	WaitCertificate    time.Duration
	UploadConcurrency  *int
	Paths              []string
	Verbose            bool
	Help               bool
}

// ParseFlags parses args, the arguments following the command. Both
// "--flag value" and "--flag=value" are accepted. Arguments that are not
// flags are returned in order.
func ParseFlags(args []string) (*Flags, []string, error) {
	f := &Flags{}
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positional = append(positional, arg)
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")
		next := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("flag %s needs a value", name)
			}
			i++
			return args[i], nil
		}

		var err error
		switch name {
		case "-f", "--file":
			f.File, err = next()
		case "--fqdn":
			f.FQDN, err = next()
		case "-s", "--source":
			f.Source, err = next()
		case "--index-document":
			f.IndexDocument, err = next()
		case "--aws-region", "--region":
			f.Region, err = next()
		case "--aws-endpoint", "--endpoint":
			f.Endpoint, err = next()
		case "--aws-access-key-id":
			f.AccessKeyID, err = next()
		case "--aws-secret-access-key":
			f.SecretAccessKey, err = next()
		case "--aws-profile", "--profile":
			f.Profile, err = next()
		case "--metrics-pushgateway":
			f.MetricsPushgateway, err = next()
		case "--path":
			var p string
			if p, err = next(); err == nil {
				f.Paths = append(f.Paths, p)
			}
		case "--wait-certificate":
			var v string
			if v, err = next(); err == nil {
				f.WaitCertificate, err = time.ParseDuration(v)
			}
		case "--upload-concurrency":
			var v string
			if v, err = next(); err == nil {
				var n int
				if n, err = strconv.Atoi(v); err == nil {
					f.UploadConcurrency = &n
				}
			}
		case "-v", "--verbose":
			f.Verbose = true
		case "-h", "--help":
			f.Help = true
		default:
			return nil, nil, fmt.Errorf("unknown flag %s", name)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return f, positional, nil
}

// DeployerFactory builds the deploy use case for a configuration.
type DeployerFactory func(ctx context.Context, cfg *Config) (ports.DeployUseCase, error)

// NewAWSDeployer builds the deploy use case on the AWS SDK.
func NewAWSDeployer(ctx context.Context, cfg *Config) (ports.DeployUseCase, error) {
	awsCfg, err := siteaws.LoadConfig(ctx, cfg.AWSSettings())
	if err != nil {
		return nil, err
	}
	factory := clients.NewAWSClientFactory(awsCfg, clients.Options{UploadConcurrency: cfg.UploadConcurrency})
	return factory.GetDeployUseCase(), nil
}

// CLI represents the command line interface.
type CLI struct {
	Stdout io.Writer
	Stderr io.Writer
	// Environ replaces the process environment when non-nil.
	Environ     map[string]string
	NewDeployer DeployerFactory
}

func NewCLI() *CLI {
	return &CLI{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		NewDeployer: NewAWSDeployer,
	}
}

// Run runs the command named by args[1]; args[0] is the program name.
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		c.PrintUsage()
		return nil
	}

	cmd := args[1]
	switch cmd {
	case "help", "-h", "--help":
		c.PrintUsage()
		return nil
	case CommandDeploy, CommandPlan, CommandInvalidate:
	default:
		return fmt.Errorf("unknown command %q, run 'help' for usage", cmd)
	}

	flags, positional, err := ParseFlags(args[2:])
	if err != nil {
		return err
	}
	if flags.Help {
		c.PrintUsage()
		return nil
	}
	if cmd == CommandInvalidate {
		flags.Paths = append(flags.Paths, positional...)
	} else if len(positional) > 0 {
		return fmt.Errorf("unexpected argument %q", positional[0])
	}

	cfg, err := LoadConfig(cmd, flags, c.Environ)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Verbose, c.Stderr).WithValues("command", cmd, "fqdn", cfg.FQDN)
	ctx = log.IntoContext(ctx, logger)

	err = c.execute(ctx, cfg)
	metrics.RecordRun(cmd, err)
	c.pushMetrics(ctx, cfg)
	return err
}

// newLogger logs JSON at info level, or human readable debug output when
// verbose.
func newLogger(verbose bool, w io.Writer) logr.Logger {
	return zap.New(zap.UseDevMode(verbose), zap.WriteTo(w))
}

func (c *CLI) execute(ctx context.Context, cfg *Config) error {
	deployer, err := c.NewDeployer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up AWS clients: %w", err)
	}
	executor := NewExecutor(deployer, c.Stdout)

	switch cfg.Command {
	case CommandPlan:
		return executor.Plan(ctx, cfg.Request())
	case CommandInvalidate:
		return executor.Invalidate(ctx, cfg.FQDN, cfg.Paths)
	default:
		return executor.Deploy(ctx, cfg.Request())
	}
}

// pushMetrics pushes the run's metrics when a Pushgateway is configured.
// A failed push is logged and never fails the run.
func (c *CLI) pushMetrics(ctx context.Context, cfg *Config) {
	if cfg.MetricsPushgateway == "" {
		return
	}
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsPushTimeout)
	defer cancel()

	if err := metrics.Push(pushCtx, cfg.MetricsPushgateway, cfg.FQDN); err != nil {
		log.FromContext(ctx).Error(err, "Failed to push metrics")
	}
}

// PrintUsage prints the CLI usage.
func (c *CLI) PrintUsage() {
	fmt.Fprint(c.Stdout, `
aws-site-deploy - deploy a static site to S3, CloudFront, ACM and Route53

Usage:
  aws-site-deploy deploy     --fqdn <name> -s <dir> [flags]   Ensure every resource and upload the site
  aws-site-deploy plan       --fqdn <name> [flags]            Show what deploy would create or reuse
  aws-site-deploy invalidate --fqdn <name> [paths...]         Invalidate the CDN cache of a site
  aws-site-deploy help                                        Show this help

Flags:
  -f, --file string                 Manifest with one or more StaticSite documents
  --fqdn string                     Domain the site is served on (env FQDN)
  -s, --source string               Directory holding the site (env SOURCE)
  --index-document string           Index document (default index.html, env SITE_INDEX_DOCUMENT)
  --aws-region string               Region of the bucket (default us-east-1, env AWS_REGION)
  --aws-endpoint string             Endpoint override, e.g. LocalStack (env AWS_ENDPOINT, AWS_ENDPOINT_URL)
  --aws-access-key-id string        Access key (env AWS_ACCESS_KEY_ID)
  --aws-secret-access-key string    Secret key (env AWS_SECRET_ACCESS_KEY)
  --aws-profile string              Shared config profile (env AWS_PROFILE)
  --wait-certificate duration       Wait up to this long for a new certificate to be issued
  --upload-concurrency int          Maximum parallel uploads (default unlimited)
  --path string                     Path to invalidate, repeatable (default /*)
  --metrics-pushgateway string      Push run metrics to this Pushgateway (env METRICS_PUSHGATEWAY_URL)
  -v, --verbose                     Debug logging

Flags win over the manifest, the manifest over the environment.

Examples:
  aws-site-deploy deploy --fqdn www.example.com -s ./public
  aws-site-deploy plan -f site.yaml
  aws-site-deploy invalidate --fqdn www.example.com /index.html /css/*
`)
}

// Main is the CLI entry point.
func Main() {
	ctx := signals.SetupSignalHandler()
	if err := NewCLI().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
