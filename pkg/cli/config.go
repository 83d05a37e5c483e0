package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/a9b3/aws-site-deploy/internal/domain/site"
	siteaws "github.com/a9b3/aws-site-deploy/pkg/aws"
)

// Config is the merged configuration of one command. Precedence, highest
// first: flags, manifest, environment, defaults.
type Config struct {
	Command string `validate:"required,oneof=deploy plan invalidate"`

	FQDN          string `env:"FQDN" validate:"required"`
	Source        string `env:"SOURCE" validate:"omitempty,dir"`
	IndexDocument string `env:"SITE_INDEX_DOCUMENT" envDefault:"index.html" validate:"required"`

	Region          string `env:"AWS_REGION" envDefault:"us-east-1" validate:"required"`
	Endpoint        string `env:"AWS_ENDPOINT" validate:"omitempty,url"`
	EndpointURL     string `env:"AWS_ENDPOINT_URL" validate:"omitempty,url"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	SessionToken    string `env:"AWS_SESSION_TOKEN"`
	Profile         string `env:"AWS_PROFILE"`

	WaitCertificate   time.Duration
	UploadConcurrency int `validate:"gte=0"`
	Paths             []string

	MetricsPushgateway string `env:"METRICS_PUSHGATEWAY_URL" validate:"omitempty,url"`
	Verbose            bool
}

// LoadConfig merges the environment, the manifest named by flags (if any)
// and flags, then validates the result. environ replaces the process
// environment when non-nil.
func LoadConfig(command string, flags *Flags, environ map[string]string) (*Config, error) {
	cfg := &Config{Command: command}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if flags.File != "" {
		manifest, err := LoadManifest(flags.File, flags.FQDN)
		if err != nil {
			return nil, err
		}
		cfg.applyManifest(manifest)
	}

	cfg.applyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyManifest(m *StaticSite) {
	setString(&c.FQDN, m.Spec.FQDN)
	setString(&c.Source, m.Spec.Source)
	setString(&c.IndexDocument, m.Spec.IndexDocument)
	setString(&c.Region, m.Spec.Region)
	setString(&c.Endpoint, m.Spec.Endpoint)
	setString(&c.Profile, m.Spec.Profile)
	if len(m.Spec.InvalidationPaths) > 0 {
		c.Paths = m.Spec.InvalidationPaths
	}
	if m.Spec.WaitCertificate != "" {
		// Checked when the manifest is loaded.
		c.WaitCertificate, _ = time.ParseDuration(m.Spec.WaitCertificate)
	}
}

func (c *Config) applyFlags(f *Flags) {
	setString(&c.FQDN, f.FQDN)
	setString(&c.Source, f.Source)
	setString(&c.IndexDocument, f.IndexDocument)
	setString(&c.Region, f.Region)
	setString(&c.Endpoint, f.Endpoint)
	setString(&c.AccessKeyID, f.AccessKeyID)
	setString(&c.SecretAccessKey, f.SecretAccessKey)
	setString(&c.Profile, f.Profile)
	setString(&c.MetricsPushgateway, f.MetricsPushgateway)
	if f.WaitCertificate > 0 {
		c.WaitCertificate = f.WaitCertificate
	}
	if f.UploadConcurrency != nil {
		c.UploadConcurrency = *f.UploadConcurrency
	}
	if len(f.Paths) > 0 {
		c.Paths = f.Paths
	}
	c.Verbose = c.Verbose || f.Verbose
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describeFieldError(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "dir":
		return fmt.Sprintf("%s %q is not a directory", fe.Field(), fe.Value())
	case "url":
		return fmt.Sprintf("%s %q is not a URL", fe.Field(), fe.Value())
	case "oneof":
		return fmt.Sprintf("unknown command %q", fe.Value())
	default:
		return fmt.Sprintf("%s fails %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
}

// AWSEndpoint is the endpoint override, AWS_ENDPOINT winning over
// AWS_ENDPOINT_URL.
func (c *Config) AWSEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return c.EndpointURL
}

func (c *Config) AWSSettings() siteaws.Settings {
	return siteaws.Settings{
		Region:          c.Region,
		Endpoint:        c.AWSEndpoint(),
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		SessionToken:    c.SessionToken,
		Profile:         c.Profile,
	}
}

func (c *Config) Request() site.Request {
	return site.Request{
		FQDN:               c.FQDN,
		Source:             c.Source,
		IndexDocument:      c.IndexDocument,
		Region:             c.Region,
		InvalidationPaths:  c.Paths,
		WaitForCertificate: c.WaitCertificate,
	}
}
